package banner

import "testing"

func TestExampleBaseURL(t *testing.T) {
	cases := map[string]string{
		"0.0.0.0:3001":   "http://localhost:3001",
		":3001":          "http://localhost:3001",
		"[::]:3001":      "http://localhost:3001",
		"127.0.0.1:8080": "http://127.0.0.1:8080",
		"chat.local:80":  "http://chat.local:80",
		"not-an-addr":    "http://not-an-addr",
	}
	for addr, want := range cases {
		if got := ExampleBaseURL(addr); got != want {
			t.Errorf("ExampleBaseURL(%q) = %q, want %q", addr, got, want)
		}
	}
}
