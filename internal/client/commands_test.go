package client

import "testing"

func TestExpandEmoji(t *testing.T) {
	cases := map[string]string{
		"bom dia :sorriso:":    "bom dia 😀",
		":joinha: :festa:":     "👍 🎉",
		"sem shortcode":        "sem shortcode",
		"horario 12:30 normal": "horario 12:30 normal",
	}
	for in, want := range cases {
		if got := expandEmoji(in); got != want {
			t.Fatalf("expandEmoji(%q): expected %q got %q", in, want, got)
		}
	}
}

func TestTypeForFile(t *testing.T) {
	cases := []struct {
		path string
		want string
		ok   bool
	}{
		{"pic.jpg", "image", true},
		{"pic.JPEG", "image", true},
		{"song.mp3", "audio", true},
		{"note.wav", "audio", true},
		{"doc.pdf", "", false},
		{"noext", "", false},
	}
	for _, tc := range cases {
		got, ok := typeForFile(tc.path)
		if ok != tc.ok || string(got) != tc.want {
			t.Fatalf("typeForFile(%q): expected (%q,%v) got (%q,%v)", tc.path, tc.want, tc.ok, got, ok)
		}
	}
}
