package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"minichat/pkg/api"
	"minichat/pkg/media"
	"minichat/pkg/models"
	"minichat/pkg/store"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open("file", t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ms, err := media.New(t.TempDir(), "", 0, nil)
	if err != nil {
		t.Fatalf("media store: %v", err)
	}
	srv := httptest.NewServer(api.Handler(st, ms))
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return srv
}

func logResponseBody(t *testing.T, body io.Reader, context string) {
	b, err := io.ReadAll(body)
	if err != nil {
		t.Logf("%s: failed to read body: %v", context, err)
		return
	}
	t.Logf("%s: response body=%s", context, b)
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return res
}

func TestCreateMessage(t *testing.T) {
	srv := setupServer(t)

	payload := map[string]string{"content": "olá mundo", "sender": "alice", "type": "text"}
	res := postJSON(t, srv.URL+"/messages", payload)
	defer res.Body.Close()
	if res.StatusCode != 201 {
		logResponseBody(t, res.Body, "TestCreateMessage error")
		t.Fatalf("expected 201 got %v", res.Status)
	}

	var out models.Message
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	t.Logf("created message %+v", out)
	if out.ID == "" {
		t.Fatalf("missing id in response")
	}
	if out.Timestamp.IsZero() {
		t.Fatalf("expected server-assigned timestamp")
	}
	if out.Content != "olá mundo" || out.Sender != "alice" {
		t.Fatalf("payload not echoed back: %+v", out)
	}
}

func TestCreateMessageIgnoresClientID(t *testing.T) {
	srv := setupServer(t)

	payload := map[string]string{"id": "chosen-by-client", "content": "x", "sender": "a", "type": "text"}
	res := postJSON(t, srv.URL+"/messages", payload)
	defer res.Body.Close()
	if res.StatusCode != 201 {
		t.Fatalf("expected 201 got %v", res.Status)
	}
	var out models.Message
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID == "chosen-by-client" {
		t.Fatalf("client-sent id must be replaced")
	}
}

func TestCreateMessageMissingFields(t *testing.T) {
	srv := setupServer(t)

	res := postJSON(t, srv.URL+"/messages", map[string]string{"sender": "alice"})
	defer res.Body.Close()
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %v", res.Status)
	}
	var out map[string]string
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["error"] != "Campos obrigatórios ausentes" {
		t.Fatalf("unexpected error body: %v", out)
	}
}

func TestCreateMessageInvalidJSON(t *testing.T) {
	srv := setupServer(t)

	res, err := http.Post(srv.URL+"/messages", "application/json", bytes.NewReader([]byte("{nope")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 400 {
		t.Fatalf("expected 400 got %v", res.Status)
	}
}

func TestListMessagesSorted(t *testing.T) {
	srv := setupServer(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"third", "first", "second"} {
		// Explicit timestamps arrive out of order on purpose.
		offsets := []time.Duration{2 * time.Minute, 0, time.Minute}
		payload := map[string]interface{}{
			"content":   content,
			"sender":    "alice",
			"type":      "text",
			"timestamp": base.Add(offsets[i]).Format(time.RFC3339),
		}
		res := postJSON(t, srv.URL+"/messages", payload)
		res.Body.Close()
		if res.StatusCode != 201 {
			t.Fatalf("seed %q: expected 201 got %v", content, res.Status)
		}
	}

	res, err := http.Get(srv.URL + "/messages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %v", res.Status)
	}
	var out []models.Message
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	for i, want := range []string{"first", "second", "third"} {
		if out[i].Content != want {
			t.Fatalf("position %d: expected %q got %q", i, want, out[i].Content)
		}
	}
}

func TestListMessagesEmptyIsArray(t *testing.T) {
	srv := setupServer(t)

	res, err := http.Get(srv.URL + "/messages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(bytes.TrimSpace(b)) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", b)
	}
}

func TestResetChat(t *testing.T) {
	srv := setupServer(t)

	res := postJSON(t, srv.URL+"/messages", map[string]string{"content": "x", "sender": "a", "type": "text"})
	res.Body.Close()
	if res.StatusCode != 201 {
		t.Fatalf("seed: expected 201 got %v", res.Status)
	}

	res, err := http.Post(srv.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		logResponseBody(t, res.Body, "TestResetChat error")
		t.Fatalf("expected 200 got %v", res.Status)
	}
	var out map[string]string
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Chat limpo com sucesso." {
		t.Fatalf("unexpected body: %v", out)
	}

	list, err := http.Get(srv.URL + "/messages")
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	defer list.Body.Close()
	var msgs []models.Message
	if err := json.NewDecoder(list.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty chat after reset, got %d messages", len(msgs))
	}
}

// failingLog triggers the persistence failure paths.
type failingLog struct{}

func (failingLog) Append(models.Message) error { return &store.PersistenceError{Op: "append", Err: errors.New("disk full")} }
func (failingLog) List() ([]models.Message, error) {
	return nil, &store.PersistenceError{Op: "list", Err: errors.New("disk gone")}
}
func (failingLog) Reset() error { return &store.PersistenceError{Op: "reset", Err: errors.New("disk full")} }
func (failingLog) Count() (int, error) { return 0, errors.New("disk gone") }
func (failingLog) Close() error        { return nil }

func TestResetChatPersistenceFailure(t *testing.T) {
	ms, err := media.New(t.TempDir(), "", 0, nil)
	if err != nil {
		t.Fatalf("media store: %v", err)
	}
	srv := httptest.NewServer(api.Handler(failingLog{}, ms))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 500 {
		t.Fatalf("expected 500 got %v", res.Status)
	}
	var out map[string]string
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["error"] != "Erro interno ao limpar o chat." {
		t.Fatalf("unexpected error body: %v", out)
	}
}
