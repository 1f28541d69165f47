package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"minichat/pkg/models"
)

func fakeServer(t *testing.T) (*httptest.Server, *[]models.Message) {
	t.Helper()
	var stored []models.Message
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(stored)
		case http.MethodPost:
			var m models.Message
			if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
				http.Error(w, `{"error":"invalid json"}`, 400)
				return
			}
			m.ID = "srv-1"
			m.Timestamp = time.Now().UTC()
			stored = append(stored, m)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(m)
		}
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, `{"error":"Nenhum arquivo enviado"}`, 400)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, `{"error":"Nenhum arquivo enviado"}`, 400)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/uploads/stored.png"})
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		stored = nil
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Chat limpo com sucesso."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &stored
}

func TestAPISendAndMessages(t *testing.T) {
	srv, _ := fakeServer(t)
	api := NewAPI(srv.URL)

	created, err := api.Send(models.Message{Content: "oi", Sender: "alice", Type: models.TypeText})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if created.ID != "srv-1" {
		t.Fatalf("expected server id, got %q", created.ID)
	}

	msgs, err := api.Messages()
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "oi" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestAPIUpload(t *testing.T) {
	srv, _ := fakeServer(t)
	api := NewAPI(srv.URL)

	url, err := api.Upload("local/pic.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/uploads/stored.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if abs := api.ResolveURL(url); abs != srv.URL+"/uploads/stored.png" {
		t.Fatalf("unexpected resolved url %q", abs)
	}
}

func TestAPIReset(t *testing.T) {
	srv, stored := fakeServer(t)
	api := NewAPI(srv.URL)

	if _, err := api.Send(models.Message{Content: "x", Sender: "a", Type: models.TypeText}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := api.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(*stored) != 0 {
		t.Fatalf("expected server store cleared")
	}
}

func TestAPIErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(400)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Campos obrigatórios ausentes"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := NewAPI(srv.URL)
	_, err := api.Send(models.Message{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "Campos obrigatórios ausentes") {
		t.Fatalf("expected server error surfaced, got %v", err)
	}
}
