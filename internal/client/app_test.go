package client

import (
	"errors"
	"testing"
	"time"

	"minichat/pkg/config"
	"minichat/pkg/models"
)

func newChatApp(t *testing.T) *App {
	t.Helper()
	app, ok := NewApp(config.ClientConfig{ServerURL: "http://localhost:3001"}).(*App)
	if !ok {
		t.Fatal("NewApp did not return *App")
	}
	app.view = ViewChat
	app.username = "ana"
	return app
}

func TestSendResultAfterPollDropsLocalCopy(t *testing.T) {
	app := newChatApp(t)
	ts := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	local := models.Message{ID: "local-1", Content: "olá", Sender: "ana", Type: models.TypeText, Timestamp: ts}
	app.pending = []models.Message{local}

	// a poll lands while the POST is still in flight and folds the
	// pending record into the transcript
	app.handlePollResult(pollResultMsg{Messages: nil})
	if len(app.messages) != 1 || app.messages[0].ID != "local-1" {
		t.Fatalf("after poll: messages = %+v", app.messages)
	}

	srv := local
	srv.ID = "srv-1"
	app.handleSendResult(sendResultMsg{LocalID: "local-1", Message: srv})

	if len(app.pending) != 0 {
		t.Fatalf("pending not cleared: %+v", app.pending)
	}
	if len(app.messages) != 1 {
		t.Fatalf("message rendered %d times: %+v", len(app.messages), app.messages)
	}
	if app.messages[0].ID != "srv-1" {
		t.Fatalf("kept id %q, want server copy", app.messages[0].ID)
	}
}

func TestSendResultErrorRemovesLocalCopy(t *testing.T) {
	app := newChatApp(t)
	local := models.Message{ID: "local-1", Content: "olá", Sender: "ana", Type: models.TypeText, Timestamp: time.Now().UTC()}
	app.pending = []models.Message{local}
	app.handlePollResult(pollResultMsg{Messages: nil})

	app.handleSendResult(sendResultMsg{LocalID: "local-1", Err: errors.New("connection refused")})

	if len(app.pending) != 0 {
		t.Fatalf("pending not cleared: %+v", app.pending)
	}
	if len(app.messages) != 0 {
		t.Fatalf("failed send left messages: %+v", app.messages)
	}
	if !app.logLine.err {
		t.Fatal("expected error log entry")
	}
}
