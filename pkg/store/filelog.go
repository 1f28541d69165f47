package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"minichat/pkg/logger"
	"minichat/pkg/models"
	"minichat/pkg/state"
)

// FileLog persists the full message history as one JSON array, rewritten
// atomically on every mutation. All writes go through a single mutex so
// concurrent requests cannot interleave read-modify-write cycles.
type FileLog struct {
	mu   sync.Mutex
	path string
	msgs []models.Message
}

// OpenFileLog loads the message history from path. A missing file starts
// an empty log. An unreadable file is moved aside into the quarantine dir
// and the log starts empty; the original bytes stay available for
// inspection.
func OpenFileLog(path string) (*FileLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &PersistenceError{Op: "create store dir", Err: err}
	}
	fl := &FileLog{path: path}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("message_log_new", "path", path)
			return fl, nil
		}
		return nil, &PersistenceError{Op: "read message log", Err: err}
	}
	var msgs []models.Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		qpath, qerr := quarantine(path)
		if qerr != nil {
			return nil, &PersistenceError{Op: "quarantine message log", Err: qerr}
		}
		logger.Error("message_log_quarantined", "path", path, "moved_to", qpath, "error", err)
		quarantinedTotal.Inc()
		return fl, nil
	}
	fl.msgs = msgs
	logger.Info("message_log_loaded", "path", path, "count", len(msgs))
	return fl, nil
}

// quarantine moves an unreadable file aside so a rewrite cannot destroy
// the evidence. Prefers the configured quarantine dir, falls back to a
// sibling file.
func quarantine(path string) (string, error) {
	name := fmt.Sprintf("%s.corrupt-%d", filepath.Base(path), time.Now().UnixNano())
	dest := path + ".corrupt"
	if q := state.PathsVar.Quarantine; q != "" {
		dest = filepath.Join(q, name)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Append stores one message. The in-memory slice is only extended when the
// rewrite reached disk.
func (fl *FileLog) Append(m models.Message) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.msgs = append(fl.msgs, m)
	if err := fl.persistLocked(); err != nil {
		fl.msgs = fl.msgs[:len(fl.msgs)-1]
		return err
	}
	appendedTotal.Inc()
	return nil
}

// List returns a sorted copy of the history.
func (fl *FileLog) List() ([]models.Message, error) {
	fl.mu.Lock()
	out := make([]models.Message, len(fl.msgs))
	copy(out, fl.msgs)
	fl.mu.Unlock()
	sortByTimestamp(out)
	return out, nil
}

// Reset clears the history. Memory is cleared even when the rewrite
// fails, so a later append starts from the emptied state.
func (fl *FileLog) Reset() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.msgs = nil
	if err := fl.persistLocked(); err != nil {
		return err
	}
	resetsTotal.Inc()
	return nil
}

func (fl *FileLog) Count() (int, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return len(fl.msgs), nil
}

func (fl *FileLog) Close() error { return nil }

// persistLocked rewrites the whole file via temp file + rename so readers
// never observe a partial array. Caller holds fl.mu.
func (fl *FileLog) persistLocked() error {
	msgs := fl.msgs
	if msgs == nil {
		msgs = []models.Message{}
	}
	b, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "marshal message log", Err: err}
	}
	dir := filepath.Dir(fl.path)
	tmp, err := os.CreateTemp(dir, ".messages-*.tmp")
	if err != nil {
		return &PersistenceError{Op: "stage message log", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "write message log", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "sync message log", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "close message log", Err: err}
	}
	if err := os.Rename(tmpName, fl.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistenceError{Op: "replace message log", Err: err}
	}
	return nil
}
