package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"minichat/pkg/models"
)

// Log is the message persistence abstraction. Both backends keep the full
// history and rewrite or append durably on every mutation.
type Log interface {
	// Append durably stores one message.
	Append(m models.Message) error
	// List returns every stored message sorted ascending by timestamp.
	// Messages with equal timestamps keep their insertion order.
	List() ([]models.Message, error)
	// Reset discards the entire history.
	Reset() error
	// Count reports how many messages are stored.
	Count() (int, error)
	Close() error
}

// Open creates the configured backend rooted at dir. Backend "file" (the
// default) keeps a single messages.json; "pebble" uses an embedded
// key-value store under dir/pebble.
func Open(backend, dir string) (Log, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "file":
		return OpenFileLog(filepath.Join(dir, "messages.json"))
	case "pebble":
		return OpenPebbleLog(filepath.Join(dir, "pebble"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}

// PersistenceError wraps a failed durable write or read. Handlers map it
// to a 500 response.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// sortByTimestamp orders messages ascending by timestamp, preserving
// insertion order for equal timestamps.
func sortByTimestamp(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
