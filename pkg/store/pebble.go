package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"minichat/pkg/logger"
	"minichat/pkg/models"
)

// keyPrefix namespaces message records so future record kinds can share
// the same DB.
var keyPrefix = []byte("msg:")

// keyUpper is the exclusive upper bound of the message keyspace (':'+1).
var keyUpper = []byte("msg;")

// PebbleLog stores each message as its own key, ordered by arrival.
// Presentation order still sorts by the message timestamp on read.
type PebbleLog struct {
	db  *pebble.DB
	dir string
	seq uint64
}

// OpenPebbleLog opens (or creates) a Pebble database at dir.
func OpenPebbleLog(dir string) (*PebbleLog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", dir, "error", err)
		return nil, &PersistenceError{Op: "open pebble", Err: err}
	}
	logger.Info("pebble_opened", "path", dir)
	return &PebbleLog{db: db, dir: dir}, nil
}

// Append writes the message under a sortable arrival key with a small
// sequence suffix to avoid collisions within the same nanosecond.
func (pl *PebbleLog) Append(m models.Message) error {
	if pl.db == nil {
		return &PersistenceError{Op: "append", Err: fmt.Errorf("pebble not opened")}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return &PersistenceError{Op: "marshal message", Err: err}
	}
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&pl.seq, 1)
	key := fmt.Sprintf("msg:%020d-%06d", ts, s)
	if err := pl.db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("pebble_append_failed", "key", key, "error", err)
		return &PersistenceError{Op: "append message", Err: err}
	}
	appendedTotal.Inc()
	return nil
}

// List scans the message keyspace and returns the records sorted by
// timestamp. Records that no longer parse are skipped with a warning
// rather than failing the whole listing.
func (pl *PebbleLog) List() ([]models.Message, error) {
	if pl.db == nil {
		return nil, &PersistenceError{Op: "list", Err: fmt.Errorf("pebble not opened")}
	}
	iter, err := pl.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: keyUpper})
	if err != nil {
		return nil, &PersistenceError{Op: "iterate messages", Err: err}
	}
	defer iter.Close()
	var out []models.Message
	for iter.First(); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), keyPrefix) {
			break
		}
		v := append([]byte(nil), iter.Value()...)
		var m models.Message
		if err := json.Unmarshal(v, &m); err != nil {
			logger.Warn("pebble_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
	}
	if err := iter.Error(); err != nil {
		return nil, &PersistenceError{Op: "iterate messages", Err: err}
	}
	sortByTimestamp(out)
	return out, nil
}

// Reset removes the whole message keyspace in one range tombstone.
func (pl *PebbleLog) Reset() error {
	if pl.db == nil {
		return &PersistenceError{Op: "reset", Err: fmt.Errorf("pebble not opened")}
	}
	if err := pl.db.DeleteRange(keyPrefix, keyUpper, pebble.Sync); err != nil {
		logger.Error("pebble_reset_failed", "error", err)
		return &PersistenceError{Op: "reset messages", Err: err}
	}
	resetsTotal.Inc()
	return nil
}

func (pl *PebbleLog) Count() (int, error) {
	msgs, err := pl.List()
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func (pl *PebbleLog) Close() error {
	if pl.db == nil {
		return nil
	}
	err := pl.db.Close()
	pl.db = nil
	if err != nil {
		return &PersistenceError{Op: "close pebble", Err: err}
	}
	logger.Info("pebble_closed")
	return nil
}
