package endpoint

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Entry is one cached endpoint response.
type Entry struct {
	MediaType string
	Body      []byte
}

// Cache stores raw endpoint responses in badger.
//
// Thread-safety: Cache is safe for concurrent use; badger serializes
// conflicting transactions.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens a response cache in dir. An empty dir keeps the cache in
// memory. Entries expire after ttl; zero keeps them until the cache is
// cleared.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the entry stored under key.
func (c *Cache) Get(key string) (Entry, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	// Stored as "<media type>\n<body>".
	mediaType, body, ok := bytes.Cut(raw, []byte{'\n'})
	if !ok {
		return Entry{}, false, fmt.Errorf("read cache entry %s: missing media type", key)
	}
	return Entry{MediaType: string(mediaType), Body: body}, true, nil
}

// Put stores an entry under key.
func (c *Cache) Put(key string, e Entry) error {
	raw := make([]byte, 0, len(e.MediaType)+1+len(e.Body))
	raw = append(raw, e.MediaType...)
	raw = append(raw, '\n')
	raw = append(raw, e.Body...)

	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

// Clear drops every entry.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// badgerLogger routes badger's log output into slog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	slog.Error(trimNewline(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Warningf(format string, args ...any) {
	slog.Warn(trimNewline(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Infof(format string, args ...any) {
	slog.Debug(trimNewline(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Debugf(format string, args ...any) {
	slog.Debug(trimNewline(fmt.Sprintf(format, args...)), "component", "badger")
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
