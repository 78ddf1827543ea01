package probe

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist or has expired.
var ErrNotFound = errors.New("probe cache entry not found")

// cacheVersion is bumped when the encoded entry layout changes.
const cacheVersion = 1

// Cache keys.
const (
	toolsKey = "tools"
	mcpKey   = "mcp"
)

// Cache stores probe results in badger with a TTL on every entry.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens or creates a probe cache at path.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open probe cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

func makeKey(name string) []byte {
	return []byte(fmt.Sprintf("v%d\x00%s", cacheVersion, name))
}

// Get decodes the entry stored under name into v.
func (c *Cache) Get(name string, v any) error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(data []byte) error {
			return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
		})
	})
}

// Put stores v under name. It expires after the cache TTL.
func (c *Cache) Put(name string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(makeKey(name), buf.Bytes())
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Invalidate drops every cached probe result.
func (c *Cache) Invalidate() error {
	return c.db.DropAll()
}
