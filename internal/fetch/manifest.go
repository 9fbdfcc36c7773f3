package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ManifestEntry records one successfully downloaded object.
type ManifestEntry struct {
	ETag         string    `json:"etag"`
	Size         int64     `json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Manifest is the local record of downloaded objects, keyed by bucket and
// object key. It survives across runs so partial downloads are detected and
// re-fetched instead of being trusted.
type Manifest struct {
	db *badger.DB
}

// OpenManifest opens (or creates) the manifest store in dir.
func OpenManifest(dir string) (*Manifest, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open fetch manifest: %w", err)
	}
	return &Manifest{db: db}, nil
}

// Get returns the entry for an object, or nil when none is recorded.
func (m *Manifest) Get(bucket, key string) (*ManifestEntry, error) {
	var entry *ManifestEntry
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(manifestKey(bucket, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e ManifestEntry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			entry = &e
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest entry for %s/%s: %w", bucket, key, err)
	}
	return entry, nil
}

// Put records a downloaded object.
func (m *Manifest) Put(bucket, key string, entry ManifestEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(manifestKey(bucket, key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write manifest entry for %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Close releases the underlying store.
func (m *Manifest) Close() error {
	return m.db.Close()
}

func manifestKey(bucket, key string) []byte {
	return []byte(bucket + "/" + key)
}
