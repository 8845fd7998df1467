package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"market-mention-bot/internal/types"
)

// Document keys shared by the pipeline, report generator and politics analyzer.
const (
	KeyCompanies         = "companies"
	KeyCombinedSentiment = "combined_sentiment"
	KeyPoliticalRisk     = "political_risk"
	KeyUsageLedger       = "api_usage"
)

// NewsKey returns the document key for one company's articles from one source.
func NewsKey(source types.Source, company string) string {
	return fmt.Sprintf("news/%s/%s", source, company)
}

var (
	// ErrNotFound is returned by Get for keys that were never written.
	ErrNotFound = errors.New("document not found")
	// ErrEmptyDocument is returned by Put when the value would wipe existing data.
	ErrEmptyDocument = errors.New("refusing to store empty document")
)

// KV is a durable whole-document store backed by Badger. Values are JSON;
// a Put replaces the entire document at the key. The store gives no
// concurrent-writer guarantees beyond Badger's single-key atomicity, so
// writers to the same key must serialize externally.
type KV struct {
	db *badger.DB
}

// OpenKV opens (creating if needed) the store under dir.
func OpenKV(dir string) (*KV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}
	return &KV{db: db}, nil
}

// Close releases the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// Put marshals doc and overwrites the whole document at key. Nil and empty
// documents are refused so a failed upstream fetch can never wipe data.
func (kv *KV) Put(key string, doc any) error {
	if doc == nil {
		return ErrEmptyDocument
	}
	if c, ok := doc.(interface{ Len() int }); ok && c.Len() == 0 {
		return ErrEmptyDocument
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", key, err)
	}
	if isEmptyJSON(data) {
		return ErrEmptyDocument
	}
	err = kv.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store document %q: %w", key, err)
	}
	return nil
}

// Get unmarshals the document at key into out. Returns ErrNotFound if the
// key has never been written.
func (kv *KV) Get(key string, out any) error {
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("failed to load document %q: %w", key, err)
	}
	return nil
}

// Has reports whether key holds a document.
func (kv *KV) Has(key string) bool {
	err := kv.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	return err == nil
}

func isEmptyJSON(data []byte) bool {
	switch {
	case bytes.Equal(data, []byte("null")),
		bytes.Equal(data, []byte("{}")),
		bytes.Equal(data, []byte("[]")),
		bytes.Equal(data, []byte(`""`)):
		return true
	}
	return false
}
