// Package session stores per-generation inputs so a later feedback call can
// re-run the pipeline without resending the WSDL.
package session

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a session id has no stored record.
var ErrNotFound = errors.New("session not found")

// Record holds the original inputs of one generation plus accumulated
// feedback. Entries are read and written only by the request owning the key;
// concurrent feedback against one key is the caller's problem to serialize.
type Record struct {
	WSDL       string   `json:"wsdl"`
	FileName   string   `json:"fileName"`
	Categories []string `json:"categories"`
	Feedback   []string `json:"feedback,omitempty"`
}

// Store is a key-value store of generation records by opaque session id.
type Store interface {
	Get(id string) (Record, error)
	Put(id string, rec Record) error
	Delete(id string) error
	Close() error
}

// MemoryStore keeps records in process memory. Suitable for single-instance
// deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Put(id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
