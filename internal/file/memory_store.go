package file

import (
	"context"
	"sync"
)

// Store persists file records.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	FindByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	IncrementDownload(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) (Record, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps records in insertion order. All mutations run under one lock,
// and an optional persist hook sees the candidate state before it is committed.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	persist func([]Record) error
}

// NewMemoryStore returns an empty, purely in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func newHookedStore(records []Record, persist func([]Record) error) *MemoryStore {
	return &MemoryStore{records: records, persist: persist}
}

// Insert appends rec.
func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, rec)
	return s.commit(next)
}

// FindByID returns the record with the given id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.records[i], nil
	}
	return Record{}, ErrFileNotFound
}

// List returns a copy of all records in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// IncrementDownload bumps the download counter and returns the updated record.
func (s *MemoryStore) IncrementDownload(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, ErrFileNotFound
	}
	next := make([]Record, len(s.records))
	copy(next, s.records)
	next[i].DownloadCount++
	if err := s.commit(next); err != nil {
		return Record{}, err
	}
	return next[i], nil
}

// Delete removes the record and returns it so the caller can clean up its blob.
func (s *MemoryStore) Delete(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, ErrFileNotFound
	}
	removed := s.records[i]
	next := make([]Record, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	if err := s.commit(next); err != nil {
		return Record{}, err
	}
	return removed, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// commit must be called with mu held.
func (s *MemoryStore) commit(next []Record) error {
	if s.persist != nil {
		if err := s.persist(next); err != nil {
			return err
		}
	}
	s.records = next
	return nil
}
