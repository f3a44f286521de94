package cache

import (
	"context"
	"sync"
)

// MemoryBackend keeps everything in process memory.
type MemoryBackend struct {
	mu         sync.Mutex
	namespaces map[string]*memoryStore
	version    int64
	hasVersion bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{namespaces: make(map[string]*memoryStore)}
}

func (b *MemoryBackend) Store(namespace string) Store {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.namespaces[namespace]
	if !ok {
		s = &memoryStore{records: make(map[string]Record)}
		b.namespaces[namespace] = s
	}
	return s
}

func (b *MemoryBackend) Version(context.Context) (int64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version, b.hasVersion, nil
}

func (b *MemoryBackend) SetVersion(_ context.Context, version int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.version, b.hasVersion = version, true
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func (s *memoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memoryStore) Set(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = *rec
	return nil
}

func (s *memoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func (s *memoryStore) List(context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		out = append(out, &rec)
	}
	return out, nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
	return nil
}
