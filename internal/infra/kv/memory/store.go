// Package memory implements an in-memory key-value Store. An optional byte
// quota emulates the capacity limit of browser-style local storage.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hrdesk/internal/kv/core"
)

type entry struct {
	data     []byte
	modified time.Time
}

// Store implements core.Store backed by process memory.
type Store struct {
	mu    sync.RWMutex
	objs  map[string]entry
	quota int64
	used  int64
}

// New returns an unbounded in-memory store.
func New() *Store { return NewWithQuota(0) }

// NewWithQuota returns a store that rejects writes once the total size of
// keys plus values would exceed quota bytes. A quota <= 0 means unbounded.
func NewWithQuota(quota int64) *Store {
	return &Store{objs: make(map[string]entry), quota: quota}
}

// Driver returns the kv driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Get returns a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// Set stores a copy of value, enforcing the quota.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := int64(len(key) + len(value))
	used := s.used
	if prev, ok := s.objs[key]; ok {
		used -= int64(len(key) + len(prev.data))
	}
	if s.quota > 0 && used+size > s.quota {
		return core.ErrQuotaExceeded
	}
	data := make([]byte, len(value))
	copy(data, value)
	s.objs[key] = entry{data: data, modified: time.Now().UTC()}
	s.used = used + size
	return nil
}

// Delete removes key returning true if it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.objs[key]
	if ok {
		s.used -= int64(len(key) + len(prev.data))
		delete(s.objs, key)
	}
	return ok, nil
}

// List returns all keys matching prefix.
func (s *Store) List(_ context.Context, prefix string) ([]core.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Info, 0, len(s.objs))
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, core.Info{Key: k, Size: int64(len(v.data)), LastModified: v.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Used reports the bytes currently counted against the quota.
func (s *Store) Used() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
