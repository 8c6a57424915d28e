// Package store defines the durable snapshot contract the feed and story stores persist through.
package store

import (
	"context"
	"errors"
	"sync"
)

// Namespaced snapshot keys.
const (
	PostsKey   = "posts-storage"
	StoriesKey = "stories-storage"
)

var ErrNoSnapshot = errors.New("no snapshot")

// Snapshots persists whole-store snapshots under a key. Writes replace the previous value.
type Snapshots interface {
	SaveSnapshot(ctx context.Context, key string, data []byte) error
	// LoadSnapshot returns ErrNoSnapshot when nothing was saved under key.
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}

// Memory keeps snapshots in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory { return &Memory{data: make(map[string][]byte)} }

func (m *Memory) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), b...), nil
}
