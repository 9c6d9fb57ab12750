// Package storage persists collection snapshots in a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/internal/config"
)

// ErrNotFound is returned when no snapshot is stored under a key.
var ErrNotFound = errors.New("storage: snapshot not found")

// Backend stores encoded snapshots by collection ID.
type Backend interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open creates the backend selected by the configuration.
func Open(ctx context.Context, cfg config.StorageConfig, l logrus.FieldLogger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		l.Debugf("Using in-memory snapshot storage.")
		return NewMemoryBackend(), nil
	case config.BackendRedis:
		b, err := NewRedisBackend(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		l.Infof("Connected to Redis at [%s].", cfg.Redis.Address)
		return b, nil
	case config.BackendSQLite:
		b, err := OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		l.Infof("Opened SQLite database [%s].", cfg.SQLite.Path)
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error { return nil }
