// Package session holds uploaded datasets keyed by opaque session identifiers.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hyperjump/autoeval/internal/models"
	"go.uber.org/zap"
)

// Store resolves session identifiers to datasets.
// Datasets handed to Put must not be mutated afterwards.
type Store interface {
	// Get returns the dataset for id, or false when the session is unknown or expired.
	Get(id string) (*models.Dataset, bool)
	// Put stores ds under a new identifier and returns it. Existing sessions are never overwritten.
	Put(ds *models.Dataset) string
}

// MemoryStore is an in-memory Store with capacity and TTL based eviction.
type MemoryStore struct {
	lru    *expirable.LRU[string, *models.Dataset]
	newID  func() string
	logger *zap.Logger
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithLogger logs session evictions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *MemoryStore) { s.logger = l }
}

// WithIDGenerator replaces the uuid based identifier generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) { s.newID = gen }
}

// NewMemoryStore creates a store holding at most maxSessions datasets (0 = unlimited),
// each expiring ttl after it was stored (0 = never).
func NewMemoryStore(maxSessions int, ttl time.Duration, opts ...Option) *MemoryStore {
	s := &MemoryStore{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	s.lru = expirable.NewLRU[string, *models.Dataset](maxSessions, s.onEvict, ttl)
	return s
}

func (s *MemoryStore) onEvict(id string, ds *models.Dataset) {
	if s.logger != nil && ds != nil {
		s.logger.Debug("session evicted", zap.String("session_id", id), zap.String("dataset", ds.Name))
	}
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (*models.Dataset, bool) {
	return s.lru.Get(id)
}

// Put implements Store.
func (s *MemoryStore) Put(ds *models.Dataset) string {
	id := s.newID()
	for s.lru.Contains(id) {
		id = s.newID()
	}
	s.lru.Add(id, ds)
	return id
}

// Remove drops a session. It reports whether the session existed.
func (s *MemoryStore) Remove(id string) bool {
	return s.lru.Remove(id)
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
