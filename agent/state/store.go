package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrStateNotFound  = errors.New("session history not found")
	ErrInvalidSession = errors.New("session id is empty")
)

const (
	defaultStoreKeyPrefix = "mentor:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// Store is the persistence contract used by the orchestrator. Get reports
// ErrStateNotFound for unknown sessions; callers decide whether that means
// "fresh session".
type Store interface {
	Get(ctx context.Context, sessionID string) (History, error)
	Set(ctx context.Context, sessionID string, h History) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreConfig selects and tunes a Store implementation.
type StoreConfig struct {
	Backend   string        `envconfig:"BACKEND" split_words:"true" default:"memory"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"mentor:session:"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendUpstash = "upstash"
)

// NewStore builds the Store named by cfg.Backend. Remote backends pull their
// connection settings through the supplied loaders so that unused backends do
// not require their env vars.
func NewStore(
	cfg StoreConfig,
	redisCfg func() (*RedisConfig, error),
	upstashCfg func() (*UpstashRedisConfig, error),
) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		rc, err := redisCfg()
		if err != nil {
			return nil, fmt.Errorf("load redis config: %w", err)
		}
		return NewRedisStore(*rc, WithRedisPrefix(cfg.KeyPrefix), WithRedisTTL(cfg.TTL)), nil
	case BackendUpstash:
		uc, err := upstashCfg()
		if err != nil {
			return nil, fmt.Errorf("load upstash config: %w", err)
		}
		return NewUpstashRedisStore(*uc, WithKeyPrefix(cfg.KeyPrefix), WithTTL(cfg.TTL))
	default:
		return nil, fmt.Errorf("unsupported store backend=%q", cfg.Backend)
	}
}

// MemoryStore keeps histories in process memory. Entries are copied on the
// way in and out so no caller can mutate a stored transcript in place.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]History
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]History)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (History, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return h.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, h History) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = h.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
