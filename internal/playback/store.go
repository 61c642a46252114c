package playback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	sessionKeyPrefix  = "tuneup:session:"
)

// SessionStore persists player snapshots by session id.
type SessionStore interface {
	// Load returns [shared.ErrSessionNotFound] when nothing is stored for id.
	Load(ctx context.Context, id string) (models.PlaybackState, error)
	Save(ctx context.Context, id string, state models.PlaybackState) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots in a process-local map.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]models.PlaybackState
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]models.PlaybackState)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (models.PlaybackState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[id]
	if !ok {
		return models.PlaybackState{}, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return state, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, state models.PlaybackState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

// RedisStore keeps JSON snapshots in Redis under "tuneup:session:<id>". Every save resets the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server in cfg and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg shared.RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis addr", shared.ErrMissingConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", shared.ErrServiceUnavailable, err)
	}

	return NewRedisStoreWithClient(client, time.Duration(cfg.TTLHours)*time.Hour), nil
}

// NewRedisStoreWithClient wraps an existing client. A non-positive ttl uses [DefaultSessionTTL].
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// SessionKey returns the Redis key a session is stored under.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (models.PlaybackState, error) {
	data, err := r.client.Get(ctx, SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PlaybackState{}, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return models.PlaybackState{}, fmt.Errorf("failed to load session: %w", err)
	}

	var state models.PlaybackState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.PlaybackState{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return state, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, state models.PlaybackState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, SessionKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
