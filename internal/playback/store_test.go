package playback

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

func bufContains(s, sub string) bool {
	return strings.Contains(s, sub)
}

func sampleState() models.PlaybackState {
	p := newTestPlayer()
	ctx := album("A", "B", "C")
	p.Play(ctx.Tracks[0], ctx)
	p.NextTrack()
	p.ToggleShuffle()
	p.SetRepeat(models.RepeatSingle)
	return p.Snapshot()
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, shared.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := sampleState()
	if err := store.Save(ctx, "s1", state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentTrack.ID != "B" || !got.Shuffle || got.Repeat != models.RepeatSingle {
		t.Errorf("unexpected state %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, shared.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestNewRedisStore(t *testing.T) {
	t.Run("missing addr", func(t *testing.T) {
		if _, err := NewRedisStore(context.Background(), shared.RedisConfig{}); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewRedisStore(context.Background(), shared.RedisConfig{Addr: "127.0.0.1:1"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("default ttl", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		defer client.Close()
		if store := NewRedisStoreWithClient(client, 0); store.ttl != DefaultSessionTTL {
			t.Errorf("expected default ttl, got %v", store.ttl)
		}
	})

	if key := SessionKey("abc"); key != "tuneup:session:abc" {
		t.Errorf("unexpected key %s", key)
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewRedisStoreWithClient(client, time.Hour)
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		err := store.Save(ctx, "desk", sampleState())
		if err == nil || !strings.Contains(err.Error(), "failed to save session") {
			t.Errorf("expected wrapped save error, got %v", err)
		}
	})

	t.Run("Load", func(t *testing.T) {
		_, err := store.Load(ctx, "desk")
		if err == nil || !strings.Contains(err.Error(), "failed to load session") {
			t.Errorf("expected wrapped load error, got %v", err)
		}
		if errors.Is(err, shared.ErrSessionNotFound) {
			t.Error("connection errors must not read as a missing session")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, "desk")
		if err == nil || !strings.Contains(err.Error(), "failed to delete session") {
			t.Errorf("expected wrapped delete error, got %v", err)
		}
	})

	t.Run("Sessions fall back to a fresh player", func(t *testing.T) {
		sessions := NewSessions(store, nil)
		p, err := sessions.Get(ctx, "desk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Snapshot().CurrentTrack != nil {
			t.Error("expected idle player")
		}
	})
}

// TestRedisStore runs against a live server when REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv(shared.EnvRedisAddr)
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, shared.RedisConfig{Addr: addr, TTLHours: 1})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer store.Close()

	id := "test-" + time.Now().Format("150405.000000")
	defer store.Delete(ctx, id)

	if _, err := store.Load(ctx, id); !errors.Is(err, shared.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := sampleState()
	if err := store.Save(ctx, id, state); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got.CurrentTrack.ID != "B" || got.Index != state.Index || got.Repeat != models.RepeatSingle || len(got.Queue) != 3 {
		t.Errorf("unexpected state %+v", got)
	}

	ttl, err := store.client.TTL(ctx, SessionKey(id)).Result()
	if err != nil {
		t.Fatalf("failed to read ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("expected ttl within an hour, got %v", ttl)
	}
}
