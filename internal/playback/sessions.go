package playback

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const saveTimeout = 2 * time.Second

type session struct {
	player      *Player
	unsubscribe func()

	// saveMu orders writes to the store; dropped is guarded by it.
	saveMu  sync.Mutex
	dropped bool
}

// persist saves the player's current snapshot. Saves for one session run one at a time and read
// the snapshot under saveMu, so the last save holds the latest state.
func (sess *session) persist(store SessionStore, id string, logger *log.Logger) {
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()
	if sess.dropped {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := store.Save(ctx, id, sess.player.Snapshot()); err != nil {
		logger.Error("failed to persist session", "error", err)
	}
}

// Sessions is a registry of players keyed by session id.
//
// A player is restored from the store on first use and its snapshot is saved back after every change.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	store    SessionStore
	logger   *log.Logger
	opts     []Option
}

// NewSessions creates a registry backed by store. A nil store keeps sessions in memory only.
func NewSessions(store SessionStore, logger *log.Logger, opts ...Option) *Sessions {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sessions{
		sessions: make(map[string]*session),
		store:    store,
		logger:   logger.With("component", "sessions"),
		opts:     opts,
	}
}

// Get returns the player for id, creating it (and restoring any stored snapshot) on first use.
func (s *Sessions) Get(ctx context.Context, id string) (*Player, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: session id is required", shared.ErrInvalidArgument)
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess.player, nil
	}

	player := NewPlayer(s.opts...)
	state, err := s.store.Load(ctx, id)
	switch {
	case err == nil:
		player.Restore(state)
		s.logger.Debug("restored session", "session", id, "queue", len(state.Queue))
	case errors.Is(err, shared.ErrSessionNotFound):
		s.logger.Debug("new session", "session", id)
	default:
		s.logger.Warn("failed to restore session, starting fresh", "session", id, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another request may have loaded the same session while the store was read
	if existing, ok := s.sessions[id]; ok {
		return existing.player, nil
	}

	logger := s.logger.With("session", id)
	sess = &session{player: player}
	sess.unsubscribe = player.Subscribe(func(models.PlaybackState) {
		sess.persist(s.store, id, logger)
	})

	s.sessions[id] = sess
	return player, nil
}

// Drop forgets the session in memory and in the store.
func (s *Sessions) Drop(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		sess.unsubscribe()
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return s.store.Delete(ctx, id)
	}

	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()
	sess.dropped = true
	return s.store.Delete(ctx, id)
}

// IDs returns the ids of the sessions loaded in this process, sorted.
func (s *Sessions) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
