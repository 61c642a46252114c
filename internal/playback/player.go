package playback

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const (
	// SkipBackThreshold is how far into a track PreviousTrack restarts it instead of going back.
	SkipBackThreshold = 3.0
	DefaultVolume     = 1.0
	maxHistory        = 100
)

type listener struct {
	id int
	fn func(models.PlaybackState)
}

// Player is the playback state container for one session.
type Player struct {
	mu sync.Mutex

	current     *models.Song
	isPlaying   bool
	currentTime float64
	volume      float64
	shuffle     bool
	repeat      models.RepeatMode
	queue       []models.Song
	index       int
	context     models.PlayContext

	history []int           // queue indices NextTrack moved away from
	played  map[string]bool // song ids played since shuffle was enabled or the queue was rebuilt
	rng     *rand.Rand

	listeners []listener
	nextID    int
}

// Option configures a [Player].
type Option func(*Player)

// WithRand sets the random source used for shuffle picks.
func WithRand(r *rand.Rand) Option {
	return func(p *Player) { p.rng = r }
}

// WithVolume sets the starting volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(p *Player) { p.volume = clamp(v, 0, 1) }
}

// NewPlayer creates an idle player with an empty queue.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		volume: DefaultVolume,
		index:  -1,
		queue:  []models.Song{},
		played: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return p
}

// Play starts track and replaces the queue with the tracks of pc.
//
// When track is not part of pc.Tracks it is placed at the front of the queue.
func (p *Player) Play(track models.Song, pc models.PlayContext) {
	p.update(func() bool {
		queue := slices.Clone(pc.Tracks)
		idx := slices.IndexFunc(queue, func(s models.Song) bool { return s.ID == track.ID })
		if idx < 0 {
			queue = append([]models.Song{track}, queue...)
			idx = 0
		}

		p.queue = queue
		p.context = models.PlayContext{Kind: pc.Kind, ID: pc.ID}
		if p.context.Kind == "" {
			p.context.Kind = models.ContextSingle
		}
		p.history = nil
		p.played = make(map[string]bool)
		p.index = -1
		p.moveTo(idx, false)
		return true
	})
}

// TogglePlayPause flips the play/pause flag. It does nothing without a current track.
func (p *Player) TogglePlayPause() {
	p.update(func() bool {
		if p.current == nil {
			return false
		}
		p.isPlaying = !p.isPlaying
		return true
	})
}

// NextTrack advances playback according to the repeat and shuffle modes.
func (p *Player) NextTrack() {
	p.update(p.next)
}

// PreviousTrack restarts the current track when it has played past [SkipBackThreshold],
// otherwise returns to the track played before it.
func (p *Player) PreviousTrack() {
	p.update(func() bool {
		if p.current == nil {
			return false
		}

		if p.currentTime > SkipBackThreshold || p.repeat == models.RepeatSingle || p.index < 0 {
			p.currentTime = 0
			return true
		}

		if n := len(p.history); n > 0 {
			prev := p.history[n-1]
			p.history = p.history[:n-1]
			p.moveTo(prev, false)
			return true
		}

		switch {
		case p.index > 0:
			p.moveTo(p.index-1, false)
		case p.repeat == models.RepeatAll && len(p.queue) > 0:
			p.moveTo(len(p.queue)-1, false)
		default:
			return false
		}
		return true
	})
}

// RemoveFromQueue removes the track with id from the queue.
//
// The current element is preferred when several entries share the id. Removing the current track moves
// playback to the element that followed it; when it was last, repeat all wraps to the first element and
// any other mode stops playback.
func (p *Player) RemoveFromQueue(id string) error {
	var err error
	p.update(func() bool {
		var i int
		if p.index >= 0 && p.queue[p.index].ID == id {
			i = p.index
		} else {
			i = slices.IndexFunc(p.queue, func(s models.Song) bool { return s.ID == id })
		}
		if i < 0 {
			err = fmt.Errorf("%w: %s is not queued", shared.ErrTrackNotFound, id)
			return false
		}

		p.queue = slices.Delete(p.queue, i, i+1)
		p.history = removeIndex(p.history, i)

		switch {
		case i < p.index:
			p.index--
		case i == p.index:
			p.index = -1
			switch {
			case i < len(p.queue):
				p.moveTo(i, false)
			case p.repeat == models.RepeatAll && len(p.queue) > 0:
				p.moveTo(0, false)
			default:
				p.stop()
			}
		}
		return true
	})
	return err
}

// ClearQueue empties the queue. The current track keeps its play state.
func (p *Player) ClearQueue() {
	p.update(func() bool {
		p.queue = []models.Song{}
		p.index = -1
		p.history = nil
		p.played = make(map[string]bool)
		if p.current != nil {
			p.played[p.current.ID] = true
		}
		return true
	})
}

// AddToQueue appends song to the end of the queue.
func (p *Player) AddToQueue(song models.Song) {
	p.update(func() bool {
		p.queue = append(p.queue, song)
		return true
	})
}

// PlayNext inserts song directly after the current track.
func (p *Player) PlayNext(song models.Song) {
	p.update(func() bool {
		at := p.index + 1
		p.queue = slices.Insert(p.queue, at, song)
		for i, h := range p.history {
			if h >= at {
				p.history[i] = h + 1
			}
		}
		return true
	})
}

// ToggleShuffle flips shuffle. The queue order is left as is.
func (p *Player) ToggleShuffle() {
	p.update(func() bool {
		p.shuffle = !p.shuffle
		if p.shuffle {
			p.played = make(map[string]bool)
			if p.current != nil {
				p.played[p.current.ID] = true
			}
		}
		return true
	})
}

// ToggleRepeat cycles off -> all -> single -> off and returns the new mode.
func (p *Player) ToggleRepeat() models.RepeatMode {
	var mode models.RepeatMode
	p.update(func() bool {
		p.repeat = p.repeat.Next()
		mode = p.repeat
		return true
	})
	return mode
}

// SetRepeat sets the repeat mode directly.
func (p *Player) SetRepeat(mode models.RepeatMode) {
	p.update(func() bool {
		if p.repeat == mode {
			return false
		}
		p.repeat = mode
		return true
	})
}

// SeekTo moves the position of the current track, clamped to [0, duration].
func (p *Player) SeekTo(seconds float64) {
	p.update(func() bool {
		if p.current == nil || math.IsNaN(seconds) {
			return false
		}
		p.currentTime = clamp(seconds, 0, float64(p.current.Duration))
		return true
	})
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(level float64) {
	p.update(func() bool {
		if math.IsNaN(level) {
			return false
		}
		p.volume = clamp(level, 0, 1)
		return true
	})
}

// Advance moves the position forward by elapsed while playing. Reaching the end of the track
// behaves like NextTrack.
func (p *Player) Advance(elapsed time.Duration) {
	p.update(func() bool {
		if !p.isPlaying || p.current == nil || elapsed <= 0 {
			return false
		}

		p.currentTime += elapsed.Seconds()
		duration := float64(p.current.Duration)
		if duration > 0 && p.currentTime >= duration {
			p.currentTime = duration
			p.next()
		}
		return true
	})
}

// Snapshot returns a copy of the player's state.
func (p *Player) Snapshot() models.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Restore replaces the player's state with s. An index that does not point at the current
// track is corrected, or reset to -1 when the track is not queued.
func (p *Player) Restore(s models.PlaybackState) {
	p.update(func() bool {
		p.queue = slices.Clone(s.Queue)
		if p.queue == nil {
			p.queue = []models.Song{}
		}
		p.isPlaying = s.IsPlaying
		p.currentTime = s.CurrentTime
		p.volume = clamp(s.Volume, 0, 1)
		p.shuffle = s.Shuffle
		p.repeat = s.Repeat
		p.context = models.PlayContext{Kind: s.Context.Kind, ID: s.Context.ID}
		p.current = nil
		p.index = -1

		if s.CurrentTrack != nil {
			cur := *s.CurrentTrack
			p.current = &cur
			switch {
			case s.Index >= 0 && s.Index < len(p.queue) && p.queue[s.Index].ID == cur.ID:
				p.index = s.Index
			default:
				p.index = slices.IndexFunc(p.queue, func(song models.Song) bool { return song.ID == cur.ID })
			}
		} else {
			p.isPlaying = false
		}

		p.history = p.history[:0]
		for _, h := range s.History {
			if h >= 0 && h < len(p.queue) {
				p.history = append(p.history, h)
			}
		}

		p.played = make(map[string]bool, len(s.Played))
		for _, id := range s.Played {
			p.played[id] = true
		}
		return true
	})
}

// Subscribe registers fn to receive a snapshot after every state change and returns a function that
// removes it. fn runs on the goroutine that made the change, after the player's lock is released.
func (p *Player) Subscribe(fn func(models.PlaybackState)) (unsubscribe func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listener{id: id, fn: fn})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.listeners = slices.DeleteFunc(p.listeners, func(l listener) bool { return l.id == id })
	}
}

// update runs fn under the lock and, when it reports a change, notifies listeners outside the lock.
func (p *Player) update(fn func() bool) {
	p.mu.Lock()
	if !fn() {
		p.mu.Unlock()
		return
	}
	snap := p.snapshot()
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		l.fn(snap)
	}
}

// next implements NextTrack; the lock must be held.
func (p *Player) next() bool {
	if p.current == nil && len(p.queue) == 0 {
		return false
	}

	if p.repeat == models.RepeatSingle && p.current != nil {
		p.currentTime = 0
		p.isPlaying = true
		return true
	}

	if len(p.queue) == 0 {
		p.isPlaying = false
		return true
	}

	if p.shuffle {
		candidates := p.unplayed()
		if len(candidates) == 0 {
			if p.repeat != models.RepeatAll {
				p.endOfQueue()
				return true
			}
			p.played = make(map[string]bool)
			if p.current != nil {
				p.played[p.current.ID] = true
			}
			candidates = p.unplayed()
			if len(candidates) == 0 {
				candidates = []int{max(p.index, 0)}
			}
		}
		p.moveTo(candidates[p.rng.IntN(len(candidates))], true)
		return true
	}

	switch {
	case p.index+1 < len(p.queue):
		p.moveTo(p.index+1, true)
	case p.repeat == models.RepeatAll:
		p.moveTo(0, true)
	default:
		p.endOfQueue()
	}
	return true
}

// unplayed returns the queue indices, other than the current one, whose song has not been played.
func (p *Player) unplayed() []int {
	var out []int
	for i, s := range p.queue {
		if i != p.index && !p.played[s.ID] {
			out = append(out, i)
		}
	}
	return out
}

// moveTo makes queue[i] the current track from position 0 and starts playing it.
func (p *Player) moveTo(i int, remember bool) {
	if remember && p.index >= 0 {
		p.pushHistory(p.index)
	}
	p.index = i
	cur := p.queue[i]
	p.current = &cur
	p.currentTime = 0
	p.isPlaying = true
	p.played[cur.ID] = true
}

// endOfQueue stops on the current track. Its index is remembered so PreviousTrack lands on it again.
func (p *Player) endOfQueue() {
	p.isPlaying = false
	if p.index >= 0 {
		p.pushHistory(p.index)
	}
}

func (p *Player) stop() {
	p.current = nil
	p.isPlaying = false
	p.currentTime = 0
	p.index = -1
}

func (p *Player) pushHistory(i int) {
	p.history = append(p.history, i)
	if len(p.history) > maxHistory {
		p.history = slices.Delete(p.history, 0, len(p.history)-maxHistory)
	}
}

func (p *Player) snapshot() models.PlaybackState {
	s := models.PlaybackState{
		IsPlaying:   p.isPlaying,
		CurrentTime: p.currentTime,
		Volume:      p.volume,
		Shuffle:     p.shuffle,
		Repeat:      p.repeat,
		Queue:       slices.Clone(p.queue),
		Index:       p.index,
		Context:     p.context,
		History:     slices.Clone(p.history),
	}
	if s.Queue == nil {
		s.Queue = []models.Song{}
	}
	if p.current != nil {
		cur := *p.current
		s.CurrentTrack = &cur
	}
	for id := range p.played {
		s.Played = append(s.Played, id)
	}
	slices.Sort(s.Played)
	return s
}

// removeIndex drops entries equal to i and shifts entries above i down by one.
func removeIndex(history []int, i int) []int {
	out := history[:0]
	for _, h := range history {
		switch {
		case h == i:
			continue
		case h > i:
			out = append(out, h-1)
		default:
			out = append(out, h)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
