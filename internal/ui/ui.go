package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/playback"
	"github.com/desertthunder/tuneup/internal/shared"
)

const (
	tickInterval = time.Second
	seekStep     = 5.0
	volumeStep   = 0.1
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	TrackListView
	QueueView
)

// Model represents the TUI application state. Playback state lives in the [playback.Player];
// the model only dispatches intents to it and renders its snapshots.
type Model struct {
	view        ViewState
	prevView    ViewState
	player      *playback.Player
	library     Library
	logger      *log.Logger
	width       int
	height      int
	sourceList  list.Model
	trackList   list.Model
	browsing    models.PlayContext
	queueCursor int
	lastTick    time.Time
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model over player and library.
func NewModel(player *playback.Player, library Library, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Model{
		view:       BrowseView,
		player:     player,
		library:    library,
		logger:     logger.With("component", "ui"),
		width:      80,
		height:     24,
		sourceList: newList(nil, "Library"),
		trackList:  newList(nil, "Tracks"),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 76, 14)
	l.Title = title
	return l
}

// Init loads the library and starts the playback clock.
func (m *Model) Init() tea.Cmd {
	m.lastTick = time.Now()
	return tea.Batch(m.loadLibrary(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadLibrary lists albums followed by playlists.
func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		albums, err := m.library.Albums()
		if err != nil {
			return libraryLoadedMsg(nil, err)
		}
		playlists, err := m.library.Playlists()
		if err != nil {
			return libraryLoadedMsg(nil, err)
		}

		sources := make([]sourceItem, 0, len(albums)+len(playlists))
		for _, a := range albums {
			sources = append(sources, albumSource(a))
		}
		for _, p := range playlists {
			sources = append(sources, playlistSource(p))
		}
		return libraryLoadedMsg(sources, nil)
	}
}

// loadTracks builds the play context for an album or playlist.
func (m *Model) loadTracks(src sourceItem) tea.Cmd {
	return func() tea.Msg {
		pc := models.PlayContext{Kind: src.kind, ID: src.id}
		switch src.kind {
		case models.ContextAlbum:
			album, err := m.library.Album(src.id)
			if err != nil {
				return tracksLoadedMsg(pc, src.title, err)
			}
			pc.Tracks = album.Tracks
		case models.ContextPlaylist:
			_, songs, err := m.library.Playlist(src.id)
			if err != nil {
				return tracksLoadedMsg(pc, src.title, err)
			}
			pc.Tracks = make([]models.Song, len(songs))
			for i, s := range songs {
				pc.Tracks[i] = *s
			}
		}
		return tracksLoadedMsg(pc, src.title, nil)
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := m.listSize()
		m.sourceList.SetSize(w, h)
		m.trackList.SetSize(w, h)
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLibraryLoaded:
		data := msg.data.(libraryLoaded)
		if data.err != nil {
			m.err = data.err
			m.logger.Error("failed to load library", "error", data.err)
			return m, nil
		}
		items := make([]list.Item, len(data.sources))
		for i, s := range data.sources {
			items[i] = s
		}
		m.sourceList.SetItems(items)
		return m, nil

	case MsgTracksLoaded:
		data := msg.data.(tracksLoaded)
		if data.err != nil {
			m.status = fmt.Sprintf("Could not open %s: %v", data.title, data.err)
			m.logger.Warn("failed to load tracks", "source", data.context.ID, "error", data.err)
			return m, nil
		}
		m.browsing = data.context
		items := make([]list.Item, len(data.context.Tracks))
		for i, s := range data.context.Tracks {
			items[i] = songItem{song: s}
		}
		m.trackList.SetItems(items)
		m.trackList.Title = data.title
		m.trackList.Select(0)
		m.view = TrackListView
		m.status = ""
		return m, nil

	case MsgTick:
		now := msg.data.(time.Time)
		if !m.lastTick.IsZero() && now.After(m.lastTick) {
			m.player.Advance(now.Sub(m.lastTick))
		}
		m.lastTick = now
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		m.player.TogglePlayPause()
	case key.Matches(msg, m.keys.next):
		m.player.NextTrack()
	case key.Matches(msg, m.keys.previous):
		m.player.PreviousTrack()
	case key.Matches(msg, m.keys.shuffle):
		m.player.ToggleShuffle()
	case key.Matches(msg, m.keys.repeat):
		m.status = "Repeat: " + m.player.ToggleRepeat().String()
	case key.Matches(msg, m.keys.volUp):
		m.player.SetVolume(m.player.Snapshot().Volume + volumeStep)
	case key.Matches(msg, m.keys.volDown):
		m.player.SetVolume(m.player.Snapshot().Volume - volumeStep)
	case key.Matches(msg, m.keys.seekFwd):
		m.player.SeekTo(m.player.Snapshot().CurrentTime + seekStep)
	case key.Matches(msg, m.keys.seekBack):
		m.player.SeekTo(m.player.Snapshot().CurrentTime - seekStep)
	case key.Matches(msg, m.keys.clear):
		m.player.ClearQueue()
		m.queueCursor = 0
	case key.Matches(msg, m.keys.queue):
		if m.view == QueueView {
			m.view = m.prevView
		} else {
			m.prevView = m.view
			m.view = QueueView
			m.queueCursor = max(m.player.Snapshot().Index, 0)
		}
	default:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case QueueView:
			return m.handleQueueKeys(msg)
		}
	}
	return m, nil
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if src, ok := m.sourceList.SelectedItem().(sourceItem); ok {
			return m, m.loadTracks(src)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = BrowseView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.trackList.SelectedItem().(songItem); ok {
			m.player.Play(item.song, m.browsing)
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.enqueue):
		if item, ok := m.trackList.SelectedItem().(songItem); ok {
			m.player.AddToQueue(item.song)
			m.status = "Queued " + item.song.Title
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleQueueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	queue := m.player.Snapshot().Queue
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.prevView
	case key.Matches(msg, m.keys.up):
		m.queueCursor = max(m.queueCursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.queueCursor = min(m.queueCursor+1, max(len(queue)-1, 0))
	case key.Matches(msg, m.keys.remove):
		if m.queueCursor < len(queue) {
			if err := m.player.RemoveFromQueue(queue[m.queueCursor].ID); err != nil {
				m.status = err.Error()
			}
			m.queueCursor = min(m.queueCursor, max(len(queue)-2, 0))
		}
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView:
		m.sourceList, cmd = m.sourceList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) filtering() bool {
	switch m.view {
	case BrowseView:
		return m.sourceList.FilterState() == list.Filtering
	case TrackListView:
		return m.trackList.FilterState() == list.Filtering
	}
	return false
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 20), max(m.height-10, 5)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case BrowseView:
		body = m.sourceList.View()
	case TrackListView:
		body = m.trackList.View()
	case QueueView:
		body = m.renderQueue()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(styles.bar.Width(max(m.width-2, 20)).Render(m.renderNowPlaying()))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.mode.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) renderQueue() string {
	s := m.player.Snapshot()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Queue (%d)", len(s.Queue))))
	b.WriteString("\n")
	if len(s.Queue) == 0 {
		b.WriteString(styles.help.Render("Queue is empty"))
		return b.String()
	}

	for i, song := range s.Queue {
		cursor := "  "
		if i == m.queueCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%2d. %s - %s (%s)", cursor, i+1, song.Title, song.Artist, shared.FormatDuration(song.Duration))
		if i == s.Index {
			line = styles.current.Render(line + "  ♪")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderNowPlaying() string {
	s := m.player.Snapshot()
	if s.CurrentTrack == nil {
		return styles.help.Render("Nothing playing")
	}

	icon := "⏸"
	if s.IsPlaying {
		icon = "▶"
	}
	track := styles.playing.Render(fmt.Sprintf("%s %s - %s", icon, s.CurrentTrack.Title, s.CurrentTrack.Artist))
	position := fmt.Sprintf("%s / %s", shared.FormatDuration(int(s.CurrentTime)), shared.FormatDuration(s.CurrentTrack.Duration))

	var modes []string
	modes = append(modes, fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5)))
	if s.Shuffle {
		modes = append(modes, "shuffle")
	}
	if s.Repeat != models.RepeatOff {
		modes = append(modes, "repeat "+s.Repeat.String())
	}
	return fmt.Sprintf("%s  %s  %s", track, position, styles.mode.Render(strings.Join(modes, " • ")))
}
