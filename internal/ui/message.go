package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tuneup/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLibraryLoaded MsgKind = iota
	MsgTracksLoaded
	MsgTick
)

type libraryLoaded struct {
	sources []sourceItem
	err     error
}

type tracksLoaded struct {
	context models.PlayContext
	title   string
	err     error
}

// libraryLoadedMsg is the constructor for [MsgLibraryLoaded]
func libraryLoadedMsg(sources []sourceItem, err error) Msg {
	return Msg{kind: MsgLibraryLoaded, data: libraryLoaded{sources, err}}
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(pc models.PlayContext, title string, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksLoaded{pc, title, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}
