package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luoyiti/web-video-player/internal/catalog"
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
	MsgStateChanged MsgKind = iota
	MsgStatusChanged
	MsgSyncDone
)

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg() Msg {
	return Msg{kind: MsgStateChanged}
}

// statusChangedMsg is the constructor for [MsgStatusChanged]
func statusChangedMsg(status catalog.Status) Msg {
	return Msg{kind: MsgStatusChanged, data: status}
}

// syncDoneMsg is the constructor for [MsgSyncDone]
func syncDoneMsg(err error) Msg {
	return Msg{kind: MsgSyncDone, data: err}
}
