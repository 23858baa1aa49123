package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luoyiti/web-video-player/internal/catalog"
)

// Bridge forwards engine commits and status changes into the bubbletea loop.
//
// Wire [Bridge.OnStatus] into [catalog.Options.OnStatus] and pass the bridge to
// [NewModel], which subscribes [Bridge.Changed] to the engine.
type Bridge struct {
	changes chan struct{}
	status  chan catalog.Status
}

// NewBridge creates a [Bridge]. Bursts of commits coalesce into one message.
func NewBridge() *Bridge {
	return &Bridge{
		changes: make(chan struct{}, 1),
		status:  make(chan catalog.Status, 8),
	}
}

// Changed records that the engine committed.
func (b *Bridge) Changed() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// OnStatus queues a status update, dropping it when the UI lags behind.
func (b *Bridge) OnStatus(s catalog.Status) {
	select {
	case b.status <- s:
	default:
	}
}

// wait blocks until the next commit or status change.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changes:
			return stateChangedMsg()
		case s := <-b.status:
			return statusChangedMsg(s)
		}
	}
}
