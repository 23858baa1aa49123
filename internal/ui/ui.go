package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luoyiti/web-video-player/internal/catalog"
	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// InputMode is what the key handler is currently collecting.
type InputMode int

const (
	BrowseMode InputMode = iota
	AddTagMode
	RemoveTagMode
	ConfirmDeleteMode
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	engine      *catalog.Engine
	bridge      *Bridge
	unsubscribe func()
	mode        InputMode
	target      models.MediaItem
	width       int
	height      int
	list        list.Model
	input       textinput.Model
	status      catalog.Status
	notice      string
	syncing     bool
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model over engine and subscribes to its commits.
//
// Call [Model.Close] once the program exits.
func NewModel(ctx context.Context, engine *catalog.Engine, bridge *Bridge) *Model {
	if bridge == nil {
		bridge = NewBridge()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	in := textinput.New()
	in.CharLimit = 120

	m := &Model{
		ctx:    ctx,
		engine: engine,
		bridge: bridge,
		list:   l,
		input:  in,
		status: engine.Status(),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.unsubscribe = engine.Subscribe(bridge.Changed)
	m.refresh()
	return m
}

// Close detaches the model from the engine.
func (m *Model) Close() {
	m.unsubscribe()
}

// Init starts listening for engine changes.
func (m *Model) Init() tea.Cmd {
	return m.bridge.wait()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-10)
		m.help.Width = msg.Width
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgStateChanged:
			m.refresh()
			return m, m.bridge.wait()
		case MsgStatusChanged:
			m.status = msg.data.(catalog.Status)
			return m, m.bridge.wait()
		case MsgSyncDone:
			m.syncing = false
			m.status = m.engine.Status()
			if err, _ := msg.data.(error); err != nil {
				m.notice = err.Error()
			}
			return m, nil
		}

	case tea.KeyMsg:
		switch m.mode {
		case AddTagMode, RemoveTagMode:
			return m.handleInputKeys(msg)
		case ConfirmDeleteMode:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the tabs, filter, list, status line and help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderFilter())
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	switch m.mode {
	case AddTagMode, RemoveTagMode:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case ConfirmDeleteMode:
		prompt := fmt.Sprintf("Delete '%s'?", m.target.Title)
		b.WriteString(styles.warn.Render(prompt))
		b.WriteString(" ")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(styles.err.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	view := m.engine.View()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.switchTab):
		next := models.KindPhoto
		if view.Tab() == models.KindPhoto {
			next = models.KindVideo
		}
		_ = m.engine.SetTab(next)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.filter):
		m.engine.SetActiveTag(nextTag(view.TagsForActiveTab(), view.ActiveTag()))
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if item, ok := m.highlighted(); ok {
			m.engine.Select(view.Tab(), item.ID)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.addTag):
		return m, m.beginInput(AddTagMode, "tags, comma separated")

	case key.Matches(msg, m.keys.removeTag):
		item, ok := m.highlighted()
		if !ok || len(item.Tags) == 0 {
			return m, nil
		}
		return m, m.beginInput(RemoveTagMode, fmt.Sprintf("tag number 1-%d", len(item.Tags)))

	case key.Matches(msg, m.keys.remove):
		if item, ok := m.highlighted(); ok {
			m.target = item
			m.mode = ConfirmDeleteMode
		}
		return m, nil

	case key.Matches(msg, m.keys.sync):
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		return m, m.sync()

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.endInput()

		kind := m.engine.View().Tab()
		switch mode {
		case AddTagMode:
			for _, tag := range shared.ParseTags(value) {
				if err := m.engine.AddTag(m.ctx, kind, m.target.ID, tag); err != nil {
					m.notice = err.Error()
					break
				}
			}
		case RemoveTagMode:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				m.notice = fmt.Sprintf("not a tag number: %q", value)
				break
			}
			m.engine.RemoveTag(m.ctx, kind, m.target.ID, n-1)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.engine.View().Tab() == models.KindVideo {
			m.engine.DeleteVideo(m.ctx, m.target.ID)
		} else {
			m.engine.RemoveItem(models.KindPhoto, m.target.ID)
		}
		m.mode = BrowseMode
		m.refresh()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.mode = BrowseMode
	}
	return m, nil
}

func (m *Model) beginInput(mode InputMode, placeholder string) tea.Cmd {
	item, ok := m.highlighted()
	if !ok {
		return nil
	}
	m.target = item
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Prompt = "> "
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.input.Blur()
	m.input.Reset()
	m.mode = BrowseMode
}

func (m *Model) highlighted() (models.MediaItem, bool) {
	if it, ok := m.list.SelectedItem().(mediaItem); ok {
		return it.item, true
	}
	return models.MediaItem{}, false
}

// refresh rebuilds the list from the engine's current view.
func (m *Model) refresh() {
	view := m.engine.View()
	kind := view.Tab()

	var selected *int64
	if cur, ok := view.Current(kind); ok {
		selected = models.Int64(cur.ID)
	}

	m.list.Title = "Videos"
	if kind == models.KindPhoto {
		m.list.Title = "Photos"
	}
	m.list.SetItems(toListItems(view.FilteredList(kind), selected))
}

func (m *Model) sync() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg(m.engine.Sync(m.ctx))
	}
}

func (m *Model) renderTabs() string {
	tab := m.engine.View().Tab()
	render := func(kind models.Kind, label string) string {
		if kind == tab {
			return styles.activeTab.Render(label)
		}
		return styles.tab.Render(label)
	}
	return render(models.KindVideo, "Videos") + render(models.KindPhoto, "Photos")
}

func (m *Model) renderFilter() string {
	view := m.engine.View()
	if tag := view.ActiveTag(); tag != "" {
		return "Filter: " + styles.tag.Render("#"+tag)
	}
	return styles.help.Render(fmt.Sprintf("Filter: all (%d tags)", len(view.TagsForActiveTab())))
}

func (m *Model) renderStatus() string {
	msg := m.status.Message
	if msg == "" {
		msg = string(m.status.Level)
	}
	if m.syncing {
		msg += " (syncing...)"
	}
	return styles.status(m.status.Level).Render("● " + msg)
}

// nextTag cycles through tags: no filter, then each tag in order, then no filter again.
func nextTag(tags []string, current string) string {
	if len(tags) == 0 {
		return ""
	}
	if current == "" {
		return tags[0]
	}
	for i, tag := range tags {
		if tag == current && i+1 < len(tags) {
			return tags[i+1]
		}
	}
	return ""
}
