package ui

import (
	"context"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luoyiti/web-video-player/internal/catalog"
	"github.com/luoyiti/web-video-player/internal/models"
)

func setupModel(t *testing.T) (*Model, *catalog.Engine) {
	t.Helper()

	engine := catalog.New(catalog.Options{Defaults: models.DefaultState()})
	m := NewModel(context.Background(), engine, nil)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, engine
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestModel(t *testing.T) {
	t.Run("Initial List", func(t *testing.T) {
		m, _ := setupModel(t)

		if got := len(m.list.Items()); got != 3 {
			t.Fatalf("expected 3 videos, got %d", got)
		}
		if m.list.Title != "Videos" {
			t.Errorf("expected Videos title, got %q", m.list.Title)
		}
		first := m.list.Items()[0].(mediaItem)
		if !first.selected {
			t.Error("expected the current video to be marked")
		}
	})

	t.Run("Switch Tab", func(t *testing.T) {
		m, engine := setupModel(t)
		press(m, "tab")

		if engine.State().CurrentTab != models.KindPhoto {
			t.Fatalf("expected photo tab, got %s", engine.State().CurrentTab)
		}
		if m.list.Title != "Photos" {
			t.Errorf("expected Photos title, got %q", m.list.Title)
		}

		press(m, "tab")
		if engine.State().CurrentTab != models.KindVideo {
			t.Errorf("expected video tab again")
		}
	})

	t.Run("Cycle Filter", func(t *testing.T) {
		m, engine := setupModel(t)
		tags := engine.View().TagsForActiveTab()

		press(m, "f")
		if got := engine.State().ActiveTag; got != tags[0] {
			t.Fatalf("expected filter %q, got %q", tags[0], got)
		}
		if got := len(m.list.Items()); got != 1 {
			t.Errorf("expected 1 filtered item, got %d", got)
		}

		for range tags {
			press(m, "f")
		}
		if got := engine.State().ActiveTag; got != "" {
			t.Errorf("expected filter to wrap to none, got %q", got)
		}
	})

	t.Run("Select", func(t *testing.T) {
		m, engine := setupModel(t)
		press(m, "down", "enter")

		second := engine.State().Videos[1].ID
		if cur := engine.State().CurrentVideoID; cur == nil || *cur != second {
			t.Errorf("expected current video %d, got %v", second, cur)
		}
	})

	t.Run("Add Tags", func(t *testing.T) {
		m, engine := setupModel(t)
		press(m, "a")
		if m.mode != AddTagMode {
			t.Fatalf("expected add tag mode, got %v", m.mode)
		}

		typeText(m, "news, tutorial，extra")
		press(m, "enter")

		if m.mode != BrowseMode {
			t.Errorf("expected browse mode after enter")
		}
		want := []string{"tutorial", "frontend", "news", "extra"}
		if got := engine.State().Videos[0].Tags; !reflect.DeepEqual(got, want) {
			t.Errorf("expected tags %v, got %v", want, got)
		}
	})

	t.Run("Remove Tag", func(t *testing.T) {
		m, engine := setupModel(t)
		press(m, "x")
		typeText(m, "1")
		press(m, "enter")

		if got := engine.State().Videos[0].Tags; !reflect.DeepEqual(got, []string{"frontend"}) {
			t.Errorf("expected [frontend], got %v", got)
		}

		press(m, "x")
		typeText(m, "nope")
		press(m, "enter")
		if m.notice == "" {
			t.Error("expected a notice for a non-numeric tag number")
		}
	})

	t.Run("Cancel Input", func(t *testing.T) {
		m, engine := setupModel(t)
		press(m, "a")
		typeText(m, "ignored")
		press(m, "esc")

		if m.mode != BrowseMode {
			t.Errorf("expected browse mode after esc")
		}
		if got := engine.State().Videos[0].Tags; len(got) != 2 {
			t.Errorf("expected tags unchanged, got %v", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		m, engine := setupModel(t)

		press(m, "d", "n")
		if len(engine.State().Videos) != 3 {
			t.Fatal("expected n to cancel the delete")
		}

		press(m, "d", "y")
		if len(engine.State().Videos) != 2 {
			t.Fatalf("expected one video deleted, got %d left", len(engine.State().Videos))
		}
		if got := len(m.list.Items()); got != 2 {
			t.Errorf("expected list to shrink to 2, got %d", got)
		}

		press(m, "tab", "d", "y")
		if len(engine.State().Photos) != 2 {
			t.Errorf("expected one photo removed, got %d left", len(engine.State().Photos))
		}
	})

	t.Run("Sync Offline", func(t *testing.T) {
		m, _ := setupModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
		if cmd == nil || !m.syncing {
			t.Fatal("expected a sync command")
		}

		m.Update(cmd())
		if m.syncing {
			t.Error("expected syncing to finish")
		}
		if m.notice == "" {
			t.Error("expected a notice when no backend is configured")
		}
	})

	t.Run("Bridge", func(t *testing.T) {
		m, engine := setupModel(t)
		cmd := m.Init()

		engine.SetActiveTag("promo")
		msg := cmd()
		if got, ok := msg.(Msg); !ok || got.kind != MsgStateChanged {
			t.Fatalf("expected state changed message, got %#v", msg)
		}

		m.bridge.OnStatus(catalog.Status{Level: catalog.LevelError, Message: "down"})
		_, next := m.Update(m.bridge.wait()())
		if m.status.Message != "down" {
			t.Errorf("expected status message to update, got %q", m.status.Message)
		}
		if next == nil {
			t.Error("expected the model to keep waiting for changes")
		}
	})

	t.Run("View", func(t *testing.T) {
		m, _ := setupModel(t)
		out := m.View()

		for _, want := range []string{"Videos", "Photos", "Filter: all"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}

		press(m, "d")
		if !strings.Contains(m.View(), "Delete '") {
			t.Error("expected delete confirmation in view")
		}
	})
}

func TestNextTag(t *testing.T) {
	tags := []string{"a", "b"}
	tc := []struct {
		current string
		want    string
	}{
		{"", "a"},
		{"a", "b"},
		{"b", ""},
		{"gone", ""},
	}

	for _, tt := range tc {
		if got := nextTag(tags, tt.current); got != tt.want {
			t.Errorf("nextTag(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := nextTag(nil, "a"); got != "" {
		t.Errorf("expected empty with no tags, got %q", got)
	}
}
