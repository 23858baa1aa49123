package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/luoyiti/web-video-player/internal/models"
)

var _ list.Item = mediaItem{}

// mediaItem wraps [models.MediaItem] to implement [list.Item].
type mediaItem struct {
	item     models.MediaItem
	selected bool
}

func (i mediaItem) FilterValue() string { return i.item.Title }
func (i mediaItem) Title() string {
	if i.selected {
		return "▶ " + i.item.Title
	}
	return i.item.Title
}

func (i mediaItem) Description() string {
	parts := []string{i.item.Src}
	switch {
	case i.item.IsLocal:
		parts = append(parts, "local")
	case i.item.BackendID > 0:
		parts = append(parts, "synced")
	}
	if len(i.item.Tags) > 0 {
		tags := make([]string, len(i.item.Tags))
		for n, tag := range i.item.Tags {
			tags[n] = "#" + tag
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, " • ")
}

// toListItems wraps items, marking the one whose id is selected.
func toListItems(items []models.MediaItem, selected *int64) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = mediaItem{item: item, selected: selected != nil && *selected == item.ID}
	}
	return out
}
