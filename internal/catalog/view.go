package catalog

import (
	"sort"

	"github.com/luoyiti/web-video-player/internal/models"
)

// View derives what front ends display from a state copy. It never mutates
// the state and performs no I/O.
type View struct {
	state models.AppState
}

// LibraryEntry is one card of the combined library grid.
type LibraryEntry struct {
	Kind models.Kind
	Item models.MediaItem
}

// NewView wraps state; the caller must not modify it afterwards.
func NewView(state models.AppState) View {
	return View{state: state}
}

// Tab returns the active tab.
func (v View) Tab() models.Kind { return v.state.CurrentTab }

// ActiveTag returns the tag filter, or "" when none is set.
func (v View) ActiveTag() string { return v.state.ActiveTag }

// Items returns the unfiltered list for kind.
func (v View) Items(kind models.Kind) []models.MediaItem {
	return v.state.Items(kind)
}

// CurrentVideo returns the selected video.
func (v View) CurrentVideo() (models.MediaItem, bool) {
	return v.Current(models.KindVideo)
}

// CurrentPhoto returns the selected photo.
func (v View) CurrentPhoto() (models.MediaItem, bool) {
	return v.Current(models.KindPhoto)
}

// Current returns the selected item of kind.
func (v View) Current(kind models.Kind) (models.MediaItem, bool) {
	sel := v.state.Selected(kind)
	if sel == nil {
		return models.MediaItem{}, false
	}
	for _, item := range v.state.Items(kind) {
		if item.ID == *sel {
			return item, true
		}
	}
	return models.MediaItem{}, false
}

// TagsForActiveTab returns the sorted distinct tags of the active tab's items.
func (v View) TagsForActiveTab() []string {
	return v.TagsFor(v.state.CurrentTab)
}

// TagsFor returns the sorted distinct tags of the items of kind.
func (v View) TagsFor(kind models.Kind) []string {
	return distinctTags(v.state.Items(kind))
}

// AllTags returns the sorted distinct tags across videos and photos.
func (v View) AllTags() []string {
	return distinctTags(v.state.Videos, v.state.Photos)
}

// FilteredList returns the items of kind carrying the active tag, or all of them when no filter is set.
func (v View) FilteredList(kind models.Kind) []models.MediaItem {
	out := []models.MediaItem{}
	for _, item := range v.state.Items(kind) {
		if v.state.ActiveTag == "" || item.HasTag(v.state.ActiveTag) {
			out = append(out, item)
		}
	}
	return out
}

// Library returns videos then photos, filtered by the active tag.
func (v View) Library() []LibraryEntry {
	out := []LibraryEntry{}
	for _, kind := range []models.Kind{models.KindVideo, models.KindPhoto} {
		for _, item := range v.FilteredList(kind) {
			out = append(out, LibraryEntry{Kind: kind, Item: item})
		}
	}
	return out
}

func distinctTags(lists ...[]models.MediaItem) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, items := range lists {
		for _, item := range items {
			for _, tag := range item.Tags {
				if _, ok := seen[tag]; ok {
					continue
				}
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
