package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// DefaultKey namespaces the catalogue snapshot.
const DefaultKey = "mediaManagerStateV1"

// Snapshot field names as they appear in the stored JSON.
const (
	FieldCurrentTab     = "currentTab"
	FieldVideos         = "videos"
	FieldPhotos         = "photos"
	FieldCurrentVideoID = "currentVideoId"
	FieldCurrentPhotoID = "currentPhotoId"
	FieldActiveTag      = "activeTag"
)

// Store reads and writes the persisted snapshot.
type Store interface {
	// Load returns the stored snapshot, or false when none is usable.
	Load() (*Snapshot, bool)
	// Save persists the durable subset of state.
	Save(state models.AppState) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Snapshot is a decoded snapshot that remembers which fields were stored.
type Snapshot struct {
	CurrentTab     models.Kind
	Videos         []models.MediaItem
	Photos         []models.MediaItem
	CurrentVideoID *int64
	CurrentPhotoID *int64
	ActiveTag      string

	present map[string]bool
}

// document is the stored shape; activeTag is null when no filter is set.
type document struct {
	CurrentTab     models.Kind        `json:"currentTab"`
	Videos         []models.MediaItem `json:"videos"`
	Photos         []models.MediaItem `json:"photos"`
	CurrentVideoID *int64             `json:"currentVideoId"`
	CurrentPhotoID *int64             `json:"currentPhotoId"`
	ActiveTag      *string            `json:"activeTag"`
}

// Has reports whether field was present in the stored JSON.
func (s *Snapshot) Has(field string) bool {
	return s.present[field]
}

// Apply overrides the fields of state that were present in the stored JSON.
//
// An explicit null clears the field: selections become absent, lists become
// empty and the tag filter is removed.
func (s *Snapshot) Apply(state *models.AppState) {
	if s.Has(FieldCurrentTab) {
		state.CurrentTab = s.CurrentTab
	}
	if s.Has(FieldVideos) {
		state.Videos = cloneList(s.Videos)
	}
	if s.Has(FieldPhotos) {
		state.Photos = cloneList(s.Photos)
	}
	if s.Has(FieldCurrentVideoID) {
		state.SetSelected(models.KindVideo, s.CurrentVideoID)
	}
	if s.Has(FieldCurrentPhotoID) {
		state.SetSelected(models.KindPhoto, s.CurrentPhotoID)
	}
	if s.Has(FieldActiveTag) {
		state.ActiveTag = s.ActiveTag
	}
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: snapshot is null", shared.ErrInvalidInput)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*s = Snapshot{
		CurrentTab:     doc.CurrentTab,
		Videos:         doc.Videos,
		Photos:         doc.Photos,
		CurrentVideoID: doc.CurrentVideoID,
		CurrentPhotoID: doc.CurrentPhotoID,
		present:        make(map[string]bool, len(fields)),
	}
	if doc.ActiveTag != nil {
		s.ActiveTag = *doc.ActiveTag
	}
	for _, name := range []string{FieldCurrentTab, FieldVideos, FieldPhotos, FieldCurrentVideoID, FieldCurrentPhotoID, FieldActiveTag} {
		if _, ok := fields[name]; ok {
			s.present[name] = true
		}
	}
	if s.Videos == nil {
		s.Videos = []models.MediaItem{}
	}
	if s.Photos == nil {
		s.Photos = []models.MediaItem{}
	}
	return nil
}

// Validate rejects snapshots that cannot be applied: an unknown tab, or
// missing or duplicate item ids within a list.
func (s *Snapshot) Validate() error {
	if s.Has(FieldCurrentTab) && !s.CurrentTab.Valid() {
		return fmt.Errorf("%w: unknown tab %q", shared.ErrInvalidInput, s.CurrentTab)
	}
	for name, items := range map[string][]models.MediaItem{FieldVideos: s.Videos, FieldPhotos: s.Photos} {
		seen := make(map[int64]struct{}, len(items))
		for _, item := range items {
			if item.ID == 0 {
				return fmt.Errorf("%w: %s item without id", shared.ErrInvalidInput, name)
			}
			if _, dup := seen[item.ID]; dup {
				return fmt.Errorf("%w: duplicate %s id %d", shared.ErrInvalidInput, name, item.ID)
			}
			seen[item.ID] = struct{}{}
		}
	}
	return nil
}

// Encode serializes the durable subset of state, dropping local-only items.
func Encode(state models.AppState) ([]byte, error) {
	doc := document{
		CurrentTab:     state.CurrentTab,
		Videos:         durable(state.Videos),
		Photos:         durable(state.Photos),
		CurrentVideoID: state.CurrentVideoID,
		CurrentPhotoID: state.CurrentPhotoID,
	}
	if state.ActiveTag != "" {
		tag := state.ActiveTag
		doc.ActiveTag = &tag
	}
	return json.Marshal(doc)
}

// Decode parses and validates a stored snapshot.
func Decode(data []byte) (*Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot", shared.ErrInvalidInput)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func durable(items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.IsLocal {
			continue
		}
		out = append(out, item)
	}
	return out
}

func cloneList(items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
