package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/luoyiti/web-video-player/internal/shared"
)

const (
	// LocalIDOffset separates backend-derived item ids from locally generated ones.
	LocalIDOffset int64 = 1_000_000

	// DefaultVideoTitle is used when a video arrives without a title.
	DefaultVideoTitle = "Untitled video"
)

// Kind selects the video or photo list.
type Kind string

const (
	KindVideo Kind = "video"
	KindPhoto Kind = "photo"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindVideo || k == KindPhoto
}

func (k Kind) String() string { return string(k) }

// ParseKind parses a kind name, accepting the plural forms used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video", "videos":
		return KindVideo, nil
	case "photo", "photos":
		return KindPhoto, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidKind, s)
	}
}

// DerivedID returns the item id assigned to an item persisted under backendID.
func DerivedID(backendID int64) int64 {
	return backendID + LocalIDOffset
}

// MediaItem is a single video or photo in the catalogue.
type MediaItem struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Src         string   `json:"src"`
	Tags        []string `json:"tags"`
	BackendID   int64    `json:"backendId,omitempty"`
	IsLocal     bool     `json:"isLocal,omitempty"`
	FromBackend bool     `json:"fromBackend,omitempty"`
}

// Clone returns a copy of the item that shares no memory with it.
func (m MediaItem) Clone() MediaItem {
	out := m
	out.Tags = append(make([]string, 0, len(m.Tags)), m.Tags...)
	return out
}

// HasTag reports whether tag is attached to the item.
func (m MediaItem) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AppState is the complete client-side catalogue.
type AppState struct {
	CurrentTab     Kind        `json:"currentTab"`
	Videos         []MediaItem `json:"videos"`
	Photos         []MediaItem `json:"photos"`
	CurrentVideoID *int64      `json:"currentVideoId"`
	CurrentPhotoID *int64      `json:"currentPhotoId"`
	ActiveTag      string      `json:"activeTag"`
}

// Clone deep-copies the state.
func (s AppState) Clone() AppState {
	out := AppState{
		CurrentTab:     s.CurrentTab,
		Videos:         cloneItems(s.Videos),
		Photos:         cloneItems(s.Photos),
		CurrentVideoID: cloneID(s.CurrentVideoID),
		CurrentPhotoID: cloneID(s.CurrentPhotoID),
		ActiveTag:      s.ActiveTag,
	}
	return out
}

// Items returns the list for kind.
func (s AppState) Items(kind Kind) []MediaItem {
	if kind == KindPhoto {
		return s.Photos
	}
	return s.Videos
}

// SetItems replaces the list for kind.
func (s *AppState) SetItems(kind Kind, items []MediaItem) {
	if kind == KindPhoto {
		s.Photos = items
		return
	}
	s.Videos = items
}

// Selected returns the selection pointer for kind.
func (s AppState) Selected(kind Kind) *int64 {
	if kind == KindPhoto {
		return s.CurrentPhotoID
	}
	return s.CurrentVideoID
}

// SetSelected points the selection for kind at id, or clears it when id is nil.
func (s *AppState) SetSelected(kind Kind, id *int64) {
	id = cloneID(id)
	if kind == KindPhoto {
		s.CurrentPhotoID = id
		return
	}
	s.CurrentVideoID = id
}

// IndexOf returns the position of the item with id in the list for kind, or -1.
func (s AppState) IndexOf(kind Kind, id int64) int {
	for i, item := range s.Items(kind) {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// EmptyState returns a state with no items on the video tab.
func EmptyState() AppState {
	return AppState{
		CurrentTab: KindVideo,
		Videos:     []MediaItem{},
		Photos:     []MediaItem{},
	}
}

// DefaultState returns the demo catalogue shown on first launch.
func DefaultState() AppState {
	return AppState{
		CurrentTab: KindVideo,
		Videos: []MediaItem{
			{ID: 1, Title: "Frontend basics: player walkthrough", Src: "videos/sample1.mp4", Tags: []string{"tutorial", "frontend"}},
			{ID: 2, Title: "Product promo demo", Src: "videos/sample2.mp4", Tags: []string{"promo", "marketing"}},
			{ID: 3, Title: "Meeting recording clip", Src: "videos/sample3.mp4", Tags: []string{"meeting", "internal"}},
		},
		Photos: []MediaItem{
			{ID: 101, Title: "City skyline at sunset", Src: "photos/photo1.jpg", Tags: []string{"landscape", "city"}},
			{ID: 102, Title: "Team photo", Src: "photos/photo2.jpg", Tags: []string{"team", "memories"}},
			{ID: 103, Title: "Product shots", Src: "photos/photo3.jpg", Tags: []string{"product", "promo"}},
		},
		CurrentVideoID: Int64(1),
		CurrentPhotoID: Int64(101),
	}
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

func cloneItems(items []MediaItem) []MediaItem {
	out := make([]MediaItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// RemoteRecord is a video row as exchanged with the backend.
//
// Decoding is lenient: id accepts numbers and numeric strings (anything else
// decodes to 0), tags that are not an array decode to an empty list, and
// is_local accepts booleans or 0/1.
type RemoteRecord struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Src     string   `json:"src"`
	Tags    []string `json:"tags"`
	IsLocal bool     `json:"is_local"`
}

func (r *RemoteRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Title   json.RawMessage `json:"title"`
		Src     json.RawMessage `json:"src"`
		Tags    json.RawMessage `json:"tags"`
		IsLocal json.RawMessage `json:"is_local"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = RemoteRecord{
		ID:      decodeLenientID(raw.ID),
		Title:   decodeLenientString(raw.Title),
		Src:     decodeLenientString(raw.Src),
		Tags:    DecodeTags(raw.Tags),
		IsLocal: decodeLenientBool(raw.IsLocal),
	}
	return nil
}

// DecodeTags decodes a JSON tag array, keeping non-empty strings only.
//
// Any other input, including malformed JSON, yields an empty list.
func DecodeTags(data []byte) []string {
	var values []any
	if err := json.Unmarshal(data, &values); err != nil {
		return []string{}
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

func decodeLenientID(data []byte) int64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}

	var text string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return 0
		}
	} else {
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		return id
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	return int64(f)
}

func decodeLenientString(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

func decodeLenientBool(data []byte) bool {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return n != 0
	}
	return false
}

// CreateVideoRequest is the body of POST /api/videos.
type CreateVideoRequest struct {
	Title   string   `json:"title,omitempty"`
	Src     string   `json:"src"`
	Tags    []string `json:"tags"`
	IsLocal bool     `json:"is_local"`
}

// Video is a row of the videos table.
type Video struct {
	ID        int64
	Title     string
	Src       string
	Tags      []string
	IsLocal   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the video can be stored.
func (v *Video) Validate() error {
	if strings.TrimSpace(v.Src) == "" {
		return fmt.Errorf("%w: src is required", shared.ErrValidation)
	}
	return nil
}

// Record converts the row to its wire shape.
func (v Video) Record() RemoteRecord {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return RemoteRecord{ID: v.ID, Title: v.Title, Src: v.Src, Tags: tags, IsLocal: v.IsLocal}
}
