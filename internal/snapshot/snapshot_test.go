package snapshot

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/luoyiti/web-video-player/internal/models"
)

func stateWithLocal() models.AppState {
	s := models.DefaultState()
	s.Videos = append([]models.MediaItem{
		{ID: 1700000000000, Title: "local", Src: "blob:http://localhost/x", Tags: []string{"tmp"}, IsLocal: true},
	}, s.Videos...)
	s.Photos = append(s.Photos, models.MediaItem{ID: 555, Title: "local photo", Src: "blob:p", Tags: []string{}, IsLocal: true})
	s.CurrentTab = models.KindPhoto
	s.ActiveTag = "promo"
	s.CurrentPhotoID = models.Int64(102)
	return s
}

func TestEncode(t *testing.T) {
	data, err := Encode(stateWithLocal())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("encoded snapshot is not an object: %v", err)
	}

	want := []string{FieldCurrentTab, FieldVideos, FieldPhotos, FieldCurrentVideoID, FieldCurrentPhotoID, FieldActiveTag}
	if len(fields) != len(want) {
		t.Errorf("expected %d fields, got %d: %s", len(want), len(fields), data)
	}
	for _, name := range want {
		if _, ok := fields[name]; !ok {
			t.Errorf("expected field %s in snapshot", name)
		}
	}

	t.Run("empty tag encodes as null", func(t *testing.T) {
		s := models.DefaultState()
		data, _ := Encode(s)
		var fields map[string]json.RawMessage
		json.Unmarshal(data, &fields)
		if string(fields[FieldActiveTag]) != "null" {
			t.Errorf("expected activeTag null, got %s", fields[FieldActiveTag])
		}
	})
}

func TestRoundTrip(t *testing.T) {
	original := stateWithLocal()

	store := NewMemoryStore()
	if err := store.Save(original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap, ok := store.Load()
	if !ok {
		t.Fatal("expected snapshot to load")
	}

	restored := models.EmptyState()
	snap.Apply(&restored)

	for _, v := range restored.Videos {
		if v.IsLocal {
			t.Errorf("local video %d survived the round trip", v.ID)
		}
	}
	for _, p := range restored.Photos {
		if p.IsLocal {
			t.Errorf("local photo %d survived the round trip", p.ID)
		}
	}

	if !reflect.DeepEqual(restored.Videos, original.Videos[1:]) {
		t.Errorf("videos = %+v, want %+v", restored.Videos, original.Videos[1:])
	}
	if !reflect.DeepEqual(restored.Photos, original.Photos[:3]) {
		t.Errorf("photos = %+v, want %+v", restored.Photos, original.Photos[:3])
	}
	if restored.CurrentTab != original.CurrentTab {
		t.Errorf("currentTab = %s, want %s", restored.CurrentTab, original.CurrentTab)
	}
	if restored.ActiveTag != original.ActiveTag {
		t.Errorf("activeTag = %q, want %q", restored.ActiveTag, original.ActiveTag)
	}
	if *restored.CurrentVideoID != *original.CurrentVideoID || *restored.CurrentPhotoID != *original.CurrentPhotoID {
		t.Errorf("selection = %d/%d, want %d/%d", *restored.CurrentVideoID, *restored.CurrentPhotoID, *original.CurrentVideoID, *original.CurrentPhotoID)
	}
}

func TestApply(t *testing.T) {
	t.Run("only present fields override", func(t *testing.T) {
		snap, err := Decode([]byte(`{"activeTag":"city","currentTab":"photo"}`))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}

		state := models.DefaultState()
		snap.Apply(&state)

		if state.ActiveTag != "city" || state.CurrentTab != models.KindPhoto {
			t.Errorf("expected overrides to apply, got tab=%s tag=%q", state.CurrentTab, state.ActiveTag)
		}
		if len(state.Videos) != 3 || len(state.Photos) != 3 {
			t.Error("absent lists must keep their defaults")
		}
		if state.CurrentVideoID == nil || *state.CurrentVideoID != 1 {
			t.Error("absent selection must keep its default")
		}
	})

	t.Run("explicit nulls override", func(t *testing.T) {
		snap, err := Decode([]byte(`{"currentVideoId":null,"activeTag":null,"photos":null}`))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}

		state := models.DefaultState()
		state.ActiveTag = "promo"
		snap.Apply(&state)

		if state.CurrentVideoID != nil {
			t.Errorf("expected video selection cleared, got %d", *state.CurrentVideoID)
		}
		if state.ActiveTag != "" {
			t.Errorf("expected tag filter cleared, got %q", state.ActiveTag)
		}
		if state.Photos == nil || len(state.Photos) != 0 {
			t.Errorf("expected empty photo list, got %#v", state.Photos)
		}
	})

	t.Run("applied lists are copies", func(t *testing.T) {
		snap, _ := Decode([]byte(`{"videos":[{"id":1,"title":"a","src":"a","tags":["x"]}]}`))

		first := models.EmptyState()
		snap.Apply(&first)
		first.Videos[0].Tags[0] = "changed"

		second := models.EmptyState()
		snap.Apply(&second)
		if second.Videos[0].Tags[0] != "x" {
			t.Error("Apply must not share item storage between states")
		}
	})
}

func TestDecodeMalformed(t *testing.T) {
	tc := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"videos": [`},
		{"not an object", `[1,2,3]`},
		{"null", `null`},
		{"empty", ``},
		{"unknown tab", `{"currentTab":"audio"}`},
		{"null tab", `{"currentTab":null}`},
		{"duplicate video ids", `{"videos":[{"id":1,"src":"a"},{"id":1,"src":"b"}]}`},
		{"missing photo id", `{"photos":[{"title":"x","src":"a"}]}`},
		{"wrong field type", `{"videos":"nope"}`},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.raw)); err == nil {
				t.Errorf("Decode(%q) expected error", tt.raw)
			}

			store := NewMemoryStore()
			store.Put([]byte(tt.raw))
			if snap, ok := store.Load(); ok || snap != nil {
				t.Errorf("Load() = %v, %v; want nil, false", snap, ok)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Load(); ok {
		t.Error("expected empty store to report no snapshot")
	}

	if err := store.Save(models.DefaultState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if store.Saves() != 1 {
		t.Errorf("expected 1 save, got %d", store.Saves())
	}
	if store.Raw() == nil {
		t.Error("expected raw bytes after save")
	}
}
