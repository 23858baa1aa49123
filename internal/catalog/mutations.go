package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// AddLocalVideo inserts item at the front of the video list and selects it.
//
// A missing or already used id is replaced by a fresh local id. Items whose
// src is a blob reference are marked local-only. Any backend identity on item
// is dropped. When path is a durable location the item is persisted to the
// backend in the background.
func (e *Engine) AddLocalVideo(ctx context.Context, item models.MediaItem, path string) models.MediaItem {
	var added models.MediaItem

	e.mutate(true, func(s *models.AppState) bool {
		if item.ID == 0 || s.IndexOf(models.KindVideo, item.ID) >= 0 {
			item.ID = e.nextLocalID()
		}
		item.BackendID = 0
		item.FromBackend = false
		item.IsLocal = item.IsLocal || shared.IsBlobURL(item.Src)
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			item.Title = models.DefaultVideoTitle
		}
		item.Tags = shared.NormalizeTags(item.Tags)

		s.Videos = append([]models.MediaItem{item}, s.Videos...)
		s.SetSelected(models.KindVideo, models.Int64(item.ID))
		added = item.Clone()
		return true
	})

	if path != "" && !shared.IsBlobURL(path) {
		id := added.ID
		e.spawn(ctx, func(ctx context.Context) {
			_ = e.PersistToBackend(ctx, id, path)
		})
	}
	return added
}

// PersistToBackend stores the video with id on the backend and adopts the backend identity.
//
// It is a no-op when the video is absent or when the chosen path (path, else
// the item's src) is a blob reference. On success the backendId is attached,
// the id recomputed, isLocal cleared and the selection moved, all in one
// commit. If the derived id already exists the local duplicate is dropped in
// favour of it. Failures only update the status indicator.
func (e *Engine) PersistToBackend(ctx context.Context, id int64, path string) error {
	e.mu.Lock()
	idx := e.state.IndexOf(models.KindVideo, id)
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}
	item := e.state.Videos[idx].Clone()
	e.mu.Unlock()

	chosen := path
	if chosen == "" {
		chosen = item.Src
	}
	if chosen == "" || shared.IsBlobURL(chosen) {
		return nil
	}

	if e.gateway == nil {
		e.setStatus(LevelError, msgPersistFailed)
		return fmt.Errorf("%w: no backend configured", shared.ErrServiceUnavailable)
	}

	rec, err := e.gateway.Create(ctx, models.CreateVideoRequest{
		Title:   item.Title,
		Src:     chosen,
		Tags:    item.Tags,
		IsLocal: item.IsLocal,
	})
	if err != nil {
		e.logger.Warn("failed to persist video", "id", id, "path", chosen, "error", err)
		e.setStatus(LevelError, msgPersistFailed)
		return fmt.Errorf("persist video %d: %w", id, err)
	}

	newID := models.DerivedID(rec.ID)
	e.mutate(true, func(s *models.AppState) bool {
		idx := s.IndexOf(models.KindVideo, id)
		if idx < 0 {
			e.logger.Warn("persisted video was removed before it could be linked", "id", id, "backend_id", rec.ID)
			return false
		}

		followSelection := s.CurrentVideoID != nil && *s.CurrentVideoID == id
		if existing := s.IndexOf(models.KindVideo, newID); existing >= 0 && existing != idx {
			s.Videos = slices.Delete(s.Videos, idx, idx+1)
		} else {
			v := &s.Videos[idx]
			v.BackendID = rec.ID
			v.ID = newID
			v.IsLocal = false
		}
		if followSelection {
			s.SetSelected(models.KindVideo, models.Int64(newID))
		}
		return true
	})

	e.setStatus(LevelOK, msgPersisted)
	return nil
}

// AddTag attaches tag to the item with id.
//
// The tag is trimmed; a blank tag returns [shared.ErrValidation]. Unknown
// items and tags already present are no-ops. Videos with a backend identity
// echo their new tag list to the backend in the background.
func (e *Engine) AddTag(ctx context.Context, kind models.Kind, id int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("%w: tag must not be blank", shared.ErrValidation)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidKind, kind)
	}

	var echo *models.MediaItem
	e.mutate(true, func(s *models.AppState) bool {
		items := s.Items(kind)
		idx := s.IndexOf(kind, id)
		if idx < 0 || items[idx].HasTag(tag) {
			return false
		}
		items[idx].Tags = append(items[idx].Tags, tag)
		updated := items[idx].Clone()
		echo = &updated
		return true
	})

	if echo != nil {
		e.echoTags(ctx, kind, *echo)
	}
	return nil
}

// RemoveTag removes the tag at index from the item with id.
//
// Unknown items and indexes outside [0, len(tags)) are no-ops.
func (e *Engine) RemoveTag(ctx context.Context, kind models.Kind, id int64, index int) {
	var echo *models.MediaItem
	e.mutate(true, func(s *models.AppState) bool {
		idx := s.IndexOf(kind, id)
		if idx < 0 {
			return false
		}
		items := s.Items(kind)
		if index < 0 || index >= len(items[idx].Tags) {
			return false
		}
		items[idx].Tags = slices.Delete(items[idx].Tags, index, index+1)
		updated := items[idx].Clone()
		echo = &updated
		return true
	})

	if echo != nil {
		e.echoTags(ctx, kind, *echo)
	}
}

// echoTags sends the tags of a backend video to the backend without waiting.
func (e *Engine) echoTags(ctx context.Context, kind models.Kind, item models.MediaItem) {
	if kind != models.KindVideo || item.BackendID <= 0 || e.gateway == nil {
		return
	}
	e.spawn(ctx, func(ctx context.Context) {
		if err := e.gateway.UpdateTags(ctx, item.BackendID, item.Tags); err != nil {
			e.logger.Warn("failed to sync tags", "backend_id", item.BackendID, "error", err)
			e.setStatus(LevelError, msgTagsFailed)
			return
		}
		e.setStatus(LevelOK, msgTagsSynced)
	})
}

// RemoveItem removes the item with id from the list for kind.
//
// The backend is not contacted. It reports the removed item.
func (e *Engine) RemoveItem(kind models.Kind, id int64) (models.MediaItem, bool) {
	var removed models.MediaItem
	ok := e.mutate(true, func(s *models.AppState) bool {
		idx := s.IndexOf(kind, id)
		if idx < 0 {
			return false
		}
		items := s.Items(kind)
		removed = items[idx].Clone()
		s.SetItems(kind, slices.Delete(items, idx, idx+1))
		return true
	})
	return removed, ok
}

// DeleteVideo removes the video locally and, when it has a backend identity,
// deletes it on the backend in the background.
func (e *Engine) DeleteVideo(ctx context.Context, id int64) bool {
	removed, ok := e.RemoveItem(models.KindVideo, id)
	if !ok || removed.BackendID <= 0 || e.gateway == nil {
		return ok
	}

	backendID := removed.BackendID
	e.spawn(ctx, func(ctx context.Context) {
		if err := e.gateway.Delete(ctx, backendID); err != nil {
			e.logger.Warn("failed to delete video on backend", "backend_id", backendID, "error", err)
			e.setStatus(LevelError, msgDeleteFailed)
			return
		}
		e.setStatus(LevelOK, msgDeleted)
	})
	return true
}

// SetTab switches the active tab and clears the tag filter.
func (e *Engine) SetTab(kind models.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidKind, kind)
	}
	e.mutate(true, func(s *models.AppState) bool {
		if s.CurrentTab == kind {
			return false
		}
		s.CurrentTab = kind
		s.ActiveTag = ""
		return true
	})
	return nil
}

// SetActiveTag sets the tag filter; an empty tag shows everything.
func (e *Engine) SetActiveTag(tag string) {
	tag = strings.TrimSpace(tag)
	e.mutate(true, func(s *models.AppState) bool {
		if s.ActiveTag == tag {
			return false
		}
		s.ActiveTag = tag
		return true
	})
}

// Select selects the item with id and switches to its tab. Unknown ids are ignored.
func (e *Engine) Select(kind models.Kind, id int64) bool {
	return e.mutate(true, func(s *models.AppState) bool {
		if !kind.Valid() || s.IndexOf(kind, id) < 0 {
			return false
		}
		sel := s.Selected(kind)
		if s.CurrentTab == kind && sel != nil && *sel == id {
			return false
		}
		s.CurrentTab = kind
		s.SetSelected(kind, models.Int64(id))
		return true
	})
}
