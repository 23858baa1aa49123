package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
	"github.com/luoyiti/web-video-player/internal/snapshot"
)

// MergeResult counts what a merge did.
type MergeResult struct {
	Added   int
	Updated int
	Skipped int
}

// Bootstrap applies the stored snapshot over the defaults, notifies
// subscribers and starts a background [Engine.Sync].
//
// It never fails: an unusable snapshot leaves the defaults in place and an
// unreachable backend only flips the status indicator.
func (e *Engine) Bootstrap(ctx context.Context) {
	snap, loaded := e.loadSnapshot()

	e.mutate(false, func(s *models.AppState) bool {
		if loaded {
			snap.Apply(s)
			normalizeState(s)
			adoptDerivedIDs(s)
		}
		return true
	})

	if e.gateway == nil {
		e.setStatus(LevelError, msgOfflineMode)
		return
	}

	e.setStatus(LevelPending, msgConnecting)
	e.spawn(ctx, func(ctx context.Context) {
		_ = e.Sync(ctx)
	})
}

// Sync fetches every backend record and merges it into the video list.
//
// On failure the gateway is marked offline, the status indicator flips to
// error and the current state stands.
func (e *Engine) Sync(ctx context.Context) error {
	if e.gateway == nil {
		e.setStatus(LevelError, msgOfflineMode)
		return fmt.Errorf("%w: no backend configured", shared.ErrServiceUnavailable)
	}

	records, err := e.gateway.FetchAll(ctx)
	if err != nil {
		e.gateway.MarkOffline()
		e.logger.Warn("backend sync failed", "error", err)
		e.setStatus(LevelError, msgLocalMode)
		return fmt.Errorf("sync: %w", err)
	}

	result := e.MergeRemote(records)
	e.logger.Debug("merged backend records", "records", len(records), "added", result.Added, "updated", result.Updated, "skipped", result.Skipped)
	e.setStatus(LevelOK, fmt.Sprintf("Connected to backend · %d videos", len(records)))
	return nil
}

// MergeRemote merges backend records into the video list.
//
// An existing video with the same backendId has its title, src and tags
// overwritten in place. Records with a non-positive id, or whose derived id
// belongs to an item that lacks that backendId, are skipped. New items are
// inserted at the front as one block in server order. Videos deleted on the
// server are kept.
func (e *Engine) MergeRemote(records []models.RemoteRecord) MergeResult {
	var result MergeResult

	e.mutate(true, func(s *models.AppState) bool {
		byBackend := make(map[int64]int, len(s.Videos))
		ids := make(map[int64]struct{}, len(s.Videos))
		for i, v := range s.Videos {
			ids[v.ID] = struct{}{}
			if v.BackendID > 0 {
				if _, ok := byBackend[v.BackendID]; !ok {
					byBackend[v.BackendID] = i
				}
			}
		}

		var fresh []models.MediaItem
		freshIdx := make(map[int64]int)
		changed := false

		for _, rec := range records {
			if rec.ID <= 0 {
				result.Skipped++
				e.logger.Warn("skipping backend record without a valid id", "title", rec.Title)
				continue
			}
			item := normalizeRecord(rec)

			if i, ok := byBackend[rec.ID]; ok {
				if overwrite(&s.Videos[i], item) {
					result.Updated++
					changed = true
				}
				continue
			}
			if i, ok := freshIdx[rec.ID]; ok {
				overwrite(&fresh[i], item)
				continue
			}
			if _, clash := ids[item.ID]; clash {
				result.Skipped++
				e.logger.Warn("skipping backend record whose id collides with a local item", "backend_id", rec.ID, "id", item.ID)
				continue
			}

			freshIdx[rec.ID] = len(fresh)
			ids[item.ID] = struct{}{}
			fresh = append(fresh, item)
		}

		if len(fresh) > 0 {
			result.Added = len(fresh)
			s.Videos = append(fresh, s.Videos...)
			changed = true
		}
		return changed
	})

	return result
}

// Reload re-applies the stored snapshot over the in-memory state, keeping
// local-only videos the snapshot cannot contain. Nothing is persisted.
func (e *Engine) Reload() bool {
	snap, ok := e.loadSnapshot()
	if !ok {
		return false
	}

	return e.mutate(false, func(s *models.AppState) bool {
		var local []models.MediaItem
		for _, v := range s.Videos {
			if v.IsLocal {
				local = append(local, v)
			}
		}

		snap.Apply(s)
		normalizeState(s)
		adoptDerivedIDs(s)

		var keep []models.MediaItem
		for _, v := range local {
			if s.IndexOf(models.KindVideo, v.ID) < 0 {
				keep = append(keep, v)
			}
		}
		if len(keep) > 0 {
			s.Videos = append(keep, s.Videos...)
		}
		return true
	})
}

func (e *Engine) loadSnapshot() (*snapshot.Snapshot, bool) {
	if e.store == nil {
		return nil, false
	}
	return e.store.Load()
}

// normalizeRecord converts a backend record into a catalogue item.
func normalizeRecord(rec models.RemoteRecord) models.MediaItem {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = models.DefaultVideoTitle
	}
	return models.MediaItem{
		ID:          models.DerivedID(rec.ID),
		BackendID:   rec.ID,
		Title:       title,
		Src:         rec.Src,
		Tags:        shared.NormalizeTags(rec.Tags),
		FromBackend: true,
	}
}

// overwrite copies the backend-owned fields of src into dst and reports whether anything changed.
func overwrite(dst *models.MediaItem, src models.MediaItem) bool {
	if dst.Title == src.Title && dst.Src == src.Src && slices.Equal(dst.Tags, src.Tags) {
		return false
	}
	dst.Title = src.Title
	dst.Src = src.Src
	dst.Tags = append([]string{}, src.Tags...)
	return true
}
