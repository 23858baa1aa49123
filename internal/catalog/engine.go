package catalog

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/services"
	"github.com/luoyiti/web-video-player/internal/shared"
	"github.com/luoyiti/web-video-player/internal/snapshot"
)

// Options configures an [Engine].
type Options struct {
	// Store persists snapshots; nil disables persistence.
	Store snapshot.Store
	// Gateway talks to the backend; nil runs the engine offline.
	Gateway services.Backend
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// Defaults is the state the snapshot is applied over; the zero value means [models.EmptyState].
	Defaults models.AppState
	// OnStatus receives every status indicator change.
	OnStatus func(Status)
	// Now overrides the clock used for local ids.
	Now func() time.Time
}

// Engine owns the catalogue state and reconciles it with the snapshot store and the backend.
type Engine struct {
	store    snapshot.Store
	gateway  services.Backend
	logger   *log.Logger
	onStatus func(Status)
	now      func() time.Time

	mu          sync.Mutex
	state       models.AppState
	version     uint64
	lastLocalID int64

	statusMu sync.Mutex
	status   Status

	subMu   sync.Mutex
	subs    []subscriber
	nextSub uint64

	notifyMu  sync.Mutex
	pending   int
	notifying bool

	saveMu       sync.Mutex
	savedVersion uint64

	tasks sync.WaitGroup
}

type subscriber struct {
	id uint64
	fn func()
}

// New creates an engine holding opts.Defaults with a repaired selection.
//
// The snapshot is not read until [Engine.Bootstrap].
func New(opts Options) *Engine {
	e := &Engine{
		store:    opts.Store,
		gateway:  opts.Gateway,
		logger:   opts.Logger,
		onStatus: opts.OnStatus,
		now:      opts.Now,
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.now == nil {
		e.now = time.Now
	}

	if opts.Defaults.CurrentTab == "" && opts.Defaults.Videos == nil && opts.Defaults.Photos == nil {
		e.state = models.EmptyState()
	} else {
		e.state = opts.Defaults.Clone()
	}
	normalizeState(&e.state)
	repairSelection(&e.state)

	e.status = Status{Level: LevelPending, UpdatedAt: e.now()}
	return e
}

// State returns a deep copy of the current state.
func (e *Engine) State() models.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// View returns the view-model over a copy of the current state.
func (e *Engine) View() View {
	return NewView(e.State())
}

// Status returns the latest status indicator.
func (e *Engine) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

// Wait blocks until every spawned background task has finished.
func (e *Engine) Wait() {
	e.tasks.Wait()
}

// Subscribe registers fn to be called after every commit.
//
// Listeners are called in subscription order, one notification at a time
// and in commit order. The returned function removes
// the listener and may be called any number of times. Changes made while a
// notification is running apply from the next one.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	e.subMu.Lock()
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	e.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subMu.Lock()
			defer e.subMu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate runs fn under the state lock and commits when it reports a change.
//
// persist=false skips the snapshot write (used when the change came from the snapshot itself).
func (e *Engine) mutate(persist bool, fn func(s *models.AppState) bool) bool {
	e.mu.Lock()
	if !fn(&e.state) {
		e.mu.Unlock()
		return false
	}
	repairSelection(&e.state)
	e.version++
	version := e.version
	committed := e.state.Clone()
	drain := e.queueNotify()
	e.mu.Unlock()

	if drain {
		e.drainNotify()
	}
	if persist {
		e.persist(committed, version)
	}
	return true
}

// queueNotify records one pending notification and reports whether the
// caller must deliver it. It runs under e.mu, so pending notifications are
// counted in commit order.
func (e *Engine) queueNotify() bool {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.pending++
	if e.notifying {
		return false
	}
	e.notifying = true
	return true
}

// drainNotify delivers pending notifications one at a time until none are
// left. Only one goroutine drains at a time, so listeners never run
// concurrently. Commits made by a listener are delivered in a later round.
func (e *Engine) drainNotify() {
	for {
		e.notifyMu.Lock()
		if e.pending == 0 {
			e.notifying = false
			e.notifyMu.Unlock()
			return
		}
		e.pending--
		e.notifyMu.Unlock()

		e.subMu.Lock()
		subs := make([]subscriber, len(e.subs))
		copy(subs, e.subs)
		e.subMu.Unlock()

		for _, s := range subs {
			s.fn()
		}
	}
}

// persist saves state unless a newer version has already been written.
func (e *Engine) persist(state models.AppState, version uint64) {
	if e.store == nil {
		return
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if version <= e.savedVersion {
		return
	}
	if err := e.store.Save(state); err != nil {
		e.logger.Warn("failed to save snapshot", "version", version, "error", err)
		return
	}
	e.savedVersion = version
}

// spawn runs fn in the background, detached from ctx cancellation.
func (e *Engine) spawn(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		fn(ctx)
	}()
}

func (e *Engine) setStatus(level Level, message string) {
	st := Status{
		Online:    e.gateway != nil && e.gateway.IsOnline(),
		Level:     level,
		Message:   message,
		UpdatedAt: e.now(),
	}

	e.statusMu.Lock()
	e.status = st
	e.statusMu.Unlock()

	switch level {
	case LevelError:
		e.logger.Warn("backend status", "online", st.Online, "message", message)
	case LevelOK:
		e.logger.Info("backend status", "online", st.Online, "message", message)
	default:
		e.logger.Debug("backend status", "online", st.Online, "message", message)
	}

	if e.onStatus != nil {
		e.onStatus(st)
	}
}

// nextLocalID returns a timestamp-based id above every id handed out before
// and absent from the video list. Callers hold e.mu.
func (e *Engine) nextLocalID() int64 {
	id := e.now().UnixMilli()
	if id <= e.lastLocalID {
		id = e.lastLocalID + 1
	}
	for e.state.IndexOf(models.KindVideo, id) >= 0 {
		id++
	}
	e.lastLocalID = id
	return id
}

// repairSelection points every dangling or absent selection at the first item of its list.
func repairSelection(s *models.AppState) {
	if !s.CurrentTab.Valid() {
		s.CurrentTab = models.KindVideo
	}
	for _, kind := range []models.Kind{models.KindVideo, models.KindPhoto} {
		sel := s.Selected(kind)
		if sel != nil && s.IndexOf(kind, *sel) >= 0 {
			continue
		}
		items := s.Items(kind)
		if len(items) == 0 {
			s.SetSelected(kind, nil)
			continue
		}
		s.SetSelected(kind, models.Int64(items[0].ID))
	}
}

// normalizeState gives every list a non-nil value and cleans every tag list:
// no blanks, no duplicates, first occurrence wins.
func normalizeState(s *models.AppState) {
	if s.Videos == nil {
		s.Videos = []models.MediaItem{}
	}
	if s.Photos == nil {
		s.Photos = []models.MediaItem{}
	}
	for _, items := range [][]models.MediaItem{s.Videos, s.Photos} {
		for i := range items {
			items[i].Tags = shared.NormalizeTags(items[i].Tags)
		}
	}
}

// adoptDerivedIDs rewrites the id of every item with a backendId to the id
// derived from it, moving the selection along. An item whose derived id is
// already taken is dropped in favour of the holder.
func adoptDerivedIDs(s *models.AppState) {
	for _, kind := range []models.Kind{models.KindVideo, models.KindPhoto} {
		items := s.Items(kind)
		taken := make(map[int64]struct{}, len(items))
		for _, item := range items {
			taken[item.ID] = struct{}{}
		}

		var selected int64
		hasSelection := s.Selected(kind) != nil
		if hasSelection {
			selected = *s.Selected(kind)
		}

		kept := make([]models.MediaItem, 0, len(items))
		for _, item := range items {
			want := models.DerivedID(item.BackendID)
			if item.BackendID <= 0 || item.ID == want {
				kept = append(kept, item)
				continue
			}
			if hasSelection && selected == item.ID {
				s.SetSelected(kind, models.Int64(want))
			}
			if _, clash := taken[want]; clash {
				continue
			}
			delete(taken, item.ID)
			taken[want] = struct{}{}
			item.ID = want
			kept = append(kept, item)
		}
		s.SetItems(kind, kept)
	}
}
