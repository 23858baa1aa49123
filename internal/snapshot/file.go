package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/luoyiti/web-video-player/internal/models"
)

const watchDebounce = 100 * time.Millisecond

// FileStore keeps snapshots in a JSON file mapping namespaced keys to values.
type FileStore struct {
	path   string
	key    string
	logger *log.Logger

	mu          sync.Mutex
	lastWritten []byte
}

// NewFileStore creates a store for key inside the file at path.
//
// An empty key falls back to [DefaultKey]; a nil logger discards output.
func NewFileStore(path, key string, logger *log.Logger) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileStore{path: path, key: key, logger: logger}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Key returns the namespace the snapshot is stored under.
func (f *FileStore) Key() string { return f.key }

// Load reads the snapshot stored under the store's key.
func (f *FileStore) Load() (*Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readEntries()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("discarding unreadable snapshot file", "path", f.path, "error", err)
		}
		return nil, false
	}

	raw, ok := entries[f.key]
	if !ok {
		f.logger.Debug("no snapshot stored", "path", f.path, "key", f.key)
		return nil, false
	}

	snap, err := Decode(raw)
	if err != nil {
		f.logger.Warn("discarding malformed snapshot", "path", f.path, "key", f.key, "error", err)
		return nil, false
	}
	return snap, true
}

// Save writes the durable subset of state under the store's key, preserving other keys.
func (f *FileStore) Save(state models.AppState) error {
	value, err := Encode(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readEntries()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("overwriting unreadable snapshot file", "path", f.path, "error", err)
		}
		entries = make(map[string]json.RawMessage)
	}
	entries[f.key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot file: %w", err)
	}

	if err := writeAtomic(f.path, data); err != nil {
		return err
	}
	f.lastWritten = data
	return nil
}

// Watch calls fn whenever another writer changes the backing file.
//
// Events are debounced and changes matching the store's own last write are
// ignored. Watching stops when ctx is done.
func (f *FileStore) Watch(ctx context.Context, fn func()) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go f.watchLoop(ctx, watcher, fn)
	return nil
}

func (f *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, fn func()) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil || f.isOwnWrite() {
					return
				}
				f.logger.Debug("snapshot changed on disk", "path", f.path)
				fn()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("snapshot watcher error", "path", f.path, "error", err)
		}
	}
}

// isOwnWrite reports whether the file still holds exactly what this store last wrote.
func (f *FileStore) isOwnWrite() bool {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWritten != nil && bytes.Equal(data, f.lastWritten)
}

func (f *FileStore) readEntries() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	return entries, nil
}

// writeAtomic writes data to path through a temp file and rename.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}
