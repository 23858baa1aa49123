package snapshot

import (
	"sync"

	"github.com/luoyiti/web-video-player/internal/models"
)

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu    sync.Mutex
	raw   []byte
	saves int
	err   error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the stored bytes; malformed content is reported as absent.
func (m *MemoryStore) Load() (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, false
	}
	snap, err := Decode(m.raw)
	if err != nil {
		return nil, false
	}
	return snap, true
}

// Save encodes state into the store.
func (m *MemoryStore) Save(state models.AppState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.raw = data
	m.saves++
	return nil
}

// Put replaces the stored bytes verbatim.
func (m *MemoryStore) Put(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), raw...)
}

// Raw returns a copy of the stored bytes, or nil when nothing was saved.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil
	}
	return append([]byte(nil), m.raw...)
}

// Saves returns how many successful saves happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves return err; nil restores normal behaviour.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
