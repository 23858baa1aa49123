// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/luoyiti/web-video-player/internal/models"
)

// FakeBackend is an in-memory test double for [services.Backend].
//
// Set the *Err fields to make the corresponding call fail. Calls are recorded
// so tests can assert which remote echoes were issued.
type FakeBackend struct {
	mu sync.Mutex

	Records []models.RemoteRecord
	NextID  int64

	FetchErr  error
	CreateErr error
	TagsErr   error
	DeleteErr error

	// Gate, when non-nil, blocks Create until it is closed.
	Gate chan struct{}

	Created    []models.CreateVideoRequest
	TagUpdates map[int64][]string
	Deleted    []int64
	online     bool
}

// NewFakeBackend returns a backend that hands out ids starting at nextID.
func NewFakeBackend(nextID int64, records ...models.RemoteRecord) *FakeBackend {
	return &FakeBackend{Records: records, NextID: nextID, TagUpdates: make(map[int64][]string)}
}

func (f *FakeBackend) FetchAll(ctx context.Context) ([]models.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		f.online = false
		return nil, f.FetchErr
	}
	f.online = true
	return append([]models.RemoteRecord(nil), f.Records...), nil
}

func (f *FakeBackend) Create(ctx context.Context, req models.CreateVideoRequest) (models.RemoteRecord, error) {
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return models.RemoteRecord{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, req)
	if f.CreateErr != nil {
		f.online = false
		return models.RemoteRecord{}, f.CreateErr
	}
	f.online = true
	rec := models.RemoteRecord{ID: f.NextID, Title: req.Title, Src: req.Src, Tags: req.Tags, IsLocal: req.IsLocal}
	f.NextID++
	f.Records = append(f.Records, rec)
	return rec, nil
}

func (f *FakeBackend) UpdateTags(ctx context.Context, backendID int64, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TagUpdates[backendID] = append([]string(nil), tags...)
	if f.TagsErr != nil {
		f.online = false
		return f.TagsErr
	}
	f.online = true
	return nil
}

func (f *FakeBackend) Delete(ctx context.Context, backendID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, backendID)
	if f.DeleteErr != nil {
		f.online = false
		return f.DeleteErr
	}
	f.online = true
	return nil
}

func (f *FakeBackend) IsOnline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *FakeBackend) MarkOffline() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = false
}

// TagsFor returns the last tags echoed for backendID and whether any echo happened.
func (f *FakeBackend) TagsFor(backendID int64) ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags, ok := f.TagUpdates[backendID]
	return tags, ok
}

// DeletedIDs returns a copy of the deleted backend ids.
func (f *FakeBackend) DeletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.Deleted...)
}

// CreateCalls returns how many Create calls were made.
func (f *FakeBackend) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
