// package services defines the Backend interface for talking to the catalogue server
package services

import (
	"context"
	"encoding/json"

	"github.com/luoyiti/web-video-player/internal/models"
)

// Backend is the persistence surface the reconciliation engine depends on.
type Backend interface {
	// FetchAll lists every stored video.
	FetchAll(ctx context.Context) ([]models.RemoteRecord, error)

	// Create stores a video and returns the record carrying its new id.
	Create(ctx context.Context, req models.CreateVideoRequest) (models.RemoteRecord, error)

	// UpdateTags replaces the tags of the video stored under backendID.
	UpdateTags(ctx context.Context, backendID int64, tags []string) error

	// Delete removes the video stored under backendID.
	Delete(ctx context.Context, backendID int64) error

	// IsOnline reports whether the most recent call succeeded.
	IsOnline() bool

	// MarkOffline clears the reachability flag.
	MarkOffline()
}

// Ensure Gateway implements Backend at compile time.
var _ Backend = (*Gateway)(nil)

// Envelope is the {ok, data} wrapper used by every backend response.
type Envelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}

// ErrorData is the payload of a failed response.
type ErrorData struct {
	Message string `json:"message"`
}
