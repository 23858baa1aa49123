package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// DefaultTimeout bounds every gateway call when no timeout is configured.
const DefaultTimeout = 4500 * time.Millisecond

// Gateway is the persistence gateway to the catalogue backend.
type Gateway struct {
	api     *APIService
	timeout time.Duration
	online  atomic.Bool
}

// NewGateway creates a gateway for the backend at baseURL.
//
// A non-positive timeout falls back to [DefaultTimeout]; a nil client uses [http.DefaultClient].
func NewGateway(baseURL string, timeout time.Duration, client *http.Client) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{api: NewAPIService(baseURL, client), timeout: timeout}
}

// BaseURL returns the backend root.
func (g *Gateway) BaseURL() string { return g.api.BaseURL() }

// IsOnline reports whether the most recent call succeeded.
func (g *Gateway) IsOnline() bool { return g.online.Load() }

// MarkOffline clears the reachability flag.
func (g *Gateway) MarkOffline() { g.online.Store(false) }

// FetchAll lists every stored video, newest first.
//
// Both the {ok, data: [...]} envelope and a bare array are accepted; any
// other data shape yields an empty list.
func (g *Gateway) FetchAll(ctx context.Context) ([]models.RemoteRecord, error) {
	resp, err := g.call(ctx, http.MethodGet, "/api/videos", nil)
	if err != nil {
		return nil, err
	}

	data, err := unwrap(resp)
	if err != nil {
		g.MarkOffline()
		return nil, err
	}

	var records []models.RemoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return []models.RemoteRecord{}, nil
	}
	if records == nil {
		records = []models.RemoteRecord{}
	}
	return records, nil
}

// Create stores a new video and returns the record the backend assigned.
//
// The returned record echoes the request fields with the new id.
func (g *Gateway) Create(ctx context.Context, req models.CreateVideoRequest) (models.RemoteRecord, error) {
	if req.Tags == nil {
		req.Tags = []string{}
	}

	resp, err := g.call(ctx, http.MethodPost, "/api/videos", req)
	if err != nil {
		return models.RemoteRecord{}, err
	}

	data, err := unwrap(resp)
	if err != nil {
		g.MarkOffline()
		return models.RemoteRecord{}, err
	}

	var created models.RemoteRecord
	if err := json.Unmarshal(data, &created); err != nil || created.ID <= 0 {
		g.MarkOffline()
		return models.RemoteRecord{}, fmt.Errorf("%w: response missing id", shared.ErrRequestFailed)
	}

	return models.RemoteRecord{
		ID:      created.ID,
		Title:   req.Title,
		Src:     req.Src,
		Tags:    req.Tags,
		IsLocal: req.IsLocal,
	}, nil
}

// UpdateTags replaces the tags of the video stored under backendID.
func (g *Gateway) UpdateTags(ctx context.Context, backendID int64, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	path := "/api/videos/" + strconv.FormatInt(backendID, 10) + "/tags"
	_, err := g.call(ctx, http.MethodPost, path, map[string][]string{"tags": tags})
	return err
}

// Delete removes the video stored under backendID.
func (g *Gateway) Delete(ctx context.Context, backendID int64) error {
	_, err := g.call(ctx, http.MethodDelete, "/api/videos/"+strconv.FormatInt(backendID, 10), nil)
	return err
}

// call performs one bounded request and updates the reachability flag.
func (g *Gateway) call(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.api.Do(ctx, method, path, body)
	if err != nil {
		g.MarkOffline()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %s %s", shared.ErrUnreachable, shared.ErrTimeout, method, path)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrUnreachable, err)
	}

	if !resp.OK() {
		g.MarkOffline()
		return nil, &shared.RequestFailedError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}

	g.online.Store(true)
	return resp, nil
}

// unwrap returns the data member of an {ok, data} envelope, or the body itself when it is not one.
func unwrap(resp *APIResponse) (json.RawMessage, error) {
	if !resp.IsJSON() {
		return nil, fmt.Errorf("%w: invalid JSON response", shared.ErrRequestFailed)
	}
	body := resp.Body

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return body, nil
	}
	if _, ok := probe["ok"]; !ok {
		return body, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body, nil
	}
	return env.Data, nil
}

func errorMessage(resp *APIResponse) string {
	data, err := unwrap(resp)
	if err != nil {
		return ""
	}
	var e ErrorData
	if err := json.Unmarshal(data, &e); err != nil {
		return ""
	}
	return e.Message
}
