package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

const maxBodyBytes = 1 << 20

// VideoStore is the storage the video endpoints need.
//
// [repositories.VideoRepository] satisfies it.
type VideoStore interface {
	List(ctx context.Context) ([]models.Video, error)
	Create(ctx context.Context, video *models.Video) (int64, error)
	UpdateTags(ctx context.Context, id int64, tags []string) error
	Delete(ctx context.Context, id int64) error
}

// VideoHandler serves the /api/videos endpoints.
type VideoHandler struct {
	store  VideoStore
	logger *log.Logger
	mux    *http.ServeMux
}

// NewVideoHandler creates a [VideoHandler] backed by store.
func NewVideoHandler(store VideoStore, logger *log.Logger) *VideoHandler {
	h := &VideoHandler{store: store, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/videos", h.list)
	h.mux.HandleFunc("POST /api/videos", h.create)
	h.mux.HandleFunc("POST /api/videos/{id}/tags", h.updateTags)
	h.mux.HandleFunc("DELETE /api/videos/{id}", h.delete)
	return h
}

// Routes implements [Handler].
func (h *VideoHandler) Routes() []string {
	return []string{
		"GET /api/videos",
		"POST /api/videos",
		"POST /api/videos/{id}/tags",
		"DELETE /api/videos/{id}",
	}
}

// ServeHTTP implements [http.Handler].
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *VideoHandler) list(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list videos", err)
		return
	}

	records := make([]models.RemoteRecord, 0, len(videos))
	for _, v := range videos {
		records = append(records, v.Record())
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *VideoHandler) create(w http.ResponseWriter, r *http.Request) {
	var body models.RemoteRecord
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	video := models.Video{Title: body.Title, Src: body.Src, Tags: body.Tags, IsLocal: body.IsLocal}
	id, err := h.store.Create(r.Context(), &video)
	if errors.Is(err, shared.ErrValidation) {
		writeError(w, http.StatusBadRequest, "src is required")
		return
	}
	if err != nil {
		h.internalError(w, r, "create video", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *VideoHandler) updateTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Tags json.RawMessage `json:"tags"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tags := models.DecodeTags(body.Tags)

	// A missing row still reports success.
	if err := h.store.UpdateTags(r.Context(), id, tags); err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.internalError(w, r, "update tags", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "tags": tags})
}

func (h *VideoHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.internalError(w, r, "delete video", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *VideoHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op, "error", err, "request_id", RequestIDFrom(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid video id")
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into v. An empty body decodes as {}.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	return json.Unmarshal(data, v)
}
