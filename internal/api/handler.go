// Package api serves stored replays over a read-only JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/blockfall/internal/storage"
	"github.com/vovakirdan/blockfall/internal/tetris"
)

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 500

// ReplayStore is the subset of storage the API reads from.
type ReplayStore interface {
	ListReplays(ctx context.Context, limit int) ([]storage.ReplaySummary, error)
	LoadReplay(ctx context.Context, id string) (*storage.Replay, error)
}

// HandlerDeps groups the handler dependencies.
type HandlerDeps struct {
	Store  ReplayStore
	Logger *log.Logger
}

// Handler implements the replay endpoints.
type Handler struct {
	store  ReplayStore
	logger *log.Logger
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{store: deps.Store, logger: logger}
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// replayListResponse wraps the list endpoint result.
type replayListResponse struct {
	Replays []storage.ReplaySummary `json:"replays"`
}

// snapshotResponse pairs a replay summary with its re-simulated final state.
type snapshotResponse struct {
	Replay   storage.ReplaySummary `json:"replay"`
	Snapshot tetris.Snapshot       `json:"snapshot"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client went away, nothing left to report to
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListReplays returns the newest replays. Accepts ?limit=N.
func (h *Handler) ListReplays(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and "+strconv.Itoa(MaxListLimit))
			return
		}
		limit = n
	}

	replays, err := h.store.ListReplays(r.Context(), limit)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replayListResponse{Replays: replays})
}

// GetReplay returns one replay with its events.
func (h *Handler) GetReplay(w http.ResponseWriter, r *http.Request) {
	replay, ok := h.loadReplay(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, replay)
}

// GetSnapshot re-simulates a replay and returns its final state.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	replay, ok := h.loadReplay(w, r)
	if !ok {
		return
	}

	runner, err := tetris.Replay(replay.Recording())
	if err != nil {
		h.logger.Error("stored replay does not play", "id", replay.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "replay cannot be simulated")
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{
		Replay:   replay.ReplaySummary,
		Snapshot: runner.Snapshot(),
	})
}

// loadReplay fetches the {id} replay, writing the error reply on failure.
func (h *Handler) loadReplay(w http.ResponseWriter, r *http.Request) (*storage.Replay, bool) {
	id := chi.URLParam(r, "id")
	replay, err := h.store.LoadReplay(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "replay not found")
		return nil, false
	}
	if err != nil {
		h.storeFailure(w, r, err)
		return nil, false
	}
	return replay, true
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("storage failure", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
