package handlers

import (
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"tawsky/metrics"
)

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func apiError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, statusResponse{Status: "error", Error: msg})
}

// WatchHistoryHandler upserts the caller's playback position for an
// episode. The acting user is always the session user.
func (h *Handlers) WatchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(r)
	if user == nil {
		apiError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		EpisodeID int64 `json:"episode_id"`
		Progress  int   `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EpisodeID <= 0 {
		apiError(w, http.StatusBadRequest, "episode_id required")
		return
	}

	if err := h.History.RecordWatchProgress(user.ID, req.EpisodeID, req.Progress); err != nil {
		slog.Error("Failed to record watch progress", "user_id", user.ID, "episode_id", req.EpisodeID, "error", err)
		apiError(w, http.StatusInternalServerError, "failed to record progress")
		return
	}

	metrics.HistoryWrites.WithLabelValues("watch").Inc()
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

// ReadHistoryHandler is the read-side analogue of WatchHistoryHandler.
func (h *Handlers) ReadHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(r)
	if user == nil {
		apiError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		ChapterID int64 `json:"chapter_id"`
		Page      int   `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChapterID <= 0 {
		apiError(w, http.StatusBadRequest, "chapter_id required")
		return
	}

	if err := h.History.RecordReadProgress(user.ID, req.ChapterID, req.Page); err != nil {
		slog.Error("Failed to record read progress", "user_id", user.ID, "chapter_id", req.ChapterID, "error", err)
		apiError(w, http.StatusInternalServerError, "failed to record progress")
		return
	}

	metrics.HistoryWrites.WithLabelValues("read").Inc()
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

type suggestion struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// SuggestionsHandler returns the fixed suggestion list. There is no
// search index behind this endpoint.
func (h *Handlers) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	suggestions := []suggestion{
		{ID: 1, Title: "Attack on Titan", Type: "Anime"},
		{ID: 2, Title: "Demon Slayer", Type: "Anime"},
		{ID: 3, Title: "Death Note", Type: "Manga"},
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": suggestions})
}
