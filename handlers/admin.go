package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"tawsky/metrics"
	"tawsky/middleware"
	"tawsky/models"
	"tawsky/services"
)

type adminData struct {
	Page
	Anime []models.Anime
	Manga []models.Manga
}

func (h *Handlers) AdminHandler(w http.ResponseWriter, r *http.Request) {
	anime, err := h.Catalog.ListAnime()
	if err != nil {
		slog.Error("Failed to list anime for admin", "error", err)
	}
	manga, err := h.Catalog.ListManga()
	if err != nil {
		slog.Error("Failed to list manga for admin", "error", err)
	}

	h.render(w, "admin", adminData{
		Page:  h.page(w, r),
		Anime: anime,
		Manga: manga,
	})
}

// AdminUploadHandler accepts the multipart upload form and dispatches
// it by content_type. The route is behind RequireAdmin.
func (h *Handlers) AdminUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadMemory); err != nil {
		h.flashAndRedirect(w, r, "danger", "Invalid upload form.", "/admin")
		return
	}

	kind := r.FormValue("content_type")

	params := services.UploadParams{
		Kind:        kind,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Genres:      r.Form["genres"],
	}

	if r.MultipartForm != nil {
		params.Files = r.MultipartForm.File["file"]
		if thumbs := r.MultipartForm.File["thumbnail"]; len(thumbs) > 0 {
			params.Thumbnail = thumbs[0]
		}
	}

	switch kind {
	case services.KindEpisode:
		params.ParentID, _ = strconv.ParseInt(r.FormValue("anime_id"), 10, 64)
		params.Ordinal, _ = strconv.Atoi(r.FormValue("episode_number"))
	case services.KindChapter:
		params.ParentID, _ = strconv.ParseInt(r.FormValue("manga_id"), 10, 64)
		params.Ordinal, _ = strconv.Atoi(r.FormValue("chapter_number"))
	}

	user := middleware.UserFromContext(r.Context())
	id, err := h.Content.UploadContent(params)
	if err != nil {
		slog.Warn("Upload rejected", "kind", kind, "error", err)
		metrics.Uploads.WithLabelValues(kind, "failure").Inc()
		h.flashAndRedirect(w, r, "danger", userMessage(err), "/admin")
		return
	}

	slog.Info("Content uploaded", "kind", kind, "id", id, "admin", user.Username)
	metrics.Uploads.WithLabelValues(kind, "success").Inc()
	h.flashAndRedirect(w, r, "success", capitalize(kind)+" added successfully!", "/admin")
}
