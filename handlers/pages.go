package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tawsky/models"
	"tawsky/services"
)

func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index", h.page(w, r))
}

type animeListData struct {
	Page
	Anime []models.Anime
}

func (h *Handlers) AnimeListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListAnime()
	if err != nil {
		slog.Error("Failed to list anime", "error", err)
		list = []models.Anime{}
	}
	h.render(w, "anime", animeListData{Page: h.page(w, r), Anime: list})
}

type animeDetailData struct {
	Page
	Anime    *models.Anime
	Episodes []models.Episode
}

func (h *Handlers) AnimeDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	anime, err := h.Catalog.GetAnime(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to load anime", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	episodes, err := h.Catalog.ListEpisodes(id)
	if err != nil {
		slog.Error("Failed to list episodes", "anime_id", id, "error", err)
		episodes = []models.Episode{}
	}

	h.render(w, "anime_detail", animeDetailData{
		Page:     h.page(w, r),
		Anime:    anime,
		Episodes: episodes,
	})
}

type mangaListData struct {
	Page
	Manga []models.Manga
}

func (h *Handlers) MangaListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListManga()
	if err != nil {
		slog.Error("Failed to list manga", "error", err)
		list = []models.Manga{}
	}
	h.render(w, "manga", mangaListData{Page: h.page(w, r), Manga: list})
}

type mangaDetailData struct {
	Page
	Manga    *models.Manga
	Chapters []models.Chapter
}

func (h *Handlers) MangaDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	manga, err := h.Catalog.GetManga(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to load manga", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	chapters, err := h.Catalog.ListChapters(id)
	if err != nil {
		slog.Error("Failed to list chapters", "manga_id", id, "error", err)
		chapters = []models.Chapter{}
	}

	h.render(w, "manga_detail", mangaDetailData{
		Page:     h.page(w, r),
		Manga:    manga,
		Chapters: chapters,
	})
}

type playerData struct {
	Page
	Anime         *models.Anime
	Episode       *models.Episode
	EpisodeNumber int
	// ResumeFrom is the viewer's stored position in seconds, zero when
	// there is no history.
	ResumeFrom int
}

// PlayerHandler serves the playback page. The episode number defaults
// to 1 when the route omits it.
func (h *Handlers) PlayerHandler(w http.ResponseWriter, r *http.Request) {
	animeID, err := strconv.ParseInt(chi.URLParam(r, "animeID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	episodeNumber := 1
	if raw := chi.URLParam(r, "episodeNumber"); raw != "" {
		episodeNumber, err = strconv.Atoi(raw)
		if err != nil || episodeNumber < 1 {
			http.NotFound(w, r)
			return
		}
	}

	anime, err := h.Catalog.GetAnime(animeID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to load anime for player", "id", animeID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := playerData{
		Page:          h.page(w, r),
		Anime:         anime,
		EpisodeNumber: episodeNumber,
	}

	episode, err := h.Catalog.GetEpisodeByNumber(animeID, episodeNumber)
	if err == nil {
		data.Episode = episode
		if user := h.sessionUser(r); user != nil {
			if hist, err := h.History.GetWatchProgress(user.ID, episode.ID); err == nil {
				data.ResumeFrom = hist.Progress
			}
		}
	}

	h.render(w, "player", data)
}

type searchData struct {
	Page
	Query   string
	Results []models.Anime
}

// SearchHandler renders the search page. Search is a stub surface:
// there is no index behind it and the result set is always empty.
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, "search", searchData{
		Page:    h.page(w, r),
		Query:   r.URL.Query().Get("q"),
		Results: []models.Anime{},
	})
}
