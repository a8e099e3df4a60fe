package services

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Content kinds accepted by the admin upload form.
const (
	KindAnime   = "anime"
	KindManga   = "manga"
	KindEpisode = "episode"
	KindChapter = "chapter"
)

// UploadParams carries one admin upload submission. Files holds the
// uploads from the "file" form field; for chapters every file becomes
// a page, for episodes the first file is the video.
type UploadParams struct {
	Kind        string
	Title       string
	Description string
	Genres      []string
	Files       []*multipart.FileHeader
	Thumbnail   *multipart.FileHeader
	ParentID    int64 // anime_id or manga_id for episode/chapter kinds
	Ordinal     int   // episode_number or chapter_number
}

// ContentService dispatches validated admin uploads into the catalog.
// Files are written before the database row; if the row insert fails,
// the written files are removed again.
type ContentService struct {
	catalog *CatalogService
	uploads *UploadService
}

func NewContentService(catalog *CatalogService, uploads *UploadService) *ContentService {
	return &ContentService{catalog: catalog, uploads: uploads}
}

// videoExtensions and pageExtensions narrow the global allowlist per
// content kind: anime and episodes carry video, manga and chapters
// carry page images or PDF volumes.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
}

var pageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

func allowedForKind(kind, filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch kind {
	case KindAnime, KindEpisode:
		return videoExtensions[ext]
	case KindManga, KindChapter:
		return pageExtensions[ext]
	default:
		return allowedExtensions[ext]
	}
}

// UploadContent validates and stores the submission, returning the id
// of the created catalog entity.
func (s *ContentService) UploadContent(p UploadParams) (int64, error) {
	if len(p.Files) == 0 || p.Files[0] == nil || p.Files[0].Filename == "" {
		return 0, fmt.Errorf("%w: no file uploaded", ErrInvalidFile)
	}

	for _, fh := range p.Files {
		if !allowedForKind(p.Kind, fh.Filename) {
			return 0, fmt.Errorf("%w: %q is not a valid %s file", ErrInvalidFile, fh.Filename, p.Kind)
		}
	}

	var stored []string
	cleanup := func() {
		for _, path := range stored {
			s.uploads.Remove(path)
		}
	}

	for _, fh := range p.Files {
		path, err := s.uploads.Save(fh)
		if err != nil {
			cleanup()
			return 0, err
		}
		stored = append(stored, path)
	}

	// Thumbnail is optional; an invalid one is ignored rather than
	// failing the whole upload, matching the form's behavior.
	thumbPath := ""
	if p.Thumbnail != nil && p.Thumbnail.Filename != "" && AllowedFile(p.Thumbnail.Filename) {
		path, err := s.uploads.Save(p.Thumbnail)
		if err != nil {
			slog.Warn("Failed to store thumbnail", "name", p.Thumbnail.Filename, "error", err)
		} else {
			thumbPath = path
			stored = append(stored, path)
		}
	}

	switch p.Kind {
	case KindAnime:
		anime, err := s.catalog.CreateAnime(p.Title, p.Description, p.Genres, thumbPath)
		if err != nil {
			cleanup()
			return 0, err
		}
		slog.Info("Anime created", "id", anime.ID, "title", anime.Title)
		return anime.ID, nil

	case KindManga:
		manga, err := s.catalog.CreateManga(p.Title, p.Description, p.Genres, thumbPath)
		if err != nil {
			cleanup()
			return 0, err
		}
		slog.Info("Manga created", "id", manga.ID, "title", manga.Title)
		return manga.ID, nil

	case KindEpisode:
		if p.ParentID <= 0 {
			cleanup()
			return 0, fmt.Errorf("%w: anime_id is required for episodes", ErrValidation)
		}
		ep, err := s.catalog.CreateEpisode(p.ParentID, p.Ordinal, p.Title, stored[0])
		if err != nil {
			cleanup()
			return 0, err
		}
		slog.Info("Episode created", "id", ep.ID, "anime_id", ep.AnimeID, "number", ep.EpisodeNumber)
		return ep.ID, nil

	case KindChapter:
		if p.ParentID <= 0 {
			cleanup()
			return 0, fmt.Errorf("%w: manga_id is required for chapters", ErrValidation)
		}
		// Pages are the primary files only; the thumbnail never joins
		// the page list.
		pages := stored[:len(p.Files)]
		ch, err := s.catalog.CreateChapter(p.ParentID, p.Ordinal, p.Title, pages)
		if err != nil {
			cleanup()
			return 0, err
		}
		slog.Info("Chapter created", "id", ch.ID, "manga_id", ch.MangaID, "number", ch.ChapterNumber, "pages", len(ch.Pages))
		return ch.ID, nil

	default:
		cleanup()
		return 0, fmt.Errorf("%w: unknown content type %q", ErrValidation, p.Kind)
	}
}
