package services

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

func newContentService(t *testing.T) (*ContentService, string) {
	t.Helper()
	dir := t.TempDir()
	uploads := NewUploadService(dir)
	// Catalog paths that reach the database are covered by the
	// integration tests; these tests exercise validation and cleanup,
	// which fail before any catalog call.
	return NewContentService(nil, uploads), dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	return names
}

func TestUploadContentValidation(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		svc, _ := newContentService(t)
		_, err := svc.UploadContent(UploadParams{Kind: KindAnime, Title: "Test Anime"})
		if !errors.Is(err, ErrInvalidFile) {
			t.Errorf("UploadContent without file = %v, want ErrInvalidFile", err)
		}
	})

	t.Run("disallowed extension", func(t *testing.T) {
		svc, dir := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:  KindAnime,
			Title: "Test Anime",
			Files: []*multipart.FileHeader{makeFileHeader(t, "file", "payload.exe", []byte("x"))},
		})
		if !errors.Is(err, ErrInvalidFile) {
			t.Errorf("UploadContent(payload.exe) = %v, want ErrInvalidFile", err)
		}
		if files := storedFiles(t, dir); len(files) != 0 {
			t.Errorf("rejected upload left files behind: %v", files)
		}
	})

	t.Run("image as anime primary file", func(t *testing.T) {
		// The global allowlist accepts jpg, but an anime's primary
		// file must be video.
		svc, dir := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:  KindAnime,
			Title: "Test Anime",
			Files: []*multipart.FileHeader{makeFileHeader(t, "file", "cover.jpg", []byte("x"))},
		})
		if !errors.Is(err, ErrInvalidFile) {
			t.Errorf("UploadContent(anime, cover.jpg) = %v, want ErrInvalidFile", err)
		}
		if files := storedFiles(t, dir); len(files) != 0 {
			t.Errorf("rejected upload left files behind: %v", files)
		}
	})

	t.Run("video as chapter page", func(t *testing.T) {
		svc, _ := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:    KindChapter,
			Ordinal: 1,
			Files:   []*multipart.FileHeader{makeFileHeader(t, "file", "ep1.mp4", []byte("x"))},
		})
		if !errors.Is(err, ErrInvalidFile) {
			t.Errorf("UploadContent(chapter, ep1.mp4) = %v, want ErrInvalidFile", err)
		}
	})

	t.Run("unknown kind cleans up stored files", func(t *testing.T) {
		svc, dir := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:  "podcast",
			Title: "Nope",
			Files: []*multipart.FileHeader{makeFileHeader(t, "file", "ep1.mp4", []byte("x"))},
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("UploadContent(unknown kind) = %v, want ErrValidation", err)
		}
		if files := storedFiles(t, dir); len(files) != 0 {
			t.Errorf("failed upload left files behind: %v", files)
		}
	})

	t.Run("episode without parent id", func(t *testing.T) {
		svc, dir := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:    KindEpisode,
			Title:   "Episode 1",
			Ordinal: 1,
			Files:   []*multipart.FileHeader{makeFileHeader(t, "file", "ep1.mp4", []byte("x"))},
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("UploadContent(episode, no parent) = %v, want ErrValidation", err)
		}
		if files := storedFiles(t, dir); len(files) != 0 {
			t.Errorf("failed upload left files behind: %v", files)
		}
	})

	t.Run("chapter without parent id", func(t *testing.T) {
		svc, dir := newContentService(t)
		_, err := svc.UploadContent(UploadParams{
			Kind:    KindChapter,
			Title:   "Chapter 1",
			Ordinal: 1,
			Files: []*multipart.FileHeader{
				makeFileHeader(t, "file", "p1.png", []byte("x")),
				makeFileHeader(t, "file", "p2.png", []byte("y")),
			},
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("UploadContent(chapter, no parent) = %v, want ErrValidation", err)
		}
		if files := storedFiles(t, dir); len(files) != 0 {
			t.Errorf("failed upload left files behind: %v", files)
		}
	})
}
