package services

import (
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"tawsky/database"
)

// openTestDB connects to the database named by TAWSKY_TEST_DATABASE_URL
// and ensures the schema exists. Tests that need PostgreSQL skip when
// the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TAWSKY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TAWSKY_TEST_DATABASE_URL not set; skipping database integration test")
	}

	db, err := database.Connect(url)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	db := openTestDB(t)
	genres := NewGenreService(db)
	auth := NewAuthService(db, genres)

	username := uniqueName("user")
	email := username + "@example.com"

	user, err := auth.Register(RegisterParams{
		Username:        username,
		Email:           email,
		Password:        "hunter2!",
		ConfirmPassword: "hunter2!",
		FavoriteGenres:  []string{"Action", "Drama"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "hunter2!" {
		t.Fatal("password stored in plaintext")
	}

	t.Run("login with correct credentials", func(t *testing.T) {
		got, err := auth.Authenticate(email, "hunter2!")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("Authenticate returned user %d, want %d", got.ID, user.ID)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		if _, err := auth.Authenticate(email, "wrong"); !errors.Is(err, ErrBadCredentials) {
			t.Errorf("Authenticate(wrong password) = %v, want ErrBadCredentials", err)
		}
	})

	t.Run("login with unknown email", func(t *testing.T) {
		if _, err := auth.Authenticate("nobody@example.com", "x"); !errors.Is(err, ErrBadCredentials) {
			t.Errorf("Authenticate(unknown email) = %v, want ErrBadCredentials", err)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := auth.Register(RegisterParams{
			Username:        uniqueName("other"),
			Email:           email,
			Password:        "pw",
			ConfirmPassword: "pw",
		})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Register(duplicate email) = %v, want ErrConflict", err)
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := auth.Register(RegisterParams{
			Username:        username,
			Email:           uniqueName("other") + "@example.com",
			Password:        "pw",
			ConfirmPassword: "pw",
		})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Register(duplicate username) = %v, want ErrConflict", err)
		}
	})

	t.Run("favorite genres round-trip", func(t *testing.T) {
		loaded, err := auth.GetUserByID(user.ID)
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if len(loaded.FavoriteGenres) != 2 {
			t.Errorf("favorite genres = %v, want 2 entries", loaded.FavoriteGenres)
		}
	})
}

func seedUserAndEpisode(t *testing.T, db *sql.DB) (userID, episodeID int64) {
	t.Helper()
	genres := NewGenreService(db)
	auth := NewAuthService(db, genres)
	catalog := NewCatalogService(db, genres)

	username := uniqueName("viewer")
	user, err := auth.Register(RegisterParams{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "pw",
		ConfirmPassword: "pw",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	anime, err := catalog.CreateAnime(uniqueName("Anime"), "test series", []string{"Action"}, "")
	if err != nil {
		t.Fatalf("CreateAnime: %v", err)
	}
	ep, err := catalog.CreateEpisode(anime.ID, 1, "First", "static/uploads/ep1.mp4")
	if err != nil {
		t.Fatalf("CreateEpisode: %v", err)
	}

	return user.ID, ep.ID
}

func TestWatchProgressUpsertIdempotence(t *testing.T) {
	db := openTestDB(t)
	history := NewHistoryService(db)
	userID, episodeID := seedUserAndEpisode(t, db)

	if err := history.RecordWatchProgress(userID, episodeID, 90); err != nil {
		t.Fatalf("first RecordWatchProgress: %v", err)
	}
	if err := history.RecordWatchProgress(userID, episodeID, 240); err != nil {
		t.Fatalf("second RecordWatchProgress: %v", err)
	}

	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM watch_history WHERE user_id = $1 AND episode_id = $2",
		userID, episodeID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d watch_history rows, want exactly 1", count)
	}

	got, err := history.GetWatchProgress(userID, episodeID)
	if err != nil {
		t.Fatalf("GetWatchProgress: %v", err)
	}
	if got.Progress != 240 {
		t.Errorf("progress = %d, want the last written value 240", got.Progress)
	}
}

func TestConcurrentWatchProgressWrites(t *testing.T) {
	db := openTestDB(t)
	history := NewHistoryService(db)
	userID, episodeID := seedUserAndEpisode(t, db)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(progress int) {
			defer wg.Done()
			if err := history.RecordWatchProgress(userID, episodeID, progress); err != nil {
				t.Errorf("RecordWatchProgress(%d): %v", progress, err)
			}
		}(i * 10)
	}
	wg.Wait()

	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM watch_history WHERE user_id = $1 AND episode_id = $2",
		userID, episodeID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("concurrent upserts produced %d rows, want 1", count)
	}
}

func TestEpisodeParentAndOrdinalRules(t *testing.T) {
	db := openTestDB(t)
	genres := NewGenreService(db)
	catalog := NewCatalogService(db, genres)

	t.Run("missing parent", func(t *testing.T) {
		if _, err := catalog.CreateEpisode(-1, 1, "x", "v.mp4"); !errors.Is(err, ErrNotFound) {
			t.Errorf("CreateEpisode(missing parent) = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate ordinal conflicts", func(t *testing.T) {
		anime, err := catalog.CreateAnime(uniqueName("Anime"), "", nil, "")
		if err != nil {
			t.Fatalf("CreateAnime: %v", err)
		}
		if _, err := catalog.CreateEpisode(anime.ID, 1, "a", "a.mp4"); err != nil {
			t.Fatalf("first CreateEpisode: %v", err)
		}
		if _, err := catalog.CreateEpisode(anime.ID, 1, "b", "b.mp4"); !errors.Is(err, ErrConflict) {
			t.Errorf("duplicate episode number = %v, want ErrConflict", err)
		}
	})

	t.Run("episodes listed in ordinal order", func(t *testing.T) {
		anime, err := catalog.CreateAnime(uniqueName("Anime"), "", nil, "")
		if err != nil {
			t.Fatalf("CreateAnime: %v", err)
		}
		for _, n := range []int{3, 1, 2} {
			if _, err := catalog.CreateEpisode(anime.ID, n, "", fmt.Sprintf("ep%d.mp4", n)); err != nil {
				t.Fatalf("CreateEpisode(%d): %v", n, err)
			}
		}
		eps, err := catalog.ListEpisodes(anime.ID)
		if err != nil {
			t.Fatalf("ListEpisodes: %v", err)
		}
		for i, ep := range eps {
			if ep.EpisodeNumber != i+1 {
				t.Fatalf("episode at index %d has number %d, want %d", i, ep.EpisodeNumber, i+1)
			}
		}
	})
}

func TestUploadContentEndToEnd(t *testing.T) {
	db := openTestDB(t)
	genres := NewGenreService(db)
	catalog := NewCatalogService(db, genres)
	uploads := NewUploadService(t.TempDir())
	content := NewContentService(catalog, uploads)

	title := uniqueName("Test Anime")

	t.Run("image rejected as anime primary file", func(t *testing.T) {
		_, err := content.UploadContent(UploadParams{
			Kind:  KindAnime,
			Title: title,
			Files: []*multipart.FileHeader{makeFileHeader(t, "file", "cover.jpg", []byte("img"))},
		})
		if !errors.Is(err, ErrInvalidFile) {
			t.Fatalf("UploadContent(cover.jpg) = %v, want ErrInvalidFile", err)
		}
	})

	t.Run("retry with a video succeeds", func(t *testing.T) {
		id, err := content.UploadContent(UploadParams{
			Kind:   KindAnime,
			Title:  title,
			Genres: []string{"Action"},
			Files:  []*multipart.FileHeader{makeFileHeader(t, "file", "ep1.mp4", []byte("video"))},
		})
		if err != nil {
			t.Fatalf("UploadContent(ep1.mp4): %v", err)
		}

		anime, err := catalog.GetAnime(id)
		if err != nil {
			t.Fatalf("GetAnime(%d): %v", id, err)
		}
		if anime.Title != title {
			t.Errorf("created anime title = %q, want %q", anime.Title, title)
		}
	})
}

func TestChapterPagesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	genres := NewGenreService(db)
	catalog := NewCatalogService(db, genres)

	manga, err := catalog.CreateManga(uniqueName("Manga"), "", []string{"Horror"}, "")
	if err != nil {
		t.Fatalf("CreateManga: %v", err)
	}

	pages := []string{"static/uploads/p1.png", "static/uploads/p2.png", "static/uploads/p3.png"}
	ch, err := catalog.CreateChapter(manga.ID, 1, "Opening", pages)
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	if len(ch.Pages) != 3 {
		t.Fatalf("created chapter has %d pages, want 3", len(ch.Pages))
	}

	chapters, err := catalog.ListChapters(manga.ID)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if len(chapters) != 1 || len(chapters[0].Pages) != 3 {
		t.Fatalf("listed chapters = %+v, want one chapter with 3 pages", chapters)
	}
	if chapters[0].Pages[0] != pages[0] {
		t.Errorf("page order not preserved: %v", chapters[0].Pages)
	}
}
