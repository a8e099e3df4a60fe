package services

import (
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"

	"tawsky/models"
)

// CatalogService owns the browsable catalog: anime and manga series
// plus their episode and chapter children.
type CatalogService struct {
	db     *sql.DB
	genres *GenreService
}

func NewCatalogService(db *sql.DB, genres *GenreService) *CatalogService {
	return &CatalogService{db: db, genres: genres}
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *CatalogService) CreateAnime(title, description string, genres []string, thumbnail string) (*models.Anime, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var anime models.Anime
	err := s.db.QueryRow(
		`INSERT INTO anime (title, description, thumbnail)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, description, rating, thumbnail, created_at`,
		title, description, thumbnail,
	).Scan(&anime.ID, &anime.Title, &anime.Description, &anime.Rating, &anime.Thumbnail, &anime.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create anime: %w", err)
	}

	if err := s.genres.SetAnimeGenres(anime.ID, genres); err != nil {
		return nil, err
	}
	anime.Genres, _ = s.genres.AnimeGenres(anime.ID)

	return &anime, nil
}

func (s *CatalogService) CreateManga(title, description string, genres []string, thumbnail string) (*models.Manga, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var manga models.Manga
	err := s.db.QueryRow(
		`INSERT INTO manga (title, description, thumbnail)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, description, rating, thumbnail, created_at`,
		title, description, thumbnail,
	).Scan(&manga.ID, &manga.Title, &manga.Description, &manga.Rating, &manga.Thumbnail, &manga.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create manga: %w", err)
	}

	if err := s.genres.SetMangaGenres(manga.ID, genres); err != nil {
		return nil, err
	}
	manga.Genres, _ = s.genres.MangaGenres(manga.ID)

	return &manga, nil
}

// CreateEpisode attaches an episode to an existing anime. The parent
// must exist and the episode number must be unique within it.
func (s *CatalogService) CreateEpisode(animeID int64, episodeNumber int, title, videoURL string) (*models.Episode, error) {
	if episodeNumber <= 0 {
		return nil, fmt.Errorf("%w: episode number must be positive", ErrValidation)
	}
	if videoURL == "" {
		return nil, fmt.Errorf("%w: video url is required", ErrValidation)
	}
	if _, err := s.GetAnime(animeID); err != nil {
		return nil, err
	}

	var ep models.Episode
	err := s.db.QueryRow(
		`INSERT INTO episodes (anime_id, episode_number, title, video_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, anime_id, episode_number, title, video_url, duration, created_at`,
		animeID, episodeNumber, title, videoURL,
	).Scan(&ep.ID, &ep.AnimeID, &ep.EpisodeNumber, &ep.Title, &ep.VideoURL, &ep.Duration, &ep.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: episode %d already exists for anime %d", ErrConflict, episodeNumber, animeID)
		}
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}

	return &ep, nil
}

// CreateChapter attaches a chapter with its page images to an existing
// manga. Pages are stored as a JSON array in reading order.
func (s *CatalogService) CreateChapter(mangaID int64, chapterNumber int, title string, pages []string) (*models.Chapter, error) {
	if chapterNumber <= 0 {
		return nil, fmt.Errorf("%w: chapter number must be positive", ErrValidation)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: at least one page is required", ErrValidation)
	}
	if _, err := s.GetManga(mangaID); err != nil {
		return nil, err
	}

	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pages: %w", err)
	}

	var ch models.Chapter
	var rawPages []byte
	err = s.db.QueryRow(
		`INSERT INTO chapters (manga_id, chapter_number, title, pages)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, manga_id, chapter_number, title, pages, created_at`,
		mangaID, chapterNumber, title, pagesJSON,
	).Scan(&ch.ID, &ch.MangaID, &ch.ChapterNumber, &ch.Title, &rawPages, &ch.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: chapter %d already exists for manga %d", ErrConflict, chapterNumber, mangaID)
		}
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	if err := json.Unmarshal(rawPages, &ch.Pages); err != nil {
		return nil, fmt.Errorf("failed to decode pages: %w", err)
	}

	return &ch, nil
}

func (s *CatalogService) GetAnime(id int64) (*models.Anime, error) {
	var anime models.Anime
	err := s.db.QueryRow(
		"SELECT id, title, description, rating, thumbnail, created_at FROM anime WHERE id = $1",
		id,
	).Scan(&anime.ID, &anime.Title, &anime.Description, &anime.Rating, &anime.Thumbnail, &anime.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: anime %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	anime.Genres, _ = s.genres.AnimeGenres(anime.ID)
	return &anime, nil
}

func (s *CatalogService) GetManga(id int64) (*models.Manga, error) {
	var manga models.Manga
	err := s.db.QueryRow(
		"SELECT id, title, description, rating, thumbnail, created_at FROM manga WHERE id = $1",
		id,
	).Scan(&manga.ID, &manga.Title, &manga.Description, &manga.Rating, &manga.Thumbnail, &manga.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: manga %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	manga.Genres, _ = s.genres.MangaGenres(manga.ID)
	return &manga, nil
}

func (s *CatalogService) ListAnime() ([]models.Anime, error) {
	rows, err := s.db.Query(
		"SELECT id, title, description, rating, thumbnail, created_at FROM anime ORDER BY title ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list anime: %w", err)
	}
	defer rows.Close()

	list := []models.Anime{}
	for rows.Next() {
		var a models.Anime
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Rating, &a.Thumbnail, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (s *CatalogService) ListManga() ([]models.Manga, error) {
	rows, err := s.db.Query(
		"SELECT id, title, description, rating, thumbnail, created_at FROM manga ORDER BY title ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list manga: %w", err)
	}
	defer rows.Close()

	list := []models.Manga{}
	for rows.Next() {
		var m models.Manga
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Rating, &m.Thumbnail, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListEpisodes returns the anime's episodes ordered by episode number.
func (s *CatalogService) ListEpisodes(animeID int64) ([]models.Episode, error) {
	rows, err := s.db.Query(
		`SELECT id, anime_id, episode_number, title, video_url, duration, created_at
		 FROM episodes WHERE anime_id = $1 ORDER BY episode_number ASC`,
		animeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	list := []models.Episode{}
	for rows.Next() {
		var ep models.Episode
		if err := rows.Scan(&ep.ID, &ep.AnimeID, &ep.EpisodeNumber, &ep.Title, &ep.VideoURL, &ep.Duration, &ep.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, ep)
	}
	return list, rows.Err()
}

// ListChapters returns the manga's chapters ordered by chapter number.
func (s *CatalogService) ListChapters(mangaID int64) ([]models.Chapter, error) {
	rows, err := s.db.Query(
		`SELECT id, manga_id, chapter_number, title, pages, created_at
		 FROM chapters WHERE manga_id = $1 ORDER BY chapter_number ASC`,
		mangaID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	list := []models.Chapter{}
	for rows.Next() {
		var ch models.Chapter
		var rawPages []byte
		if err := rows.Scan(&ch.ID, &ch.MangaID, &ch.ChapterNumber, &ch.Title, &rawPages, &ch.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawPages, &ch.Pages); err != nil {
			return nil, fmt.Errorf("failed to decode pages for chapter %d: %w", ch.ID, err)
		}
		list = append(list, ch)
	}
	return list, rows.Err()
}

// GetEpisodeByNumber resolves an episode by its (anime, number) pair,
// which is how the player page addresses episodes.
func (s *CatalogService) GetEpisodeByNumber(animeID int64, episodeNumber int) (*models.Episode, error) {
	var ep models.Episode
	err := s.db.QueryRow(
		`SELECT id, anime_id, episode_number, title, video_url, duration, created_at
		 FROM episodes WHERE anime_id = $1 AND episode_number = $2`,
		animeID, episodeNumber,
	).Scan(&ep.ID, &ep.AnimeID, &ep.EpisodeNumber, &ep.Title, &ep.VideoURL, &ep.Duration, &ep.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: episode %d of anime %d", ErrNotFound, episodeNumber, animeID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &ep, nil
}
