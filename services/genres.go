package services

import (
	"database/sql"
	"fmt"
	"strings"
)

// GenreService maintains the genre tag tables. Genres are proper
// associations (genres + join tables), not delimited string columns;
// unknown names are created on first use.
type GenreService struct {
	db *sql.DB
}

func NewGenreService(db *sql.DB) *GenreService {
	return &GenreService{db: db}
}

// ensureGenre returns the id for a genre name, inserting it if needed.
func (s *GenreService) ensureGenre(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(
		`INSERT INTO genres (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure genre %q: %w", name, err)
	}
	return id, nil
}

// setGenres replaces the genre set behind a join table row-for-row.
// joinTable and ownerColumn are internal constants, never user input.
func (s *GenreService) setGenres(joinTable, ownerColumn string, ownerID int64, names []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", joinTable, ownerColumn), ownerID,
	); err != nil {
		return fmt.Errorf("failed to clear genres: %w", err)
	}

	for _, name := range Normalize(names) {
		genreID, err := s.ensureGenre(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (%s, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", joinTable, ownerColumn),
			ownerID, genreID,
		); err != nil {
			return fmt.Errorf("failed to attach genre %q: %w", name, err)
		}
	}

	return tx.Commit()
}

func (s *GenreService) listGenres(joinTable, ownerColumn string, ownerID int64) ([]string, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(
			`SELECT g.name FROM genres g
			 JOIN %s j ON j.genre_id = g.id
			 WHERE j.%s = $1
			 ORDER BY g.name ASC`, joinTable, ownerColumn),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *GenreService) SetAnimeGenres(animeID int64, names []string) error {
	return s.setGenres("anime_genres", "anime_id", animeID, names)
}

func (s *GenreService) AnimeGenres(animeID int64) ([]string, error) {
	return s.listGenres("anime_genres", "anime_id", animeID)
}

func (s *GenreService) SetMangaGenres(mangaID int64, names []string) error {
	return s.setGenres("manga_genres", "manga_id", mangaID, names)
}

func (s *GenreService) MangaGenres(mangaID int64) ([]string, error) {
	return s.listGenres("manga_genres", "manga_id", mangaID)
}

func (s *GenreService) SetUserFavorites(userID int64, names []string) error {
	return s.setGenres("user_favorite_genres", "user_id", userID, names)
}

func (s *GenreService) UserFavorites(userID int64) ([]string, error) {
	return s.listGenres("user_favorite_genres", "user_id", userID)
}

// Normalize trims whitespace and drops empty and duplicate names while
// keeping the original order.
func Normalize(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
