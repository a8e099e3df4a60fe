package database

import (
	"database/sql"
	"fmt"
)

// RunMigrations creates the full schema. Every statement is idempotent
// so the server can run it on each startup.
func RunMigrations(db *sql.DB) error {
	usersSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(80) UNIQUE NOT NULL,
		email VARCHAR(120) UNIQUE NOT NULL,
		password_hash VARCHAR(200) NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP
	);
	`
	if _, err := db.Exec(usersSQL); err != nil {
		return fmt.Errorf("failed to run users migration: %w", err)
	}

	catalogSQL := `
	CREATE TABLE IF NOT EXISTS anime (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT DEFAULT '',
		rating DOUBLE PRECISION DEFAULT 0,
		thumbnail VARCHAR(200) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS episodes (
		id BIGSERIAL PRIMARY KEY,
		anime_id BIGINT NOT NULL REFERENCES anime(id),
		episode_number INTEGER NOT NULL,
		title VARCHAR(200) DEFAULT '',
		video_url VARCHAR(200) NOT NULL,
		duration INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (anime_id, episode_number)
	);

	CREATE TABLE IF NOT EXISTS manga (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT DEFAULT '',
		rating DOUBLE PRECISION DEFAULT 0,
		thumbnail VARCHAR(200) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chapters (
		id BIGSERIAL PRIMARY KEY,
		manga_id BIGINT NOT NULL REFERENCES manga(id),
		chapter_number INTEGER NOT NULL,
		title VARCHAR(200) DEFAULT '',
		pages JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (manga_id, chapter_number)
	);
	`
	if _, err := db.Exec(catalogSQL); err != nil {
		return fmt.Errorf("failed to run catalog migration: %w", err)
	}

	genresSQL := `
	CREATE TABLE IF NOT EXISTS genres (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(80) UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS anime_genres (
		anime_id BIGINT NOT NULL REFERENCES anime(id),
		genre_id BIGINT NOT NULL REFERENCES genres(id),
		PRIMARY KEY (anime_id, genre_id)
	);

	CREATE TABLE IF NOT EXISTS manga_genres (
		manga_id BIGINT NOT NULL REFERENCES manga(id),
		genre_id BIGINT NOT NULL REFERENCES genres(id),
		PRIMARY KEY (manga_id, genre_id)
	);

	CREATE TABLE IF NOT EXISTS user_favorite_genres (
		user_id BIGINT NOT NULL REFERENCES users(id),
		genre_id BIGINT NOT NULL REFERENCES genres(id),
		PRIMARY KEY (user_id, genre_id)
	);
	`
	if _, err := db.Exec(genresSQL); err != nil {
		return fmt.Errorf("failed to run genres migration: %w", err)
	}

	historySQL := `
	CREATE TABLE IF NOT EXISTS watch_history (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		episode_id BIGINT NOT NULL REFERENCES episodes(id),
		progress INTEGER DEFAULT 0,
		watched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, episode_id)
	);

	CREATE TABLE IF NOT EXISTS read_history (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		chapter_id BIGINT NOT NULL REFERENCES chapters(id),
		page_number INTEGER DEFAULT 0,
		read_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, chapter_id)
	);
	`
	if _, err := db.Exec(historySQL); err != nil {
		return fmt.Errorf("failed to run history migration: %w", err)
	}

	return nil
}
