package models

import "time"

// Anime is a top-level browsable series. Genres are loaded from the
// anime_genres association, not stored on the row itself.
type Anime struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	Rating      float64   `json:"rating"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at"`
}

type Episode struct {
	ID            int64     `json:"id"`
	AnimeID       int64     `json:"anime_id"`
	EpisodeNumber int       `json:"episode_number"`
	Title         string    `json:"title"`
	VideoURL      string    `json:"video_url"`
	Duration      int       `json:"duration"` // seconds
	CreatedAt     time.Time `json:"created_at"`
}

type Manga struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	Rating      float64   `json:"rating"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chapter pages hold the stored image paths in reading order.
type Chapter struct {
	ID            int64     `json:"id"`
	MangaID       int64     `json:"manga_id"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	Pages         []string  `json:"pages"`
	CreatedAt     time.Time `json:"created_at"`
}
