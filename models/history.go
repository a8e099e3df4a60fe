package models

import "time"

// WatchHistory records a user's playback position in an episode.
// At most one row exists per (user, episode).
type WatchHistory struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EpisodeID int64     `json:"episode_id"`
	Progress  int       `json:"progress"` // seconds
	WatchedAt time.Time `json:"watched_at"`
}

// ReadHistory records a user's page position in a chapter.
// At most one row exists per (user, chapter).
type ReadHistory struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ChapterID  int64     `json:"chapter_id"`
	PageNumber int       `json:"page_number"`
	ReadAt     time.Time `json:"read_at"`
}
