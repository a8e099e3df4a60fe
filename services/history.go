package services

import (
	"database/sql"
	"fmt"

	"tawsky/models"
)

// HistoryService tracks per-user progress against episodes and
// chapters. Writes are single-statement upserts keyed by the
// (user, content) pair, so concurrent writers cannot duplicate rows;
// the last commit wins.
type HistoryService struct {
	db *sql.DB
}

func NewHistoryService(db *sql.DB) *HistoryService {
	return &HistoryService{db: db}
}

// RecordWatchProgress stores the playback position in seconds for the
// user's (episode) pair, creating or overwriting the single row.
func (s *HistoryService) RecordWatchProgress(userID, episodeID int64, progressSeconds int) error {
	_, err := s.db.Exec(
		`INSERT INTO watch_history (user_id, episode_id, progress, watched_at)
		 VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, episode_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			watched_at = CURRENT_TIMESTAMP`,
		userID, episodeID, progressSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to record watch progress: %w", err)
	}
	return nil
}

// RecordReadProgress stores the page number for the user's (chapter)
// pair, creating or overwriting the single row.
func (s *HistoryService) RecordReadProgress(userID, chapterID int64, pageNumber int) error {
	_, err := s.db.Exec(
		`INSERT INTO read_history (user_id, chapter_id, page_number, read_at)
		 VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, chapter_id) DO UPDATE SET
			page_number = EXCLUDED.page_number,
			read_at = CURRENT_TIMESTAMP`,
		userID, chapterID, pageNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to record read progress: %w", err)
	}
	return nil
}

// GetWatchProgress returns the stored position for (user, episode), or
// ErrNotFound when the user has not watched the episode.
func (s *HistoryService) GetWatchProgress(userID, episodeID int64) (*models.WatchHistory, error) {
	var h models.WatchHistory
	err := s.db.QueryRow(
		`SELECT id, user_id, episode_id, progress, watched_at
		 FROM watch_history WHERE user_id = $1 AND episode_id = $2`,
		userID, episodeID,
	).Scan(&h.ID, &h.UserID, &h.EpisodeID, &h.Progress, &h.WatchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no watch history for user %d episode %d", ErrNotFound, userID, episodeID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &h, nil
}

// GetReadProgress returns the stored position for (user, chapter), or
// ErrNotFound when the user has not read the chapter.
func (s *HistoryService) GetReadProgress(userID, chapterID int64) (*models.ReadHistory, error) {
	var h models.ReadHistory
	err := s.db.QueryRow(
		`SELECT id, user_id, chapter_id, page_number, read_at
		 FROM read_history WHERE user_id = $1 AND chapter_id = $2`,
		userID, chapterID,
	).Scan(&h.ID, &h.UserID, &h.ChapterID, &h.PageNumber, &h.ReadAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no read history for user %d chapter %d", ErrNotFound, userID, chapterID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &h, nil
}
