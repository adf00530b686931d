package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nijaru/yt-archiver/models"
	"github.com/sirupsen/logrus"
)

// Journal records every download attempt in SQLite. It is descriptive only:
// the JSON ledger stays the source of truth for what has been downloaded.
type Journal struct {
	db *sql.DB
}

func Open(dbPath string) (*Journal, error) {
	logrus.WithField("path", dbPath).Info("Initializing attempt journal")

	// Ensure the directory for the database file exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating directory for database: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Writes come from a single goroutine.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS attempts (
                    video_id TEXT NOT NULL,
                    channel_id TEXT NOT NULL,
                    playlist_id TEXT NOT NULL,
                    status TEXT NOT NULL DEFAULT 'in_progress',
                    error TEXT NOT NULL DEFAULT '',
                    updated_at TIMESTAMP NOT NULL,
                    PRIMARY KEY (channel_id, playlist_id, video_id)
)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating table: %v", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) SetStatus(ctx context.Context, a models.Attempt) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO attempts (video_id, channel_id, playlist_id, status, error, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(channel_id, playlist_id, video_id) DO UPDATE SET status=excluded.status, error=excluded.error, updated_at=excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %v", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, a.VideoID, a.ChannelID, a.PlaylistID, string(a.Status), a.Error, time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error executing statement: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}

	return nil
}

// GetStatus returns the recorded attempt, or ok=false if the video was never
// attempted.
func (j *Journal) GetStatus(ctx context.Context, channelID, playlistID, videoID string) (models.Attempt, bool, error) {
	a := models.Attempt{ChannelID: channelID, PlaylistID: playlistID, VideoID: videoID}
	var status string
	err := j.db.QueryRowContext(ctx,
		"SELECT status, error, updated_at FROM attempts WHERE channel_id = ? AND playlist_id = ? AND video_id = ?",
		channelID, playlistID, videoID).Scan(&status, &a.Error, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, false, nil
		}
		return a, false, fmt.Errorf("error querying database: %v", err)
	}
	a.Status = models.AttemptStatus(status)
	return a, true, nil
}

func (j *Journal) CountByStatus(ctx context.Context, status models.AttemptStatus) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attempts WHERE status = ?", string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error querying database: %v", err)
	}
	return n, nil
}
