package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/nijaru/yt-archiver/models"
)

// WriteSnapshot stores the fetched playlist listing as <dir>/<name>.json.
// Snapshots are descriptive only and are never read back.
func WriteSnapshot(dir, name string, videos []models.Video) (string, error) {
	const op = "history.WriteSnapshot"

	if videos == nil {
		videos = []models.Video{}
	}
	data, err := json.MarshalIndent(videos, "", "  ")
	if err != nil {
		return "", apperrors.Filesystem(op, err, "failed to encode playlist listing")
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.Filesystem(op, err, "failed to write "+path)
	}
	return path, nil
}
