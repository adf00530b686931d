package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/nijaru/yt-archiver/models"
	"github.com/sirupsen/logrus"
)

// Ledger is the persisted record of downloaded videos, keyed by channel and
// playlist. It is not safe for concurrent use.
type Ledger struct {
	path    string
	history models.DownloadHistory
}

// Load reads the ledger at path. A missing file yields an empty ledger.
func Load(path string) (*Ledger, error) {
	const op = "history.Load"

	l := &Ledger{path: path, history: make(models.DownloadHistory)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("path", path).Info("No download history found, starting fresh")
			return l, nil
		}
		return nil, apperrors.Filesystem(op, err, "failed to read "+path)
	}

	if err := json.Unmarshal(data, &l.history); err != nil {
		return nil, apperrors.Filesystem(op, err, "malformed history file "+path)
	}
	if l.history == nil {
		l.history = make(models.DownloadHistory)
	}

	logrus.WithFields(logrus.Fields{
		"path":     path,
		"channels": len(l.history),
	}).Info("Loaded download history")
	return l, nil
}

func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) History() models.DownloadHistory {
	return l.history
}

func (l *Ledger) playlist(channelID, playlistID string) *models.PlaylistHistory {
	channel, ok := l.history[channelID]
	if !ok || channel == nil {
		return nil
	}
	for _, p := range channel.Playlists {
		if p != nil && p.ID == playlistID {
			return p
		}
	}
	return nil
}

func (l *Ledger) HasDownloaded(channelID, playlistID, videoID string) bool {
	p := l.playlist(channelID, playlistID)
	if p == nil {
		return false
	}
	for _, v := range p.Videos {
		if v.VideoID == videoID {
			return true
		}
	}
	return false
}

// VideoCount returns how many videos are recorded for the playlist.
func (l *Ledger) VideoCount(channelID, playlistID string) int {
	p := l.playlist(channelID, playlistID)
	if p == nil {
		return 0
	}
	return len(p.Videos)
}

// RecordDownload appends video to the playlist's history, creating the
// channel and playlist entries on first use. A video id that is already
// recorded for the playlist is left alone.
func (l *Ledger) RecordDownload(channelID, playlistID string, video models.Video) {
	channel, ok := l.history[channelID]
	if !ok || channel == nil {
		channel = &models.ChannelHistory{Playlists: []*models.PlaylistHistory{}}
		l.history[channelID] = channel
	}

	p := l.playlist(channelID, playlistID)
	if p == nil {
		p = &models.PlaylistHistory{ID: playlistID, Videos: []models.Video{}}
		channel.Playlists = append(channel.Playlists, p)
	}

	for _, v := range p.Videos {
		if v.VideoID == video.VideoID {
			return
		}
	}
	p.Videos = append(p.Videos, video)
}

// Persist overwrites the ledger file with the full history. The document is
// written to a temporary file first and renamed into place.
func (l *Ledger) Persist() error {
	const op = "Ledger.Persist"

	data, err := json.MarshalIndent(l.history, "", "  ")
	if err != nil {
		return apperrors.Filesystem(op, err, "failed to encode history")
	}
	if err := writeFileAtomic(l.path, data); err != nil {
		return apperrors.Filesystem(op, err, "failed to write "+l.path)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
