package models

import (
	"encoding/json"
	"time"
)

type Playlist struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Video is a playlist entry as returned by the catalog. The trailing fields
// are filled in once the video has been downloaded.
type Video struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PublishedAt string          `json:"publishedAt"`
	VideoID     string          `json:"videoId"`
	Thumbnails  json.RawMessage `json:"thumbnails,omitempty"`

	Duration            string `json:"duration,omitempty"`
	OriginalTitle       string `json:"originalTitle,omitempty"`
	TransliteratedTitle string `json:"transliteratedTitle,omitempty"`
	TitlePlaylist       string `json:"titlePlaylist,omitempty"`
}

type PlaylistHistory struct {
	ID     string  `json:"id"`
	Videos []Video `json:"videos"`
}

type ChannelHistory struct {
	Playlists []*PlaylistHistory `json:"playlists"`
}

// DownloadHistory maps a channel id to everything downloaded from it.
type DownloadHistory map[string]*ChannelHistory

type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "in_progress"
	StatusCompleted  AttemptStatus = "completed"
	StatusFailed     AttemptStatus = "failed"
)

type Attempt struct {
	VideoID    string
	ChannelID  string
	PlaylistID string
	Status     AttemptStatus
	Error      string
	// UpdatedAt is set by the journal on every write.
	UpdatedAt time.Time
}
