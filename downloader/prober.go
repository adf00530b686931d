package downloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kkdai/youtube/v2"
	apperrors "github.com/nijaru/yt-archiver/errors"
)

// APIProber reads video durations from YouTube's player API instead of
// running yt-dlp a second time.
type APIProber struct {
	client *youtube.Client
}

func NewAPIProber(httpClient *http.Client) *APIProber {
	return &APIProber{client: &youtube.Client{HTTPClient: httpClient}}
}

func (p *APIProber) FetchDuration(ctx context.Context, videoID string) (string, error) {
	video, err := p.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", apperrors.Tool("APIProber.FetchDuration", err, "failed to get video "+videoID)
	}
	return FormatDuration(video.Duration), nil
}

// FormatDuration renders d the way yt-dlp --get-duration does: "45",
// "3:21", "1:02:03".
func FormatDuration(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d:%02d", m, s)
	default:
		return fmt.Sprintf("%d", s)
	}
}
