package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/nijaru/yt-archiver/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

type Config struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	Timeout           time.Duration
	RateLimit         int
	RateLimitInterval time.Duration
}

// Client lists playlists and playlist items through the YouTube Data API.
// Only the first page of each listing is fetched.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 && cfg.RateLimitInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateLimitInterval/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

func (c *Client) ListPlaylists(ctx context.Context, channelID string) ([]models.Playlist, error) {
	const op = "Client.ListPlaylists"

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)

	body, err := c.get(ctx, op, "playlists", params)
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(body, "items").Array()
	if len(items) == 0 {
		return nil, apperrors.EmptyResult(op, fmt.Sprintf("no playlists found for channel %q", channelID))
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, item := range items {
		playlists = append(playlists, models.Playlist{
			ID:    item.Get("id").String(),
			Title: item.Get("snippet.title").String(),
		})
	}

	logrus.WithFields(logrus.Fields{
		"channel":   channelID,
		"playlists": len(playlists),
	}).Info("Found playlists")
	return playlists, nil
}

func (c *Client) ListPlaylistItems(ctx context.Context, playlistID string) ([]models.Video, error) {
	const op = "Client.ListPlaylistItems"

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)

	body, err := c.get(ctx, op, "playlistItems", params)
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(body, "items").Array()
	videos := make([]models.Video, 0, len(items))
	for _, item := range items {
		snippet := item.Get("snippet")
		video := models.Video{
			Title:       snippet.Get("title").String(),
			Description: snippet.Get("description").String(),
			PublishedAt: snippet.Get("publishedAt").String(),
			VideoID:     snippet.Get("resourceId.videoId").String(),
		}
		if thumbs := snippet.Get("thumbnails"); thumbs.Exists() {
			video.Thumbnails = json.RawMessage(thumbs.Raw)
		}
		videos = append(videos, video)
	}

	logrus.WithFields(logrus.Fields{
		"playlist": playlistID,
		"videos":   len(videos),
	}).Debug("Fetched playlist items")
	return videos, nil
}

func (c *Client) get(ctx context.Context, op, resource string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "waiting for rate limiter")
	}

	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Network(op, err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Network(op, err, "request to "+resource+" failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network(op, err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("%s returned status %d", resource, resp.StatusCode)
		if apiMsg := gjson.GetBytes(body, "error.message").String(); apiMsg != "" {
			message += ": " + apiMsg
		}
		return nil, apperrors.Network(op, nil, message)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperrors.Network(op, nil, resource+" returned a malformed JSON body")
	}
	return body, nil
}
