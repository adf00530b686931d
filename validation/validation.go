package validation

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/sirupsen/logrus"
)

var channelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ChannelID returns the channel id in raw, which is either a bare id or a
// https://www.youtube.com/channel/<id> URL.
func ChannelID(raw string) (string, error) {
	const op = "validation.ChannelID"

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.Validation(op, "channel id is required")
	}

	id := raw
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		parsedURL, err := url.ParseRequestURI(raw)
		if err != nil {
			return "", apperrors.Validation(op, "invalid channel URL format")
		}
		host := parsedURL.Hostname()
		if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
			return "", apperrors.Validation(op, "channel URL must point to youtube.com")
		}
		parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "channel" {
			return "", apperrors.Validation(op, "channel URL must have the form /channel/<id>")
		}
		id = parts[1]
	}

	if !channelIDPattern.MatchString(id) {
		return "", apperrors.Validation(op, "channel id contains invalid characters: "+id)
	}
	return id, nil
}

// ChannelIDs validates every argument and drops repeats, keeping the first
// occurrence so input order is preserved.
func ChannelIDs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, apperrors.Validation("validation.ChannelIDs", "at least one channel id is required")
	}

	seen := make(map[string]bool, len(args))
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := ChannelID(arg)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			logrus.WithField("channel", id).Warn("Duplicate channel id ignored")
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
