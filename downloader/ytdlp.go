package downloader

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/sirupsen/logrus"
)

// OutputTemplate is the yt-dlp file name pattern used inside a video directory.
const OutputTemplate = "%(title)s.%(ext)s"

func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// YtDlp shells out to the yt-dlp executable.
type YtDlp struct {
	Binary string
	// Timeout bounds a single download or duration lookup. Zero means no
	// limit.
	Timeout time.Duration
	// Progress receives every stdout line of a download when set. yt-dlp is
	// then run with --newline so each progress update is its own line.
	Progress func(videoID, line string)
}

func NewYtDlp(binary string, timeout time.Duration) *YtDlp {
	return &YtDlp{Binary: binary, Timeout: timeout}
}

// LogProgress is a Progress callback that writes each line at debug level.
func LogProgress(videoID, line string) {
	logrus.WithField("video", videoID).Debug(line)
}

// FetchDuration asks yt-dlp for the human readable duration of a video.
// Any output on stderr is treated as a failure.
func (y *YtDlp) FetchDuration(ctx context.Context, videoID string) (string, error) {
	const op = "YtDlp.FetchDuration"

	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.Binary, "--get-duration", VideoURL(videoID))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", apperrors.Tool(op, err, "yt-dlp failed: "+strings.TrimSpace(stderr.String()))
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return "", apperrors.Tool(op, nil, "yt-dlp reported: "+msg)
	}

	duration := strings.TrimSpace(stdout.String())
	if duration == "" {
		return "", apperrors.Tool(op, nil, "yt-dlp returned an empty duration")
	}
	return duration, nil
}

// DownloadVideo fetches the video into the location described by
// outputTemplate.
func (y *YtDlp) DownloadVideo(ctx context.Context, videoID, outputTemplate string) error {
	const op = "YtDlp.DownloadVideo"

	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}

	args := []string{"-o", outputTemplate}
	if y.Progress != nil {
		args = append(args, "--newline")
	}
	args = append(args, VideoURL(videoID))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.Binary, args...)
	cmd.Stderr = &stderr

	logrus.WithFields(logrus.Fields{
		"video":   videoID,
		"command": append([]string{y.Binary}, args...),
	}).Debug("Starting yt-dlp")

	if y.Progress == nil {
		if err := cmd.Run(); err != nil {
			return apperrors.Tool(op, err, "yt-dlp failed: "+strings.TrimSpace(stderr.String()))
		}
		return nil
	}

	stdoutIn, err := cmd.StdoutPipe()
	if err != nil {
		return apperrors.Tool(op, err, "failed to attach to yt-dlp output")
	}
	if err := cmd.Start(); err != nil {
		return apperrors.Tool(op, err, "failed to start yt-dlp")
	}

	in := bufio.NewScanner(stdoutIn)
	for in.Scan() {
		y.Progress(videoID, in.Text())
	}
	// Drain whatever the scanner gave up on so Wait does not block.
	_, _ = io.Copy(io.Discard, stdoutIn)

	if err := cmd.Wait(); err != nil {
		return apperrors.Tool(op, err, "yt-dlp failed: "+strings.TrimSpace(stderr.String()))
	}
	return nil
}
