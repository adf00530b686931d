package scheduler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nijaru/yt-archiver/downloader"
	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/nijaru/yt-archiver/history"
	"github.com/nijaru/yt-archiver/models"
	"github.com/nijaru/yt-archiver/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Catalog interface {
	ListPlaylists(ctx context.Context, channelID string) ([]models.Playlist, error)
	ListPlaylistItems(ctx context.Context, playlistID string) ([]models.Video, error)
}

type Downloader interface {
	DownloadVideo(ctx context.Context, videoID, outputTemplate string) error
}

type DurationProber interface {
	FetchDuration(ctx context.Context, videoID string) (string, error)
}

type QuotaMonitor interface {
	Reached() (bool, float64, error)
}

// Journal is told about every download attempt. Failures to write to it are
// logged and never stop a run.
type Journal interface {
	SetStatus(ctx context.Context, attempt models.Attempt) error
}

type Options struct {
	Catalog    Catalog
	Downloader Downloader
	Prober     DurationProber
	Ledger     *history.Ledger
	Monitor    QuotaMonitor
	Journal    Journal
	BaseDir    string
	Logger     *logrus.Entry
}

type StopReason string

const (
	StopQuota     StopReason = "quota reached"
	StopExhausted StopReason = "all playlists processed"
)

type Summary struct {
	Rounds     int
	Downloaded int
	Skipped    int
	Failed     int
	Reason     StopReason
}

// Scheduler walks playlists of several channels in rounds: round N visits
// playlist N of every channel that has one, so the storage quota is spread
// across channels instead of being spent on the first channel's catalog.
type Scheduler struct {
	catalog    Catalog
	downloader Downloader
	prober     DurationProber
	ledger     *history.Ledger
	monitor    QuotaMonitor
	journal    Journal
	baseDir    string
	log        *logrus.Entry
}

func New(opts Options) *Scheduler {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		catalog:    opts.Catalog,
		downloader: opts.Downloader,
		prober:     opts.Prober,
		ledger:     opts.Ledger,
		monitor:    opts.Monitor,
		journal:    opts.Journal,
		baseDir:    opts.BaseDir,
		log:        log,
	}
}

type channelPlaylists struct {
	channelID string
	dir       string
	playlists []models.Playlist
}

// Run downloads until the quota is reached or every playlist of every
// channel has been visited. Listing failures abort the run; a failed video
// is logged and skipped.
func (s *Scheduler) Run(ctx context.Context, channelIDs []string) (Summary, error) {
	var summary Summary

	channels := make([]channelPlaylists, 0, len(channelIDs))
	for _, channelID := range channelIDs {
		playlists, err := s.catalog.ListPlaylists(ctx, channelID)
		if err != nil {
			return summary, errors.Wrapf(err, "listing playlists of channel %s", channelID)
		}
		dir := filepath.Join(s.baseDir, utils.Sanitize("Channel_"+channelID))
		if err := mkdir(dir); err != nil {
			return summary, err
		}
		s.log.WithFields(logrus.Fields{
			"channel":   channelID,
			"playlists": len(playlists),
		}).Info("Found playlists on channel")
		channels = append(channels, channelPlaylists{channelID: channelID, dir: dir, playlists: playlists})
	}

	for round := 0; ; round++ {
		reached, used, err := s.monitor.Reached()
		if err != nil {
			return summary, err
		}
		if reached {
			s.log.WithField("usedGB", used).Warn("Storage quota reached, stopping")
			summary.Reason = StopQuota
			return summary, nil
		}

		visited := false
		for _, ch := range channels {
			if round >= len(ch.playlists) {
				s.log.WithFields(logrus.Fields{
					"channel": ch.channelID,
					"round":   round,
				}).Debug("Channel has no playlist for this round")
				continue
			}
			visited = true

			stop, err := s.processPlaylist(ctx, ch, ch.playlists[round], &summary)
			if err != nil {
				return summary, err
			}
			if stop {
				summary.Rounds = round + 1
				summary.Reason = StopQuota
				return summary, nil
			}
		}

		if !visited {
			summary.Reason = StopExhausted
			s.log.WithField("rounds", summary.Rounds).Info("Every playlist has been processed")
			return summary, nil
		}
		summary.Rounds = round + 1
	}
}

// processPlaylist reports stop=true when the quota was hit before a download.
func (s *Scheduler) processPlaylist(ctx context.Context, ch channelPlaylists, playlist models.Playlist, summary *Summary) (bool, error) {
	playlistName := utils.SafeName(playlist.Title)
	playlistDir := filepath.Join(ch.dir, playlistName)
	if err := mkdir(playlistDir); err != nil {
		return false, err
	}

	videos, err := s.catalog.ListPlaylistItems(ctx, playlist.ID)
	if err != nil {
		return false, errors.Wrapf(err, "listing items of playlist %s", playlist.ID)
	}

	log := s.log.WithFields(logrus.Fields{
		"channel":  ch.channelID,
		"playlist": playlist.Title,
	})
	log.WithField("videos", len(videos)).Info("Processing playlist")

	stop, err := s.processVideos(ctx, ch.channelID, playlist, playlistDir, videos, summary, log)

	if path, snapErr := history.WriteSnapshot(playlistDir, playlistName, videos); snapErr != nil {
		log.WithError(snapErr).Error("Failed to write playlist snapshot")
	} else {
		log.WithField("path", path).Debug("Wrote playlist snapshot")
	}

	return stop, err
}

func (s *Scheduler) processVideos(ctx context.Context, channelID string, playlist models.Playlist, playlistDir string, videos []models.Video, summary *Summary, log *logrus.Entry) (bool, error) {
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		vlog := log.WithField("video", video.Title)
		if s.ledger.HasDownloaded(channelID, playlist.ID, video.VideoID) {
			vlog.Info("Video was already downloaded")
			summary.Skipped++
			continue
		}

		reached, used, err := s.monitor.Reached()
		if err != nil {
			return false, err
		}
		if reached {
			vlog.WithField("usedGB", used).Warn("Storage quota reached before download, stopping")
			return true, nil
		}

		attempt := models.Attempt{VideoID: video.VideoID, ChannelID: channelID, PlaylistID: playlist.ID}
		s.recordAttempt(ctx, attempt, models.StatusInProgress, nil)

		downloaded, err := s.download(ctx, video, playlist, playlistDir, vlog)
		if err != nil {
			if ctx.Err() != nil {
				s.recordAttempt(ctx, attempt, models.StatusFailed, err)
				return false, ctx.Err()
			}
			vlog.WithError(err).Error("Failed to download video")
			s.recordAttempt(ctx, attempt, models.StatusFailed, err)
			summary.Failed++
			continue
		}

		s.ledger.RecordDownload(channelID, playlist.ID, downloaded)
		if err := s.ledger.Persist(); err != nil {
			return false, err
		}
		s.recordAttempt(ctx, attempt, models.StatusCompleted, nil)
		summary.Downloaded++
	}
	return false, nil
}

// download runs the external tool and returns the video with its
// post-download metadata filled in.
func (s *Scheduler) download(ctx context.Context, video models.Video, playlist models.Playlist, playlistDir string, log *logrus.Entry) (models.Video, error) {
	videoDir := filepath.Join(playlistDir, utils.SafeName(video.Title))
	if err := mkdir(videoDir); err != nil {
		return video, err
	}

	log.Info("Downloading video")
	template := filepath.Join(videoDir, downloader.OutputTemplate)
	if err := s.downloader.DownloadVideo(ctx, video.VideoID, template); err != nil {
		return video, err
	}
	log.WithField("dir", videoDir).Info("Video downloaded")

	duration, err := s.prober.FetchDuration(ctx, video.VideoID)
	if err != nil {
		return video, err
	}

	video.Duration = duration
	video.OriginalTitle = video.Title
	video.TransliteratedTitle = utils.Transliterate(video.Title)
	video.TitlePlaylist = playlist.Title
	return video, nil
}

func (s *Scheduler) recordAttempt(ctx context.Context, a models.Attempt, status models.AttemptStatus, cause error) {
	if s.journal == nil {
		return
	}
	a.Status = status
	if cause != nil {
		a.Error = cause.Error()
	}
	// The journal must still be written when ctx was cancelled mid-download.
	if err := s.journal.SetStatus(context.WithoutCancel(ctx), a); err != nil {
		s.log.WithError(err).WithField("video", a.VideoID).Warn("Failed to update attempt journal")
	}
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return apperrors.Filesystem("scheduler.mkdir", err, "failed to create "+dir)
	}
	return nil
}
