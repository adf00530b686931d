package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/nijaru/yt-archiver/catalog"
	"github.com/nijaru/yt-archiver/config"
	"github.com/nijaru/yt-archiver/db"
	"github.com/nijaru/yt-archiver/diskusage"
	"github.com/nijaru/yt-archiver/downloader"
	"github.com/nijaru/yt-archiver/history"
	"github.com/nijaru/yt-archiver/logger"
	"github.com/nijaru/yt-archiver/scheduler"
	"github.com/nijaru/yt-archiver/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("yt-archiver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "optional .env file to load")
	quota := fs.Float64("quota", 0, "storage quota in GB, overrides QUOTA_GB")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: yt-archiver [flags] <channelId|channelURL>...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	channelIDs, err := validation.ChannelIDs(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "invalid channel: %v\n", err)
		return exitUsage
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	cfg := config.LoadConfig()
	if *quota > 0 {
		cfg.QuotaGB = *quota
	}
	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitError
	}

	logFile, err := logger.Setup(logger.Options{
		Filename:  cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Level:     cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to set up logging: %v\n", err)
		return exitError
	}
	defer logFile.Close()

	log := logrus.WithField("run_id", uuid.New().String())
	log.WithFields(logrus.Fields{
		"channels": channelIDs,
		"quotaGB":  cfg.QuotaGB,
		"dir":      cfg.DownloadDir,
	}).Info("Starting run")

	if err := archive(ctx, cfg, channelIDs, log); err != nil {
		log.WithError(err).Error("Run failed")
		return exitError
	}
	return exitOK
}

func archive(ctx context.Context, cfg *config.Config, channelIDs []string, log *logrus.Entry) error {
	if err := os.MkdirAll(cfg.DownloadDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "creating download directory")
	}

	ledger, err := history.Load(cfg.HistoryPath)
	if err != nil {
		return err
	}

	var journal scheduler.Journal
	if cfg.JournalPath != "" {
		j, err := db.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				log.WithError(err).Error("Failed to close attempt journal")
			}
		}()
		journal = j
	}

	client := catalog.NewClient(catalog.Config{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.APIBaseURL,
		MaxResults:        cfg.MaxResults,
		Timeout:           cfg.HTTPTimeout,
		RateLimit:         cfg.RateLimit,
		RateLimitInterval: cfg.RateLimitInterval,
	})

	ytdlp := downloader.NewYtDlp(cfg.YtDlpPath, cfg.DownloadTimeout)
	if cfg.StreamProgress {
		ytdlp.Progress = downloader.LogProgress
	}

	var prober scheduler.DurationProber = ytdlp
	if cfg.DurationSource == config.DurationSourceAPI {
		prober = downloader.NewAPIProber(&http.Client{Timeout: cfg.HTTPTimeout})
	}

	s := scheduler.New(scheduler.Options{
		Catalog:    client,
		Downloader: ytdlp,
		Prober:     prober,
		Ledger:     ledger,
		Monitor:    diskusage.NewMonitor(cfg.DownloadDir, cfg.QuotaGB),
		Journal:    journal,
		BaseDir:    cfg.DownloadDir,
		Logger:     log,
	})

	summary, err := s.Run(ctx, channelIDs)
	log.WithFields(logrus.Fields{
		"rounds":     summary.Rounds,
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"reason":     summary.Reason,
	}).Info("Run finished")
	return err
}
