package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Filename  string
	MaxSizeMB int
	Level     string
}

// Setup points the standard logrus logger at stdout and a size-capped log
// file. When the file exceeds MaxSizeMB it is rolled over and only the most
// recent backup is kept. The returned closer releases the file.
func Setup(opts Options) (io.Closer, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
	}

	if dir := filepath.Dir(opts.Filename); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "creating log directory")
		}
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: 1,
		MaxAge:     0,
		Compress:   false,
		LocalTime:  true,
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	logrus.SetOutput(io.MultiWriter(os.Stdout, logFile))

	return logFile, nil
}
