package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWithoutChannelsPrintsUsage(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), nil, &stderr)

	if code != exitUsage {
		t.Errorf("expected exit code %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), "usage: yt-archiver") {
		t.Errorf("expected usage on stderr, got %q", stderr.String())
	}
}

func TestRunRejectsInvalidChannel(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"not a channel!"}, &stderr)

	if code != exitUsage {
		t.Errorf("expected exit code %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), "invalid channel") {
		t.Errorf("expected channel error on stderr, got %q", stderr.String())
	}
}

func TestRunRequiresAPIKey(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	missingEnv := filepath.Join(t.TempDir(), "missing.env")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-env", missingEnv, "UCxxx"}, &stderr)

	if code != exitError {
		t.Errorf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr.String(), "YOUTUBE_API_KEY") {
		t.Errorf("expected configuration error on stderr, got %q", stderr.String())
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-bogus", "UCxxx"}, &stderr)

	if code != exitUsage {
		t.Errorf("expected exit code %d, got %d", exitUsage, code)
	}
}
