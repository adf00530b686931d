package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestErrorString(t *testing.T) {
	err := Tool("YtDlp.FetchDuration", nil, "yt-dlp wrote to stderr")

	expected := "YtDlp.FetchDuration: yt-dlp wrote to stderr"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := Tool("YtDlp.DownloadVideo", cause, "download failed")

	expected := "YtDlp.DownloadVideo: download failed: exit status 1"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if err.Unwrap() != cause {
		t.Errorf("expected Unwrap to return the cause")
	}
}

func TestKindHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"network", Network("op", nil, "status 500"), IsNetwork, true},
		{"empty result", EmptyResult("op", "no playlists"), IsEmptyResult, true},
		{"tool", Tool("op", nil, "exit"), IsTool, true},
		{"filesystem", Filesystem("op", nil, "mkdir"), IsFilesystem, true},
		{"validation", Validation("op", "bad id"), IsValidation, true},
		{"wrong kind", Network("op", nil, "status 500"), IsTool, false},
		{"plain error", fmt.Errorf("standard error"), IsNetwork, false},
		{"wrapped by pkg/errors", pkgerrors.Wrap(EmptyResult("op", "none"), "listing channel"), IsEmptyResult, true},
		{"wrapped by fmt", fmt.Errorf("outer: %w", Filesystem("op", nil, "x")), IsFilesystem, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindNetwork.String() != "network" {
		t.Errorf("expected 'network', got '%s'", KindNetwork.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("expected 'unknown', got '%s'", Kind(99).String())
	}
}
