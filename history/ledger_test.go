package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/nijaru/yt-archiver/errors"
	"github.com/nijaru/yt-archiver/models"
)

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "download_history.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(l.History()) != 0 {
		t.Errorf("expected empty history, got %d channels", len(l.History()))
	}
	if l.HasDownloaded("UCxxx", "PL1", "v1") {
		t.Error("expected nothing to be downloaded")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsFilesystem(err) {
		t.Errorf("expected filesystem error, got %v", err)
	}
}

func TestRecordAndHasDownloaded(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "h.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	l.RecordDownload("UCxxx", "PL1", models.Video{VideoID: "v1", Title: "one"})
	l.RecordDownload("UCxxx", "PL2", models.Video{VideoID: "v2", Title: "two"})
	l.RecordDownload("UCyyy", "PL1", models.Video{VideoID: "v3", Title: "three"})

	tests := []struct {
		channel, playlist, video string
		want                     bool
	}{
		{"UCxxx", "PL1", "v1", true},
		{"UCxxx", "PL2", "v2", true},
		{"UCyyy", "PL1", "v3", true},
		{"UCxxx", "PL1", "v2", false},
		{"UCyyy", "PL1", "v1", false},
		{"UCzzz", "PL1", "v1", false},
	}
	for _, tt := range tests {
		if got := l.HasDownloaded(tt.channel, tt.playlist, tt.video); got != tt.want {
			t.Errorf("HasDownloaded(%s, %s, %s) = %v, want %v", tt.channel, tt.playlist, tt.video, got, tt.want)
		}
	}

	playlists := l.History()["UCxxx"].Playlists
	if len(playlists) != 2 || playlists[0].ID != "PL1" || playlists[1].ID != "PL2" {
		t.Errorf("expected playlists in insertion order [PL1 PL2], got %+v", playlists)
	}
}

func TestRecordDownloadIsAppendOnly(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "h.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	prev := 0
	for _, id := range []string{"a", "b", "a", "c", "b"} {
		l.RecordDownload("UCxxx", "PL1", models.Video{VideoID: id})
		n := l.VideoCount("UCxxx", "PL1")
		if n < prev {
			t.Fatalf("video count decreased from %d to %d", prev, n)
		}
		prev = n
	}
	if prev != 3 {
		t.Errorf("expected 3 unique videos, got %d", prev)
	}
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "download_history.json")
	l, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	video := models.Video{
		Title:               "Урок 1",
		VideoID:             "v1",
		PublishedAt:         "2024-01-01T00:00:00Z",
		Thumbnails:          json.RawMessage(`{"default":{"url":"https://i.ytimg.com/vi/v1/default.jpg"}}`),
		Duration:            "3:21",
		OriginalTitle:       "Урок 1",
		TransliteratedTitle: "Urok 1",
		TitlePlaylist:       "Demo",
	}
	l.RecordDownload("UCxxx", "PL1", video)
	if err := l.Persist(); err != nil {
		t.Fatalf("failed to persist: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !reloaded.HasDownloaded("UCxxx", "PL1", "v1") {
		t.Fatal("expected v1 to survive a reload")
	}
	got := reloaded.History()["UCxxx"].Playlists[0].Videos[0]
	if got.Duration != "3:21" || got.TransliteratedTitle != "Urok 1" || got.TitlePlaylist != "Demo" {
		t.Errorf("metadata lost on reload: %+v", got)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("expected no temp files left behind, got %v", matches)
	}
}

func TestLoadToleratesUnknownEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_history.json")
	doc := `{
  "UCother": {"playlists": [{"id": "PLx", "videos": [{"videoId": "z", "title": "z", "rating": 5}]}], "note": "extra"},
  "UCxxx": {"playlists": []}
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !l.HasDownloaded("UCother", "PLx", "z") {
		t.Error("expected existing record for UCother/PLx/z")
	}

	l.RecordDownload("UCxxx", "PL1", models.Video{VideoID: "v1"})
	if err := l.Persist(); err != nil {
		t.Fatalf("failed to persist: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !reloaded.HasDownloaded("UCother", "PLx", "z") || !reloaded.HasDownloaded("UCxxx", "PL1", "v1") {
		t.Error("expected both channels to be kept")
	}
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	videos := []models.Video{{VideoID: "v1", Title: "one"}, {VideoID: "v2", Title: "two"}}

	path, err := WriteSnapshot(dir, "Demo", videos)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != filepath.Join(dir, "Demo.json") {
		t.Errorf("unexpected snapshot path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	var got []models.Video
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("snapshot is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[1].VideoID != "v2" {
		t.Errorf("unexpected snapshot contents: %+v", got)
	}

	if _, err := WriteSnapshot(dir, "Empty", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "Empty.json"))
	if string(data) != "[]" {
		t.Errorf("expected empty array, got %s", data)
	}
}
