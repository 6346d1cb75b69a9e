package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/anime-downloader/internal/model"
)

func rawSettings(dir string) RawSettings {
	return RawSettings{Episode: "Episode 3", Language: "SUB", Quality: "720", Destination: dir}
}

func newSelectedHarness(t *testing.T, name string, episodes ...model.EpisodeNumber) *harness {
	t.Helper()
	h := newHarness(t)
	h.provider.search["q"] = []model.SearchResult{result(name, "id1", model.LanguageSub)}
	h.provider.episodes["id1"] = episodes
	h.selectEntity("q", 0)
	return h
}

func TestDownloadEpisodeFinalPath(t *testing.T) {
	dir := t.TempDir()
	h := newSelectedHarness(t, `Re:Zero / Starting "Life"?`, 1, 2, 3)

	if err := h.c.DownloadEpisode(rawSettings(dir)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	h.settle()

	want := filepath.Join(dir, "Re_Zero _ Starting _Life__Episode_3.mkv")
	infos := h.view.notificationsAt(LevelInfo)
	if len(infos) != 1 {
		t.Fatalf("Expected one success notification, got %v", h.view.notifications)
	}
	if infos[0].Path != want {
		t.Errorf("Expected path %s, got %s", want, infos[0].Path)
	}
	if infos[0].Message != "Episode 3 downloaded to:\n"+want {
		t.Errorf("Unexpected message %q", infos[0].Message)
	}
	if h.view.lastProgress() != 100 {
		t.Errorf("Expected progress 100, got %v", h.view.lastProgress())
	}
	if h.view.lastStatus() != StatusDownloadDone {
		t.Errorf("Unexpected status %q", h.view.lastStatus())
	}

	req := h.downloader.requests[0]
	if req.MaxAttempts != 3 || req.Container != model.Container {
		t.Errorf("Unexpected request %+v", req)
	}
}

func TestDownloadEpisodeReportsCallbacks(t *testing.T) {
	h := newSelectedHarness(t, "A", 1)
	_ = h.c.DownloadEpisode(RawSettings{Episode: "1", Language: "sub", Quality: "720p", Destination: t.TempDir()})
	h.settle()

	var sawInfo bool
	for _, s := range h.view.statuses {
		if s == "connecting" {
			sawInfo = true
		}
	}
	if !sawInfo {
		t.Errorf("Expected info message on the status line, got %v", h.view.statuses)
	}

	var sawLabel bool
	for _, l := range h.view.labels {
		if l == "Downloading Episode 1: 50.0%" {
			sawLabel = true
		}
	}
	if !sawLabel {
		t.Errorf("Expected progress label, got %v", h.view.labels)
	}

	tasks := h.c.State().Tasks()
	if len(tasks) != 1 || tasks[0].Status != model.TaskStatusCompleted {
		t.Fatalf("Expected one completed task, got %+v", tasks)
	}
	var statuses []model.TaskStatus
	for _, tk := range h.view.tasks {
		if len(statuses) == 0 || statuses[len(statuses)-1] != tk.Status {
			statuses = append(statuses, tk.Status)
		}
	}
	want := []model.TaskStatus{model.TaskStatusPreparing, model.TaskStatusResolving, model.TaskStatusDownloading, model.TaskStatusCompleted}
	if len(statuses) != len(want) {
		t.Fatalf("Expected %v, got %v", want, statuses)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("status[%d] = %s, want %s", i, statuses[i], want[i])
		}
	}
}

func TestDownloadEpisodeInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		raw  RawSettings
	}{
		{"empty episode", RawSettings{Language: "SUB", Quality: "720", Destination: dir}},
		{"malformed episode", RawSettings{Episode: "Episode x", Language: "SUB", Quality: "720", Destination: dir}},
		{"empty quality", RawSettings{Episode: "1", Language: "SUB", Destination: dir}},
		{"unknown quality", RawSettings{Episode: "1", Language: "SUB", Quality: "4k", Destination: dir}},
		{"unknown language", RawSettings{Episode: "1", Language: "RAW", Quality: "720", Destination: dir}},
		{"empty path", RawSettings{Episode: "1", Language: "SUB", Quality: "720", Destination: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSelectedHarness(t, "A", 1)
			progressBefore := len(h.view.progress)

			err := h.c.DownloadEpisode(tt.raw)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
			if h.c.Dispatcher().InFlight() != 0 || h.queue.Len() != 0 {
				t.Error("Expected no dispatch")
			}
			if len(h.view.progress) != progressBefore {
				t.Error("Progress must not change")
			}
			if len(h.view.notificationsAt(LevelWarning)) != 1 {
				t.Errorf("Expected one warning, got %v", h.view.notifications)
			}
			if len(h.downloader.requests) != 0 {
				t.Error("Expected no download")
			}
		})
	}
}

func TestDownloadRequiresSelection(t *testing.T) {
	h := newHarness(t)
	if err := h.c.DownloadEpisode(rawSettings(t.TempDir())); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if err := h.c.DownloadAll(rawSettings(t.TempDir())); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if len(h.view.progress) != 0 {
		t.Error("Progress must not change")
	}
}

func TestDownloadEpisodeNoStream(t *testing.T) {
	h := newSelectedHarness(t, "A", 1, 2, 3)
	h.provider.noStream[3] = true

	_ = h.c.DownloadEpisode(rawSettings(t.TempDir()))
	h.settle()

	warns := h.view.notificationsAt(LevelWarning)
	if len(warns) != 1 || warns[0].Message != "No stream found for Episode 3 (SUB, 720p)" {
		t.Errorf("Unexpected notifications %v", h.view.notifications)
	}
	if len(h.view.notificationsAt(LevelError)) != 0 {
		t.Error("No stream must not be reported as an error")
	}
	if h.view.lastStatus() != StatusNoStream || h.view.lastProgress() != 0 {
		t.Errorf("Unexpected final state %q %v", h.view.lastStatus(), h.view.lastProgress())
	}
	if len(h.downloader.requests) != 0 {
		t.Error("Expected no download without a stream")
	}
}

func TestDownloadEpisodeFailure(t *testing.T) {
	h := newSelectedHarness(t, "A", 3)
	h.downloader.failOn["https://cdn.example/id1/3"] = errBoom

	_ = h.c.DownloadEpisode(rawSettings(t.TempDir()))
	h.settle()

	errs := h.view.notificationsAt(LevelError)
	if len(errs) != 1 || errs[0].Message != "Download failed: boom" {
		t.Errorf("Unexpected notifications %v", h.view.notifications)
	}
	if h.view.lastStatus() != StatusDownloadFailed || h.view.lastProgress() != 0 {
		t.Errorf("Unexpected final state %q %v", h.view.lastStatus(), h.view.lastProgress())
	}
	var sawWarning bool
	for _, s := range h.view.statuses {
		if s == "Warning: attempt failed" {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Errorf("Expected warning on status line, got %v", h.view.statuses)
	}
}

func TestDownloadAllPartialFailure(t *testing.T) {
	dir := t.TempDir()
	h := newSelectedHarness(t, "Mob: 100", 1, 2, 3, 4)
	h.provider.noStream[2] = true

	if err := h.c.DownloadAll(RawSettings{Language: "SUB", Quality: "1080", Destination: dir}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	h.settle()

	if len(h.downloader.requests) != 3 {
		t.Fatalf("Expected 3 downloads, got %d", len(h.downloader.requests))
	}
	for _, req := range h.downloader.requests {
		if !strings.HasPrefix(filepath.Base(req.Path), "Mob_ 100_Episode_") {
			t.Errorf("Unexpected path %s", req.Path)
		}
	}

	errs := h.view.notificationsAt(LevelError)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "Episode 2") {
		t.Errorf("Expected one per-episode failure, got %v", h.view.notifications)
	}
	if h.view.lastProgress() != 100 {
		t.Errorf("Expected final progress 100, got %v", h.view.lastProgress())
	}
	for i := 1; i < len(h.view.progress); i++ {
		if h.view.progress[i] < h.view.progress[i-1] {
			t.Errorf("Progress went backwards: %v", h.view.progress)
			break
		}
	}
	if h.view.lastStatus() != StatusBatchPartial {
		t.Errorf("Unexpected status %q", h.view.lastStatus())
	}
	warns := h.view.notificationsAt(LevelWarning)
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "Downloaded 3 of 4") || !strings.Contains(warns[0].Message, "Failed: Episode 2") {
		t.Errorf("Expected a summary naming the failed episode, got %v", warns)
	}

	for _, s := range h.view.statuses {
		if s == "connecting" || strings.HasPrefix(s, "Warning:") {
			t.Errorf("Batch must not surface per-episode messages, got %q", s)
		}
	}

	var completed, noStream int
	for _, tk := range h.c.State().Tasks() {
		switch tk.Status {
		case model.TaskStatusCompleted:
			completed++
		case model.TaskStatusNoStream:
			noStream++
		}
	}
	if completed != 3 || noStream != 1 {
		t.Errorf("Expected 3 completed and 1 without stream, got %d and %d", completed, noStream)
	}
}

func TestDownloadAllSuccess(t *testing.T) {
	dir := t.TempDir()
	h := newSelectedHarness(t, "A", 1, 2)

	_ = h.c.DownloadAll(RawSettings{Language: "SUB", Quality: "720", Destination: dir})
	h.settle()

	if h.view.lastStatus() != StatusBatchDone {
		t.Errorf("Unexpected status %q", h.view.lastStatus())
	}
	infos := h.view.notificationsAt(LevelInfo)
	if len(infos) != 1 || infos[0].Message != "All episodes downloaded to:\n"+dir {
		t.Errorf("Unexpected notifications %v", h.view.notifications)
	}
	if h.view.labels[len(h.view.labels)-1] != LabelBatchDone {
		t.Errorf("Unexpected label %q", h.view.labels[len(h.view.labels)-1])
	}
}

func TestDownloadAllInvalidSettings(t *testing.T) {
	h := newSelectedHarness(t, "A", 1)
	progressBefore := len(h.view.progress)

	err := h.c.DownloadAll(RawSettings{Language: "SUB", Quality: "", Destination: t.TempDir()})
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if h.c.Dispatcher().InFlight() != 0 || len(h.view.progress) != progressBefore {
		t.Error("Expected no dispatch and no progress change")
	}
}

func TestDownloadAllWithoutEpisodes(t *testing.T) {
	h := newSelectedHarness(t, "A")
	if err := h.c.DownloadAll(rawSettings(t.TempDir())); !errors.Is(err, ErrNoEpisodes) {
		t.Errorf("Expected ErrNoEpisodes, got %v", err)
	}
}
