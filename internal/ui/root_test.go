package ui

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/config"
	"github.com/ytget/anime-downloader/internal/download"
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/relay"
	"github.com/ytget/anime-downloader/internal/session"
)

type stubCatalog struct {
	episodeCalls atomic.Int32
	failEpisodes atomic.Bool
}

func (*stubCatalog) Name() string { return "stub" }

func (*stubCatalog) Search(_ context.Context, query string) ([]model.SearchResult, error) {
	return []model.SearchResult{{
		Name:       query,
		Identifier: "id-1",
		Languages:  model.NewLanguageSet(model.LanguageSub, model.LanguageDub),
	}}, nil
}

func (c *stubCatalog) Episodes(context.Context, string, model.Language) ([]model.EpisodeNumber, error) {
	c.episodeCalls.Add(1)
	if c.failEpisodes.Load() {
		return nil, errors.New("catalog unavailable")
	}
	return []model.EpisodeNumber{1, 2, 3}, nil
}

func (*stubCatalog) Streams(context.Context, string, model.EpisodeNumber, model.Language) ([]model.Stream, error) {
	return nil, errors.New("offline")
}

type nopDownloader struct{}

func (nopDownloader) Download(context.Context, download.Request) (string, error) {
	return "", errors.New("offline")
}

func newTestRootUI(t *testing.T) (*RootUI, *relay.Queue) {
	t.Helper()
	ui, queue, _ := newTestRootUIWithCatalog(t)
	return ui, queue
}

func newTestRootUIWithCatalog(t *testing.T) (*RootUI, *relay.Queue, *stubCatalog) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	window := app.NewWindow("test")
	settings := config.NewSettings(app)
	queue := relay.NewQueue()
	catalog := &stubCatalog{}
	controller := session.NewController(catalog, nopDownloader{}, queue, session.Options{}, zerolog.Nop())
	return NewRootUI(window, app, controller, settings, zerolog.Nop()), queue, catalog
}

func settle(ui *RootUI, queue *relay.Queue) {
	ui.controller.Dispatcher().Wait()
	queue.Drain()
}

func TestRootUI_DownloadButtonsStartDisabled(t *testing.T) {
	ui, _ := newTestRootUI(t)

	if !ui.downloadBtn.Disabled() || !ui.downloadAllBtn.Disabled() {
		t.Fatal("download buttons should be disabled until details load")
	}

	ui.SetDownloadEnabled(true)
	if ui.downloadBtn.Disabled() || ui.downloadAllBtn.Disabled() {
		t.Fatal("download buttons should be enabled")
	}
}

func TestRootUI_SearchAndSelect(t *testing.T) {
	ui, queue := newTestRootUI(t)

	test.Type(ui.searchEntry, "Frieren")
	test.Tap(ui.searchBtn)
	settle(ui, queue)

	if len(ui.results) != 1 || ui.results[0].Name != "Frieren" {
		t.Fatalf("results = %+v", ui.results)
	}
	if ui.statusLabel.Text != "Found 1 results" {
		t.Errorf("status = %q", ui.statusLabel.Text)
	}

	ui.resultsList.Select(0)
	settle(ui, queue)

	if ui.titleLabel.Text != "Frieren" {
		t.Errorf("title = %q", ui.titleLabel.Text)
	}
	if got := ui.episodeSelect.Options; len(got) != 3 {
		t.Fatalf("episode options = %v", got)
	}
	if ui.episodeSelect.Selected != "Episode 1" {
		t.Errorf("episode = %q, want first episode preselected", ui.episodeSelect.Selected)
	}
	if ui.downloadBtn.Disabled() {
		t.Error("download should be enabled once details load")
	}
	if ui.episodeCount != 3 {
		t.Errorf("episodeCount = %d", ui.episodeCount)
	}
}

func TestRootUI_RetrySameResultAfterFailedLoad(t *testing.T) {
	ui, queue, catalog := newTestRootUIWithCatalog(t)
	test.Type(ui.searchEntry, "Frieren")
	test.Tap(ui.searchBtn)
	settle(ui, queue)

	catalog.failEpisodes.Store(true)
	ui.resultsList.Select(0)
	settle(ui, queue)
	if ui.controller.State().Selected() != nil {
		t.Fatal("Expected failed load to leave nothing selected")
	}

	catalog.failEpisodes.Store(false)
	ui.resultsList.Select(0)
	settle(ui, queue)

	if got := catalog.episodeCalls.Load(); got != 2 {
		t.Fatalf("episode loads = %d, want 2", got)
	}
	if ui.titleLabel.Text != "Frieren" {
		t.Errorf("title = %q after retry", ui.titleLabel.Text)
	}
}

func TestRootUI_ShowDetailsPrefersStoredAudio(t *testing.T) {
	ui, _ := newTestRootUI(t)
	ui.settings.SetAudioLanguage(model.LanguageDub)

	ui.ShowDetails(session.Details{
		Title:     "Mushishi",
		Languages: []model.Language{model.LanguageSub, model.LanguageDub},
		Episodes:  []model.EpisodeNumber{1, 2},
	})
	if ui.languageSelect.Selected != "DUB" {
		t.Errorf("language = %q, want DUB", ui.languageSelect.Selected)
	}

	ui.ShowDetails(session.Details{
		Title:     "Mushishi",
		Languages: []model.Language{model.LanguageSub},
		Episodes:  []model.EpisodeNumber{1},
	})
	if ui.languageSelect.Selected != "SUB" {
		t.Errorf("language = %q, want fallback to SUB", ui.languageSelect.Selected)
	}
	if ui.settings.GetAudioLanguage() != model.LanguageDub {
		t.Error("showing details must not change the stored audio preference")
	}

	ui.ClearDetails()
	if ui.episodeSelect.Selected != "" || len(ui.languageSelect.Options) != 0 || ui.episodeCount != 0 {
		t.Error("ClearDetails should reset the selectors")
	}
}

func TestRootUI_RawSettings(t *testing.T) {
	ui, _ := newTestRootUI(t)
	ui.ShowDetails(session.Details{
		Title:     "Mushishi",
		Languages: []model.Language{model.LanguageSub},
		Episodes:  []model.EpisodeNumber{1, 2},
	})
	ui.episodeSelect.SetSelected("Episode 2")
	ui.qualitySelect.SetSelected("480")
	ui.pathEntry.SetText("/tmp/anime")

	raw := ui.rawSettings()
	want := session.RawSettings{Episode: "Episode 2", Language: "SUB", Quality: "480", Destination: "/tmp/anime"}
	if raw != want {
		t.Errorf("rawSettings() = %+v, want %+v", raw, want)
	}
	if ui.settings.GetQuality() != model.Quality480 {
		t.Errorf("quality change should persist, got %v", ui.settings.GetQuality())
	}
}

func TestRootUI_UpdateTaskReplacesInPlace(t *testing.T) {
	ui, _ := newTestRootUI(t)
	task := model.NewDownloadTask("id-1", "Frieren", 1)

	ui.UpdateTask(task.Snapshot())
	task.SetProgress(40)
	ui.UpdateTask(task.Snapshot())
	ui.UpdateTask(model.NewDownloadTask("id-1", "Frieren", 2).Snapshot())

	if len(ui.tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(ui.tasks))
	}
	if ui.tasks[0].Percent != 40 {
		t.Errorf("first task percent = %v, want 40", ui.tasks[0].Percent)
	}
}

func TestRootUI_ProgressAndStatus(t *testing.T) {
	ui, _ := newTestRootUI(t)

	ui.SetProgress(62.5)
	ui.SetProgressLabel("Downloading Episode 1: 62.5%")
	ui.SetStatus("Downloading...")

	if ui.progressBar.Value != 62.5 || ui.progressBar.Max != ProgressMax {
		t.Errorf("progress = %v/%v", ui.progressBar.Value, ui.progressBar.Max)
	}
	if ui.progressLabel.Text != "Downloading Episode 1: 62.5%" {
		t.Errorf("label = %q", ui.progressLabel.Text)
	}
	if ui.statusLabel.Text != "Downloading..." {
		t.Errorf("status = %q", ui.statusLabel.Text)
	}
}

func TestSettingsDialog_Apply(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	window := app.NewWindow("test")
	settings := config.NewSettings(app)

	saved := false
	sd := NewSettingsDialog(settings, NewLocalization(), window, func() { saved = true })
	sd.loadCurrentSettings()

	sd.downloadDirEntry.SetText("/srv/anime")
	sd.qualitySelect.SetSelected("360")
	sd.audioSelect.SetSelected("DUB")
	sd.attemptsEntry.SetText("25")
	sd.autoRevealCheck.SetChecked(true)
	sd.languageSelect.SetSelected("Русский")
	sd.onSave(true)

	if !saved {
		t.Error("onSaved was not called")
	}
	if got := settings.GetDownloadDirectory(); got != "/srv/anime" {
		t.Errorf("directory = %q", got)
	}
	if settings.GetQuality() != model.Quality360 {
		t.Errorf("quality = %v", settings.GetQuality())
	}
	if settings.GetAudioLanguage() != model.LanguageDub {
		t.Errorf("audio = %v", settings.GetAudioLanguage())
	}
	if settings.GetMaxAttempts() != config.MaxMaxAttempts {
		t.Errorf("attempts = %d, want clamp to %d", settings.GetMaxAttempts(), config.MaxMaxAttempts)
	}
	if !settings.GetAutoRevealOnComplete() {
		t.Error("auto reveal not saved")
	}
	if settings.GetLanguage() != "ru" {
		t.Errorf("language = %q", settings.GetLanguage())
	}
}

func TestSettingsDialog_CancelKeepsValues(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	settings := config.NewSettings(app)
	settings.SetMaxAttempts(4)

	sd := NewSettingsDialog(settings, NewLocalization(), app.NewWindow("test"), nil)
	sd.loadCurrentSettings()
	sd.attemptsEntry.SetText("abc")
	sd.onSave(false)
	sd.apply()

	if settings.GetMaxAttempts() != 4 {
		t.Errorf("attempts = %d, unparsable input should keep the stored value", settings.GetMaxAttempts())
	}
}
