package config

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/anime-downloader/internal/model"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	// Test setting custom value
	customDir := "/custom/anime"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestQuality(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if q := settings.GetQuality(); q != model.DefaultQuality {
		t.Errorf("Expected default quality %v, got %v", model.DefaultQuality, q)
	}

	settings.SetQuality(model.Quality1080)
	if q := settings.GetQuality(); q != model.Quality1080 {
		t.Errorf("Expected quality 1080, got %v", q)
	}

	settings.SetQuality(model.Quality(999))
	if q := settings.GetQuality(); q != model.DefaultQuality {
		t.Errorf("Unsupported quality should reset to default, got %v", q)
	}
}

func TestAudioLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if lang := settings.GetAudioLanguage(); lang != model.LanguageSub {
		t.Errorf("Expected default SUB, got %s", lang)
	}

	settings.SetAudioLanguage(model.LanguageDub)
	if lang := settings.GetAudioLanguage(); lang != model.LanguageDub {
		t.Errorf("Expected DUB, got %s", lang)
	}
}

func TestMaxAttempts(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	if got := settings.GetMaxAttempts(); got != DefaultMaxAttempts {
		t.Errorf("Expected default attempts %d, got %d", DefaultMaxAttempts, got)
	}

	settings.SetMaxAttempts(5)
	if got := settings.GetMaxAttempts(); got != 5 {
		t.Errorf("Expected attempts 5, got %d", got)
	}

	// Test boundary values
	settings.SetMaxAttempts(0)
	if settings.GetMaxAttempts() != MinMaxAttempts {
		t.Error("Attempts should be clamped to minimum 1")
	}

	settings.SetMaxAttempts(15)
	if settings.GetMaxAttempts() != MaxMaxAttempts {
		t.Error("Attempts should be clamped to maximum 10")
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if lang := settings.GetLanguage(); lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	settings.SetLanguage("ru")
	if lang := settings.GetLanguage(); lang != "ru" {
		t.Errorf("Expected language ru, got %s", lang)
	}

	options := settings.GetLanguageOptions()
	for _, code := range []string{"system", "en", "ru"} {
		if _, ok := options[code]; !ok {
			t.Errorf("Expected language option %s", code)
		}
	}
}

func TestAutoRevealOnComplete(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.GetAutoRevealOnComplete() != DefaultAutoRevealComplete {
		t.Error("Expected default auto-reveal value")
	}

	settings.SetAutoRevealOnComplete(true)
	if !settings.GetAutoRevealOnComplete() {
		t.Error("Expected auto-reveal to be enabled")
	}
}
