package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyQuality            = "default_quality"
	KeyAudioLanguage      = "audio_language"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyMaxAttempts        = "max_download_attempts"
)

// Default values
const (
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
	DefaultMaxAttempts        = 3
	MinMaxAttempts            = 1
	MaxMaxAttempts            = 10
	FallbackDownloadDir       = "/tmp/downloads"
)

// Settings manages persisted user preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = FallbackDownloadDir
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetQuality returns the preferred stream quality
func (s *Settings) GetQuality() model.Quality {
	q, err := model.ParseQuality(s.app.Preferences().String(KeyQuality))
	if err != nil {
		return model.DefaultQuality
	}
	return q
}

// SetQuality stores the preferred quality. Unsupported values reset to
// the default.
func (s *Settings) SetQuality(q model.Quality) {
	if _, err := model.ParseQuality(q.String()); err != nil {
		q = model.DefaultQuality
	}
	s.app.Preferences().SetString(KeyQuality, q.String())
}

// GetAudioLanguage returns the preferred audio language
func (s *Settings) GetAudioLanguage() model.Language {
	lang, err := model.ParseLanguage(s.app.Preferences().String(KeyAudioLanguage))
	if err != nil {
		return model.LanguageSub
	}
	return lang
}

// SetAudioLanguage stores the preferred audio language
func (s *Settings) SetAudioLanguage(lang model.Language) {
	s.app.Preferences().SetString(KeyAudioLanguage, lang.String())
}

// GetLanguage returns the configured UI language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the UI language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available UI language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
	}
}

// GetAutoRevealOnComplete returns whether to reveal finished downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal finished downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetMaxAttempts returns how many times a download is tried
func (s *Settings) GetMaxAttempts() int {
	value := s.app.Preferences().Int(KeyMaxAttempts)
	if value <= 0 {
		s.SetMaxAttempts(DefaultMaxAttempts)
		return DefaultMaxAttempts
	}
	return value
}

// SetMaxAttempts sets the download attempt ceiling, clamped to 1..10
func (s *Settings) SetMaxAttempts(count int) {
	if count < MinMaxAttempts {
		count = MinMaxAttempts
	}
	if count > MaxMaxAttempts {
		count = MaxMaxAttempts
	}
	s.app.Preferences().SetInt(KeyMaxAttempts, count)
}
