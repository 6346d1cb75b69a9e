package session

import (
	"errors"
	"fmt"

	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/platform"
)

var (
	// ErrInvalidSettings wraps every download settings validation failure
	ErrInvalidSettings = errors.New("incomplete download settings")
	// ErrNoSelection is returned when a download is requested before a
	// detail load has completed
	ErrNoSelection = errors.New("no anime selected")
	// ErrEmptyQuery is returned for blank search input
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrNoEpisodes is returned for a batch over an empty episode list
	ErrNoEpisodes = errors.New("no episodes available")
)

// RawSettings are the selector values as currently shown by the window
type RawSettings struct {
	Episode     string
	Language    string
	Quality     string
	Destination string
}

// BatchSettings apply to every episode of a batch
type BatchSettings struct {
	Language    model.Language
	Quality     model.Quality
	Destination string
}

// ParseSettings validates the selector values for a single download
func ParseSettings(raw RawSettings) (model.DownloadSettings, error) {
	ep, err := model.ParseEpisodeNumber(raw.Episode)
	if err != nil {
		return model.DownloadSettings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	batch, err := ParseBatchSettings(raw)
	if err != nil {
		return model.DownloadSettings{}, err
	}
	return model.DownloadSettings{
		Episode:     ep,
		Language:    batch.Language,
		Quality:     batch.Quality,
		Destination: batch.Destination,
	}, nil
}

// ParseBatchSettings validates every selector value except the episode
func ParseBatchSettings(raw RawSettings) (BatchSettings, error) {
	lang, err := model.ParseLanguage(raw.Language)
	if err != nil {
		return BatchSettings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	quality, err := model.ParseQuality(raw.Quality)
	if err != nil {
		return BatchSettings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	dir, err := platform.ResolveDirectory(raw.Destination)
	if err != nil {
		return BatchSettings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return BatchSettings{Language: lang, Quality: quality, Destination: dir}, nil
}

// ForEpisode combines batch settings with one episode
func (b BatchSettings) ForEpisode(ep model.EpisodeNumber) model.DownloadSettings {
	return model.DownloadSettings{
		Episode:     ep,
		Language:    b.Language,
		Quality:     b.Quality,
		Destination: b.Destination,
	}
}
