package session

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/ytget/anime-downloader/internal/model"
)

// Status lines
const (
	StatusReady          = "Ready"
	StatusSearching      = "Searching..."
	StatusSearchFailed   = "Search failed"
	StatusLoadingDetails = "Loading anime details..."
	StatusDetailsLoaded  = "Anime details loaded"
	StatusDetailsFailed  = "Failed to load details"
	StatusDownloadDone   = "Download completed"
	StatusDownloadFailed = "Download failed"
	StatusNoStream       = "No stream found"
	StatusBatchDone      = "All downloads completed"
	StatusBatchPartial   = "Downloads finished with errors"

	LabelReady     = "Ready to download"
	LabelBatchDone = "All episodes downloaded!"
)

// Notification titles
const (
	TitleWarning = "Warning"
	TitleError   = "Error"
	TitleSuccess = "Success"
)

func statusFound(n int) string {
	return fmt.Sprintf("Found %d results", n)
}

func statusDownloading(ep model.EpisodeNumber) string {
	return fmt.Sprintf("Downloading %s...", ep.Label())
}

func labelPreparing(ep model.EpisodeNumber) string {
	return fmt.Sprintf("Preparing %s...", ep.Label())
}

func labelProgress(ep model.EpisodeNumber, percent float64) string {
	return fmt.Sprintf("Downloading %s: %.1f%%", ep.Label(), percent)
}

func labelDownloaded(ep model.EpisodeNumber) string {
	return fmt.Sprintf("%s downloaded successfully!", ep.Label())
}

func labelBatchEpisode(ep model.EpisodeNumber, i, total int) string {
	return fmt.Sprintf("Downloading %s (%d/%d)...", ep.Label(), i, total)
}

func messageNoStream(s model.DownloadSettings) string {
	return "No stream found for " + s.Describe()
}

func messageSaved(ep model.EpisodeNumber, path string) string {
	return fmt.Sprintf("%s downloaded to:\n%s", ep.Label(), path)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
