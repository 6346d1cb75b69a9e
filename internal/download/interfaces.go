package download

import (
	"context"
	"errors"
	"time"

	"github.com/ytget/anime-downloader/internal/model"
)

// DefaultMaxAttempts is the retry ceiling used when a request leaves it unset
const DefaultMaxAttempts = 3

// ErrDestinationBusy is returned when another download holds the target path
var ErrDestinationBusy = errors.New("destination is being written by another download")

// Downloader stores a stream at a destination path.
type Downloader interface {
	// Download blocks until the file is stored or every attempt failed and
	// returns the final path: req.Path followed by the container extension.
	Download(ctx context.Context, req Request) (string, error)
}

// Request describes one download
type Request struct {
	Stream model.Stream
	// Path is the destination without extension
	Path        string
	Container   string
	MaxAttempts int

	OnProgress func(percent float64)
	OnInfo     func(msg string)
	OnWarning  func(msg string)
}

// Progress is one sample reported by a Fetcher
type Progress struct {
	Percent         float64
	DownloadedBytes uint64
	TotalBytes      uint64
	ETA             time.Duration
}

// Job is a single fetch attempt handed to a Fetcher
type Job struct {
	URL     string
	Referer string
	// OutputTemplate is a yt-dlp output template, e.g. "/dir/name.%(ext)s"
	OutputTemplate string
	// Format is the remux target without leading dot, e.g. "mkv"
	Format     string
	OnProgress func(Progress)
}

// Fetcher performs one attempt. It is not expected to retry.
type Fetcher interface {
	Fetch(ctx context.Context, job Job) error
}
