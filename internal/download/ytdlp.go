package download

import (
	"context"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

const progressInterval = 500 * time.Millisecond

// YTDLP fetches streams by running the yt-dlp executable
type YTDLP struct {
	executable string
}

// NewYTDLP creates a fetcher. An empty executable uses yt-dlp from PATH.
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

// Fetch implements Fetcher
func (y *YTDLP) Fetch(ctx context.Context, job Job) error {
	dl := ytdlp.New().
		ForceOverwrites().
		NoPlaylist().
		Output(job.OutputTemplate)

	if y.executable != "" {
		dl.SetExecutable(y.executable)
	}
	if job.Format != "" {
		dl.RemuxVideo(job.Format)
	}
	if job.Referer != "" {
		dl.AddHeaders("Referer:" + job.Referer)
	}

	if job.OnProgress != nil {
		dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			job.OnProgress(progressFromUpdate(update))
		})
	}

	_, err := dl.Run(ctx, job.URL)
	return err
}

func progressFromUpdate(update ytdlp.ProgressUpdate) Progress {
	p := Progress{ETA: update.ETA()}
	if update.DownloadedBytes > 0 {
		p.DownloadedBytes = uint64(update.DownloadedBytes)
	}
	if update.TotalBytes > 0 {
		p.TotalBytes = uint64(update.TotalBytes)
		p.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}
	return p
}
