package download

// Package download stores resolved streams on disk using yt-dlp
// (via github.com/lrstanley/go-ytdlp). Attempts are retried with exponential
// backoff, each destination is guarded by a file lock, and progress, info and
// warning messages are reported through per-request callbacks.
