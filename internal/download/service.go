package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/platform"
)

const lockSuffix = ".lock"

// Service runs downloads with bounded retries
type Service struct {
	fetcher    Fetcher
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

// NewService creates a download service around fetcher
func NewService(fetcher Fetcher, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		newBackOff: defaultBackOff,
		logger:     logger.With().Str("component", "download").Logger(),
	}
}

// SetBackOff replaces the delay policy between attempts
func (s *Service) SetBackOff(factory func() backoff.BackOff) {
	if factory == nil {
		factory = defaultBackOff
	}
	s.newBackOff = factory
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Download implements Downloader
func (s *Service) Download(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Path) == "" {
		return "", errors.New("destination path is empty")
	}
	if req.Stream.URL == "" {
		return "", errors.New("stream url is empty")
	}

	container := req.Container
	if container == "" {
		container = model.Container
	}
	if !strings.HasPrefix(container, ".") {
		container = "." + container
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	finalPath := req.Path + container
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(finalPath)); err != nil {
		return "", err
	}

	lock := flock.New(finalPath + lockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("lock %s: %w", finalPath, err)
	}
	if !locked {
		return "", fmt.Errorf("%s: %w", finalPath, ErrDestinationBusy)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Str("path", finalPath).Msg("failed to release lock")
		}
		_ = os.Remove(lock.Path())
	}()

	job := Job{
		URL:            req.Stream.URL,
		Referer:        req.Stream.Referer,
		OutputTemplate: req.Path + ".%(ext)s",
		Format:         strings.TrimPrefix(container, "."),
		OnProgress: func(p Progress) {
			if req.OnProgress != nil {
				req.OnProgress(clampPercent(p.Percent))
			}
		},
	}

	attempt := 0
	op := func() error {
		attempt++
		notify(req.OnInfo, fmt.Sprintf("Downloading %s (attempt %d of %d)", filepath.Base(finalPath), attempt, maxAttempts))
		s.logger.Debug().Str("path", finalPath).Int("attempt", attempt).Msg("fetch started")

		err := s.fetcher.Fetch(ctx, job)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(maxAttempts-1)), ctx)
	err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		s.logger.Warn().Err(err).Str("path", finalPath).Int("attempt", attempt).Dur("retry_in", wait).Msg("fetch failed")
		notify(req.OnWarning, fmt.Sprintf("Attempt %d of %d failed: %v. Retrying in %s", attempt, maxAttempts, err, wait.Round(time.Millisecond)))
	})
	if err != nil {
		s.logger.Error().Err(err).Str("path", finalPath).Int("attempts", attempt).Msg("download failed")
		return "", fmt.Errorf("download failed after %d attempt(s): %w", attempt, err)
	}

	if req.OnProgress != nil {
		req.OnProgress(100)
	}
	if info, statErr := os.Stat(finalPath); statErr == nil {
		notify(req.OnInfo, fmt.Sprintf("Saved %s (%s)", filepath.Base(finalPath), humanize.Bytes(uint64(info.Size()))))
	}
	s.logger.Info().Str("path", finalPath).Int("attempts", attempt).Msg("download completed")
	return finalPath, nil
}

func notify(fn func(string), msg string) {
	if fn != nil {
		fn(msg)
	}
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
