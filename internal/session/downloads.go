package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ytget/anime-downloader/internal/dispatch"
	"github.com/ytget/anime-downloader/internal/download"
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/platform"
	"github.com/ytget/anime-downloader/internal/provider"
)

// DownloadEpisode validates raw and downloads one episode of the committed
// selection. Invalid settings are reported without dispatching.
func (c *Controller) DownloadEpisode(raw RawSettings) error {
	entity := c.state.Selected()
	if entity == nil {
		c.warn("Please select an anime first")
		return ErrNoSelection
	}
	settings, err := ParseSettings(raw)
	if err != nil {
		c.warn(capitalize(err.Error()))
		return err
	}

	task := model.NewDownloadTask(entity.ID, entity.Name, settings.Episode)
	c.applyTask(task.Snapshot())
	c.setProgress(0)
	c.view.SetProgressLabel(labelPreparing(settings.Episode))
	c.setStatus(statusDownloading(settings.Episode))

	job := downloadJob{
		c:        c,
		entity:   entity,
		settings: settings,
		task:     task,
		attempts: c.opts.MaxAttempts,
	}
	c.dispatcher.Dispatch(dispatch.Task{
		ID:    task.ID,
		Kind:  dispatch.KindDownload,
		Token: c.state.Token(),
		Label: task.GetDisplayTitle(),
		Run:   job.run,
	})
	return nil
}

// DownloadAll downloads every episode of the committed selection, one at a
// time, using the same settings for each.
func (c *Controller) DownloadAll(raw RawSettings) error {
	entity := c.state.Selected()
	if entity == nil {
		c.warn("Please select an anime first")
		return ErrNoSelection
	}
	settings, err := ParseBatchSettings(raw)
	if err != nil {
		c.warn(capitalize(err.Error()))
		return err
	}
	episodes := c.state.Episodes()
	if len(episodes) == 0 {
		c.warn("No episodes available for download")
		return ErrNoEpisodes
	}

	batch := model.NewBatch(entity.Name, episodes, settings.Destination)
	c.setProgress(0)
	c.setStatus(fmt.Sprintf("Downloading %d episodes...", batch.Total()))

	job := batchJob{
		c:        c,
		entity:   entity,
		settings: settings,
		batch:    batch,
		attempts: c.opts.MaxAttempts,
	}
	c.dispatcher.Dispatch(dispatch.Task{
		Kind:  dispatch.KindBatchDownload,
		Token: c.state.Token(),
		Label: entity.Name,
		Run:   job.run,
	})
	return nil
}

// episodeHooks receive downloader callbacks on the worker goroutine
type episodeHooks struct {
	progress func(percent float64)
	info     func(msg string)
	warning  func(msg string)
}

// fetchEpisode drives task through resolution and download. The task ends
// in exactly one terminal status.
func (c *Controller) fetchEpisode(ctx context.Context, entity *provider.Entity, s model.DownloadSettings, task *model.DownloadTask, attempts int, h episodeHooks) {
	c.advance(task, model.TaskStatusResolving)

	res := entity.ResolveStream(ctx, s.Episode, s.Language, s.Quality)
	switch res.Kind {
	case model.StreamNotFound:
		c.advance(task, model.TaskStatusNoStream)
		return
	case model.StreamError:
		c.failTask(task, res.Err)
		return
	}

	c.advance(task, model.TaskStatusDownloading)

	full := platform.EpisodePath(s.Destination, entity.Name, s.Episode, c.opts.Container)
	base := task.Snapshot()
	path, err := c.downloader.Download(ctx, download.Request{
		Stream:      *res.Stream,
		Path:        strings.TrimSuffix(full, filepath.Ext(full)),
		Container:   c.opts.Container,
		MaxAttempts: attempts,
		OnProgress: func(percent float64) {
			snap := base
			snap.SetProgress(percent)
			c.postTask(snap)
			if h.progress != nil {
				h.progress(snap.Percent)
			}
		},
		OnInfo:    h.info,
		OnWarning: h.warning,
	})
	if err != nil {
		c.failTask(task, err)
		return
	}
	if err := task.Complete(path); err != nil {
		c.logger.Error().Err(err).Str("task", task.ID).Msg("cannot complete task")
	}
	c.postTask(task.Snapshot())
}

func (c *Controller) advance(task *model.DownloadTask, next model.TaskStatus) {
	if err := task.Advance(next); err != nil {
		c.logger.Error().Err(err).Str("task", task.ID).Str("to", next.String()).Msg("task transition rejected")
	}
	c.postTask(task.Snapshot())
}

func (c *Controller) failTask(task *model.DownloadTask, cause error) {
	if err := task.Fail(cause); err != nil {
		c.logger.Error().Err(err).Str("task", task.ID).Msg("cannot fail task")
	}
	c.postTask(task.Snapshot())
}

// postTask relays a task snapshot from a worker
func (c *Controller) postTask(snap model.DownloadTask) {
	c.relay.Post(func() { c.applyTask(snap) })
}

func (c *Controller) applyTask(snap model.DownloadTask) {
	c.state.recordTask(snap)
	c.view.UpdateTask(snap)
}

type downloadJob struct {
	c        *Controller
	entity   *provider.Entity
	settings model.DownloadSettings
	task     *model.DownloadTask
	attempts int
}

func (j downloadJob) run(ctx context.Context) error {
	c := j.c
	ep := j.settings.Episode

	c.fetchEpisode(ctx, j.entity, j.settings, j.task, j.attempts, episodeHooks{
		progress: func(percent float64) {
			c.relay.Post(func() {
				c.setProgress(percent)
				c.view.SetProgressLabel(labelProgress(ep, percent))
			})
		},
		info: func(msg string) {
			c.relay.Post(func() { c.setStatus(msg) })
		},
		warning: func(msg string) {
			c.relay.Post(func() { c.setStatus("Warning: " + msg) })
		},
	})

	final := j.task.Snapshot()
	c.logger.Info().
		Str("task", final.ID).
		Str("anime", final.AnimeName).
		Str("episode", ep.String()).
		Str("status", final.Status.String()).
		Msg("download finished")

	c.relay.Post(func() { c.finishSingle(j.settings, final) })
	return nil
}

func (c *Controller) finishSingle(s model.DownloadSettings, task model.DownloadTask) {
	switch task.Status {
	case model.TaskStatusCompleted:
		c.setProgress(100)
		c.view.SetProgressLabel(labelDownloaded(s.Episode))
		c.setStatus(StatusDownloadDone)
		c.view.Notify(Notification{
			Level:   LevelInfo,
			Title:   TitleSuccess,
			Message: messageSaved(s.Episode, task.OutputPath),
			Path:    task.OutputPath,
		})
	case model.TaskStatusNoStream:
		c.setProgress(0)
		c.view.SetProgressLabel(LabelReady)
		c.notify(LevelWarning, TitleWarning, messageNoStream(s))
		c.setStatus(StatusNoStream)
	default:
		c.setProgress(0)
		c.view.SetProgressLabel(LabelReady)
		c.fail("Download failed: "+task.LastError, StatusDownloadFailed)
	}
}

type batchJob struct {
	c        *Controller
	entity   *provider.Entity
	settings BatchSettings
	batch    *model.Batch
	attempts int
}

func (j batchJob) run(ctx context.Context) error {
	c := j.c
	b := j.batch
	total := b.Total()

	for i, ep := range b.Episodes {
		done := b.Processed()
		start := b.Progress(0)
		c.relay.Post(func() {
			c.view.SetProgressLabel(labelBatchEpisode(ep, i+1, total))
			c.setProgress(start)
		})

		s := j.settings.ForEpisode(ep)
		task := model.NewDownloadTask(j.entity.ID, j.entity.Name, ep)
		c.postTask(task.Snapshot())

		// per-episode info and warnings stay in the log
		log := c.logger.With().Str("task", task.ID).Str("episode", ep.String()).Logger()
		c.fetchEpisode(ctx, j.entity, s, task, j.attempts, episodeHooks{
			progress: func(percent float64) {
				overall := model.OverallProgress(done, total, percent)
				c.relay.Post(func() { c.setProgress(overall) })
			},
			info:    func(msg string) { log.Debug().Msg(msg) },
			warning: func(msg string) { log.Debug().Str("level", "warning").Msg(msg) },
		})

		snap := task.Snapshot()
		b.Record(model.EpisodeOutcome{
			Episode:    ep,
			Status:     snap.Status,
			OutputPath: snap.OutputPath,
			Error:      snap.LastError,
		})

		switch snap.Status {
		case model.TaskStatusCompleted:
		case model.TaskStatusNoStream:
			msg := fmt.Sprintf("Failed to download %s: %s", ep.Label(), messageNoStream(s))
			c.relay.Post(func() { c.notify(LevelError, TitleError, msg) })
		default:
			msg := fmt.Sprintf("Failed to download %s: %s", ep.Label(), snap.LastError)
			c.relay.Post(func() { c.notify(LevelError, TitleError, msg) })
		}
	}

	summary := batchSummary{
		dir:       b.Destination,
		completed: len(b.GetCompleted()),
		total:     total,
		hasErrors: b.HasErrors(),
	}
	for _, o := range b.GetFailed() {
		summary.failed = append(summary.failed, o.Episode.Label())
	}
	c.logger.Info().
		Str("anime", j.entity.Name).
		Int("total", total).
		Int("completed", summary.completed).
		Strs("failed", summary.failed).
		Msg("batch finished")

	c.relay.Post(func() { c.finishBatch(summary) })
	return nil
}

type batchSummary struct {
	dir       string
	completed int
	total     int
	hasErrors bool
	failed    []string
}

func (c *Controller) finishBatch(sum batchSummary) {
	dir := sum.dir
	c.setProgress(100)
	c.view.SetProgressLabel(LabelBatchDone)
	if !sum.hasErrors {
		c.setStatus(StatusBatchDone)
		c.view.Notify(Notification{
			Level:   LevelInfo,
			Title:   TitleSuccess,
			Message: "All episodes downloaded to:\n" + dir,
			Path:    dir,
		})
		return
	}
	c.setStatus(StatusBatchPartial)
	c.view.Notify(Notification{
		Level: LevelWarning,
		Title: TitleWarning,
		Message: fmt.Sprintf("Downloaded %d of %d episodes to:\n%s\nFailed: %s",
			sum.completed, sum.total, dir, strings.Join(sum.failed, ", ")),
		Path: dir,
	})
}
