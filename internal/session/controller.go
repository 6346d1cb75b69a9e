package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/dispatch"
	"github.com/ytget/anime-downloader/internal/download"
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/provider"
	"github.com/ytget/anime-downloader/internal/relay"
)

// Options tunes download behaviour
type Options struct {
	MaxAttempts int
	Container   string
}

// Controller turns user actions into dispatched tasks and applies their
// relayed outcomes to the State and the View.
type Controller struct {
	state      *State
	view       View
	provider   provider.Provider
	downloader download.Downloader
	relay      relay.Relay
	dispatcher *dispatch.Dispatcher
	opts       Options
	logger     zerolog.Logger
}

// NewController wires a controller. The view may be attached later with
// SetView, before the first action.
func NewController(p provider.Provider, d download.Downloader, r relay.Relay, opts Options, logger zerolog.Logger) *Controller {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = download.DefaultMaxAttempts
	}
	if opts.Container == "" {
		opts.Container = model.Container
	}

	c := &Controller{
		state:      NewState(),
		provider:   p,
		downloader: d,
		relay:      r,
		opts:       opts,
		logger:     logger.With().Str("component", "session").Logger(),
	}
	c.dispatcher = dispatch.New(r, c.handleEscape, logger)
	return c
}

// SetView attaches the window
func (c *Controller) SetView(v View) {
	c.view = v
}

// State exposes the state for read access on the UI goroutine
func (c *Controller) State() *State {
	return c.state
}

// Dispatcher returns the dispatcher running the controller's tasks
func (c *Controller) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// SetMaxAttempts changes the retry ceiling for subsequent downloads
func (c *Controller) SetMaxAttempts(n int) {
	if n < 1 {
		n = download.DefaultMaxAttempts
	}
	c.opts.MaxAttempts = n
}

// Search starts a search for query. Blank queries are rejected without
// dispatching.
func (c *Controller) Search(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		c.warn("Please enter an anime name to search")
		return ErrEmptyQuery
	}

	token := c.state.NextToken()
	c.setStatus(StatusSearching)

	job := searchJob{c: c, token: token, query: query}
	c.dispatcher.Dispatch(dispatch.Task{
		Kind:  dispatch.KindSearch,
		Token: token,
		Label: query,
		Run:   job.run,
	})
	return nil
}

type searchJob struct {
	c     *Controller
	token uint64
	query string
}

func (j searchJob) run(ctx context.Context) error {
	results, err := j.c.provider.Search(ctx, j.query)
	j.c.relay.Post(func() { j.c.applySearch(j, results, err) })
	return nil
}

// applySearch always replaces the list: the last relayed search wins.
func (c *Controller) applySearch(j searchJob, results []model.SearchResult, err error) {
	// A search supersedes any detail load started before it; the committed
	// selection stays downloadable unless a newer selection is loading.
	if c.state.IsCurrent(j.token) {
		c.view.SetDownloadEnabled(c.state.Selected() != nil && len(c.state.Episodes()) > 0)
	}

	if err != nil {
		c.logger.Error().Err(err).Str("query", j.query).Msg("search failed")
		c.fail(fmt.Sprintf("Search failed: %v", err), StatusSearchFailed)
		return
	}

	c.state.SetResults(j.query, results)
	c.view.ShowResults(c.state.Results())
	c.setStatus(statusFound(len(results)))
}

// Select loads the details of the result at index. Any earlier detail load
// still in flight is superseded.
func (c *Controller) Select(index int) error {
	result, ok := c.state.Result(index)
	if !ok {
		return fmt.Errorf("no search result at index %d", index)
	}

	entity, err := provider.EntityFromResult(c.provider, result)
	if err != nil {
		c.notify(LevelError, TitleError, err.Error())
		return err
	}

	token := c.state.NextToken()
	c.view.SetDownloadEnabled(false)
	c.setStatus(StatusLoadingDetails)

	job := detailsJob{c: c, token: token, entity: entity}
	c.dispatcher.Dispatch(dispatch.Task{
		Kind:  dispatch.KindDetails,
		Token: token,
		Label: entity.Name,
		Run:   job.run,
	})
	return nil
}

type detailsJob struct {
	c      *Controller
	token  uint64
	entity *provider.Entity
}

func (j detailsJob) run(ctx context.Context) error {
	episodes, err := j.entity.Episodes(ctx, j.entity.Languages.Preferred())
	j.c.relay.Post(func() { j.c.applyDetails(j, episodes, err) })
	return nil
}

func (c *Controller) applyDetails(j detailsJob, episodes []model.EpisodeNumber, err error) {
	if !c.state.IsCurrent(j.token) {
		c.logger.Debug().
			Uint64("token", j.token).
			Uint64("current", c.state.Token()).
			Str("anime", j.entity.Name).
			Err(err).
			Msg("discarding superseded detail load")
		return
	}

	if err != nil {
		c.logger.Error().Err(err).Str("anime", j.entity.Name).Msg("detail load failed")
		c.state.ClearSelection()
		c.view.ClearDetails()
		c.fail(fmt.Sprintf("Failed to load anime details: %v", err), StatusDetailsFailed)
		return
	}

	c.state.Commit(j.token, j.entity, episodes)
	c.view.ShowDetails(Details{
		Title:     j.entity.Name,
		Languages: j.entity.Languages.Sorted(),
		Episodes:  c.state.Episodes(),
	})
	c.view.SetDownloadEnabled(len(episodes) > 0)
	c.setStatus(StatusDetailsLoaded)
}

// handleEscape reports failures that a task could not relay itself
func (c *Controller) handleEscape(task dispatch.Task, err error) {
	c.logger.Error().Err(err).Str("task", task.ID).Str("kind", string(task.Kind)).Msg("unexpected task failure")
	if task.Kind == dispatch.KindDownload || task.Kind == dispatch.KindBatchDownload {
		c.setProgress(0)
		c.view.SetProgressLabel(LabelReady)
	}
	c.fail(fmt.Sprintf("Unexpected error in %s: %v", task.Kind, err), StatusReady)
}

func (c *Controller) setStatus(text string) {
	c.state.status = text
	c.view.SetStatus(text)
}

func (c *Controller) setProgress(percent float64) {
	c.state.progress = percent
	c.view.SetProgress(percent)
}

func (c *Controller) notify(level Level, title, message string) {
	c.view.Notify(Notification{Level: level, Title: title, Message: message})
}

func (c *Controller) warn(message string) {
	c.notify(LevelWarning, TitleWarning, message)
}

// fail reports an error and resets the status line
func (c *Controller) fail(message, status string) {
	c.notify(LevelError, TitleError, message)
	c.setStatus(status)
}
