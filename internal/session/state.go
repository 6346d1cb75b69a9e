package session

import (
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/provider"
)

// State is the single owner of shared UI state. It is not safe for
// concurrent use; only the UI goroutine touches it.
type State struct {
	token    uint64
	query    string
	results  []model.SearchResult
	selected *provider.Entity
	episodes []model.EpisodeNumber
	progress float64
	status   string

	tasks     map[string]model.DownloadTask
	taskOrder []string
}

// NewState creates an empty state with status "Ready"
func NewState() *State {
	return &State{status: StatusReady, tasks: make(map[string]model.DownloadTask)}
}

// NextToken supersedes every outstanding request and returns the new token
func (s *State) NextToken() uint64 {
	s.token++
	return s.token
}

// Token returns the most recently issued token
func (s *State) Token() uint64 {
	return s.token
}

// IsCurrent reports whether token has not been superseded
func (s *State) IsCurrent(token uint64) bool {
	return token == s.token
}

// SetResults replaces the current search results
func (s *State) SetResults(query string, results []model.SearchResult) {
	s.query = query
	s.results = append([]model.SearchResult(nil), results...)
}

// Query returns the query of the displayed results
func (s *State) Query() string {
	return s.query
}

// Results returns a copy of the displayed results
func (s *State) Results() []model.SearchResult {
	return append([]model.SearchResult(nil), s.results...)
}

// Result returns the result at index
func (s *State) Result(index int) (model.SearchResult, bool) {
	if index < 0 || index >= len(s.results) {
		return model.SearchResult{}, false
	}
	return s.results[index], true
}

// Commit makes entity the selection if token is still current. It returns
// false and leaves the state untouched otherwise.
func (s *State) Commit(token uint64, entity *provider.Entity, episodes []model.EpisodeNumber) bool {
	if !s.IsCurrent(token) {
		return false
	}
	s.selected = entity
	s.episodes = append([]model.EpisodeNumber(nil), episodes...)
	return true
}

// ClearSelection drops the committed selection
func (s *State) ClearSelection() {
	s.selected = nil
	s.episodes = nil
}

// Selected returns the committed entity, or nil
func (s *State) Selected() *provider.Entity {
	return s.selected
}

// Episodes returns a copy of the committed episode list
func (s *State) Episodes() []model.EpisodeNumber {
	return append([]model.EpisodeNumber(nil), s.episodes...)
}

// Progress returns the last progress value shown
func (s *State) Progress() float64 {
	return s.progress
}

// Status returns the last status line shown
func (s *State) Status() string {
	return s.status
}

// Tasks returns the latest snapshot of every download task, oldest first
func (s *State) Tasks() []model.DownloadTask {
	out := make([]model.DownloadTask, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, s.tasks[id])
	}
	return out
}

// Task returns the latest snapshot of the task with id
func (s *State) Task(id string) (model.DownloadTask, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

func (s *State) recordTask(t model.DownloadTask) {
	if _, ok := s.tasks[t.ID]; !ok {
		s.taskOrder = append(s.taskOrder, t.ID)
	}
	s.tasks[t.ID] = t
}
