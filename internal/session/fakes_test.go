package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/download"
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/provider"
	"github.com/ytget/anime-downloader/internal/relay"
)

type recordingView struct {
	results       [][]model.SearchResult
	details       []Details
	cleared       int
	progress      []float64
	labels        []string
	statuses      []string
	enabled       []bool
	notifications []Notification
	tasks         []model.DownloadTask
}

func (v *recordingView) ShowResults(r []model.SearchResult) { v.results = append(v.results, r) }
func (v *recordingView) ShowDetails(d Details)              { v.details = append(v.details, d) }
func (v *recordingView) ClearDetails()                      { v.cleared++ }
func (v *recordingView) SetProgress(p float64)              { v.progress = append(v.progress, p) }
func (v *recordingView) SetProgressLabel(s string)          { v.labels = append(v.labels, s) }
func (v *recordingView) SetStatus(s string)                 { v.statuses = append(v.statuses, s) }
func (v *recordingView) SetDownloadEnabled(b bool)          { v.enabled = append(v.enabled, b) }
func (v *recordingView) Notify(n Notification)              { v.notifications = append(v.notifications, n) }
func (v *recordingView) UpdateTask(t model.DownloadTask)    { v.tasks = append(v.tasks, t) }

func (v *recordingView) lastStatus() string {
	if len(v.statuses) == 0 {
		return ""
	}
	return v.statuses[len(v.statuses)-1]
}

func (v *recordingView) lastProgress() float64 {
	if len(v.progress) == 0 {
		return -1
	}
	return v.progress[len(v.progress)-1]
}

func (v *recordingView) notificationsAt(level Level) []Notification {
	var out []Notification
	for _, n := range v.notifications {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

type fakeProvider struct {
	mu       sync.Mutex
	search   map[string][]model.SearchResult
	episodes map[string][]model.EpisodeNumber
	gates    map[string]chan struct{}
	noStream map[model.EpisodeNumber]bool
	fail     map[string]error
	panics   bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		search:   make(map[string][]model.SearchResult),
		episodes: make(map[string][]model.EpisodeNumber),
		gates:    make(map[string]chan struct{}),
		noStream: make(map[model.EpisodeNumber]bool),
		fail:     make(map[string]error),
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) gate(key string) {
	p.mu.Lock()
	ch := p.gates[key]
	p.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (p *fakeProvider) Search(_ context.Context, query string) ([]model.SearchResult, error) {
	if p.panics {
		panic("provider exploded")
	}
	p.gate("search:" + query)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail["search:"+query]; err != nil {
		return nil, err
	}
	return p.search[query], nil
}

func (p *fakeProvider) Episodes(_ context.Context, id string, _ model.Language) ([]model.EpisodeNumber, error) {
	p.gate(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail[id]; err != nil {
		return nil, err
	}
	return p.episodes[id], nil
}

func (p *fakeProvider) Streams(_ context.Context, id string, ep model.EpisodeNumber, lang model.Language) ([]model.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noStream[ep] {
		return nil, provider.ErrNotFound
	}
	return []model.Stream{{URL: "https://cdn.example/" + id + "/" + ep.String(), Resolution: model.Quality720, Language: lang}}, nil
}

type fakeDownloader struct {
	mu       sync.Mutex
	requests []download.Request
	failOn   map[string]error
}

func (d *fakeDownloader) Download(_ context.Context, req download.Request) (string, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	err := d.failOn[req.Stream.URL]
	d.mu.Unlock()

	req.OnInfo("connecting")
	req.OnProgress(50)
	if err != nil {
		req.OnWarning("attempt failed")
		return "", err
	}
	req.OnProgress(100)
	return req.Path + req.Container, nil
}

type harness struct {
	t          *testing.T
	queue      *relay.Queue
	view       *recordingView
	provider   *fakeProvider
	downloader *fakeDownloader
	c          *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:          t,
		queue:      relay.NewQueue(),
		view:       &recordingView{},
		provider:   newFakeProvider(),
		downloader: &fakeDownloader{failOn: make(map[string]error)},
	}
	h.c = NewController(h.provider, h.downloader, h.queue, Options{}, zerolog.Nop())
	h.c.SetView(h.view)
	return h
}

// settle waits for every task and applies everything they relayed
func (h *harness) settle() {
	h.c.Dispatcher().Wait()
	h.queue.Drain()
}

// drainUntil applies relayed mutations until cond holds
func (h *harness) drainUntil(cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatal("condition not reached")
		}
		if h.queue.Drain() == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// waitQueued waits until n mutations are pending without running them
func (h *harness) waitQueued(n int) {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.queue.Len() < n {
		if time.Now().After(deadline) {
			h.t.Fatal("relay not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

// selectEntity searches and commits result index of query
func (h *harness) selectEntity(query string, index int) *provider.Entity {
	h.t.Helper()
	if err := h.c.Search(query); err != nil {
		h.t.Fatalf("Search() error = %v", err)
	}
	h.settle()
	if err := h.c.Select(index); err != nil {
		h.t.Fatalf("Select() error = %v", err)
	}
	h.settle()
	e := h.c.State().Selected()
	if e == nil {
		h.t.Fatal("Expected committed selection")
	}
	return e
}

var errBoom = errors.New("boom")
