package model

import "time"

// EpisodeOutcome is the terminal result of one episode in a batch
type EpisodeOutcome struct {
	Episode    EpisodeNumber
	Status     TaskStatus
	OutputPath string
	Error      string
}

// Batch tracks a sequential download of every episode of an entity.
// Overall progress is the linear projection
// (completed + currentFraction) / total.
type Batch struct {
	AnimeName   string
	Episodes    []EpisodeNumber
	Destination string
	Outcomes    []EpisodeOutcome
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBatch creates a batch over a copy of the episode list
func NewBatch(animeName string, episodes []EpisodeNumber, destination string) *Batch {
	now := time.Now()
	return &Batch{
		AnimeName:   animeName,
		Episodes:    append([]EpisodeNumber(nil), episodes...),
		Destination: destination,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Total returns the number of episodes in the batch
func (b *Batch) Total() int {
	return len(b.Episodes)
}

// Processed returns how many episodes reached a terminal state
func (b *Batch) Processed() int {
	return len(b.Outcomes)
}

// Record appends the terminal outcome of the current episode
func (b *Batch) Record(outcome EpisodeOutcome) {
	b.Outcomes = append(b.Outcomes, outcome)
	b.UpdatedAt = time.Now()
}

// Progress projects overall progress in [0,100] given the percent of the
// episode currently downloading.
func (b *Batch) Progress(currentPercent float64) float64 {
	return OverallProgress(b.Processed(), b.Total(), currentPercent)
}

// OverallProgress is (done + current/100) / total scaled to [0,100].
// An empty batch is complete.
func OverallProgress(done, total int, currentPercent float64) float64 {
	if total <= 0 {
		return 100
	}
	if currentPercent < 0 {
		currentPercent = 0
	}
	if currentPercent > 100 {
		currentPercent = 100
	}
	p := (float64(done) + currentPercent/100) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// GetCompleted returns outcomes that produced a file
func (b *Batch) GetCompleted() []EpisodeOutcome {
	var out []EpisodeOutcome
	for _, o := range b.Outcomes {
		if o.Status == TaskStatusCompleted {
			out = append(out, o)
		}
	}
	return out
}

// GetFailed returns outcomes that did not produce a file
func (b *Batch) GetFailed() []EpisodeOutcome {
	var out []EpisodeOutcome
	for _, o := range b.Outcomes {
		if o.Status != TaskStatusCompleted {
			out = append(out, o)
		}
	}
	return out
}

// HasErrors checks if any episode failed
func (b *Batch) HasErrors() bool {
	return len(b.GetFailed()) > 0
}
