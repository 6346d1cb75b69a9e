package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DownloadTask is one download attempt for an (entity, episode) pair.
// A task is owned by the worker running it; the UI only receives copies.
type DownloadTask struct {
	ID         string
	AnimeID    string
	AnimeName  string
	Episode    EpisodeNumber
	Status     TaskStatus
	Percent    float64 // 0 to 100
	LastError  string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewDownloadTask creates a task in the Preparing state
func NewDownloadTask(animeID, animeName string, episode EpisodeNumber) *DownloadTask {
	return &DownloadTask{
		ID:        generateTaskID(),
		AnimeID:   animeID,
		AnimeName: animeName,
		Episode:   episode,
		Status:    TaskStatusPreparing,
		StartedAt: time.Now(),
	}
}

// Advance moves the task to the next status
func (dt *DownloadTask) Advance(next TaskStatus) error {
	if err := dt.Status.transition(next); err != nil {
		return err
	}
	dt.Status = next
	if next.IsFinished() {
		dt.FinishedAt = time.Now()
	}
	return nil
}

// SetProgress clamps and records download progress
func (dt *DownloadTask) SetProgress(percent float64) {
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	dt.Percent = percent
}

// Complete records a successful download
func (dt *DownloadTask) Complete(outputPath string) error {
	if err := dt.Advance(TaskStatusCompleted); err != nil {
		return err
	}
	dt.OutputPath = outputPath
	dt.Percent = 100
	return nil
}

// Fail records a hard failure
func (dt *DownloadTask) Fail(err error) error {
	if aerr := dt.Advance(TaskStatusFailed); aerr != nil {
		return aerr
	}
	if err != nil {
		dt.LastError = err.Error()
	}
	dt.Percent = 0
	return nil
}

// Snapshot returns a copy safe to hand to another goroutine
func (dt *DownloadTask) Snapshot() DownloadTask {
	return *dt
}

// GetDisplayTitle returns "Name - Episode N"
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.AnimeName == "" {
		return dt.Episode.Label()
	}
	return dt.AnimeName + " - " + dt.Episode.Label()
}

// GetElapsedString returns the task duration as mm:ss, or "—" while running
func (dt *DownloadTask) GetElapsedString() string {
	if dt.FinishedAt.IsZero() || dt.StartedAt.IsZero() {
		return "—"
	}
	sec := int(dt.FinishedAt.Sub(dt.StartedAt).Seconds())
	if sec >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "task-" + id.String()
}
