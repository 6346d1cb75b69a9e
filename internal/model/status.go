package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a task is moved along an edge the
// download state machine does not have.
var ErrInvalidTransition = errors.New("invalid task status transition")

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusPreparing means settings are being validated
	TaskStatusPreparing TaskStatus = "Preparing"

	// TaskStatusResolvingStream means the provider is asked for a playable stream
	TaskStatusResolvingStream TaskStatus = "Resolving"

	// TaskStatusDownloading means the downloader is writing the file
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusCompleted means the file was written successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusFailed means the task ended with a hard error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusNoStream means the provider had no stream for the request
	TaskStatusNoStream TaskStatus = "No stream"
)

var transitions = map[TaskStatus][]TaskStatus{
	TaskStatusPreparing:       {TaskStatusResolvingStream, TaskStatusFailed},
	TaskStatusResolvingStream: {TaskStatusDownloading, TaskStatusNoStream, TaskStatusFailed},
	TaskStatusDownloading:     {TaskStatusCompleted, TaskStatusFailed},
}

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusPreparing || ts == TaskStatusResolvingStream || ts == TaskStatusDownloading
}

// IsFinished returns true if the task is in a terminal state
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed || ts == TaskStatusNoStream
}

// CanTransition reports whether the state machine allows ts -> next
func (ts TaskStatus) CanTransition(next TaskStatus) bool {
	for _, allowed := range transitions[ts] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (ts TaskStatus) transition(next TaskStatus) error {
	if !ts.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ts, next)
	}
	return nil
}
