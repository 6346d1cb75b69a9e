package session

import "github.com/ytget/anime-downloader/internal/model"

// Level classifies a notification
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the string representation of Level
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a user-visible message. Path is set when the message
// refers to a downloaded file.
type Notification struct {
	Level   Level
	Title   string
	Message string
	Path    string
}

// Details is what the window shows for the committed selection
type Details struct {
	Title     string
	Languages []model.Language
	Episodes  []model.EpisodeNumber
}

// View is the window. All methods are called on the UI goroutine.
type View interface {
	ShowResults(results []model.SearchResult)
	ShowDetails(details Details)
	ClearDetails()
	SetProgress(percent float64)
	SetProgressLabel(text string)
	SetStatus(text string)
	SetDownloadEnabled(enabled bool)
	Notify(n Notification)
	UpdateTask(task model.DownloadTask)
}
