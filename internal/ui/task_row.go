package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/anime-downloader/internal/model"
)

// TaskRow renders one download task snapshot
type TaskRow struct {
	widget.BaseWidget

	task         model.DownloadTask
	localization *Localization

	titleLabel   *widget.Label
	statusLabel  *widget.Label
	elapsedLabel *widget.Label
	progressBar  *widget.ProgressBar
	revealBtn    *widget.Button
	openBtn      *widget.Button

	onReveal func(filePath string)
	onOpen   func(filePath string)
}

// NewTaskRow creates an empty row; SetTask fills it
func NewTaskRow(localization *Localization, onReveal, onOpen func(string)) *TaskRow {
	tr := &TaskRow{
		localization: localization,
		onReveal:     onReveal,
		onOpen:       onOpen,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	return tr
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.elapsedLabel = widget.NewLabel(DashPlaceholder)

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.Max = ProgressMax

	tr.revealBtn = widget.NewButton(IconFolder, func() {
		if tr.onReveal != nil && tr.task.OutputPath != "" {
			tr.onReveal(tr.task.OutputPath)
		}
	})
	tr.revealBtn.Importance = widget.LowImportance

	tr.openBtn = widget.NewButton(IconPlay, func() {
		if tr.onOpen != nil && tr.task.OutputPath != "" {
			tr.onOpen(tr.task.OutputPath)
		}
	})
	tr.openBtn.Importance = widget.LowImportance
}

// SetTask shows task
func (tr *TaskRow) SetTask(task model.DownloadTask) {
	tr.task = task

	tr.titleLabel.SetText(task.GetDisplayTitle())
	tr.statusLabel.SetText(task.Status.String())
	tr.elapsedLabel.SetText(task.GetElapsedString())
	tr.progressBar.SetValue(task.Percent)
	tr.progressBar.TextFormatter = func() string {
		return fmt.Sprintf(ProgressLabelFormat, task.Percent)
	}

	switch task.Status {
	case model.TaskStatusCompleted:
		tr.statusLabel.Importance = widget.SuccessImportance
	case model.TaskStatusFailed:
		tr.statusLabel.Importance = widget.DangerImportance
	case model.TaskStatusNoStream:
		tr.statusLabel.Importance = widget.WarningImportance
	default:
		tr.statusLabel.Importance = widget.MediumImportance
	}
	tr.statusLabel.Refresh()

	if task.OutputPath != "" {
		tr.revealBtn.Enable()
		tr.openBtn.Enable()
	} else {
		tr.revealBtn.Disable()
		tr.openBtn.Disable()
	}
	tr.Refresh()
}

// CreateRenderer implements fyne.Widget
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, TaskRowMinHeight), tr.statusLabel)
	right := container.NewHBox(tr.elapsedLabel, tr.revealBtn, tr.openBtn)
	top := container.NewBorder(nil, nil, status, right, tr.titleLabel)
	return widget.NewSimpleRenderer(container.NewVBox(top, tr.progressBar))
}
