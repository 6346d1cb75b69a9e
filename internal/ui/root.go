package ui

import (
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/ytget/anime-downloader/internal/config"
	"github.com/ytget/anime-downloader/internal/model"
	"github.com/ytget/anime-downloader/internal/platform"
	"github.com/ytget/anime-downloader/internal/session"
)

// RootUI is the main window
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	controller   *session.Controller
	settings     *config.Settings
	localization *Localization
	logger       zerolog.Logger

	// Search
	searchEntry *widget.Entry
	searchBtn   *widget.Button
	resultsList *widget.List
	results     []model.SearchResult

	// Details and settings triple
	titleLabel     *widget.Label
	episodeSelect  *widget.Select
	languageSelect *widget.Select
	qualitySelect  *widget.Select
	pathEntry      *widget.Entry
	browseBtn      *widget.Button
	downloadBtn    *widget.Button
	downloadAllBtn *widget.Button
	episodeCount   int

	// Progress
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	statusLabel   *widget.Label

	// Downloads
	taskList  *widget.List
	tasks     []model.DownloadTask
	taskIndex map[string]int

	// Labels whose text depends on the UI language
	resultsHeader  *widget.Label
	detailsHeader  *widget.Label
	progressHeader *widget.Label
	tasksHeader    *widget.Label
	episodeLabel   *widget.Label
	audioLabel     *widget.Label
	qualityLabel   *widget.Label
	pathLabel      *widget.Label
}

// NewRootUI builds the window and attaches it to the controller
func NewRootUI(window fyne.Window, app fyne.App, controller *session.Controller, settings *config.Settings, logger zerolog.Logger) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		app:          app,
		controller:   controller,
		settings:     settings,
		localization: localization,
		logger:       logger.With().Str("component", "ui").Logger(),
		taskIndex:    make(map[string]int),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	controller.SetMaxAttempts(settings.GetMaxAttempts())
	controller.SetView(ui)

	ui.setupUI()
	return ui
}

func (ui *RootUI) setupUI() {
	ui.createMenu()

	// Search row
	ui.searchEntry = widget.NewEntry()
	ui.searchEntry.SetPlaceHolder(ui.localization.GetText(KeySearchPlaceholder))
	ui.searchEntry.OnSubmitted = func(string) { ui.onSearch() }
	ui.searchBtn = widget.NewButton(ui.localization.GetText(KeySearch), ui.onSearch)
	ui.searchBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := []fyne.CanvasObject{settingsBtn}
	if logo, err := LoadLogoResource(); err == nil {
		img := canvas.NewImageFromResource(logo)
		img.SetMinSize(fyne.NewSize(32, 32))
		img.FillMode = canvas.ImageFillContain
		left = append([]fyne.CanvasObject{img}, left...)
	}
	topPanel := container.NewBorder(nil, nil, container.NewHBox(left...), ui.searchBtn, ui.searchEntry)

	// Results
	ui.resultsHeader = widget.NewLabelWithStyle(ui.localization.GetText(KeySearchResults), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.resultsList = widget.NewList(
		func() int { return len(ui.results) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id < len(ui.results) {
				item.(*widget.Label).SetText(ui.results[id].DisplayName())
			}
		},
	)
	ui.resultsList.OnSelected = ui.onResultSelected
	resultsPanel := container.NewBorder(ui.resultsHeader, nil, nil, nil, ui.resultsList)

	// Details
	ui.detailsHeader = widget.NewLabelWithStyle(ui.localization.GetText(KeyAnimeDetails), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.titleLabel = widget.NewLabel(ui.localization.GetText(KeyNoSelection))
	ui.titleLabel.Wrapping = fyne.TextWrapWord

	ui.episodeSelect = widget.NewSelect(nil, nil)
	ui.languageSelect = widget.NewSelect(nil, func(s string) {
		if lang, err := model.ParseLanguage(s); err == nil {
			ui.settings.SetAudioLanguage(lang)
		}
	})
	ui.qualitySelect = widget.NewSelect(model.QualityStrings(), func(s string) {
		if q, err := model.ParseQuality(s); err == nil {
			ui.settings.SetQuality(q)
		}
	})
	ui.qualitySelect.SetSelected(ui.settings.GetQuality().String())

	ui.pathEntry = widget.NewEntry()
	ui.pathEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.browseBtn = widget.NewButton(IconFolder+" "+ui.localization.GetText(KeyBrowse), ui.onBrowse)
	pathRow := container.NewBorder(nil, nil, nil, ui.browseBtn, ui.pathEntry)

	ui.episodeLabel = widget.NewLabel(ui.localization.GetText(KeyEpisode))
	ui.audioLabel = widget.NewLabel(ui.localization.GetText(KeyAudio))
	ui.qualityLabel = widget.NewLabel(ui.localization.GetText(KeyQuality))
	ui.pathLabel = widget.NewLabel(ui.localization.GetText(KeyDownloadPath))
	form := container.New(layout.NewFormLayout(),
		ui.episodeLabel, ui.episodeSelect,
		ui.audioLabel, ui.languageSelect,
		ui.qualityLabel, ui.qualitySelect,
		ui.pathLabel, pathRow,
	)

	ui.downloadBtn = widget.NewButton(ui.localization.GetText(KeyDownloadEpisode), ui.onDownloadEpisode)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.downloadAllBtn = widget.NewButton(ui.localization.GetText(KeyDownloadAll), ui.onDownloadAll)
	ui.SetDownloadEnabled(false)

	detailsPanel := container.NewVBox(
		ui.detailsHeader,
		ui.titleLabel,
		widget.NewSeparator(),
		form,
		container.NewHBox(ui.downloadBtn, ui.downloadAllBtn),
	)

	split := container.NewHSplit(resultsPanel, container.NewVScroll(detailsPanel))
	split.Offset = SplitOffset

	// Progress
	ui.progressHeader = widget.NewLabelWithStyle(ui.localization.GetText(KeyProgress), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.progressLabel = widget.NewLabel(session.LabelReady)
	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.Max = ProgressMax
	ui.statusLabel = widget.NewLabel(session.StatusReady)
	ui.statusLabel.Truncation = fyne.TextTruncateEllipsis

	// Downloads
	ui.tasksHeader = widget.NewLabelWithStyle(ui.localization.GetText(KeyDownloads), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.taskList = widget.NewList(
		func() int { return len(ui.tasks) },
		func() fyne.CanvasObject { return NewTaskRow(ui.localization, ui.onRevealFile, ui.onOpenFile) },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id < len(ui.tasks) {
				item.(*TaskRow).SetTask(ui.tasks[id])
			}
		},
	)
	tasksPanel := container.NewBorder(ui.tasksHeader, nil, nil, nil, ui.taskList)

	bottom := container.NewVBox(
		ui.progressHeader,
		ui.progressLabel,
		ui.progressBar,
		container.New(&fixedHeight{height: TaskListHeight}, tasksPanel),
		widget.NewSeparator(),
		ui.statusLabel,
	)

	ui.window.SetContent(container.NewBorder(topPanel, bottom, nil, nil, split))
	ui.window.Canvas().Focus(ui.searchEntry)
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		item := fyne.NewMenuItem(name, func() { ui.onLanguageChange(langCode) })
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

func (ui *RootUI) refreshUITexts() {
	t := ui.localization.GetText
	ui.window.SetTitle(t(KeyAppTitle))
	ui.searchEntry.SetPlaceHolder(t(KeySearchPlaceholder))
	ui.searchBtn.SetText(t(KeySearch))
	ui.browseBtn.SetText(IconFolder + " " + t(KeyBrowse))
	ui.downloadBtn.SetText(t(KeyDownloadEpisode))
	ui.downloadAllBtn.SetText(t(KeyDownloadAll))
	ui.resultsHeader.SetText(t(KeySearchResults))
	ui.detailsHeader.SetText(t(KeyAnimeDetails))
	ui.progressHeader.SetText(t(KeyProgress))
	ui.tasksHeader.SetText(t(KeyDownloads))
	ui.episodeLabel.SetText(t(KeyEpisode))
	ui.audioLabel.SetText(t(KeyAudio))
	ui.qualityLabel.SetText(t(KeyQuality))
	ui.pathLabel.SetText(t(KeyDownloadPath))
	if ui.controller.State().Selected() == nil {
		ui.titleLabel.SetText(t(KeyNoSelection))
	}
	ui.taskList.Refresh()
}

// User actions

func (ui *RootUI) onSearch() {
	if err := ui.controller.Search(ui.searchEntry.Text); err != nil {
		ui.logger.Debug().Err(err).Msg("search rejected")
	}
}

func (ui *RootUI) onResultSelected(id widget.ListItemID) {
	if err := ui.controller.Select(id); err != nil {
		ui.logger.Warn().Err(err).Int("index", id).Msg("selection rejected")
	}
}

func (ui *RootUI) onBrowse() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if uri == nil {
			return
		}
		ui.pathEntry.SetText(uri.Path())
		ui.settings.SetDownloadDirectory(uri.Path())
	}, ui.window)
	d.Show()
}

// rawSettings reads the selector values at the moment of the request
func (ui *RootUI) rawSettings() session.RawSettings {
	return session.RawSettings{
		Episode:     ui.episodeSelect.Selected,
		Language:    ui.languageSelect.Selected,
		Quality:     ui.qualitySelect.Selected,
		Destination: ui.pathEntry.Text,
	}
}

func (ui *RootUI) rememberDestination() {
	if dir := strings.TrimSpace(ui.pathEntry.Text); dir != "" {
		ui.settings.SetDownloadDirectory(dir)
	}
}

func (ui *RootUI) onDownloadEpisode() {
	if err := ui.controller.DownloadEpisode(ui.rawSettings()); err != nil {
		ui.logger.Debug().Err(err).Msg("download rejected")
		return
	}
	ui.rememberDestination()
}

func (ui *RootUI) onDownloadAll() {
	msg := fmt.Sprintf(ui.localization.GetText(KeyConfirmAll), ui.episodeCount)
	dialog.ShowConfirm(ui.localization.GetText(KeyConfirmAllTitle), msg, func(ok bool) {
		if !ok {
			return
		}
		if err := ui.controller.DownloadAll(ui.rawSettings()); err != nil {
			ui.logger.Debug().Err(err).Msg("batch download rejected")
			return
		}
		ui.rememberDestination()
	}, ui.window)
}

func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.onSettingsSaved).Show()
}

func (ui *RootUI) onSettingsSaved() {
	ui.controller.SetMaxAttempts(ui.settings.GetMaxAttempts())
	ui.pathEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.qualitySelect.SetSelected(ui.settings.GetQuality().String())
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.refreshUITexts()
	ui.createMenu()
}

func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.logger.Error().Err(err).Str("path", filePath).Msg("reveal failed")
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err), ui.window)
	}
}

func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.logger.Error().Err(err).Str("path", filePath).Msg("open failed")
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err), ui.window)
	}
}

// session.View

// ShowResults implements session.View
func (ui *RootUI) ShowResults(results []model.SearchResult) {
	ui.results = results
	ui.resultsList.UnselectAll()
	ui.resultsList.Refresh()
}

// ShowDetails implements session.View
func (ui *RootUI) ShowDetails(d session.Details) {
	ui.titleLabel.SetText(d.Title)
	ui.episodeCount = len(d.Episodes)

	ui.episodeSelect.Options = model.EpisodeLabels(d.Episodes)
	ui.episodeSelect.ClearSelected()
	if len(ui.episodeSelect.Options) > 0 {
		ui.episodeSelect.SetSelected(ui.episodeSelect.Options[0])
	}
	ui.episodeSelect.Refresh()

	langs := make([]string, len(d.Languages))
	for i, l := range d.Languages {
		langs[i] = l.String()
	}
	// Assigned directly so that loading details does not overwrite the
	// stored audio preference through OnChanged.
	ui.languageSelect.Options = langs
	ui.languageSelect.Selected = ""
	preferred := ui.settings.GetAudioLanguage().String()
	for _, l := range langs {
		if l == preferred {
			ui.languageSelect.Selected = l
		}
	}
	if ui.languageSelect.Selected == "" && len(langs) > 0 {
		ui.languageSelect.Selected = langs[0]
	}
	ui.languageSelect.Refresh()
}

// ClearDetails implements session.View
func (ui *RootUI) ClearDetails() {
	// Selecting the same row again must start a new load
	ui.resultsList.UnselectAll()
	ui.titleLabel.SetText(ui.localization.GetText(KeyNoSelection))
	ui.episodeCount = 0
	ui.episodeSelect.Options = nil
	ui.episodeSelect.ClearSelected()
	ui.languageSelect.Options = nil
	ui.languageSelect.ClearSelected()
}

// SetProgress implements session.View
func (ui *RootUI) SetProgress(percent float64) {
	ui.progressBar.SetValue(percent)
}

// SetProgressLabel implements session.View
func (ui *RootUI) SetProgressLabel(text string) {
	ui.progressLabel.SetText(text)
}

// SetStatus implements session.View
func (ui *RootUI) SetStatus(text string) {
	ui.statusLabel.SetText(text)
}

// SetDownloadEnabled implements session.View
func (ui *RootUI) SetDownloadEnabled(enabled bool) {
	for _, b := range []*widget.Button{ui.downloadBtn, ui.downloadAllBtn} {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// Notify implements session.View
func (ui *RootUI) Notify(n session.Notification) {
	switch n.Level {
	case session.LevelError:
		dialog.ShowError(errors.New(n.Message), ui.window)
	case session.LevelWarning:
		dialog.ShowInformation(n.Title, n.Message, ui.window)
	default:
		dialog.ShowInformation(n.Title, n.Message, ui.window)
		if n.Path != "" {
			ui.app.SendNotification(fyne.NewNotification(ui.localization.GetText(KeyDownloadCompleted), n.Message))
			if ui.settings.GetAutoRevealOnComplete() {
				ui.onRevealFile(n.Path)
			}
		}
	}
}

// UpdateTask implements session.View
func (ui *RootUI) UpdateTask(task model.DownloadTask) {
	if i, ok := ui.taskIndex[task.ID]; ok {
		ui.tasks[i] = task
		ui.taskList.RefreshItem(i)
		return
	}
	ui.taskIndex[task.ID] = len(ui.tasks)
	ui.tasks = append(ui.tasks, task)
	ui.taskList.Refresh()
	ui.taskList.ScrollToBottom()
}

// fixedHeight stretches a single child horizontally at a fixed height
type fixedHeight struct {
	height float32
}

// Layout implements fyne.Layout
func (f *fixedHeight) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(size)
	}
}

// MinSize implements fyne.Layout
func (f *fixedHeight) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w float32
	for _, o := range objects {
		w = fyne.Max(w, o.MinSize().Width)
	}
	return fyne.NewSize(w, f.height)
}
