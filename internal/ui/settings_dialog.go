package ui

import (
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/anime-downloader/internal/config"
	"github.com/ytget/anime-downloader/internal/model"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	downloadDirEntry *widget.Entry
	qualitySelect    *widget.Select
	audioSelect      *widget.Select
	attemptsEntry    *widget.Entry
	autoRevealCheck  *widget.Check
	languageSelect   *widget.Select

	// display name -> language code
	languageCodes map[string]string
}

// NewSettingsDialog creates a new settings dialog; onSaved runs after the
// preferences were written
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:      settings,
		localization:  localization,
		window:        window,
		onSaved:       onSaved,
		languageCodes: make(map[string]string),
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	t := sd.localization.GetText

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(t(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.qualitySelect = widget.NewSelect(model.QualityStrings(), nil)
	sd.audioSelect = widget.NewSelect([]string{model.LanguageSub.String(), model.LanguageDub.String()}, nil)

	sd.attemptsEntry = widget.NewEntry()
	sd.attemptsEntry.SetPlaceHolder(strconv.Itoa(config.MinMaxAttempts) + "-" + strconv.Itoa(config.MaxMaxAttempts))

	sd.autoRevealCheck = widget.NewCheck(t(KeyAutoReveal), nil)

	languageNames := []string{}
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		languageNames = append(languageNames, name)
	}
	sort.Strings(languageNames)
	sd.languageSelect = widget.NewSelect(languageNames, nil)

	form := container.NewVBox(
		widget.NewLabel(t(KeyDownloadDirectory)),
		downloadDirRow,

		widget.NewLabel(t(KeyDefaultQuality)),
		sd.qualitySelect,

		widget.NewLabel(t(KeyDefaultAudio)),
		sd.audioSelect,

		widget.NewLabel(t(KeyMaxAttempts)),
		sd.attemptsEntry,

		sd.autoRevealCheck,

		widget.NewSeparator(),

		widget.NewLabel(t(KeyLanguage)),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		t(KeySettings),
		t(KeySave),
		t(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogW, SettingsDialogH))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.qualitySelect.SetSelected(sd.settings.GetQuality().String())
	sd.audioSelect.SetSelected(sd.settings.GetAudioLanguage().String())
	sd.attemptsEntry.SetText(strconv.Itoa(sd.settings.GetMaxAttempts()))
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
	sd.languageSelect.SetSelected(sd.settings.GetLanguageOptions()[sd.settings.GetLanguage()])
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.apply()

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}

// apply writes the form values; blank or unparsable fields keep the stored value
func (sd *SettingsDialog) apply() {
	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}

	if q, err := model.ParseQuality(sd.qualitySelect.Selected); err == nil {
		sd.settings.SetQuality(q)
	}

	if lang, err := model.ParseLanguage(sd.audioSelect.Selected); err == nil {
		sd.settings.SetAudioLanguage(lang)
	}

	if n, err := strconv.Atoi(sd.attemptsEntry.Text); err == nil {
		sd.settings.SetMaxAttempts(n)
	}

	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)

	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
}
