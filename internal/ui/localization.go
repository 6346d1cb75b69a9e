package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeySearch            = "search"
	KeySearchPlaceholder = "search_placeholder"
	KeySearchResults     = "search_results"
	KeyAnimeDetails      = "anime_details"
	KeyNoSelection       = "no_selection"
	KeyEpisode           = "episode"
	KeyAudio             = "audio"
	KeyQuality           = "quality"
	KeyDownloadPath      = "download_path"
	KeyBrowse            = "browse"
	KeyDownloadEpisode   = "download_episode"
	KeyDownloadAll       = "download_all"
	KeyConfirmAllTitle   = "confirm_all_title"
	KeyConfirmAll        = "confirm_all"
	KeyProgress          = "progress"
	KeyDownloads         = "downloads"
	KeyReveal            = "reveal"
	KeyOpen              = "open"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyDownloadDirectory = "download_directory"
	KeyDefaultQuality    = "default_quality"
	KeyDefaultAudio      = "default_audio"
	KeyMaxAttempts       = "max_attempts"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeySettingsSaved     = "settings_saved"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyDownloadCompleted = "download_completed"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Anime Downloader",
		KeySearch:            "Search",
		KeySearchPlaceholder: "Enter anime name",
		KeySearchResults:     "Search Results",
		KeyAnimeDetails:      "Anime Details",
		KeyNoSelection:       "Select an anime to see its episodes",
		KeyEpisode:           "Episode",
		KeyAudio:             "Audio",
		KeyQuality:           "Quality",
		KeyDownloadPath:      "Download Path",
		KeyBrowse:            "Browse",
		KeyDownloadEpisode:   "Download Episode",
		KeyDownloadAll:       "Download All",
		KeyConfirmAllTitle:   "Download all episodes",
		KeyConfirmAll:        "Download all %d episodes?",
		KeyProgress:          "Download Progress",
		KeyDownloads:         "Downloads",
		KeyReveal:            "Reveal",
		KeyOpen:              "Open",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyDownloadDirectory: "Download Directory",
		KeyDefaultQuality:    "Default Quality",
		KeyDefaultAudio:      "Default Audio",
		KeyMaxAttempts:       "Download Attempts",
		KeyAutoReveal:        "Reveal files when finished",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyErrorOpeningFile:  "Error opening file",
		KeyDownloadCompleted: "Download completed",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "Загрузчик аниме",
		KeySearch:            "Поиск",
		KeySearchPlaceholder: "Введите название аниме",
		KeySearchResults:     "Результаты поиска",
		KeyAnimeDetails:      "Об аниме",
		KeyNoSelection:       "Выберите аниме, чтобы увидеть серии",
		KeyEpisode:           "Серия",
		KeyAudio:             "Озвучка",
		KeyQuality:           "Качество",
		KeyDownloadPath:      "Папка загрузки",
		KeyBrowse:            "Обзор",
		KeyDownloadEpisode:   "Скачать серию",
		KeyDownloadAll:       "Скачать все",
		KeyConfirmAllTitle:   "Скачать все серии",
		KeyConfirmAll:        "Скачать все серии (%d)?",
		KeyProgress:          "Ход загрузки",
		KeyDownloads:         "Загрузки",
		KeyReveal:            "Показать",
		KeyOpen:              "Открыть",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyDownloadDirectory: "Папка загрузки",
		KeyDefaultQuality:    "Качество по умолчанию",
		KeyDefaultAudio:      "Озвучка по умолчанию",
		KeyMaxAttempts:       "Попыток загрузки",
		KeyAutoReveal:        "Показывать файл после загрузки",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyDownloadCompleted: "Загрузка завершена",
	}
}
