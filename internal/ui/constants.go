package ui

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconPlay     = "▶"
)

// Text fragments
const (
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%.0f%%"
)

// Window and layout sizing
const (
	SplitOffset              = 0.4
	TaskListHeight   float32 = 160
	SettingsDialogW  float32 = 480
	SettingsDialogH  float32 = 420
	StatusLabelWidth float32 = 90
	TaskRowMinHeight float32 = 36
)

// ProgressMax is the upper bound of the progress bar
const ProgressMax = 100
