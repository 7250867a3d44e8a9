package ui

import "github.com/charmbracelet/lipgloss"

// Palette for the panel.
var (
	ColorRed     = lipgloss.Color("#E5484D")
	ColorGreen   = lipgloss.Color("#30A46C")
	ColorAmber   = lipgloss.Color("#FFB224")
	ColorBlue    = lipgloss.Color("#3E63DD")
	ColorGray    = lipgloss.Color("#6F6F6F")
	ColorDimGray = lipgloss.Color("#3A3A3A")
	ColorWhite   = lipgloss.Color("#EDEDED")
	ColorViolet  = lipgloss.Color("#8E4EC6")
)

// Section and chrome styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	PanelTitleStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorWhite)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue).
			MarginTop(1)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAmber).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// Recording and playback indicators.
var (
	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorViolet)

	SourceLabelStyle = lipgloss.NewStyle().
				Foreground(ColorBlue)

	LiveBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)
)

// Form fields.
var (
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	// PartialTextStyle draws the input cursor.
	PartialTextStyle = lipgloss.NewStyle().
				Foreground(ColorAmber)

	CheckInMessageStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)
)

// Transcription and status.
var (
	TranscriptStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	StatusWarnStyle = lipgloss.NewStyle().
			Foreground(ColorAmber)

	LevelGreenStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)
