package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - coherent with charmbracelet style
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple (charmbracelet brand)
	Secondary = lipgloss.Color("#FF79C6") // Pink accent
	Success   = lipgloss.Color("#50FA7B") // Green
	Warning   = lipgloss.Color("#FFB86C") // Orange
	Error     = lipgloss.Color("#FF5555") // Red
	Muted     = lipgloss.Color("#6272A4") // Muted blue-gray
	Text      = lipgloss.Color("#F8F8F2") // Light text
)

// Base styles
var (
	// Title style for headers
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFDF5")).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	NormalText = lipgloss.NewStyle().
			Foreground(Text)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	// Highlighted (focused)
	Highlighted = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// App container
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Help = lipgloss.NewStyle().
		Foreground(Muted)

	Spinner = lipgloss.NewStyle().
		Foreground(Primary)
)

// Symbols
var (
	CheckMark = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	CrossMark = lipgloss.NewStyle().Foreground(Error).SetString("✗")
	Arrow     = lipgloss.NewStyle().Foreground(Primary).SetString("→")
)

// Profile hierarchy styles
var (
	VersionName = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionFolder = lipgloss.NewStyle().
			Foreground(Muted)

	AccountName = lipgloss.NewStyle().
			Foreground(Secondary)

	CharacterName = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	RealmName = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	NoSavedVariables = lipgloss.NewStyle().
				Foreground(Warning)
)

// FormatSuccess formats a success message
func FormatSuccess(msg string) string {
	return CheckMark.String() + " " + SuccessText.Render(msg)
}

// FormatError formats an error message
func FormatError(msg string) string {
	return CrossMark.String() + " " + ErrorText.Render(msg)
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningText.Render("! " + msg)
}

// FormatVersion renders a version as "Retail (_retail_)"
func FormatVersion(display, folder string) string {
	if display == folder {
		return VersionName.Render(display)
	}
	return VersionName.Render(display) + " " + VersionFolder.Render("("+folder+")")
}

// FormatProfile renders a character with its realm
func FormatProfile(character, realm string) string {
	return CharacterName.Render(character) + " " + RealmName.Render("- "+realm)
}

// FormatSavedVariablesBadge marks profiles that cannot be used as a source
func FormatSavedVariablesBadge(has bool) string {
	if has {
		return ""
	}
	return NoSavedVariables.Render("no saved variables")
}
