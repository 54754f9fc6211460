package progress

import (
	"fmt"
	"strings"

	"github.com/bnema/wtfcopy/internal/ui/styles"
)

// PrintStep prints a step with the appropriate icon and styling
func PrintStep(state State, message string) {
	fmt.Println(FormatStep(state, message))
}

// PrintComplete prints a completed step
func PrintComplete(message string) {
	PrintStep(StateComplete, message)
}

// PrintError prints an error step
func PrintError(message string) {
	PrintStep(StateError, message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(FormatWarning(message))
}

// PrintTitle prints a title/header
func PrintTitle(title string) {
	style := styles.NormalText.Bold(true)
	fmt.Printf("%s\n\n", style.Render(title))
}

// PrintDetail prints an indented detail line
func PrintDetail(detail string) {
	fmt.Printf("      %s\n", styles.MutedText.Render(detail))
}

// PrintSummary prints a summary line
func PrintSummary(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Printf("\n  %s\n", styles.MutedText.Render(message))
}

// PrintNewline prints an empty line
func PrintNewline() {
	fmt.Println()
}

// PrintTranscript prints every transcript line with its outcome icon
func PrintTranscript(lines []string) {
	fmt.Print(RenderTranscript(lines))
}

// Sprintf helpers for building styled strings without printing

// FormatStep returns a formatted step string
func FormatStep(state State, message string) string {
	icon := StyledIcon(state)
	textStyle := StepStyle(state)
	return fmt.Sprintf("  %s %s", icon, textStyle.Render(message))
}

// FormatWarning returns a formatted warning string
func FormatWarning(message string) string {
	icons := GetIcons()
	icon := IconStyleWarning.Render(icons.Warning)
	return fmt.Sprintf("  %s %s", icon, styles.WarningText.Render(message))
}

// LineState classifies a transcript line by its leading word
func LineState(line string) State {
	switch {
	case strings.HasPrefix(line, "error "), strings.HasPrefix(line, "aborted: "):
		return StateError
	case strings.HasPrefix(line, "copied "), strings.HasPrefix(line, "removed "):
		return StateComplete
	default:
		return StatePending
	}
}

// RenderTranscript formats transcript lines, one per row
func RenderTranscript(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(FormatStep(LineState(line), line))
		b.WriteString("\n")
	}
	return b.String()
}
