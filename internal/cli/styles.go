package cli

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// titleStyle is for primary headers and tool names.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// subtitleStyle is for secondary text and de-emphasized detail.
	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// successStyle is for completed upgrades and passing checks.
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// errorStyle is for failures.
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	// warningStyle is for cautions and skipped work.
	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// cmdStyle is for command suggestions and version tags.
	cmdStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)
)
