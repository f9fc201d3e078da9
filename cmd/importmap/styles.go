// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"importmap-cli/internal/report"
)

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple, for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, for subtitles and placeholders.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green, for resolved URLs and values.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, for errors and blocked entries.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, for diagnostics.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, for specifiers, keys and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")

	// ColorVerbose is light gray, for supplementary details.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for resolved URLs and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings and diagnostics.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for keys, specifiers and command names.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for supplementary information.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)
)

// reportStyles maps the palette onto the text encoder.
func reportStyles() report.Styles {
	return report.Styles{
		Heading: TitleStyle,
		Key:     CmdStyle,
		Value:   SuccessStyle,
		Blocked: ErrorStyle,
		Muted:   SubtitleStyle,
	}
}
