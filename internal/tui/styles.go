package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// Colors (theme-aware - updated by theme.go)
var (
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	WarningColor   = lipgloss.Color("#FFCC00")
	ErrorColor     = lipgloss.Color("#FF5F56")
	SubtleColor    = lipgloss.Color("#626262")
	InheritedColor = lipgloss.Color("#00BFFF")
	TagColor       = lipgloss.Color("#DDA0DD")
	// Priority colors
	P1Color = lipgloss.Color("#FF5F56")
	P2Color = lipgloss.Color("#FFCC00")
	P3Color = lipgloss.Color("#04B575")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Detail view styles
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Width(18)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC")).
				Width(80)

	TagStyle = lipgloss.NewStyle().
			Foreground(TagColor)

	ControlBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	InheritedBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(InheritedColor).
			Padding(0, 1)

	// List item styles
	SelectedItemStyle = lipgloss.NewStyle().
				BorderLeft(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(PrimaryColor).
				PaddingLeft(1)

	NormalItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// PriorityColor maps a control priority to its color
func PriorityColor(p grc.Priority) lipgloss.Color {
	switch p {
	case grc.P1:
		return P1Color
	case grc.P2:
		return P2Color
	case grc.P3:
		return P3Color
	}
	return SubtleColor
}

// PriorityBadge returns a colored priority badge
func PriorityBadge(p grc.Priority) string {
	if p == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(PriorityColor(p)).Bold(p == grc.P1).Render(string(p))
}

// RequirementBadge shows whether a formal SA&A is required
func RequirementBadge(required bool) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if required {
		return style.Foreground(lipgloss.Color("#FFFFFF")).Background(ErrorColor).Render("SA&A REQUIRED")
	}
	return style.Foreground(lipgloss.Color("#000000")).Background(SecondaryColor).Render("WEB GUIDANCE ONLY")
}

// RelevanceBar returns a visual bar for a relevance score out of max
func RelevanceBar(score, max, width int) string {
	if score <= 0 || max <= 0 || width <= 0 {
		return ""
	}
	filled := score * width / max
	if filled < 1 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(PrimaryColor)
	emptyStyle := lipgloss.NewStyle().Foreground(SubtleColor)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", empty))
}

// StatsStyle for statistics header
var StatsStyle = lipgloss.NewStyle().
	Foreground(SubtleColor).
	Padding(0, 1)

// StatHighlight for important stats
var StatHighlight = lipgloss.NewStyle().
	Foreground(PrimaryColor).
	Bold(true)

// ScoreBadge returns a compliance score badge colored against the iATO threshold
func ScoreBadge(score, threshold int) string {
	var bg lipgloss.Color
	switch {
	case score >= 100:
		bg = SecondaryColor
	case score >= threshold:
		bg = WarningColor
	default:
		bg = ErrorColor
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(bg).
		Padding(0, 1).
		Render(fmt.Sprintf("%d%%", score))
}
