package tui

import "github.com/charmbracelet/lipgloss"

// ThemeName identifies a color theme
type ThemeName string

const (
	ThemeDefault    ThemeName = "default"
	ThemeDracula    ThemeName = "dracula"
	ThemeCatppuccin ThemeName = "catppuccin"
	ThemeNord       ThemeName = "nord"
)

// Theme holds color definitions for the TUI
type Theme struct {
	Name       ThemeName
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Subtle     lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
	P1         lipgloss.Color
	P2         lipgloss.Color
	P3         lipgloss.Color
	Inherited  lipgloss.Color
	Tag        lipgloss.Color
	Foreground lipgloss.Color
}

var themeOrder = []ThemeName{ThemeDefault, ThemeDracula, ThemeCatppuccin, ThemeNord}

// Themes available in the application
var Themes = map[ThemeName]Theme{
	ThemeDefault: {
		Name:       ThemeDefault,
		Primary:    lipgloss.Color("#7D56F4"),
		Secondary:  lipgloss.Color("#04B575"),
		Subtle:     lipgloss.Color("#626262"),
		Error:      lipgloss.Color("#FF5F56"),
		Warning:    lipgloss.Color("#FFCC00"),
		P1:         lipgloss.Color("#FF5F56"),
		P2:         lipgloss.Color("#FFCC00"),
		P3:         lipgloss.Color("#04B575"),
		Inherited:  lipgloss.Color("#00BFFF"),
		Tag:        lipgloss.Color("#DDA0DD"),
		Foreground: lipgloss.Color("#FFFFFF"),
	},
	ThemeDracula: {
		Name:       ThemeDracula,
		Primary:    lipgloss.Color("#bd93f9"), // Purple
		Secondary:  lipgloss.Color("#50fa7b"), // Green
		Subtle:     lipgloss.Color("#6272a4"), // Comment
		Error:      lipgloss.Color("#ff5555"), // Red
		Warning:    lipgloss.Color("#f1fa8c"), // Yellow
		P1:         lipgloss.Color("#ff5555"),
		P2:         lipgloss.Color("#ffb86c"), // Orange
		P3:         lipgloss.Color("#50fa7b"),
		Inherited:  lipgloss.Color("#8be9fd"), // Cyan
		Tag:        lipgloss.Color("#ff79c6"), // Pink
		Foreground: lipgloss.Color("#f8f8f2"),
	},
	ThemeCatppuccin: {
		Name:       ThemeCatppuccin,
		Primary:    lipgloss.Color("#cba6f7"), // Mauve
		Secondary:  lipgloss.Color("#a6e3a1"), // Green
		Subtle:     lipgloss.Color("#6c7086"), // Overlay0
		Error:      lipgloss.Color("#f38ba8"), // Red
		Warning:    lipgloss.Color("#f9e2af"), // Yellow
		P1:         lipgloss.Color("#f38ba8"),
		P2:         lipgloss.Color("#fab387"), // Peach
		P3:         lipgloss.Color("#a6e3a1"),
		Inherited:  lipgloss.Color("#89dceb"), // Sky
		Tag:        lipgloss.Color("#f5c2e7"), // Pink
		Foreground: lipgloss.Color("#cdd6f4"), // Text
	},
	ThemeNord: {
		Name:       ThemeNord,
		Primary:    lipgloss.Color("#5e81ac"), // Nord10
		Secondary:  lipgloss.Color("#a3be8c"), // Nord14
		Subtle:     lipgloss.Color("#4c566a"), // Nord3
		Error:      lipgloss.Color("#bf616a"), // Nord11
		Warning:    lipgloss.Color("#ebcb8b"), // Nord13
		P1:         lipgloss.Color("#bf616a"),
		P2:         lipgloss.Color("#d08770"), // Nord12
		P3:         lipgloss.Color("#a3be8c"),
		Inherited:  lipgloss.Color("#88c0d0"), // Nord8
		Tag:        lipgloss.Color("#b48ead"), // Nord15
		Foreground: lipgloss.Color("#eceff4"), // Nord6
	},
}

// CurrentTheme is the active theme
var CurrentTheme = Themes[ThemeDefault]

// SetTheme changes the active theme. Unknown names are ignored.
func SetTheme(name ThemeName) bool {
	theme, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentTheme = theme
	updateStyles()
	return true
}

// CycleTheme switches to the next theme
func CycleTheme() ThemeName {
	for i, name := range themeOrder {
		if name == CurrentTheme.Name {
			next := themeOrder[(i+1)%len(themeOrder)]
			SetTheme(next)
			return next
		}
	}
	SetTheme(ThemeDefault)
	return ThemeDefault
}

// updateStyles refreshes the global styles with current theme colors
func updateStyles() {
	PrimaryColor = CurrentTheme.Primary
	SecondaryColor = CurrentTheme.Secondary
	SubtleColor = CurrentTheme.Subtle
	ErrorColor = CurrentTheme.Error
	WarningColor = CurrentTheme.Warning
	P1Color = CurrentTheme.P1
	P2Color = CurrentTheme.P2
	P3Color = CurrentTheme.P3
	InheritedColor = CurrentTheme.Inherited
	TagColor = CurrentTheme.Tag

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Foreground).
		Background(PrimaryColor).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor).
		Width(18)

	ValueStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Foreground)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(SubtleColor)

	TagStyle = lipgloss.NewStyle().
		Foreground(TagColor)

	ControlBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Foreground).
		Background(PrimaryColor).
		Padding(0, 1)

	InheritedBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(InheritedColor).
		Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(PrimaryColor).
		PaddingLeft(1)

	NormalItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	DescriptionStyle = lipgloss.NewStyle().
		Foreground(CurrentTheme.Foreground).
		Width(80)
}
