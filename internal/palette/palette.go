// Package palette is a filterable command palette overlay for the chat view
package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	subtleColor  = lipgloss.Color("#626262")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	hintStyle = lipgloss.NewStyle().
			Foreground(subtleColor)
)

const maxVisible = 10

// Command is one palette entry
type Command struct {
	Name        string // Display name
	Key         string // Shortcut shown on the right
	Description string // Matched by the filter, not displayed
	Action      string // Returned in SelectedAction
}

// SelectedAction is emitted when a command is chosen
type SelectedAction string

// Model is the palette state
type Model struct {
	commands  []Command
	filtered  []Command
	textInput textinput.Model
	selected  int
	Active    bool
	width     int
}

// New creates a closed palette over commands
func New(commands []Command) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter"
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	ti.CharLimit = 50

	return Model{
		commands:  commands,
		filtered:  commands,
		textInput: ti,
		width:     50,
	}
}

// SetWidth sets the palette's outer width
func (m *Model) SetWidth(width int) {
	m.width = max(width, 24)
	m.textInput.Width = m.width - 6
}

// Open shows the palette with an empty filter
func (m *Model) Open() {
	m.Active = true
	m.textInput.Reset()
	m.textInput.Focus()
	m.filtered = m.commands
	m.selected = 0
}

// Close hides the palette
func (m *Model) Close() {
	m.Active = false
	m.textInput.Blur()
}

// Filtered returns the commands matching the current filter
func (m Model) Filtered() []Command {
	return m.filtered
}

// Update handles keys while the palette is open
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.Close()
			return m, nil
		case "enter":
			if m.selected >= len(m.filtered) {
				return m, nil
			}
			action := m.filtered[m.selected].Action
			m.Close()
			return m, func() tea.Msg { return SelectedAction(action) }
		case "up", "ctrl+k":
			m.selected--
			if m.selected < 0 {
				m.selected = max(len(m.filtered)-1, 0)
			}
			return m, nil
		case "down", "ctrl+j":
			m.selected++
			if m.selected >= len(m.filtered) {
				m.selected = 0
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.filter(m.textInput.Value())
	return m, cmd
}

func (m *Model) filter(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		m.filtered = m.commands
	} else {
		m.filtered = nil
		for _, c := range m.commands {
			text := strings.ToLower(c.Name + " " + c.Key + " " + c.Description)
			if strings.Contains(text, query) {
				m.filtered = append(m.filtered, c)
			}
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = max(len(m.filtered)-1, 0)
	}
}

// View renders the palette box, or nothing when closed
func (m Model) View() string {
	if !m.Active {
		return ""
	}
	inner := m.width - 2

	lines := []string{
		headerStyle.Width(inner).Align(lipgloss.Center).Render("Commands"),
		" " + m.textInput.View(),
		"",
	}
	if len(m.filtered) == 0 {
		lines = append(lines, hintStyle.Render("  No matching commands"))
	}
	for i, c := range m.filtered {
		if i == maxVisible {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("  ... %d more", len(m.filtered)-maxVisible)))
			break
		}
		name := fmt.Sprintf(" %-*s", max(inner-len(c.Key)-2, 0), c.Name)
		if i == m.selected {
			lines = append(lines, selectedStyle.Width(inner).Render(name+c.Key))
		} else {
			lines = append(lines, normalStyle.Render(name)+hintStyle.Render(c.Key))
		}
	}
	lines = append(lines, "", hintStyle.Render(" ↑↓ choose • enter run • esc close"))

	return boxStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

// Overlay centres the open palette in a width x height area, replacing
// background; a closed palette returns background unchanged
func (m Model) Overlay(background string, width, height int) string {
	if !m.Active {
		return background
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}
