// Package chat is the interactive terminal front end for the SA&A assessor
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/palette"
)

var (
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#04B575")
	subtleColor    = lipgloss.Color("#626262")
	errorColor     = lipgloss.Color("#FF5F56")
)

// Chatter is the conversational side of the assessor
type Chatter interface {
	Chat(ctx context.Context, query string) (string, error)
	ClearSession()
}

// MessageRole differentiates user vs agent messages
type MessageRole int

const (
	RoleUser MessageRole = iota
	RoleAgent
	RoleSystem
)

// ChatMessage is one entry in the conversation
type ChatMessage struct {
	Role      MessageRole
	Content   string
	Timestamp time.Time
	IsError   bool
}

// AgentResponseMsg carries the assessor's reply
type AgentResponseMsg struct {
	Content string
	Err     error
}

// Project is the project under discussion, prefixed to each question
type Project struct {
	Name           string
	Categorization grc.Categorization
}

// ProjectSelectedMsg sets or clears the project context
type ProjectSelectedMsg struct {
	Project *Project
}

// Model is the chat TUI
type Model struct {
	ctx       context.Context
	agent     Chatter
	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	palette   palette.Model
	messages  []ChatMessage
	thinking  bool
	width     int
	height    int
	project   *Project
	renderer  *glamour.TermRenderer
	now       func() time.Time
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2).
			MarginBottom(1)

	userLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	agentLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(secondaryColor)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#5A3FBA")).
				Padding(0, 1).
				MarginLeft(2)

	agentMessageStyle = lipgloss.NewStyle().
				BorderLeft(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(secondaryColor).
				PaddingLeft(1).
				MarginLeft(2)

	systemMessageStyle = lipgloss.NewStyle().Foreground(subtleColor).Italic(true).MarginLeft(2)
	errorMessageStyle  = lipgloss.NewStyle().Foreground(errorColor).Italic(true).MarginLeft(2)
	footerStyle        = lipgloss.NewStyle().Foreground(subtleColor)

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86EFAC")).
			Background(lipgloss.Color("#1E3A2F")).
			Padding(0, 1).
			Bold(true)
)

const welcome = `Ask me whether a project needs a Security Assessment and Authorization, which ITSG-33 profile applies and which controls to implement.

Try:
  "Protected B case management app on Azure with Entra ID"
  "Does a static unclassified landing page need an SA&A?"
  "Explain AC-2 and what evidence it needs"
  "Show incident response controls for PBMM"

Commands: /help /clear /exit  (ctrl+p for the palette)`

const helpText = `Commands:
  /help, /?    Show this help message
  /clear       Clear conversation and start fresh
  /context     Show the current project context
  /exit, /q    Exit

Navigation:
  PgUp/PgDn    Scroll conversation history
  Ctrl+P       Command palette
  Ctrl+C       Quit`

// NewModel creates a chat model backed by agent
func NewModel(ctx context.Context, agent Chatter) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe your project or ask about a control..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 74
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(secondaryColor)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(70),
	)

	m := Model{
		ctx:       ctx,
		agent:     agent,
		textInput: ti,
		viewport:  viewport.New(76, 16),
		spinner:   s,
		palette: palette.New([]palette.Command{
			{Name: "Clear Chat", Key: "/clear", Description: "reset conversation", Action: "clear"},
			{Name: "Show Help", Key: "/help", Description: "commands keys", Action: "help"},
			{Name: "Project Context", Key: "/context", Description: "categorization", Action: "context"},
			{Name: "Exit", Key: "/exit", Description: "quit", Action: "exit"},
		}),
		width:    80,
		height:   24,
		renderer: renderer,
		now:      time.Now,
	}
	m.messages = []ChatMessage{m.system(welcome)}
	m.updateViewportContent()
	return m
}

// WithProject sets the initial project context
func (m Model) WithProject(p *Project) Model {
	m.project = p
	return m
}

func (m Model) system(text string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: text, Timestamp: m.now()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Active {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+p":
			m.palette.Open()
			return m, nil

		case "enter":
			if m.thinking {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.ask(input)

		case "esc":
			m.textInput.Reset()
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = max(m.height-m.chromeHeight(), 3)
		m.textInput.Width = m.width - 6
		m.palette.SetWidth(min(m.width-10, 60))
		m.updateViewportContent()
		return m, nil

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.updateViewportContent()
			return m, cmd
		}
		return m, nil

	case AgentResponseMsg:
		m.thinking = false
		if msg.Err != nil {
			reply := m.system("Error: " + msg.Err.Error())
			reply.IsError = true
			m.messages = append(m.messages, reply)
		} else {
			m.messages = append(m.messages, ChatMessage{Role: RoleAgent, Content: msg.Content, Timestamp: m.now()})
		}
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case ProjectSelectedMsg:
		m.project = msg.Project
		return m, nil

	case palette.SelectedAction:
		return m.handleCommand("/" + string(msg))

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// chromeHeight is the number of lines outside the viewport
func (m Model) chromeHeight() int {
	h := 7
	if m.project != nil {
		h++
	}
	return h
}

func (m Model) ask(input string) (tea.Model, tea.Cmd) {
	m.messages = append(m.messages, ChatMessage{Role: RoleUser, Content: input, Timestamp: m.now()})
	m.thinking = true
	m.updateViewportContent()
	m.viewport.GotoBottom()

	ctx, agent, query := m.ctx, m.agent, EnrichQuery(m.project, input)
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := agent.Chat(ctx, query)
		return AgentResponseMsg{Content: reply, Err: err}
	})
}

// sanitizeForPrompt flattens text so it cannot forge a context block
func sanitizeForPrompt(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// EnrichQuery prefixes the project context to a question
func EnrichQuery(p *Project, query string) string {
	if p == nil {
		return query
	}
	c := p.Categorization.Normalized()
	techs := "none declared"
	if len(c.Technologies) > 0 {
		techs = strings.Join(c.Technologies, ", ")
	}
	return fmt.Sprintf(
		"[Context: Project %s, categorization %s, PII %t, technologies: %s. Description: %s]\n\n%s",
		sanitizeForPrompt(p.Name),
		c.Label(),
		c.HasPII,
		sanitizeForPrompt(techs),
		sanitizeForPrompt(c.Description),
		query,
	)
}

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/exit", "/quit", "/q":
		return m, tea.Quit

	case "/clear":
		m.agent.ClearSession()
		m.messages = []ChatMessage{m.system("Conversation cleared. Starting fresh.")}

	case "/help", "/?":
		m.messages = append(m.messages, m.system(helpText))

	case "/context":
		if m.project == nil {
			m.messages = append(m.messages, m.system("No project context. Start with --intake to load one."))
		} else {
			c := m.project.Categorization.Normalized()
			m.messages = append(m.messages, m.system(fmt.Sprintf("Project: %s (%s)", m.project.Name, c.FullLabel())))
		}

	default:
		reply := m.system("Unknown command: " + input + ". Type /help for available commands.")
		reply.IsError = true
		m.messages = append(m.messages, reply)
	}
	m.updateViewportContent()
	m.viewport.GotoBottom()
	return m, nil
}

// View renders the chat interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("SA&A Assessor"))
	b.WriteString("\n")
	if m.project != nil {
		b.WriteString(contextStyle.Render(m.project.Name + " | " + m.project.Categorization.Normalized().Label()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(strings.Repeat("─", max(m.width-2, 1))))
	b.WriteString("\n  ")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	if m.thinking {
		b.WriteString(footerStyle.Render("  " + m.spinner.View() + " Assessing..."))
	} else {
		b.WriteString(footerStyle.Render("  PgUp/Dn scroll  |  ctrl+p commands  |  /help /clear /exit"))
	}

	return m.palette.Overlay(b.String(), m.width, m.height)
}

func (m *Model) updateViewportContent() {
	var content strings.Builder
	for _, msg := range m.messages {
		content.WriteString(m.renderMessage(msg))
		content.WriteString("\n\n")
	}
	if m.thinking {
		content.WriteString(systemMessageStyle.Render(m.spinner.View() + " Assessing..."))
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
}

func (m Model) renderMessage(msg ChatMessage) string {
	switch msg.Role {
	case RoleUser:
		return userLabelStyle.Render("You:") + "\n" + userMessageStyle.Render(wrapText(msg.Content, m.width-8))
	case RoleAgent:
		return agentLabelStyle.Render("Assessor:") + "\n" + m.renderMarkdown(msg.Content)
	}
	if msg.IsError {
		return errorMessageStyle.Render(msg.Content)
	}
	return systemMessageStyle.Render(msg.Content)
}

// renderMarkdown renders with the cached glamour renderer, falling back to
// wrapped plain text
func (m Model) renderMarkdown(content string) string {
	width := max(m.width-10, 40)
	if m.renderer == nil {
		return agentMessageStyle.Render(wrapText(content, width))
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return agentMessageStyle.Render(wrapText(content, width))
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

// wrapText wraps text on word boundaries to width runes
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if len([]rune(line)) <= width {
			out = append(out, line)
			continue
		}
		current := ""
		for _, word := range strings.Fields(line) {
			switch {
			case current == "":
				current = word
			case len([]rune(current))+1+len([]rune(word)) <= width:
				current += " " + word
			default:
				out = append(out, current)
				current = word
			}
		}
		if current != "" {
			out = append(out, current)
		}
	}
	return strings.Join(out, "\n")
}
