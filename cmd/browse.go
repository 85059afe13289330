package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/agent"
	"github.com/ethanolivertroy/saa-tui/internal/chat"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/llm"
	"github.com/ethanolivertroy/saa-tui/internal/tui"
)

// Layout constants
const (
	AssessorPanelWidth = 55  // Fixed width for the assessor sidebar
	CompactBreakpoint  = 110 // Below this width the sidebar is hidden
)

// PanelType identifies the focused panel
type PanelType int

const (
	PanelBrowser PanelType = iota
	PanelAssessor
)

var (
	subtleColor     = lipgloss.Color("#626262")
	borderFocused   = lipgloss.Color("#7D56F4")
	borderUnfocused = lipgloss.Color("#3a3a3a")
)

// BrowseOptions configures RunBrowse
type BrowseOptions struct {
	Catalog        *grc.Catalog
	ProjectName    string
	Categorization grc.Categorization
	LLM            llm.Config
	Assessments    agent.Assessments
}

type assessorReadyMsg struct {
	assessor chat.Chatter
}

type assessorErrorMsg struct {
	err error
}

// AppModel lays out the baseline browser with an optional assessor sidebar
type AppModel struct {
	ctx      context.Context
	opts     BrowseOptions
	browser  tea.Model
	assessor tea.Model

	llmErr          error // why no assessor can be created, nil if one can
	assessorErr     string
	focused         PanelType
	compact         bool
	assessorVisible bool

	width  int
	height int
}

// NewAppModel creates the browse layout
func NewAppModel(ctx context.Context, opts BrowseOptions) AppModel {
	return AppModel{
		ctx:             ctx,
		opts:            opts,
		browser:         tui.NewModel(opts.Catalog, opts.ProjectName, opts.Categorization),
		llmErr:          opts.LLM.Validate(),
		focused:         PanelBrowser,
		assessorVisible: true,
		width:           120,
		height:          30,
	}
}

func (m AppModel) project() *chat.Project {
	return &chat.Project{Name: m.opts.ProjectName, Categorization: m.opts.Categorization}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.browser.Init()}
	if m.llmErr == nil {
		cmds = append(cmds, m.initAssessor())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) initAssessor() tea.Cmd {
	ctx, opts := m.ctx, m.opts
	return func() tea.Msg {
		a, err := agent.New(ctx, opts.Catalog, opts.Assessments, opts.LLM)
		if err != nil {
			return assessorErrorMsg{err: err}
		}
		return assessorReadyMsg{assessor: a}
	}
}

func (m AppModel) sidebarShown() bool {
	return !m.compact && m.assessorVisible
}

func (m AppModel) assessorFocused() bool {
	return m.focused == PanelAssessor && m.assessor != nil && m.sidebarShown()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case assessorReadyMsg:
		m.assessor = chat.NewModel(m.ctx, msg.assessor).WithProject(m.project())
		cmds := []tea.Cmd{m.assessor.Init()}
		if !m.compact {
			var cmd tea.Cmd
			m.assessor, cmd = m.assessor.Update(tea.WindowSizeMsg{Width: AssessorPanelWidth, Height: m.height})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case assessorErrorMsg:
		m.assessorErr = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "\\":
			if !m.compact {
				m.assessorVisible = !m.assessorVisible
				if !m.assessorVisible {
					m.focused = PanelBrowser
				}
				return m, nil
			}
		case "tab":
			if m.sidebarShown() {
				if m.focused == PanelBrowser {
					m.focused = PanelAssessor
				} else {
					m.focused = PanelBrowser
				}
				return m, nil
			}
		}
		return m.route(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.compact = msg.Width < CompactBreakpoint

		browserWidth := m.width
		if !m.compact {
			browserWidth -= AssessorPanelWidth
		}
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(tea.WindowSizeMsg{Width: browserWidth, Height: m.height})
		cmds = append(cmds, cmd)
		if m.assessor != nil && !m.compact {
			m.assessor, cmd = m.assessor.Update(tea.WindowSizeMsg{Width: AssessorPanelWidth, Height: m.height})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case chat.AgentResponseMsg:
		// replies go to the assessor whichever panel has focus
		if m.assessor != nil {
			var cmd tea.Cmd
			m.assessor, cmd = m.assessor.Update(msg)
			return m, cmd
		}
		return m, nil

	case tui.BaselineLoadedMsg, tui.ErrorMsg:
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	return m.route(msg)
}

// route sends msg to the focused panel only
func (m AppModel) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.assessorFocused() {
		m.assessor, cmd = m.assessor.Update(msg)
	} else {
		m.browser, cmd = m.browser.Update(msg)
	}
	return m, cmd
}

func (m AppModel) View() string {
	if !m.sidebarShown() {
		return m.browser.View()
	}

	browserWidth := m.width - AssessorPanelWidth
	browserView := lipgloss.NewStyle().
		Width(browserWidth).
		Height(m.height).
		Render(m.browser.View())

	border := borderUnfocused
	if m.focused == PanelAssessor {
		border = borderFocused
	}
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(border).
		Width(AssessorPanelWidth - 1).
		Height(m.height).
		Render(m.sidebarContent())

	return lipgloss.JoinHorizontal(lipgloss.Top, browserView, sidebar)
}

func (m AppModel) sidebarContent() string {
	switch {
	case m.assessor != nil:
		return m.assessor.View()
	case m.assessorErr != "":
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F56")).
			Render(fmt.Sprintf("Error:\n%s", m.assessorErr))
	case m.llmErr != nil:
		return lipgloss.JoinVertical(lipgloss.Center,
			"",
			lipgloss.NewStyle().Bold(true).Foreground(borderFocused).Render("SA&A Assessor"),
			lipgloss.NewStyle().Foreground(subtleColor).Render("AI Assistant"),
			"",
			lipgloss.NewStyle().Foreground(lipgloss.Color("#888")).Render(providerSetupHelp(m.opts.LLM)),
		)
	}
	return lipgloss.NewStyle().Foreground(subtleColor).Render("Loading assessor...")
}

// providerSetupHelp returns setup instructions for the configured provider
func providerSetupHelp(cfg llm.Config) string {
	switch cfg.Provider {
	case llm.ProviderGemini, "":
		return "Set GEMINI_API_KEY\nto enable"
	case llm.ProviderVertex:
		return "Set VERTEX_PROJECT\nand VERTEX_LOCATION"
	case llm.ProviderOllama:
		return "Start Ollama:\n  ollama serve"
	}
	return "Configure LLM_PROVIDER\nand credentials"
}

// RunBrowse runs the baseline browser full screen
func RunBrowse(ctx context.Context, opts BrowseOptions) error {
	p := tea.NewProgram(NewAppModel(ctx, opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
