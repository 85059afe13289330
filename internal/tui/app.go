// Package tui is the interactive baseline browser.
package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/model"
	"github.com/ethanolivertroy/saa-tui/internal/report"
)

var errNoCatalog = errors.New("no control catalogue loaded")

// ViewState represents the current view
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewReport
	ViewChartsMenu
	ViewFamilyChart
	ViewPriorityChart
	ViewInheritanceChart
	ViewExportMenu
	ViewExportConfirm
)

// ChartOption represents a chart in the charts menu
type ChartOption struct {
	Name        string
	Description string
	View        ViewState
}

// SortMode represents the current sort order
type SortMode int

const (
	SortByControl SortMode = iota
	SortByRelevance
	SortByPriority
)

func (s SortMode) String() string {
	switch s {
	case SortByControl:
		return "Control ID"
	case SortByRelevance:
		return "Relevance"
	case SortByPriority:
		return "Priority"
	}
	return ""
}

// FilterMode represents special filters
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterInherited
	FilterP1
	FilterFamily
)

// PendingExport is an export awaiting confirmation
type PendingExport struct {
	Option ExportOption
	Recs   []grc.Recommendation
}

// Stats holds the baseline counters shown in the header
type Stats struct {
	Total     int
	Inherited int
	P1        int
	Families  int
}

// BaselineLoadedMsg carries the computed intake report
type BaselineLoadedMsg struct {
	Report report.Report
}

// ErrorMsg reports a failure to build the baseline
type ErrorMsg struct {
	Err error
}

// Model is the main application model
type Model struct {
	catalog        *grc.Catalog
	project        string
	categorization grc.Categorization
	report         report.Report
	list           list.Model
	items          []list.Item
	spinner        spinner.Model
	loading        bool
	err            error
	width          int
	height         int
	view           ViewState
	selected       *model.ControlItem
	keys           KeyMap
	help           help.Model
	showHelp       bool
	viewport       viewport.Model
	viewportReady  bool
	sortMode       SortMode
	filterMode     FilterMode
	stats          Stats
	statusMsg      string
	outputDir      string
	now            func() time.Time
	// Family chart state
	families            []FamilyStats
	selectedFamilyIndex int
	selectedFamily      string
	// Charts menu state
	chartOptions       []ChartOption
	selectedChartIndex int
	// Export menu state
	exportOptions       []ExportOption
	selectedExportIndex int
	pendingExport       *PendingExport
}

// NewModel creates a browser for the baseline of one project
func NewModel(cat *grc.Catalog, project string, c grc.Categorization) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	h := help.New()
	h.ShowAll = false

	return Model{
		catalog:        cat,
		project:        project,
		categorization: c,
		spinner:        s,
		loading:        true,
		keys:           DefaultKeyMap(),
		help:           h,
		sortMode:       SortByControl,
		outputDir:      ".",
		now:            time.Now,
		chartOptions: []ChartOption{
			{Name: "Families", Description: "Controls per family", View: ViewFamilyChart},
			{Name: "Priority", Description: "P1 / P2 / P3 breakdown", View: ViewPriorityChart},
			{Name: "Inheritance", Description: "Controls satisfied by declared technologies", View: ViewInheritanceChart},
		},
		exportOptions: DefaultExportOptions(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadBaseline())
}

func (m Model) loadBaseline() tea.Cmd {
	cat, project, c, now := m.catalog, m.project, m.categorization, m.now
	return func() tea.Msg {
		if cat == nil {
			return ErrorMsg{Err: errNoCatalog}
		}
		return BaselineLoadedMsg{Report: report.Build(cat, project, c, now())}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.loading && m.err == nil {
			headerHeight := 5 // title, requirement, stats, indicators
			footerHeight := 2
			m.list.SetSize(msg.Width, msg.Height-headerHeight-footerHeight)
		}
		if m.viewportReady {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 6
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case BaselineLoadedMsg:
		m.loading = false
		m.report = msg.Report
		m.calculateStats()
		m.applySortAndFilter()

		m.list = list.New(m.items, NewControlDelegate(), m.width, m.height-7)
		m.list.Title = m.listTitle()
		m.list.SetShowStatusBar(true)
		m.list.SetFilteringEnabled(true)
		m.list.SetShowHelp(false)
		m.list.Styles.Title = TitleStyle

		// Use exact substring matching
		m.list.Filter = func(term string, targets []string) []list.Rank {
			var ranks []list.Rank
			term = strings.ToLower(term)
			for i, target := range targets {
				if strings.Contains(strings.ToLower(target), term) {
					ranks = append(ranks, list.Rank{Index: i})
				}
			}
			return ranks
		}
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	if m.view == ViewList && !m.loading && m.err == nil {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.loading || m.err != nil {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) && m.list.FilterState() != list.Filtering {
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.view {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail, ViewReport:
		return m.handleViewportKey(msg)
	case ViewChartsMenu:
		return m.handleChartsMenuKey(msg)
	case ViewFamilyChart:
		return m.handleFamilyChartKey(msg)
	case ViewPriorityChart, ViewInheritanceChart:
		switch msg.String() {
		case "q", "esc", "g", "backspace":
			m.view = ViewChartsMenu
		}
		return m, nil
	case ViewExportMenu:
		return m.handleExportMenuKey(msg)
	case ViewExportConfirm:
		return m.handleExportConfirmKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(model.ControlItem); ok {
			m.selected = &item
			m.openViewport(ViewDetail, m.renderDetailContent())
		}
		return m, nil
	case key.Matches(msg, m.keys.Report):
		m.selected = nil
		m.openViewport(ViewReport, m.renderReportContent())
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.sortMode = (m.sortMode + 1) % 3
		m.refreshItems()
		m.statusMsg = fmt.Sprintf("Sorted by: %s", m.sortMode)
		return m, nil
	case key.Matches(msg, m.keys.Inherited):
		m.toggleFilter(FilterInherited, "Showing inherited controls only")
		return m, nil
	case key.Matches(msg, m.keys.Priority):
		m.toggleFilter(FilterP1, "Showing P1 controls only")
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.list.SelectedItem().(model.ControlItem); ok {
			copyToClipboard(item.Control.ID)
			m.statusMsg = fmt.Sprintf("Copied: %s", item.Control.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Charts):
		m.selectedChartIndex = 0
		m.view = ViewChartsMenu
		return m, nil
	case key.Matches(msg, m.keys.Export):
		m.selectedExportIndex = 0
		m.view = ViewExportMenu
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.list.Select(0)
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		name := CycleTheme()
		m.list.SetDelegate(NewControlDelegate())
		m.list.Styles.Title = TitleStyle
		m.statusMsg = fmt.Sprintf("Theme: %s", name)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleViewportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.view = ViewList
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.Copy) && m.selected != nil:
		copyToClipboard(m.selected.Control.ID)
		m.statusMsg = fmt.Sprintf("Copied: %s", m.selected.Control.ID)
		return m, nil
	}
	if m.viewportReady {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleChartsMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "g", "backspace":
		m.view = ViewList
	case "j", "down":
		m.selectedChartIndex = (m.selectedChartIndex + 1) % len(m.chartOptions)
	case "k", "up":
		m.selectedChartIndex = (m.selectedChartIndex - 1 + len(m.chartOptions)) % len(m.chartOptions)
	case "enter":
		selected := m.chartOptions[m.selectedChartIndex]
		if selected.View == ViewFamilyChart {
			m.families = GetFamilyStats(m.report.Recommendations, 0)
			m.selectedFamilyIndex = 0
		}
		m.view = selected.View
	}
	return m, nil
}

func (m Model) handleFamilyChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "backspace":
		m.view = ViewChartsMenu
	case "g":
		if m.filterMode == FilterFamily {
			m.filterMode = FilterNone
			m.selectedFamily = ""
			m.refreshItems()
		}
		m.view = ViewChartsMenu
	case "j", "down":
		if len(m.families) > 0 {
			m.selectedFamilyIndex = (m.selectedFamilyIndex + 1) % len(m.families)
		}
	case "k", "up":
		if len(m.families) > 0 {
			m.selectedFamilyIndex = (m.selectedFamilyIndex - 1 + len(m.families)) % len(m.families)
		}
	case "enter":
		if m.selectedFamilyIndex < len(m.families) {
			f := m.families[m.selectedFamilyIndex]
			m.selectedFamily = f.Code
			m.filterMode = FilterFamily
			m.refreshItems()
			m.statusMsg = fmt.Sprintf("Filtered: %s %s (%d controls)", f.Code, f.Name, f.Count)
			m.view = ViewList
		}
	}
	return m, nil
}

func (m Model) handleExportMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "x", "backspace":
		m.view = ViewList
	case "j", "down":
		m.selectedExportIndex = (m.selectedExportIndex + 1) % len(m.exportOptions)
	case "k", "up":
		m.selectedExportIndex = (m.selectedExportIndex - 1 + len(m.exportOptions)) % len(m.exportOptions)
	case "enter":
		opt := m.exportOptions[m.selectedExportIndex]
		recs := m.report.Recommendations
		if opt.Scope == ExportCurrentView {
			recs = m.visibleRecommendations()
		}
		m.pendingExport = &PendingExport{Option: opt, Recs: recs}
		m.view = ViewExportConfirm
	}
	return m, nil
}

func (m Model) handleExportConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if p := m.pendingExport; p != nil {
			result := Export(m.report, p.Recs, p.Option.Format, m.outputDir, m.now())
			if result.Err != nil {
				m.statusMsg = fmt.Sprintf("Export failed: %v", result.Err)
			} else {
				m.statusMsg = fmt.Sprintf("Exported %d controls to %s", result.Count, result.FilePath)
			}
		}
		m.pendingExport = nil
		m.view = ViewList
	case "n", "esc", "q", "backspace":
		m.pendingExport = nil
		m.view = ViewExportMenu
	}
	return m, nil
}

func (m *Model) openViewport(view ViewState, content string) {
	m.view = view
	m.viewport = viewport.New(max(m.width-4, 20), max(m.height-6, 5))
	m.viewport.SetContent(content)
	m.viewportReady = true
}

func (m *Model) toggleFilter(mode FilterMode, status string) {
	if m.filterMode == mode {
		m.filterMode = FilterNone
		m.selectedFamily = ""
		m.statusMsg = "Filter cleared"
	} else {
		m.filterMode = mode
		m.statusMsg = status
	}
	m.refreshItems()
}

func (m *Model) refreshItems() {
	m.applySortAndFilter()
	m.list.SetItems(m.items)
}

func (m *Model) calculateStats() {
	recs := m.report.Recommendations
	m.stats = Stats{Total: len(recs), Families: len(m.report.Families)}
	for _, r := range recs {
		if r.IsInherited {
			m.stats.Inherited++
		}
		if r.Control.Priority == grc.P1 {
			m.stats.P1++
		}
	}
}

func (m *Model) applySortAndFilter() {
	var filtered []grc.Recommendation
	for _, r := range m.report.Recommendations {
		switch m.filterMode {
		case FilterInherited:
			if !r.IsInherited {
				continue
			}
		case FilterP1:
			if r.Control.Priority != grc.P1 {
				continue
			}
		case FilterFamily:
			if m.selectedFamily != "" && r.Control.Family != m.selectedFamily {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	switch m.sortMode {
	case SortByControl:
		grc.SortRecommendations(filtered)
	case SortByRelevance:
		grc.SortByRelevance(filtered)
	case SortByPriority:
		grc.SortRecommendations(filtered)
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Control.Priority < filtered[j].Control.Priority
		})
	}

	m.items = make([]list.Item, len(filtered))
	for i, item := range model.NewControlItems(filtered) {
		m.items[i] = item
	}
}

// visibleRecommendations returns the controls in the current view, honouring
// the list's search filter
func (m Model) visibleRecommendations() []grc.Recommendation {
	var recs []grc.Recommendation
	for _, item := range m.list.VisibleItems() {
		if ci, ok := item.(model.ControlItem); ok {
			recs = append(recs, ci.Recommendation)
		}
	}
	return recs
}

func (m Model) listTitle() string {
	title := m.report.Determination.Profile.Name
	if m.project != "" {
		title = m.project + " | " + title
	}
	return title
}

// View renders the view
func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Building control baseline...\n", m.spinner.View())
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.err)
	}

	recs := m.report.Recommendations
	switch m.view {
	case ViewDetail, ViewReport:
		return m.renderViewportView()
	case ViewChartsMenu:
		return m.renderChartsMenu()
	case ViewFamilyChart:
		return RenderFamilyChartWithSelection(recs, m.width, m.height, m.selectedFamilyIndex)
	case ViewPriorityChart:
		return RenderPriorityChart(recs, m.width, m.height)
	case ViewInheritanceChart:
		return RenderInheritanceChart(recs, m.width, m.height)
	case ViewExportMenu:
		return m.renderExportMenu()
	case ViewExportConfirm:
		return m.renderExportConfirm()
	}
	return m.renderListView()
}

func menuLine(b *strings.Builder, name string, selected bool) {
	if selected {
		style := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)
		b.WriteString(style.Render("> " + name))
	} else {
		b.WriteString("  " + name)
	}
	b.WriteString("\n")
}

func (m Model) renderExportMenu() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(chartTitle("Export Report"))
	b.WriteString("\n\n")

	infoStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(infoStyle.Render(fmt.Sprintf("Current view: %d controls | Full baseline: %d controls",
		len(m.list.VisibleItems()), len(m.report.Recommendations))))
	b.WriteString("\n\n")

	for i, opt := range m.exportOptions {
		menuLine(&b, opt.Name, i == m.selectedExportIndex)
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render("j/k navigate • enter export • x/esc back"))
	return b.String()
}

func (m Model) renderExportConfirm() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(chartTitle("Confirm Export"))
	b.WriteString("\n\n")

	if p := m.pendingExport; p != nil {
		noun := "controls"
		if len(p.Recs) == 1 {
			noun = "control"
		}
		fmt.Fprintf(&b, "Export %d %s as %s to %s?\n\n", len(p.Recs), noun, p.Option.Format, m.outputDir)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(SubtleColor).Render("y/enter confirm • n/esc cancel"))
	return b.String()
}

func (m Model) renderChartsMenu() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(chartTitle("Charts"))
	b.WriteString("\n\n")

	descStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	for i, opt := range m.chartOptions {
		menuLine(&b, opt.Name, i == m.selectedChartIndex)
		b.WriteString(descStyle.Render("    " + opt.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(descStyle.Render("j/k navigate • enter select • g/esc back"))
	return b.String()
}

func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(RequirementBadge(m.report.Requirement.Required))
	b.WriteString(" ")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s | %s", m.report.Label, m.report.Requirement.Reason)))
	b.WriteString("\n")

	stats := fmt.Sprintf("%s %d controls | %s %d families | %s %d inherited | %s %d P1",
		StatHighlight.Render("■"), m.stats.Total,
		StatHighlight.Render("■"), m.stats.Families,
		lipgloss.NewStyle().Foreground(InheritedColor).Render("■"), m.stats.Inherited,
		lipgloss.NewStyle().Foreground(P1Color).Render("■"), m.stats.P1,
	)
	b.WriteString(StatsStyle.Render(stats))
	b.WriteString("\n")

	indicators := []string{fmt.Sprintf("Sort: %s", m.sortMode)}
	switch m.filterMode {
	case FilterInherited:
		indicators = append(indicators, lipgloss.NewStyle().Foreground(InheritedColor).Render("Filter: Inherited"))
	case FilterP1:
		indicators = append(indicators, lipgloss.NewStyle().Foreground(P1Color).Render("Filter: P1"))
	case FilterFamily:
		indicators = append(indicators, lipgloss.NewStyle().Foreground(PrimaryColor).Render("Filter: "+m.selectedFamily))
	}
	b.WriteString(SubtitleStyle.Render(strings.Join(indicators, " | ")))
	b.WriteString("\n")

	b.WriteString(m.list.View())

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render(m.statusMsg))
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.View(m.keys))
	} else {
		b.WriteString(SubtitleStyle.Render("/ filter • s sort • i inherited • p P1 • v report • g charts • x export • ? help • q quit"))
	}
	return b.String()
}

func (m Model) renderViewportView() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.view == ViewDetail && m.selected != nil {
		b.WriteString(ControlBadge.Render(m.selected.Control.ID))
		b.WriteString("  ")
		b.WriteString(PriorityBadge(m.selected.Control.Priority))
		if m.selected.IsInherited {
			b.WriteString("  ")
			b.WriteString(InheritedBadge.Render("INHERITED"))
		}
	} else {
		b.WriteString(TitleStyle.Render("Intake Report"))
		b.WriteString("  ")
		b.WriteString(RequirementBadge(m.report.Requirement.Required))
	}
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	footer := "↑/↓ scroll | q/esc back"
	if m.view == ViewDetail {
		footer = "↑/↓ scroll | c copy | q/esc back"
	}
	if m.statusMsg != "" {
		footer = m.statusMsg + " | " + footer
	}
	b.WriteString(SubtitleStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

// renderReportContent renders the full intake report through glamour,
// falling back to raw Markdown if the renderer fails
func (m Model) renderReportContent() string {
	md := report.Markdown(m.report)
	out, err := report.Terminal(md, max(m.width-6, 40))
	if err != nil {
		return md
	}
	return out
}

func (m Model) renderDetailContent() string {
	c := m.selected
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Foreground).Render(c.Control.Title))
	b.WriteString("\n\n")

	profiles := make([]string, len(c.Control.Profiles))
	for i, p := range c.Control.Profiles {
		profiles[i] = string(p)
	}
	fields := []struct {
		label string
		value string
	}{
		{"Family", fmt.Sprintf("%s: %s", c.Control.Family, c.FamilyName)},
		{"Priority", string(c.Control.Priority)},
		{"Profiles", strings.Join(profiles, ", ")},
		{"Inherited From", strings.Join(c.InheritedFrom, ", ")},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		b.WriteString(LabelStyle.Render(f.label + ":"))
		if f.label == "Priority" {
			b.WriteString(PriorityBadge(c.Control.Priority))
		} else {
			b.WriteString(ValueStyle.Render(f.value))
		}
		b.WriteString("\n")
	}

	b.WriteString(LabelStyle.Render("Relevance:"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d ", c.RelevanceScore)))
	b.WriteString(RelevanceBar(c.RelevanceScore, maxRelevance, 20))
	b.WriteString("\n")

	if len(c.MatchedTags) > 0 {
		b.WriteString(LabelStyle.Render("Matched Tags:"))
		b.WriteString(TagStyle.Render(strings.Join(c.MatchedTags, ", ")))
		b.WriteString("\n")
	}
	if len(c.Control.Tags) > 0 {
		b.WriteString(LabelStyle.Render("Tags:"))
		b.WriteString(SubtitleStyle.Render(strings.Join(c.Control.Tags, ", ")))
		b.WriteString("\n")
	}

	section := lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	b.WriteString("\n")
	b.WriteString(section.Render("Description"))
	b.WriteString("\n")
	b.WriteString(DescriptionStyle.Render(c.Control.Description))
	b.WriteString("\n")

	if c.Control.EvidenceGuidance != "" {
		b.WriteString("\n")
		b.WriteString(section.Render("Evidence Guidance"))
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render(c.Control.EvidenceGuidance))
		b.WriteString("\n")
	}

	return b.String()
}

func copyToClipboard(text string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		cmd = exec.Command("xclip", "-selection", "clipboard")
	case "windows":
		cmd = exec.Command("clip")
	default:
		return
	}
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}
