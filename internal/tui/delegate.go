package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/model"
)

// maxRelevance scales the relevance bar in the list
const maxRelevance = 12

// ControlDelegate renders recommended controls in the baseline list
type ControlDelegate struct {
	ShowDescription bool
	Styles          ControlDelegateStyles
}

// ControlDelegateStyles contains the styles for the delegate
type ControlDelegateStyles struct {
	NormalTitle   lipgloss.Style
	NormalDesc    lipgloss.Style
	SelectedTitle lipgloss.Style
	SelectedDesc  lipgloss.Style
	DimmedTitle   lipgloss.Style
	DimmedDesc    lipgloss.Style
	IDStyle       lipgloss.Style
	InheritedIcon lipgloss.Style
}

// NewControlDelegate creates a new delegate with styles from the current theme
func NewControlDelegate() ControlDelegate {
	return ControlDelegate{
		ShowDescription: true,
		Styles: ControlDelegateStyles{
			NormalTitle:   lipgloss.NewStyle().Foreground(CurrentTheme.Foreground),
			NormalDesc:    lipgloss.NewStyle().Foreground(SubtleColor),
			SelectedTitle: lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true),
			SelectedDesc:  lipgloss.NewStyle().Foreground(CurrentTheme.Foreground),
			DimmedTitle:   lipgloss.NewStyle().Foreground(SubtleColor),
			DimmedDesc:    lipgloss.NewStyle().Foreground(SubtleColor),
			IDStyle:       lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true),
			InheritedIcon: lipgloss.NewStyle().Foreground(InheritedColor),
		},
	}
}

// Height returns the height of each item
func (d ControlDelegate) Height() int {
	if d.ShowDescription {
		return 2
	}
	return 1
}

// Spacing returns the spacing between items
func (d ControlDelegate) Spacing() int {
	return 1
}

// Update handles item updates
func (d ControlDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single item
func (d ControlDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ctrl, ok := item.(model.ControlItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()
	isFiltering := m.FilterState() == list.Filtering

	var titleStyle, descStyle, idStyle lipgloss.Style
	switch {
	case isFiltering:
		titleStyle, descStyle, idStyle = d.Styles.DimmedTitle, d.Styles.DimmedDesc, d.Styles.DimmedTitle
	case isSelected:
		titleStyle, descStyle, idStyle = d.Styles.SelectedTitle, d.Styles.SelectedDesc, d.Styles.IDStyle
	default:
		titleStyle, descStyle, idStyle = d.Styles.NormalTitle, d.Styles.NormalDesc, d.Styles.IDStyle
	}

	line := idStyle.Render(fmt.Sprintf("[%s]", ctrl.Control.ID)) +
		titleStyle.Render(" "+ctrl.Title()) +
		" " + PriorityBadge(ctrl.Control.Priority)
	if ctrl.IsInherited {
		line += d.Styles.InheritedIcon.Render(" [I]")
	}

	itemStyle := NormalItemStyle
	if isSelected {
		itemStyle = SelectedItemStyle
	}
	fmt.Fprint(w, itemStyle.Render(line))

	if d.ShowDescription {
		desc := fmt.Sprintf("%s %s", ctrl.Description(), RelevanceBar(ctrl.RelevanceScore, maxRelevance, 8))
		fmt.Fprint(w, "\n"+itemStyle.Render(descStyle.Render(desc)))
	}
}
