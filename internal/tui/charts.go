package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// FamilyStats holds per-family control counts
type FamilyStats struct {
	Code      string
	Name      string
	Count     int
	Inherited int
}

// PriorityStats holds the baseline's priority breakdown
type PriorityStats struct {
	P1 int
	P2 int
	P3 int
}

// Total returns the number of controls counted
func (p PriorityStats) Total() int {
	return p.P1 + p.P2 + p.P3
}

// InheritanceStats splits the baseline into inherited and project-implemented controls
type InheritanceStats struct {
	Inherited int
	Direct    int
	Total     int
}

// TechnologyStats counts the controls a declared technology helps satisfy
type TechnologyStats struct {
	Name  string
	Count int
}

var rankColors = []lipgloss.Color{
	lipgloss.Color("#7D56F4"),
	lipgloss.Color("#9B7BF7"),
	lipgloss.Color("#00BFFF"),
	lipgloss.Color("#04B575"),
	lipgloss.Color("#FFCC00"),
	lipgloss.Color("#FF8C00"),
	lipgloss.Color("#626262"),
}

// GetFamilyStats returns the n largest families by control count, ties broken by code
func GetFamilyStats(recs []grc.Recommendation, n int) []FamilyStats {
	index := make(map[string]int)
	var stats []FamilyStats
	for _, r := range recs {
		i, ok := index[r.Control.Family]
		if !ok {
			i = len(stats)
			index[r.Control.Family] = i
			stats = append(stats, FamilyStats{Code: r.Control.Family, Name: r.FamilyName})
		}
		stats[i].Count++
		if r.IsInherited {
			stats[i].Inherited++
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Code < stats[j].Code
	})

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// GetPriorityStats returns the priority breakdown
func GetPriorityStats(recs []grc.Recommendation) PriorityStats {
	var stats PriorityStats
	for _, r := range recs {
		switch r.Control.Priority {
		case grc.P1:
			stats.P1++
		case grc.P2:
			stats.P2++
		case grc.P3:
			stats.P3++
		}
	}
	return stats
}

// GetInheritanceStats returns the inherited / direct split
func GetInheritanceStats(recs []grc.Recommendation) InheritanceStats {
	stats := InheritanceStats{Total: len(recs)}
	for _, r := range recs {
		if r.IsInherited {
			stats.Inherited++
		} else {
			stats.Direct++
		}
	}
	return stats
}

// GetTechnologyStats returns the n technologies that satisfy the most controls
func GetTechnologyStats(recs []grc.Recommendation, n int) []TechnologyStats {
	counts := make(map[string]int)
	for _, r := range recs {
		for _, name := range r.InheritedFrom {
			counts[name]++
		}
	}

	stats := make([]TechnologyStats, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, TechnologyStats{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

func chartTitle(text string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(PrimaryColor).
		Padding(0, 1).
		Render(text)
}

func chartSize(width, height, reserved int) (int, int) {
	w, h := width-4, height-reserved
	if w < 10 {
		w = 10
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

// RenderFamilyChart renders a bar chart of controls per family
func RenderFamilyChart(recs []grc.Recommendation, width, height int) string {
	return RenderFamilyChartWithSelection(recs, width, height, -1)
}

// RenderFamilyChartWithSelection renders the family chart with an optional selection highlight
func RenderFamilyChartWithSelection(recs []grc.Recommendation, width, height int, selectedIndex int) string {
	families := GetFamilyStats(recs, 0)
	if len(families) == 0 {
		return "No controls in baseline"
	}

	var b strings.Builder
	b.WriteString(chartTitle("Controls by Family"))
	b.WriteString("\n\n")

	w, h := chartSize(width, height, len(families)+8)
	bc := barchart.New(w, h,
		barchart.WithNoAutoBarWidth(),
		barchart.WithBarWidth(3),
		barchart.WithBarGap(1),
	)

	var items []barchart.BarData
	for i, f := range families {
		color := rankColors[i%len(rankColors)]
		items = append(items, barchart.BarData{
			Label: f.Code,
			Values: []barchart.BarValue{{
				Name:  f.Name,
				Value: float64(f.Count),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	bc.PushAll(items)
	bc.Draw()

	b.WriteString(bc.View())
	b.WriteString("\n\n")

	for i, f := range families {
		marker := lipgloss.NewStyle().Foreground(rankColors[i%len(rankColors)]).Render("█")
		line := fmt.Sprintf("%s: %s %d (%d inherited)", f.Code, truncateString(f.Name, 40), f.Count, f.Inherited)
		if i == selectedIndex {
			selectedStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(PrimaryColor)
			fmt.Fprintf(&b, "%s %s\n", marker, selectedStyle.Render(" "+line+" "))
		} else {
			fmt.Fprintf(&b, "%s %s\n", marker, line)
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(SubtleColor).Render("j/k navigate • enter filter by family • g/esc back"))

	return b.String()
}

// RenderPriorityChart renders the P1/P2/P3 breakdown
func RenderPriorityChart(recs []grc.Recommendation, width, height int) string {
	stats := GetPriorityStats(recs)
	total := stats.Total()
	if total == 0 {
		return "No controls in baseline"
	}

	var b strings.Builder
	b.WriteString(chartTitle("Controls by Priority"))
	b.WriteString("\n\n")

	w, h := chartSize(width, height, 12)
	bc := barchart.New(w, h,
		barchart.WithNoAutoBarWidth(),
		barchart.WithBarWidth(8),
		barchart.WithBarGap(2),
	)

	rows := []struct {
		p     grc.Priority
		count int
	}{
		{grc.P1, stats.P1},
		{grc.P2, stats.P2},
		{grc.P3, stats.P3},
	}
	var items []barchart.BarData
	for _, r := range rows {
		items = append(items, barchart.BarData{
			Label: string(r.p),
			Values: []barchart.BarValue{{
				Name:  string(r.p),
				Value: float64(r.count),
				Style: lipgloss.NewStyle().Foreground(PriorityColor(r.p)),
			}},
		})
	}
	bc.PushAll(items)
	bc.Draw()

	b.WriteString(bc.View())
	b.WriteString("\n\n")

	for _, r := range rows {
		pct := float64(r.count) / float64(total) * 100
		style := lipgloss.NewStyle().Foreground(PriorityColor(r.p)).Bold(true)
		b.WriteString(style.Render(fmt.Sprintf("%s: %d (%.1f%%)", r.p, r.count, pct)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footerStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	b.WriteString(footerStyle.Render("P1 controls are implemented first"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("g/esc back to charts menu"))

	return b.String()
}

// RenderInheritanceChart renders the inherited / direct split and the technologies behind it
func RenderInheritanceChart(recs []grc.Recommendation, width, height int) string {
	stats := GetInheritanceStats(recs)
	if stats.Total == 0 {
		return "No controls in baseline"
	}
	techs := GetTechnologyStats(recs, 7)

	var b strings.Builder
	b.WriteString(chartTitle("Inherited Controls"))
	b.WriteString("\n\n")

	w, h := chartSize(width, height, len(techs)+12)
	bc := barchart.New(w, h,
		barchart.WithNoAutoBarWidth(),
		barchart.WithBarWidth(8),
		barchart.WithBarGap(2),
	)
	bc.PushAll([]barchart.BarData{
		{
			Label: "Inherited",
			Values: []barchart.BarValue{{
				Name:  "Inherited",
				Value: float64(stats.Inherited),
				Style: lipgloss.NewStyle().Foreground(InheritedColor),
			}},
		},
		{
			Label: "Direct",
			Values: []barchart.BarValue{{
				Name:  "Direct",
				Value: float64(stats.Direct),
				Style: lipgloss.NewStyle().Foreground(PrimaryColor),
			}},
		},
	})
	bc.Draw()

	b.WriteString(bc.View())
	b.WriteString("\n\n")

	inheritedPct := float64(stats.Inherited) / float64(stats.Total) * 100
	b.WriteString(lipgloss.NewStyle().Foreground(InheritedColor).Bold(true).
		Render(fmt.Sprintf("Inherited: %d (%.1f%%)", stats.Inherited, inheritedPct)))
	b.WriteString("  ")
	b.WriteString(lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true).
		Render(fmt.Sprintf("Direct: %d (%.1f%%)", stats.Direct, 100-inheritedPct)))
	b.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	if len(techs) == 0 {
		b.WriteString(footerStyle.Render("No declared technology satisfies a control in this baseline"))
		b.WriteString("\n")
	}
	for i, t := range techs {
		marker := lipgloss.NewStyle().Foreground(rankColors[i%len(rankColors)]).Render("█")
		fmt.Fprintf(&b, "%s %s: %d\n", marker, t.Name, t.Count)
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("g/esc back to charts menu"))

	return b.String()
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "."
}
