package report

import (
	"fmt"
	"strings"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// Markdown renders the intake report
func Markdown(r Report) string {
	var b strings.Builder

	title := "SA&A Intake Report"
	if r.ProjectName != "" {
		title += ": " + r.ProjectName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Generated:** %s  \n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Categorization:** %s (%s)  \n", r.FullLabel, r.Label)
	if r.CatalogVersion != "" {
		fmt.Fprintf(&b, "**Catalogue:** %s  \n", r.CatalogVersion)
	}
	b.WriteString("\n")

	b.WriteString("## SA&A Requirement\n\n")
	if r.Requirement.Required {
		fmt.Fprintf(&b, "A formal Security Assessment and Authorization is **required** (%s).\n\n", r.Requirement.Reason)
	} else {
		fmt.Fprintf(&b, "A formal SA&A is **not required** (%s). Follow the web guidance checklist below.\n\n", r.Requirement.Reason)
	}

	b.WriteString("## Security Profile\n\n")
	p := r.Determination.Profile
	fmt.Fprintf(&b, "**%s** (`%s`)\n\n", p.Name, p.ID)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	fmt.Fprintf(&b, "- **Reason:** %s\n", r.Determination.Reason)
	if p.BaselineSource != "" {
		fmt.Fprintf(&b, "- **Baseline:** %s\n", p.BaselineSource)
	}
	b.WriteString("\n")
	if len(r.Determination.TailoringNotes) > 0 {
		b.WriteString("### Tailoring Notes\n\n")
		for _, note := range r.Determination.TailoringNotes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
		b.WriteString("\n")
	}

	if len(r.Technologies) > 0 || len(r.Unknown) > 0 {
		b.WriteString("## Declared Technologies\n\n")
		for _, t := range r.Technologies {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Name, t.Vendor)
		}
		for _, key := range r.Unknown {
			fmt.Fprintf(&b, "- `%s` (not in catalogue, ignored)\n", key)
		}
		b.WriteString("\n")
	}

	if r.WebGuidance != nil {
		writeGuidance(&b, *r.WebGuidance)
	}

	heading := "Recommended Controls"
	if !r.Requirement.Required {
		heading = "Minimal Web Security Controls"
	}
	fmt.Fprintf(&b, "## %s\n\n", heading)
	fmt.Fprintf(&b, "%d controls across %d families, %d partially inherited from declared technologies.",
		r.Summary.Total, r.Summary.Families, r.Summary.Inherited)
	fmt.Fprintf(&b, " P1: %d, P2: %d, P3: %d.\n\n",
		r.Summary.Priority[grc.P1], r.Summary.Priority[grc.P2], r.Summary.Priority[grc.P3])
	if len(r.ContextTags) > 0 {
		fmt.Fprintf(&b, "Context tags: %s\n\n", strings.Join(r.ContextTags, ", "))
	}

	for _, g := range r.Families {
		fmt.Fprintf(&b, "### %s: %s (%d)\n\n", g.Family, g.FamilyName, len(g.Controls))
		b.WriteString("| Control | Title | Priority | Inherited From |\n")
		b.WriteString("|---------|-------|----------|----------------|\n")
		for _, rec := range g.Controls {
			inherited := strings.Join(rec.InheritedFrom, ", ")
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				rec.Control.ID, escapeCell(rec.Control.Title), rec.Control.Priority, escapeCell(inherited))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n*Generated by saa-tui*\n")
	return b.String()
}

// GuidanceMarkdown renders the web guidance checklist on its own
func GuidanceMarkdown(g grc.WebGuidance) string {
	var b strings.Builder
	writeGuidance(&b, g)
	if g.Summary.Footer != "" {
		fmt.Fprintf(&b, "---\n\n*%s*\n", g.Summary.Footer)
	}
	return b.String()
}

func writeGuidance(b *strings.Builder, g grc.WebGuidance) {
	fmt.Fprintf(b, "## %s\n\n", g.Summary.Title)
	if g.Summary.Description != "" {
		fmt.Fprintf(b, "%s\n\n", g.Summary.Description)
	}
	fmt.Fprintf(b, "%d items, %d required.\n\n", g.TotalCount(), g.RequiredCount())
	for _, cat := range g.Categories {
		fmt.Fprintf(b, "### %s\n\n", cat.Title)
		if cat.Description != "" {
			fmt.Fprintf(b, "%s\n\n", cat.Description)
		}
		for _, item := range cat.Items {
			marker := "Recommended"
			if item.Required {
				marker = "Required"
			}
			fmt.Fprintf(b, "- [ ] %s *(%s)*\n", item.Text, marker)
		}
		b.WriteString("\n")
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
