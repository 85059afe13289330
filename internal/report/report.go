// Package report renders intake results and assessment status as Markdown,
// JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// Format is an output encoding for a report
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatMarkdown, "md", "":
		return FormatMarkdown, nil
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (supported: markdown, json, csv)", s)
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	}
	return ".md"
}

// Summary counts the recommended baseline
type Summary struct {
	Total     int                  `json:"total"`
	Inherited int                  `json:"inherited"`
	Families  int                  `json:"families"`
	Priority  map[grc.Priority]int `json:"priority"`
}

// Report is the full intake result for one project
type Report struct {
	ProjectName     string               `json:"project_name"`
	GeneratedAt     time.Time            `json:"generated_at"`
	CatalogVersion  string               `json:"catalog_version"`
	Categorization  grc.Categorization   `json:"categorization"`
	Label           string               `json:"label"`
	FullLabel       string               `json:"full_label"`
	Requirement     grc.Requirement      `json:"requirement"`
	Determination   grc.Determination    `json:"determination"`
	ContextTags     []string             `json:"context_tags"`
	Families        []grc.FamilyGroup    `json:"families"`
	Summary         Summary              `json:"summary"`
	WebGuidance     *grc.WebGuidance     `json:"web_guidance,omitempty"`
	Technologies    []grc.Technology     `json:"technologies"`
	Unknown         []string             `json:"unknown_technologies,omitempty"`
	Recommendations []grc.Recommendation `json:"-"`
}

// Build runs the gate, the determiner and the recommender for a project.
// Projects that do not need a formal SA&A get the web guidance checklist and
// the minimal web-security controls.
func Build(cat *grc.Catalog, project string, c grc.Categorization, now time.Time) Report {
	c = c.Normalized()
	r := Report{
		ProjectName:    project,
		GeneratedAt:    now,
		CatalogVersion: cat.Version(),
		Categorization: c,
		Label:          c.Label(),
		FullLabel:      c.FullLabel(),
		Requirement:    grc.RequiresFormalAssessment(c),
		Determination:  cat.DetermineProfile(c),
		ContextTags:    grc.ContextTags(c),
		Technologies:   []grc.Technology{},
	}

	known := make(map[string]grc.Technology)
	for _, t := range cat.Technologies() {
		known[t.Key] = t
	}
	for _, key := range c.Technologies {
		if t, ok := known[key]; ok {
			r.Technologies = append(r.Technologies, t)
		} else {
			r.Unknown = append(r.Unknown, key)
		}
	}

	profile := r.Determination.Profile.ID
	if !r.Requirement.Required {
		profile = grc.ProfileNone
		g := cat.WebGuidance()
		r.WebGuidance = &g
	}
	return r.WithControls(cat.RecommendControls(grc.RecommendationRequest{Profile: profile, Categorization: c}))
}

// WithControls returns a copy of the report restricted to recs, with the
// family grouping and summary recomputed
func (r Report) WithControls(recs []grc.Recommendation) Report {
	r.Recommendations = recs
	r.Families = grc.GroupByFamily(recs)
	r.Summary = Summary{Total: len(recs), Families: len(r.Families), Priority: map[grc.Priority]int{}}
	for _, rec := range recs {
		if rec.IsInherited {
			r.Summary.Inherited++
		}
		r.Summary.Priority[rec.Control.Priority]++
	}
	return r
}

// Write renders the report in the given format
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, r)
	case FormatCSV:
		return CSV(w, r)
	default:
		_, err := io.WriteString(w, Markdown(r))
		return err
	}
}

// JSON writes the report as indented JSON
func JSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// CSV writes one row per recommended control
func CSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Family", "Family Name", "Control ID", "Title", "Priority", "Relevance",
		"Inherited From", "Matched Tags", "Evidence Guidance",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range r.Families {
		for _, rec := range g.Controls {
			row := []string{
				g.Family,
				g.FamilyName,
				rec.Control.ID,
				rec.Control.Title,
				string(rec.Control.Priority),
				fmt.Sprintf("%d", rec.RelevanceScore),
				strings.Join(rec.InheritedFrom, "; "),
				strings.Join(rec.MatchedTags, "; "),
				rec.Control.EvidenceGuidance,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Terminal renders Markdown for the terminal with glamour
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
