// Package cmd holds the runners behind the saa-tui subcommands
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/intake"
	"github.com/ethanolivertroy/saa-tui/internal/report"
	"github.com/ethanolivertroy/saa-tui/internal/store"
)

// ErrUsage marks errors caused by bad arguments
var ErrUsage = errors.New("usage error")

const defaultWidth = 100

// App runs the non-interactive commands against one catalogue and database
type App struct {
	Catalog *grc.Catalog
	DBPath  string
	Out     io.Writer
	Logger  *slog.Logger
	Now     func() time.Time
	Width   int  // wrap width for terminal Markdown
	Raw     bool // print Markdown source instead of rendering it
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// printMarkdown writes md rendered with glamour, or verbatim when Raw is set
func (a *App) printMarkdown(md string) error {
	if a.Raw {
		_, err := io.WriteString(a.Out, md)
		return err
	}
	width := a.Width
	if width <= 0 {
		width = defaultWidth
	}
	out, err := report.Terminal(md, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.Out, out)
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		Headers(headers...)
}

func (a *App) loadIntake(path string) (*intake.Intake, error) {
	in, err := intake.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger().Debug("intake loaded", "path", path, "project", in.ProjectName)
	return in, nil
}

// Assess prints the intake report for an intake file and optionally saves
// the baseline as a new assessment
func (a *App) Assess(ctx context.Context, path string, format report.Format, save bool) error {
	in, err := a.loadIntake(path)
	if err != nil {
		return err
	}
	r := report.Build(a.Catalog, in.ProjectName, in.Categorization(), a.now())
	a.logger().Info("intake assessed",
		"project", r.ProjectName,
		"categorization", r.Label,
		"required", r.Requirement.Required,
		"profile", r.Determination.Profile.ID,
		"controls", r.Summary.Total,
	)

	if format == report.FormatMarkdown {
		err = a.printMarkdown(report.Markdown(r))
	} else {
		err = report.Write(a.Out, r, format)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !save {
		return nil
	}
	return a.withStore(ctx, func(s *store.Store) error {
		asmt := newAssessment(r, a.now())
		if err := s.Save(ctx, asmt); err != nil {
			return err
		}
		a.logger().Info("assessment saved", "id", asmt.ID, "controls", len(asmt.Controls))
		return nil
	})
}

// Profile prints the categorization and profile determination only
func (a *App) Profile(path string) error {
	in, err := a.loadIntake(path)
	if err != nil {
		return err
	}
	c := in.Categorization()
	req := grc.RequiresFormalAssessment(c)
	d := a.Catalog.DetermineProfile(c)

	var b strings.Builder
	fmt.Fprintf(&b, "Project:        %s\n", in.ProjectName)
	fmt.Fprintf(&b, "Categorization: %s (%s)\n", c.Label(), c.FullLabel())
	fmt.Fprintf(&b, "SA&A required:  %t (%s)\n", req.Required, req.Reason)
	fmt.Fprintf(&b, "Profile:        %s (%s)\n", d.Profile.ID, d.Profile.Name)
	fmt.Fprintf(&b, "Reason:         %s\n", d.Reason)
	for _, note := range d.TailoringNotes {
		fmt.Fprintf(&b, "  - %s\n", note)
	}
	_, err = io.WriteString(a.Out, b.String())
	return err
}

// ListControls lists catalogue controls filtered by family and profile
func (a *App) ListControls(family, profile string) error {
	id := grc.ProfileID(strings.ToUpper(strings.TrimSpace(profile)))
	if id != "" {
		if _, ok := a.Catalog.Profile(id); !ok {
			return fmt.Errorf("%w: unknown profile %q", ErrUsage, profile)
		}
	}
	controls := a.Catalog.Controls(strings.ToUpper(strings.TrimSpace(family)), id)
	if len(controls) == 0 {
		_, err := fmt.Fprintln(a.Out, "No controls match.")
		return err
	}

	t := newTable("ID", "Title", "Priority", "Profiles", "Inherited From")
	for _, c := range controls {
		profiles := make([]string, len(c.Profiles))
		for i, p := range c.Profiles {
			profiles[i] = string(p)
		}
		t.Row(c.ID, c.Title, string(c.Priority), strings.Join(profiles, ", "), strings.Join(c.Inheritance, ", "))
	}
	_, err := fmt.Fprintf(a.Out, "%s\n%d controls\n", t.Render(), len(controls))
	return err
}

// ListTechnologies lists the technologies a project can declare
func (a *App) ListTechnologies() error {
	t := newTable("Key", "Name", "Vendor", "Category")
	for _, tech := range a.Catalog.Technologies() {
		t.Row(tech.Key, tech.Name, tech.Vendor, tech.Category)
	}
	_, err := fmt.Fprintln(a.Out, t.Render())
	return err
}

// Guidance prints the web guidance checklist
func (a *App) Guidance() error {
	return a.printMarkdown(report.GuidanceMarkdown(a.Catalog.WebGuidance()))
}
