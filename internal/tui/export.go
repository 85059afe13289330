package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/report"
)

// ExportScope represents what data to export
type ExportScope int

const (
	ExportCurrentView ExportScope = iota
	ExportFullBaseline
)

func (s ExportScope) String() string {
	switch s {
	case ExportCurrentView:
		return "Current View"
	case ExportFullBaseline:
		return "Full Baseline"
	}
	return ""
}

// ExportOption represents a menu option
type ExportOption struct {
	Name   string
	Format report.Format
	Scope  ExportScope
}

// DefaultExportOptions lists every format in both scopes
func DefaultExportOptions() []ExportOption {
	formats := []struct {
		name   string
		format report.Format
	}{
		{"JSON", report.FormatJSON},
		{"CSV", report.FormatCSV},
		{"Markdown", report.FormatMarkdown},
	}
	var opts []ExportOption
	for _, f := range formats {
		for _, scope := range []ExportScope{ExportCurrentView, ExportFullBaseline} {
			opts = append(opts, ExportOption{
				Name:   fmt.Sprintf("%s (%s)", f.name, scope),
				Format: f.format,
				Scope:  scope,
			})
		}
	}
	return opts
}

// ExportResult contains the result of an export operation
type ExportResult struct {
	FilePath string
	Count    int
	Err      error
}

// Export writes the report, restricted to recs, into outputDir
func Export(r report.Report, recs []grc.Recommendation, format report.Format, outputDir string, now time.Time) ExportResult {
	r = r.WithControls(recs)
	name := fmt.Sprintf("saa_report_%s_%s%s", slug(r.ProjectName), now.Format("2006-01-02_150405"), format.Extension())
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return ExportResult{Err: fmt.Errorf("create export file: %w", err)}
	}
	if err := report.Write(file, r, format); err != nil {
		file.Close()
		return ExportResult{Err: fmt.Errorf("write %s export: %w", format, err)}
	}
	if err := file.Close(); err != nil {
		return ExportResult{Err: err}
	}
	return ExportResult{FilePath: path, Count: len(recs)}
}

// slug turns a project name into a file-name fragment
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "project"
	}
	return s
}
