package tui

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/report"
)

var exportTime = time.Date(2025, 4, 2, 14, 30, 5, 0, time.UTC)

func testReport(t *testing.T) report.Report {
	t.Helper()
	cat, err := grc.Default()
	if err != nil {
		t.Fatalf("grc.Default() error = %v", err)
	}
	c := grc.Categorization{
		Confidentiality: grc.ProtectedB,
		Integrity:       grc.Medium,
		Availability:    grc.Medium,
		Technologies:    []string{"entra-id"},
	}
	return report.Build(cat, "Benefits Portal", c, exportTime)
}

func TestExportScopeString(t *testing.T) {
	tests := []struct {
		scope    ExportScope
		expected string
	}{
		{ExportCurrentView, "Current View"},
		{ExportFullBaseline, "Full Baseline"},
		{ExportScope(99), ""},
	}

	for _, tt := range tests {
		if got := tt.scope.String(); got != tt.expected {
			t.Errorf("ExportScope(%d).String() = %q, want %q", tt.scope, got, tt.expected)
		}
	}
}

func TestDefaultExportOptions(t *testing.T) {
	opts := DefaultExportOptions()
	if len(opts) != 6 {
		t.Fatalf("got %d options, want 6", len(opts))
	}
	if opts[0].Name != "JSON (Current View)" || opts[0].Format != report.FormatJSON || opts[0].Scope != ExportCurrentView {
		t.Errorf("first option = %+v", opts[0])
	}
	if opts[5].Name != "Markdown (Full Baseline)" || opts[5].Scope != ExportFullBaseline {
		t.Errorf("last option = %+v", opts[5])
	}
}

func TestExport(t *testing.T) {
	r := testReport(t)

	tests := []struct {
		name   string
		format report.Format
		ext    string
	}{
		{"JSON export", report.FormatJSON, ".json"},
		{"CSV export", report.FormatCSV, ".csv"},
		{"Markdown export", report.FormatMarkdown, ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Export(r, r.Recommendations, tt.format, t.TempDir(), exportTime)
			if result.Err != nil {
				t.Fatalf("Export() error = %v", result.Err)
			}
			if result.Count != len(r.Recommendations) {
				t.Errorf("Count = %d, want %d", result.Count, len(r.Recommendations))
			}
			want := "saa_report_benefits-portal_2025-04-02_143005" + tt.ext
			if got := filepath.Base(result.FilePath); got != want {
				t.Errorf("file name = %s, want %s", got, want)
			}
			if _, err := os.Stat(result.FilePath); err != nil {
				t.Errorf("exported file missing: %v", err)
			}
		})
	}
}

func TestExportCurrentViewSubset(t *testing.T) {
	r := testReport(t)
	inherited := grc.FilterInherited(r.Recommendations)

	result := Export(r, inherited, report.FormatCSV, t.TempDir(), exportTime)
	if result.Err != nil {
		t.Fatalf("Export() error = %v", result.Err)
	}

	f, err := os.Open(result.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != len(inherited)+1 {
		t.Errorf("rows = %d, want %d", len(rows), len(inherited)+1)
	}
	for _, row := range rows[1:] {
		if row[6] == "" {
			t.Errorf("%s exported without inheritance", row[2])
		}
	}
}

func TestExportJSONContent(t *testing.T) {
	r := testReport(t)
	result := Export(r, r.Recommendations, report.FormatJSON, t.TempDir(), exportTime)
	if result.Err != nil {
		t.Fatalf("Export() error = %v", result.Err)
	}

	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		ProjectName string `json:"project_name"`
		Summary     struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.ProjectName != "Benefits Portal" || decoded.Summary.Total != len(r.Recommendations) {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestExportMarkdownContent(t *testing.T) {
	r := testReport(t)
	result := Export(r, r.Recommendations, report.FormatMarkdown, t.TempDir(), exportTime)
	if result.Err != nil {
		t.Fatalf("Export() error = %v", result.Err)
	}
	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# SA&A Intake Report: Benefits Portal") {
		t.Error("markdown export missing title")
	}
}

func TestExportInvalidDir(t *testing.T) {
	r := testReport(t)
	result := Export(r, r.Recommendations, report.FormatJSON, "/nonexistent/path/that/does/not/exist", exportTime)
	if result.Err == nil {
		t.Error("Export() should return error for invalid directory")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Benefits Portal", "benefits-portal"},
		{"  GC Notify (v2)  ", "gc-notify-v2"},
		{"", "project"},
		{"!!!", "project"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
