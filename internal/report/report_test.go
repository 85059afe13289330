package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

var generated = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func mustCatalog(t *testing.T) *grc.Catalog {
	t.Helper()
	cat, err := grc.Default()
	if err != nil {
		t.Fatalf("grc.Default() error = %v", err)
	}
	return cat
}

func pbmmReport(t *testing.T) Report {
	t.Helper()
	c := grc.Categorization{
		Confidentiality: grc.ProtectedB,
		Integrity:       grc.Medium,
		Availability:    grc.Medium,
		Technologies:    []string{"entra-id", "quantum-firewall"},
		Description:     "public portal",
	}
	return Build(mustCatalog(t), "Benefits Portal", c, generated)
}

func TestBuildFormal(t *testing.T) {
	r := pbmmReport(t)

	if !r.Requirement.Required {
		t.Fatal("Protected B should require a formal SA&A")
	}
	if r.Determination.Profile.ID != grc.ProfilePBMM {
		t.Errorf("profile = %s, want PBMM", r.Determination.Profile.ID)
	}
	if r.WebGuidance != nil {
		t.Error("formal assessments should not carry the web guidance checklist")
	}
	if r.Label != "PB/M/M" {
		t.Errorf("Label = %q, want PB/M/M", r.Label)
	}
	if len(r.Technologies) != 1 || r.Technologies[0].Key != "entra-id" {
		t.Errorf("Technologies = %+v", r.Technologies)
	}
	if len(r.Unknown) != 1 || r.Unknown[0] != "quantum-firewall" {
		t.Errorf("Unknown = %v", r.Unknown)
	}

	total := 0
	for _, g := range r.Families {
		total += len(g.Controls)
	}
	if total != r.Summary.Total || total != len(r.Recommendations) {
		t.Errorf("grouped %d controls, summary %d, recommendations %d", total, r.Summary.Total, len(r.Recommendations))
	}
	if r.Summary.Families != len(r.Families) {
		t.Errorf("Summary.Families = %d, want %d", r.Summary.Families, len(r.Families))
	}
	byPriority := r.Summary.Priority[grc.P1] + r.Summary.Priority[grc.P2] + r.Summary.Priority[grc.P3]
	if byPriority != r.Summary.Total {
		t.Errorf("priority counts sum to %d, want %d", byPriority, r.Summary.Total)
	}
	if r.Summary.Inherited == 0 {
		t.Error("entra-id should make some controls inherited")
	}
}

func TestBuildWebGuidance(t *testing.T) {
	cat := mustCatalog(t)
	c := grc.Categorization{Confidentiality: grc.Unclassified, Integrity: grc.Low, Availability: grc.Low, Description: "static informational page, no forms"}
	r := Build(cat, "Landing Page", c, generated)

	if r.Requirement.Required {
		t.Fatal("static unclassified site should not need an SA&A")
	}
	if r.WebGuidance == nil {
		t.Fatal("WebGuidance = nil, want checklist")
	}
	if r.Determination.Profile.ID != grc.ProfileNone {
		t.Errorf("profile = %s, want NONE", r.Determination.Profile.ID)
	}
	if got, want := grc.IDs(r.Recommendations), cat.WebBaseline(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("recommendations = %v, want web baseline %v", got, want)
	}

	md := Markdown(r)
	for _, want := range []string{"**not required**", "Minimal Web Security Controls", "- [ ] "} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q", want)
		}
	}
}

func TestBuildInvalidLevelIsFormal(t *testing.T) {
	cat := mustCatalog(t)
	c := grc.Categorization{Confidentiality: grc.Unclassified, Integrity: "moderate", Availability: grc.Low, Description: "static informational page"}
	r := Build(cat, "Landing Page", c, generated)

	if !r.Requirement.Required {
		t.Fatalf("Requirement = %+v, want required for an unrecognized integrity", r.Requirement)
	}
	if !strings.Contains(r.Requirement.Reason, `"moderate"`) {
		t.Errorf("Reason = %q, want the bad value named", r.Requirement.Reason)
	}
	if r.Determination.Profile.ID != grc.ProfilePBMM {
		t.Errorf("profile = %s, want PBMM", r.Determination.Profile.ID)
	}
	if r.WebGuidance != nil {
		t.Error("a PBMM report should not carry the web guidance checklist")
	}
	if len(r.Recommendations) <= len(cat.WebBaseline()) {
		t.Errorf("got %d controls, want the PBMM baseline rather than the web baseline", len(r.Recommendations))
	}
}

func TestMarkdown(t *testing.T) {
	r := pbmmReport(t)
	md := Markdown(r)

	wants := []string{
		"# SA&A Intake Report: Benefits Portal",
		"**Categorization:** Protected B / Medium Integrity / Medium Availability (PB/M/M)",
		"A formal Security Assessment and Authorization is **required** (Protected B)",
		"(`PBMM`)",
		"## Declared Technologies",
		"`quantum-firewall` (not in catalogue, ignored)",
		"### AC: ",
		"| AC-2 |",
		"Microsoft Entra ID (Azure AD)",
		"*Generated by saa-tui*",
	}
	for _, want := range wants {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q", want)
		}
	}
	if strings.Index(md, "### AC: ") > strings.Index(md, "### SC: ") {
		t.Error("families should appear in code order")
	}
}

func TestJSON(t *testing.T) {
	r := pbmmReport(t)
	var buf bytes.Buffer
	if err := JSON(&buf, r); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded struct {
		ProjectName   string `json:"project_name"`
		Determination struct {
			Profile struct {
				ID string `json:"id"`
			} `json:"profile"`
		} `json:"determination"`
		Families []struct {
			Family   string `json:"family"`
			Controls []struct {
				Control struct {
					ID string `json:"id"`
				} `json:"control"`
			} `json:"controls"`
		} `json:"families"`
		Recommendations any `json:"Recommendations"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.ProjectName != "Benefits Portal" || decoded.Determination.Profile.ID != "PBMM" {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Families) != len(r.Families) {
		t.Errorf("families = %d, want %d", len(decoded.Families), len(r.Families))
	}
	if decoded.Recommendations != nil {
		t.Error("flat recommendations should not be serialized")
	}
}

func TestCSV(t *testing.T) {
	r := pbmmReport(t)
	var buf bytes.Buffer
	if err := CSV(&buf, r); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != r.Summary.Total+1 {
		t.Fatalf("rows = %d, want %d", len(rows), r.Summary.Total+1)
	}
	if rows[0][2] != "Control ID" {
		t.Errorf("header = %v", rows[0])
	}
	found := false
	for _, row := range rows[1:] {
		if row[2] == "AC-2" {
			found = true
			if row[6] != "Microsoft Entra ID (Azure AD)" {
				t.Errorf("AC-2 inherited from = %q", row[6])
			}
		}
	}
	if !found {
		t.Error("AC-2 missing from CSV")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatCSV.Extension() != ".csv" || FormatMarkdown.Extension() != ".md" {
		t.Error("unexpected extensions")
	}
}

func TestWriteDispatch(t *testing.T) {
	r := pbmmReport(t)
	var md, js bytes.Buffer
	if err := Write(&md, r, FormatMarkdown); err != nil {
		t.Fatal(err)
	}
	if err := Write(&js, r, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md.String(), "# SA&A Intake Report") {
		t.Error("markdown output should start with the title")
	}
	if !strings.HasPrefix(js.String(), "{") {
		t.Error("json output should start with an object")
	}
}

func TestGuidanceMarkdown(t *testing.T) {
	g := mustCatalog(t).WebGuidance()
	md := GuidanceMarkdown(g)
	if !strings.Contains(md, g.Summary.Title) {
		t.Errorf("missing title %q", g.Summary.Title)
	}
	if got := strings.Count(md, "- [ ] "); got != g.TotalCount() {
		t.Errorf("checklist items = %d, want %d", got, g.TotalCount())
	}
	if got := strings.Count(md, "*(Required)*"); got != g.RequiredCount() {
		t.Errorf("required items = %d, want %d", got, g.RequiredCount())
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Heading\n\nSome **bold** text.", 60)
	if err != nil {
		t.Fatalf("Terminal() error = %v", err)
	}
	if !strings.Contains(out, "Heading") {
		t.Errorf("Terminal() output missing heading: %q", out)
	}
}

func newAssessment(t *testing.T) *assessment.Assessment {
	t.Helper()
	cat := mustCatalog(t)
	c := grc.Categorization{Confidentiality: grc.ProtectedB, Technologies: []string{"entra-id"}}
	return assessment.New("Grants Portal", c, cat.DetermineProfile(c), cat.RecommendControls(grc.RecommendationRequest{Categorization: c}), generated)
}

func TestAssessmentMarkdown(t *testing.T) {
	a := newAssessment(t)
	if err := a.RecordEvidence("AC-2", "Account lifecycle SOP", generated); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordAudit("AC-2", assessment.AuditPartiallyMet, "No quarterly review", generated); err != nil {
		t.Fatal(err)
	}
	if err := a.SetApplicable("AC-1", false, generated); err != nil {
		t.Fatal(err)
	}

	md := AssessmentMarkdown(a)
	wants := []string{
		"# Security Assessment Report: Grants Portal",
		"**Status:** draft",
		"**Profile:** PBMM",
		"## Progress by Family",
		"**AC-2** ",
		"[Partially Met]",
		"> Evidence: Account lifecycle SOP",
		"> Assessor: No quarterly review",
		"[N/A]",
		"*No evidence provided*",
	}
	for _, want := range wants {
		if !strings.Contains(md, want) {
			t.Errorf("AssessmentMarkdown() missing %q", want)
		}
	}
}

func TestAuthorizationMarkdown(t *testing.T) {
	a := newAssessment(t)
	if _, err := AuthorizationMarkdown(a); !errors.Is(err, ErrNoDecision) {
		t.Errorf("AuthorizationMarkdown() before completion error = %v, want ErrNoDecision", err)
	}

	// 1 partially met control keeps the score above the iATO threshold
	for i, rec := range a.Controls {
		result := assessment.AuditMet
		if i == 0 {
			result = assessment.AuditPartiallyMet
		}
		if err := a.RecordAudit(rec.ControlID, result, "", generated); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Transition(assessment.StatusEvidence, generated); err != nil {
		t.Fatal(err)
	}
	if err := a.Transition(assessment.StatusReview, generated); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Complete(generated); err != nil {
		t.Fatal(err)
	}

	md, err := AuthorizationMarkdown(a)
	if err != nil {
		t.Fatalf("AuthorizationMarkdown() error = %v", err)
	}
	for _, want := range []string{"# Interim Authority to Operate", "**Classification:** PROTECTED B", a.Controls[0].ControlID, "Departmental Security Officer"} {
		if !strings.Contains(md, want) {
			t.Errorf("AuthorizationMarkdown() missing %q", want)
		}
	}
}

func TestWithControls(t *testing.T) {
	r := pbmmReport(t)
	inherited := grc.FilterInherited(r.Recommendations)
	sub := r.WithControls(inherited)

	if sub.Summary.Total != len(inherited) || sub.Summary.Inherited != len(inherited) {
		t.Errorf("summary = %+v, want %d inherited", sub.Summary, len(inherited))
	}
	if sub.Label != r.Label || sub.Determination.Profile.ID != r.Determination.Profile.ID {
		t.Error("WithControls should keep the report header")
	}
	if r.Summary.Total == sub.Summary.Total {
		t.Error("original report should be unchanged")
	}
}
