package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
)

// ErrNoDecision is returned when an authorization document is requested for
// an assessment that has not been completed
var ErrNoDecision = errors.New("assessment has no decision")

// familyStats is one row of the per-family progress table
type familyStats struct {
	code, name string
	stats      assessment.Stats
}

func statsByFamily(records []assessment.ControlRecord) []familyStats {
	var out []familyStats
	index := make(map[string]int)
	grouped := make(map[string][]assessment.ControlRecord)
	for _, rec := range records {
		if _, ok := index[rec.Family]; !ok {
			index[rec.Family] = len(out)
			name := rec.FamilyName
			if name == "" {
				name = rec.Family
			}
			out = append(out, familyStats{code: rec.Family, name: name})
		}
		grouped[rec.Family] = append(grouped[rec.Family], rec)
	}
	for i := range out {
		out[i].stats = assessment.ComputeStats(grouped[out[i].code])
	}
	return out
}

func auditLabel(r assessment.AuditResult) string {
	switch r {
	case assessment.AuditMet:
		return "Met"
	case assessment.AuditPartiallyMet:
		return "Partially Met"
	case assessment.AuditNotMet:
		return "Not Met"
	}
	return "Pending"
}

// AssessmentMarkdown renders an assessment's status report: progress
// statistics, per-family progress and each control's evidence and finding
func AssessmentMarkdown(a *assessment.Assessment) string {
	var b strings.Builder
	stats := a.Stats()

	fmt.Fprintf(&b, "# Security Assessment Report: %s\n\n", a.ProjectName)
	fmt.Fprintf(&b, "**Assessment ID:** `%s`  \n", a.ID)
	fmt.Fprintf(&b, "**Status:** %s  \n", a.Status)
	fmt.Fprintf(&b, "**Categorization:** %s  \n", a.Categorization.FullLabel())
	fmt.Fprintf(&b, "**Profile:** %s  \n", a.ProfileID)
	fmt.Fprintf(&b, "**Last Updated:** %s\n\n", a.UpdatedAt.Format("2006-01-02 15:04"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Controls:** %d (applicable %d, inherited %d, not applicable %d)\n",
		stats.Total, stats.Applicable, stats.Inherited, stats.Total-stats.Applicable)
	fmt.Fprintf(&b, "- **Compliance Score:** %d%%\n", stats.Score())
	fmt.Fprintf(&b, "- **Met:** %d | **Partially Met:** %d | **Not Met:** %d | **Pending:** %d\n",
		stats.Met, stats.PartiallyMet, stats.NotMet, stats.Pending)
	fmt.Fprintf(&b, "- **Evidence Provided:** %d of %d\n\n", stats.EvidenceProvided, stats.Total)

	if a.Decision != nil {
		d := a.Decision
		fmt.Fprintf(&b, "**Decision:** %s (score %d%%, decided %s)\n\n",
			d.Result.Label(), d.Score, d.DecidedAt.Format("2006-01-02"))
	}

	b.WriteString("## Progress by Family\n\n")
	b.WriteString("| Family | Controls | Met | Partial | Not Met | Pending | Score |\n")
	b.WriteString("|--------|----------|-----|---------|---------|---------|-------|\n")
	for _, fs := range statsByFamily(a.Controls) {
		s := fs.stats
		fmt.Fprintf(&b, "| %s: %s | %d | %d | %d | %d | %d | %d%% |\n",
			fs.code, escapeCell(fs.name), s.Total, s.Met, s.PartiallyMet, s.NotMet, s.Pending, s.Score())
	}
	b.WriteString("\n## Controls\n\n")

	family := ""
	for _, rec := range a.Controls {
		if rec.Family != family {
			family = rec.Family
			fmt.Fprintf(&b, "### %s: %s\n\n", rec.Family, rec.FamilyName)
		}
		status := auditLabel(rec.AuditResult)
		if !rec.Applicable {
			status = "N/A"
		}
		fmt.Fprintf(&b, "**%s** %s [%s]", rec.ControlID, rec.Title, status)
		if rec.IsInherited {
			fmt.Fprintf(&b, " *(inherited: %s)*", strings.Join(rec.InheritedFrom, ", "))
		}
		b.WriteString("\n\n")
		if rec.EvidenceText != "" {
			fmt.Fprintf(&b, "> Evidence: %s\n\n", rec.EvidenceText)
		} else if rec.Applicable {
			b.WriteString("> *No evidence provided*\n\n")
		}
		if rec.AuditComments != "" {
			fmt.Fprintf(&b, "> Assessor: %s\n\n", rec.AuditComments)
		}
	}
	return b.String()
}

// AuthorizationMarkdown renders the ATO or interim ATO letter for a completed
// assessment, with signature blocks for the authorizing officials
func AuthorizationMarkdown(a *assessment.Assessment) (string, error) {
	if a.Decision == nil {
		return "", fmt.Errorf("%w: %s is %s", ErrNoDecision, a.ID, a.Status)
	}
	d := a.Decision
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.Result.Label())
	b.WriteString("*Government of Canada, ITSG-33 Security Assessment and Authorization*\n\n")
	fmt.Fprintf(&b, "**System:** %s  \n", a.ProjectName)
	fmt.Fprintf(&b, "**Classification:** %s  \n", strings.ToUpper(a.Categorization.Normalized().Confidentiality.Label()))
	fmt.Fprintf(&b, "**Security Profile:** %s  \n", a.ProfileID)
	fmt.Fprintf(&b, "**Compliance Score:** %d%%  \n", d.Score)
	fmt.Fprintf(&b, "**Date:** %s\n\n", d.DecidedAt.Format("2006-01-02"))

	s := d.Stats
	fmt.Fprintf(&b, "%d controls assessed, %d applicable, %d inherited. Met %d, partially met %d, not met %d.\n\n",
		s.Total, s.Applicable, s.Inherited, s.Met, s.PartiallyMet, s.NotMet)

	switch d.Result {
	case assessment.ResultATO:
		b.WriteString("All applicable security controls were assessed as met. The system is authorized to operate.\n\n")
	case assessment.ResultIATO:
		b.WriteString("The system is authorized to operate on an interim basis. The following controls must be remediated:\n\n")
		for _, rec := range a.Controls {
			if rec.Applicable && rec.AuditResult != assessment.AuditMet {
				fmt.Fprintf(&b, "- **%s** %s (%s)\n", rec.ControlID, rec.Title, auditLabel(rec.AuditResult))
			}
		}
		b.WriteString("\n")
	default:
		b.WriteString("Authorization is denied. Remediate the unmet controls and resubmit for assessment.\n\n")
	}

	b.WriteString("## Signatures\n\n")
	for _, role := range []string{"Security Assessor", "Project Authority", "Chief Information Officer", "Departmental Security Officer"} {
		fmt.Fprintf(&b, "%s: ______________________  Date: __________\n\n", role)
	}
	return b.String(), nil
}
