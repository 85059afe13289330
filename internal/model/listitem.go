// Package model holds the list items shared by the terminal views.
package model

import (
	"fmt"
	"strings"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

// ControlItem wraps a Recommendation to implement the list.Item interface
type ControlItem struct {
	grc.Recommendation
}

// NewControlItems converts a baseline into list items, preserving order
func NewControlItems(recs []grc.Recommendation) []ControlItem {
	items := make([]ControlItem, len(recs))
	for i, r := range recs {
		items[i] = ControlItem{Recommendation: r}
	}
	return items
}

// Title returns the display title for the list
func (c ControlItem) Title() string {
	return c.Control.Title
}

// Description returns the secondary text for the list
func (c ControlItem) Description() string {
	desc := fmt.Sprintf("%s | %s | Relevance: %d", c.FamilyName, c.Control.Priority, c.RelevanceScore)
	if c.IsInherited {
		desc += " | Inherited: " + strings.Join(c.InheritedFrom, ", ")
	}
	return desc
}

// FilterValue returns the string used for filtering
func (c ControlItem) FilterValue() string {
	parts := []string{c.Control.ID, c.Control.Family, c.FamilyName, c.Control.Title}
	parts = append(parts, c.Control.Tags...)
	parts = append(parts, c.InheritedFrom...)
	return strings.Join(parts, " ")
}

// AssessmentItem wraps an assessment control record for the tracking view
type AssessmentItem struct {
	assessment.ControlRecord
}

// NewAssessmentItems converts control records into list items, preserving order
func NewAssessmentItems(records []assessment.ControlRecord) []AssessmentItem {
	items := make([]AssessmentItem, len(records))
	for i, r := range records {
		items[i] = AssessmentItem{ControlRecord: r}
	}
	return items
}

// Title returns the display title for the list
func (a AssessmentItem) Title() string {
	return a.ControlID + " " + a.ControlRecord.Title
}

// Description returns the secondary text for the list
func (a AssessmentItem) Description() string {
	if !a.Applicable {
		return fmt.Sprintf("%s | not applicable", a.FamilyName)
	}
	evidence := "no evidence"
	if a.EvidenceText != "" {
		evidence = "evidence provided"
	}
	return fmt.Sprintf("%s | %s | %s", a.FamilyName, a.AuditResult, evidence)
}

// FilterValue returns the string used for filtering
func (a AssessmentItem) FilterValue() string {
	return strings.Join([]string{a.ControlID, a.ControlRecord.Title, a.FamilyName, string(a.AuditResult)}, " ")
}
