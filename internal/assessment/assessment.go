// Package assessment tracks a project's control baseline from evidence
// gathering through audit to an authorization decision.
package assessment

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

var (
	ErrControlNotFound   = errors.New("control not in assessment")
	ErrDuplicateControl  = errors.New("control already in assessment")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCompleted         = errors.New("assessment is closed")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidResult     = errors.New("invalid audit result")
	ErrNotDraft          = errors.New("only draft assessments can be deleted")
)

// Status is the assessment lifecycle stage
type Status string

const (
	StatusDraft     Status = "draft"
	StatusEvidence  Status = "evidence"
	StatusReview    Status = "review"
	StatusCompleted Status = "completed"
	StatusDenied    Status = "denied"
)

var transitions = map[Status][]Status{
	StatusDraft:    {StatusEvidence},
	StatusEvidence: {StatusReview},
	StatusReview:   {StatusEvidence, StatusCompleted, StatusDenied},
}

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusDraft, StatusEvidence, StatusReview, StatusCompleted, StatusDenied:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether from may move to to
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Closed reports whether the assessment no longer accepts changes
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusDenied
}

// EvidenceStatus tracks whether the project owner has supplied evidence
type EvidenceStatus string

const (
	EvidencePending  EvidenceStatus = "pending"
	EvidenceProvided EvidenceStatus = "provided"
)

// AuditResult is the assessor's finding for a control
type AuditResult string

const (
	AuditPending      AuditResult = "pending"
	AuditMet          AuditResult = "met"
	AuditPartiallyMet AuditResult = "partially-met"
	AuditNotMet       AuditResult = "not-met"
)

// ParseAuditResult validates an audit result string
func ParseAuditResult(s string) (AuditResult, error) {
	r := AuditResult(s)
	switch r {
	case AuditPending, AuditMet, AuditPartiallyMet, AuditNotMet:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
}

// ControlRecord is one control in an assessment baseline
type ControlRecord struct {
	ControlID        string         `json:"control_id"`
	Family           string         `json:"family"`
	FamilyName       string         `json:"family_name"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Priority         grc.Priority   `json:"priority"`
	EvidenceGuidance string         `json:"evidence_guidance"`
	IsInherited      bool           `json:"is_inherited"`
	InheritedFrom    []string       `json:"inherited_from"`
	Applicable       bool           `json:"applicable"`
	EvidenceText     string         `json:"evidence_text,omitempty"`
	EvidenceStatus   EvidenceStatus `json:"evidence_status"`
	AuditResult      AuditResult    `json:"audit_result"`
	AuditComments    string         `json:"audit_comments,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
}

// RecordFromRecommendation builds a pending, applicable control record
func RecordFromRecommendation(r grc.Recommendation) ControlRecord {
	return ControlRecord{
		ControlID:        r.Control.ID,
		Family:           r.Control.Family,
		FamilyName:       r.FamilyName,
		Title:            r.Control.Title,
		Description:      r.Control.Description,
		Priority:         r.Control.Priority,
		EvidenceGuidance: r.Control.EvidenceGuidance,
		IsInherited:      r.IsInherited,
		InheritedFrom:    slices.Clone(r.InheritedFrom),
		Applicable:       true,
		EvidenceStatus:   EvidencePending,
		AuditResult:      AuditPending,
	}
}

// Assessment is a persisted control baseline for one project
type Assessment struct {
	ID             string             `json:"id"`
	ProjectName    string             `json:"project_name"`
	Categorization grc.Categorization `json:"categorization"`
	ProfileID      grc.ProfileID      `json:"profile_id"`
	ProfileReason  string             `json:"profile_reason"`
	TailoringNotes []string           `json:"tailoring_notes"`
	Status         Status             `json:"status"`
	Controls       []ControlRecord    `json:"controls"`
	Decision       *Decision          `json:"decision,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// New creates a draft assessment whose baseline is the given recommendations
func New(project string, c grc.Categorization, d grc.Determination, recs []grc.Recommendation, now time.Time) *Assessment {
	a := &Assessment{
		ID:             uuid.NewString(),
		ProjectName:    project,
		Categorization: c,
		ProfileID:      d.Profile.ID,
		ProfileReason:  d.Reason,
		TailoringNotes: slices.Clone(d.TailoringNotes),
		Status:         StatusDraft,
		Controls:       make([]ControlRecord, 0, len(recs)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, r := range recs {
		a.Controls = append(a.Controls, RecordFromRecommendation(r))
	}
	return a
}

func (a *Assessment) find(controlID string) (*ControlRecord, error) {
	for i := range a.Controls {
		if a.Controls[i].ControlID == controlID {
			return &a.Controls[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrControlNotFound, controlID)
}

func (a *Assessment) editable() error {
	if a.Status.Closed() {
		return fmt.Errorf("%w: status %s", ErrCompleted, a.Status)
	}
	return nil
}

// Deletable reports whether the assessment may be removed. Anything past
// draft carries evidence or an authorization record and is kept.
func (a *Assessment) Deletable() error {
	if a.Status != StatusDraft {
		return fmt.Errorf("%w: %s is %s", ErrNotDraft, a.ID, a.Status)
	}
	return nil
}

// Control returns a copy of the record for controlID
func (a *Assessment) Control(controlID string) (ControlRecord, error) {
	rec, err := a.find(controlID)
	if err != nil {
		return ControlRecord{}, err
	}
	return *rec, nil
}

// RecordEvidence stores the owner's evidence narrative. Empty text resets the
// control to pending.
func (a *Assessment) RecordEvidence(controlID, text string, now time.Time) error {
	if err := a.editable(); err != nil {
		return err
	}
	rec, err := a.find(controlID)
	if err != nil {
		return err
	}
	rec.EvidenceText = text
	rec.EvidenceStatus = EvidenceProvided
	if text == "" {
		rec.EvidenceStatus = EvidencePending
	}
	a.UpdatedAt = now
	return nil
}

// RecordAudit stores the assessor's finding for a control
func (a *Assessment) RecordAudit(controlID string, result AuditResult, comments string, now time.Time) error {
	if err := a.editable(); err != nil {
		return err
	}
	if _, err := ParseAuditResult(string(result)); err != nil {
		return err
	}
	rec, err := a.find(controlID)
	if err != nil {
		return err
	}
	rec.AuditResult = result
	rec.AuditComments = comments
	reviewed := now
	rec.ReviewedAt = &reviewed
	if result == AuditPending {
		rec.ReviewedAt = nil
	}
	a.UpdatedAt = now
	return nil
}

// SetApplicable scopes a control in or out of the baseline
func (a *Assessment) SetApplicable(controlID string, applicable bool, now time.Time) error {
	if err := a.editable(); err != nil {
		return err
	}
	rec, err := a.find(controlID)
	if err != nil {
		return err
	}
	rec.Applicable = applicable
	a.UpdatedAt = now
	return nil
}

// AddControl appends a tailored-in control, keeping the baseline ordered
func (a *Assessment) AddControl(rec ControlRecord, now time.Time) error {
	if err := a.editable(); err != nil {
		return err
	}
	if _, err := a.find(rec.ControlID); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateControl, rec.ControlID)
	}
	a.Controls = append(a.Controls, rec)
	slices.SortStableFunc(a.Controls, func(x, y ControlRecord) int {
		if x.Family != y.Family {
			if x.Family < y.Family {
				return -1
			}
			return 1
		}
		return grc.CompareControlID(x.ControlID, y.ControlID)
	})
	a.UpdatedAt = now
	return nil
}

// RemoveControl drops a control from the baseline
func (a *Assessment) RemoveControl(controlID string, now time.Time) error {
	if err := a.editable(); err != nil {
		return err
	}
	if _, err := a.find(controlID); err != nil {
		return err
	}
	a.Controls = slices.DeleteFunc(a.Controls, func(r ControlRecord) bool { return r.ControlID == controlID })
	a.UpdatedAt = now
	return nil
}

// Transition moves the assessment to a new lifecycle stage. Completion goes
// through Complete so a decision is always recorded.
func (a *Assessment) Transition(to Status, now time.Time) error {
	if to.Closed() {
		return fmt.Errorf("%w: use Complete to close an assessment", ErrInvalidTransition)
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	if a.Status == StatusReview && to == StatusEvidence {
		// rework: every control needs its evidence confirmed again
		for i := range a.Controls {
			a.Controls[i].EvidenceStatus = EvidencePending
		}
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}

// Stats summarizes the current baseline
func (a *Assessment) Stats() Stats {
	return ComputeStats(a.Controls)
}

// Complete decides the audit outcome and closes the assessment
func (a *Assessment) Complete(now time.Time) (Decision, error) {
	if a.Status != StatusReview {
		return Decision{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusCompleted)
	}
	d, err := Decide(a.Stats())
	if err != nil {
		return Decision{}, err
	}
	d.DecidedAt = now
	a.Decision = &d
	a.Status = StatusCompleted
	if d.Result == ResultDenied {
		a.Status = StatusDenied
	}
	a.UpdatedAt = now
	return d, nil
}
