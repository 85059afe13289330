// Package grc provides the ITSG-33 control catalogue, security profile determination
// and control baseline recommendation for SA&A intake.
package grc

import "slices"

// Priority ranks a control within a baseline
type Priority string

const (
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Valid reports whether p is one of P1, P2 or P3
func (p Priority) Valid() bool {
	return p == P1 || p == P2 || p == P3
}

// ProfileID identifies a security profile
type ProfileID string

const (
	ProfileNone           ProfileID = "NONE"
	ProfileCCCSLow        ProfileID = "CCCS_LOW"
	ProfilePBMM           ProfileID = "PBMM"
	ProfilePBMMHVA        ProfileID = "PBMM_HVA"
	ProfilePBHigh         ProfileID = "PB_HIGH"
	ProfilePCBaseline     ProfileID = "PC_BASELINE"
	ProfileSecretMM       ProfileID = "SECRET_MM"
	ProfileClassifiedHigh ProfileID = "CLASSIFIED_HIGH"
)

// Control is a single catalogue control definition
type Control struct {
	ID               string      `json:"id" yaml:"id"`         // e.g., "AC-2", "IA-2(1)"
	Family           string      `json:"family" yaml:"family"` // e.g., "AC"
	Title            string      `json:"title" yaml:"title"`
	Description      string      `json:"description" yaml:"description"`
	Priority         Priority    `json:"priority" yaml:"priority"`
	Profiles         []ProfileID `json:"profiles" yaml:"profiles"`       // lowest profiles that require it
	Inheritance      []string    `json:"inheritance" yaml:"inheritance"` // technology keys
	Tags             []string    `json:"tags" yaml:"tags"`
	EvidenceGuidance string      `json:"evidence_guidance" yaml:"evidence_guidance"`
}

// InProfile reports whether the control lists the given profile
func (c Control) InProfile(id ProfileID) bool {
	return slices.Contains(c.Profiles, id)
}

func (c Control) clone() Control {
	c.Profiles = slices.Clone(c.Profiles)
	c.Inheritance = slices.Clone(c.Inheritance)
	c.Tags = slices.Clone(c.Tags)
	return c
}

// Technology is a platform or service that commonly satisfies controls
type Technology struct {
	Key      string `json:"key" yaml:"-"`
	Name     string `json:"name" yaml:"name"`
	Vendor   string `json:"vendor" yaml:"vendor"`
	Category string `json:"category" yaml:"category"` // identity, cloud, monitoring, ...
}

// Family is a control family code and its display name
type Family struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Profile is a named control baseline
type Profile struct {
	ID                 ProfileID   `json:"id" yaml:"id"`
	Name               string      `json:"name" yaml:"name"`
	ShortName          string      `json:"short_name" yaml:"short_name"`
	Description        string      `json:"description" yaml:"description"`
	BaselineSource     string      `json:"baseline_source" yaml:"baseline_source"`
	ApproxControls     string      `json:"approx_controls" yaml:"approx_controls"`
	RequiresAssessment bool        `json:"requires_assessment" yaml:"requires_assessment"`
	Includes           []ProfileID `json:"includes" yaml:"includes"` // directly nested lower profiles
}

// ControlSummary is a simplified control representation for tool responses
type ControlSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Family      string      `json:"family"`
	Priority    Priority    `json:"priority"`
	Profiles    []ProfileID `json:"profiles"`
	Description string      `json:"description,omitempty"`
}

// ToSummary converts a Control to a ControlSummary
func (c Control) ToSummary() ControlSummary {
	return ControlSummary{
		ID:          c.ID,
		Title:       c.Title,
		Family:      c.Family,
		Priority:    c.Priority,
		Profiles:    slices.Clone(c.Profiles),
		Description: c.Description,
	}
}
