package grc

import (
	"fmt"
	"slices"
	"strings"
)

// Confidentiality is a data classification level
type Confidentiality string

const (
	Unclassified Confidentiality = "unclassified"
	ProtectedA   Confidentiality = "protected-a"
	ProtectedB   Confidentiality = "protected-b"
	ProtectedC   Confidentiality = "protected-c"
	Confidential Confidentiality = "confidential"
	Secret       Confidentiality = "secret"
	TopSecret    Confidentiality = "top-secret"
)

// Level is an integrity or availability impact level
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Track separates non-national (Protected) information from national interest (Classified)
type Track string

const (
	TrackNonNational Track = "non-national"
	TrackNational    Track = "national"
)

// AppType describes how a system is exposed
type AppType string

const (
	AppInternal AppType = "internal"
	AppExternal AppType = "external"
	AppHybrid   AppType = "hybrid"
)

type confidentialityInfo struct {
	label string
	short string
	track Track
	order int
}

var confidentialityLevels = map[Confidentiality]confidentialityInfo{
	Unclassified: {"Unclassified", "UC", TrackNonNational, 0},
	ProtectedA:   {"Protected A", "PA", TrackNonNational, 1},
	ProtectedB:   {"Protected B", "PB", TrackNonNational, 2},
	ProtectedC:   {"Protected C", "PC", TrackNonNational, 3},
	Confidential: {"Confidential", "CONF", TrackNational, 4},
	Secret:       {"Secret", "S", TrackNational, 5},
	TopSecret:    {"Top Secret", "TS", TrackNational, 6},
}

type levelInfo struct {
	label string
	short string
	order int
}

var impactLevels = map[Level]levelInfo{
	Low:    {"Low", "L", 0},
	Medium: {"Medium", "M", 1},
	High:   {"High", "H", 2},
}

// Valid reports whether c is a known classification
func (c Confidentiality) Valid() bool {
	_, ok := confidentialityLevels[c]
	return ok
}

// Label returns the display label, e.g. "Protected B"
func (c Confidentiality) Label() string {
	if info, ok := confidentialityLevels[c]; ok {
		return info.label
	}
	return string(c)
}

// Track returns the confidentiality track, or "" if unknown
func (c Confidentiality) Track() Track {
	return confidentialityLevels[c].track
}

// IsNational reports whether c is a national interest classification
func (c Confidentiality) IsNational() bool {
	return c.Track() == TrackNational
}

// IsProtected reports whether c is Protected A, B or C
func (c Confidentiality) IsProtected() bool {
	return c == ProtectedA || c == ProtectedB || c == ProtectedC
}

// Valid reports whether l is a known impact level
func (l Level) Valid() bool {
	_, ok := impactLevels[l]
	return ok
}

// Label returns the display label, e.g. "Medium"
func (l Level) Label() string {
	if info, ok := impactLevels[l]; ok {
		return info.label
	}
	return string(l)
}

// Order ranks the level: low 0, medium 1, high 2. Unknown levels return -1.
func (l Level) Order() int {
	if info, ok := impactLevels[l]; ok {
		return info.order
	}
	return -1
}

// ParseConfidentiality normalizes case and whitespace. Labels such as
// "Protected B" are accepted as well as keys.
func ParseConfidentiality(s string) Confidentiality {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	return Confidentiality(s)
}

// ParseLevel normalizes case and whitespace
func ParseLevel(s string) Level {
	return Level(strings.ToLower(strings.TrimSpace(s)))
}

// Categorization is the caller-supplied project context for every decision function.
// Empty Confidentiality defaults to unclassified; empty Integrity and Availability
// default to medium.
type Categorization struct {
	Confidentiality          Confidentiality `json:"confidentiality" yaml:"confidentiality"`
	Integrity                Level           `json:"integrity" yaml:"integrity"`
	Availability             Level           `json:"availability" yaml:"availability"`
	HasPII                   bool            `json:"has_pii" yaml:"has_pii"`
	IsHighValueAsset         bool            `json:"is_high_value_asset" yaml:"is_high_value_asset"`
	HasApplicationComplexity bool            `json:"has_application_complexity,omitempty" yaml:"has_application_complexity"`
	AppType                  AppType         `json:"app_type,omitempty" yaml:"app_type"`
	Technologies             []string        `json:"technologies" yaml:"technologies"`
	Description              string          `json:"description" yaml:"description"`
}

// Normalized returns a copy with defaults applied and values lower-cased
func (c Categorization) Normalized() Categorization {
	c.Confidentiality = ParseConfidentiality(string(c.Confidentiality))
	c.Integrity = ParseLevel(string(c.Integrity))
	c.Availability = ParseLevel(string(c.Availability))
	c.AppType = AppType(strings.ToLower(strings.TrimSpace(string(c.AppType))))
	if c.Confidentiality == "" {
		c.Confidentiality = Unclassified
	}
	if c.Integrity == "" {
		c.Integrity = Medium
	}
	if c.Availability == "" {
		c.Availability = Medium
	}
	c.Technologies = slices.Clone(c.Technologies)
	return c
}

// Complexity reports whether the system has application complexity, either
// flagged explicitly or detected in the description
func (c Categorization) Complexity() bool {
	return c.HasApplicationComplexity || DetectComplexity(c.Description)
}

// Label returns the short categorization label, e.g. "PB/M/M"
func (c Categorization) Label() string {
	c = c.Normalized()
	return CategorizationLabel(c.Confidentiality, c.Integrity, c.Availability)
}

// FullLabel returns e.g. "Protected B / Medium Integrity / Medium Availability"
func (c Categorization) FullLabel() string {
	c = c.Normalized()
	return CategorizationFullLabel(c.Confidentiality, c.Integrity, c.Availability)
}

// CategorizationLabel builds the short label, or "Unknown" for invalid values
func CategorizationLabel(conf Confidentiality, integrity, availability Level) string {
	ci, ok1 := confidentialityLevels[conf]
	ii, ok2 := impactLevels[integrity]
	ai, ok3 := impactLevels[availability]
	if !ok1 || !ok2 || !ok3 {
		return "Unknown"
	}
	return fmt.Sprintf("%s/%s/%s", ci.short, ii.short, ai.short)
}

// CategorizationFullLabel builds the long label, or "Unknown" for invalid values
func CategorizationFullLabel(conf Confidentiality, integrity, availability Level) string {
	ci, ok1 := confidentialityLevels[conf]
	ii, ok2 := impactLevels[integrity]
	ai, ok3 := impactLevels[availability]
	if !ok1 || !ok2 || !ok3 {
		return "Unknown"
	}
	return fmt.Sprintf("%s / %s Integrity / %s Availability", ci.label, ii.label, ai.label)
}
