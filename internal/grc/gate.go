package grc

import (
	"fmt"
	"strings"
)

// Requirement is the outcome of the SA&A requirement gate
type Requirement struct {
	Required    bool   `json:"required"`
	Reason      string `json:"reason"`
	WebGuidance bool   `json:"web_guidance"` // the web guidance checklist applies instead
}

// Gate reasons
const (
	ReasonPII                = "handles personal information"
	ReasonSimpleUnclassified = "unclassified, no PII, no complexity"
	ReasonComplexity         = "unclassified with application complexity"
)

// RequiresFormalAssessment decides whether a project needs a formal SA&A or
// whether the web guidance checklist suffices. Rules are evaluated in order
// and the first match wins.
//
// Callers must not build a control baseline for projects the gate marks as
// not required; the NONE profile path exists only for those projects.
func RequiresFormalAssessment(c Categorization) Requirement {
	c = c.Normalized()
	conf := c.Confidentiality

	if invalid := invalidInputs(c); len(invalid) > 0 {
		return Requirement{Required: true, Reason: fmt.Sprintf("unrecognized %s; formal assessment required", strings.Join(invalid, ", "))}
	}

	switch {
	case conf.IsNational():
		return Requirement{Required: true, Reason: conf.Label()}
	case conf.IsProtected():
		return Requirement{Required: true, Reason: conf.Label()}
	case c.HasPII:
		return Requirement{Required: true, Reason: ReasonPII}
	case conf == Unclassified && !c.Complexity():
		return Requirement{Required: false, Reason: ReasonSimpleUnclassified, WebGuidance: true}
	default:
		return Requirement{Required: true, Reason: ReasonComplexity}
	}
}
