package grc

import (
	"fmt"
	"strings"
)

// Determination is the profile chosen for a categorization
type Determination struct {
	Profile        Profile  `json:"profile"`
	Reason         string   `json:"reason"`
	TailoringNotes []string `json:"tailoring_notes"`
}

// Tailoring notes
const (
	noteReviewInputs      = "Review categorization inputs"
	noteNoClassified      = "No published CSE profile for this classified combination. Contact CSE/CCCS for guidance."
	noteCustomProfile     = "Department must develop a custom security control profile with CSE involvement."
	noteTopSecret         = "Top Secret systems require dedicated infrastructure with enhanced physical, personnel, and TEMPEST controls."
	notePCBaseline        = "Start from PBMM baseline and tailor upward for enhanced confidentiality."
	notePCEnhancements    = "Add enhanced access controls (AC-3 enhancements), audit (AU-2 enhancements), and encryption (SC-12, SC-13 enhancements)."
	notePCPersonnel       = "Consider enhanced personnel security screening (PS-3 enhancements)."
	notePCHigh            = "High integrity/availability combined with Protected C: significant additional controls required."
	noteHVA               = "High Value Asset overlay adds controls on top of PBMM for enhanced integrity and availability."
	notePBHigh            = "Start from PBMM baseline and tailor upward for high integrity/availability."
	notePBHighIntegrity   = "High integrity: add enhanced input validation (SI-10 enhancements), data integrity checks (SI-7 enhancements), dual authorization (AC-3(2))."
	notePBHighAvail       = "High availability: add redundancy controls (CP-6, CP-7 enhancements), load balancing, automated failover (CP-10 enhancements), shorter RPO/RTO targets."
	notePBLow             = "Low integrity/availability with Protected B: PBMM is still the baseline, but some controls may be scoped down through tailoring."
	notePBLowJustify      = "Document justification for any controls removed or reduced from the PBMM baseline."
	notePAEscalate        = "Protected A with medium+ integrity/availability: use PBMM as baseline with potential confidentiality tailoring down."
	notePAHighest         = "The higher of the three dimensions drives profile selection."
	noteUnclassifiedPII   = "PII present in unclassified system: automatically elevated to Protected A minimum treatment."
	noteComplexityReduced = "Unclassified with application complexity: SA&A with reduced control set."
)

// DetermineProfile maps a categorization to a security profile. It is total:
// unrecognized values degrade to PBMM with a note rather than an error.
func (cat *Catalog) DetermineProfile(c Categorization) Determination {
	c = c.Normalized()
	d := cat.determine(c)
	if d.TailoringNotes == nil {
		d.TailoringNotes = []string{}
	}
	return d
}

func (cat *Catalog) result(id ProfileID, reason string, notes ...string) Determination {
	p, _ := cat.Profile(id)
	return Determination{Profile: p, Reason: reason, TailoringNotes: notes}
}

func (cat *Catalog) determine(c Categorization) Determination {
	conf, integrity, avail := c.Confidentiality, c.Integrity, c.Availability

	if invalid := invalidInputs(c); len(invalid) > 0 {
		return cat.result(ProfilePBMM, "Invalid categorization: defaulting to PBMM",
			fmt.Sprintf("%s: unrecognized %s", noteReviewInputs, strings.Join(invalid, ", ")))
	}

	iOrder, aOrder := integrity.Order(), avail.Order()

	switch {
	case conf.IsNational():
		if conf == Secret && integrity == Medium && avail == Medium {
			return cat.result(ProfileSecretMM, "Secret / Medium / Medium maps to ITSG-33 Profile 3")
		}
		notes := []string{noteNoClassified, noteCustomProfile}
		if conf == TopSecret {
			notes = append(notes, noteTopSecret)
		}
		return cat.result(ProfileClassifiedHigh, conf.Label()+" classification requires CSE engagement", notes...)

	case conf == ProtectedC:
		notes := []string{notePCBaseline, notePCEnhancements, notePCPersonnel}
		if iOrder >= 2 || aOrder >= 2 {
			notes = append(notes, notePCHigh)
		}
		return cat.result(ProfilePCBaseline, "Protected C requires tailored profile above PBMM", notes...)

	case conf == ProtectedB:
		return cat.determineProtectedB(c)

	case conf == ProtectedA:
		if integrity == Low && avail == Low {
			return cat.result(ProfileCCCSLow, "Protected A / Low / Low: CCCS Low profile")
		}
		if iOrder >= 1 || aOrder >= 1 {
			return cat.result(ProfilePBMM,
				fmt.Sprintf("Protected A but %s integrity / %s availability elevates to PBMM baseline", integrity.Label(), avail.Label()),
				notePAEscalate, notePAHighest)
		}
		return cat.result(ProfileCCCSLow, "Protected A with low impact: CCCS Low profile")

	default: // Unclassified
		if c.HasPII {
			if iOrder >= 1 || aOrder >= 1 {
				return cat.result(ProfilePBMM, "Unclassified with PII and medium+ I/A: PBMM baseline", noteUnclassifiedPII)
			}
			return cat.result(ProfileCCCSLow, "Unclassified with PII: minimum CCCS Low profile", noteUnclassifiedPII)
		}
		if c.Complexity() {
			return cat.result(ProfileCCCSLow, "Unclassified with application complexity", noteComplexityReduced)
		}
		return cat.result(ProfileNone, "Unclassified with no PII, low impact, and no application complexity")
	}
}

func (cat *Catalog) determineProtectedB(c Categorization) Determination {
	integrity, avail := c.Integrity, c.Availability
	iOrder, aOrder := integrity.Order(), avail.Order()

	switch {
	case integrity == Medium && avail == Medium:
		if c.IsHighValueAsset {
			return cat.result(ProfilePBMMHVA, "Protected B / Medium / Medium + High Value Asset designation", noteHVA)
		}
		return cat.result(ProfilePBMM, "Protected B / Medium / Medium: standard PBMM profile")

	case iOrder >= 2 || aOrder >= 2:
		notes := []string{notePBHigh}
		if iOrder >= 2 {
			notes = append(notes, notePBHighIntegrity)
		}
		if aOrder >= 2 {
			notes = append(notes, notePBHighAvail)
		}
		return cat.result(ProfilePBHigh,
			fmt.Sprintf("Protected B with %s integrity / %s availability requires tailored PBMM", integrity.Label(), avail.Label()),
			notes...)

	case iOrder <= 0 || aOrder <= 0:
		dim := "availability"
		if iOrder <= 0 {
			dim = "integrity"
		}
		return cat.result(ProfilePBMM,
			fmt.Sprintf("Protected B defaults to PBMM; low %s allows limited tailoring down", dim),
			notePBLow, notePBLowJustify)

	default:
		return cat.result(ProfilePBMM, "Protected B defaults to PBMM profile")
	}
}

func invalidInputs(c Categorization) []string {
	var invalid []string
	if !c.Confidentiality.Valid() {
		invalid = append(invalid, fmt.Sprintf("confidentiality %q", c.Confidentiality))
	}
	if !c.Integrity.Valid() {
		invalid = append(invalid, fmt.Sprintf("integrity %q", c.Integrity))
	}
	if !c.Availability.Valid() {
		invalid = append(invalid, fmt.Sprintf("availability %q", c.Availability))
	}
	return invalid
}
