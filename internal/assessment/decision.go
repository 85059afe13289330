package assessment

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoApplicableControls = errors.New("no applicable controls to decide on")
	ErrAuditIncomplete      = errors.New("audit incomplete")
)

// IATOThreshold is the minimum score for an interim authority to operate
const IATOThreshold = 80

// Result is the authorization outcome
type Result string

const (
	ResultATO    Result = "ato"
	ResultIATO   Result = "iato"
	ResultDenied Result = "denied"
)

// Label returns a display label for the result
func (r Result) Label() string {
	switch r {
	case ResultATO:
		return "Authority to Operate"
	case ResultIATO:
		return "Interim Authority to Operate"
	case ResultDenied:
		return "Denied"
	}
	return string(r)
}

// Stats counts control records by state. Met, PartiallyMet, NotMet and
// Pending cover applicable controls only.
type Stats struct {
	Total            int `json:"total"`
	Applicable       int `json:"applicable"`
	Inherited        int `json:"inherited"`
	EvidenceProvided int `json:"evidence_provided"`
	Met              int `json:"met"`
	PartiallyMet     int `json:"partially_met"`
	NotMet           int `json:"not_met"`
	Pending          int `json:"pending"`
}

// ComputeStats tallies records
func ComputeStats(records []ControlRecord) Stats {
	var s Stats
	for _, r := range records {
		s.Total++
		if r.IsInherited {
			s.Inherited++
		}
		if r.EvidenceStatus == EvidenceProvided {
			s.EvidenceProvided++
		}
		if !r.Applicable {
			continue
		}
		s.Applicable++
		switch r.AuditResult {
		case AuditMet:
			s.Met++
		case AuditPartiallyMet:
			s.PartiallyMet++
		case AuditNotMet:
			s.NotMet++
		default:
			s.Pending++
		}
	}
	return s
}

// Score is round((met + 0.5 * partially met) / applicable * 100), or 0 with
// no applicable controls
func (s Stats) Score() int {
	if s.Applicable == 0 {
		return 0
	}
	return int(math.Round((float64(s.Met) + 0.5*float64(s.PartiallyMet)) / float64(s.Applicable) * 100))
}

// Decision is the recorded authorization outcome
type Decision struct {
	Result    Result    `json:"result"`
	Score     int       `json:"score"`
	Stats     Stats     `json:"stats"`
	DecidedAt time.Time `json:"decided_at"`
}

// Decide grants an ATO when every applicable control is met, an interim ATO
// at or above the threshold, and denies otherwise
func Decide(s Stats) (Decision, error) {
	if s.Applicable == 0 {
		return Decision{}, ErrNoApplicableControls
	}
	if s.Pending > 0 {
		return Decision{}, fmt.Errorf("%w: %d applicable controls not audited", ErrAuditIncomplete, s.Pending)
	}
	d := Decision{Score: s.Score(), Stats: s}
	switch {
	case s.Met == s.Applicable:
		d.Result = ResultATO
	case d.Score >= IATOThreshold:
		d.Result = ResultIATO
	default:
		d.Result = ResultDenied
	}
	return d, nil
}
