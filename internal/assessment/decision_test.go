package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	records := []ControlRecord{
		{ControlID: "AC-1", Applicable: true, AuditResult: AuditMet, EvidenceStatus: EvidenceProvided},
		{ControlID: "AC-2", Applicable: true, AuditResult: AuditPartiallyMet, IsInherited: true},
		{ControlID: "AC-3", Applicable: true, AuditResult: AuditNotMet},
		{ControlID: "AC-4", Applicable: true, AuditResult: AuditPending, EvidenceStatus: EvidenceProvided},
		{ControlID: "AC-5", Applicable: false, AuditResult: AuditMet, IsInherited: true},
	}

	got := ComputeStats(records)
	want := Stats{
		Total:            5,
		Applicable:       4,
		Inherited:        2,
		EvidenceProvided: 2,
		Met:              1,
		PartiallyMet:     1,
		NotMet:           1,
		Pending:          1,
	}
	assert.Equal(t, want, got)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  int
	}{
		{"none applicable", Stats{}, 0},
		{"all met", Stats{Applicable: 4, Met: 4}, 100},
		{"half credit for partial", Stats{Applicable: 4, Met: 2, PartiallyMet: 2}, 75},
		{"rounds to nearest", Stats{Applicable: 8, Met: 6, PartiallyMet: 1}, 81},
		{"rounds half away from zero", Stats{Applicable: 8, Met: 1, NotMet: 7}, 13},
		{"nothing met", Stats{Applicable: 3, NotMet: 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.Score())
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		stats   Stats
		want    Result
		wantErr error
	}{
		{"all met", Stats{Applicable: 10, Met: 10}, ResultATO, nil},
		{"exactly threshold", Stats{Applicable: 10, Met: 8, NotMet: 2}, ResultIATO, nil},
		{"partials reach threshold", Stats{Applicable: 10, Met: 7, PartiallyMet: 2, NotMet: 1}, ResultIATO, nil},
		{"below threshold", Stats{Applicable: 10, Met: 7, NotMet: 3}, ResultDenied, nil},
		{"all partial", Stats{Applicable: 4, PartiallyMet: 4}, ResultDenied, nil},
		{"no applicable controls", Stats{Total: 3}, "", ErrNoApplicableControls},
		{"pending controls", Stats{Applicable: 5, Met: 4, Pending: 1}, "", ErrAuditIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decide(tt.stats)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Result)
			assert.Equal(t, tt.stats.Score(), d.Score)
		})
	}
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "Authority to Operate", ResultATO.Label())
	assert.Equal(t, "Interim Authority to Operate", ResultIATO.Label())
	assert.Equal(t, "Denied", ResultDenied.Label())
}
