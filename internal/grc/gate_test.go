package grc

import (
	"strings"
	"testing"
)

func TestRequiresFormalAssessment(t *testing.T) {
	tests := []struct {
		name     string
		input    Categorization
		required bool
		reason   string
	}{
		{"secret", Categorization{Confidentiality: Secret}, true, "Secret"},
		{"top secret", Categorization{Confidentiality: TopSecret}, true, "Top Secret"},
		{"confidential", Categorization{Confidentiality: Confidential}, true, "Confidential"},
		{"protected A", Categorization{Confidentiality: ProtectedA}, true, "Protected A"},
		{"protected B", Categorization{Confidentiality: ProtectedB}, true, "Protected B"},
		{"protected C", Categorization{Confidentiality: ProtectedC}, true, "Protected C"},
		{"unclassified PII", Categorization{Confidentiality: Unclassified, HasPII: true}, true, ReasonPII},
		{
			name:     "static site",
			input:    Categorization{Confidentiality: Unclassified, Integrity: Low, Availability: Low, Description: "static informational page, no forms"},
			required: false,
			reason:   ReasonSimpleUnclassified,
		},
		{
			name:     "database in description",
			input:    Categorization{Confidentiality: Unclassified, Description: "Stores feedback in a PostgreSQL database"},
			required: true,
			reason:   ReasonComplexity,
		},
		{
			name:     "explicit complexity flag",
			input:    Categorization{Confidentiality: Unclassified, HasApplicationComplexity: true},
			required: true,
			reason:   ReasonComplexity,
		},
		{"empty defaults to unclassified", Categorization{}, false, ReasonSimpleUnclassified},
		{"PII beats simple unclassified", Categorization{HasPII: true, Description: "static page"}, true, ReasonPII},
		{"national beats PII", Categorization{Confidentiality: Secret, HasPII: true}, true, "Secret"},
		{"unknown classification", Categorization{Confidentiality: "restricted"}, true, `unrecognized confidentiality "restricted"`},
		{
			name:     "unknown integrity on a static site",
			input:    Categorization{Confidentiality: Unclassified, Integrity: "moderate", Availability: Low, Description: "static informational page"},
			required: true,
			reason:   `integrity "moderate"`,
		},
		{
			name:     "unknown availability",
			input:    Categorization{Confidentiality: Unclassified, Integrity: Low, Availability: "critical"},
			required: true,
			reason:   `availability "critical"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiresFormalAssessment(tt.input)
			if got.Required != tt.required {
				t.Errorf("Required = %v, want %v", got.Required, tt.required)
			}
			if !strings.Contains(got.Reason, tt.reason) {
				t.Errorf("Reason = %q, want it to contain %q", got.Reason, tt.reason)
			}
			if got.WebGuidance == got.Required {
				t.Errorf("WebGuidance = %v with Required = %v", got.WebGuidance, got.Required)
			}
		})
	}
}

// Complexity detection is a best-effort substring heuristic; these cases pin its
// current behavior, including known false positives.
func TestDetectComplexity(t *testing.T) {
	tests := []struct {
		description string
		want        bool
	}{
		{"", false},
		{"static informational page, no forms", false},
		{"Brochure site with news releases", false},
		{"Users LOGIN with GCKey", true},
		{"REST API for partners", true},
		{"Uses Redis as a cache", true},
		{"Single sign-on via SSO", true},
		{"Payment processing", true},
		{"Job application guidance page", true}, // false positive: "application"
		{"Happy path", true},                    // false positive: "app"
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := DetectComplexity(tt.description); got != tt.want {
				t.Errorf("DetectComplexity(%q) = %v, want %v", tt.description, got, tt.want)
			}
		})
	}
}
