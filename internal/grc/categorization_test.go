package grc

import (
	"slices"
	"testing"
)

func TestCategorizationLabels(t *testing.T) {
	tests := []struct {
		name  string
		input Categorization
		short string
		full  string
	}{
		{
			name:  "PBMM",
			input: Categorization{Confidentiality: ProtectedB, Integrity: Medium, Availability: Medium},
			short: "PB/M/M",
			full:  "Protected B / Medium Integrity / Medium Availability",
		},
		{
			name:  "defaults",
			input: Categorization{},
			short: "UC/M/M",
			full:  "Unclassified / Medium Integrity / Medium Availability",
		},
		{
			name:  "top secret",
			input: Categorization{Confidentiality: TopSecret, Integrity: High, Availability: Low},
			short: "TS/H/L",
			full:  "Top Secret / High Integrity / Low Availability",
		},
		{
			name:  "invalid",
			input: Categorization{Confidentiality: "restricted"},
			short: "Unknown",
			full:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Label(); got != tt.short {
				t.Errorf("Label() = %q, want %q", got, tt.short)
			}
			if got := tt.input.FullLabel(); got != tt.full {
				t.Errorf("FullLabel() = %q, want %q", got, tt.full)
			}
		})
	}
}

func TestParseConfidentiality(t *testing.T) {
	tests := []struct {
		input string
		want  Confidentiality
	}{
		{"protected-b", ProtectedB},
		{"Protected B", ProtectedB},
		{"  TOP SECRET ", TopSecret},
		{"unclassified", Unclassified},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseConfidentiality(tt.input); got != tt.want {
			t.Errorf("ParseConfidentiality(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestConfidentialityTrack(t *testing.T) {
	for _, c := range []Confidentiality{Confidential, Secret, TopSecret} {
		if !c.IsNational() || c.IsProtected() {
			t.Errorf("%s: IsNational = %v, IsProtected = %v", c, c.IsNational(), c.IsProtected())
		}
	}
	for _, c := range []Confidentiality{ProtectedA, ProtectedB, ProtectedC} {
		if c.IsNational() || !c.IsProtected() {
			t.Errorf("%s: IsNational = %v, IsProtected = %v", c, c.IsNational(), c.IsProtected())
		}
	}
	if Unclassified.IsNational() || Unclassified.IsProtected() {
		t.Error("unclassified should be neither national nor protected")
	}
	if Confidentiality("bogus").Track() != "" {
		t.Error("unknown classification should have no track")
	}
}

func TestLevelOrder(t *testing.T) {
	if !(Low.Order() < Medium.Order() && Medium.Order() < High.Order()) {
		t.Error("levels are not ordered low < medium < high")
	}
	if Level("extreme").Order() != -1 {
		t.Error("unknown level should order as -1")
	}
}

func TestContextTags(t *testing.T) {
	tests := []struct {
		name  string
		input Categorization
		want  []string
	}{
		{"empty", Categorization{}, []string{}},
		{
			name:  "public",
			input: Categorization{Description: "Public website"},
			want:  []string{"boundary", "ddos", "external", "public-content", "waf"},
		},
		{
			name:  "external app type",
			input: Categorization{AppType: AppExternal},
			want:  []string{"boundary", "ddos", "external", "public-content", "waf"},
		},
		{
			name:  "PII flag",
			input: Categorization{HasPII: true},
			want:  []string{"handling", "pii", "privacy", "retention"},
		},
		{
			name:  "api",
			input: Categorization{Description: "Exposes an API"},
			want:  []string{"interconnections", "interfaces", "isa"},
		},
		{
			name:  "mobile and wireless",
			input: Categorization{Description: "Mobile BYOD app over Wi-Fi"},
			want:  []string{"byod", "device", "external", "wireless"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContextTags(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ContextTags() = %v, want %v", got, tt.want)
			}
		})
	}
}
