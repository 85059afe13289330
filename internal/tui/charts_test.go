package tui

import (
	"strings"
	"testing"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

func rec(id, family, familyName string, p grc.Priority, inheritedFrom ...string) grc.Recommendation {
	return grc.Recommendation{
		Control:       grc.Control{ID: id, Family: family, Title: id + " title", Priority: p},
		FamilyName:    familyName,
		InheritedFrom: inheritedFrom,
		IsInherited:   len(inheritedFrom) > 0,
	}
}

func sampleRecs() []grc.Recommendation {
	return []grc.Recommendation{
		rec("AC-1", "AC", "Access Control", grc.P1, "Microsoft Entra ID (Azure AD)"),
		rec("AC-2", "AC", "Access Control", grc.P1, "Microsoft Entra ID (Azure AD)", "Active Directory"),
		rec("AU-2", "AU", "Audit and Accountability", grc.P2),
		rec("SC-7", "SC", "System and Communications Protection", grc.P1, "Azure Web Application Firewall"),
		rec("SC-8", "SC", "System and Communications Protection", grc.P2),
		rec("SC-13", "SC", "System and Communications Protection", grc.P3),
	}
}

func TestGetFamilyStats(t *testing.T) {
	tests := []struct {
		name      string
		recs      []grc.Recommendation
		n         int
		wantCodes []string
	}{
		{"empty", nil, 10, nil},
		{"sorted by count then code", sampleRecs(), 0, []string{"SC", "AC", "AU"}},
		{"limited", sampleRecs(), 2, []string{"SC", "AC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetFamilyStats(tt.recs, tt.n)
			if len(got) != len(tt.wantCodes) {
				t.Fatalf("GetFamilyStats() returned %d families, want %d", len(got), len(tt.wantCodes))
			}
			for i, code := range tt.wantCodes {
				if got[i].Code != code {
					t.Errorf("family[%d] = %s, want %s", i, got[i].Code, code)
				}
			}
		})
	}

	stats := GetFamilyStats(sampleRecs(), 0)
	if stats[1].Count != 2 || stats[1].Inherited != 2 || stats[1].Name != "Access Control" {
		t.Errorf("AC stats = %+v", stats[1])
	}
}

func TestGetPriorityStats(t *testing.T) {
	got := GetPriorityStats(sampleRecs())
	want := PriorityStats{P1: 3, P2: 2, P3: 1}
	if got != want {
		t.Errorf("GetPriorityStats() = %+v, want %+v", got, want)
	}
	if got.Total() != 6 {
		t.Errorf("Total() = %d, want 6", got.Total())
	}
}

func TestGetInheritanceStats(t *testing.T) {
	got := GetInheritanceStats(sampleRecs())
	want := InheritanceStats{Inherited: 3, Direct: 3, Total: 6}
	if got != want {
		t.Errorf("GetInheritanceStats() = %+v, want %+v", got, want)
	}
	if got := GetInheritanceStats(nil); got.Total != 0 {
		t.Errorf("GetInheritanceStats(nil).Total = %d", got.Total)
	}
}

func TestGetTechnologyStats(t *testing.T) {
	got := GetTechnologyStats(sampleRecs(), 10)
	if len(got) != 3 {
		t.Fatalf("got %d technologies, want 3", len(got))
	}
	if got[0].Name != "Microsoft Entra ID (Azure AD)" || got[0].Count != 2 {
		t.Errorf("top technology = %+v", got[0])
	}
	// ties sort by name
	if got[1].Name != "Active Directory" || got[2].Name != "Azure Web Application Firewall" {
		t.Errorf("tie order = %s, %s", got[1].Name, got[2].Name)
	}
	if got := GetTechnologyStats(sampleRecs(), 1); len(got) != 1 {
		t.Errorf("limit ignored: %d", len(got))
	}
}

func TestRenderCharts(t *testing.T) {
	recs := sampleRecs()
	tests := []struct {
		name   string
		render func([]grc.Recommendation, int, int) string
		want   []string
	}{
		{"family", RenderFamilyChart, []string{"Controls by Family", "SC: System and Communications Protection 3 (1 inherited)"}},
		{"priority", RenderPriorityChart, []string{"Controls by Priority", "P1: 3 (50.0%)"}},
		{"inheritance", RenderInheritanceChart, []string{"Inherited Controls", "Inherited: 3 (50.0%)", "Active Directory: 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render(recs, 100, 40)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
			if empty := tt.render(nil, 100, 40); empty != "No controls in baseline" {
				t.Errorf("empty render = %q", empty)
			}
		})
	}
}

func TestRenderChartsSmallTerminal(t *testing.T) {
	// must not panic when the terminal is smaller than the chart chrome
	_ = RenderFamilyChartWithSelection(sampleRecs(), 5, 3, 0)
	_ = RenderPriorityChart(sampleRecs(), 0, 0)
	_ = RenderInheritanceChart(sampleRecs(), 1, 1)
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Access Control", 20, "Access Control"},
		{"System and Communications Protection", 10, "System an."},
		{"Sécurité", 5, "Sécu."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
