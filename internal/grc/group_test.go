package grc

import "testing"

func TestGroupByFamily(t *testing.T) {
	recs := []Recommendation{
		{Control: Control{ID: "AC-1", Family: "AC"}, FamilyName: "Access Control"},
		{Control: Control{ID: "AC-2", Family: "AC"}, FamilyName: "Access Control"},
		{Control: Control{ID: "SI-2", Family: "SI"}, FamilyName: "System and Information Integrity"},
		{Control: Control{ID: "ZZ-1", Family: "ZZ"}},
	}

	groups := GroupByFamily(recs)
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}

	tests := []struct {
		family string
		name   string
		count  int
	}{
		{"AC", "Access Control", 2},
		{"SI", "System and Information Integrity", 1},
		{"ZZ", "ZZ", 1},
	}
	for i, tt := range tests {
		g := groups[i]
		if g.Family != tt.family || g.FamilyName != tt.name || len(g.Controls) != tt.count {
			t.Errorf("groups[%d] = {%s %q %d}, want {%s %q %d}", i, g.Family, g.FamilyName, len(g.Controls), tt.family, tt.name, tt.count)
		}
	}
}

func TestGroupByFamilyFirstSeenOrder(t *testing.T) {
	recs := []Recommendation{
		{Control: Control{ID: "SI-2", Family: "SI"}},
		{Control: Control{ID: "AC-1", Family: "AC"}},
		{Control: Control{ID: "SI-3", Family: "SI"}},
	}
	groups := GroupByFamily(recs)
	if groups[0].Family != "SI" || groups[1].Family != "AC" {
		t.Errorf("group order = %s, %s; want SI, AC", groups[0].Family, groups[1].Family)
	}
	if len(groups[0].Controls) != 2 {
		t.Errorf("SI group has %d controls, want 2", len(groups[0].Controls))
	}
}

func TestGroupByFamilyEmpty(t *testing.T) {
	if groups := GroupByFamily(nil); len(groups) != 0 {
		t.Errorf("GroupByFamily(nil) = %v, want empty", groups)
	}
}

func TestFamilyCounts(t *testing.T) {
	cat := mustDefault(t)
	recs := cat.RecommendControls(RecommendationRequest{Profile: ProfilePBMM})
	counts := FamilyCounts(recs)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != len(recs) {
		t.Errorf("FamilyCounts total = %d, want %d", total, len(recs))
	}
	if counts["PM"] != 0 {
		t.Errorf("PM count = %d, want 0", counts["PM"])
	}
}
