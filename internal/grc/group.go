package grc

// FamilyGroup is a family heading and its controls
type FamilyGroup struct {
	Family     string           `json:"family"`
	FamilyName string           `json:"family_name"`
	Controls   []Recommendation `json:"controls"`
}

// GroupByFamily partitions recs by family code. Groups appear in the order
// their family is first seen in recs, so sorted input yields groups in family
// code order. Every recommendation lands in exactly one group.
func GroupByFamily(recs []Recommendation) []FamilyGroup {
	var groups []FamilyGroup
	index := make(map[string]int)
	for _, r := range recs {
		i, ok := index[r.Control.Family]
		if !ok {
			i = len(groups)
			index[r.Control.Family] = i
			name := r.FamilyName
			if name == "" {
				name = r.Control.Family
			}
			groups = append(groups, FamilyGroup{Family: r.Control.Family, FamilyName: name})
		}
		groups[i].Controls = append(groups[i].Controls, r)
	}
	return groups
}

// FamilyCounts returns the number of recommendations per family code
func FamilyCounts(recs []Recommendation) map[string]int {
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Control.Family]++
	}
	return counts
}
