package grc

import (
	"slices"
	"sort"
	"strings"
)

// Relevance weights. Tag matches signal contextual fit and outweigh technology
// matches; priority only breaks near-ties.
const (
	WeightTag        = 2
	WeightTechnology = 1
	WeightProfile    = 2
)

var priorityBonus = map[Priority]int{P1: 3, P2: 2, P3: 1}

// RecommendationRequest is the input to RecommendControls. When Profile is
// empty or unknown it is resolved from the categorization.
type RecommendationRequest struct {
	Profile        ProfileID      `json:"profile,omitempty"`
	Categorization Categorization `json:"categorization"`
}

// Recommendation is one included control with its relevance annotations
type Recommendation struct {
	Control        Control  `json:"control"`
	FamilyName     string   `json:"family_name"`
	RelevanceScore int      `json:"relevance_score"`
	InheritedFrom  []string `json:"inherited_from"` // technology display names
	IsInherited    bool     `json:"is_inherited"`
	MatchedTags    []string `json:"matched_tags,omitempty"`
}

// ResolveProfile returns the requested profile if the catalogue knows it,
// otherwise the profile determined from the categorization
func (cat *Catalog) ResolveProfile(req RecommendationRequest) ProfileID {
	if _, ok := cat.profiles[req.Profile]; ok {
		return req.Profile
	}
	return cat.DetermineProfile(req.Categorization).Profile.ID
}

// RecommendControls filters, scores and sorts catalogue controls for a project.
// Output is ordered by family code then control id, each control at most once.
func (cat *Catalog) RecommendControls(req RecommendationRequest) []Recommendation {
	c := req.Categorization.Normalized()
	profile := cat.ResolveProfile(RecommendationRequest{Profile: req.Profile, Categorization: c})
	include := cat.inclusion[profile]

	tags := make(map[string]bool)
	for _, t := range ContextTags(c) {
		tags[t] = true
	}
	declared := make(map[string]bool, len(c.Technologies))
	for _, key := range c.Technologies {
		declared[strings.TrimSpace(key)] = true
	}

	recs := make([]Recommendation, 0, len(cat.controls))
	for _, ctrl := range cat.controls {
		rec := Recommendation{InheritedFrom: []string{}}
		for _, key := range ctrl.Inheritance {
			if declared[key] {
				rec.InheritedFrom = append(rec.InheritedFrom, cat.TechnologyName(key))
				rec.RelevanceScore += WeightTechnology
			}
		}
		for _, t := range ctrl.Tags {
			if tags[t] {
				rec.MatchedTags = append(rec.MatchedTags, t)
				rec.RelevanceScore += WeightTag
			}
		}
		rec.RelevanceScore += priorityBonus[ctrl.Priority]

		inProfile := inSet(ctrl.Profiles, include)
		if inProfile {
			rec.RelevanceScore += WeightProfile
		}

		matched := len(rec.InheritedFrom) > 0 || len(rec.MatchedTags) > 0
		if len(include) == 0 {
			if !cat.webBaseline[ctrl.ID] && !matched {
				continue
			}
		} else if !inProfile {
			continue
		}

		rec.Control = ctrl.clone()
		rec.FamilyName = cat.FamilyName(ctrl.Family)
		rec.IsInherited = len(rec.InheritedFrom) > 0
		recs = append(recs, rec)
	}

	SortRecommendations(recs)
	return recs
}

// SortRecommendations orders recommendations by family code then control id
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return lessControl(recs[i].Control.Family, recs[i].Control.ID, recs[j].Control.Family, recs[j].Control.ID)
	})
}

// SortByRelevance orders recommendations by descending score, falling back to
// family and id order
func SortByRelevance(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].RelevanceScore != recs[j].RelevanceScore {
			return recs[i].RelevanceScore > recs[j].RelevanceScore
		}
		return lessControl(recs[i].Control.Family, recs[i].Control.ID, recs[j].Control.Family, recs[j].Control.ID)
	})
}

// FilterInherited returns the recommendations satisfied in part by a declared technology
func FilterInherited(recs []Recommendation) []Recommendation {
	var out []Recommendation
	for _, r := range recs {
		if r.IsInherited {
			out = append(out, r)
		}
	}
	return out
}

func lessControl(famA, idA, famB, idB string) bool {
	if famA != famB {
		return famA < famB
	}
	return CompareControlID(idA, idB) < 0
}

// CompareControlID orders ids lexically, so AC-10 sorts before AC-2
func CompareControlID(a, b string) int {
	return strings.Compare(a, b)
}

// IDs returns the control ids of recs in order
func IDs(recs []Recommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Control.ID
	}
	return ids
}

// Contains reports whether recs include the control id
func Contains(recs []Recommendation, id string) bool {
	return slices.ContainsFunc(recs, func(r Recommendation) bool { return r.Control.ID == id })
}
