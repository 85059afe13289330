package grc

import (
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var sampleDescriptions = []string{
	"",
	"static informational page, no forms",
	"Public portal with login and a PostgreSQL database",
	"Internal API integration with the HR system",
	"Mobile BYOD field app over wireless",
	"Collects personal information from applicants",
	"Brochure site",
}

func genCategorization() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(Unclassified, ProtectedA, ProtectedB, ProtectedC, Confidential, Secret, TopSecret, Confidentiality("restricted")),
		gen.OneConstOf(Low, Medium, High, Level("moderate")),
		gen.OneConstOf(Low, Medium, High, Level("critical")),
		gen.Bool(),
		gen.Bool(),
		gen.OneConstOf(AppInternal, AppExternal, AppHybrid, AppType("")),
		gen.SliceOfN(3, gen.OneConstOf("entra-id", "mfa", "aws", "siem-sentinel", "waf", "key-vault", "unknown-tech")),
		gen.IntRange(0, len(sampleDescriptions)-1),
	).Map(func(v []interface{}) Categorization {
		return Categorization{
			Confidentiality:  v[0].(Confidentiality),
			Integrity:        v[1].(Level),
			Availability:     v[2].(Level),
			HasPII:           v[3].(bool),
			IsHighValueAsset: v[4].(bool),
			AppType:          v[5].(AppType),
			Technologies:     v[6].([]string),
			Description:      sampleDescriptions[v[7].(int)],
		}
	})
}

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

// TestEngineDeterminism verifies repeated calls return identical results.
func TestEngineDeterminism(t *testing.T) {
	cat := mustDefault(t)
	properties := newProperties()

	properties.Property("DetermineProfile is deterministic", prop.ForAll(
		func(c Categorization) bool {
			return reflect.DeepEqual(cat.DetermineProfile(c), cat.DetermineProfile(c))
		},
		genCategorization(),
	))

	properties.Property("RecommendControls is deterministic", prop.ForAll(
		func(c Categorization) bool {
			req := RecommendationRequest{Categorization: c}
			return reflect.DeepEqual(cat.RecommendControls(req), cat.RecommendControls(req))
		},
		genCategorization(),
	))

	properties.TestingRun(t)
}

// TestNestedProfileMonotonicity verifies CCCS_LOW controls survive into every profile nesting it.
func TestNestedProfileMonotonicity(t *testing.T) {
	cat := mustDefault(t)
	var lowIDs []string
	for _, ctrl := range cat.controls {
		if ctrl.InProfile(ProfileCCCSLow) {
			lowIDs = append(lowIDs, ctrl.ID)
		}
	}
	properties := newProperties()

	properties.Property("CCCS_LOW controls are included by higher nested profiles", prop.ForAll(
		func(c Categorization, profile ProfileID) bool {
			recs := cat.RecommendControls(RecommendationRequest{Profile: profile, Categorization: c})
			for _, id := range lowIDs {
				if !Contains(recs, id) {
					return false
				}
			}
			return true
		},
		genCategorization(),
		gen.OneConstOf(ProfilePBMM, ProfilePBMMHVA, ProfileSecretMM),
	))

	properties.Property("each nesting step adds controls and drops none", prop.ForAll(
		func(c Categorization) bool {
			chain := []ProfileID{ProfileCCCSLow, ProfilePBMM, ProfilePBMMHVA, ProfileSecretMM}
			prev := cat.RecommendControls(RecommendationRequest{Profile: chain[0], Categorization: c})
			for _, p := range chain[1:] {
				next := cat.RecommendControls(RecommendationRequest{Profile: p, Categorization: c})
				if len(next) <= len(prev) {
					return false
				}
				for _, r := range prev {
					if !Contains(next, r.Control.ID) {
						return false
					}
				}
				prev = next
			}
			return true
		},
		genCategorization(),
	))

	properties.TestingRun(t)
}

// TestRecommendationsUniqueAndSorted verifies no duplicates, bounded size and ordering.
func TestRecommendationsUniqueAndSorted(t *testing.T) {
	cat := mustDefault(t)
	properties := newProperties()

	properties.Property("no duplicate controls and never more than the catalogue", prop.ForAll(
		func(c Categorization) bool {
			recs := cat.RecommendControls(RecommendationRequest{Categorization: c})
			if len(recs) > cat.Size() {
				return false
			}
			seen := make(map[string]bool, len(recs))
			for _, r := range recs {
				if seen[r.Control.ID] {
					return false
				}
				seen[r.Control.ID] = true
			}
			return true
		},
		genCategorization(),
	))

	properties.Property("output order ignores catalogue order", prop.ForAll(
		func(c Categorization, seed int64) bool {
			shuffled := *cat
			shuffled.controls = slices.Clone(cat.controls)
			rand.New(rand.NewSource(seed)).Shuffle(len(shuffled.controls), func(i, j int) {
				shuffled.controls[i], shuffled.controls[j] = shuffled.controls[j], shuffled.controls[i]
			})
			req := RecommendationRequest{Categorization: c}
			return reflect.DeepEqual(cat.RecommendControls(req), shuffled.RecommendControls(req))
		},
		genCategorization(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestGroupingPartitions verifies grouping loses and duplicates nothing.
func TestGroupingPartitions(t *testing.T) {
	cat := mustDefault(t)
	properties := newProperties()

	properties.Property("groups partition the recommendations", prop.ForAll(
		func(c Categorization) bool {
			recs := cat.RecommendControls(RecommendationRequest{Categorization: c})
			groups := GroupByFamily(recs)
			var flat []string
			families := make(map[string]bool)
			for _, g := range groups {
				if families[g.Family] {
					return false
				}
				families[g.Family] = true
				for _, r := range g.Controls {
					if r.Control.Family != g.Family {
						return false
					}
					flat = append(flat, r.Control.ID)
				}
			}
			return slices.Equal(flat, IDs(recs))
		},
		genCategorization(),
	))

	properties.TestingRun(t)
}

// TestGateDeterminerConsistency verifies the NONE profile is only reached when
// the gate does not require a formal assessment.
func TestGateDeterminerConsistency(t *testing.T) {
	cat := mustDefault(t)
	properties := newProperties()

	properties.Property("NONE profile iff gate says not required", prop.ForAll(
		func(c Categorization) bool {
			required := RequiresFormalAssessment(c).Required
			profile := cat.DetermineProfile(c).Profile
			return required == (profile.ID != ProfileNone) && required == profile.RequiresAssessment
		},
		genCategorization(),
	))

	properties.TestingRun(t)
}
