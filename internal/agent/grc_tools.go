package agent

import (
	"fmt"
	"strings"

	"google.golang.org/adk/tool"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
)

const defaultControlLimit = 60

// --- Catalogue Tool Input/Output Types ---

// CategorizationParams describes a project for the decision tools
type CategorizationParams struct {
	Confidentiality          string   `json:"confidentiality" jsonschema:"Data classification: unclassified, protected-a, protected-b, protected-c, confidential, secret or top-secret"`
	Integrity                string   `json:"integrity,omitempty" jsonschema:"Integrity impact: low, medium or high (default medium)"`
	Availability             string   `json:"availability,omitempty" jsonschema:"Availability impact: low, medium or high (default medium)"`
	HasPII                   bool     `json:"has_pii,omitempty" jsonschema:"The system collects or stores personal information"`
	IsHighValueAsset         bool     `json:"is_high_value_asset,omitempty" jsonschema:"The system is designated a High Value Asset"`
	HasApplicationComplexity bool     `json:"has_application_complexity,omitempty" jsonschema:"The system has authentication, data stores or integrations"`
	AppType                  string   `json:"app_type,omitempty" jsonschema:"internal, external or hybrid"`
	Technologies             []string `json:"technologies,omitempty" jsonschema:"Technology keys from list_technologies (e.g. entra-id, azure, aws)"`
	Description              string   `json:"description,omitempty" jsonschema:"Free-text project description"`
}

// Categorization converts tool input into the engine's categorization
func (p CategorizationParams) Categorization() grc.Categorization {
	return grc.Categorization{
		Confidentiality:          grc.Confidentiality(p.Confidentiality),
		Integrity:                grc.Level(p.Integrity),
		Availability:             grc.Level(p.Availability),
		HasPII:                   p.HasPII,
		IsHighValueAsset:         p.IsHighValueAsset,
		HasApplicationComplexity: p.HasApplicationComplexity,
		AppType:                  grc.AppType(p.AppType),
		Technologies:             p.Technologies,
		Description:              p.Description,
	}.Normalized()
}

// RequirementResult for assess_saa_requirement tool
type RequirementResult struct {
	Label         string `json:"label"`
	Required      bool   `json:"required"`
	Reason        string `json:"reason"`
	WebGuidance   bool   `json:"web_guidance"`
	GuidanceItems int    `json:"guidance_items,omitempty"`
	NextStep      string `json:"next_step"`
}

// ProfileResult for determine_profile tool
type ProfileResult struct {
	Label          string        `json:"label"`
	ProfileID      grc.ProfileID `json:"profile_id"`
	ProfileName    string        `json:"profile_name"`
	Description    string        `json:"description"`
	BaselineSource string        `json:"baseline_source,omitempty"`
	ApproxControls string        `json:"approx_controls,omitempty"`
	Reason         string        `json:"reason"`
	TailoringNotes []string      `json:"tailoring_notes"`
}

// RecommendParams for recommend_controls tool
type RecommendParams struct {
	CategorizationParams
	Profile       string `json:"profile,omitempty" jsonschema:"Explicit profile ID (e.g. PBMM); determined from the categorization when empty"`
	InheritedOnly bool   `json:"inherited_only,omitempty" jsonschema:"Only return controls satisfied by declared technologies"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum number of controls to return (default 60)"`
}

// FamilyCount is one family in a recommendation summary
type FamilyCount struct {
	Family string `json:"family"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// RecommendedControl is a condensed recommendation
type RecommendedControl struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Family        string       `json:"family"`
	Priority      grc.Priority `json:"priority"`
	Relevance     int          `json:"relevance"`
	InheritedFrom []string     `json:"inherited_from,omitempty"`
	MatchedTags   []string     `json:"matched_tags,omitempty"`
}

// RecommendResult for recommend_controls tool
type RecommendResult struct {
	ProfileID grc.ProfileID        `json:"profile_id"`
	Total     int                  `json:"total"`
	Inherited int                  `json:"inherited"`
	Returned  int                  `json:"returned"`
	Families  []FamilyCount        `json:"families"`
	Controls  []RecommendedControl `json:"controls"`
}

// GetControlParams for get_control_details tool
type GetControlParams struct {
	ControlID string `json:"control_id" jsonschema:"Control ID (e.g., AC-2, IA-2(1))"`
}

// GetControlResult for get_control_details tool
type GetControlResult struct {
	Found        bool        `json:"found"`
	Control      grc.Control `json:"control,omitempty"`
	FamilyName   string      `json:"family_name,omitempty"`
	Technologies []string    `json:"technologies,omitempty"`
}

// ListControlsParams for list_controls tool
type ListControlsParams struct {
	Family  string `json:"family,omitempty" jsonschema:"Family code (e.g. AC, SI) or name (e.g. 'Incident Response')"`
	Profile string `json:"profile,omitempty" jsonschema:"Only controls included in this profile (e.g. PBMM)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of controls to return (default 60)"`
}

// ListControlsResult for list_controls tool
type ListControlsResult struct {
	Count    int                  `json:"count"`
	Total    int                  `json:"total"`
	Controls []grc.ControlSummary `json:"controls"`
}

// ListTechnologiesParams for list_technologies tool
type ListTechnologiesParams struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category (identity, cloud, monitoring, ...)"`
}

// ListTechnologiesResult for list_technologies tool
type ListTechnologiesResult struct {
	Count        int              `json:"count"`
	Technologies []grc.Technology `json:"technologies"`
}

// WebGuidanceParams for web_guidance tool
type WebGuidanceParams struct {
	RequiredOnly bool `json:"required_only,omitempty" jsonschema:"Only return required checklist items"`
}

// WebGuidanceResult for web_guidance tool
type WebGuidanceResult struct {
	Title      string                 `json:"title"`
	Total      int                    `json:"total"`
	Required   int                    `json:"required"`
	Categories []grc.GuidanceCategory `json:"categories"`
}

// --- Catalogue Tool Implementations ---

// catalogTools binds the tool handlers to one catalogue
type catalogTools struct {
	cat *grc.Catalog
}

func (t catalogTools) assessRequirement(ctx tool.Context, params CategorizationParams) (RequirementResult, error) {
	c := params.Categorization()
	req := grc.RequiresFormalAssessment(c)
	res := RequirementResult{
		Label:       c.Label(),
		Required:    req.Required,
		Reason:      req.Reason,
		WebGuidance: req.WebGuidance,
	}
	if req.Required {
		res.NextStep = "Run determine_profile and recommend_controls to build the control baseline."
	} else {
		res.GuidanceItems = t.cat.WebGuidance().TotalCount()
		res.NextStep = "Call web_guidance for the GC web standards checklist."
	}
	return res, nil
}

func (t catalogTools) determineProfile(ctx tool.Context, params CategorizationParams) (ProfileResult, error) {
	c := params.Categorization()
	d := t.cat.DetermineProfile(c)
	return ProfileResult{
		Label:          c.Label(),
		ProfileID:      d.Profile.ID,
		ProfileName:    d.Profile.Name,
		Description:    d.Profile.Description,
		BaselineSource: d.Profile.BaselineSource,
		ApproxControls: d.Profile.ApproxControls,
		Reason:         d.Reason,
		TailoringNotes: d.TailoringNotes,
	}, nil
}

func (t catalogTools) recommendControls(ctx tool.Context, params RecommendParams) (RecommendResult, error) {
	req := grc.RecommendationRequest{
		Profile:        grc.ProfileID(strings.ToUpper(strings.TrimSpace(params.Profile))),
		Categorization: params.Categorization(),
	}
	recs := t.cat.RecommendControls(req)
	res := RecommendResult{
		ProfileID: t.cat.ResolveProfile(req),
		Total:     len(recs),
	}
	for _, r := range recs {
		if r.IsInherited {
			res.Inherited++
		}
	}
	if params.InheritedOnly {
		recs = grc.FilterInherited(recs)
	}
	for _, g := range grc.GroupByFamily(recs) {
		res.Families = append(res.Families, FamilyCount{Family: g.Family, Name: g.FamilyName, Count: len(g.Controls)})
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultControlLimit
	}
	// the most relevant controls survive truncation
	if len(recs) > limit {
		recs = append([]grc.Recommendation(nil), recs...)
		grc.SortByRelevance(recs)
		recs = recs[:limit]
		grc.SortRecommendations(recs)
	}
	for _, r := range recs {
		res.Controls = append(res.Controls, RecommendedControl{
			ID:            r.Control.ID,
			Title:         r.Control.Title,
			Family:        r.Control.Family,
			Priority:      r.Control.Priority,
			Relevance:     r.RelevanceScore,
			InheritedFrom: r.InheritedFrom,
			MatchedTags:   r.MatchedTags,
		})
	}
	res.Returned = len(res.Controls)
	return res, nil
}

func (t catalogTools) getControlDetails(ctx tool.Context, params GetControlParams) (GetControlResult, error) {
	ctrl, ok := t.cat.Control(strings.ToUpper(strings.TrimSpace(params.ControlID)))
	if !ok {
		return GetControlResult{Found: false}, nil
	}
	res := GetControlResult{
		Found:      true,
		Control:    ctrl,
		FamilyName: t.cat.FamilyName(ctrl.Family),
	}
	for _, key := range ctrl.Inheritance {
		res.Technologies = append(res.Technologies, t.cat.TechnologyName(key))
	}
	return res, nil
}

// resolveFamily accepts a family code or a case-insensitive family name
func (t catalogTools) resolveFamily(family string) string {
	family = strings.TrimSpace(family)
	if family == "" {
		return ""
	}
	for _, f := range t.cat.Families() {
		if strings.EqualFold(f.Code, family) || strings.EqualFold(f.Name, family) {
			return f.Code
		}
	}
	return strings.ToUpper(family)
}

func (t catalogTools) listControls(ctx tool.Context, params ListControlsParams) (ListControlsResult, error) {
	profile := grc.ProfileID(strings.ToUpper(strings.TrimSpace(params.Profile)))
	if profile != "" {
		if _, ok := t.cat.Profile(profile); !ok {
			return ListControlsResult{}, fmt.Errorf("unknown profile %q", params.Profile)
		}
	}
	controls := t.cat.Controls(t.resolveFamily(params.Family), profile)

	limit := params.Limit
	if limit <= 0 {
		limit = defaultControlLimit
	}
	res := ListControlsResult{Total: len(controls), Controls: []grc.ControlSummary{}}
	for i, c := range controls {
		if i >= limit {
			break
		}
		res.Controls = append(res.Controls, c.ToSummary())
	}
	res.Count = len(res.Controls)
	return res, nil
}

func (t catalogTools) listTechnologies(ctx tool.Context, params ListTechnologiesParams) (ListTechnologiesResult, error) {
	res := ListTechnologiesResult{Technologies: []grc.Technology{}}
	for _, tech := range t.cat.Technologies() {
		if params.Category != "" && !strings.EqualFold(tech.Category, params.Category) {
			continue
		}
		res.Technologies = append(res.Technologies, tech)
	}
	res.Count = len(res.Technologies)
	return res, nil
}

func (t catalogTools) webGuidance(ctx tool.Context, params WebGuidanceParams) (WebGuidanceResult, error) {
	g := t.cat.WebGuidance()
	res := WebGuidanceResult{
		Title:    g.Summary.Title,
		Total:    g.TotalCount(),
		Required: g.RequiredCount(),
	}
	for _, cat := range g.Categories {
		if params.RequiredOnly {
			var items []grc.GuidanceItem
			for _, item := range cat.Items {
				if item.Required {
					items = append(items, item)
				}
			}
			if len(items) == 0 {
				continue
			}
			cat.Items = items
		}
		res.Categories = append(res.Categories, cat)
	}
	return res, nil
}
