package agent

import (
	"context"
	"fmt"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/ethanolivertroy/saa-tui/internal/assessment"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/store"
)

// Assessments is the read side of the assessment store used by the agent
type Assessments interface {
	Get(ctx context.Context, id string) (*assessment.Assessment, error)
	List(ctx context.Context) ([]store.Summary, error)
}

// AssessmentStatusParams for assessment_status tool
type AssessmentStatusParams struct {
	AssessmentID string `json:"assessment_id,omitempty" jsonschema:"Assessment ID; lists all assessments when empty"`
}

// OpenControl is an applicable control that still needs work
type OpenControl struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	AuditResult assessment.AuditResult `json:"audit_result"`
	HasEvidence bool                   `json:"has_evidence"`
}

// AssessmentStatusResult for assessment_status tool
type AssessmentStatusResult struct {
	Assessments  []store.Summary      `json:"assessments,omitempty"`
	ID           string               `json:"id,omitempty"`
	ProjectName  string               `json:"project_name,omitempty"`
	Status       assessment.Status    `json:"status,omitempty"`
	ProfileID    grc.ProfileID        `json:"profile_id,omitempty"`
	Stats        *assessment.Stats    `json:"stats,omitempty"`
	Score        int                  `json:"score"`
	Decision     *assessment.Decision `json:"decision,omitempty"`
	OpenControls []OpenControl        `json:"open_controls,omitempty"`
}

const maxOpenControls = 25

type assessmentTools struct {
	store Assessments
}

func (t assessmentTools) status(ctx tool.Context, params AssessmentStatusParams) (AssessmentStatusResult, error) {
	if params.AssessmentID == "" {
		list, err := t.store.List(ctx)
		if err != nil {
			return AssessmentStatusResult{}, fmt.Errorf("failed to list assessments: %w", err)
		}
		return AssessmentStatusResult{Assessments: list}, nil
	}

	a, err := t.store.Get(ctx, params.AssessmentID)
	if err != nil {
		return AssessmentStatusResult{}, err
	}
	stats := a.Stats()
	res := AssessmentStatusResult{
		ID:          a.ID,
		ProjectName: a.ProjectName,
		Status:      a.Status,
		ProfileID:   a.ProfileID,
		Stats:       &stats,
		Score:       stats.Score(),
		Decision:    a.Decision,
	}
	for _, rec := range a.Controls {
		if !rec.Applicable || rec.AuditResult == assessment.AuditMet {
			continue
		}
		if len(res.OpenControls) == maxOpenControls {
			break
		}
		res.OpenControls = append(res.OpenControls, OpenControl{
			ID:          rec.ControlID,
			Title:       rec.Title,
			AuditResult: rec.AuditResult,
			HasEvidence: rec.EvidenceText != "",
		})
	}
	return res, nil
}

// CreateTools creates the catalogue tools, plus assessment_status when an
// assessment store is given
func CreateTools(cat *grc.Catalog, assessments Assessments) ([]tool.Tool, error) {
	if cat == nil {
		return nil, fmt.Errorf("no control catalogue")
	}
	ct := catalogTools{cat: cat}

	requirementTool, err := functiontool.New(
		functiontool.Config{
			Name:        "assess_saa_requirement",
			Description: "Decide whether a project needs a formal Security Assessment and Authorization or only the GC web guidance checklist, from its data classification and description.",
		},
		ct.assessRequirement,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assess_saa_requirement tool: %w", err)
	}

	profileTool, err := functiontool.New(
		functiontool.Config{
			Name:        "determine_profile",
			Description: "Determine the ITSG-33 security control profile (e.g. PBMM, PB_HIGH, SECRET) for a project's categorization, with the reasoning and tailoring notes.",
		},
		ct.determineProfile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create determine_profile tool: %w", err)
	}

	recommendTool, err := functiontool.New(
		functiontool.Config{
			Name:        "recommend_controls",
			Description: "Build the recommended control baseline for a project: profile controls scored for relevance, with controls partially inherited from declared technologies.",
		},
		ct.recommendControls,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommend_controls tool: %w", err)
	}

	controlTool, err := functiontool.New(
		functiontool.Config{
			Name:        "get_control_details",
			Description: "Get details about an ITSG-33 security control including description, profiles, inheritance and evidence guidance.",
		},
		ct.getControlDetails,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create get_control_details tool: %w", err)
	}

	listTool, err := functiontool.New(
		functiontool.Config{
			Name:        "list_controls",
			Description: "List catalogue controls, optionally filtered by family (code or name) and profile.",
		},
		ct.listControls,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list_controls tool: %w", err)
	}

	techTool, err := functiontool.New(
		functiontool.Config{
			Name:        "list_technologies",
			Description: "List the technologies a project can declare; declared technologies partially satisfy some controls.",
		},
		ct.listTechnologies,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list_technologies tool: %w", err)
	}

	guidanceTool, err := functiontool.New(
		functiontool.Config{
			Name:        "web_guidance",
			Description: "Get the GC web standards checklist for projects that do not need a formal SA&A.",
		},
		ct.webGuidance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create web_guidance tool: %w", err)
	}

	tools := []tool.Tool{requirementTool, profileTool, recommendTool, controlTool, listTool, techTool, guidanceTool}

	if assessments != nil {
		at := assessmentTools{store: assessments}
		statusTool, err := functiontool.New(
			functiontool.Config{
				Name:        "assessment_status",
				Description: "Show saved assessments, or one assessment's progress, compliance score, decision and open controls.",
			},
			at.status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create assessment_status tool: %w", err)
		}
		tools = append(tools, statusTool)
	}

	return tools, nil
}
