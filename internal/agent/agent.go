package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/llm"
)

// AppName identifies the agent's sessions
const AppName = "saa-tui"

// SystemInstruction for the SA&A assessor
const SystemInstruction = `You are an ITSG-33 Security Assessment and Authorization (SA&A) advisor for Government of Canada projects.

CRITICAL BEHAVIOR - Be action-oriented:
- When a user describes a project, IMMEDIATELY call assess_saa_requirement with what you know
- Assume medium integrity and availability when they are not stated
- Do NOT ask clarifying questions if you can make a reasonable assumption; state the assumption instead
- USE YOUR TOOLS FIRST, then explain the results

Examples of how to handle queries:
- "we're building a Protected B case management app on Azure" → assess_saa_requirement, then determine_profile and recommend_controls(technologies=["azure"])
- "static landing page, no forms" → assess_saa_requirement(confidentiality="unclassified") then web_guidance
- "explain AC-2" → get_control_details(control_id="AC-2")
- "show incident response controls for PBMM" → list_controls(family="IR", profile="PBMM")
- "how is assessment X going?" → assessment_status(assessment_id="X")

Your tools:
- assess_saa_requirement: Is a formal SA&A needed, or only web guidance?
- determine_profile: Which ITSG-33 profile applies and why
- recommend_controls: The control baseline with relevance and technology inheritance
- get_control_details: Details and evidence guidance for one control
- list_controls: Controls by family and profile
- list_technologies: Technology keys a project can declare
- web_guidance: GC web standards checklist
- assessment_status: Saved assessments and their progress (when available)

When presenting results:
- Lead with the decision (SA&A required or not, profile, control count)
- Highlight P1 controls and what each inherited technology covers
- Note that inherited controls still need the project's own evidence
- Use markdown for clarity

Only redirect to SA&A topics if the query is completely unrelated to security.`

// Assessor wraps the ADK agent with the SA&A tools
type Assessor struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	// Session tracking for multi-turn conversations
	userID     string
	sessionID  string
	hasSession bool
}

// New creates an assessor over cat. assessments may be nil, in which case
// the agent has no access to saved assessments.
func New(ctx context.Context, cat *grc.Catalog, assessments Assessments, cfg llm.Config) (*Assessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tools, err := CreateTools(cat, assessments)
	if err != nil {
		return nil, fmt.Errorf("failed to create tools: %w", err)
	}

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM model: %w", err)
	}

	assessor, err := llmagent.New(llmagent.Config{
		Name:        "saa_assessor",
		Description: "ITSG-33 SA&A advisor: decides whether a project needs an assessment, picks its profile and recommends controls",
		Model:       model,
		Instruction: SystemInstruction,
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessionSvc := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        AppName,
		Agent:          assessor,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &Assessor{
		agent:          assessor,
		runner:         r,
		sessionService: sessionSvc,
	}, nil
}

// Agent returns the underlying ADK agent for use with launchers
func (a *Assessor) Agent() agent.Agent {
	return a.agent
}

// Query answers a single question in a fresh session
func (a *Assessor) Query(ctx context.Context, query string) (string, error) {
	resp, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   AppName,
		UserID:    "user",
		SessionID: "query-" + uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return a.run(ctx, resp.Session.UserID(), resp.Session.ID(), query)
}

// Chat sends a query in a persistent session. The first call creates the
// session and later calls reuse it until ClearSession.
func (a *Assessor) Chat(ctx context.Context, query string) (string, error) {
	if !a.hasSession {
		resp, err := a.sessionService.Create(ctx, &session.CreateRequest{
			AppName:   AppName,
			UserID:    "chat-user",
			SessionID: "chat-" + uuid.NewString(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		a.userID = resp.Session.UserID()
		a.sessionID = resp.Session.ID()
		a.hasSession = true
	}
	return a.run(ctx, a.userID, a.sessionID, query)
}

func (a *Assessor) run(ctx context.Context, userID, sessionID, query string) (string, error) {
	userMsg := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(query)},
	}

	var response strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, userMsg, agent.RunConfig{}) {
		if err != nil {
			return "", fmt.Errorf("agent error: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part.Text != "" {
				response.WriteString(part.Text)
			}
		}
	}
	return response.String(), nil
}

// ClearSession drops the chat session; the next Chat starts fresh
func (a *Assessor) ClearSession() {
	a.hasSession = false
	a.userID = ""
	a.sessionID = ""
}
