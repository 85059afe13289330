package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ethanolivertroy/saa-tui/internal/agent"
	"github.com/ethanolivertroy/saa-tui/internal/chat"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/llm"
	"github.com/ethanolivertroy/saa-tui/internal/report"
)

// AgentOptions configures RunAgent
type AgentOptions struct {
	Catalog     *grc.Catalog
	Assessments agent.Assessments
	LLM         llm.Config
	Project     *chat.Project // optional project context
	Out         io.Writer
	Raw         bool
}

// llmSetupError adds provider setup hints to a config error
func llmSetupError(cfg llm.Config, err error) error {
	switch cfg.Provider {
	case llm.ProviderGemini, "":
		return fmt.Errorf("LLM configuration error: %w\n\nFor Gemini, set:\n  export GEMINI_API_KEY=your-api-key\n\nFor Ollama (local), set:\n  export LLM_PROVIDER=ollama", err)
	case llm.ProviderVertex:
		return fmt.Errorf("LLM configuration error: %w\n\nFor Vertex AI, set VERTEX_PROJECT and VERTEX_LOCATION", err)
	}
	return fmt.Errorf("LLM configuration error: %w", err)
}

// RunAgent answers a one-shot query when args are given, otherwise opens
// the interactive chat
func RunAgent(ctx context.Context, opts AgentOptions, args []string) error {
	if err := opts.LLM.Validate(); err != nil {
		return llmSetupError(opts.LLM, err)
	}

	fmt.Fprintf(opts.Out, "Initializing SA&A assessor (%s)...\n", opts.LLM.Describe())
	assessor, err := agent.New(ctx, opts.Catalog, opts.Assessments, opts.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	if len(args) == 0 {
		m := chat.NewModel(ctx, assessor).WithProject(opts.Project)
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrUsage)
	}
	response, err := assessor.Query(ctx, chat.EnrichQuery(opts.Project, query))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if opts.Raw {
		_, err = fmt.Fprintln(opts.Out, response)
		return err
	}
	out, err := report.Terminal(response, defaultWidth)
	if err != nil {
		out = response + "\n"
	}
	_, err = io.WriteString(opts.Out, out)
	return err
}
