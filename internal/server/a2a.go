// Package server exposes the SA&A assessor over the A2A protocol
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/web"
	"google.golang.org/adk/cmd/launcher/web/a2a"
	"google.golang.org/adk/session"

	"github.com/ethanolivertroy/saa-tui/internal/agent"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/llm"
)

// DefaultPort is the A2A listen port when none is configured
const DefaultPort = 8001

// A2AConfig holds configuration for the A2A server
type A2AConfig struct {
	Port        int
	Host        string
	LLMConfig   llm.Config
	Catalog     *grc.Catalog
	Assessments agent.Assessments
	Logger      *slog.Logger
}

// Validate checks the config before any model is created
func (c A2AConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Catalog == nil {
		return fmt.Errorf("no control catalogue")
	}
	if err := c.LLMConfig.Validate(); err != nil {
		return fmt.Errorf("invalid LLM config: %w", err)
	}
	return nil
}

// launcherArgs are the flags passed to the ADK web launcher
func (c A2AConfig) launcherArgs() []string {
	return []string{"--port", strconv.Itoa(c.Port)}
}

// baseURL is where clients reach the server
func (c A2AConfig) baseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

// RunA2AServer serves the assessor until ctx is cancelled
func RunA2AServer(ctx context.Context, cfg A2AConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	assessor, err := agent.New(ctx, cfg.Catalog, cfg.Assessments, cfg.LLMConfig)
	if err != nil {
		return fmt.Errorf("failed to create assessor: %w", err)
	}

	webLauncher := web.NewLauncher(a2a.NewLauncher())
	if _, err := webLauncher.Parse(cfg.launcherArgs()); err != nil {
		return fmt.Errorf("failed to parse launcher args: %w", err)
	}

	base := cfg.baseURL()
	logger.Info("A2A server starting",
		"port", cfg.Port,
		"agent_card", base+"/.well-known/agent-card.json",
		"endpoint", base+"/a2a",
		"llm", cfg.LLMConfig.Describe(),
		"catalog", cfg.Catalog.Version(),
	)

	return webLauncher.Run(ctx, &launcher.Config{
		AgentLoader:    adkagent.NewSingleLoader(assessor.Agent()),
		SessionService: session.InMemoryService(),
	})
}
