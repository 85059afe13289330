package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ethanolivertroy/saa-tui/cmd"
	"github.com/ethanolivertroy/saa-tui/internal/chat"
	"github.com/ethanolivertroy/saa-tui/internal/config"
	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/intake"
	"github.com/ethanolivertroy/saa-tui/internal/report"
	"github.com/ethanolivertroy/saa-tui/internal/server"
	"github.com/ethanolivertroy/saa-tui/internal/store"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error onto the documented process exit codes
func exitCode(err error) int {
	var ee *exitErr
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, grc.ErrInvalidCatalog):
		return 3
	case errors.Is(err, cmd.ErrUsage), errors.Is(err, intake.ErrInvalidIntake):
		return 2
	}
	return 1
}

// usageArgs wraps a cobra argument validator so its failures exit 2
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := check(c, args); err != nil {
			return fmt.Errorf("%w: %w", cmd.ErrUsage, err)
		}
		return nil
	}
}

// globalFlags holds the persistent flags shared by every command
type globalFlags struct {
	dbPath   string
	catalog  string
	logLevel string
	raw      bool
}

// env is what PersistentPreRunE prepares for the subcommands
type env struct {
	cfg     config.Config
	catalog *grc.Catalog
	logger  *slog.Logger
	stdout  io.Writer
	raw     bool
}

func (e *env) app() *cmd.App {
	return &cmd.App{
		Catalog: e.catalog,
		DBPath:  e.cfg.DBPath,
		Out:     e.stdout,
		Logger:  e.logger,
		Raw:     e.raw,
	}
}

// openStore opens the assessment database for the interactive commands.
// They still work without it, so a failure is only logged.
func (e *env) openStore(ctx context.Context) (*store.Store, func()) {
	s, err := store.Open(ctx, e.cfg.DBPath)
	if err != nil {
		e.logger.Warn("assessment store unavailable", "path", e.cfg.DBPath, "error", err)
		return nil, func() {}
	}
	return s, func() { _ = s.Close() }
}

// loadProject reads an optional intake file into chat project context
func loadProject(path string) (*chat.Project, error) {
	if path == "" {
		return nil, nil
	}
	in, err := intake.Load(path)
	if err != nil {
		return nil, err
	}
	return &chat.Project{Name: in.ProjectName, Categorization: in.Categorization()}, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags globalFlags
	e := &env{stdout: stdout}

	root := &cobra.Command{
		Use:   "saa-tui [intake-file]",
		Short: "Security Assessment and Authorization assistant for ITSG-33",
		Long: "saa-tui determines whether a Government of Canada project needs a formal SA&A,\n" +
			"selects its CCCS security profile, recommends controls and tracks the assessment\n" +
			"through to an authorization decision.",
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			f := c.Flags()
			if f.Changed("db") {
				cfg.DBPath = flags.dbPath
			}
			if f.Changed("catalog") {
				cfg.CatalogPath = flags.catalog
			}
			if f.Changed("log-level") {
				cfg.LogLevel = strings.ToLower(flags.logLevel)
			}
			if err := cfg.Validate(); err != nil {
				return codeError(2, "invalid configuration: %w", err)
			}
			e.cfg = cfg
			e.raw = flags.raw
			e.logger = cfg.NewLogger(stderr)
			slog.SetDefault(e.logger)

			var cat *grc.Catalog
			var err error
			if cfg.CatalogPath != "" {
				cat, err = grc.LoadFile(cfg.CatalogPath)
			} else {
				cat, err = grc.Default()
			}
			if err != nil {
				return err
			}
			e.catalog = cat
			e.logger.Debug("catalogue loaded", "version", cat.Version(), "controls", cat.Size())
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runBrowse(c.Context(), e, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dbPath, "db", config.DefaultDBPath, "Assessment database path (SAA_DB_PATH)")
	pf.StringVar(&flags.catalog, "catalog", "", "Control catalogue YAML, empty for the built-in one (SAA_CATALOG_PATH)")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error (SAA_LOG_LEVEL)")
	pf.BoolVar(&flags.raw, "raw", false, "Print Markdown source instead of rendering it")

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", cmd.ErrUsage, err)
	})

	root.AddCommand(
		newBrowseCmd(e),
		newAssessCmd(e),
		newProfileCmd(e),
		newCatalogCmd(e),
		newGuidanceCmd(e),
		newAssessmentCmd(e),
		newAgentCmd(e),
		newServeCmd(e),
		newVersionCmd(stdout),
	)
	return root
}

func runBrowse(ctx context.Context, e *env, args []string) error {
	opts := cmd.BrowseOptions{
		Catalog: e.catalog,
		LLM:     e.cfg.LLM,
	}
	if len(args) == 1 {
		in, err := intake.Load(args[0])
		if err != nil {
			return err
		}
		opts.ProjectName = in.ProjectName
		opts.Categorization = in.Categorization()
	}
	s, closeStore := e.openStore(ctx)
	defer closeStore()
	if s != nil {
		opts.Assessments = s
	}
	return cmd.RunBrowse(ctx, opts)
}

func newBrowseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [intake-file]",
		Short: "Browse the recommended control baseline interactively",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(c *cobra.Command, args []string) error {
			return runBrowse(c.Context(), e, args)
		},
	}
}

func newAssessCmd(e *env) *cobra.Command {
	var format string
	var save bool
	c := &cobra.Command{
		Use:   "assess <intake-file>",
		Short: "Produce the intake report for a project",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(c *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %w", cmd.ErrUsage, err)
			}
			return e.app().Assess(c.Context(), args[0], f, save)
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown, json or csv")
	c.Flags().BoolVar(&save, "save", false, "Start a tracked assessment from the report")
	return c
}

func newProfileCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <intake-file>",
		Short: "Show the SA&A requirement and security profile for a project",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.app().Profile(args[0])
		},
	}
}

func newCatalogCmd(e *env) *cobra.Command {
	var family, profile string
	var technologies bool
	c := &cobra.Command{
		Use:   "catalog",
		Short: "List catalogue controls or technologies",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			if technologies {
				return e.app().ListTechnologies()
			}
			return e.app().ListControls(family, profile)
		},
	}
	c.Flags().StringVar(&family, "family", "", "Only controls in this family code, e.g. AC")
	c.Flags().StringVar(&profile, "profile", "", "Only controls in this profile, e.g. PBMM")
	c.Flags().BoolVar(&technologies, "technologies", false, "List technologies with inherited controls instead")
	return c
}

func newGuidanceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "guidance",
		Short: "Print the web security checklist for projects without a formal SA&A",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			return e.app().Guidance()
		},
	}
}

func newAssessmentCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:     "assessment",
		Aliases: []string{"assessments"},
		Short:   "Track saved assessments from evidence to decision",
	}

	var pendingOnly bool
	controls := &cobra.Command{
		Use:   "controls <id>",
		Short: "List an assessment's controls",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(c *cobra.Command, args []string) error {
			return e.app().ListAssessmentControls(c.Context(), args[0], pendingOnly)
		},
	}
	controls.Flags().BoolVar(&pendingOnly, "pending", false, "Only applicable controls without an audit result")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved assessments",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(c *cobra.Command, _ []string) error {
				return e.app().ListAssessments(c.Context())
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show an assessment's status report",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().ShowAssessment(c.Context(), args[0])
			},
		},
		controls,
		&cobra.Command{
			Use:   "evidence <id> <control> <text...>",
			Short: "Record implementation evidence for a control",
			Args:  usageArgs(cobra.MinimumNArgs(3)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().RecordEvidence(c.Context(), args[0], args[1], strings.Join(args[2:], " "))
			},
		},
		&cobra.Command{
			Use:   "audit <id> <control> <met|partially-met|not-met> [comments...]",
			Short: "Record the assessor's finding for a control",
			Args:  usageArgs(cobra.MinimumNArgs(3)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().RecordAudit(c.Context(), args[0], args[1], args[2], strings.Join(args[3:], " "))
			},
		},
		&cobra.Command{
			Use:   "applicable <id> <control> <true|false>",
			Short: "Mark a control applicable or not applicable",
			Args:  usageArgs(cobra.ExactArgs(3)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().SetApplicable(c.Context(), args[0], args[1], args[2])
			},
		},
		&cobra.Command{
			Use:   "add <id> <control>",
			Short: "Add a catalogue control to an assessment",
			Args:  usageArgs(cobra.ExactArgs(2)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().AddControl(c.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "remove <id> <control>",
			Short: "Remove a control from an assessment",
			Args:  usageArgs(cobra.ExactArgs(2)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().RemoveControl(c.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "transition <id> <status>",
			Short: "Move an assessment to another status",
			Args:  usageArgs(cobra.ExactArgs(2)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().Transition(c.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "complete <id>",
			Short: "Record the authorization decision",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().Complete(c.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "letter <id>",
			Short: "Print the authorization letter for a completed assessment",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().Letter(c.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a saved assessment",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: func(c *cobra.Command, args []string) error {
				return e.app().DeleteAssessment(c.Context(), args[0])
			},
		},
	)
	return root
}

func newAgentCmd(e *env) *cobra.Command {
	var intakePath string
	c := &cobra.Command{
		Use:   "agent [query...]",
		Short: "Ask the SA&A assessor, or open the chat when no query is given",
		RunE: func(c *cobra.Command, args []string) error {
			project, err := loadProject(intakePath)
			if err != nil {
				return err
			}
			opts := cmd.AgentOptions{
				Catalog: e.catalog,
				LLM:     e.cfg.LLM,
				Project: project,
				Out:     e.stdout,
				Raw:     e.raw,
			}
			s, closeStore := e.openStore(c.Context())
			defer closeStore()
			if s != nil {
				opts.Assessments = s
			}
			return cmd.RunAgent(c.Context(), opts, args)
		},
	}
	c.Flags().StringVar(&intakePath, "intake", "", "Intake file giving the assessor project context")
	return c
}

func newServeCmd(e *env) *cobra.Command {
	var port int
	var host string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessor over the A2A protocol",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := server.A2AConfig{
				Port:      port,
				Host:      host,
				LLMConfig: e.cfg.LLM,
				Catalog:   e.catalog,
				Logger:    e.logger,
			}
			s, closeStore := e.openStore(c.Context())
			defer closeStore()
			if s != nil {
				cfg.Assessments = s
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", cmd.ErrUsage, err)
			}
			return cmd.RunServe(c.Context(), cfg)
		},
	}
	c.Flags().IntVar(&port, "port", server.DefaultPort, "Port to listen on")
	c.Flags().StringVar(&host, "host", "127.0.0.1", "Host interface to bind")
	return c
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		// no catalogue or config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(stdout, "saa-tui %s\n", version)
			return err
		},
	}
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
