// Package cmd wires the waflow command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/internal/config"
	"github.com/goliatone/go-waflow/internal/observability"
	"github.com/goliatone/go-waflow/internal/source"
	"github.com/goliatone/go-waflow/pkg/assistant"
	"github.com/goliatone/go-waflow/pkg/preview/tui"
)

// Version info set by the main package.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// App holds what the commands share once flags and configuration are
// resolved.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	loader *source.Loader

	cfgFile string
	verbose bool

	stdin        io.Reader
	newCompleter func(*config.Config) (assistant.Completer, error)
	newDriver    func(out io.Writer) tui.PromptDriver
}

// Option customises the App, mostly for tests.
type Option func(*App)

// WithStdin replaces os.Stdin for "-" sources.
func WithStdin(r io.Reader) Option {
	return func(a *App) {
		a.stdin = r
	}
}

// WithCompleter replaces the Anthropic completer.
func WithCompleter(completer assistant.Completer) Option {
	return func(a *App) {
		a.newCompleter = func(*config.Config) (assistant.Completer, error) {
			return completer, nil
		}
	}
}

// WithPromptDriver replaces the survey driver of the interactive simulator.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(a *App) {
		a.newDriver = func(io.Writer) tui.PromptDriver {
			return driver
		}
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	app := &App{
		stdin: os.Stdin,
		newCompleter: func(cfg *config.Config) (assistant.Completer, error) {
			return assistant.NewAnthropicCompleter(cfg.AnthropicConfig())
		},
		newDriver: func(out io.Writer) tui.PromptDriver {
			return tui.NewSurveyDriver(out)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	root := &cobra.Command{
		Use:   "waflow",
		Short: "Validate, simulate and preview WhatsApp Flow documents",
		Long: `waflow works with WhatsApp Flow JSON documents.

It validates them against a configurable ruleset, walks through them in a
terminal simulator, renders screen previews and drafts flows with an LLM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default ./waflow.yaml)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.String("level", "", "validation level: lenient, standard or strict")
	flags.String("ruleset", "", "bundled ruleset preset (v7.1, legacy)")
	flags.String("ruleset-file", "", "YAML ruleset file")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCommand(app),
		newFmtCommand(app),
		newSimulateCommand(app),
		newPreviewCommand(app),
		newRulesCommand(app),
		newGenerateCommand(app),
		newEditCommand(app),
		newAnalyzeCommand(app),
		newScreenshotCommand(app),
		newVersionCommand(),
	)
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := observability.NewCLILogger(cmd.ErrOrStderr(), cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.loader = source.NewLoader(source.WithStdin(a.stdin))
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

// Run executes root with args and maps the result to an exit code.
func Run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitFailure
}
