package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-waflow/internal/output"
	"github.com/goliatone/go-waflow/pkg/preview"
	"github.com/goliatone/go-waflow/pkg/preview/tui"
	"github.com/goliatone/go-waflow/pkg/simulator"
)

func newSimulateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Walk through a flow",
		Long: `Simulate starts a session on the entry screen of the document.

Without --script it is interactive: each screen is rendered and you pick
fields to fill and footers to press. With --script the YAML steps are
replayed and a transcript is printed; the command exits with status 1 when
a step fails.`,
		Example: `  waflow simulate flow.json
  waflow simulate flow.json --script happy-path.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: app.runSimulate,
	}
	addFormatFlags(cmd)
	cmd.Flags().StringP("script", "s", "", "YAML script to replay instead of prompting")
	cmd.Flags().Int("max-steps", 0, "stop an interactive session after this many prompts (0 is unlimited)")
	cmd.Flags().Bool("plain", false, "render screens without colour")
	return cmd
}

func (a *App) runSimulate(cmd *cobra.Command, args []string) error {
	doc, src, err := a.loadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	session, err := simulator.NewSession(doc, simulator.WithLogger(a.logger.Named("simulator")))
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	scriptArg, _ := cmd.Flags().GetString("script")
	if scriptArg != "" {
		return a.replay(cmd, session, scriptArg)
	}

	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	plain, _ := cmd.Flags().GetBool("plain")
	theme := preview.DefaultTheme()
	if plain {
		theme = preview.PlainTheme()
	}
	runner := tui.NewRunner(
		tui.WithPromptDriver(a.newDriver(cmd.OutOrStdout())),
		tui.WithRenderer(preview.New(preview.WithTheme(theme))),
		tui.WithLogger(a.logger.Named("tui")),
		tui.WithMaxSteps(maxSteps),
	)
	result, err := runner.Run(cmd.Context(), session)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	status := "left"
	if result.Final.Closed {
		status = "completed"
	}
	fmt.Fprintf(out, "Session %s on %s after %d submission(s).\n", status, result.Final.ActiveScreenID, len(result.Submissions))
	for _, line := range preview.ValuesSummary(result.Final.FormValues) {
		fmt.Fprintln(out, "  "+line)
	}
	return nil
}

func (a *App) replay(cmd *cobra.Command, session *simulator.Session, scriptArg string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	src, raw, err := a.read(cmd.Context(), scriptArg)
	if err != nil {
		return err
	}
	script, err := simulator.ParseScript(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	name := script.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(src.Location), filepath.Ext(src.Location))
	}

	transcript := simulator.RunScript(session, script)
	rendered, err := output.FormatTranscript(format, name, transcript)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	if len(transcript.Failed()) > 0 {
		return findingsExit()
	}
	return nil
}
