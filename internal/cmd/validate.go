package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/internal/output"
	"github.com/goliatone/go-waflow/pkg/rules"
)

func newValidateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate flow documents",
		Long: `Validate checks each document against the flow envelope schema and the
configured ruleset. Use "-" to read from standard input.

The command exits with status 1 when any document has error findings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: app.runValidate,
	}
	addFormatFlags(cmd)
	return cmd
}

func (a *App) runValidate(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	rs, err := a.cfg.LoadRuleset()
	if err != nil {
		return err
	}

	reports := make([]output.Report, 0, len(args))
	failed := false
	for _, arg := range args {
		src, raw, err := a.read(cmd.Context(), arg)
		if err != nil {
			return err
		}
		_, findings := rules.Check(raw, rs)
		report := output.NewReport(src.String(), findings)
		a.logger.Debug("validated",
			zap.String("source", src.String()),
			zap.String("ruleset", rs.Name),
			zap.Int("errors", report.Errors),
			zap.Int("warnings", report.Warnings),
		)
		failed = failed || !report.Valid
		reports = append(reports, report)
	}

	rendered, err := renderReports(format, reports)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	if failed {
		return findingsExit()
	}
	return nil
}

func renderReports(format output.Format, reports []output.Report) (string, error) {
	if len(reports) == 1 {
		return output.FormatReport(format, reports[0])
	}
	if format == output.FormatJSON {
		return output.FormatReports(reports)
	}
	parts := make([]string, 0, len(reports))
	for _, report := range reports {
		rendered, err := output.FormatReport(format, report)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n\n"), nil
}
