package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-waflow/internal/output"
	"github.com/goliatone/go-waflow/pkg/rules"
)

func newRulesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the configured ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if presets, _ := cmd.Flags().GetBool("presets"); presets {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rules.Presets(), "\n"))
				return nil
			}
			format, err := formatFlag(cmd)
			if err != nil {
				return err
			}
			rs, err := app.cfg.LoadRuleset()
			if err != nil {
				return err
			}
			rendered, err := output.FormatRuleset(format, rs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	addFormatFlags(cmd)
	cmd.Flags().Bool("presets", false, "list the bundled presets")
	return cmd
}
