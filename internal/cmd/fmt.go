package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-waflow/internal/source"
	"github.com/goliatone/go-waflow/pkg/flow"
)

func newFmtCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a flow in canonical form",
		Long: `Fmt parses a document and prints it with canonical key order and
two-space indentation. Keys waflow does not model are preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runFmt,
	}
	cmd.Flags().BoolP("write", "w", false, "write the result back to the file")
	cmd.Flags().BoolP("check", "c", false, "exit with status 1 when the file is not formatted")
	return cmd
}

func (a *App) runFmt(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetBool("write")
	check, _ := cmd.Flags().GetBool("check")

	src, raw, err := a.read(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	doc, err := flow.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	formatted, err := flow.Serialize(doc)
	if err != nil {
		return err
	}

	switch {
	case check:
		if !bytes.Equal(raw, formatted) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not formatted\n", src)
			return findingsExit()
		}
		return nil
	case write:
		if src.Kind != source.KindFile {
			return fmt.Errorf("--write needs a file, got %s", src)
		}
		return writeDocument(cmd, doc, src.Location)
	default:
		_, err = cmd.OutOrStdout().Write(formatted)
		return err
	}
}
