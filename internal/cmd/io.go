package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-waflow/internal/output"
	"github.com/goliatone/go-waflow/internal/source"
	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/rules"
)

func (a *App) read(ctx context.Context, arg string) (source.Source, []byte, error) {
	src, err := source.Parse(arg)
	if err != nil {
		return source.Source{}, nil, err
	}
	raw, err := a.loader.Load(ctx, src)
	if err != nil {
		return src, nil, err
	}
	return src, raw, nil
}

// loadDocument reads and parses a flow. Validation is left to the caller.
func (a *App) loadDocument(ctx context.Context, arg string) (*flow.Document, source.Source, error) {
	src, raw, err := a.read(ctx, arg)
	if err != nil {
		return nil, src, err
	}
	doc, err := flow.Parse(raw)
	if err != nil {
		return nil, src, fmt.Errorf("%s: %w", src, err)
	}
	return doc, src, nil
}

func formatFlag(cmd *cobra.Command) (output.Format, error) {
	raw, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(raw)
}

func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "table", "output format: table or json")
	cmd.Flags().Bool("json", false, "shorthand for --format json")
}

// writeDocument serializes doc to path, or to the command output when path
// is empty.
func writeDocument(cmd *cobra.Command, doc *flow.Document, path string) error {
	data, err := flow.Serialize(doc)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Flow written to %s\n", path)
	return nil
}

// reportFindings prints a findings table on stderr so stdout stays a clean
// document.
func reportFindings(cmd *cobra.Command, name string, findings []rules.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), output.FindingsTable(output.NewReport(name, findings)))
}
