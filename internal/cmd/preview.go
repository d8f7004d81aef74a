package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/preview"
)

func newPreviewCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render flow screens in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runPreview,
	}
	cmd.Flags().StringSlice("screen", nil, "only render these screen ids")
	cmd.Flags().Bool("names", false, "show form.field names next to inputs")
	cmd.Flags().Bool("no-actions", false, "hide action targets")
	cmd.Flags().Bool("plain", false, "render without colour or frame")
	cmd.Flags().Int("width", 40, "frame width (0 disables wrapping)")
	return cmd
}

func (a *App) runPreview(cmd *cobra.Command, args []string) error {
	doc, _, err := a.loadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("screen")
	names, _ := cmd.Flags().GetBool("names")
	noActions, _ := cmd.Flags().GetBool("no-actions")
	plain, _ := cmd.Flags().GetBool("plain")
	width, _ := cmd.Flags().GetInt("width")

	theme := preview.DefaultTheme()
	if plain {
		theme = preview.PlainTheme()
	}
	renderer := preview.New(
		preview.WithTheme(theme),
		preview.WithWidth(width),
		preview.WithFieldNames(names),
		preview.WithActions(!noActions),
	)

	screens, err := selectScreens(doc, only)
	if err != nil {
		return err
	}
	rendered := make([]string, 0, len(screens))
	for _, screen := range screens {
		rendered = append(rendered, renderer.RenderScreen(screen, nil))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rendered, "\n\n"))
	return nil
}

func selectScreens(doc *flow.Document, ids []string) ([]flow.Screen, error) {
	if len(ids) == 0 {
		return doc.Screens, nil
	}
	out := make([]flow.Screen, 0, len(ids))
	for _, id := range ids {
		screen, ok := doc.Screen(id)
		if !ok {
			return nil, fmt.Errorf("screen %q is not part of the document", id)
		}
		out = append(out, screen)
	}
	return out, nil
}
