package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/internal/source"
	"github.com/goliatone/go-waflow/pkg/assistant"
)

func addAssistantFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "model name (default from config)")
	cmd.Flags().Int("max-tokens", 0, "response token limit (default from config)")
}

func (a *App) assistant() (*assistant.Assistant, error) {
	rs, err := a.cfg.LoadRuleset()
	if err != nil {
		return nil, err
	}
	completer, err := a.newCompleter(a.cfg)
	if err != nil {
		if errors.Is(err, assistant.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w: set assistant.api_key, WAFLOW_ASSISTANT_API_KEY or ANTHROPIC_API_KEY", err)
		}
		return nil, err
	}
	return assistant.New(completer,
		assistant.WithRuleset(rs),
		assistant.WithLogger(a.logger.Named("assistant")),
	)
}

// emit writes a generated document and reports its findings. Output that
// does not parse is dumped to stderr before the error is returned.
func (a *App) emit(cmd *cobra.Command, result *assistant.Result, err error, path string) error {
	if err != nil {
		if result != nil && errors.Is(err, assistant.ErrUnparseable) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Model output:")
			fmt.Fprintln(cmd.ErrOrStderr(), result.Raw)
		}
		return err
	}
	a.logger.Debug("generated flow", zap.Int("screens", len(result.Document.Screens)), zap.Int("findings", len(result.Findings)))
	if err := writeDocument(cmd, result.Document, path); err != nil {
		return err
	}
	reportFindings(cmd, "generated flow", result.Findings)
	return nil
}

func newGenerateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Draft a flow from a description",
		Example: `  waflow generate "a two screen feedback survey with a photo upload" -o feedback.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assist, err := app.assistant()
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("output")
			result, err := assist.Generate(cmd.Context(), strings.Join(args, " "))
			return app.emit(cmd, result, err, path)
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the flow to this file instead of stdout")
	addAssistantFlags(cmd)
	return cmd
}

func newEditCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <file> <instructions>",
		Short: "Apply instructions to an existing flow",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, src, err := app.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			assist, err := app.assistant()
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if write, _ := cmd.Flags().GetBool("write"); write {
				if src.Kind != source.KindFile {
					return fmt.Errorf("--write needs a file, got %s", src)
				}
				path = src.Location
			}
			result, err := assist.Edit(cmd.Context(), doc, strings.Join(args[1:], " "))
			return app.emit(cmd, result, err, path)
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the flow to this file instead of stdout")
	cmd.Flags().BoolP("write", "w", false, "overwrite the input file")
	addAssistantFlags(cmd)
	return cmd
}

func newAnalyzeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Suggest UX improvements for a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := app.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			assist, err := app.assistant()
			if err != nil {
				return err
			}
			suggestions, err := assist.Analyze(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), suggestions)
			return nil
		},
	}
	addAssistantFlags(cmd)
	return cmd
}

func newScreenshotCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screenshot <image>",
		Short: "Convert a screenshot of a web page into a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, data, err := app.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			mediaType := http.DetectContentType(data)
			if !strings.HasPrefix(mediaType, "image/") {
				return fmt.Errorf("%s is not an image (%s)", args[0], mediaType)
			}
			assist, err := app.assistant()
			if err != nil {
				return err
			}

			instructions, _ := cmd.Flags().GetString("instructions")
			path, _ := cmd.Flags().GetString("output")
			result, err := assist.FromScreenshot(cmd.Context(), assistant.Image{MediaType: mediaType, Data: data}, instructions)
			return app.emit(cmd, result, err, path)
		},
	}
	cmd.Flags().StringP("instructions", "i", "", "extra guidance for the conversion")
	cmd.Flags().StringP("output", "o", "", "write the flow to this file instead of stdout")
	addAssistantFlags(cmd)
	return cmd
}
