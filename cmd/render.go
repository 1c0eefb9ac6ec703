package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/strata/internal/models"
)

func newRenderCommand(a *app) *cobra.Command {
	var modelFile, outFile string

	renderCmd := &cobra.Command{
		Use:     "render <view>",
		Aliases: []string{"r"},
		Short:   "Render a view with its layouts",
		Long: `Render a view of the templates directory, composed with its layout chain.

The model is read from --model, or else from the models directory by view
name: pages/home.html.tmpl uses pages/home.yaml, .yml or .json.

Examples:
  strata render pages/home.html.tmpl
  strata render pages/home.html.tmpl --model home.json
  strata render pages/home.html.tmpl -o public/index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var model models.Model
			var err error
			if modelFile != "" {
				model, err = models.Load(modelFile)
			} else {
				model, err = models.ForView(a.config.Templates.ModelsDir, name)
			}
			if err != nil {
				return fmt.Errorf("loading model: %w", err)
			}

			r, err := a.newRenderer()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := r.Render(cmd.Context(), &buf, name, model); err != nil {
				return err
			}

			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(outFile, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			a.logger.Info(cmd.Context(), "View rendered", "view", name, "out", outFile, "bytes", buf.Len())
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&modelFile, "model", "m", "", "model file (YAML or JSON)")
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the output to a file instead of stdout")
	return renderCmd
}
