package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/strata/internal/catalog"
	"github.com/conneroisu/strata/internal/config"
	"github.com/conneroisu/strata/internal/logging"
	"github.com/conneroisu/strata/internal/renderer"
)

// app is the state shared by the subcommands of one root command.
type app struct {
	viper   *viper.Viper
	cfgFile string
	config  *config.Config
	logger  logging.Logger
}

// NewRootCommand builds the strata command tree.
func NewRootCommand() *cobra.Command {
	a := &app{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Compose html/template views with layouts and sections",
		Long: `strata renders html/template views that declare a layout and fill its
named sections. Layouts can declare layouts of their own; the whole chain
is validated before anything is written.

Quick Start:
  strata list                     List views with their layout chains
  strata render pages/home.html.tmpl
  strata check                    Render every view and validate its markup
  strata serve                    Preview server with live reload

Command Aliases:
  render (r), list (ls, l), check (c), serve (s)`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .strata.yml)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.StringP("dir", "d", "", "templates directory (default ./views)")
	flags.String("models", "", "model files directory (default ./views/models)")
	flags.String("pattern", "", "template file name pattern (default *.html.tmpl)")

	bindFlags(a.viper, flags, map[string]string{
		"log-level": "logging.level",
		"dir":       "templates.dir",
		"models":    "templates.models_dir",
		"pattern":   "templates.pattern",
	})

	rootCmd.AddCommand(
		newRenderCommand(a),
		newListCommand(a),
		newCheckCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the strata command line.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Setup(a.viper, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	a.config = cfg
	a.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if used := a.viper.ConfigFileUsed(); used != "" {
		a.logger.Debug(cmd.Context(), "Using config file", "path", used)
	}
	return nil
}

// newRenderer loads the configured catalog and returns a renderer for it.
func (a *app) newRenderer() (*renderer.ViewRenderer, error) {
	dir := a.config.Templates.Dir
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates directory: %s is not a directory", dir)
	}

	cat, err := catalog.New(os.DirFS(dir), catalog.WithPattern(a.config.Templates.Pattern))
	if err != nil {
		return nil, err
	}
	return renderer.NewViewRenderer(cat, a.logger, renderer.WithMaxDepth(a.config.Render.MaxLayoutDepth)), nil
}
