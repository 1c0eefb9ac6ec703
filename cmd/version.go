package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/strata/internal/version"
)

func newVersionCommand() *cobra.Command {
	var format string
	var short bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for strata: the version, git commit,
build time, Go version and target platform.

Examples:
  strata version                  # Detailed version info
  strata version --short          # Version only
  strata version --format json    # Output as JSON`,
		Args: cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeVersion(cmd.OutOrStdout(), format, short, version.Get())
		},
	}

	versionCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&short, "short", false, "Show short version only")
	addFlagValidation(versionCmd.Flags(), "format", oneOf("text", "json"))
	return versionCmd
}

func writeVersion(w io.Writer, format string, short bool, info version.BuildInfo) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			version.BuildInfo
			IsRelease bool `json:"is_release"`
		}{info, info.IsRelease()})
	case "text":
		if short {
			_, err := fmt.Fprintln(w, info.Short())
			return err
		}
		_, err := fmt.Fprintln(w, info.String())
		return err
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
	}
}
