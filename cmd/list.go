package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/strata/internal/catalog"
)

func newListCommand(a *app) *cobra.Command {
	var format string

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List the views of the catalog",
		Long: `List every view of the templates directory together with its layout
chain, the sections it defines and the sections it requires.

Examples:
  strata list                     # Table output
  strata list -f json             # Output as JSON
  strata list --format yaml       # Output as YAML`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRenderer()
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), format, r.Catalog().Infos())
		},
	}

	listCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")
	addFlagValidation(listCmd.Flags(), "format", oneOf("table", "json", "yaml"))
	return listCmd
}

func writeList(w io.Writer, format string, infos []catalog.Info) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(infos)
	case "table":
		return writeTable(w, infos)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", format)
	}
}

func writeTable(w io.Writer, infos []catalog.Info) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No views found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tLAYOUTS\tSECTIONS\tREQUIRES")
	fmt.Fprintln(tw, "----\t-------\t--------\t--------")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			info.Name,
			orDash(strings.Join(info.Chain, " -> ")),
			orDash(strings.Join(info.Sections, ", ")),
			orDash(strings.Join(info.Required, ", ")),
		)
	}
	fmt.Fprintf(tw, "\nTotal: %d views\n", len(infos))
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
