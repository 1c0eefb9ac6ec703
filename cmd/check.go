package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	strataerrors "github.com/conneroisu/strata/internal/errors"
	"github.com/conneroisu/strata/internal/htmlcheck"
	"github.com/conneroisu/strata/internal/models"
	"github.com/conneroisu/strata/internal/renderer"
)

type checkOptions struct {
	all  bool
	a11y bool
}

func newCheckCommand(a *app) *cobra.Command {
	var opts checkOptions

	checkCmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"c"},
		Short:   "Render every view and validate the markup",
		Long: `Render every view with its model file and check that the output is
well-formed: every element is closed and no end tag is unexpected.

Views that serve as a layout for another view are skipped unless --all is
given, since they usually cannot render without a body.

Examples:
  strata check                    # Check every page
  strata check --a11y             # Also run the accessibility rules
  strata check --all              # Include layouts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRenderer()
			if err != nil {
				return err
			}
			return a.runCheck(cmd, r, opts)
		},
	}

	checkCmd.Flags().BoolVar(&opts.all, "all", false, "also check views used as layouts")
	checkCmd.Flags().BoolVar(&opts.a11y, "a11y", false, "enable accessibility rules")
	return checkCmd
}

func (a *app) runCheck(cmd *cobra.Command, r *renderer.ViewRenderer, opts checkOptions) error {
	out := cmd.OutOrStdout()
	collector := strataerrors.NewCollector()

	var checkOpts []htmlcheck.Option
	if opts.a11y {
		checkOpts = append(checkOpts, htmlcheck.WithAccessibility())
	}

	infos := r.Catalog().Infos()
	layouts := make(map[string]bool)
	for _, info := range infos {
		if info.Layout != "" {
			layouts[info.Layout] = true
		}
	}

	checked := 0
	for _, info := range infos {
		if layouts[info.Name] && !opts.all {
			continue
		}
		checked++

		problems, err := checkView(cmd, r, a.config.Templates.ModelsDir, info.Name, checkOpts)
		if err != nil {
			collector.Add(err)
			fmt.Fprintf(out, "FAIL %s\n  %v\n", info.Name, err)
			continue
		}

		failed := false
		for _, p := range htmlcheck.Errors(problems) {
			failed = true
			collector.Add(strataerrors.NewValidationError(strataerrors.ErrCodeMarkupInvalid, p.Message).
				WithView(info.Name).
				WithLocation(p.Line, 0).
				WithContext("rule", p.Rule))
		}
		writeProblems(out, info.Name, failed, problems)
	}

	failed := len(viewsIn(collector))
	fmt.Fprintf(out, "\nChecked %d views, %d failed\n", checked, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d views failed the check", failed, checked)
	}
	return nil
}

func checkView(cmd *cobra.Command, r *renderer.ViewRenderer, modelsDir, name string, opts []htmlcheck.Option) ([]htmlcheck.Problem, error) {
	model, err := models.ForView(modelsDir, name)
	if err != nil {
		ve := strataerrors.NewValidationError(strataerrors.ErrCodeModelInvalid, "loading model").WithView(name)
		ve.Cause = err
		return nil, ve
	}
	html, err := r.RenderString(cmd.Context(), name, model)
	if err != nil {
		return nil, err
	}
	return htmlcheck.Check(strings.NewReader(html), opts...)
}

func writeProblems(w io.Writer, name string, failed bool, problems []htmlcheck.Problem) {
	status := "ok  "
	if failed {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s\n", status, name)
	for _, p := range problems {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

// viewsIn returns the distinct views with collected errors.
func viewsIn(c *strataerrors.Collector) []string {
	seen := make(map[string]bool)
	var views []string
	for _, err := range c.Errors() {
		if !seen[err.View] {
			seen[err.View] = true
			views = append(views, err.View)
		}
	}
	return views
}
