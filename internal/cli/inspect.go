package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/course"
)

// ExitError carries a process exit status without an error message, used
// when the output already explains the failure.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// errFindings is returned by --strict when validation found errors.
var errFindings = &ExitError{Code: 2}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		opts      analysisOptions
		views     string
		strict    bool
		resources bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <package.zip|url|->",
		Short: "Analyze a SCORM package and print the results",
		Long: `Analyze a SCORM package and print the selected views.

Views:
  summary   package metadata, counts and launch file
  findings  validation verdict and every finding
  content   flattened content map table
  tree      organization and item hierarchy
  raw       imsmanifest.xml as stored in the archive
  all       every view above`,
		Example: `  scormlens inspect course.zip
  scormlens inspect --view content,tree course.zip
  curl -s https://example.com/course.zip | scormlens inspect --name course.zip -
  scormlens inspect --strict course.zip || echo "package has errors"`,
		Args: packageArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseViews(views)
			if err != nil {
				return err
			}
			m, err := c.analyze(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			writeViews(cmd.OutOrStdout(), m, selected, resources)
			if strict && m.HasErrors() {
				return errFindings
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&views, "view", "summary,findings", "views to print: summary,findings,content,tree,raw,all")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when validation reports errors")
	cmd.Flags().BoolVar(&resources, "resources", false, "show launch files in the tree view")

	return cmd
}

// writeViews prints each view, with a heading when more than one is shown.
func writeViews(w io.Writer, m *course.Model, views []string, resources bool) {
	for i, v := range views {
		if len(views) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			title := viewTitle(v)
			fmt.Fprintln(w, StyleTitle.Render(title))
			fmt.Fprintln(w, StyleDim.Render(strings.Repeat("─", len(title))))
		}
		fmt.Fprint(w, renderView(m, v, resources))
	}
}
