package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/pipeline"
)

// renderFormats are the diagram formats offered by the render command.
var renderFormats = []string{pipeline.FormatTree, pipeline.FormatDOT, pipeline.FormatSVG}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format    string // tree, dot or svg
	output    string // output file, "-" for stdout
	resources bool   // include resources and launch files
	detailed  bool   // add identifiers to labels
}

// renderCommand creates the render command for drawing the item hierarchy.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		analysis analysisOptions
		opts     renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render <package.zip|url|->",
		Short: "Draw the organization and item hierarchy",
		Long: `Draw the organization and item hierarchy of a SCORM package.

The tree format prints to the terminal unless --output is given. The dot
and svg formats draw a node-link diagram with Graphviz; --resources adds the
resources each item launches and their dependencies.`,
		Example: `  scormlens render course.zip
  scormlens render -f svg --resources course.zip     # writes course.svg
  scormlens render -f dot -o - course.zip | dot -Tpng > course.png`,
		Args: packageArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(renderFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid render format %q (must be one of: %s)", opts.format, strings.Join(renderFormats, ", "))
			}
			m, err := c.analyze(cmd.Context(), args[0], analysis)
			if err != nil {
				return err
			}
			if opts.format == pipeline.FormatTree && opts.output == "" {
				fmt.Fprint(cmd.OutOrStdout(), treeView(m, opts.resources, opts.detailed))
				return nil
			}
			return c.writeFormat(cmd.Context(), cmd.OutOrStdout(), m, opts.format, pipeline.RenderOptions{
				Resources: opts.resources,
				Detailed:  opts.detailed,
			}, opts.output)
		},
	}

	analysis.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatTree, "output format: tree, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <package>.<ext>)")
	cmd.Flags().BoolVar(&opts.resources, "resources", false, "include resources and launch files")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show identifiers in labels")

	return cmd
}
