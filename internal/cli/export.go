package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/pipeline"
)

// exportFormats are the download formats offered by the export command.
var exportFormats = []string{pipeline.FormatCSV, pipeline.FormatFindings, pipeline.FormatPDF, pipeline.FormatJSON}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		opts   analysisOptions
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <package.zip|url|->",
		Short: "Write the content map, findings or full report to a file",
		Long: `Analyze a SCORM package and write a download.

Formats:
  csv           content map, one row per item
  findings-csv  validation findings, one row per finding
  pdf           report with summary, findings and content map
  json          the complete analysis`,
		Example: `  scormlens export course.zip                  # writes course.csv
  scormlens export -f pdf -o report.pdf course.zip
  scormlens export -f json -o - course.zip | jq .metadata`,
		Args: packageArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(exportFormats, format) {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid export format %q (must be one of: %s)", format, strings.Join(exportFormats, ", "))
			}
			m, err := c.analyze(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return c.writeFormat(cmd.Context(), cmd.OutOrStdout(), m, format, pipeline.RenderOptions{}, output)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatCSV, "output format: csv, findings-csv, pdf, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <package>.<ext>)")

	return cmd
}

// writeFormat renders m and writes it to output, or to stdout when output
// is "-".
func (c *CLI) writeFormat(ctx context.Context, stdout io.Writer, m *course.Model, format string, ropts pipeline.RenderOptions, output string) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	data, err := runner.Render(ctx, m, format, ropts)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if output == "" {
		output = outputName(m.Source, format)
	}

	prog := newProgress(c.Logger)
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done("Wrote " + output)
	printFile(output)
	return nil
}

// outputName derives the default output file from the package name:
// "course.zip" becomes "course.csv" for the csv format.
func outputName(source, format string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".zip") || strings.EqualFold(ext, ".pif") {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = strings.TrimSuffix(course.DefaultSource, ".zip")
	}
	return base + pipeline.Extension(format)
}
