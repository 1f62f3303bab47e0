package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/export"
	scormio "github.com/matzehuels/scormlens/pkg/io"
	"github.com/matzehuels/scormlens/pkg/observability"
	"github.com/matzehuels/scormlens/pkg/render/nodelink"
	"github.com/matzehuels/scormlens/pkg/render/tree"
)

// RenderOptions configures the diagram and tree formats.
type RenderOptions struct {
	// Resources includes resources in diagrams and launch files in trees.
	Resources bool
	// Detailed adds identifiers to labels.
	Detailed bool
}

// Render produces m in the given format.
func (r *Runner) Render(ctx context.Context, m *course.Model, format string, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := Render(ctx, m, format, opts)
	hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	r.Logger.Debug("rendered output", "format", format, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// Render produces m in the given format without hooks or logging.
func Render(ctx context.Context, m *course.Model, format string, opts RenderOptions) ([]byte, error) {
	switch format {
	case FormatJSON:
		return scormio.Marshal(m)
	case FormatCSV:
		return export.NewCSVExporter().Render(export.ContentMap(m))
	case FormatFindings:
		return export.NewCSVExporter().Render(export.Findings(m))
	case FormatPDF:
		return export.NewPDFExporter().Report(m)
	case FormatDOT:
		return []byte(nodelink.ToDOT(m, diagramOptions(opts))), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(m, diagramOptions(opts)))
	case FormatTree:
		out := tree.Render(m, tree.Options{Resources: opts.Resources, IDs: opts.Detailed})
		return []byte(out + "\n"), nil
	}
	return nil, ValidateFormat(format)
}

func diagramOptions(opts RenderOptions) nodelink.Options {
	return nodelink.Options{Resources: opts.Resources, Detailed: opts.Detailed}
}
