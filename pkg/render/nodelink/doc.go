// Package nodelink renders the course hierarchy as a node-link diagram.
//
// # Overview
//
// Organizations, items and (optionally) resources become Graphviz nodes.
// Edges run from each organization to its top-level items and from each
// item to its children, left to right in document order. With
// [Options].Resources set, items also point at the resource they launch
// and resources point at their dependencies.
//
// # Usage
//
//	dot := nodelink.ToDOT(model, nodelink.Options{Resources: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
//   - Organizations are folders; the default one has a thick border.
//   - Hidden items are dashed and grey.
//   - SCO resources are green ellipses, assets white.
//   - Unknown resource identifiers become red dashed "(missing)" nodes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. The DOT text can also be piped to an external dot binary.
package nodelink
