package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/manifest"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Resources adds resource nodes, item → resource edges and resource
	// dependency edges. When false, only organizations and items are drawn.
	Resources bool

	// Detailed includes identifiers and launch files in node labels.
	// When false, only titles are shown.
	Detailed bool
}

// ToDOT converts the organization and item hierarchy of m to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Items referencing an unknown resource get a red dashed edge to a
// placeholder node when Resources is set.
func ToDOT(m *course.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	missing := map[string]bool{}
	seq := 0

	for i := range m.Organizations {
		org := &m.Organizations[i]
		orgID := "org:" + org.Identifier
		label := orDefault(org.Title, org.Identifier)
		if opts.Detailed {
			label += "\n" + org.Identifier
		}
		attrs := []string{fmt.Sprintf("label=%q", label), "shape=folder", "fillcolor=\"#e8f1fb\""}
		if org.Identifier == m.DefaultOrganization {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", orgID, strings.Join(attrs, ", "))

		parents := map[int]string{-1: orgID}
		manifest.Walk(org.Items, func(it *manifest.Item, depth int) bool {
			id := "item:" + strconv.Itoa(seq)
			seq++
			parents[depth] = id
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(itemAttrs(m, it, opts), ", "))
			edges = append(edges, fmt.Sprintf("  %q -> %q;", parents[depth-1], id))

			if !opts.Resources || it.ResourceRef == "" {
				return true
			}
			ref := "res:" + it.ResourceRef
			if _, ok := m.Resources[it.ResourceRef]; ok {
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed, arrowhead=open];", id, ref))
			} else {
				missing[it.ResourceRef] = true
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed, color=red];", id, ref))
			}
			return true
		})
	}

	if opts.Resources {
		buf.WriteString("\n")
		for _, r := range m.OrderedResources() {
			fmt.Fprintf(&buf, "  %q [%s];\n", "res:"+r.Identifier, strings.Join(resourceAttrs(r, opts), ", "))
			for _, dep := range r.Dependencies {
				if _, ok := m.Resources[dep]; !ok {
					missing[dep] = true
				}
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dotted];", "res:"+r.Identifier, "res:"+dep))
			}
		}
		for _, id := range slices.Sorted(maps.Keys(missing)) {
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, style=\"filled,dashed\", fillcolor=\"#fde2e2\", color=red];\n",
				"res:"+id, id+"\n(missing)")
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func itemAttrs(m *course.Model, it *manifest.Item, opts Options) []string {
	label := orDefault(it.Title, it.Identifier)
	if opts.Detailed {
		label += "\n" + it.Identifier
		if r, ok := m.Resources[it.ResourceRef]; ok && r.Href != "" {
			label += "\n" + r.Href
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !it.Visible {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func resourceAttrs(r manifest.Resource, opts Options) []string {
	label := r.Identifier
	if opts.Detailed && r.Href != "" {
		label += "\n" + r.Href
	}
	attrs := []string{fmt.Sprintf("label=%q", label), "shape=ellipse"}
	if r.Type == manifest.TypeSCO {
		attrs = append(attrs, "fillcolor=\"#dff3e4\"")
	}
	return attrs
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag with one whose viewBox
// starts at the origin and whose size matches the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
