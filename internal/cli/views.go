package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/export"
	"github.com/matzehuels/scormlens/pkg/render/tree"
)

// Views accepted by inspect --view, in display order.
const (
	viewSummary  = "summary"
	viewFindings = "findings"
	viewContent  = "content"
	viewTree     = "tree"
	viewRaw      = "raw"
	viewAll      = "all"
)

var allViews = []string{viewSummary, viewFindings, viewContent, viewTree, viewRaw}

// summaryView lists the package metadata as aligned key/value lines.
func summaryView(m *course.Model) string {
	var b strings.Builder
	for _, kv := range export.Summary(m) {
		value := kv[1]
		if value == "" {
			value = StyleDim.Render("-")
		}
		b.WriteString(styleKey.Render(kv[0]) + " " + StyleValue.Render(value) + "\n")
	}
	if len(m.ManifestCandidates) > 1 {
		b.WriteString(styleKey.Render("Other manifests") + " " +
			StyleWarning.Render(strings.Join(m.ManifestCandidates[1:], ", ")) + "\n")
	}
	return b.String()
}

// findingsView prints the verdict followed by one line per finding.
func findingsView(m *course.Model) string {
	sum := m.Summary()
	var b strings.Builder
	switch {
	case sum.Errors > 0:
		b.WriteString(StyleError.Render(iconError+" "+sum.Verdict()) + "\n")
	case sum.Total() > 0:
		b.WriteString(StyleWarning.Render(iconWarning+" "+sum.Verdict()) + "\n")
	default:
		b.WriteString(StyleSuccess.Render(iconSuccess+" "+sum.Verdict()) + "\n")
	}
	for _, f := range m.Findings {
		style := severityStyle(f.Severity)
		line := fmt.Sprintf("%s %-7s %s", style.Render(severityIcon(f.Severity)), style.Render(string(f.Severity)), f.Message)
		if f.Identifier != "" {
			line += " " + StyleHighlight.Render("["+f.Identifier+"]")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// contentMapTable renders the flattened item list as a bordered table.
// Titles are indented by depth.
func contentMapTable(m *course.Model) string {
	rows := m.ContentMap()
	if len(rows) == 0 {
		return StyleDim.Render("No items.") + "\n"
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.ItemID,
			strings.Repeat("  ", r.Depth) + r.Title,
			strconv.Itoa(r.Depth),
			r.ResourceID,
			r.ResourceType,
			r.LaunchFile,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(export.ContentMapHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			r := rows[row]
			if r.ResourceID != "" && r.ResourceType == "" {
				return base.Foreground(colorRed)
			}
			if col == 0 || col == 2 {
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render() + "\n"
}

// treeView draws the organizations and their items.
func treeView(m *course.Model, resources, ids bool) string {
	return tree.Render(m, tree.Options{
		Resources: resources,
		IDs:       ids,
		Styles:    treeStyles(),
	}) + "\n"
}

func treeStyles() *tree.Styles {
	return &tree.Styles{
		Root:     StyleTitle,
		Org:      lipgloss.NewStyle().Bold(true).Foreground(colorWhite),
		Item:     lipgloss.NewStyle(),
		Muted:    StyleDim,
		Broken:   StyleError,
		Branches: StyleDim,
	}
}

// rawView returns the manifest exactly as stored in the archive.
func rawView(m *course.Model) string {
	raw := m.RawManifest
	if !strings.HasSuffix(raw, "\n") {
		raw += "\n"
	}
	return raw
}

// parseViews expands a comma separated --view value.
func parseViews(s string) ([]string, error) {
	var views []string
	seen := map[string]bool{}
	for _, v := range strings.Split(s, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if v == viewAll {
			return allViews, nil
		}
		if !slices.Contains(allViews, v) {
			return nil, fmt.Errorf("unknown view %q (valid: %s, %s)", v, strings.Join(allViews, ", "), viewAll)
		}
		if !seen[v] {
			seen[v] = true
			views = append(views, v)
		}
	}
	if len(views) == 0 {
		return []string{viewSummary, viewFindings}, nil
	}
	return views, nil
}

// renderView produces the named view of m.
func renderView(m *course.Model, view string, resources bool) string {
	switch view {
	case viewSummary:
		return summaryView(m)
	case viewFindings:
		return findingsView(m)
	case viewContent:
		return contentMapTable(m)
	case viewTree:
		return treeView(m, resources, false)
	case viewRaw:
		return rawView(m)
	}
	return ""
}

// viewTitle is the section heading printed above a view.
func viewTitle(view string) string {
	switch view {
	case viewSummary:
		return "Summary"
	case viewFindings:
		return "Validation"
	case viewContent:
		return "Content Map"
	case viewTree:
		return "Hierarchy"
	case viewRaw:
		return "Raw Manifest"
	}
	return view
}
