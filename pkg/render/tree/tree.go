// Package tree renders the organization and item hierarchy of a course as
// an indented text tree.
//
//	Safety Training
//	╰── Main (org_main) *
//	    ├── Introduction → content/intro/index.html
//	    ╰── Quiz (hidden) → content/quiz/quiz.html
//
// Organizations are direct children of the course title. The default
// organization is marked with "*". Items that reference an unknown
// resource are marked so broken links stay visible next to the structure.
package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/manifest"
)

// Styles colors the parts of a label.
type Styles struct {
	Root     lipgloss.Style
	Org      lipgloss.Style
	Item     lipgloss.Style
	Muted    lipgloss.Style
	Broken   lipgloss.Style
	Branches lipgloss.Style
}

// Options configures [Render].
type Options struct {
	// Resources appends the launch file of each referenced resource.
	Resources bool
	// IDs appends item identifiers to labels.
	IDs bool
	// Styles defaults to [PlainStyles].
	Styles *Styles
}

// PlainStyles renders labels without decoration.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Root: plain, Org: plain, Item: plain, Muted: plain, Broken: plain, Branches: plain}
}

// Render draws every organization of m. A course without organizations
// renders only its title.
func Render(m *course.Model, opts Options) string {
	if opts.Styles == nil {
		opts.Styles = PlainStyles()
	}
	st := opts.Styles
	title := m.Metadata.Title
	if title == "" {
		title = m.Source
	}

	root := tree.Root(st.Root.Render(title)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.Branches)

	for i := range m.Organizations {
		org := &m.Organizations[i]
		label := st.Org.Render(orDefault(org.Title, org.Identifier)) + " " + st.Muted.Render("("+org.Identifier+")")
		if org.Identifier == m.DefaultOrganization {
			label += " *"
		}
		sub := tree.Root(label)
		for j := range org.Items {
			sub.Child(itemNode(m, &org.Items[j], opts))
		}
		root.Child(sub)
	}
	return root.String()
}

func itemNode(m *course.Model, it *manifest.Item, opts Options) any {
	label := itemLabel(m, it, opts)
	if len(it.Children) == 0 {
		return label
	}
	sub := tree.Root(label)
	for i := range it.Children {
		sub.Child(itemNode(m, &it.Children[i], opts))
	}
	return sub
}

func itemLabel(m *course.Model, it *manifest.Item, opts Options) string {
	st := opts.Styles
	var b strings.Builder
	b.WriteString(st.Item.Render(orDefault(it.Title, it.Identifier)))
	if opts.IDs {
		b.WriteString(" " + st.Muted.Render("["+it.Identifier+"]"))
	}
	if !it.Visible {
		b.WriteString(" " + st.Muted.Render("(hidden)"))
	}
	if it.ResourceRef == "" {
		return b.String()
	}
	r, ok := m.Resources[it.ResourceRef]
	if !ok {
		b.WriteString(" " + st.Broken.Render(fmt.Sprintf("(missing resource %s)", it.ResourceRef)))
		return b.String()
	}
	if opts.Resources && r.Href != "" {
		b.WriteString(" " + st.Muted.Render("→ "+r.Href))
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
