package course

import (
	"strings"

	"github.com/matzehuels/scormlens/pkg/manifest"
)

// Row is one item of the flattened content map.
type Row struct {
	Organization string `json:"organization"`
	ItemID       string `json:"item_id"`
	Title        string `json:"title"`
	// Path is the breadcrumb of ancestor titles, "Module 1 > Lesson 2".
	Path         string `json:"path"`
	Depth        int    `json:"depth"`
	ResourceID   string `json:"resource_id,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	LaunchFile   string `json:"launch_file,omitempty"`
}

// PathSeparator joins breadcrumb titles in [Row.Path].
const PathSeparator = " > "

// ContentMap flattens every organization's item tree depth-first in
// document order. Items referencing an unknown resource keep the
// identifier but have no type or launch file.
func (m *Model) ContentMap() []Row {
	var rows []Row
	for i := range m.Organizations {
		org := &m.Organizations[i]
		var trail []string
		manifest.Walk(org.Items, func(it *manifest.Item, depth int) bool {
			trail = append(trail[:depth], it.Title)
			row := Row{
				Organization: org.Identifier,
				ItemID:       it.Identifier,
				Title:        it.Title,
				Path:         strings.Join(trail, PathSeparator),
				Depth:        depth,
				ResourceID:   it.ResourceRef,
			}
			if r, ok := m.Resources[it.ResourceRef]; ok && it.ResourceRef != "" {
				row.ResourceType = string(r.Type)
				row.LaunchFile = r.Href
			}
			rows = append(rows, row)
			return true
		})
	}
	return rows
}
