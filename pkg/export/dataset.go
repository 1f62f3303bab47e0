// Package export renders course analyses as downloadable tables.
//
// A [Dataset] is a header row plus rows keyed by header. [ContentMap] and
// [Findings] build datasets from a [course.Model]; [CSVExporter] and
// [PDFExporter] turn them into bytes.
package export

import (
	"strconv"

	"github.com/matzehuels/scormlens/pkg/course"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Content map columns.
const (
	ColItemID       = "Item identifier"
	ColTitle        = "Title"
	ColDepth        = "Depth"
	ColResourceID   = "Resource identifier"
	ColResourceType = "Resource type"
	ColLaunchFile   = "Launch file"
)

// Finding columns.
const (
	ColSeverity   = "Severity"
	ColCategory   = "Category"
	ColIdentifier = "Identifier"
	ColMessage    = "Message"
)

// ContentMapHeaders lists the content map columns in order.
var ContentMapHeaders = []string{ColItemID, ColTitle, ColDepth, ColResourceID, ColResourceType, ColLaunchFile}

// ContentMap flattens the item hierarchy of every organization, one row
// per item in document order.
func ContentMap(m *course.Model) Dataset {
	rows := m.ContentMap()
	ds := Dataset{Headers: ContentMapHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, map[string]string{
			ColItemID:       r.ItemID,
			ColTitle:        r.Title,
			ColDepth:        strconv.Itoa(r.Depth),
			ColResourceID:   r.ResourceID,
			ColResourceType: r.ResourceType,
			ColLaunchFile:   r.LaunchFile,
		})
	}
	return ds
}

// Findings lists the validation findings in severity order.
func Findings(m *course.Model) Dataset {
	ds := Dataset{
		Headers: []string{ColSeverity, ColCategory, ColIdentifier, ColMessage},
		Rows:    make([]map[string]string, 0, len(m.Findings)),
	}
	for _, f := range m.Findings {
		ds.Rows = append(ds.Rows, map[string]string{
			ColSeverity:   string(f.Severity),
			ColCategory:   string(f.Category),
			ColIdentifier: f.Identifier,
			ColMessage:    f.Message,
		})
	}
	return ds
}
