package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/matzehuels/scormlens/pkg/archive/archivetest"
	"github.com/matzehuels/scormlens/pkg/course"
)

const nestedManifest = `<?xml version="1.0"?>
<manifest identifier="pkg" xmlns="http://www.imsproject.org/xsd/imscp_rootv1p1p2">
  <organizations default="org">
    <organization identifier="org">
      <title>Café course</title>
      <item identifier="m1">
        <title>Module 1</title>
        <item identifier="l1" identifierref="sco"><title>Lesson, part 1</title></item>
        <item identifier="l2" identifierref="ghost"><title>Lesson 2</title></item>
      </item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="sco" type="webcontent" adlcp:scormtype="sco" href="l1/index.html"
        xmlns:adlcp="http://www.adlnet.org/xsd/adlcp_rootv1p2"/>
  </resources>
</manifest>`

func model(t *testing.T) *course.Model {
	t.Helper()
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: nestedManifest},
		archivetest.File{Name: "l1/index.html", Body: "<html/>"},
	)
	m, err := course.Build(data, course.Options{Source: "nested.zip"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestContentMapDataset(t *testing.T) {
	ds := ContentMap(model(t))
	if len(ds.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(ds.Rows))
	}

	tests := []struct {
		row                       int
		id, depth, typ, launchSrc string
	}{
		{0, "m1", "0", "", ""},
		{1, "l1", "1", "SCO", "l1/index.html"},
		{2, "l2", "1", "", ""},
	}
	for _, tt := range tests {
		r := ds.Rows[tt.row]
		if r[ColItemID] != tt.id || r[ColDepth] != tt.depth || r[ColResourceType] != tt.typ || r[ColLaunchFile] != tt.launchSrc {
			t.Errorf("row %d = %v", tt.row, r)
		}
	}
	if ds.Rows[2][ColResourceID] != "ghost" {
		t.Errorf("unknown resource should keep its identifier, got %q", ds.Rows[2][ColResourceID])
	}
}

func TestFindingsDataset(t *testing.T) {
	m := model(t)
	ds := Findings(m)
	if len(ds.Rows) != len(m.Findings) {
		t.Fatalf("rows = %d, findings = %d", len(ds.Rows), len(m.Findings))
	}
	if len(ds.Rows) == 0 || ds.Rows[0][ColSeverity] != "ERROR" {
		t.Errorf("first row = %v, want the broken reference error", ds.Rows)
	}
}

func TestCSVExporter(t *testing.T) {
	out, err := NewCSVExporter().Render(ContentMap(model(t)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want header + 3", len(records))
	}
	if strings.Join(records[0], "|") != strings.Join(ContentMapHeaders, "|") {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != "Lesson, part 1" {
		t.Errorf("quoted title = %q", records[2][1])
	}
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	if _, err := NewCSVExporter().Render(Dataset{}); err == nil {
		t.Error("empty headers should fail")
	}
}

func TestPDFExporter(t *testing.T) {
	e := NewPDFExporter()

	out, err := e.Render(ContentMap(model(t)), "Content map")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("Render output does not start with %%PDF")
	}

	if _, err := e.Render(Dataset{}, "empty"); err == nil {
		t.Error("empty headers should fail")
	}
}

func TestPDFReport(t *testing.T) {
	out, err := NewPDFExporter().Report(model(t))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("Report output does not start with %%PDF")
	}
}

func TestReportManyRowsPaginates(t *testing.T) {
	ds := Dataset{Headers: []string{"A"}}
	for range 200 {
		ds.Rows = append(ds.Rows, map[string]string{"A": strings.Repeat("x", 300)})
	}
	out, err := NewPDFExporter().Render(ds, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := bytes.Count(out, []byte("/Type /Page\n")); n < 2 {
		t.Errorf("pages = %d, want more than one", n)
	}
}
