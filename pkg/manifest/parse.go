package manifest

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/scormlens/pkg/errors"
)

const (
	xmlNamespaceURL = "http://www.w3.org/XML/1998/namespace"
	schemaLocation  = "schemaLocation"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes raw manifest bytes.
//
// Parse fails with MALFORMED_XML when data is not well-formed XML or its
// root element is not <manifest>. All other irregularities (missing titles,
// dangling references, unknown versions) are left in the result for the
// validator to report.
func Parse(data []byte) (*Manifest, error) {
	var doc xmlManifest
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.CharsetReader = charset.NewReaderLabel
	root, err := rootElement(dec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedXML, err, "manifest is not valid XML")
	}
	if err := dec.DecodeElement(&doc, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedXML, err, "manifest is not valid XML")
	}
	if doc.XMLName.Local != "manifest" {
		return nil, errors.New(errors.ErrCodeMalformedXML,
			"manifest is not valid XML: root element is <%s>, want <manifest>", doc.XMLName.Local)
	}
	if err := ensureEOF(dec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedXML, err, "manifest is not valid XML")
	}

	m := &Manifest{
		DefaultOrganization: strings.TrimSpace(doc.Organizations.Default),
		Organizations:       make([]Organization, 0, len(doc.Organizations.Organizations)),
		Resources:           make([]Resource, 0, len(doc.Resources.Resources)),
	}

	for i := range doc.Organizations.Organizations {
		m.Organizations = append(m.Organizations, buildOrganization(&doc.Organizations.Organizations[i]))
	}

	resourcesBase := attrBase(doc.Resources.Attrs)
	for i := range doc.Resources.Resources {
		m.Resources = append(m.Resources, buildResource(&doc.Resources.Resources[i], resourcesBase))
	}

	m.Metadata = buildMetadata(&doc, m)
	return m, nil
}

// rootElement reads the prolog up to the root start element. Text before
// the root is rejected; the decoder would otherwise skip it.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, &xml.SyntaxError{Msg: "no root element"}
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				line, _ := dec.InputPos()
				return xml.StartElement{}, &xml.SyntaxError{Msg: "unexpected text before root", Line: line}
			}
		}
	}
}

// ensureEOF rejects trailing elements after the root, which the decoder
// would otherwise ignore.
func ensureEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := dec.InputPos()
		switch t := tok.(type) {
		case xml.StartElement:
			return &xml.SyntaxError{Msg: "unexpected element <" + t.Name.Local + "> after root", Line: line}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return &xml.SyntaxError{Msg: "unexpected text after root", Line: line}
			}
		}
	}
}

func buildMetadata(doc *xmlManifest, m *Manifest) Metadata {
	md := Metadata{
		Identifier:    strings.TrimSpace(doc.Identifier),
		SchemaVersion: strings.TrimSpace(doc.Metadata.SchemaVersion),
	}
	md.Version = detectVersion(doc.namespaces(), md.SchemaVersion)

	lom := doc.Metadata.LOM
	md.Title = lom.Title.first()
	if md.Title == "" {
		if org, ok := m.Default(); ok {
			md.Title = org.Title
		}
	}
	for _, d := range lom.Descriptions {
		if md.Description = d.first(); md.Description != "" {
			break
		}
	}
	for _, k := range lom.Keywords {
		if kw := k.first(); kw != "" {
			md.Keywords = append(md.Keywords, kw)
		}
	}

	xorg := doc.defaultOrganization(m)
	ex := extractors[md.Version]
	md.MasteryScore = ex.masteryScore(doc, xorg)
	md.Sequencing = ex.sequencing(doc, xorg)
	return md
}

func buildOrganization(x *xmlOrganization) Organization {
	return Organization{
		Identifier: strings.TrimSpace(x.Identifier),
		Title:      strings.TrimSpace(x.Title),
		Items:      buildItems(x.Items),
	}
}

func buildItems(xs []xmlItem) []Item {
	if len(xs) == 0 {
		return nil
	}
	items := make([]Item, 0, len(xs))
	for i := range xs {
		x := &xs[i]
		items = append(items, Item{
			Identifier:   strings.TrimSpace(x.Identifier),
			Title:        strings.TrimSpace(x.Title),
			ResourceRef:  strings.TrimSpace(x.IdentifierRef),
			Parameters:   strings.TrimSpace(x.Parameters),
			Visible:      parseBool(x.IsVisible, true),
			MasteryScore: parseScore(x.MasteryScore),
			Children:     buildItems(x.Items),
		})
	}
	return items
}

func buildResource(x *xmlResource, outerBase string) Resource {
	base := JoinBase(outerBase, attrBase(x.Attrs))
	r := Resource{
		Identifier: strings.TrimSpace(x.Identifier),
		Type:       resourceType(x.Attrs),
		WebType:    strings.TrimSpace(x.Type),
		Base:       base,
		Href:       NormalizePath(base, x.Href),
	}
	seen := make(map[string]bool, len(x.Files))
	for _, f := range x.Files {
		p := NormalizePath(base, f.Href)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		r.Files = append(r.Files, p)
	}
	for _, d := range x.Dependencies {
		if ref := strings.TrimSpace(d.IdentifierRef); ref != "" {
			r.Dependencies = append(r.Dependencies, ref)
		}
	}
	return r
}

// resourceType reads adlcp:scormtype (1.2) or adlcp:scormType (2004). Any
// namespace prefix is accepted; the value is compared case-insensitively.
func resourceType(attrs []xml.Attr) ResourceType {
	for _, a := range attrs {
		if strings.EqualFold(a.Name.Local, "scormtype") && strings.EqualFold(strings.TrimSpace(a.Value), "sco") {
			return TypeSCO
		}
	}
	return TypeAsset
}

func attrBase(attrs []xml.Attr) string {
	for _, a := range attrs {
		if a.Name.Local == "base" && (a.Name.Space == xmlNamespaceURL || a.Name.Space == "xml") {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func walkXML(items []xmlItem, fn func(*xmlItem) bool) bool {
	for i := range items {
		if !fn(&items[i]) {
			return false
		}
		if !walkXML(items[i].Items, fn) {
			return false
		}
	}
	return true
}

// =============================================================================
// XML Schema
// =============================================================================

type xmlManifest struct {
	XMLName       xml.Name
	Identifier    string           `xml:"identifier,attr"`
	Attrs         []xml.Attr       `xml:",any,attr"`
	Metadata      xmlMetadata      `xml:"metadata"`
	Organizations xmlOrganizations `xml:"organizations"`
	Resources     xmlResources     `xml:"resources"`
}

// namespaces returns the root namespace, every namespace declaration and
// every xsi:schemaLocation value.
func (d *xmlManifest) namespaces() []string {
	out := []string{d.XMLName.Space}
	for _, a := range d.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" || a.Name.Local == schemaLocation {
			out = append(out, a.Value)
		}
	}
	return out
}

// defaultOrganization returns the XML node matching m.Default().
func (d *xmlManifest) defaultOrganization(m *Manifest) *xmlOrganization {
	org, ok := m.Default()
	if !ok {
		return nil
	}
	for i := range m.Organizations {
		if &m.Organizations[i] == org {
			return &d.Organizations.Organizations[i]
		}
	}
	return nil
}

type xmlMetadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
	LOM           xmlLOM `xml:"lom"`
}

type xmlLOM struct {
	Title        xmlLangText   `xml:"general>title"`
	Descriptions []xmlLangText `xml:"general>description"`
	Keywords     []xmlLangText `xml:"general>keyword"`
}

// xmlLangText covers both LOM encodings: <string> (IEEE LOM, 2004) and
// <langstring> (IMS MD, 1.2).
type xmlLangText struct {
	Strings     []string `xml:"string"`
	LangStrings []string `xml:"langstring"`
}

func (t xmlLangText) first() string {
	for _, s := range t.Strings {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	for _, s := range t.LangStrings {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

type xmlOrganizations struct {
	Default       string            `xml:"default,attr"`
	Organizations []xmlOrganization `xml:"organization"`
}

type xmlOrganization struct {
	Identifier string         `xml:"identifier,attr"`
	Title      string         `xml:"title"`
	Items      []xmlItem      `xml:"item"`
	Sequencing *xmlSequencing `xml:"sequencing"`
}

type xmlItem struct {
	Identifier    string         `xml:"identifier,attr"`
	IdentifierRef string         `xml:"identifierref,attr"`
	IsVisible     string         `xml:"isvisible,attr"`
	Parameters    string         `xml:"parameters,attr"`
	Title         string         `xml:"title"`
	MasteryScore  string         `xml:"masteryscore"`
	Items         []xmlItem      `xml:"item"`
	Sequencing    *xmlSequencing `xml:"sequencing"`
}

type xmlSequencing struct {
	ControlMode *xmlControlMode `xml:"controlMode"`
	Objectives  xmlObjectives   `xml:"objectives"`
}

type xmlControlMode struct {
	Choice      string `xml:"choice,attr"`
	Flow        string `xml:"flow,attr"`
	ForwardOnly string `xml:"forwardOnly,attr"`
}

type xmlObjectives struct {
	Primary *xmlObjective `xml:"primaryObjective"`
}

type xmlObjective struct {
	SatisfiedByMeasure   string `xml:"satisfiedByMeasure,attr"`
	MinNormalizedMeasure string `xml:"minNormalizedMeasure"`
}

type xmlResources struct {
	Attrs     []xml.Attr    `xml:",any,attr"`
	Resources []xmlResource `xml:"resource"`
}

type xmlResource struct {
	Identifier   string          `xml:"identifier,attr"`
	Type         string          `xml:"type,attr"`
	Href         string          `xml:"href,attr"`
	Attrs        []xml.Attr      `xml:",any,attr"`
	Files        []xmlFile       `xml:"file"`
	Dependencies []xmlDependency `xml:"dependency"`
}

type xmlFile struct {
	Href string `xml:"href,attr"`
}

type xmlDependency struct {
	IdentifierRef string `xml:"identifierref,attr"`
}
