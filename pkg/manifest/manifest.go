package manifest

// Version identifies the SCORM dialect of a manifest.
type Version string

// Supported SCORM versions.
const (
	Version12      Version = "SCORM_1_2"
	Version2004    Version = "SCORM_2004"
	VersionUnknown Version = "UNKNOWN"
)

// Label returns a human-readable name such as "SCORM 1.2".
func (v Version) Label() string {
	switch v {
	case Version12:
		return "SCORM 1.2"
	case Version2004:
		return "SCORM 2004"
	}
	return "Unknown"
}

// ResourceType classifies a resource as trackable or not.
type ResourceType string

// Resource types.
const (
	TypeSCO   ResourceType = "SCO"
	TypeAsset ResourceType = "ASSET"
)

// Metadata holds the package-level scalar fields.
type Metadata struct {
	Version       Version     `json:"scorm_version"`
	SchemaVersion string      `json:"schema_version,omitempty"`
	Identifier    string      `json:"identifier"`
	Title         string      `json:"title,omitempty"`
	Description   string      `json:"description,omitempty"`
	Keywords      []string    `json:"keywords,omitempty"`
	MasteryScore  *float64    `json:"mastery_score,omitempty"`
	Sequencing    *Sequencing `json:"sequencing,omitempty"`
}

// Sequencing summarizes the control mode of the first SCORM 2004
// sequencing block.
type Sequencing struct {
	Choice      bool `json:"choice"`
	Flow        bool `json:"flow"`
	ForwardOnly bool `json:"forward_only"`
}

// Item is a navigational node. Children are held by value, so the tree
// cannot contain cycles.
type Item struct {
	Identifier   string   `json:"identifier"`
	Title        string   `json:"title"`
	ResourceRef  string   `json:"resource_ref,omitempty"`
	Parameters   string   `json:"parameters,omitempty"`
	Visible      bool     `json:"visible"`
	MasteryScore *float64 `json:"mastery_score,omitempty"`
	Children     []Item   `json:"children,omitempty"`
}

// Organization is a root container of items.
type Organization struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Items      []Item `json:"items"`
}

// Resource is the physical content an item launches or depends on.
type Resource struct {
	Identifier   string       `json:"identifier"`
	Type         ResourceType `json:"type"`
	WebType      string       `json:"web_type,omitempty"`
	Base         string       `json:"base,omitempty"`
	Href         string       `json:"href,omitempty"`
	Files        []string     `json:"files,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`
}

// Paths returns every dependent path of the resource: the href first, then
// each <file> path, without duplicates and in declaration order.
func (r Resource) Paths() []string {
	paths := make([]string, 0, len(r.Files)+1)
	seen := make(map[string]bool, len(r.Files)+1)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}
	add(r.Href)
	for _, f := range r.Files {
		add(f)
	}
	return paths
}

// Manifest is the parsed form of an imsmanifest.xml.
type Manifest struct {
	Metadata Metadata `json:"metadata"`
	// DefaultOrganization is the default attribute as declared, which may be
	// empty or dangling. Use [Manifest.Default] for the effective default.
	DefaultOrganization string         `json:"default_organization,omitempty"`
	Organizations       []Organization `json:"organizations"`
	// Resources are in declaration order and may contain duplicate
	// identifiers; lookups return the first declaration.
	Resources []Resource `json:"resources"`
}

// Default returns the default organization: the one named by the default
// attribute, or the first organization when the attribute is missing or
// dangling. It returns false only when there are no organizations.
func (m *Manifest) Default() (*Organization, bool) {
	if len(m.Organizations) == 0 {
		return nil, false
	}
	if m.DefaultOrganization != "" {
		for i := range m.Organizations {
			if m.Organizations[i].Identifier == m.DefaultOrganization {
				return &m.Organizations[i], true
			}
		}
	}
	return &m.Organizations[0], true
}

// DefaultDangling reports whether the default attribute is set but names
// no organization.
func (m *Manifest) DefaultDangling() bool {
	if m.DefaultOrganization == "" {
		return false
	}
	for _, o := range m.Organizations {
		if o.Identifier == m.DefaultOrganization {
			return false
		}
	}
	return true
}

// Resource returns the first resource declared with id.
func (m *Manifest) Resource(id string) (*Resource, bool) {
	for i := range m.Resources {
		if m.Resources[i].Identifier == id {
			return &m.Resources[i], true
		}
	}
	return nil, false
}

// ResourceMap returns the identifier → resource mapping. When identifiers
// repeat, the first declaration wins.
func (m *Manifest) ResourceMap() map[string]Resource {
	out := make(map[string]Resource, len(m.Resources))
	for _, r := range m.Resources {
		if _, ok := out[r.Identifier]; !ok {
			out[r.Identifier] = r
		}
	}
	return out
}
