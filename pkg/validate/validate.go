// Package validate classifies the structural problems of a SCORM package.
//
// [Run] executes a fixed battery of checks over a parsed manifest, the
// archive file listing and the reference [resolve.Report], and returns the
// resulting [Finding] list. Validation never fails: every problem becomes a
// finding, and findings are neither deduplicated nor truncated.
//
// # Checks
//
// Checks run in this order:
//
//	ERROR    BROKEN_ITEM_REFERENCE          item identifierref names no resource
//	ERROR    MISSING_FILE                   resource href or <file> absent (one per path)
//	ERROR    MISSING_LAUNCH_FILE            default organization cannot be launched
//	ERROR    BROKEN_DEPENDENCY              <dependency> names no resource
//	WARNING  UNKNOWN_VERSION                neither SCORM 1.2 nor 2004 recognized
//	WARNING  NO_ORGANIZATIONS               no <organization> declared
//	WARNING  DANGLING_DEFAULT_ORGANIZATION  default attribute names no organization
//	WARNING  DUPLICATE_IDENTIFIER           identifier declared more than once
//	INFO     NO_TRACKABLE_CONTENT           no SCO resources
//
// The result is stably sorted by severity, so within one severity findings
// keep check order and then emission order.
//
// A package with no findings has passed these checks only. It is not proven
// correct; see [Summary.Verdict].
package validate

import (
	"fmt"
	"slices"

	"github.com/matzehuels/scormlens/pkg/manifest"
	"github.com/matzehuels/scormlens/pkg/resolve"
)

// Severity ranks a finding.
type Severity string

// Severities, most severe first.
const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Severities lists all severities, most severe first.
var Severities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// Rank orders severities; lower is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	}
	return 2
}

// Category names the kind of problem a finding reports.
type Category string

// Finding categories.
const (
	CategoryBrokenItemReference Category = "BROKEN_ITEM_REFERENCE"
	CategoryMissingFile         Category = "MISSING_FILE"
	CategoryMissingLaunchFile   Category = "MISSING_LAUNCH_FILE"
	CategoryBrokenDependency    Category = "BROKEN_DEPENDENCY"
	CategoryUnknownVersion      Category = "UNKNOWN_VERSION"
	CategoryNoOrganizations     Category = "NO_ORGANIZATIONS"
	CategoryDanglingDefault     Category = "DANGLING_DEFAULT_ORGANIZATION"
	CategoryDuplicateIdentifier Category = "DUPLICATE_IDENTIFIER"
	CategoryNoTrackableContent  Category = "NO_TRACKABLE_CONTENT"
)

// Finding is a single classified problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	// Identifier is the item, resource or organization the finding is
	// about, when there is one.
	Identifier string `json:"identifier,omitempty"`
}

// Input is everything the checks look at.
type Input struct {
	Manifest *manifest.Manifest
	Files    resolve.FileSet
	Report   resolve.Report
}

type check func(in Input) []Finding

var checks = []check{
	checkItemReferences,
	checkMissingFiles,
	checkLaunchFile,
	checkDependencies,
	checkVersion,
	checkOrganizations,
	checkDuplicates,
	checkTrackableContent,
}

// Run executes all checks and returns the findings ordered by severity.
// The result is nil for a package without problems.
func Run(in Input) []Finding {
	var findings []Finding
	for _, c := range checks {
		findings = append(findings, c(in)...)
	}
	slices.SortStableFunc(findings, func(a, b Finding) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
	return findings
}

func checkItemReferences(in Input) []Finding {
	var out []Finding
	for _, br := range in.Report.BrokenRefs {
		out = append(out, Finding{
			Severity:   SeverityError,
			Category:   CategoryBrokenItemReference,
			Message:    fmt.Sprintf("Item %q references non-existent resource %q", br.From, br.ResourceID),
			Identifier: br.From,
		})
	}
	return out
}

func checkMissingFiles(in Input) []Finding {
	var out []Finding
	for _, mf := range in.Report.MissingFiles {
		out = append(out, Finding{
			Severity:   SeverityError,
			Category:   CategoryMissingFile,
			Message:    fmt.Sprintf("Resource %q points to %q which is missing from the archive", mf.ResourceID, mf.Path),
			Identifier: mf.ResourceID,
		})
	}
	return out
}

func checkLaunchFile(in Input) []Finding {
	launchErr := func(id, format string, args ...any) []Finding {
		return []Finding{{
			Severity:   SeverityError,
			Category:   CategoryMissingLaunchFile,
			Message:    fmt.Sprintf(format, args...),
			Identifier: id,
		}}
	}

	m := in.Manifest
	org, ok := m.Default()
	if !ok {
		return launchErr("", "No organization to launch")
	}
	item, ok := manifest.FirstLaunchable(org.Items)
	if !ok {
		return launchErr(org.Identifier, "Organization %q has no item that references a resource", org.Identifier)
	}
	res, ok := m.Resource(item.ResourceRef)
	if !ok {
		return launchErr(item.Identifier, "Launch item %q references non-existent resource %q", item.Identifier, item.ResourceRef)
	}
	if res.Href == "" {
		return launchErr(res.Identifier, "Launch resource %q has no href", res.Identifier)
	}
	if !resolve.Exists(in.Files, res.Href) {
		return launchErr(res.Identifier, "Launch file %q of resource %q is missing from the archive", res.Href, res.Identifier)
	}
	return nil
}

func checkDependencies(in Input) []Finding {
	var out []Finding
	for _, br := range in.Report.BrokenDependencies {
		out = append(out, Finding{
			Severity:   SeverityError,
			Category:   CategoryBrokenDependency,
			Message:    fmt.Sprintf("Resource %q depends on non-existent resource %q", br.From, br.ResourceID),
			Identifier: br.From,
		})
	}
	return out
}

func checkVersion(in Input) []Finding {
	if in.Manifest.Metadata.Version != manifest.VersionUnknown {
		return nil
	}
	return []Finding{{
		Severity: SeverityWarning,
		Category: CategoryUnknownVersion,
		Message:  "SCORM version could not be determined from namespaces or schemaversion",
	}}
}

func checkOrganizations(in Input) []Finding {
	m := in.Manifest
	if len(m.Organizations) == 0 {
		return []Finding{{
			Severity: SeverityWarning,
			Category: CategoryNoOrganizations,
			Message:  "Manifest declares no organizations",
		}}
	}
	if m.DefaultDangling() {
		return []Finding{{
			Severity:   SeverityWarning,
			Category:   CategoryDanglingDefault,
			Message:    fmt.Sprintf("Default organization %q does not exist; falling back to %q", m.DefaultOrganization, m.Organizations[0].Identifier),
			Identifier: m.DefaultOrganization,
		}}
	}
	return nil
}

func checkDuplicates(in Input) []Finding {
	var out []Finding
	report := func(kind string, ids []string) {
		seen := make(map[string]int, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			seen[id]++
			if seen[id] == 2 {
				out = append(out, Finding{
					Severity:   SeverityWarning,
					Category:   CategoryDuplicateIdentifier,
					Message:    fmt.Sprintf("%s identifier %q is declared more than once; the first declaration is used", kind, id),
					Identifier: id,
				})
			}
		}
	}

	m := in.Manifest
	orgIDs := make([]string, 0, len(m.Organizations))
	var itemIDs []string
	for i := range m.Organizations {
		orgIDs = append(orgIDs, m.Organizations[i].Identifier)
		manifest.Walk(m.Organizations[i].Items, func(it *manifest.Item, _ int) bool {
			itemIDs = append(itemIDs, it.Identifier)
			return true
		})
	}
	resIDs := make([]string, 0, len(m.Resources))
	for _, r := range m.Resources {
		resIDs = append(resIDs, r.Identifier)
	}

	report("Resource", resIDs)
	report("Organization", orgIDs)
	report("Item", itemIDs)
	return out
}

func checkTrackableContent(in Input) []Finding {
	for _, r := range in.Manifest.Resources {
		if r.Type == manifest.TypeSCO {
			return nil
		}
	}
	return []Finding{{
		Severity: SeverityInfo,
		Category: CategoryNoTrackableContent,
		Message:  "Package contains no SCO resources; an LMS will not track learner progress",
	}}
}
