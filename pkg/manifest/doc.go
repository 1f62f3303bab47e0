// Package manifest parses SCORM imsmanifest.xml files.
//
// # Overview
//
// [Parse] turns raw manifest bytes into a [Manifest]: the package metadata,
// every organization with its nested item tree, and every resource with its
// normalized file list. Parsing is tolerant: elements are matched by local
// name so both SCORM 1.2 and SCORM 2004 manifests (and the many vendor
// variations of their namespace declarations) decode into the same types.
//
// # Versions
//
// The SCORM dialect is detected from the root element's namespace
// declarations, its xsi:schemaLocation and the <schemaversion> metadata
// element. Any SCORM 2004 marker wins over 1.2 markers; a manifest with
// neither parses as [VersionUnknown]. The version only selects which
// metadata locations are consulted (see the extractors table), never whether
// parsing happens.
//
// # References
//
// Items reference resources by identifier. The reference is kept as a plain
// string ([Item.ResourceRef]) and looked up on demand with
// [Manifest.Resource]; a resource may be shared by many items or by none.
// Items without a reference are valid folder nodes.
//
// # Paths
//
// Resource hrefs and <file> hrefs are normalized with [NormalizePath] so
// they can be compared directly against archive entry names: backslashes
// become forward slashes, "./" prefixes, query strings and fragments are
// removed, and xml:base prefixes are applied.
package manifest
