// Package pkg provides the core libraries for scormlens SCORM package
// inspection.
//
// # Overview
//
// scormlens opens a SCORM 1.2 or SCORM 2004 package (a zip archive with an
// imsmanifest.xml), builds a model of its metadata, organizations, items
// and resources, checks every reference against the files in the archive
// and renders the result for people and tools.
//
// # Architecture
//
// The data flow through scormlens:
//
//	zip bytes (file, URL, stdin, HTTP upload)
//	         ↓
//	    [archive] package (open zip, locate imsmanifest.xml)
//	         ↓
//	    [manifest] package (parse and dispatch on SCORM version)
//	         ↓
//	    [resolve] + [validate] packages (path resolution, findings)
//	         ↓
//	    [course] package (immutable analysis model)
//	         ↓
//	    [export], [render], [io] (CSV, PDF, DOT/SVG, tree, JSON)
//
// # Quick Start
//
// Analyze an archive and write the content map:
//
//	import (
//	    "github.com/matzehuels/scormlens/pkg/course"
//	    "github.com/matzehuels/scormlens/pkg/export"
//	)
//
//	m, err := course.Build(data, course.Options{Source: "course.zip"})
//	if err != nil {
//	    // CORRUPT_ARCHIVE, MANIFEST_NOT_FOUND or MALFORMED_XML
//	    return err
//	}
//	fmt.Println(m.Summary().Verdict())
//	csv, err := export.NewCSVExporter().Render(export.ContentMap(m))
//
// With caching, downloads and every output format, use [pipeline]:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	m, hit, err := runner.AnalyzeFile(ctx, "course.zip", pipeline.Options{})
//	pdf, err := runner.Render(ctx, m, pipeline.FormatPDF, pipeline.RenderOptions{})
//
// # Main Packages
//
// Analysis:
//   - [archive]: zip reading with size limits and manifest candidates
//   - [manifest]: version-aware imsmanifest.xml parsing
//   - [resolve]: xml:base aware path resolution
//   - [validate]: findings and the summary verdict
//   - [course]: the analysis model and content map
//
// Output:
//   - [export]: CSV and PDF downloads
//   - [render]: DOT/SVG diagrams and text trees
//   - [io]: JSON import and export of analyses
//
// Infrastructure:
//   - [pipeline]: caching runner shared by the CLI and API
//   - [cache]: file, Redis and null caches
//   - [config]: TOML configuration
//   - [httputil]: package downloads with retry
//   - [errors]: structured error codes
//   - [observability]: hooks for logging and metrics
//   - [buildinfo]: version information
//
// [archive]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/archive
// [manifest]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/manifest
// [resolve]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/resolve
// [validate]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/validate
// [course]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/course
// [export]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/export
// [render]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/scormlens/pkg/buildinfo
package pkg
