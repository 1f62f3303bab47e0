// Package io reads and writes course analyses as JSON.
//
// The same document serves three purposes: the "full analysis" download of
// the CLI and API, the payload stored in the cache, and input for external
// tools. It wraps the [course.Model] in a small envelope:
//
//	{
//	  "format": "scormlens.analysis",
//	  "version": 1,
//	  "generator": "scormlens/v1.0.0",
//	  "summary": {"errors": 0, "warnings": 1, "infos": 0},
//	  "analysis": { ...course.Model... }
//	}
//
// The summary is derived from the findings on write and ignored on read.
//
// Use [WriteJSON] and [ReadJSON] with streams, [ExportJSON] and
// [ImportJSON] with file paths, and [Marshal] and [Unmarshal] with byte
// slices.
//
// [course.Model]: github.com/matzehuels/scormlens/pkg/course.Model
package io
