// Package render groups the visual renderings of a course model.
//
// Two subpackages exist:
//
//   - [tree]: an indented text tree of organizations and items, used by
//     the CLI and the terminal viewer.
//   - [nodelink]: a Graphviz diagram (DOT or SVG) of the same hierarchy,
//     optionally with resources and their dependencies.
//
// Both take a *course.Model and never modify it.
//
// [tree]: github.com/matzehuels/scormlens/pkg/render/tree
// [nodelink]: github.com/matzehuels/scormlens/pkg/render/nodelink
package render
