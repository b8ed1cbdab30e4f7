// Package render draws the task dependency graph with Graphviz.
//
// [ToDOT] emits DOT source for the queued tasks: members of a parametrized
// family share a cluster, edges point from a task to the tasks it requires,
// and [Options.Status] colors nodes by their outcome in a stored run.
// [RenderSVG] lays the source out in-process through go-graphviz, so no
// Graphviz installation is needed:
//
//	dot := render.ToDOT(m, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
package render
