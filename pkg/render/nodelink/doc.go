// Package nodelink renders a book's page graph as a node-link diagram.
//
// # Overview
//
// Each page becomes a node and each choice an edge. Layout is delegated to
// Graphviz: [ToDOT] produces DOT source and [RenderSVG] lays it out in
// process.
//
//	dot := nodelink.ToDOT(b, nodelink.Options{Name: "romeo"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Nodes
//
// [Nodes] returns three kinds of node, all sorted together by page id:
//
//   - visited: a page of the book, labelled "Page <id> - <summary>"
//   - unvisited: a choice target with no page, labelled in italics with the
//     summary of the first choice that points at it
//   - reserved: like unvisited, but the id is held by an intermediate
//     marker; drawn dashed
//
// Visited pages are filled with their character's colors. Endings use a
// fixed closed style instead (see [DefaultEndingFill]), and canonical pages
// are drawn as bold boxes. [PageStyle] is the full rule.
//
// Intermediate markers that no choice points at do not appear.
//
// # Files
//
// [ExportFile] renders a book to a file in any of the [Formats]. It refuses
// to overwrite the book's own data file and asks the caller's Confirm
// callback before replacing any other existing file.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
