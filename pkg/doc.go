// Package pkg provides the libraries behind choosable, a tool for mapping
// the story graph of a chooseable-path book.
//
// # Overview
//
// A book is a set of pages, each told from one character's point of view
// and offering choices that lead to other pages. The pkg directory is
// organized as follows:
//
//  1. [book] - The in-memory model: characters, pages, choices and
//     intermediate page markers, with the reports used while authoring
//  2. [io] - The YAML document format and atomic file storage
//  3. [render/nodelink] - Graphviz DOT export and SVG, PNG and PDF rendering
//  4. [cache] - A file cache for rendered artifacts
//  5. [errors] - Coded errors shared by every layer
//
// # Data Flow
//
//	book.yaml
//	    ↓
//	[io] package (decode and validate)
//	    ↓
//	[book] package (edit)
//	    ↓
//	[render/nodelink] package (DOT, then Graphviz)
//	    ↓
//	DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	import (
//	    "github.com/apocalyptech/choosable/pkg/book"
//	    bookio "github.com/apocalyptech/choosable/pkg/io"
//	    "github.com/apocalyptech/choosable/pkg/render/nodelink"
//	)
//
//	b := book.New("Romeo and/or Juliet")
//	b.AddCharacter("Juliet")
//	p, _ := b.AddPage(book.PageNum(1), "Juliet", "On the balcony")
//	p.AddChoice(book.PageNum(2), "Climb down")
//
//	bookio.Save(b, "romeo.yaml")
//	dot := nodelink.ToDOT(b, nodelink.Options{Name: "romeo"})
//
// Pages with no written page behind them still appear in the graph: targets
// that were reserved as intermediate pages are drawn differently from
// targets nobody has written yet.
//
// [book]: https://pkg.go.dev/github.com/apocalyptech/choosable/pkg/book
// [io]: https://pkg.go.dev/github.com/apocalyptech/choosable/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/apocalyptech/choosable/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/apocalyptech/choosable/pkg/cache
// [errors]: https://pkg.go.dev/github.com/apocalyptech/choosable/pkg/errors
package pkg
