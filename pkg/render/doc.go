// Package render converts rendered story graphs between output formats.
//
// # Overview
//
// Graph layout and SVG generation happen in the [nodelink] subpackage using
// an embedded Graphviz. This package handles the remaining raster and print
// formats:
//
//   - [ToPDF] converts SVG to PDF
//   - [ToPNG] converts SVG to PNG at a scale factor
//
// Both shell out to rsvg-convert (from librsvg). [Available] reports whether
// it is installed; when it is not, conversions fail with an UNSUPPORTED error
// carrying install instructions.
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/apocalyptech/choosable/pkg/render/nodelink
package render
