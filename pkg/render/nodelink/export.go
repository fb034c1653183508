package nodelink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	bookio "github.com/apocalyptech/choosable/pkg/io"
)

// Format is an export output format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown export format %q (want dot, svg, png or pdf)", s)
}

// FormatFromPath infers the format from a file extension, defaulting to DOT.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatDOT
}

// ExportOptions configures [ExportFile].
type ExportOptions struct {
	Options

	// Source is the book's own data file. Exporting over it is refused.
	Source string

	// Confirm is asked before an existing file is overwritten. A nil
	// Confirm declines.
	Confirm func(path string) bool

	// Format selects the output; empty infers it from the path.
	Format Format

	// Scale is the PNG resolution factor.
	Scale float64
}

// Render produces the export artifact for b in memory.
func Render(ctx context.Context, b *book.Book, format Format, opts Options, scale float64) ([]byte, error) {
	dot := ToDOT(b, opts)
	switch format {
	case FormatDOT, "":
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot, scale)
	case FormatPDF:
		return RenderPDF(ctx, dot)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown export format %q", format)
	}
}

// ExportFile renders b and writes it to path.
//
// It returns a CONFLICT error if path is the book's source file. If path
// already exists, Confirm decides whether to overwrite it; declining returns
// a CANCELED error. Nothing is written unless rendering succeeds.
func ExportFile(ctx context.Context, b *book.Book, path string, opts ExportOptions) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	if opts.Source != "" && SamePath(path, opts.Source) {
		return errs.New(errs.ErrCodeConflict, "refusing to overwrite book data file %s with export", path)
	}

	if _, err := os.Stat(path); err == nil {
		if opts.Confirm == nil || !opts.Confirm(path) {
			return errs.New(errs.ErrCodeCanceled, "not overwriting existing file %s", path)
		}
	}

	format := opts.Format
	if format == "" {
		format = FormatFromPath(path)
	}
	if opts.Name == "" {
		opts.Name = NameFromPath(opts.Source)
	}

	data, err := Render(ctx, b, format, opts.Options, opts.Scale)
	if err != nil {
		return err
	}
	return bookio.WriteFileAtomic(path, data)
}

// SamePath reports whether a and b name the same file, either by absolute
// path or, when both exist, by file identity.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// NameFromPath returns the graph name used for a book stored at path: the
// file name up to its first dot.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
