package book

import (
	"cmp"
	"strconv"
	"strings"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// PageID identifies a page. It is either a non-negative page number or an
// opaque label for pages that do not sit on a numbered slot (an epilogue,
// a bonus section, a marker in the margin).
//
// PageID is comparable and is used directly as a map key. The zero value is
// page number 0. Labels made only of ASCII digits are normalised to numbers
// by [PageLabel] and [ParsePageID], so each page has exactly one PageID.
type PageID struct {
	num   int
	label string
}

// PageNum returns the numeric id for page n. It panics if n is negative.
func PageNum(n int) PageID {
	if n < 0 {
		panic("book: negative page number " + strconv.Itoa(n))
	}
	return PageID{num: n}
}

// PageLabel returns the id for label s. A label that is a plain decimal
// number yields the numeric id instead. PageLabel does not validate s;
// books reject invalid labels when the id is added (see [PageID.Validate]).
func PageLabel(s string) PageID {
	if n, ok := parseDigits(s); ok {
		return PageID{num: n}
	}
	return PageID{label: s}
}

// ParsePageID parses user input into a PageID. Surrounding whitespace is
// ignored; digits give a numeric id and anything else a label.
// Returns an INVALID_INPUT error for empty input or invalid labels.
func ParsePageID(s string) (PageID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PageID{}, errs.New(errs.ErrCodeInvalidInput, "page id cannot be empty")
	}
	if n, ok := parseDigits(s); ok {
		return PageID{num: n}, nil
	}
	if err := errs.ValidatePageLabel(s); err != nil {
		return PageID{}, err
	}
	return PageID{label: s}, nil
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate reports whether id can be stored in a book. Page numbers are
// always valid; labels must pass the page label checks of package errors.
func (id PageID) Validate() error {
	if id.label == "" {
		return nil
	}
	return errs.ValidatePageLabel(id.label)
}

// IsNumber reports whether id is a page number.
func (id PageID) IsNumber() bool { return id.label == "" }

// Number returns the page number and true, or 0 and false for labels.
func (id PageID) Number() (int, bool) {
	if id.label != "" {
		return 0, false
	}
	return id.num, true
}

// Label returns the label of a non-numeric id, or "" for page numbers.
func (id PageID) Label() string { return id.label }

// String returns the page number in decimal or the label verbatim.
func (id PageID) String() string {
	if id.label != "" {
		return id.label
	}
	return strconv.Itoa(id.num)
}

// Compare orders ids: numbers by value, labels lexicographically, and every
// number before every label. It returns -1, 0 or +1.
func (id PageID) Compare(other PageID) int {
	switch {
	case id.label == "" && other.label == "":
		return cmp.Compare(id.num, other.num)
	case id.label == "":
		return -1
	case other.label == "":
		return 1
	default:
		return strings.Compare(id.label, other.label)
	}
}

// ComparePageIDs is [PageID.Compare] in a form suitable for slices.SortFunc.
func ComparePageIDs(a, b PageID) int { return a.Compare(b) }
