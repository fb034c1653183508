package book

import "maps"

// Equal reports whether two books hold the same title, characters, pages
// (including every choice and flag) and intermediate markers.
func Equal(a, b *Book) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.title != b.title {
		return false
	}
	if !maps.EqualFunc(a.characters, b.characters, func(x, y *Character) bool { return *x == *y }) {
		return false
	}
	if !maps.Equal(a.intermediates, b.intermediates) {
		return false
	}
	return maps.EqualFunc(a.pages, b.pages, pagesEqual)
}

func pagesEqual(x, y *Page) bool {
	return x.id == y.id &&
		x.character == y.character &&
		x.Summary == y.Summary &&
		x.Canonical == y.Canonical &&
		x.Ending == y.Ending &&
		maps.Equal(x.choices, y.choices)
}
