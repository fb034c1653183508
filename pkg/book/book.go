package book

import (
	"maps"
	"slices"
	"strconv"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// Book is the aggregate graph of a chooseable-path story: its characters,
// its written pages, and the intermediate markers reserving page ids that
// have not been written yet.
//
// All characters, pages and markers are added and removed through Book
// methods, which keep these invariants:
//   - every page's character is a character of the book
//   - a page id is never both a page and an intermediate marker
//   - map keys are the sole identity of characters, pages and markers
//
// Choice targets are not constrained. A failed method leaves the Book
// unchanged. The zero value is not usable - use [New]. Book is not safe for
// concurrent use without external synchronization.
type Book struct {
	title         string
	characters    map[string]*Character
	pages         map[PageID]*Page
	intermediates map[PageID]struct{}
}

// New creates an empty book with the given title.
func New(title string) *Book {
	return &Book{
		title:         title,
		characters:    make(map[string]*Character),
		pages:         make(map[PageID]*Page),
		intermediates: make(map[PageID]struct{}),
	}
}

// Title returns the book title.
func (b *Book) Title() string { return b.title }

// SetTitle replaces the book title.
func (b *Book) SetTitle(title string) { b.title = title }

// =============================================================================
// Characters
// =============================================================================

// AddCharacter adds a character with default colors and returns it.
// Returns INVALID_INPUT for an unusable name and CONFLICT if the name is taken.
func (b *Book) AddCharacter(name string) (Character, error) {
	return b.AddCharacterObj(NewCharacter(name))
}

// AddCharacterObj adds c as given, with the same rules as [Book.AddCharacter].
// Empty colors are replaced by the defaults.
func (b *Book) AddCharacterObj(c Character) (Character, error) {
	if err := errs.ValidateCharacterName(c.Name); err != nil {
		return Character{}, err
	}
	if _, exists := b.characters[c.Name]; exists {
		return Character{}, errs.New(errs.ErrCodeConflict, "character %q is already present in book", c.Name)
	}
	if c.FillColor == "" {
		c.FillColor = DefaultFillColor
	}
	if c.FontColor == "" {
		c.FontColor = DefaultFontColor
	}
	b.characters[c.Name] = &c
	return c, nil
}

// Character returns the character called name.
func (b *Book) Character(name string) (Character, bool) {
	c, ok := b.characters[name]
	if !ok {
		return Character{}, false
	}
	return *c, true
}

// RenameCharacter renames a character, re-keying the character map and every
// page that refers to it in one step.
//
// Returns NOT_FOUND if oldName is unknown, INVALID_INPUT for an unusable
// newName, and CONFLICT if a different character already uses newName.
// Renaming a character to its own name is a no-op.
func (b *Book) RenameCharacter(oldName, newName string) error {
	c, ok := b.characters[oldName]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "character %q not found", oldName)
	}
	if oldName == newName {
		return nil
	}
	if err := errs.ValidateCharacterName(newName); err != nil {
		return err
	}
	if other, exists := b.characters[newName]; exists && other != c {
		return errs.New(errs.ErrCodeConflict, "character %q is already present in book", newName)
	}

	delete(b.characters, oldName)
	c.Name = newName
	b.characters[newName] = c
	for _, p := range b.pages {
		if p.character == oldName {
			p.character = newName
		}
	}
	return nil
}

// SetCharacterColors updates a character's display colors. An empty string
// leaves the corresponding color unchanged.
// Returns NOT_FOUND if the character is unknown and INVALID_COLOR for a
// color Graphviz would not understand.
func (b *Book) SetCharacterColors(name, fill, font string) error {
	c, ok := b.characters[name]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "character %q not found", name)
	}
	for _, color := range []string{fill, font} {
		if color == "" {
			continue
		}
		if err := errs.ValidateColor(color); err != nil {
			return err
		}
	}
	if fill != "" {
		c.FillColor = fill
	}
	if font != "" {
		c.FontColor = font
	}
	return nil
}

// DeleteCharacter removes a character.
// Returns NOT_FOUND if it is unknown and CONFLICT while any page uses it.
func (b *Book) DeleteCharacter(name string) error {
	if _, ok := b.characters[name]; !ok {
		return errs.New(errs.ErrCodeNotFound, "character %q not found", name)
	}
	if used := b.CharacterUsage(name); len(used) > 0 {
		return errs.New(errs.ErrCodeConflict, "character %q is used by %d page(s), starting with page %s", name, len(used), used[0])
	}
	delete(b.characters, name)
	return nil
}

// CharacterUsage returns the ids of pages whose character is name, in order.
func (b *Book) CharacterUsage(name string) []PageID {
	var ids []PageID
	for id, p := range b.pages {
		if p.character == name {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, ComparePageIDs)
	return ids
}

// Characters returns all characters sorted by name.
func (b *Book) Characters() []Character {
	out := make([]Character, 0, len(b.characters))
	for _, name := range slices.Sorted(maps.Keys(b.characters)) {
		out = append(out, *b.characters[name])
	}
	return out
}

// CharacterCount returns the number of characters.
func (b *Book) CharacterCount() int { return len(b.characters) }

// =============================================================================
// Pages
// =============================================================================

// AddPage creates a page and adds it to the book.
// Returns INVALID_INPUT for an invalid label, CONFLICT if id is already a
// page and NOT_FOUND if character is not a character of the book. An intermediate marker for id is removed,
// since the reserved page now exists.
func (b *Book) AddPage(id PageID, character, summary string) (*Page, error) {
	return b.AddPageObj(NewPage(id, character, summary))
}

// AddPageObj adds an existing page object, with the same rules as [Book.AddPage].
func (b *Book) AddPageObj(p *Page) (*Page, error) {
	if err := p.id.Validate(); err != nil {
		return nil, err
	}
	for target := range p.choices {
		if err := target.Validate(); err != nil {
			return nil, err
		}
	}
	if _, exists := b.pages[p.id]; exists {
		return nil, errs.New(errs.ErrCodeConflict, "page %s already exists", p.id)
	}
	if _, ok := b.characters[p.character]; !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "character %q not found for page %s", p.character, p.id)
	}
	if p.choices == nil {
		p.choices = make(map[PageID]Choice)
	}
	delete(b.intermediates, p.id)
	b.pages[p.id] = p
	return p, nil
}

// Page returns the page with the given id.
func (b *Book) Page(id PageID) (*Page, bool) {
	p, ok := b.pages[id]
	return p, ok
}

// HasPage reports whether id is a written page.
func (b *Book) HasPage(id PageID) bool {
	_, ok := b.pages[id]
	return ok
}

// SetPageCharacter moves a page to another character.
// Returns NOT_FOUND if either the page or the character is unknown.
func (b *Book) SetPageCharacter(id PageID, character string) error {
	p, ok := b.pages[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "page %s not found", id)
	}
	if _, ok := b.characters[character]; !ok {
		return errs.New(errs.ErrCodeNotFound, "character %q not found", character)
	}
	p.character = character
	return nil
}

// CharacterOf resolves the character of page p. The second result is false
// only if p does not belong to this book.
func (b *Book) CharacterOf(p *Page) (Character, bool) {
	return b.Character(p.character)
}

// DeletePage removes a page. Choices on other pages that target it are kept
// and become dangling. Returns NOT_FOUND if the page does not exist.
func (b *Book) DeletePage(id PageID) error {
	if _, ok := b.pages[id]; !ok {
		return errs.New(errs.ErrCodeNotFound, "page %s not found", id)
	}
	delete(b.pages, id)
	return nil
}

// Pages returns all pages sorted by id.
func (b *Book) Pages() []*Page {
	out := make([]*Page, 0, len(b.pages))
	for _, id := range slices.SortedFunc(maps.Keys(b.pages), ComparePageIDs) {
		out = append(out, b.pages[id])
	}
	return out
}

// PageCount returns the number of written pages.
func (b *Book) PageCount() int { return len(b.pages) }

// Inbound returns the ids of pages holding a choice that targets id, in order.
func (b *Book) Inbound(id PageID) []PageID {
	var from []PageID
	for src, p := range b.pages {
		if _, ok := p.choices[id]; ok {
			from = append(from, src)
		}
	}
	slices.SortFunc(from, ComparePageIDs)
	return from
}

// =============================================================================
// Intermediate markers
// =============================================================================

// AddIntermediate reserves id as an unwritten page. Adding an existing marker
// is a no-op. Returns INVALID_INPUT for an invalid label and CONFLICT if id
// is already a written page.
func (b *Book) AddIntermediate(id PageID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if _, ok := b.pages[id]; ok {
		return errs.New(errs.ErrCodeConflict, "page %s already exists", id)
	}
	b.intermediates[id] = struct{}{}
	return nil
}

// DeleteIntermediate removes the marker for id. Removing a missing marker is
// a no-op.
func (b *Book) DeleteIntermediate(id PageID) {
	delete(b.intermediates, id)
}

// HasIntermediate reports whether id is reserved by a marker.
func (b *Book) HasIntermediate(id PageID) bool {
	_, ok := b.intermediates[id]
	return ok
}

// Intermediates returns all markers sorted by id.
func (b *Book) Intermediates() []PageID {
	return slices.SortedFunc(maps.Keys(b.intermediates), ComparePageIDs)
}

// =============================================================================
// Authoring reports
// =============================================================================

// PageRange is an inclusive run of page numbers.
type PageRange struct {
	From, To int
}

// Len returns the number of pages in r.
func (r PageRange) Len() int { return r.To - r.From + 1 }

// String formats r as "3" or "3-7".
func (r PageRange) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return strconv.Itoa(r.From) + "-" + strconv.Itoa(r.To)
}

// MissingRanges returns the gaps between 1 and the highest used page number
// that are neither written pages nor intermediate markers, as sorted
// ranges. Labels do not take part. The cost depends on the number of pages
// and markers, not on how large their numbers are.
func (b *Book) MissingRanges() []PageRange {
	used := make([]int, 0, len(b.pages)+len(b.intermediates))
	for id := range b.pages {
		if n, ok := id.Number(); ok {
			used = append(used, n)
		}
	}
	for id := range b.intermediates {
		if n, ok := id.Number(); ok {
			used = append(used, n)
		}
	}
	slices.Sort(used)

	var gaps []PageRange
	prev := 0
	for _, n := range used {
		if n > prev+1 {
			gaps = append(gaps, PageRange{From: prev + 1, To: n - 1})
		}
		prev = max(prev, n)
	}
	return gaps
}

// MissingPages returns every page number covered by [Book.MissingRanges].
// The result grows with the size of the gaps, so prefer MissingRanges when
// page numbers may be far apart.
func (b *Book) MissingPages() []int {
	var missing []int
	for _, r := range b.MissingRanges() {
		for n := r.From; n <= r.To; n++ {
			missing = append(missing, n)
		}
	}
	return missing
}

// DanglingTargets returns the choice targets that are neither written pages
// nor intermediate markers, sorted by id.
func (b *Book) DanglingTargets() []PageID {
	seen := make(map[PageID]struct{})
	for _, p := range b.pages {
		for target := range p.choices {
			if _, ok := b.pages[target]; ok {
				continue
			}
			if _, ok := b.intermediates[target]; ok {
				continue
			}
			seen[target] = struct{}{}
		}
	}
	return slices.SortedFunc(maps.Keys(seen), ComparePageIDs)
}
