package book

import (
	"maps"
	"slices"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// Default display colors for new characters. Any Graphviz color works.
const (
	DefaultFillColor = "white"
	DefaultFontColor = "black"
)

// Character is a point-of-view character. Name is the identity key; the two
// colors only affect graph export styling.
type Character struct {
	Name      string
	FillColor string
	FontColor string
}

// NewCharacter returns a character with the default colors.
func NewCharacter(name string) Character {
	return Character{Name: name, FillColor: DefaultFillColor, FontColor: DefaultFontColor}
}

// Choice is an outgoing edge of a page. Target may name a page that does not
// exist yet; such dangling choices mark content still to be written.
type Choice struct {
	Target  PageID
	Summary string
}

// Page is one narrative unit: an active character, a summary, and the
// choices leading out of it.
//
// The character is held by name and resolved through the owning [Book];
// use [Book.SetPageCharacter] to change it. Summary, Canonical and Ending
// carry no structural invariant and may be set directly.
type Page struct {
	id        PageID
	character string
	choices   map[PageID]Choice

	Summary   string
	Canonical bool // on the "official" story path; display only
	Ending    bool // terminal page; choices are not forbidden, just unusual
}

// NewPage returns a detached page with no choices. It becomes part of a book
// through [Book.AddPageObj].
func NewPage(id PageID, character, summary string) *Page {
	return &Page{
		id:        id,
		character: character,
		choices:   make(map[PageID]Choice),
		Summary:   summary,
	}
}

// ID returns the page id.
func (p *Page) ID() PageID { return p.id }

// Character returns the name of the page's character.
func (p *Page) Character() string { return p.character }

// AddChoice adds a choice leading to target.
// Returns INVALID_INPUT for an invalid target label and a CONFLICT error if
// the page already has a choice for target;
// branches that converge on one destination are modelled as a single choice.
func (p *Page) AddChoice(target PageID, summary string) (Choice, error) {
	return p.AddChoiceObj(Choice{Target: target, Summary: summary})
}

// AddChoiceObj adds c to the page, with the same rules as [Page.AddChoice].
func (p *Page) AddChoiceObj(c Choice) (Choice, error) {
	if err := c.Target.Validate(); err != nil {
		return Choice{}, err
	}
	if _, exists := p.choices[c.Target]; exists {
		return Choice{}, errs.New(errs.ErrCodeConflict, "target %s already exists on page %s", c.Target, p.id)
	}
	if p.choices == nil {
		p.choices = make(map[PageID]Choice)
	}
	p.choices[c.Target] = c
	return c, nil
}

// DeleteChoice removes the choice leading to target.
// Returns a NOT_FOUND error if there is none.
func (p *Page) DeleteChoice(target PageID) error {
	if _, ok := p.choices[target]; !ok {
		return errs.New(errs.ErrCodeNotFound, "choice with target %s not found on page %s", target, p.id)
	}
	delete(p.choices, target)
	return nil
}

// Choice returns the choice leading to target, if any.
func (p *Page) Choice(target PageID) (Choice, bool) {
	c, ok := p.choices[target]
	return c, ok
}

// Choices returns the page's choices ordered by target.
func (p *Page) Choices() []Choice {
	out := make([]Choice, 0, len(p.choices))
	for _, target := range slices.SortedFunc(maps.Keys(p.choices), ComparePageIDs) {
		out = append(out, p.choices[target])
	}
	return out
}

// ChoiceCount returns the number of choices on the page.
func (p *Page) ChoiceCount() int { return len(p.choices) }

// SetSummary replaces the page summary.
func (p *Page) SetSummary(summary string) { p.Summary = summary }

// ToggleCanonical flips the canonical flag and returns the new value.
func (p *Page) ToggleCanonical() bool {
	p.Canonical = !p.Canonical
	return p.Canonical
}

// ToggleEnding flips the ending flag and returns the new value.
func (p *Page) ToggleEnding() bool {
	p.Ending = !p.Ending
	return p.Ending
}
