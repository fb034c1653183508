package nodelink

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/apocalyptech/choosable/pkg/book"
)

// Default styling for pages marked as endings.
const (
	DefaultEndingFill = "azure4"
	DefaultEndingFont = "white"
)

// Options configures DOT generation.
type Options struct {
	// Name is the graph name. It is sanitised to a DOT identifier;
	// empty means "book".
	Name string

	// Rankdir sets the graph layout direction (TB, LR, BT, RL).
	// Empty leaves the Graphviz default.
	Rankdir string

	// EndingFill and EndingFont override the closed-page colors.
	EndingFill string
	EndingFont string

	// Notify receives notices about export decisions the caller may want to
	// surface, such as an unvisited page referenced with differing summaries.
	Notify func(msg string)
}

func (o Options) endingFill() string {
	if o.EndingFill != "" {
		return o.EndingFill
	}
	return DefaultEndingFill
}

func (o Options) endingFont() string {
	if o.EndingFont != "" {
		return o.EndingFont
	}
	return DefaultEndingFont
}

func (o Options) notify(format string, args ...any) {
	if o.Notify != nil {
		o.Notify(fmt.Sprintf(format, args...))
	}
}

// Kind distinguishes pages that exist from pages only referenced by choices.
type Kind int

const (
	// KindVisited is a real page of the book.
	KindVisited Kind = iota
	// KindUnvisited is a choice target with no page and no reservation.
	KindUnvisited
	// KindReserved is a choice target held by an intermediate marker.
	KindReserved
)

func (k Kind) String() string {
	switch k {
	case KindVisited:
		return "visited"
	case KindUnvisited:
		return "unvisited"
	case KindReserved:
		return "reserved"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one vertex of the exported graph.
type Node struct {
	ID      book.PageID
	Kind    Kind
	Summary string

	// Set for visited nodes only.
	Canonical bool
	Ending    bool
	Character book.Character
}

// Edge is one choice, from the owning page to its target.
type Edge struct {
	From book.PageID
	To   book.PageID
}

// Nodes returns every node of the exported graph in ascending id order:
// one per page, plus one per choice target that is not a page.
//
// A target node takes its summary from the first choice that references it,
// walking pages and then choices in ascending order. Later choices with a
// different summary are reported through Options.Notify.
func Nodes(b *book.Book, opts Options) []Node {
	var nodes []Node
	for _, p := range b.Pages() {
		c, ok := b.Character(p.Character())
		if !ok {
			c = book.NewCharacter(p.Character())
		}
		nodes = append(nodes, Node{
			ID:        p.ID(),
			Kind:      KindVisited,
			Summary:   p.Summary,
			Canonical: p.Canonical,
			Ending:    p.Ending,
			Character: c,
		})
	}

	targets := make(map[book.PageID]int)
	for _, p := range b.Pages() {
		for _, ch := range p.Choices() {
			if b.HasPage(ch.Target) {
				continue
			}
			if i, seen := targets[ch.Target]; seen {
				if kept := nodes[i].Summary; kept != ch.Summary {
					opts.notify("page %s is referenced with differing summaries; keeping %q, ignoring %q from page %s",
						ch.Target, kept, ch.Summary, p.ID())
				}
				continue
			}
			kind := KindUnvisited
			if b.HasIntermediate(ch.Target) {
				kind = KindReserved
			}
			targets[ch.Target] = len(nodes)
			nodes = append(nodes, Node{ID: ch.Target, Kind: kind, Summary: ch.Summary})
		}
	}

	slices.SortStableFunc(nodes, func(a, b Node) int {
		return book.ComparePageIDs(a.ID, b.ID)
	})
	return nodes
}

// Edges returns one edge per choice in page-then-choice order.
func Edges(b *book.Book) []Edge {
	var edges []Edge
	for _, p := range b.Pages() {
		for _, ch := range p.Choices() {
			edges = append(edges, Edge{From: p.ID(), To: ch.Target})
		}
	}
	return edges
}

// ToDOT converts a book to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Output is deterministic: nodes are declared in ascending id order with
// visited and unvisited pages interleaved, followed by the edges.
func ToDOT(b *book.Book, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", graphName(opts.Name))
	if opts.Rankdir != "" {
		fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Rankdir)
	}
	buf.WriteString("\n")

	for _, n := range Nodes(b, opts) {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n.ID), strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range Edges(b) {
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(e.From), nodeID(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOT writes the DOT form of b to w.
func WriteDOT(b *book.Book, w io.Writer, opts Options) error {
	if _, err := io.WriteString(w, ToDOT(b, opts)); err != nil {
		return fmt.Errorf("write DOT: %w", err)
	}
	return nil
}

// Style is the visual treatment of a visited page.
type Style struct {
	Shape     string
	FillColor string
	FontColor string
	Styles    []string
}

// PageStyle derives a visited page's style. Endings use the closed colors
// regardless of character; canonical pages are boxed and bold.
func PageStyle(ending, canonical bool, c book.Character, opts Options) Style {
	var s Style
	if canonical {
		s.Shape = "box"
		s.Styles = append(s.Styles, "bold")
	}
	if ending {
		s.FillColor, s.FontColor = opts.endingFill(), opts.endingFont()
	} else {
		s.FillColor, s.FontColor = c.FillColor, c.FontColor
	}
	s.Styles = append(s.Styles, "filled")
	return s
}

func fmtLabel(n Node) string {
	return fmt.Sprintf("Page %s - %s", n.ID, n.Summary)
}

func fmtAttrs(n Node, opts Options) []string {
	if n.Kind != KindVisited {
		attrs := []string{fmt.Sprintf("label=<<i>(%s)</i>>", htmlEscape(fmtLabel(n)))}
		if n.Kind == KindReserved {
			attrs = append(attrs, "style=dashed")
		}
		return attrs
	}

	s := PageStyle(n.Ending, n.Canonical, n.Character, opts)
	attrs := []string{"label=" + quote(fmtLabel(n))}
	if s.Shape != "" {
		attrs = append(attrs, "shape="+s.Shape)
	}
	if s.FillColor != "" {
		attrs = append(attrs, "fillcolor="+quote(s.FillColor))
	}
	if s.FontColor != "" {
		attrs = append(attrs, "fontcolor="+quote(s.FontColor))
	}
	if len(s.Styles) > 0 {
		attrs = append(attrs, "style="+quote(strings.Join(s.Styles, ",")))
	}
	return attrs
}

// nodeID writes page numbers as DOT numerals and labels as quoted strings.
func nodeID(id book.PageID) string {
	if n, ok := id.Number(); ok {
		return fmt.Sprint(n)
	}
	return quote(id.Label())
}

func graphName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	if strings.Trim(s, "_") == "" {
		return "book"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	// DOT keywords are case-insensitive and cannot be used as bare ids.
	switch strings.ToLower(s) {
	case "graph", "digraph", "subgraph", "node", "edge", "strict":
		s = "_" + s
	}
	return s
}

// flatten replaces control characters, including newlines, with spaces.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + quoteEscaper.Replace(flatten(s)) + `"`
}

var htmlEscaper = strings.NewReplacer("<", "", ">", "", "&", "&amp;")

// htmlEscape prepares s for an HTML-like label: angle brackets are
// stripped and ampersands escaped.
func htmlEscape(s string) string {
	return htmlEscaper.Replace(flatten(s))
}
