package io

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// SchemaVersion is the document version written by [Encode].
//
// Version 1 documents (no "version" key) predate character colors and
// intermediate markers; both are optional when decoding.
const SchemaVersion = 2

type characterRecord struct {
	Name      string `yaml:"name"`
	FillColor string `yaml:"graphviz_fillcolor"`
	FontColor string `yaml:"graphviz_fontcolor"`
}

type pageRecord struct {
	PageNum   yaml.Node `yaml:"pagenum"`
	Character string    `yaml:"character"`
	Summary   string    `yaml:"summary"`
	Canonical bool      `yaml:"canonical"`
	Ending    bool      `yaml:"ending"`
	Choices   yaml.Node `yaml:"choices"`
}

type choiceRecord struct {
	Target  yaml.Node `yaml:"target"`
	Summary string    `yaml:"summary"`
}

// Encode serializes a book to a YAML document.
//
// Characters are keyed by name, pages and choices by id, all in sorted
// order, so unchanged books encode to identical bytes.
//
// Returns an INVARIANT error if the book has no characters or no pages;
// an empty book is not a valid persisted artifact.
func Encode(b *book.Book) ([]byte, error) {
	if b.CharacterCount() == 0 {
		return nil, errs.New(errs.ErrCodeInvariant, "refusing to save book with no characters defined")
	}
	if b.PageCount() == 0 {
		return nil, errs.New(errs.ErrCodeInvariant, "refusing to save book with no pages defined")
	}

	characters := mappingNode()
	for _, c := range b.Characters() {
		characters.Content = append(characters.Content,
			strNode(c.Name),
			mappingNode(
				strNode("name"), strNode(c.Name),
				strNode("graphviz_fillcolor"), strNode(c.FillColor),
				strNode("graphviz_fontcolor"), strNode(c.FontColor),
			))
	}

	pages := mappingNode()
	for _, p := range b.Pages() {
		choices := mappingNode()
		for _, c := range p.Choices() {
			choices.Content = append(choices.Content,
				idNode(c.Target),
				mappingNode(
					strNode("target"), idNode(c.Target),
					strNode("summary"), strNode(c.Summary),
				))
		}
		pages.Content = append(pages.Content,
			idNode(p.ID()),
			mappingNode(
				strNode("pagenum"), idNode(p.ID()),
				strNode("character"), strNode(p.Character()),
				strNode("summary"), strNode(p.Summary),
				strNode("canonical"), boolNode(p.Canonical),
				strNode("ending"), boolNode(p.Ending),
				strNode("choices"), choices,
			))
	}

	var intermediates []*yaml.Node
	for _, id := range b.Intermediates() {
		intermediates = append(intermediates, idNode(id))
	}

	doc := mappingNode(
		strNode("version"), intNode(SchemaVersion),
		strNode("book"), mappingNode(strNode("title"), strNode(b.Title())),
		strNode("characters"), characters,
		strNode("pages"), pages,
		strNode("intermediates"), sequenceNode(intermediates),
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode book")
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode book")
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML document produced by [Encode] (or written by hand)
// into a new book.
//
// Decode returns a SCHEMA error if the document is not valid YAML, lacks
// book.title, has a newer version than [SchemaVersion], references an
// unknown character, or contradicts itself (a record whose key differs from
// its pagenum/target/name field, duplicate ids, or an id that is both a page
// and an intermediate marker).
//
// A missing "intermediates" key is an empty set and missing colors take the
// character defaults, which keeps version 1 documents loadable.
func Decode(data []byte) (*book.Book, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errs.Wrap(errs.ErrCodeSchema, err, "parse YAML")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errs.New(errs.ErrCodeSchema, "YAML data not found")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errs.New(errs.ErrCodeSchema, "line %d: document must be a mapping", doc.Line)
	}
	top := fields(doc)

	if err := checkVersion(top["version"]); err != nil {
		return nil, err
	}

	title, err := decodeTitle(top["book"])
	if err != nil {
		return nil, err
	}
	b := book.New(title)

	if err := pairs(top["characters"], "characters", func(k, v *yaml.Node) error {
		return decodeCharacter(b, k, v)
	}); err != nil {
		return nil, err
	}

	if err := pairs(top["pages"], "pages", func(k, v *yaml.Node) error {
		return decodePage(b, k, v)
	}); err != nil {
		return nil, err
	}

	if err := decodeIntermediates(b, top["intermediates"]); err != nil {
		return nil, err
	}

	return b, nil
}

func checkVersion(n *yaml.Node) error {
	if n == nil {
		return nil
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "line %d: version", n.Line)
	}
	if v < 1 || v > SchemaVersion {
		return errs.New(errs.ErrCodeSchema, "unsupported document version %d (supported: 1-%d)", v, SchemaVersion)
	}
	return nil
}

func decodeTitle(n *yaml.Node) (string, error) {
	if n == nil || n.Kind != yaml.MappingNode {
		return "", errs.New(errs.ErrCodeSchema, "missing book section")
	}
	t, ok := fields(n)["title"]
	if !ok || t.Kind != yaml.ScalarNode || t.ShortTag() == "!!null" {
		return "", errs.New(errs.ErrCodeSchema, "missing book title")
	}
	return t.Value, nil
}

func decodeCharacter(b *book.Book, k, v *yaml.Node) error {
	var rec characterRecord
	if err := v.Decode(&rec); err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "character %q", k.Value)
	}
	if rec.Name == "" {
		rec.Name = k.Value
	}
	if rec.Name != k.Value {
		return errs.New(errs.ErrCodeSchema, "character key %q does not match name %q", k.Value, rec.Name)
	}
	_, err := b.AddCharacterObj(book.Character{
		Name:      rec.Name,
		FillColor: rec.FillColor,
		FontColor: rec.FontColor,
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "character %q", k.Value)
	}
	return nil
}

func decodePage(b *book.Book, k, v *yaml.Node) error {
	id, err := parseID(k)
	if err != nil {
		return err
	}
	var rec pageRecord
	if err := v.Decode(&rec); err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "page %s", id)
	}
	if err := checkKey(id, &rec.PageNum, "page", "pagenum"); err != nil {
		return err
	}

	p := book.NewPage(id, rec.Character, rec.Summary)
	p.Canonical = rec.Canonical
	p.Ending = rec.Ending

	if err := pairs(&rec.Choices, fmt.Sprintf("choices of page %s", id), func(ck, cv *yaml.Node) error {
		target, err := parseID(ck)
		if err != nil {
			return err
		}
		var crec choiceRecord
		if err := cv.Decode(&crec); err != nil {
			return errs.Wrap(errs.ErrCodeSchema, err, "page %s choice %s", id, target)
		}
		if err := checkKey(target, &crec.Target, "choice", "target"); err != nil {
			return err
		}
		if _, err := p.AddChoice(target, crec.Summary); err != nil {
			return errs.Wrap(errs.ErrCodeSchema, err, "page %s", id)
		}
		return nil
	}); err != nil {
		return err
	}

	if _, err := b.AddPageObj(p); err != nil {
		return errs.Wrap(errs.ErrCodeSchema, err, "page %s", id)
	}
	return nil
}

// checkKey verifies that a record's own id field, when present, agrees with
// the mapping key it is stored under.
func checkKey(key book.PageID, field *yaml.Node, what, name string) error {
	if field.Kind == 0 {
		return nil
	}
	id, err := parseID(field)
	if err != nil {
		return err
	}
	if id != key {
		return errs.New(errs.ErrCodeSchema, "%s key %s does not match %s %s", what, key, name, id)
	}
	return nil
}

func decodeIntermediates(b *book.Book, n *yaml.Node) error {
	if n == nil || n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return errs.New(errs.ErrCodeSchema, "line %d: intermediates must be a sequence", n.Line)
	}
	for _, item := range n.Content {
		id, err := parseID(item)
		if err != nil {
			return err
		}
		if err := b.AddIntermediate(id); err != nil {
			return errs.Wrap(errs.ErrCodeSchema, err, "intermediate %s", id)
		}
	}
	return nil
}
