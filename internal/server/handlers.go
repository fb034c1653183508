package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"

	"github.com/apocalyptech/choosable/pkg/book"
	"github.com/apocalyptech/choosable/pkg/cache"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

// BookJSON is the /book.json payload.
type BookJSON struct {
	Title         string          `json:"title"`
	Characters    []CharacterJSON `json:"characters"`
	Pages         []PageJSON      `json:"pages"`
	Intermediates []string        `json:"intermediates"`
	Missing       []RangeJSON     `json:"missing"`
	MissingCount  int             `json:"missing_count"`
	Dangling      []string        `json:"dangling"`
}

// RangeJSON is an inclusive run of missing page numbers.
type RangeJSON struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (r RangeJSON) String() string {
	return book.PageRange{From: r.From, To: r.To}.String()
}

// CharacterJSON is one character with its usage count.
type CharacterJSON struct {
	Name      string `json:"name"`
	FillColor string `json:"fill_color"`
	FontColor string `json:"font_color"`
	Pages     int    `json:"pages"`
}

// PageJSON is one page with its choices.
type PageJSON struct {
	ID        string       `json:"id"`
	Character string       `json:"character"`
	Summary   string       `json:"summary"`
	Canonical bool         `json:"canonical"`
	Ending    bool         `json:"ending"`
	Choices   []ChoiceJSON `json:"choices"`
}

// ChoiceJSON is one choice. Visited is true when the target page exists.
type ChoiceJSON struct {
	Target  string `json:"target"`
	Summary string `json:"summary"`
	Visited bool   `json:"visited"`
}

func newBookJSON(b *book.Book) BookJSON {
	out := BookJSON{
		Title:         b.Title(),
		Characters:    []CharacterJSON{},
		Pages:         []PageJSON{},
		Intermediates: ids(b.Intermediates()),
		Missing:       []RangeJSON{},
		Dangling:      ids(b.DanglingTargets()),
	}
	for _, r := range b.MissingRanges() {
		out.Missing = append(out.Missing, RangeJSON{From: r.From, To: r.To})
		out.MissingCount += r.Len()
	}
	for _, c := range b.Characters() {
		out.Characters = append(out.Characters, CharacterJSON{
			Name:      c.Name,
			FillColor: c.FillColor,
			FontColor: c.FontColor,
			Pages:     len(b.CharacterUsage(c.Name)),
		})
	}
	for _, p := range b.Pages() {
		pj := PageJSON{
			ID:        p.ID().String(),
			Character: p.Character(),
			Summary:   p.Summary,
			Canonical: p.Canonical,
			Ending:    p.Ending,
			Choices:   []ChoiceJSON{},
		}
		for _, ch := range p.Choices() {
			pj.Choices = append(pj.Choices, ChoiceJSON{
				Target:  ch.Target.String(),
				Summary: ch.Summary,
				Visited: b.HasPage(ch.Target),
			})
		}
		out.Pages = append(out.Pages, pj)
	}
	return out
}

func ids(in []book.PageID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = id.String()
	}
	return out
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	b, err := s.load()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookJSON(b))
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	b, err := s.load()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := nodelink.WriteDOT(b, w, s.opts.DOT); err != nil {
		s.logger.Warn("Write DOT failed", "err", err)
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	b, err := s.load()
	if err != nil {
		s.writeError(w, err)
		return
	}
	dot := nodelink.ToDOT(b, s.opts.DOT)
	key := cache.ArtifactKey(dot, cache.ArtifactKeyOpts{Format: string(nodelink.FormatSVG)})

	svg, hit, err := cache.GetOrCompute(r.Context(), s.cache, key, s.opts.TTL, func() ([]byte, error) {
		return s.render(r.Context(), dot)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(svg)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.graph img { max-width: 100%; }
.dim { color: #888; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="dim">{{len .Pages}} pages, {{len .Characters}} characters{{if .MissingCount}}, {{.MissingCount}} missing{{end}}</p>
<div class="graph"><img src="book.svg" alt="story graph"></div>
<h2>Characters</h2>
<ul>
{{range .Characters}}<li>{{.Name}} <span class="dim">({{.Pages}} pages)</span></li>
{{end}}</ul>
{{if .Missing}}<h2>Missing pages</h2>
<p>{{range $i, $n := .Missing}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
{{end}}<p class="dim"><a href="book.dot">DOT</a> · <a href="book.json">JSON</a></p>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := s.load()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, newBookJSON(b)); err != nil {
		s.logger.Warn("Render index failed", "err", err)
	}
}

// writeError maps a load or render failure to an HTTP status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errs.IsSchema(err):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Warn("Request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
