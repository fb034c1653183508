package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"github.com/apocalyptech/choosable/pkg/book"
	"github.com/apocalyptech/choosable/pkg/cache"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	bookio "github.com/apocalyptech/choosable/pkg/io"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

// scriptReader answers prompts from a fixed list of lines. "^C" stands for
// an interrupt; running out of lines is end of input.
type scriptReader struct {
	lines   []string
	prompts []string
	closed  int
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (r *scriptReader) SetPrompt(prompt string) { r.prompts = append(r.prompts, prompt) }

func (r *scriptReader) Close() error {
	r.closed++
	return nil
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

// testEnv runs commands against a book file in a temporary directory with
// an empty configuration file.
type testEnv struct {
	t      *testing.T
	dir    string
	book   string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return &testEnv{t: t, dir: dir, book: filepath.Join(dir, "book.yaml"), config: cfg}
}

// run executes one command line. input answers any prompts.
func (e *testEnv) run(input []string, args ...string) (string, error) {
	e.t.Helper()
	out := captureStdout(e.t)

	c := New(io.Discard, LogInfo)
	script := &scriptReader{lines: input}
	c.newReader = func(prompt, historyFile string) (lineReader, error) {
		return script, nil
	}

	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config, "-f", e.book}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(nil, args...)
	if err != nil {
		e.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *testEnv) init() {
	e.t.Helper()
	e.mustRun("init", "--title", "Romeo and/or Juliet", "--character", "Juliet", "--summary", "On the balcony")
}

func (e *testEnv) load() *book.Book {
	e.t.Helper()
	b, err := bookio.Load(e.book)
	if err != nil {
		e.t.Fatalf("load: %v", err)
	}
	return b
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("init", "--title", "Romeo and/or Juliet", "--character", "Juliet", "--summary", "On the balcony")
	if !strings.Contains(out, "Romeo and/or Juliet") {
		t.Errorf("output = %q, want the title", out)
	}

	b := e.load()
	if b.Title() != "Romeo and/or Juliet" {
		t.Errorf("Title() = %q", b.Title())
	}
	p, ok := b.Page(book.PageNum(1))
	if !ok {
		t.Fatal("page 1 missing")
	}
	if p.Character() != "Juliet" || p.Summary != "On the balcony" {
		t.Errorf("page 1 = %q/%q", p.Character(), p.Summary)
	}
	ch, _ := b.Character("Juliet")
	if ch.FillColor != "white" || ch.FontColor != "black" {
		t.Errorf("colors = %q/%q, want configured defaults", ch.FillColor, ch.FontColor)
	}
}

func TestInitRefusesExistingFile(t *testing.T) {
	e := newTestEnv(t)
	e.init()

	_, err := e.run(nil, "init", "--title", "Other", "--character", "Romeo", "--summary", "x")
	if !errs.IsConflict(err) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if e.load().Title() != "Romeo and/or Juliet" {
		t.Error("existing book was replaced")
	}

	e.mustRun("init", "--title", "Other", "--character", "Romeo", "--summary", "x", "--force")
	if e.load().Title() != "Other" {
		t.Error("--force did not replace the book")
	}
}

func TestMissingBook(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(nil, "show")
	if !errs.IsNotFound(err) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(errs.UserMessage(err), "choosable init") {
		t.Errorf("message = %q, want a hint", errs.UserMessage(err))
	}
}

func TestEditingCommands(t *testing.T) {
	e := newTestEnv(t)
	e.init()

	e.mustRun("character", "add", "Romeo", "--fill", "red", "--font", "white")
	e.mustRun("page", "add", "2", "-c", "Romeo", "-s", "In the garden")
	e.mustRun("choice", "add", "1", "2", "Climb", "the", "wall")
	e.mustRun("choice", "add", "1", "5", "Stay inside")
	e.mustRun("page", "canon", "2")
	e.mustRun("page", "ending", "2")
	e.mustRun("intermediate", "add", "3")

	b := e.load()
	p1, _ := b.Page(book.PageNum(1))
	ch, ok := p1.Choice(book.PageNum(2))
	if !ok || ch.Summary != "Climb the wall" {
		t.Errorf("choice 1->2 = %+v, %v", ch, ok)
	}
	p2, _ := b.Page(book.PageNum(2))
	if !p2.Canonical || !p2.Ending {
		t.Errorf("page 2 canonical=%v ending=%v", p2.Canonical, p2.Ending)
	}
	if !b.HasIntermediate(book.PageNum(3)) {
		t.Error("page 3 not reserved")
	}

	out := e.mustRun("show", "1")
	for _, want := range []string{
		"Summary: On the balcony",
		"Climb the wall (turn to page 2 - visited (CANON))",
		"Stay inside (turn to page 5)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show 1 missing %q in:\n%s", want, out)
		}
	}

	out = e.mustRun("show")
	if !strings.Contains(out, "Unwritten") || !strings.Contains(out, "5") {
		t.Errorf("overview should report unwritten target 5:\n%s", out)
	}

	e.mustRun("page", "summary", "2", "Under", "the", "balcony")
	e.mustRun("page", "character", "2", "Juliet")
	e.mustRun("choice", "delete", "1", "5")
	e.mustRun("intermediate", "delete", "3")

	b = e.load()
	p2, _ = b.Page(book.PageNum(2))
	if p2.Summary != "Under the balcony" || p2.Character() != "Juliet" {
		t.Errorf("page 2 = %q/%q", p2.Summary, p2.Character())
	}
	p1, _ = b.Page(book.PageNum(1))
	if _, ok := p1.Choice(book.PageNum(5)); ok {
		t.Error("choice 1->5 still present")
	}
	if b.HasIntermediate(book.PageNum(3)) {
		t.Error("page 3 still reserved")
	}
}

func TestPageAddClearsReservation(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	e.mustRun("intermediate", "add", "4")
	e.mustRun("page", "add", "4", "-c", "Juliet", "-s", "Later")

	if e.load().HasIntermediate(book.PageNum(4)) {
		t.Error("reservation kept after the page was written")
	}
}

func TestPageAddUnknownCharacter(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	_, err := e.run(nil, "page", "add", "2", "-c", "Tybalt", "-s", "x")
	if !errs.IsNotFound(err) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if e.load().HasPage(book.PageNum(2)) {
		t.Error("page written despite the error")
	}
}

func TestCharacterCommands(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	e.mustRun("character", "add", "Romeo")
	e.mustRun("character", "rename", "Juliet", "Jules")
	e.mustRun("character", "color", "Jules", "--fill", "pink")

	b := e.load()
	p1, _ := b.Page(book.PageNum(1))
	if p1.Character() != "Jules" {
		t.Errorf("page 1 character = %q, want renamed", p1.Character())
	}
	ch, _ := b.Character("Jules")
	if ch.FillColor != "pink" {
		t.Errorf("fill = %q", ch.FillColor)
	}

	out := e.mustRun("list", "characters")
	if !strings.Contains(out, "Romeo") || !strings.Contains(out, "Jules") {
		t.Errorf("list characters:\n%s", out)
	}

	if _, err := e.run(nil, "character", "delete", "Jules"); err == nil {
		t.Error("deleting a character in use should fail")
	}
	e.mustRun("character", "delete", "Romeo")
	if _, ok := e.load().Character("Romeo"); ok {
		t.Error("Romeo not deleted")
	}
}

func TestPageDeleteKeepsChoices(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	e.mustRun("page", "add", "2", "-c", "Juliet", "-s", "Garden")
	e.mustRun("choice", "add", "1", "2", "Go down")

	out := e.mustRun("page", "delete", "2")
	if !strings.Contains(out, "still referenced by page(s) 1") {
		t.Errorf("output = %q", out)
	}
	b := e.load()
	if b.HasPage(book.PageNum(2)) {
		t.Error("page 2 not deleted")
	}
	p1, _ := b.Page(book.PageNum(1))
	if _, ok := p1.Choice(book.PageNum(2)); !ok {
		t.Error("choice to deleted page was removed")
	}

	out = e.mustRun("list", "dangling")
	if !strings.Contains(out, "2") {
		t.Errorf("list dangling:\n%s", out)
	}
}

func TestListMissingRanges(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	e.mustRun("page", "add", "5", "-c", "Juliet", "-s", "Later")
	e.mustRun("intermediate", "add", "3")
	e.mustRun("page", "add", "2000000000", "-c", "Juliet", "-s", "Far away")

	out := e.mustRun("list", "missing")
	if !strings.Contains(out, "2, 4, 6-1999999999") {
		t.Errorf("list missing:\n%s", out)
	}
}

func TestExportDOT(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	e.mustRun("choice", "add", "1", "2", "Climb")

	out := e.mustRun("export")
	if !strings.HasPrefix(out, "digraph book {") || !strings.Contains(out, "1 -> 2;") {
		t.Errorf("stdout DOT:\n%s", out)
	}

	dot := filepath.Join(e.dir, "graph.dot")
	e.mustRun("export", "-o", dot, "--rankdir", "lr")
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rankdir=LR;") {
		t.Errorf("graph.dot:\n%s", data)
	}
}

func TestExportOverwrite(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	dot := filepath.Join(e.dir, "graph.dot")
	if err := os.WriteFile(dot, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := e.run([]string{"n"}, "export", "-o", dot)
	if !errs.IsCanceled(err) {
		t.Fatalf("declined overwrite: err = %v, want CANCELED", err)
	}
	if data, _ := os.ReadFile(dot); string(data) != "old" {
		t.Error("file replaced after declining")
	}

	if _, err := e.run([]string{"y"}, "export", "-o", dot); err != nil {
		t.Fatalf("confirmed overwrite: %v", err)
	}
	if data, _ := os.ReadFile(dot); !strings.HasPrefix(string(data), "digraph") {
		t.Error("file not replaced after confirming")
	}

	if err := os.WriteFile(dot, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	e.mustRun("export", "-o", dot, "--force")
	if data, _ := os.ReadFile(dot); !strings.HasPrefix(string(data), "digraph") {
		t.Error("--force did not replace the file")
	}
}

func TestExportRefusesBookFile(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	before, _ := os.ReadFile(e.book)

	_, err := e.run(nil, "export", "-o", e.book, "--format", "dot", "--force")
	if !errs.IsConflict(err) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if after, _ := os.ReadFile(e.book); !bytes.Equal(before, after) {
		t.Error("book file was modified")
	}
}

func TestExportBadRankdir(t *testing.T) {
	e := newTestEnv(t)
	e.init()
	_, err := e.run(nil, "export", "--rankdir", "sideways")
	if errs.GetCode(err) != errs.ErrCodeInvalidInput {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestOutputFormat(t *testing.T) {
	c := New(io.Discard, LogInfo)
	tests := []struct {
		path, forced, want string
	}{
		{"a.svg", "", "svg"},
		{"a.PNG", "", "png"},
		{"a.pdf", "", "pdf"},
		{"a.gv", "", "dot"},
		{"a.txt", "svg", "svg"},
	}
	for _, tt := range tests {
		got, err := c.outputFormat(tt.path, nodelink.Format(tt.forced))
		if err != nil {
			t.Errorf("outputFormat(%q): %v", tt.path, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("outputFormat(%q, %q) = %q, want %q", tt.path, tt.forced, got, tt.want)
		}
	}
}

func TestConfigLogLevel(t *testing.T) {
	e := newTestEnv(t)
	if err := os.WriteFile(e.config, []byte("[log]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.run(nil, "show"); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestCacheCommands(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(e.dir, "cache"))
	dir := filepath.Join(e.dir, "cache", "choosable")

	out := e.mustRun("cache", "path")
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	out = e.mustRun("cache", "clear")
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on a missing dir:\n%s", out)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	out = e.mustRun("cache", "clear")
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear:\n%s", out)
	}
	if n, _ := fc.Len(); n != 0 {
		t.Errorf("Len() = %d after clear", n)
	}
}
