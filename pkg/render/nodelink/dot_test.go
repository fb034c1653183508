package nodelink

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/apocalyptech/choosable/pkg/book"
)

// testBook: Alice on page 1 with a choice to 2, page 2 is an ending.
func testBook(t *testing.T) *book.Book {
	t.Helper()
	b := book.New("Test")
	if _, err := b.AddCharacterObj(book.Character{Name: "Alice", FillColor: "cadetblue1", FontColor: "black"}); err != nil {
		t.Fatal(err)
	}
	p1, err := b.AddPage(book.PageNum(1), "Alice", "Start")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p1.AddChoice(book.PageNum(2), "go on"); err != nil {
		t.Fatal(err)
	}
	p2, err := b.AddPage(book.PageNum(2), "Alice", "End")
	if err != nil {
		t.Fatal(err)
	}
	p2.Ending = true
	return b
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testBook(t), Options{})

	for _, want := range []string{
		"digraph book {",
		`1 [label="Page 1 - Start", fillcolor="cadetblue1", fontcolor="black", style="filled"];`,
		`2 [label="Page 2 - End", fillcolor="azure4", fontcolor="white", style="filled"];`,
		"1 -> 2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "<i>") {
		t.Errorf("ToDOT() visited page styled as unvisited:\n%s", dot)
	}
	if n := strings.Count(dot, "->"); n != 1 {
		t.Errorf("ToDOT() has %d edges, want 1", n)
	}
}

func TestToDOT_Unvisited(t *testing.T) {
	b := testBook(t)
	p1, _ := b.Page(book.PageNum(1))
	_, _ = p1.AddChoice(book.PageNum(5), "Climb the <wall> & run")

	dot := ToDOT(b, Options{})

	want := `5 [label=<<i>(Page 5 - Climb the wall &amp; run)</i>>];`
	if !strings.Contains(dot, want) {
		t.Errorf("ToDOT() missing unvisited node %q:\n%s", want, dot)
	}
	if !strings.Contains(dot, "1 -> 5;") {
		t.Errorf("ToDOT() missing edge 1 -> 5:\n%s", dot)
	}
}

func TestToDOT_Reserved(t *testing.T) {
	b := testBook(t)
	p1, _ := b.Page(book.PageNum(1))
	_, _ = p1.AddChoice(book.PageNum(7), "Later")
	_ = b.AddIntermediate(book.PageNum(7))
	_ = b.AddIntermediate(book.PageNum(9))

	dot := ToDOT(b, Options{})

	if !strings.Contains(dot, `7 [label=<<i>(Page 7 - Later)</i>>, style=dashed];`) {
		t.Errorf("ToDOT() missing reserved node:\n%s", dot)
	}
	if strings.Contains(dot, "  9 ") {
		t.Errorf("ToDOT() emitted unreferenced intermediate 9:\n%s", dot)
	}
}

func TestToDOT_Interleaved(t *testing.T) {
	b := testBook(t)
	p1, _ := b.Page(book.PageNum(1))
	_, _ = p1.AddChoice(book.PageNum(10), "far")
	_, _ = p1.AddChoice(book.PageLabel("epilogue"), "after")
	_, _ = b.AddPage(book.PageNum(3), "Alice", "Middle")

	var ids []string
	for _, n := range Nodes(b, Options{}) {
		ids = append(ids, n.ID.String())
	}
	want := []string{"1", "2", "3", "10", "epilogue"}
	if !slices.Equal(ids, want) {
		t.Errorf("Nodes() order = %v, want %v", ids, want)
	}

	dot := ToDOT(b, Options{})
	if !strings.Contains(dot, `"epilogue" [label=<<i>(Page epilogue - after)</i>>];`) {
		t.Errorf("ToDOT() label id not quoted:\n%s", dot)
	}
	if strings.Index(dot, "  3 [") > strings.Index(dot, "  10 [") {
		t.Errorf("ToDOT() nodes not interleaved by id:\n%s", dot)
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	b := testBook(t)
	p1, _ := b.Page(book.PageNum(1))
	for _, n := range []int{9, 4, 12, 6} {
		_, _ = p1.AddChoice(book.PageNum(n), "x")
	}
	first := ToDOT(b, Options{})
	for i := 0; i < 5; i++ {
		if got := ToDOT(b, Options{}); got != first {
			t.Fatalf("ToDOT() not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
	edges := Edges(b)
	for i := 1; i < len(edges); i++ {
		if book.ComparePageIDs(edges[i-1].To, edges[i].To) > 0 {
			t.Errorf("Edges() out of order: %v", edges)
		}
	}
}

func TestNodes_FirstSummaryWins(t *testing.T) {
	b := testBook(t)
	p1, _ := b.Page(book.PageNum(1))
	_, _ = p1.AddChoice(book.PageNum(5), "from one")
	p2, _ := b.Page(book.PageNum(2))
	_, _ = p2.AddChoice(book.PageNum(5), "from two")
	_, _ = b.AddPage(book.PageNum(3), "Alice", "Same")
	p3, _ := b.Page(book.PageNum(3))
	_, _ = p3.AddChoice(book.PageNum(5), "from one")

	var notices []string
	nodes := Nodes(b, Options{Notify: func(msg string) { notices = append(notices, msg) }})

	idx := slices.IndexFunc(nodes, func(n Node) bool { return n.ID == book.PageNum(5) })
	if idx < 0 {
		t.Fatal("Nodes() missing target 5")
	}
	if nodes[idx].Kind != KindUnvisited || nodes[idx].Summary != "from one" {
		t.Errorf("node 5 = %+v, want unvisited with first summary", nodes[idx])
	}
	if len(notices) != 1 || !strings.Contains(notices[0], "from two") {
		t.Errorf("notices = %q, want one about the differing summary", notices)
	}
}

func TestPageStyle(t *testing.T) {
	alice := book.Character{Name: "Alice", FillColor: "brown1", FontColor: "black"}
	tests := []struct {
		name      string
		ending    bool
		canonical bool
		want      Style
	}{
		{"plain", false, false, Style{FillColor: "brown1", FontColor: "black", Styles: []string{"filled"}}},
		{"canonical", false, true, Style{Shape: "box", FillColor: "brown1", FontColor: "black", Styles: []string{"bold", "filled"}}},
		{"ending", true, false, Style{FillColor: "azure4", FontColor: "white", Styles: []string{"filled"}}},
		{"canonical ending", true, true, Style{Shape: "box", FillColor: "azure4", FontColor: "white", Styles: []string{"bold", "filled"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageStyle(tt.ending, tt.canonical, alice, Options{})
			if got.Shape != tt.want.Shape || got.FillColor != tt.want.FillColor ||
				got.FontColor != tt.want.FontColor || !slices.Equal(got.Styles, tt.want.Styles) {
				t.Errorf("PageStyle() = %+v, want %+v", got, tt.want)
			}
		})
	}

	got := PageStyle(true, false, alice, Options{EndingFill: "black", EndingFont: "red"})
	if got.FillColor != "black" || got.FontColor != "red" {
		t.Errorf("PageStyle() ignored ending overrides: %+v", got)
	}
}

func TestFmtAttrs_Escaping(t *testing.T) {
	n := Node{
		ID:        book.PageNum(1),
		Kind:      KindVisited,
		Summary:   "She said \"hi\"\nthen left \\ ran",
		Character: book.NewCharacter("Alice"),
	}
	attrs := fmtAttrs(n, Options{})
	want := `label="Page 1 - She said \"hi\" then left \\ ran"`
	if attrs[0] != want {
		t.Errorf("fmtAttrs() label = %s, want %s", attrs[0], want)
	}
}

func TestGraphName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "book"},
		{"romeo", "romeo"},
		{"Romeo and/or Juliet", "Romeo_and_or_Juliet"},
		{"2020-story", "_2020_story"},
		{"...", "book"},
		{"héros", "h_ros"},
		{"graph", "_graph"},
		{"digraph", "_digraph"},
		{"subgraph", "_subgraph"},
		{"node", "_node"},
		{"EDGE", "_EDGE"},
		{"Strict", "_Strict"},
		{"graphs", "graphs"},
		{"node.yaml", "node_yaml"},
	}
	for _, tt := range tests {
		if got := graphName(tt.in); got != tt.want {
			t.Errorf("graphName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDOT(t *testing.T) {
	b := testBook(t)
	var buf bytes.Buffer
	if err := WriteDOT(b, &buf, Options{Name: "romeo", Rankdir: "LR"}); err != nil {
		t.Fatalf("WriteDOT() error: %v", err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "digraph romeo {\n  rankdir=LR;\n") {
		t.Errorf("WriteDOT() header = %q", got)
	}
	if got != ToDOT(b, Options{Name: "romeo", Rankdir: "LR"}) {
		t.Error("WriteDOT() differs from ToDOT()")
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{KindVisited: "visited", KindUnvisited: "unvisited", KindReserved: "reserved", Kind(9): "Kind(9)"} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
