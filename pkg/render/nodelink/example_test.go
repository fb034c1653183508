package nodelink_test

import (
	"context"
	"fmt"

	"github.com/apocalyptech/choosable/pkg/book"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

func ExampleToDOT() {
	b := book.New("Test")
	_, _ = b.AddCharacter("Alice")
	p1, _ := b.AddPage(book.PageNum(1), "Alice", "Start")
	_, _ = p1.AddChoice(book.PageNum(2), "go on")
	_, _ = p1.AddChoice(book.PageNum(5), "climb the wall")
	p2, _ := b.AddPage(book.PageNum(2), "Alice", "End")
	p2.Ending = true

	fmt.Print(nodelink.ToDOT(b, nodelink.Options{Name: "test"}))
	// Output:
	// digraph test {
	//
	//   1 [label="Page 1 - Start", fillcolor="white", fontcolor="black", style="filled"];
	//   2 [label="Page 2 - End", fillcolor="azure4", fontcolor="white", style="filled"];
	//   5 [label=<<i>(Page 5 - climb the wall)</i>>];
	//
	//   1 -> 2;
	//   1 -> 5;
	// }
}

func ExampleRenderSVG() {
	b := book.New("Test")
	_, _ = b.AddCharacter("Alice")
	_, _ = b.AddPage(book.PageNum(1), "Alice", "Start")

	svg, err := nodelink.RenderSVG(context.Background(), nodelink.ToDOT(b, nodelink.Options{}))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Generated SVG (%d bytes)\n", len(svg))
	// Output varies based on Graphviz version
}

func ExampleRenderPNG() {
	b := book.New("Test")
	_, _ = b.AddCharacter("Alice")
	_, _ = b.AddPage(book.PageNum(1), "Alice", "Start")

	png, err := nodelink.RenderPNG(context.Background(), nodelink.ToDOT(b, nodelink.Options{}), 2.0)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Generated PNG (%d bytes)\n", len(png))
	// Output varies based on tool installation
}
