package book_test

import (
	"fmt"

	"github.com/apocalyptech/choosable/pkg/book"
)

func ExampleBook_basic() {
	b := book.New("Romeo and/or Juliet")
	_, _ = b.AddCharacter("Juliet")

	p, _ := b.AddPage(book.PageNum(1), "Juliet", "On the balcony")
	_, _ = p.AddChoice(book.PageNum(4), "Call out to Romeo")
	_, _ = p.AddChoice(book.PageNum(2), "Go back inside")

	for _, c := range p.Choices() {
		fmt.Printf("%s -> %s\n", c.Summary, c.Target)
	}
	fmt.Println("Dangling:", b.DanglingTargets())
	// Output:
	// Go back inside -> 2
	// Call out to Romeo -> 4
	// Dangling: [2 4]
}

func ExampleBook_MissingPages() {
	b := book.New("Gaps")
	_, _ = b.AddCharacter("Romeo")
	_, _ = b.AddPage(book.PageNum(1), "Romeo", "Start")
	_, _ = b.AddPage(book.PageNum(6), "Romeo", "Later")
	_ = b.AddIntermediate(book.PageNum(3))

	fmt.Println(b.MissingPages())
	// Output:
	// [2 4 5]
}

func ExampleBook_MissingRanges() {
	b := book.New("Gaps")
	_, _ = b.AddCharacter("Romeo")
	_, _ = b.AddPage(book.PageNum(1), "Romeo", "Start")
	_, _ = b.AddPage(book.PageNum(6), "Romeo", "Later")
	_, _ = b.AddPage(book.PageNum(500), "Romeo", "Much later")
	_ = b.AddIntermediate(book.PageNum(3))

	for _, r := range b.MissingRanges() {
		fmt.Println(r)
	}
	// Output:
	// 2
	// 4-5
	// 7-499
}

func ExampleParsePageID() {
	for _, s := range []string{"12", " 007 ", "epilogue"} {
		id, _ := book.ParsePageID(s)
		fmt.Println(id, id.IsNumber())
	}
	// Output:
	// 12 true
	// 7 true
	// epilogue false
}
