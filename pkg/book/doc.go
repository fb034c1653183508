// Package book models a chooseable-path story as a directed graph of pages.
//
// # Overview
//
// A [Book] owns three collections: characters keyed by name, pages keyed by
// [PageID], and intermediate markers reserving page ids that have not been
// written yet. Each [Page] has one active character and a set of [Choice]
// values, the outgoing edges of the story graph.
//
// Choices point at page ids, not at pages. A choice may target a page that
// does not exist; such dangling choices are how an author records "this
// leads somewhere I have not written yet". Deleting a page therefore never
// cascades: choices into it simply become dangling again.
//
// # Basic Usage
//
//	b := book.New("Romeo and/or Juliet")
//	_, _ = b.AddCharacter("Juliet")
//	p, _ := b.AddPage(book.PageNum(1), "Juliet", "On the balcony")
//	_, _ = p.AddChoice(book.PageNum(2), "Call out to Romeo")
//
// # Page Ids
//
// A [PageID] is a page number or a label. Ids have a total order (numbers by
// value, then labels lexicographically) and every listing in this package -
// [Book.Pages], [Page.Choices], [Book.Intermediates] - uses it.
//
// # Errors
//
// Methods fail with coded errors from the choosable errors package:
// CONFLICT for duplicates and references that block a delete, NOT_FOUND for
// unknown keys. A failed call leaves the book unchanged.
//
// # Concurrency
//
// Book is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package book
