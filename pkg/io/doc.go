// Package io reads and writes books as YAML documents.
//
// # Overview
//
// A book is persisted as one human-editable YAML file. The format is designed
// for:
//
//   - Hand editing: keys are readable names and page numbers
//   - Stable diffs: every collection is written in sorted order
//   - Round-trip preservation: Decode(Encode(b)) equals b field for field
//
// # Document Format
//
//	version: 2
//	book:
//	  title: Romeo and/or Juliet
//	characters:
//	  Juliet:
//	    name: Juliet
//	    graphviz_fillcolor: brown1
//	    graphviz_fontcolor: black
//	pages:
//	  1:
//	    pagenum: 1
//	    character: Juliet
//	    summary: On the balcony
//	    canonical: true
//	    ending: false
//	    choices:
//	      4:
//	        target: 4
//	        summary: Call out to Romeo
//	intermediates: [2, 3]
//
// Page numbers are YAML integers and page labels YAML strings.
//
// # Versions
//
// Documents without a "version" key are version 1, written before
// character colors and intermediate markers existed. Both are optional when
// decoding: missing colors take the book defaults and a missing
// "intermediates" key is an empty set. Newer versions are rejected.
//
// # Errors
//
// [Decode], [ReadYAML] and [Load] report malformed or inconsistent documents
// with SCHEMA errors. [Encode], [WriteYAML] and [Save] refuse books without
// characters or pages with INVARIANT errors, before anything is written.
//
// # Files
//
// Use [Load] and [Save] for files, or [ReadYAML] and [WriteYAML] for any
// io.Reader / io.Writer:
//
//	b, err := io.Load("romeo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... edit b ...
//	if err := io.Save(b, "romeo.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// Both directions materialise the whole document in memory; there is no
// streaming contract. [Save] replaces the file atomically.
package io
