package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apocalyptech/choosable/pkg/book"
)

// ReadYAML decodes a book document from r. The whole stream is read into
// memory before decoding. ReadYAML does not close r.
func ReadYAML(r io.Reader) (*book.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// WriteYAML encodes b and writes the document to w. Nothing is written if
// encoding fails.
func WriteYAML(b *book.Book, w io.Writer) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Load reads the book stored at path.
//
// A missing file is reported with an error wrapping [os.ErrNotExist];
// decoding failures keep their SCHEMA code.
func Load(path string) (*book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return b, nil
}

// Save writes b to path.
//
// The document is fully encoded before the file is touched, so an invalid
// book (see [Encode]) leaves any existing file unchanged. The write goes to
// a temporary file in the same directory which is then renamed over path.
func Save(b *book.Book, path string) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
