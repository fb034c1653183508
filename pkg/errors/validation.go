package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds character names and page labels.
const maxNameLength = 128

// ValidateCharacterName validates a character name before it becomes a map key
// in the book and in the persisted document.
//
// The rules are deliberately loose:
//   - No empty or all-whitespace names
//   - No control characters (newlines would break listings and DOT labels)
//   - Maximum length of 128 characters
func ValidateCharacterName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "character name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "character name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "character name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePageLabel validates a non-numeric page id.
// Labels follow the same rules as character names and may not contain
// whitespace at either end, since user input is trimmed before parsing.
func ValidatePageLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "page label cannot be empty")
	}
	if strings.TrimSpace(label) != label {
		return New(ErrCodeInvalidInput, "page label %q has surrounding whitespace", label)
	}
	if len(label) > maxNameLength {
		return New(ErrCodeInvalidInput, "page label too long (max %d characters)", maxNameLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "page label contains invalid control characters")
		}
	}
	return nil
}

var (
	// colorNameRegex matches X11/SVG color scheme names (e.g. "cadetblue1", "azure4").
	colorNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	// colorRGBRegex matches "#RRGGBB" and "#RRGGBBAA".
	colorRGBRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)
	// colorHSVRegex matches "H,S,V" or "H S V" with values in [0,1].
	colorHSVRegex = regexp.MustCompile(`^(?:[01](?:\.[0-9]+)?|\.[0-9]+)[, ]+(?:[01](?:\.[0-9]+)?|\.[0-9]+)[, ]+(?:[01](?:\.[0-9]+)?|\.[0-9]+)$`)
)

// ValidateColor validates a Graphviz color string.
// Accepted forms are color names, "#RRGGBB[AA]" and "H,S,V" triples.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if colorNameRegex.MatchString(color) || colorRGBRegex.MatchString(color) || colorHSVRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid Graphviz color: %q", color)
}

// ValidatePath validates an output path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
