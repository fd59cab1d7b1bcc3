// Package render serializes value trees into stable textual snapshot forms.
//
// Three formats exist and the set is closed: JSON and Block drop type
// information (chosen when only value equality matters), Typed retains struct
// type names and enum variant tags (chosen when type identity must also be
// verified). Every renderer is byte-deterministic: identical trees yield
// identical text, which is what keeps stored baselines diff-stable.
package render

import (
	"fmt"

	"github.com/ppiankov/keepsake/content"
)

// Format selects a snapshot serialization format.
type Format string

const (
	// JSON renders with 2-space indentation and standard JSON escaping.
	JSON Format = "json"
	// Block renders YAML-like block text with minimal quoting.
	Block Format = "block"
	// Typed renders RON-like text retaining struct and enum identity.
	Typed Format = "typed"
)

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case JSON, Block, Typed:
		return true
	default:
		return false
	}
}

// SerializationError reports a tree that cannot be represented in the
// requested format. No snapshot files are touched when rendering fails.
type SerializationError struct {
	Format Format
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize to %s: %s", e.Format, e.Reason)
}

// Render serializes the tree in the given format. The format set is a closed
// tag set handled by one renderer per variant; an unknown format is an error.
func Render(tree content.Content, format Format) (string, error) {
	switch format {
	case JSON:
		return renderJSON(tree)
	case Block:
		return renderBlock(tree)
	case Typed:
		return renderTyped(tree), nil
	default:
		return "", &SerializationError{Format: format, Reason: "unknown format"}
	}
}
