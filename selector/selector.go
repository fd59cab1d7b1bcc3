// Package selector compiles textual path expressions into matchable patterns
// used to locate nodes within a value tree.
//
// Grammar: path := ["."] segment ("." segment)*, where a segment is an
// identifier, a quoted string (for keys containing separators), a non-negative
// integer, "*" (every child at that depth) or "**" (the node itself and every
// descendant). Parsing is total and pure: no side effects, no I/O.
package selector

import (
	"fmt"
	"strconv"
	"strings"
)

type segmentKind uint8

const (
	segKey segmentKind = iota
	segIndex
	segWildcard
	segRecursive
)

type segment struct {
	kind  segmentKind
	key   string
	index int
}

// Selector is an immutable parsed path expression.
type Selector struct {
	raw      string
	segments []segment
}

// String returns the expression the selector was parsed from.
func (s Selector) String() string {
	return s.raw
}

// ParseError reports why and where a selector expression is malformed.
type ParseError struct {
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Reason)
}

// Parse compiles a path expression. Failures return a *ParseError carrying the
// byte position of the offending input.
func Parse(expr string) (Selector, error) {
	if expr == "" {
		return Selector{}, &ParseError{Position: 0, Reason: "empty selector"}
	}

	i := 0
	if expr[0] == '.' {
		i++ // leading separator anchors at the root and is optional
	}

	var segments []segment
	for {
		if i >= len(expr) {
			return Selector{}, &ParseError{Position: len(expr) - 1, Reason: "trailing separator"}
		}

		seg, next, err := parseSegment(expr, i)
		if err != nil {
			return Selector{}, err
		}
		segments = append(segments, seg)
		i = next

		if i == len(expr) {
			break
		}
		if expr[i] != '.' {
			return Selector{}, &ParseError{Position: i, Reason: fmt.Sprintf("expected separator, found %q", expr[i])}
		}
		i++
	}

	return Selector{raw: expr, segments: segments}, nil
}

// MustParse is Parse for expressions known to be valid, typically constants.
// It panics on a malformed expression.
func MustParse(expr string) Selector {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func parseSegment(expr string, start int) (segment, int, error) {
	switch expr[start] {
	case '.':
		return segment{}, 0, &ParseError{Position: start, Reason: "empty segment"}
	case '"':
		return parseQuoted(expr, start)
	}

	end := start
	for end < len(expr) && expr[end] != '.' {
		end++
	}
	token := expr[start:end]

	if strings.ContainsRune(token, '*') {
		switch token {
		case "*":
			return segment{kind: segWildcard}, end, nil
		case "**":
			return segment{kind: segRecursive}, end, nil
		default:
			return segment{}, 0, &ParseError{Position: start, Reason: fmt.Sprintf("invalid wildcard %q", token)}
		}
	}

	if token[0] >= '0' && token[0] <= '9' {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return segment{}, 0, &ParseError{Position: start, Reason: fmt.Sprintf("invalid integer %q", token)}
		}
		return segment{kind: segIndex, index: n}, end, nil
	}

	for off, r := range token {
		if r == '"' || r == '\\' {
			return segment{}, 0, &ParseError{Position: start + off, Reason: fmt.Sprintf("unexpected character %q in segment", r)}
		}
	}
	return segment{kind: segKey, key: token}, end, nil
}

func parseQuoted(expr string, start int) (segment, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(expr) {
		switch expr[i] {
		case '"':
			i++
			if i < len(expr) && expr[i] != '.' {
				return segment{}, 0, &ParseError{Position: i, Reason: fmt.Sprintf("expected separator after quoted segment, found %q", expr[i])}
			}
			return segment{kind: segKey, key: b.String()}, i, nil
		case '\\':
			i++
			if i >= len(expr) {
				return segment{}, 0, &ParseError{Position: start, Reason: "unterminated quote"}
			}
			b.WriteByte(expr[i])
			i++
		default:
			b.WriteByte(expr[i])
			i++
		}
	}
	return segment{}, 0, &ParseError{Position: start, Reason: "unterminated quote"}
}

// Step is one element of a concrete node path tested against a Selector. It is
// either a key (map key text, struct field name, enum variant) or a sequence
// index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeyStep returns a key path element.
func KeyStep(key string) Step {
	return Step{Key: key}
}

// IndexStep returns a sequence-index path element.
func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// Matches reports whether the selector resolves to the node at the given path.
// Key and Index segments require an exact element match (an Index segment also
// matches a map key spelled as the same decimal, so integer-keyed maps stay
// addressable). Wildcard consumes exactly one element; a recursive wildcard
// consumes zero or more, which is what lets it target the current node and
// every descendant.
func (s Selector) Matches(path []Step) bool {
	return matchFrom(s.segments, path)
}

func matchFrom(segs []segment, path []Step) bool {
	if len(segs) == 0 {
		return len(path) == 0
	}
	seg := segs[0]
	switch seg.kind {
	case segRecursive:
		for skip := 0; skip <= len(path); skip++ {
			if matchFrom(segs[1:], path[skip:]) {
				return true
			}
		}
		return false
	case segWildcard:
		return len(path) > 0 && matchFrom(segs[1:], path[1:])
	case segKey:
		return len(path) > 0 && !path[0].IsIndex && path[0].Key == seg.key && matchFrom(segs[1:], path[1:])
	case segIndex:
		if len(path) == 0 {
			return false
		}
		head := path[0]
		if head.IsIndex {
			if head.Index != seg.index {
				return false
			}
		} else if head.Key != strconv.Itoa(seg.index) {
			return false
		}
		return matchFrom(segs[1:], path[1:])
	default:
		return false
	}
}
