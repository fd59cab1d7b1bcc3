// Package keepsake asserts that a value renders the same way it did last
// time. An assertion captures a Go value into a normalized tree, redacts the
// parts that vary between runs, renders the rest deterministically and
// compares the text against an accepted baseline file. Mismatches produce a
// pending file next to the baseline for review instead of silently changing
// anything.
package keepsake

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/keepsake/content"
	"github.com/ppiankov/keepsake/redact"
	"github.com/ppiankov/keepsake/render"
	"github.com/ppiankov/keepsake/selector"
)

// Format selects how a captured tree is rendered. See the render package for
// the concrete layouts.
type Format = render.Format

const (
	JSON  = render.JSON
	Block = render.Block
	Typed = render.Typed
)

// Identity names exactly one snapshot slot. Namespace, Name and Root decide
// the file the snapshot lives in; File and Line are diagnostic and end up in
// the file header.
type Identity struct {
	// Root is the directory this identity's snapshots live under. Empty
	// means DefaultRoot relative to the working directory.
	Root string

	// Namespace groups related snapshots, typically the package or suite
	// name. It becomes the file name prefix.
	Namespace string

	// File and Line locate the assertion call site. The engine never
	// inspects the call stack itself; adapters fill these in.
	File string
	Line int

	// Name distinguishes snapshots within a namespace. Empty derives a
	// name from File and Line.
	Name string

	// Seq is the occurrence number of this identity within the current
	// run, assigned by the engine. Caller-supplied values are overwritten.
	Seq uint64
}

// DefaultRoot is where snapshots go when an identity names no root.
const DefaultRoot = "testdata/snapshots"

func (id Identity) rootDir() string {
	if id.Root == "" {
		return DefaultRoot
	}
	return id.Root
}

func (id Identity) name() string {
	if id.Name != "" {
		return id.Name
	}
	base := strings.TrimSuffix(filepath.Base(id.File), ".go")
	if base == "" || base == "." {
		base = "snapshot"
	}
	return base + "-" + strconv.Itoa(id.Line)
}

// key folds every identity field that selects a file, so two assertions
// collide exactly when they would resolve to the same path.
func (id Identity) key() string {
	return strings.Join([]string{id.rootDir(), id.Namespace, id.name()}, "\x00")
}

// Rule declares one redaction: a selector expression and the primitive value
// that replaces whatever the selector matches.
type Rule struct {
	Selector    string
	Replacement any
}

// compileRules parses selectors and coerces replacements up front, so a bad
// rule fails the assertion before any capture or file access.
func compileRules(rules []Rule) ([]redact.Rule, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	compiled := make([]redact.Rule, 0, len(rules))
	for _, r := range rules {
		sel, err := selector.Parse(r.Selector)
		if err != nil {
			return nil, fmt.Errorf("redaction %q: %w", r.Selector, err)
		}
		repl, err := content.FromValue(r.Replacement)
		if err != nil {
			return nil, fmt.Errorf("redaction %q: %w", r.Selector, err)
		}
		rule, err := redact.NewRule(sel, repl)
		if err != nil {
			return nil, fmt.Errorf("redaction %q: %w", r.Selector, err)
		}
		compiled = append(compiled, rule)
	}
	return compiled, nil
}
