// Package redact applies ordered replacement rules to a value tree before
// rendering, producing a new tree with matched subtrees swapped for fixed
// placeholder values.
package redact

import (
	"fmt"

	"github.com/ppiankov/keepsake/content"
	"github.com/ppiankov/keepsake/selector"
)

// Rule pairs a selector with the primitive value that replaces every node the
// selector resolves to. Rules are applied in declaration order; when several
// rules match one node the last declared rule wins.
type Rule struct {
	Selector    selector.Selector
	Replacement content.Content
}

// NewRule builds a rule, rejecting composite replacements. Replacements are
// limited to primitives (nil, bool, integer, float, string) and are never
// themselves redacted.
func NewRule(sel selector.Selector, replacement content.Content) (Rule, error) {
	if !replacement.IsPrimitive() {
		return Rule{}, fmt.Errorf("replacement for %q must be a primitive value, got %s", sel.String(), replacement.Kind())
	}
	return Rule{Selector: sel, Replacement: replacement}, nil
}

type patch struct {
	path  []content.Step
	value content.Content
}

// Apply walks the tree and, at every node, checks whether any rule's selector
// resolves to that node's path. Matched nodes are replaced in a new tree (the
// input is never mutated); the walk does not descend into replacements. A rule
// that matches nothing has no effect.
func Apply(tree content.Content, rules []Rule) content.Content {
	if len(rules) == 0 {
		return tree
	}

	var patches []patch
	collect(tree, nil, nil, rules, &patches)

	// Matched paths are never nested (the walk stops at a match), so the
	// patches can be folded in any order.
	out := tree
	for _, p := range patches {
		out = content.ReplaceAt(out, p.path, p.value)
	}
	return out
}

func collect(node content.Content, cpath []content.Step, spath []selector.Step, rules []Rule, patches *[]patch) {
	last := -1
	for i := range rules {
		if rules[i].Selector.Matches(spath) {
			last = i
		}
	}
	if last >= 0 {
		*patches = append(*patches, patch{
			path:  append([]content.Step(nil), cpath...),
			value: rules[last].Replacement,
		})
		return
	}

	switch node.Kind() {
	case content.KindSequence:
		for i, item := range node.Items() {
			collect(item,
				append(cpath, content.IndexStep(i)),
				append(spath, selector.IndexStep(i)),
				rules, patches)
		}
	case content.KindMap:
		for i, entry := range node.Entries() {
			text, ok := entry.Key.KeyText()
			cstep := content.KeyStep(text)
			if !ok {
				// Composite keys have no text; address the entry by position
				// so wildcard matches deeper down remain replaceable.
				cstep = content.IndexStep(i)
			}
			collect(entry.Value,
				append(cpath, cstep),
				append(spath, selector.KeyStep(text)),
				rules, patches)
		}
	case content.KindStruct:
		for _, field := range node.Fields() {
			collect(field.Value,
				append(cpath, content.KeyStep(field.Name)),
				append(spath, selector.KeyStep(field.Name)),
				rules, patches)
		}
	case content.KindEnum:
		if payload, ok := node.Payload(); ok {
			collect(payload,
				append(cpath, content.KeyStep(node.Variant())),
				append(spath, selector.KeyStep(node.Variant())),
				rules, patches)
		}
	}
}
