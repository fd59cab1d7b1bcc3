package content

// Step addresses one level of descent in a Content tree. A Step is either a
// key (map entry by key text, struct field by name, enum payload by variant
// name) or a sequence index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeyStep returns a Step addressing a map key, struct field or enum payload.
func KeyStep(key string) Step {
	return Step{Key: key}
}

// IndexStep returns a Step addressing a sequence position.
func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// ReplaceAt returns a new tree with the node at path replaced by value. The
// input tree is never mutated. A path that does not resolve to a node leaves
// the tree unchanged, which keeps non-matching redaction rules inert rather
// than fatal.
func ReplaceAt(tree Content, path []Step, value Content) Content {
	out, _ := replaceAt(tree, path, value)
	return out
}

func replaceAt(node Content, path []Step, value Content) (Content, bool) {
	if len(path) == 0 {
		return value, true
	}
	step := path[0]
	rest := path[1:]

	switch node.kind {
	case KindSequence:
		if !step.IsIndex || step.Index < 0 || step.Index >= len(node.items) {
			return node, false
		}
		child, ok := replaceAt(node.items[step.Index], rest, value)
		if !ok {
			return node, false
		}
		items := make([]Content, len(node.items))
		copy(items, node.items)
		items[step.Index] = child
		return Content{kind: KindSequence, items: items}, true

	case KindMap:
		if step.IsIndex {
			// Positional addressing, used for entries whose keys have no
			// textual form.
			if step.Index < 0 || step.Index >= len(node.entries) {
				return node, false
			}
			child, ok := replaceAt(node.entries[step.Index].Value, rest, value)
			if !ok {
				return node, false
			}
			entries := make([]MapEntry, len(node.entries))
			copy(entries, node.entries)
			entries[step.Index] = MapEntry{Key: node.entries[step.Index].Key, Value: child}
			return Content{kind: KindMap, entries: entries}, true
		}
		for i, entry := range node.entries {
			text, ok := entry.Key.KeyText()
			if !ok || text != step.Key {
				continue
			}
			child, ok := replaceAt(entry.Value, rest, value)
			if !ok {
				return node, false
			}
			entries := make([]MapEntry, len(node.entries))
			copy(entries, node.entries)
			entries[i] = MapEntry{Key: entry.Key, Value: child}
			return Content{kind: KindMap, entries: entries}, true
		}
		return node, false

	case KindStruct:
		if step.IsIndex {
			return node, false
		}
		for i, field := range node.fields {
			if field.Name != step.Key {
				continue
			}
			child, ok := replaceAt(field.Value, rest, value)
			if !ok {
				return node, false
			}
			fields := make([]Field, len(node.fields))
			copy(fields, node.fields)
			fields[i] = Field{Name: field.Name, Value: child}
			return Content{kind: KindStruct, typeName: node.typeName, fields: fields}, true
		}
		return node, false

	case KindEnum:
		if step.IsIndex || node.payload == nil || step.Key != node.variant {
			return node, false
		}
		child, ok := replaceAt(*node.payload, rest, value)
		if !ok {
			return node, false
		}
		return Content{kind: KindEnum, typeName: node.typeName, variant: node.variant, payload: &child}, true

	default:
		return node, false
	}
}
