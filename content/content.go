// Package content defines the format-agnostic structural representation of a
// captured value. A Content tree is immutable once built; transformations such
// as redaction produce new trees and leave the original intact for diagnostics.
package content

import (
	"bytes"
	"math"
	"strconv"
)

// Kind discriminates the variants of a Content node.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindBytes
	KindSequence
	KindMap
	KindStruct
	KindEnum
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// MapEntry is a single key/value pair of a Map node. Entries keep the order
// they were inserted in; the model never re-sorts them.
type MapEntry struct {
	Key   Content
	Value Content
}

// Field is a single named field of a Struct node, in declaration order.
type Field struct {
	Name  string
	Value Content
}

// Content is a node in a structural value tree. The zero value is the Nil node.
type Content struct {
	kind     Kind
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	bytesVal []byte
	items    []Content
	entries  []MapEntry
	fields   []Field
	typeName string
	variant  string
	payload  *Content
}

// NewNil returns the Nil node.
func NewNil() Content {
	return Content{kind: KindNil}
}

// NewBool returns a Bool node.
func NewBool(v bool) Content {
	return Content{kind: KindBool, boolVal: v}
}

// NewInt returns an Integer node.
func NewInt(v int64) Content {
	return Content{kind: KindInteger, intVal: v}
}

// NewFloat returns a Float node.
func NewFloat(v float64) Content {
	return Content{kind: KindFloat, floatVal: v}
}

// NewString returns a String node.
func NewString(v string) Content {
	return Content{kind: KindString, strVal: v}
}

// NewBytes returns a Bytes node holding a private copy of v.
func NewBytes(v []byte) Content {
	cp := make([]byte, len(v))
	copy(cp, v)
	return Content{kind: KindBytes, bytesVal: cp}
}

// NewSequence returns a Sequence node over the given items.
func NewSequence(items ...Content) Content {
	cp := make([]Content, len(items))
	copy(cp, items)
	return Content{kind: KindSequence, items: cp}
}

// NewMap returns a Map node over the given entries, preserving their order.
func NewMap(entries ...MapEntry) Content {
	cp := make([]MapEntry, len(entries))
	copy(cp, entries)
	return Content{kind: KindMap, entries: cp}
}

// NewStruct returns a Struct node with the given type name and ordered fields.
func NewStruct(typeName string, fields ...Field) Content {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Content{kind: KindStruct, typeName: typeName, fields: cp}
}

// NewEnum returns an Enum node without a payload (a unit variant).
func NewEnum(typeName, variant string) Content {
	return Content{kind: KindEnum, typeName: typeName, variant: variant}
}

// NewEnumValue returns an Enum node carrying a payload.
func NewEnumValue(typeName, variant string, payload Content) Content {
	return Content{kind: KindEnum, typeName: typeName, variant: variant, payload: &payload}
}

// Kind reports which variant this node is.
func (c Content) Kind() Kind {
	return c.kind
}

// IsPrimitive reports whether the node is a leaf scalar
// (Nil, Bool, Integer, Float or String).
func (c Content) IsPrimitive() bool {
	switch c.kind {
	case KindNil, KindBool, KindInteger, KindFloat, KindString:
		return true
	default:
		return false
	}
}

// Bool returns the value of a Bool node; zero for any other kind.
func (c Content) Bool() bool {
	return c.boolVal
}

// Int returns the value of an Integer node; zero for any other kind.
func (c Content) Int() int64 {
	return c.intVal
}

// Float returns the value of a Float node; zero for any other kind.
func (c Content) Float() float64 {
	return c.floatVal
}

// Str returns the value of a String node; empty for any other kind.
func (c Content) Str() string {
	return c.strVal
}

// Bytes returns a copy of the value of a Bytes node; nil for any other kind.
func (c Content) Bytes() []byte {
	if c.kind != KindBytes {
		return nil
	}
	cp := make([]byte, len(c.bytesVal))
	copy(cp, c.bytesVal)
	return cp
}

// Len returns the child count of a Sequence, Map or Struct node.
func (c Content) Len() int {
	switch c.kind {
	case KindSequence:
		return len(c.items)
	case KindMap:
		return len(c.entries)
	case KindStruct:
		return len(c.fields)
	default:
		return 0
	}
}

// Items returns a copy of a Sequence node's items; nil for any other kind.
func (c Content) Items() []Content {
	if c.kind != KindSequence {
		return nil
	}
	cp := make([]Content, len(c.items))
	copy(cp, c.items)
	return cp
}

// Entries returns a copy of a Map node's entries; nil for any other kind.
func (c Content) Entries() []MapEntry {
	if c.kind != KindMap {
		return nil
	}
	cp := make([]MapEntry, len(c.entries))
	copy(cp, c.entries)
	return cp
}

// Fields returns a copy of a Struct node's fields; nil for any other kind.
func (c Content) Fields() []Field {
	if c.kind != KindStruct {
		return nil
	}
	cp := make([]Field, len(c.fields))
	copy(cp, c.fields)
	return cp
}

// TypeName returns the type name of a Struct or Enum node.
func (c Content) TypeName() string {
	return c.typeName
}

// Variant returns the variant name of an Enum node.
func (c Content) Variant() string {
	return c.variant
}

// Payload returns the payload of an Enum node, if it has one.
func (c Content) Payload() (Content, bool) {
	if c.kind != KindEnum || c.payload == nil {
		return Content{}, false
	}
	return *c.payload, true
}

// Equal reports structural equality of two trees. Equal trees render to
// identical text in every format. Floats compare by bit pattern so NaN
// values and signed zeros stay stable across runs.
func Equal(a, b Content) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInteger:
		return a.intVal == b.intVal
	case KindFloat:
		return math.Float64bits(a.floatVal) == math.Float64bits(b.floatVal)
	case KindString:
		return a.strVal == b.strVal
	case KindBytes:
		return bytes.Equal(a.bytesVal, b.bytesVal)
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if !Equal(a.entries[i].Key, b.entries[i].Key) || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	case KindStruct:
		if a.typeName != b.typeName || len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	case KindEnum:
		if a.typeName != b.typeName || a.variant != b.variant {
			return false
		}
		if (a.payload == nil) != (b.payload == nil) {
			return false
		}
		if a.payload == nil {
			return true
		}
		return Equal(*a.payload, *b.payload)
	default:
		return false
	}
}

// KeyText returns the textual form of a scalar node used as a map key when
// building node paths: strings verbatim, integers in decimal, floats in
// shortest form, booleans as true/false, nil as "null". Composite keys have
// no textual form and report false; such entries are reachable only through
// wildcards.
func (c Content) KeyText() (string, bool) {
	switch c.kind {
	case KindString:
		return c.strVal, true
	case KindInteger:
		return strconv.FormatInt(c.intVal, 10), true
	case KindFloat:
		return strconv.FormatFloat(c.floatVal, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(c.boolVal), true
	case KindNil:
		return "null", true
	default:
		return "", false
	}
}
