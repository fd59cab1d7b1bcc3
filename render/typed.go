package render

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/keepsake/content"
)

// renderTyped emits RON-like text: struct type names and enum variant tags are
// retained, so the snapshot distinguishes values that JSON and Block would
// collapse together. Containers are broken across lines with trailing commas
// to keep element insertions one-line diffs. The renderer is total; every
// tree has a typed representation.
func renderTyped(tree content.Content) string {
	var b strings.Builder
	writeTyped(&b, tree, 0)
	return b.String()
}

func writeTyped(b *strings.Builder, node content.Content, depth int) {
	switch node.Kind() {
	case content.KindNil:
		b.WriteString("None")

	case content.KindBool:
		b.WriteString(strconv.FormatBool(node.Bool()))

	case content.KindInteger:
		b.WriteString(strconv.FormatInt(node.Int(), 10))

	case content.KindFloat:
		b.WriteString(typedFloat(node.Float()))

	case content.KindString:
		b.WriteString(strconv.Quote(node.Str()))

	case content.KindBytes:
		b.WriteString("b\"")
		b.WriteString(base64.StdEncoding.EncodeToString(node.Bytes()))
		b.WriteByte('"')

	case content.KindSequence:
		items := node.Items()
		if len(items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for _, item := range items {
			writeIndent(b, depth+1)
			writeTyped(b, item, depth+1)
			b.WriteString(",\n")
		}
		writeIndent(b, depth)
		b.WriteByte(']')

	case content.KindMap:
		entries := node.Entries()
		if len(entries) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, entry := range entries {
			writeIndent(b, depth+1)
			writeTyped(b, entry.Key, depth+1)
			b.WriteString(": ")
			writeTyped(b, entry.Value, depth+1)
			b.WriteString(",\n")
		}
		writeIndent(b, depth)
		b.WriteByte('}')

	case content.KindStruct:
		b.WriteString(node.TypeName())
		fields := node.Fields()
		if len(fields) == 0 {
			b.WriteString("()")
			return
		}
		b.WriteString("(\n")
		for _, field := range fields {
			writeIndent(b, depth+1)
			b.WriteString(field.Name)
			b.WriteString(": ")
			writeTyped(b, field.Value, depth+1)
			b.WriteString(",\n")
		}
		writeIndent(b, depth)
		b.WriteByte(')')

	case content.KindEnum:
		b.WriteString(node.Variant())
		if payload, ok := node.Payload(); ok {
			b.WriteByte('(')
			writeTyped(b, payload, depth)
			b.WriteByte(')')
		}
	}
}

// typedFloat always carries a fractional part or exponent so integral floats
// stay distinguishable from integers.
func typedFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
