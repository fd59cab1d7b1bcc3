package render

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ppiankov/keepsake/content"
)

const jsonIndent = "  "

func renderJSON(tree content.Content) (string, error) {
	var b strings.Builder
	if err := writeJSON(&b, tree, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJSON(b *strings.Builder, node content.Content, depth int) error {
	switch node.Kind() {
	case content.KindNil:
		b.WriteString("null")
		return nil

	case content.KindBool:
		b.WriteString(strconv.FormatBool(node.Bool()))
		return nil

	case content.KindInteger:
		b.WriteString(strconv.FormatInt(node.Int(), 10))
		return nil

	case content.KindFloat:
		// encoding/json owns float formatting and rejects NaN and infinities.
		out, err := json.Marshal(node.Float())
		if err != nil {
			return &SerializationError{Format: JSON, Reason: "float value has no JSON representation"}
		}
		b.Write(out)
		return nil

	case content.KindString:
		return writeJSONString(b, node.Str())

	case content.KindBytes:
		return writeJSONString(b, base64.StdEncoding.EncodeToString(node.Bytes()))

	case content.KindSequence:
		items := node.Items()
		if len(items) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, item := range items {
			writeIndent(b, depth+1)
			if err := writeJSON(b, item, depth+1); err != nil {
				return err
			}
			if i < len(items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte(']')
		return nil

	case content.KindMap:
		entries := node.Entries()
		if len(entries) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, entry := range entries {
			key, ok := entry.Key.KeyText()
			if !ok {
				return &SerializationError{Format: JSON, Reason: "map key is not a scalar"}
			}
			writeIndent(b, depth+1)
			if err := writeJSONString(b, key); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeJSON(b, entry.Value, depth+1); err != nil {
				return err
			}
			if i < len(entries)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte('}')
		return nil

	case content.KindStruct:
		// Type names collapse away; a struct is a plain object.
		fields := node.Fields()
		if len(fields) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, field := range fields {
			writeIndent(b, depth+1)
			if err := writeJSONString(b, field.Name); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeJSON(b, field.Value, depth+1); err != nil {
				return err
			}
			if i < len(fields)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte('}')
		return nil

	case content.KindEnum:
		payload, ok := node.Payload()
		if !ok {
			// A unit variant collapses to its name.
			return writeJSONString(b, node.Variant())
		}
		b.WriteString("{\n")
		writeIndent(b, depth+1)
		if err := writeJSONString(b, node.Variant()); err != nil {
			return err
		}
		b.WriteString(": ")
		if err := writeJSON(b, payload, depth+1); err != nil {
			return err
		}
		b.WriteByte('\n')
		writeIndent(b, depth)
		b.WriteByte('}')
		return nil

	default:
		return &SerializationError{Format: JSON, Reason: "unknown content kind"}
	}
}

func writeJSONString(b *strings.Builder, s string) error {
	out, err := json.Marshal(s)
	if err != nil {
		return &SerializationError{Format: JSON, Reason: err.Error()}
	}
	b.Write(out)
	return nil
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(jsonIndent)
	}
}
