package render

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/keepsake/content"
)

// renderBlock emits YAML-like block text through a hand-built node tree so
// key order stays exactly as captured. Quoting decisions are delegated to the
// yaml encoder, which quotes scalars only when the scalar grammar requires it.
func renderBlock(tree content.Content) (string, error) {
	node, err := blockNode(tree)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", &SerializationError{Format: Block, Reason: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return "", &SerializationError{Format: Block, Reason: err.Error()}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func blockNode(c content.Content) (*yaml.Node, error) {
	switch c.Kind() {
	case content.KindNil:
		return scalarNode("!!null", "null"), nil

	case content.KindBool:
		return scalarNode("!!bool", strconv.FormatBool(c.Bool())), nil

	case content.KindInteger:
		return scalarNode("!!int", strconv.FormatInt(c.Int(), 10)), nil

	case content.KindFloat:
		return scalarNode("!!float", blockFloat(c.Float())), nil

	case content.KindString:
		return scalarNode("!!str", c.Str()), nil

	case content.KindBytes:
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString(c.Bytes())), nil

	case content.KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range c.Items() {
			child, err := blockNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case content.KindMap:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, entry := range c.Entries() {
			key, err := blockNode(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := blockNode(entry.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, key, value)
		}
		return node, nil

	case content.KindStruct:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, field := range c.Fields() {
			value, err := blockNode(field.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", field.Name), value)
		}
		return node, nil

	case content.KindEnum:
		payload, ok := c.Payload()
		if !ok {
			return scalarNode("!!str", c.Variant()), nil
		}
		value, err := blockNode(payload)
		if err != nil {
			return nil, err
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		node.Content = append(node.Content, scalarNode("!!str", c.Variant()), value)
		return node, nil

	default:
		return nil, &SerializationError{Format: Block, Reason: "unknown content kind"}
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// blockFloat formats a float so the YAML resolver reads it back as a float:
// integral values keep a trailing .0, non-finite values use the YAML spellings.
func blockFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
