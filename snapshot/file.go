// Package snapshot persists accepted baselines and proposed pending snapshots
// as plain text files, and resolves snapshot identities to collision-free
// paths. Only a snapshot file's body ever participates in comparison; the
// metadata header is diagnostic.
package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta is the diagnostic header of a snapshot file: where the assertion lives
// and what expression produced the value. Compare never reads it. It carries
// no timestamps so accepting a snapshot with an unchanged body is a no-op in
// version control.
type Meta struct {
	Source     string `yaml:"source,omitempty"`
	Line       int    `yaml:"line,omitempty"`
	Name       string `yaml:"name,omitempty"`
	Expression string `yaml:"expression,omitempty"`
	Format     string `yaml:"format,omitempty"`
}

// File is the parsed form of a baseline or pending snapshot file.
type File struct {
	Meta Meta
	Body string
}

const delimiter = "---\n"

// Encode renders the on-disk container: YAML header, a delimiter line, the
// body, one trailing newline.
func (f File) Encode() ([]byte, error) {
	header, err := yaml.Marshal(f.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot header: %w", err)
	}

	var b bytes.Buffer
	b.Write(header)
	b.WriteString(delimiter)
	b.WriteString(f.Body)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// ParseFile splits a snapshot file into header and body. The delimiter is the
// first line consisting of exactly "---".
func ParseFile(data []byte) (File, error) {
	s := string(data)

	var header, body string
	switch {
	case strings.HasPrefix(s, delimiter):
		body = s[len(delimiter):]
	default:
		idx := strings.Index(s, "\n"+delimiter)
		if idx < 0 {
			return File{}, fmt.Errorf("malformed snapshot file: missing %q delimiter", "---")
		}
		header = s[:idx+1]
		body = s[idx+1+len(delimiter):]
	}

	var meta Meta
	if header != "" {
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
			return File{}, fmt.Errorf("parse snapshot header: %w", err)
		}
	}

	return File{Meta: meta, Body: strings.TrimSuffix(body, "\n")}, nil
}
