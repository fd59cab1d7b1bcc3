package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

const (
	// Extension marks accepted baseline files.
	Extension = ".snap"
	// PendingSuffix is appended to a baseline path to name its proposed
	// replacement.
	PendingSuffix = ".new"
)

// Comparison is the verdict of matching a fresh rendering against a baseline.
type Comparison uint8

const (
	Equal Comparison = iota
	Different
)

// Compare matches two snapshot bodies byte for byte. Headers are never part
// of the input.
func Compare(baseline, rendered string) Comparison {
	if baseline == rendered {
		return Equal
	}
	return Different
}

// IOError wraps a filesystem failure with the snapshot path it concerns.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("snapshot io %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Resolve builds the baseline path for a snapshot identity. Namespace and
// name join with a double underscore, characters outside [A-Za-z0-9._-] are
// replaced, and occurrences past the first at the same identity get a
// numeric suffix.
func Resolve(dir, namespace, name string, seq uint64) string {
	base := Sanitize(name)
	if namespace != "" {
		base = Sanitize(namespace) + "__" + base
	}
	if seq > 1 {
		base = fmt.Sprintf("%s-%d", base, seq)
	}
	return filepath.Join(dir, base+Extension)
}

// Sanitize replaces every character a snapshot file name cannot carry.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PendingPath names the pending counterpart of a baseline path.
func PendingPath(baseline string) string {
	return baseline + PendingSuffix
}

// BaselinePath names the baseline a pending path proposes to replace.
func BaselinePath(pending string) string {
	return strings.TrimSuffix(pending, PendingSuffix)
}

// Store moves snapshot files in and out of a filesystem. The zero value is
// not usable; construct with NewStore.
type Store struct {
	fs afero.Fs
}

// NewStore returns a store over the given filesystem, or the real one when
// nil.
func NewStore(fsys afero.Fs) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{fs: fsys}
}

// Fs exposes the underlying filesystem for walks.
func (s *Store) Fs() afero.Fs { return s.fs }

// LoadBaseline reads the baseline at path and returns its body. A missing
// file reports ok=false without error; an unreadable or malformed file is an
// *IOError.
func (s *Store) LoadBaseline(path string) (string, bool, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &IOError{Path: path, Err: err}
	}
	file, err := ParseFile(data)
	if err != nil {
		return "", false, &IOError{Path: path, Err: err}
	}
	return file.Body, true, nil
}

// Load reads and parses any snapshot file, header included.
func (s *Store) Load(path string) (File, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return File{}, &IOError{Path: path, Err: err}
	}
	file, err := ParseFile(data)
	if err != nil {
		return File{}, &IOError{Path: path, Err: err}
	}
	return file, nil
}

// WriteBaseline replaces the baseline at path with file, atomically.
func (s *Store) WriteBaseline(path string, file File) error {
	return s.writeAtomic(path, file)
}

// WritePending stores file as the pending snapshot for the baseline at path
// and returns the pending path.
func (s *Store) WritePending(path string, file File) (string, error) {
	pending := PendingPath(path)
	if err := s.writeAtomic(pending, file); err != nil {
		return "", err
	}
	return pending, nil
}

// AcceptPending promotes a pending snapshot to its baseline path.
func (s *Store) AcceptPending(pending string) error {
	if err := s.fs.Rename(pending, BaselinePath(pending)); err != nil {
		return &IOError{Path: pending, Err: err}
	}
	return nil
}

// RejectPending discards a pending snapshot.
func (s *Store) RejectPending(pending string) error {
	if err := s.fs.Remove(pending); err != nil {
		return &IOError{Path: pending, Err: err}
	}
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over path, so readers never observe a half-written snapshot.
func (s *Store) writeAtomic(path string, file File) error {
	data, err := file.Encode()
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return &IOError{Path: path, Err: err}
	}

	tmp, err := afero.TempFile(s.fs, dir, ".keepsake-*.tmp")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := s.fs.Chmod(tmpName, 0644); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Diff renders a unified diff between a baseline body and a fresh rendering,
// with three lines of context.
func Diff(baseline, rendered, fromPath, toPath string) string {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(baseline),
		B:        difflib.SplitLines(rendered),
		FromFile: fromPath,
		ToFile:   toPath,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}
