package keepsake

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/ppiankov/keepsake/content"
	"github.com/ppiankov/keepsake/redact"
	"github.com/ppiankov/keepsake/render"
	"github.com/ppiankov/keepsake/snapshot"
)

// Config carries the externally supplied facts an engine needs. The engine
// never reads environment variables or flags itself.
type Config struct {
	// Update makes mismatching assertions overwrite baselines in place
	// instead of writing pending files.
	Update bool

	// Fs is the filesystem snapshots live on. Nil means the real one.
	Fs afero.Fs
}

// Engine runs snapshot assertions. It is safe for concurrent use; the only
// shared state is the per-identity sequence registry.
type Engine struct {
	store  *snapshot.Store
	update bool
	seq    *sequencer
}

// New returns an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{
		store:  snapshot.NewStore(cfg.Fs),
		update: cfg.Update,
		seq:    newSequencer(),
	}
}

// Assert captures value, applies the redaction rules, renders the result in
// the given format and compares it against the stored baseline for id. The
// returned outcome says whether the assertion passed, failed leaving a
// pending file, or updated the baseline. The error return is reserved for
// faults in the assertion itself (bad rule, uncapturable value, unrenderable
// tree, filesystem trouble); a mismatch is not an error.
func (e *Engine) Assert(id Identity, value any, rules []Rule, format Format) (*Outcome, error) {
	return e.assert(id, value, "", rules, format)
}

func (e *Engine) assert(id Identity, value any, expression string, rules []Rule, format Format) (*Outcome, error) {
	// Rules compile before anything touches the value or the filesystem,
	// so a malformed selector always surfaces, even on runs that would
	// have passed.
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, &render.SerializationError{Format: format, Reason: "unknown format"}
	}

	tree, err := content.FromValue(value)
	if err != nil {
		return nil, fmt.Errorf("capture value: %w", err)
	}
	tree = redact.Apply(tree, compiled)

	rendered, err := render.Render(tree, format)
	if err != nil {
		return nil, err
	}

	if expression == "" {
		expression = fmt.Sprintf("%T", value)
	}
	id.Seq = e.seq.next(id.key())

	path := snapshot.Resolve(id.rootDir(), id.Namespace, id.name(), id.Seq)
	baseline, found, err := e.store.LoadBaseline(path)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Identity:     id,
		Expression:   expression,
		BaselinePath: path,
	}

	if found && snapshot.Compare(baseline, rendered) == snapshot.Equal {
		// A stale pending file from an earlier failing run stays where
		// it is; discarding it is the review tooling's call.
		out.Status = StatusPassed
		return out, nil
	}

	file := snapshot.File{
		Meta: snapshot.Meta{
			Source:     id.File,
			Line:       id.Line,
			Name:       id.name(),
			Expression: expression,
			Format:     string(format),
		},
		Body: rendered,
	}

	if e.update {
		if err := e.store.WriteBaseline(path, file); err != nil {
			return nil, err
		}
		out.Status = StatusUpdated
		return out, nil
	}

	pending, err := e.store.WritePending(path, file)
	if err != nil {
		return nil, err
	}
	out.Status = StatusFailed
	out.PendingPath = pending
	out.Diff = snapshot.Diff(baseline, rendered, path, pending)
	return out, nil
}
