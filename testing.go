package keepsake

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// TB is the fragment of testing.TB the adapter needs. *testing.T and
// *testing.B both satisfy it.
type TB interface {
	Helper()
	Name() string
	Error(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Option adjusts a single MatchSnapshot call.
type Option func(*callOptions)

type callOptions struct {
	name       string
	root       string
	expression string
	format     Format
	rules      []Rule
	engine     *Engine
}

// WithName names the snapshot explicitly instead of deriving it from the
// test name.
func WithName(name string) Option {
	return func(o *callOptions) { o.name = name }
}

// WithRoot stores the snapshot under dir instead of the default
// testdata/snapshots next to the test file.
func WithRoot(dir string) Option {
	return func(o *callOptions) { o.root = dir }
}

// WithFormat renders the snapshot in the given format. The default is Block.
func WithFormat(f Format) Option {
	return func(o *callOptions) { o.format = f }
}

// WithExpression records expr in the snapshot header as the source of the
// asserted value.
func WithExpression(expr string) Option {
	return func(o *callOptions) { o.expression = expr }
}

// WithRedaction replaces everything the selector matches with replacement
// before rendering. Repeat the option to stack rules; later rules win on
// overlap.
func WithRedaction(sel string, replacement any) Option {
	return func(o *callOptions) {
		o.rules = append(o.rules, Rule{Selector: sel, Replacement: replacement})
	}
}

// WithEngine runs the assertion on a specific engine instead of the shared
// default, which is how tests point snapshots at an in-memory filesystem.
func WithEngine(e *Engine) Option {
	return func(o *callOptions) { o.engine = e }
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine the testing adapter uses. Update
// mode comes from the KEEPSAKE_UPDATE environment variable, read once for
// the whole run.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(Config{Update: envUpdate(os.Getenv("KEEPSAKE_UPDATE"))})
	})
	return defaultEngine
}

func envUpdate(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "always":
		return true
	}
	return false
}

// MatchSnapshot asserts that value renders identically to the accepted
// snapshot for this test. On the first run, and whenever the rendering
// drifts, it writes a pending file next to the baseline and fails the test
// with a diff; with update mode on it rewrites the baseline instead. The
// snapshot file lands in testdata/snapshots next to the calling test file
// unless WithRoot says otherwise.
func MatchSnapshot(t TB, value any, opts ...Option) *Outcome {
	t.Helper()

	o := callOptions{format: Block}
	for _, opt := range opts {
		opt(&o)
	}

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		t.Fatalf("keepsake: cannot locate caller")
		return nil
	}

	root := o.root
	if root == "" {
		root = filepath.Join(filepath.Dir(file), "testdata", "snapshots")
	}
	name := o.name
	if name == "" {
		name = t.Name()
	}

	id := Identity{
		Root:      root,
		Namespace: filepath.Base(filepath.Dir(file)),
		File:      filepath.Base(file),
		Line:      line,
		Name:      name,
	}

	eng := o.engine
	if eng == nil {
		eng = Default()
	}

	out, err := eng.assert(id, value, o.expression, o.rules, o.format)
	if err != nil {
		t.Fatalf("keepsake: %v", err)
		return nil
	}

	switch out.Status {
	case StatusFailed:
		t.Error(failureMessage(out))
	case StatusUpdated:
		t.Logf("keepsake: updated %s", out.BaselinePath)
	}
	return out
}

func failureMessage(out *Outcome) string {
	var b strings.Builder
	b.WriteString("snapshot mismatch for ")
	b.WriteString(out.BaselinePath)
	b.WriteString("\n")
	b.WriteString(out.Diff)
	b.WriteString("\nreview with: keepsake review, or set KEEPSAKE_UPDATE=1 to accept everything")
	return b.String()
}
