package keepsake

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ppiankov/keepsake/selector"
	"github.com/ppiankov/keepsake/snapshot"
)

type payload struct {
	ID    int
	Token string
}

func memEngine(update bool) *Engine {
	return New(Config{Update: update, Fs: afero.NewMemMapFs()})
}

func fsOf(e *Engine) afero.Fs {
	return e.store.Fs()
}

func TestAssert_FirstRunFailsAndWritesPending(t *testing.T) {
	e := memEngine(false)
	id := Identity{Root: "snaps", Namespace: "api", Name: "users"}

	out, err := e.Assert(id, payload{ID: 1, Token: "t"}, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if out.Status != StatusFailed {
		t.Fatalf("Expected StatusFailed on first run, got %s", out.Status)
	}
	if out.BaselinePath != "snaps/api__users.snap" {
		t.Errorf("Expected baseline path snaps/api__users.snap, got %q", out.BaselinePath)
	}
	if out.PendingPath != "snaps/api__users.snap.new" {
		t.Errorf("Expected pending path, got %q", out.PendingPath)
	}

	if exists, _ := afero.Exists(fsOf(e), out.PendingPath); !exists {
		t.Error("Expected pending file on disk")
	}
	if exists, _ := afero.Exists(fsOf(e), out.BaselinePath); exists {
		t.Error("Expected no baseline on a failing run")
	}
	if !strings.Contains(out.Diff, "+") {
		t.Errorf("Expected additions in diff against missing baseline, got:\n%s", out.Diff)
	}
}

func TestAssert_PassesAgainstAcceptedBaseline(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "users"}
	value := payload{ID: 1, Token: "t"}

	updater := New(Config{Update: true, Fs: fs})
	if _, err := updater.Assert(id, value, nil, JSON); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A fresh engine models a fresh test run: sequence numbers restart, so
	// the assertion resolves to the same path.
	e := New(Config{Fs: fs})
	out, err := e.Assert(id, value, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusPassed {
		t.Fatalf("Expected StatusPassed, got %s (diff:\n%s)", out.Status, out.Diff)
	}
	if exists, _ := afero.Exists(fs, out.BaselinePath+".new"); exists {
		t.Error("Expected no pending file on a passing run")
	}
}

func TestAssert_MismatchKeepsBaseline(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "users"}

	updater := New(Config{Update: true, Fs: fs})
	if _, err := updater.Assert(id, payload{ID: 1, Token: "old"}, nil, JSON); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	e := New(Config{Fs: fs})
	out, err := e.Assert(id, payload{ID: 1, Token: "new"}, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if out.Status != StatusFailed {
		t.Fatalf("Expected StatusFailed, got %s", out.Status)
	}
	if !strings.Contains(out.Diff, "-") || !strings.Contains(out.Diff, "+") {
		t.Errorf("Expected removals and additions in diff, got:\n%s", out.Diff)
	}

	store := snapshot.NewStore(fs)
	body, ok, err := store.LoadBaseline(out.BaselinePath)
	if err != nil || !ok {
		t.Fatalf("Expected baseline intact, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(body, "old") {
		t.Errorf("Expected baseline to keep the accepted value, got %q", body)
	}
}

func TestAssert_UpdateModeRewritesBaseline(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "users"}

	updater := New(Config{Update: true, Fs: fs})
	if _, err := updater.Assert(id, payload{ID: 1, Token: "old"}, nil, JSON); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second := New(Config{Update: true, Fs: fs})
	out, err := second.Assert(id, payload{ID: 1, Token: "new"}, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusUpdated {
		t.Fatalf("Expected StatusUpdated, got %s", out.Status)
	}

	store := snapshot.NewStore(fs)
	body, _, err := store.LoadBaseline(out.BaselinePath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(body, "new") {
		t.Errorf("Expected baseline rewritten, got %q", body)
	}
	if exists, _ := afero.Exists(fs, out.BaselinePath+".new"); exists {
		t.Error("Expected no pending file in update mode")
	}
}

func TestAssert_UpdateModePassesWithoutRewrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "users"}
	value := payload{ID: 1, Token: "t"}

	updater := New(Config{Update: true, Fs: fs})
	if _, err := updater.Assert(id, value, nil, JSON); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	again := New(Config{Update: true, Fs: fs})
	out, err := again.Assert(id, value, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusPassed {
		t.Errorf("Expected matching assertion to pass even in update mode, got %s", out.Status)
	}
}

func TestAssert_RepeatedIdentitySequences(t *testing.T) {
	e := memEngine(false)
	id := Identity{Root: "snaps", Namespace: "api", Name: "loop"}

	first, err := e.Assert(id, 1, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := e.Assert(id, 2, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	third, err := e.Assert(id, 3, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first.Identity.Seq != 1 || second.Identity.Seq != 2 || third.Identity.Seq != 3 {
		t.Errorf("Expected sequences 1,2,3, got %d,%d,%d",
			first.Identity.Seq, second.Identity.Seq, third.Identity.Seq)
	}
	if first.BaselinePath != "snaps/api__loop.snap" {
		t.Errorf("Expected unsuffixed first path, got %q", first.BaselinePath)
	}
	if second.BaselinePath != "snaps/api__loop-2.snap" {
		t.Errorf("Expected -2 suffix, got %q", second.BaselinePath)
	}
	if third.BaselinePath != "snaps/api__loop-3.snap" {
		t.Errorf("Expected -3 suffix, got %q", third.BaselinePath)
	}
}

func TestAssert_RedactionEndToEnd(t *testing.T) {
	e := memEngine(false)
	id := Identity{Root: "snaps", Namespace: "api", Name: "redacted"}

	out, err := e.Assert(id, payload{ID: 1, Token: "s3cr3t"},
		[]Rule{{Selector: ".**.Token", Replacement: "[token]"}}, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := afero.ReadFile(fsOf(e), out.PendingPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(string(data), "s3cr3t") {
		t.Error("Expected secret to be redacted from the stored snapshot")
	}
	if !strings.Contains(string(data), "[token]") {
		t.Error("Expected replacement value in the stored snapshot")
	}
}

func TestAssert_BadRuleFailsBeforeAnyWrite(t *testing.T) {
	e := memEngine(false)
	id := Identity{Root: "snaps", Namespace: "api", Name: "bad"}

	_, err := e.Assert(id, 1, []Rule{{Selector: ".user..id", Replacement: "x"}}, JSON)
	var pe *selector.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected wrapped *selector.ParseError, got %v", err)
	}

	// Composite replacements are rejected too.
	_, err = e.Assert(id, 1, []Rule{{Selector: ".x", Replacement: []int{1}}}, JSON)
	if err == nil {
		t.Fatal("Expected composite replacement error")
	}

	empty, err := afero.IsEmpty(fsOf(e), "/")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !empty {
		t.Error("Expected no files written when rules are malformed")
	}
}

func TestAssert_UnknownFormat(t *testing.T) {
	e := memEngine(false)
	_, err := e.Assert(Identity{Name: "x"}, 1, nil, Format("xml"))
	if err == nil {
		t.Fatal("Expected error for unknown format")
	}
}

func TestAssert_UncapturableValue(t *testing.T) {
	e := memEngine(false)
	_, err := e.Assert(Identity{Name: "x"}, make(chan int), nil, JSON)
	if err == nil {
		t.Fatal("Expected capture error")
	}
	if !strings.Contains(err.Error(), "capture value") {
		t.Errorf("Expected wrapped capture error, got %v", err)
	}
}

func TestAssert_PassLeavesStalePending(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "stale"}

	updater := New(Config{Update: true, Fs: fs})
	if _, err := updater.Assert(id, 1, nil, JSON); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stalePath := "snaps/api__stale.snap.new"
	store := snapshot.NewStore(fs)
	if _, err := store.WritePending("snaps/api__stale.snap", snapshot.File{Body: "leftover"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	e := New(Config{Fs: fs})
	out, err := e.Assert(id, 1, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusPassed {
		t.Fatalf("Expected StatusPassed, got %s", out.Status)
	}
	if exists, _ := afero.Exists(fs, stalePath); !exists {
		t.Error("Expected stale pending file to be left for the review tool")
	}
}

func TestAssert_AcceptedPendingPasses(t *testing.T) {
	fs := afero.NewMemMapFs()
	id := Identity{Root: "snaps", Namespace: "api", Name: "flow"}
	value := payload{ID: 2, Token: "t"}

	e := New(Config{Fs: fs})
	out, err := e.Assert(id, value, nil, Block)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusFailed {
		t.Fatalf("Expected StatusFailed before review, got %s", out.Status)
	}

	store := snapshot.NewStore(fs)
	if err := store.AcceptPending(out.PendingPath); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rerun := New(Config{Fs: fs})
	out, err = rerun.Assert(id, value, nil, Block)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != StatusPassed {
		t.Errorf("Expected StatusPassed after accepting, got %s (diff:\n%s)", out.Status, out.Diff)
	}
}

func TestAssert_CorruptBaselineIsAnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "snaps/api__c.snap", []byte("not a snapshot"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	e := New(Config{Fs: fs})
	_, err := e.Assert(Identity{Root: "snaps", Namespace: "api", Name: "c"}, 1, nil, JSON)
	if err == nil {
		t.Fatal("Expected error for corrupt baseline")
	}
}

func TestAssert_DerivedNameAndDefaultRoot(t *testing.T) {
	e := memEngine(false)
	id := Identity{Namespace: "api", File: "users_test.go", Line: 33}

	out, err := e.Assert(id, 1, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := "testdata/snapshots/api__users_test-33.snap"
	if out.BaselinePath != want {
		t.Errorf("Expected %q, got %q", want, out.BaselinePath)
	}
}

func TestAssert_ExpressionDefaultsToValueType(t *testing.T) {
	e := memEngine(false)
	out, err := e.Assert(Identity{Root: "s", Name: "e"}, payload{}, nil, JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.Expression, "payload") {
		t.Errorf("Expected %%T-derived expression, got %q", out.Expression)
	}
}
