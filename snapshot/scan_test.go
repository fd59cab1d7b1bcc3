package snapshot

import (
	"context"
	"testing"

	"github.com/spf13/afero"
)

func scanFixture(t *testing.T) *Store {
	t.Helper()
	store := NewStore(afero.NewMemMapFs())

	baselines := []string{"r/a.snap", "r/nested/c.snap"}
	for _, p := range baselines {
		if err := store.WriteBaseline(p, File{Meta: Meta{Format: "json"}, Body: "{}"}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	for _, p := range []string{"r/b.snap", "r/nested/d.snap"} {
		if _, err := store.WritePending(p, File{Meta: Meta{Format: "block"}, Body: "x: 1"}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	return store
}

func TestFindPending(t *testing.T) {
	store := scanFixture(t)

	got, err := FindPending(store.Fs(), "r")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"r/b.snap.new", "r/nested/d.snap.new"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d pending files, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestFindBaselines(t *testing.T) {
	store := scanFixture(t)

	got, err := FindBaselines(store.Fs(), "r")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"r/a.snap", "r/nested/c.snap"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d baselines, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestFind_MissingRootIsEmpty(t *testing.T) {
	store := NewStore(afero.NewMemMapFs())
	got, err := FindPending(store.Fs(), "does/not/exist")
	if err != nil {
		t.Fatalf("Expected no error for missing root, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestLoadAll(t *testing.T) {
	store := scanFixture(t)
	paths, err := FindBaselines(store.Fs(), "r")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entries := LoadAll(context.Background(), store, paths, 4)
	if len(entries) != len(paths) {
		t.Fatalf("Expected %d entries, got %d", len(paths), len(entries))
	}
	for i, entry := range entries {
		if entry.Path != paths[i] {
			t.Errorf("Expected input order preserved, got %q at %d", entry.Path, i)
		}
		if entry.Err != nil {
			t.Errorf("Expected no error for %q, got %v", entry.Path, entry.Err)
		}
		if entry.File.Meta.Format != "json" {
			t.Errorf("Expected parsed header, got %+v", entry.File.Meta)
		}
	}
}

func TestLoadAll_ReportsPerFileErrors(t *testing.T) {
	store := NewStore(afero.NewMemMapFs())
	if err := afero.WriteFile(store.Fs(), "r/bad.snap", []byte("garbage"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := store.WriteBaseline("r/good.snap", File{Body: "ok"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entries := LoadAll(context.Background(), store, []string{"r/bad.snap", "r/good.snap"}, 2)
	if entries[0].Err == nil {
		t.Error("Expected parse error for bad file")
	}
	if entries[1].Err != nil {
		t.Errorf("Expected good file to load, got %v", entries[1].Err)
	}
	if entries[1].File.Body != "ok" {
		t.Errorf("Expected body ok, got %q", entries[1].File.Body)
	}
}

func TestLoadAll_ZeroWorkers(t *testing.T) {
	store := scanFixture(t)
	entries := LoadAll(context.Background(), store, []string{"r/a.snap"}, 0)
	if len(entries) != 1 || entries[0].Err != nil {
		t.Fatalf("Expected single clean entry, got %+v", entries)
	}
}
