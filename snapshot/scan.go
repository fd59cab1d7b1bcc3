package snapshot

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FindPending walks root and returns every pending snapshot path, sorted.
func FindPending(fsys afero.Fs, root string) ([]string, error) {
	return find(fsys, root, Extension+PendingSuffix)
}

// FindBaselines walks root and returns every accepted baseline path, sorted.
func FindBaselines(fsys afero.Fs, root string) ([]string, error) {
	return find(fsys, root, Extension)
}

func find(fsys afero.Fs, root string, suffix string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, root); err != nil {
		return nil, &IOError{Path: root, Err: err}
	} else if !ok {
		return nil, nil
	}

	var paths []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}
	sort.Strings(paths)
	return paths, nil
}

// Entry pairs a snapshot path with its parsed file, or the error that kept it
// from parsing.
type Entry struct {
	Path string
	File File
	Err  error
}

// LoadAll parses the given snapshot files with a bounded number of workers.
// Entries come back in input order regardless of which worker handled them.
func LoadAll(ctx context.Context, store *Store, paths []string, workers int) []Entry {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	entries := make([]Entry, len(paths))
	jobs := make(chan int, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				file, err := store.Load(paths[i])
				entries[i] = Entry{Path: paths[i], File: file, Err: err}
			}
		}()
	}

	for i := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return entries
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return entries
}
