package keepsake

import (
	gocache "github.com/patrickmn/go-cache"
)

// sequencer assigns each identity its occurrence number within a run. The
// first assertion at an identity gets 1, repeats get 2, 3 and so on; numbers
// are never reset while the process lives, so loops and retries land on
// distinct snapshot files instead of fighting over one.
type sequencer struct {
	counts *gocache.Cache
}

func newSequencer() *sequencer {
	return &sequencer{counts: gocache.New(gocache.NoExpiration, 0)}
}

func (s *sequencer) next(key string) uint64 {
	if err := s.counts.Add(key, uint64(1), gocache.NoExpiration); err == nil {
		return 1
	}
	n, err := s.counts.IncrementUint64(key, 1)
	if err != nil {
		return 1
	}
	return n
}
