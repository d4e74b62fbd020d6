// Package random provides the seedable random sources used by synthetic data paths.
package random

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"
)

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

// New returns a goroutine-safe generator seeded with seed
func New(seed uint64) *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)})
}

// NewTimeSeeded returns a goroutine-safe generator seeded from the wall clock
func NewTimeSeeded() *rand.Rand {
	return New(uint64(time.Now().UnixNano()))
}

// ForKey returns a generator derived only from (season, week, salt), so the
// same key always yields the same sequence.
func ForKey(season, week int, salt string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(salt))
	return New(uint64(season)<<16 ^ uint64(week) ^ h.Sum64())
}

// Source picks between a shared generator and per-key deterministic ones
type Source struct {
	shared *rand.Rand
	perKey bool
}

// NewSource wraps rng. When perKey is set, For ignores rng and derives a
// generator from the key instead.
func NewSource(rng *rand.Rand, perKey bool) *Source {
	if rng == nil {
		rng = NewTimeSeeded()
	}
	return &Source{shared: rng, perKey: perKey}
}

// For returns the generator to use for a (season, week) synthetic draw
func (s *Source) For(season, week int, salt string) *rand.Rand {
	if s == nil {
		return NewTimeSeeded()
	}
	if s.perKey {
		return ForKey(season, week, salt)
	}
	return s.shared
}
