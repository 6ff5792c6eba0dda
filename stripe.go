package keydispatch

import (
	"hash/maphash"
	"sync"
)

// stripedLock[K] partitions locking across a fixed number of mutexes, keyed
// by a hash of the caller's key. Keys that hash to the same stripe contend;
// keys that don't run independently. The stripe count is always a power of
// two so stripe selection is a mask, not a modulo.
//
// No teacher file does per-key striped locking (ygrebnov-workers dispatches
// tasks without per-key ordering at all); this is grounded on the general
// Go striped-lock idiom, generalized over any comparable key type via
// hash/maphash's Comparable hasher, and sized the way the teacher sizes its
// own pools: via an "expected concurrency" tuning knob (config.go's
// ExpectedConcurrency, mirroring MaxWorkers).
type stripedLock[K comparable] struct {
	seed    maphash.Seed
	mask    uint64
	mutexes []sync.Mutex
}

// newStripedLock builds a stripedLock with at least `expected` stripes,
// rounded up to the next power of two, minimum 1.
func newStripedLock[K comparable](expected uint) *stripedLock[K] {
	n := nextPowerOfTwo(expected)
	return &stripedLock[K]{
		seed:    maphash.MakeSeed(),
		mask:    uint64(n - 1),
		mutexes: make([]sync.Mutex, n),
	}
}

func nextPowerOfTwo(n uint) uint {
	if n <= 1 {
		return 1
	}
	n--
	p := uint(1)
	for p < n+1 {
		p <<= 1
	}
	return p
}

// stripeFor returns the index of the stripe guarding key.
func (s *stripedLock[K]) stripeFor(key K) uint64 {
	return maphash.Comparable(s.seed, key) & s.mask
}

// Lock acquires the mutex guarding key's stripe and returns an unlock func.
func (s *stripedLock[K]) Lock(key K) func() {
	idx := s.stripeFor(key)
	m := &s.mutexes[idx]
	m.Lock()
	return m.Unlock
}

// stripeCount reports the number of stripes, for tests and diagnostics.
func (s *stripedLock[K]) stripeCount() int {
	return len(s.mutexes)
}
