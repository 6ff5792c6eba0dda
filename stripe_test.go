package keydispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStripedLock_NextPowerOfTwo(t *testing.T) {
	cases := map[uint]uint{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 32: 32, 33: 64}
	for in, want := range cases {
		require.Equal(t, want, nextPowerOfTwo(in), "nextPowerOfTwo(%d)", in)
	}
}

func TestStripedLock_SameKeySameStripe(t *testing.T) {
	s := newStripedLock[string](16)
	require.Equal(t, s.stripeFor("alice"), s.stripeFor("alice"))
}

func TestStripedLock_LockSerializesSameKey(t *testing.T) {
	s := newStripedLock[string](8)

	unlock := s.Lock("a")
	unlocked := make(chan struct{})
	go func() {
		u2 := s.Lock("a")
		close(unlocked)
		u2()
	}()

	select {
	case <-unlocked:
		t.Fatal("second Lock on the same key acquired before the first was released")
	default:
	}
	unlock()
	<-unlocked
}

func TestStripedLock_DifferentKeysCanRunConcurrently(t *testing.T) {
	s := newStripedLock[int](64)
	unlockA := s.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := s.Lock(2)
		defer unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked unexpectedly")
	}
}
