package executor

import (
	"testing"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/require"
)

func TestAnts_PropagatesSubmitError(t *testing.T) {
	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	defer pool.Release()

	pool.Release() // force Submit to reject on a released pool
	e := Ants(pool)
	err = e.Execute(func() {})
	require.Error(t, err)
}

func TestAnts_RunsTask(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	done := make(chan struct{})
	require.NoError(t, Ants(pool).Execute(func() { close(done) }))
	<-done
}

func TestAnts_NilPoolPanics(t *testing.T) {
	require.Panics(t, func() { Ants(nil) })
}

func TestWorkerpool_RunsTask(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.StopWait()

	done := make(chan struct{})
	require.NoError(t, Workerpool(pool).Execute(func() { close(done) }))
	<-done
}

func TestWorkerpool_NilPoolPanics(t *testing.T) {
	require.Panics(t, func() { Workerpool(nil) })
}

func TestConc_RunsTask(t *testing.T) {
	p := conc.New()
	done := make(chan struct{})
	require.NoError(t, Conc(p).Execute(func() { close(done) }))
	<-done
	p.Wait()
}

func TestConc_NilPoolPanics(t *testing.T) {
	require.Panics(t, func() { Conc(nil) })
}
