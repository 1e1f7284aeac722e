package integration

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/txtimez"
)

// Three workers hit the global collector directly while the invoking
// context records locally with global collection enabled.
func TestWorkerPoolAggregatesIntoGlobal(t *testing.T) {
	reg := txtimez.New()
	ctx := txtimez.WithExecutionContext(context.Background())

	reg.EnableGlobalCollection(true)
	reg.Clear(ctx)

	var g errgroup.Group
	for w := 0; w < 3; w++ {
		g.Go(func() error {
			return DirectRoundTrips(reg.Global(), "global", 3)
		})
	}

	RoundTrips(t, reg, ctx, "local", 3)
	require.NoError(t, g.Wait())

	times := reg.Global().ResponseTimes()
	assert.Len(t, times, 2)
	assert.ElementsMatch(t, []string{"global", "local"}, times.Names())
	assert.Equal(t, 9, times.Count("global"))
	assert.Equal(t, 3, times.Count("local"))

	local := reg.Current(ctx).ResponseTimes()
	assert.Equal(t, 3, local.Count("local"))
	assert.NotContains(t, local, "global")
}

func TestWorkerContextsStayIsolated(t *testing.T) {
	reg := txtimez.New()

	const workers = 8
	const perWorker = 5
	ctxs := make([]context.Context, workers)
	for i := range ctxs {
		ctxs[i] = txtimez.WithExecutionContext(context.Background())
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		ctx := ctxs[i]
		g.Go(func() error {
			for j := 0; j < perWorker; j++ {
				if err := reg.StopTx(ctx, reg.StartTx(ctx, "job")); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, ctx := range ctxs {
		assert.Equal(t, perWorker, reg.Current(ctx).ResponseTimes().Count("job"))
	}
	assert.Empty(t, reg.Global().ResponseTimes())
	assert.Equal(t, workers, reg.Contexts())
}

func TestMixedCallStylesCountOnceInGlobal(t *testing.T) {
	reg := txtimez.New(txtimez.WithGlobalCollection(true))

	const k = 12
	var g errgroup.Group
	for i := 0; i < k; i++ {
		g.Go(func() error {
			if i%2 == 0 {
				ctx := txtimez.WithExecutionContext(context.Background())
				return reg.StopTx(ctx, reg.StartTx(ctx, "n"))
			}
			return DirectRoundTrips(reg.Global(), "n", 1)
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, k, reg.Global().ResponseTimes().Count("n"))
}

func TestListenersObserveEveryWorker(t *testing.T) {
	reg := txtimez.New(txtimez.WithGlobalCollection(true))

	var started, ended atomic.Int64
	reg.OnMeasureStart(func(*txtimez.Measurement) { started.Add(1) })
	reg.OnMeasureEnd(func(m *txtimez.Measurement) {
		if m.IsFinished() {
			ended.Add(1)
		}
	})
	reg.OnMeasureEnd(func(*txtimez.Measurement) { panic("misbehaving listener") })

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			ctx := txtimez.WithExecutionContext(context.Background())
			for i := 0; i < 10; i++ {
				if err := reg.StopTx(ctx, reg.StartTx(ctx, "observed")); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 40, started.Load())
	assert.EqualValues(t, 40, ended.Load())
	assert.Equal(t, 40, reg.Global().ResponseTimes().Count("observed"))
}

func TestHarnessReport(t *testing.T) {
	reg := txtimez.New()
	ctx := context.Background()

	RoundTrips(t, reg, ctx, "render", 2)
	RoundTrips(t, reg, ctx, "fetch", 1)

	var buf bytes.Buffer
	require.NoError(t, reg.Current(ctx).ResponseTimes().WriteTable(&buf))
	assert.Contains(t, buf.String(), "render")
	assert.Contains(t, buf.String(), "fetch")

	reg.Clear(ctx)
	assert.Empty(t, reg.Current(ctx).ResponseTimes())
}
