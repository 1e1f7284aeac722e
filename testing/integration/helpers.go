// Package integration exercises the registry the way a test harness or worker pool would.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zoobzio/txtimez"
)

// RoundTrips runs n start/stop pairs for name through the registry facade.
func RoundTrips(t *testing.T, reg *txtimez.Registry, ctx context.Context, name txtimez.Key, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, reg.StopTx(ctx, reg.StartTx(ctx, name)))
	}
}

// DirectRoundTrips runs n start/stop pairs for name directly on collector.
func DirectRoundTrips(collector *txtimez.Collector, name txtimez.Key, n int) error {
	for i := 0; i < n; i++ {
		if err := collector.StopTx(collector.StartTx(name)); err != nil {
			return err
		}
	}
	return nil
}
