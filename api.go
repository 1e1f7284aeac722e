// Package txtimez provides a lightweight, embeddable transaction-timing collector.
//
// txtimez measures the wall-clock duration of named transactions and aggregates
// the measurements so a test or monitoring harness can inspect them later.
// It supports per-execution-context collection and a single shared collector
// side by side in the same process.
//
// Core Components:.
//   - Measurement: One start/stop timing record for a transaction.
//   - Collector: Measurements grouped by transaction name, with an on/off switch.
//   - Registry: Resolves which Collector(s) a start/stop call writes to.
//
// Basic Usage:.
//
//	reg := txtimez.New()
//	ctx = txtimez.WithExecutionContext(ctx)
//
//	m := reg.StartTx(ctx, "checkout")
//	// ... do the work ...
//	if err := reg.StopTx(ctx, m); err != nil {
//		return err
//	}
//
//	times := reg.Current(ctx).ResponseTimes()
//	fmt.Println(times.Count("checkout"))
//
// Execution Contexts:.
//
// Go has no goroutine identity, so "current" is scoped to the execution context
// carried by a context.Context. WithExecutionContext stamps a fresh id; every
// call made with that context (or a context derived from it) shares one
// Collector. A context without an id resolves to RootContext.
//
// Propagation:.
//
// Registry.StopTx always records into the calling context's Collector and, when
// global collection is enabled, into the global Collector as well. Calling
// StartTx/StopTx directly on a Collector records into that Collector only.
//
// Thread Safety:.
//
// Registry and Collector are safe for concurrent use by multiple goroutines.
// A Measurement handle belongs to the caller until it is stopped and is
// immutable afterwards.
//
// Memory Management:.
//
// Nothing is evicted automatically. Call Collector.Clear, Registry.Clear or
// Registry.Release to drop measurements that are no longer needed.
package txtimez

// Key represents a transaction name.
type Key = string

// ContextID identifies an execution context.
type ContextID = string

// RootContext is the id used for contexts that carry no execution context.
const RootContext ContextID = "root"
