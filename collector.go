package txtimez

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/zoobzio/clockz"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 16

// Collector aggregates completed measurements grouped by transaction name.
// Safe for concurrent use by multiple goroutines.
//
// Names are spread over shards by hash, each guarded by its own lock, so
// records for different names rarely contend. Within one name, entries keep
// the order in which Record calls completed.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type Collector struct {
	shards       []collectorShard
	clock        clockz.Clock
	hooks        *hooks // Nil for standalone collectors.
	droppedCount atomic.Int64
	active       atomic.Bool
}

type collectorShard struct {
	entries map[Key][]*Measurement
	mu      sync.RWMutex
}

// NewCollector creates a standalone collector with the given shard count.
// It is active and uses the real clock. Standalone collectors have no listeners.
func NewCollector(shards int) *Collector {
	return newCollector(shards, clockz.RealClock, nil)
}

func newCollector(shards int, clock clockz.Clock, h *hooks) *Collector {
	if shards <= 0 {
		shards = DefaultShards
	}

	c := &Collector{
		shards: make([]collectorShard, shards),
		clock:  clock,
		hooks:  h,
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[Key][]*Measurement)
	}
	c.active.Store(true)
	return c
}

func (c *Collector) shardFor(name Key) *collectorShard {
	idx := xxhash.Sum64String(name) % uint64(len(c.shards))
	return &c.shards[idx]
}

// StartCollecting enables recording. Idempotent.
func (c *Collector) StartCollecting() {
	c.active.Store(true)
}

// StopCollecting disables recording. Idempotent.
// Measurements already collected stay readable.
func (c *Collector) StopCollecting() {
	c.active.Store(false)
}

// IsCollecting reports whether Record currently stores measurements.
func (c *Collector) IsCollecting() bool {
	return c.active.Load()
}

// Record appends a finished measurement under its transaction name.
// While the collector is inactive the measurement is dropped and the drop
// counter is incremented. Nil and unfinished measurements are dropped too.
func (c *Collector) Record(m *Measurement) {
	if m == nil || !m.IsFinished() || !c.active.Load() {
		c.droppedCount.Add(1)
		return
	}

	sh := c.shardFor(m.Name())
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.entries[m.Name()] = append(sh.entries[m.Name()], m)
}

// ResponseTimes returns a snapshot of all collected measurements.
// The map and its slices are freshly allocated and owned by the caller.
func (c *Collector) ResponseTimes() ResponseTimes {
	result := make(ResponseTimes)

	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.RLock()
		for name, seq := range sh.entries {
			if len(seq) == 0 {
				continue
			}
			cp := make([]*Measurement, len(seq))
			copy(cp, seq)
			result[name] = cp
		}
		sh.mu.RUnlock()
	}

	return result
}

// Count returns the number of collected measurements across all names.
func (c *Collector) Count() int {
	total := 0
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.RLock()
		for _, seq := range sh.entries {
			total += len(seq)
		}
		sh.mu.RUnlock()
	}
	return total
}

// DroppedCount returns how many measurements Record refused.
func (c *Collector) DroppedCount() int64 {
	return c.droppedCount.Load()
}

// Clear removes all collected measurements and resets the drop counter.
// The collecting state is left untouched.
func (c *Collector) Clear() {
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		sh.entries = make(map[Key][]*Measurement)
		sh.mu.Unlock()
	}
	c.droppedCount.Store(0)
}

// StartTx starts a measurement that will be recorded directly into this collector.
func (c *Collector) StartTx(name Key) *Measurement {
	m := startMeasurement(name, c.clock.Now())
	if c.hooks != nil {
		c.hooks.dispatch(PhaseStart, m)
	}
	return m
}

// StopTx finishes m and records it into this collector only,
// bypassing the registry's propagation to other collectors.
func (c *Collector) StopTx(m *Measurement) error {
	if err := stopMeasurement(m, c.clock); err != nil {
		return err
	}
	if c.hooks != nil {
		c.hooks.dispatch(PhaseEnd, m)
	}
	c.Record(m)
	return nil
}

// stopMeasurement validates the handle and finishes it at the clock's now.
func stopMeasurement(m *Measurement, clock clockz.Clock) error {
	if m == nil || !m.issued {
		return ErrInvalidHandle
	}
	if err := m.finish(clock.Now()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	return nil
}
