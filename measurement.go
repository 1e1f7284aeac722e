package txtimez

import (
	"sync"
	"time"
)

// Measurement records the start and end of one transaction.
// The handle returned by StartTx belongs to the caller until it is stopped;
// once finished it never changes again.
//
//nolint:govet // Field order follows the lifecycle, not memory layout
type Measurement struct {
	start  time.Time
	end    time.Time
	name   Key
	mu     sync.RWMutex
	issued bool // Set only by startMeasurement; zero values are foreign handles.
	done   bool
}

// startMeasurement creates a running measurement beginning at now.
func startMeasurement(name Key, now time.Time) *Measurement {
	return &Measurement{
		name:   name,
		start:  now,
		issued: true,
	}
}

// Name returns the transaction name.
func (m *Measurement) Name() Key {
	return m.name
}

// StartTime returns when the transaction started.
func (m *Measurement) StartTime() time.Time {
	return m.start
}

// EndTime returns when the transaction finished.
// The boolean is false while the measurement is still running.
func (m *Measurement) EndTime() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.end, m.done
}

// IsFinished reports whether the measurement has an end time.
func (m *Measurement) IsFinished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

// Duration returns the elapsed time between start and end.
// Fails with ErrNotFinished while the measurement is running.
func (m *Measurement) Duration() (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.done {
		return 0, ErrNotFinished
	}
	return m.end.Sub(m.start), nil
}

// finish sets the end time exactly once.
// End times earlier than the start are clamped so durations are never negative.
func (m *Measurement) finish(end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return ErrAlreadyFinished
	}
	if end.Before(m.start) {
		end = m.start
	}
	m.end = end
	m.done = true
	return nil
}
