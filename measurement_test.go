package txtimez

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestMeasurementLifecycle(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := startMeasurement("checkout", start)

	if m.Name() != "checkout" {
		t.Errorf("Expected name 'checkout', got %s", m.Name())
	}
	if !m.StartTime().Equal(start) {
		t.Errorf("Expected start %v, got %v", start, m.StartTime())
	}
	if m.IsFinished() {
		t.Error("Expected new measurement to be running")
	}
	if _, ok := m.EndTime(); ok {
		t.Error("Expected no end time while running")
	}

	end := start.Add(250 * time.Millisecond)
	if err := m.finish(end); err != nil {
		t.Fatalf("Unexpected error finishing: %v", err)
	}

	if !m.IsFinished() {
		t.Error("Expected measurement to be finished")
	}
	got, ok := m.EndTime()
	if !ok || !got.Equal(end) {
		t.Errorf("Expected end %v, got %v (ok=%v)", end, got, ok)
	}

	d, err := m.Duration()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", d)
	}
}

func TestMeasurementDurationBeforeFinish(t *testing.T) {
	m := startMeasurement("pending", time.Now())

	if _, err := m.Duration(); !errors.Is(err, ErrNotFinished) {
		t.Errorf("Expected ErrNotFinished, got %v", err)
	}
}

func TestMeasurementFinishTwice(t *testing.T) {
	start := time.Now()
	m := startMeasurement("twice", start)

	first := start.Add(time.Second)
	if err := m.finish(first); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := m.finish(start.Add(time.Hour)); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("Expected ErrAlreadyFinished, got %v", err)
	}

	// End time must not move.
	if end, _ := m.EndTime(); !end.Equal(first) {
		t.Errorf("Expected end time to stay %v, got %v", first, end)
	}
}

func TestMeasurementEndBeforeStartIsClamped(t *testing.T) {
	start := time.Now()
	m := startMeasurement("skewed", start)

	if err := m.finish(start.Add(-time.Second)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d, _ := m.Duration(); d != 0 {
		t.Errorf("Expected zero duration for skewed clock, got %v", d)
	}
}

func TestMeasurementConcurrentFinish(t *testing.T) {
	clock := clockz.NewFakeClock()
	m := startMeasurement("race", clock.Now())

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.finish(clock.Now()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("Expected exactly one successful finish, got %d", succeeded)
	}
}

func TestStopMeasurementRejectsForeignHandles(t *testing.T) {
	clock := clockz.NewFakeClock()

	if err := stopMeasurement(nil, clock); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Expected ErrInvalidHandle for nil, got %v", err)
	}
	if err := stopMeasurement(&Measurement{}, clock); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Expected ErrInvalidHandle for zero value, got %v", err)
	}

	m := startMeasurement("once", clock.Now())
	if err := stopMeasurement(m, clock); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err := stopMeasurement(m, clock)
	if !errors.Is(err, ErrInvalidHandle) || !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("Expected ErrInvalidHandle wrapping ErrAlreadyFinished, got %v", err)
	}
}
