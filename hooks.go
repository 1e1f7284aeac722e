package txtimez

import (
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MeasureHandler is called when a measurement starts or ends.
type MeasureHandler func(m *Measurement)

type handlerEntry struct {
	handler MeasureHandler
	id      uint64
}

// hooks holds the start and end listeners of a registry.
// Listeners run synchronously, in registration order, on a copy of the list.
//
//nolint:govet // Field order optimized for functionality over memory
type hooks struct {
	start     []handlerEntry
	end       []handlerEntry
	panicHook func(handlerID uint64, r interface{})
	logger    *zap.Logger
	lock      sync.RWMutex
	nextID    atomic.Uint64
}

func newHooks(logger *zap.Logger) *hooks {
	return &hooks{
		start:  make([]handlerEntry, 0),
		end:    make([]handlerEntry, 0),
		logger: logger,
	}
}

func (h *hooks) register(phase Phase, handler MeasureHandler) uint64 {
	if handler == nil {
		return 0
	}

	id := h.nextID.Add(1)
	entry := handlerEntry{id: id, handler: handler}

	h.lock.Lock()
	defer h.lock.Unlock()

	if phase == PhaseStart {
		h.start = append(h.start, entry)
	} else {
		h.end = append(h.end, entry)
	}
	return id
}

// remove drops the handler with the given id from both phases.
func (h *hooks) remove(id uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.start = removeEntry(h.start, id)
	h.end = removeEntry(h.end, id)
}

func removeEntry(entries []handlerEntry, id uint64) []handlerEntry {
	// Preserve order
	for i, e := range entries {
		if e.id == id {
			copy(entries[i:], entries[i+1:])
			return entries[:len(entries)-1]
		}
	}
	return entries
}

func (h *hooks) reset() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.start = make([]handlerEntry, 0)
	h.end = make([]handlerEntry, 0)
}

func (h *hooks) setPanicHook(hook func(handlerID uint64, r interface{})) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.panicHook = hook
}

func (h *hooks) count() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.start) + len(h.end)
}

// dispatch runs every listener of phase against m.
// Panics are recovered per listener; the remaining listeners still run.
func (h *hooks) dispatch(phase Phase, m *Measurement) {
	h.lock.RLock()
	src := h.start
	if phase == PhaseEnd {
		src = h.end
	}
	if len(src) == 0 {
		h.lock.RUnlock()
		return
	}

	handlers := make([]handlerEntry, len(src))
	copy(handlers, src)
	panicHook := h.panicHook
	h.lock.RUnlock()

	var errs error
	for _, entry := range handlers {
		if le := safeCall(entry, phase, m); le != nil {
			reportPanic(panicHook, le)
			errs = multierr.Append(errs, le)
		}
	}

	if errs != nil {
		h.logger.Error("measurement listener failed",
			zap.String("transaction", m.Name()),
			zap.String("phase", string(phase)),
			zap.Int("failures", len(multierr.Errors(errs))),
			zap.Error(errs),
		)
	}
}

func safeCall(entry handlerEntry, phase Phase, m *Measurement) (le *ListenerError) {
	defer func() {
		if r := recover(); r != nil {
			le = &ListenerError{
				HandlerID: entry.id,
				Phase:     phase,
				Name:      m.Name(),
				Value:     r,
			}
		}
	}()
	entry.handler(m)
	return nil
}

func reportPanic(hook func(handlerID uint64, r interface{}), le *ListenerError) {
	if hook == nil {
		return
	}
	defer func() {
		_ = recover() // A failing hook must not stop dispatch.
	}()
	hook(le.HandlerID, le.Value)
}
