package txtimez

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Registry resolves which collectors a transaction is recorded into.
// It owns one global Collector and one Collector per execution context.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order optimized for functionality over memory
type Registry struct {
	contexts      map[ContextID]*Collector
	global        *Collector
	hooks         *hooks
	clock         clockz.Clock
	logger        *zap.Logger
	cfg           config
	contextsLock  sync.RWMutex
	globalEnabled atomic.Bool
}

// New creates a registry. Global collection starts disabled unless
// WithGlobalCollection says otherwise.
func New(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := newHooks(cfg.logger)
	h.setPanicHook(cfg.panicHook)

	r := &Registry{
		contexts: make(map[ContextID]*Collector),
		hooks:    h,
		clock:    cfg.clock,
		logger:   cfg.logger,
		cfg:      cfg,
	}
	r.global = newCollector(cfg.shards, cfg.clock, h)
	r.globalEnabled.Store(cfg.globalCollection)
	return r
}

// Current returns the collector bound to the execution context of ctx.
// It is created, active, on first use.
func (r *Registry) Current(ctx context.Context) *Collector {
	id := ContextIDFrom(ctx)

	r.contextsLock.RLock()
	c, ok := r.contexts[id]
	r.contextsLock.RUnlock()
	if ok {
		return c
	}

	r.contextsLock.Lock()
	defer r.contextsLock.Unlock()

	if c, ok = r.contexts[id]; ok {
		return c
	}
	c = newCollector(r.cfg.shards, r.clock, r.hooks)
	r.contexts[id] = c
	return c
}

// Global returns the collector shared by the whole registry.
func (r *Registry) Global() *Collector {
	return r.global
}

// EnableGlobalCollection sets whether StopTx also records into the global collector.
// It does not start or stop any collector.
func (r *Registry) EnableGlobalCollection(enabled bool) {
	r.globalEnabled.Store(enabled)
	r.logger.Debug("global collection toggled", zap.Bool("enabled", enabled))
}

// GlobalCollectionEnabled reports the current propagation policy.
func (r *Registry) GlobalCollectionEnabled() bool {
	return r.globalEnabled.Load()
}

// StartTx starts a measurement named name and notifies start listeners.
// The returned handle is not stored anywhere until StopTx.
func (r *Registry) StartTx(_ context.Context, name Key) *Measurement {
	m := startMeasurement(name, r.clock.Now())
	r.hooks.dispatch(PhaseStart, m)
	return m
}

// StopTx finishes m, notifies end listeners and records it into the
// current collector of ctx, plus the global collector when enabled.
// Returns ErrInvalidHandle for foreign or already stopped handles
// without touching any collector.
func (r *Registry) StopTx(ctx context.Context, m *Measurement) error {
	if err := stopMeasurement(m, r.clock); err != nil {
		r.logger.Warn("rejected measurement handle",
			zap.String("context", ContextIDFrom(ctx)),
			zap.Error(err),
		)
		return err
	}

	r.hooks.dispatch(PhaseEnd, m)

	r.Current(ctx).Record(m)
	if r.globalEnabled.Load() {
		r.global.Record(m)
	}
	return nil
}

// OnMeasureStart registers a listener called when a measurement starts.
// Returns an id usable with RemoveHandler.
func (r *Registry) OnMeasureStart(handler MeasureHandler) uint64 {
	return r.hooks.register(PhaseStart, handler)
}

// OnMeasureEnd registers a listener called when a measurement finishes.
// Returns an id usable with RemoveHandler.
func (r *Registry) OnMeasureEnd(handler MeasureHandler) uint64 {
	return r.hooks.register(PhaseEnd, handler)
}

// RemoveHandler removes a listener by id.
func (r *Registry) RemoveHandler(id uint64) {
	r.hooks.remove(id)
}

// ResetResponseTimeHandlers removes every registered listener.
func (r *Registry) ResetResponseTimeHandlers() {
	r.hooks.reset()
}

// SetPanicHook sets a function to be called when a listener panics.
func (r *Registry) SetPanicHook(hook func(handlerID uint64, recovered interface{})) {
	r.hooks.setPanicHook(hook)
}

// Clear empties the current collector of ctx and the global collector.
func (r *Registry) Clear(ctx context.Context) {
	r.Current(ctx).Clear()
	r.global.Clear()
}

// Release forgets the collector of the execution context of ctx.
// Its measurements are discarded; the next Current call creates a fresh one.
func (r *Registry) Release(ctx context.Context) {
	id := ContextIDFrom(ctx)

	r.contextsLock.Lock()
	defer r.contextsLock.Unlock()
	delete(r.contexts, id)
}

// Contexts returns the number of execution contexts with a collector.
func (r *Registry) Contexts() int {
	r.contextsLock.RLock()
	defer r.contextsLock.RUnlock()
	return len(r.contexts)
}

// Reset restores the state New produced: listeners removed, context
// collectors dropped, global collector emptied and active, propagation
// policy back to its configured value.
func (r *Registry) Reset() {
	r.hooks.reset()

	r.contextsLock.Lock()
	r.contexts = make(map[ContextID]*Collector)
	r.contextsLock.Unlock()

	r.global.Clear()
	r.global.StartCollecting()
	r.globalEnabled.Store(r.cfg.globalCollection)

	r.logger.Debug("registry reset")
}

var (
	defaultRegistry *Registry
	defaultLock     sync.Mutex
)

// Init builds the process-wide registry. It must be called exactly once,
// typically at process start; later calls return ErrAlreadyInitialized.
func Init(opts ...Option) (*Registry, error) {
	defaultLock.Lock()
	defer defaultLock.Unlock()

	if defaultRegistry != nil {
		return defaultRegistry, ErrAlreadyInitialized
	}
	defaultRegistry = New(opts...)
	return defaultRegistry, nil
}

// Default returns the process-wide registry built by Init.
func Default() (*Registry, error) {
	defaultLock.Lock()
	defer defaultLock.Unlock()

	if defaultRegistry == nil {
		return nil, ErrNotInitialized
	}
	return defaultRegistry, nil
}

// MustDefault is like Default but panics when Init has not been called.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}
