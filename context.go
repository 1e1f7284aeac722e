package txtimez

import (
	"context"
	"sync"
)

// contextKeyType is a private type for context keys to avoid collisions.
type contextKeyType string

const (
	contextKey contextKeyType = "txtimez"

	contextIDPoolSize = 128
)

var (
	sharedIDs     *IDPool
	sharedIDsOnce sync.Once
)

func contextIDs() *IDPool {
	sharedIDsOnce.Do(func() {
		sharedIDs = NewIDPool(contextIDPoolSize, nil)
	})
	return sharedIDs
}

// WithExecutionContext returns a context bound to a new execution context.
// Every registry call made with it, or with a context derived from it,
// resolves to the same current Collector.
func WithExecutionContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, contextKey, contextIDs().Get())
}

// ContextIDFrom returns the execution context id carried by ctx,
// or RootContext when there is none.
func ContextIDFrom(ctx context.Context) ContextID {
	if ctx == nil {
		return RootContext
	}
	if id, ok := ctx.Value(contextKey).(ContextID); ok && id != "" {
		return id
	}
	return RootContext
}
