package txtimez

import (
	"sync"

	"github.com/google/uuid"
)

// IDPool hands out pre-generated execution context ids.
// A background goroutine keeps the pool topped up; Get falls back to
// generating directly when the pool runs dry.
type IDPool struct {
	factory func() ContextID
	ids     chan ContextID
	stopCh  chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewIDPool creates a pool with the given capacity.
// A nil factory produces random UUIDs.
func NewIDPool(capacity int, factory func() ContextID) *IDPool {
	if capacity <= 0 {
		capacity = 1
	}
	if factory == nil {
		factory = newContextID
	}

	pool := &IDPool{
		ids:     make(chan ContextID, capacity),
		factory: factory,
		stopCh:  make(chan struct{}),
	}
	go pool.refill()
	return pool
}

func newContextID() ContextID {
	return uuid.NewString()
}

// Get retrieves an id from the pool or generates one if the pool is empty.
func (p *IDPool) Get() ContextID {
	select {
	case id := <-p.ids:
		return id
	default:
		return p.factory()
	}
}

func (p *IDPool) refill() {
	for {
		select {
		case <-p.stopCh:
			return
		case p.ids <- p.factory():
		}
	}
}

// Close stops the refill goroutine. Get keeps working afterwards.
func (p *IDPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.stopCh)
		p.closed = true
	}
}
