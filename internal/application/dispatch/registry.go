package dispatch

import "sync"

// registry tracks the running dispatch task per order so at most one auction
// runs for any order at a time.
type registry struct {
	mu      sync.Mutex
	running map[int64]struct{}
}

func newRegistry() *registry {
	return &registry{running: make(map[int64]struct{})}
}

// acquire claims the order slot; false means a task already holds it.
func (r *registry) acquire(orderID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[orderID]; ok {
		return false
	}
	r.running[orderID] = struct{}{}
	return true
}

// release frees the order slot when its task finishes.
func (r *registry) release(orderID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, orderID)
}

// isRunning reports whether a task currently holds the order slot.
func (r *registry) isRunning(orderID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[orderID]
	return ok
}
