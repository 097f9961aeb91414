package snapshot

import "sync"

// Holder retains the result of the most recently *started* refresh.
// Refreshes triggered in quick succession may complete out of order; a
// stale computation completing after a newer one must not overwrite it,
// or the display would flicker backwards in time.
type Holder[T any] struct {
	mu      sync.Mutex
	nextSeq uint64
	applied uint64
	value   T
	set     bool
}

// Begin reserves a sequence token for a refresh that is about to start.
func (h *Holder[T]) Begin() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSeq++
	return h.nextSeq
}

// Complete stores the value computed by the refresh identified by token.
// It reports whether the value was retained; a false return means a
// refresh started later has already completed and this result is stale.
func (h *Holder[T]) Complete(token uint64, v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if token < h.applied {
		return false
	}
	h.applied = token
	h.value = v
	h.set = true
	return true
}

// Latest returns the retained value, if any refresh has completed.
func (h *Holder[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.set
}
