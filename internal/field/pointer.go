package field

import "sync"

// PointerState is the normalized interaction point in canvas-pixel space,
// regardless of source (mouse, touch, or motion estimate). Open means the
// field is pushed away from the pointer; closed pulls it in.
type PointerState struct {
	X, Y float64
	Open bool
}

// PointerSlot is a single shared last-writer-wins cell. Exactly one source
// writes at a time (input adapter xor motion estimator); the simulation loop
// reads the latest snapshot once per tick.
type PointerSlot struct {
	mu  sync.Mutex
	ptr PointerState
	set bool
}

// Set publishes a new pointer snapshot, or clears the slot when p is nil.
func (s *PointerSlot) Set(p *PointerState) {
	s.mu.Lock()
	if p == nil {
		s.set = false
	} else {
		s.ptr = *p
		s.set = true
	}
	s.mu.Unlock()
}

// Get returns the current snapshot, if any.
func (s *PointerSlot) Get() (PointerState, bool) {
	s.mu.Lock()
	p, ok := s.ptr, s.set
	s.mu.Unlock()
	return p, ok
}

// Clear drops any published state. Called when the active source switches so
// the field never reacts to a ghost position from the previous source.
func (s *PointerSlot) Clear() { s.Set(nil) }
