package hand

import (
	"image"
	"sync"
)

const (
	// TrailCapacity is the number of centers kept per slot.
	TrailCapacity = 30
	// TrailSlots is the number of hand slots that keep a trail.
	TrailSlots = 2
)

// Trails keeps the recent centers of each hand slot for drawing.
type Trails struct {
	mu    sync.Mutex
	slots [TrailSlots][]image.Point
}

// NewTrails creates empty trails.
func NewTrails() *Trails {
	return &Trails{}
}

// Push appends a center to a slot, dropping the oldest point once the slot
// is full. Slots other than 0 and 1 are ignored.
func (t *Trails) Push(slot int, p image.Point) {
	if slot < 0 || slot >= TrailSlots {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	trail := append(t.slots[slot], p)
	if len(trail) > TrailCapacity {
		trail = trail[len(trail)-TrailCapacity:]
	}
	t.slots[slot] = trail
}

// Points returns a copy of a slot's trail, oldest first.
func (t *Trails) Points(slot int) []image.Point {
	if slot < 0 || slot >= TrailSlots {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]image.Point, len(t.slots[slot]))
	copy(out, t.slots[slot])
	return out
}

// Reset empties every slot.
func (t *Trails) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		t.slots[i] = nil
	}
}
