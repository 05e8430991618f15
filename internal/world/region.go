package world

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Region is one square cell of the arena grid.
// Bodies are stored in a sync.Map; reads go through a lazily rebuilt snapshot.
type Region struct {
	rx, rz int32

	bodies sync.Map // map[uint32]Body, keyed by object ID

	surroundingRegions []*Region // 3×3 window (9 regions max)

	snapshotCache atomic.Value // []Body (immutable after rebuild)
	snapshotDirty atomic.Bool
	version       atomic.Uint64
}

// NewRegion creates a new region
func NewRegion(rx, rz int32) *Region {
	r := &Region{rx: rx, rz: rz}
	r.snapshotDirty.Store(true)
	return r
}

// RX returns region X index
func (r *Region) RX() int32 { return r.rx }

// RZ returns region Z index
func (r *Region) RZ() int32 { return r.rz }

// Version returns the region version, incremented on every Add/Remove.
func (r *Region) Version() uint64 { return r.version.Load() }

// AddBody adds a body to the region.
func (r *Region) AddBody(b Body) {
	r.bodies.Store(b.ObjectID(), b)
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// RemoveBody removes a body from the region.
func (r *Region) RemoveBody(objectID uint32) {
	if _, ok := r.bodies.LoadAndDelete(objectID); !ok {
		return
	}
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// ForEachBody iterates bodies in ascending object ID order.
// If fn returns false, iteration stops.
func (r *Region) ForEachBody(fn func(Body) bool) {
	for _, b := range r.Snapshot() {
		if !fn(b) {
			return
		}
	}
}

// SetSurroundingRegions sets the 3×3 window. Called once during world setup.
func (r *Region) SetSurroundingRegions(regions []*Region) {
	r.surroundingRegions = regions
}

// SurroundingRegions returns the 3×3 window including r itself.
// The returned slice must not be modified.
func (r *Region) SurroundingRegions() []*Region {
	return r.surroundingRegions
}

// Snapshot returns the region's bodies sorted by object ID.
// The returned slice must not be modified.
func (r *Region) Snapshot() []Body {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]Body)
		}
	}
	return r.rebuildSnapshot()
}

func (r *Region) rebuildSnapshot() []Body {
	bodies := make([]Body, 0, 16)
	r.bodies.Range(func(_, value any) bool {
		bodies = append(bodies, value.(Body))
		return true
	})
	slices.SortFunc(bodies, func(a, b Body) int { return cmp.Compare(a.ObjectID(), b.ObjectID()) })

	r.snapshotCache.Store(bodies)
	r.snapshotDirty.Store(false)
	return bodies
}
