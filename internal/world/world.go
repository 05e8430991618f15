// Package world is the arena's spatial index. It buckets bodies into a grid of
// square regions and answers the pick and overlap queries used by targeting.
package world

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/target"
)

// Body is an entity indexed by the world.
type Body interface {
	target.Entity
	ObjectID() uint32
}

// World is a 2D region grid over the XZ plane.
// Positions are indexed on AddObject and on Refresh; a body that moved is found
// in its old region until refreshed.
type World struct {
	grid       grid
	pickRadius float64

	regions [][]*Region // [regionsX][regionsZ]
	objects sync.Map    // map[uint32]Body, keyed by object ID
	located sync.Map    // map[uint32]*Region: object ID to the region holding it
}

// Option configures a World.
type Option func(*World)

// WithPickRadius sets how close a pointer must land to an entity to pick it.
func WithPickRadius(r float64) Option {
	return func(w *World) { w.pickRadius = r }
}

// New creates a world covering bounds, split into regions of regionSize units.
func New(bounds Bounds, regionSize float64, opts ...Option) *World {
	w := &World{
		grid:       newGrid(bounds, regionSize),
		pickRadius: DefaultPickRadius,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.initialize()
	return w
}

// initialize creates the region grid and links each region to its 3×3 window.
func (w *World) initialize() {
	w.regions = make([][]*Region, w.grid.regionsX)
	for rx := range w.grid.regionsX {
		w.regions[rx] = make([]*Region, w.grid.regionsZ)
		for rz := range w.grid.regionsZ {
			w.regions[rx][rz] = NewRegion(rx, rz)
		}
	}

	for rx := range w.grid.regionsX {
		for rz := range w.grid.regionsZ {
			w.regions[rx][rz].SetSurroundingRegions(w.surroundingRegions(rx, rz))
		}
	}
}

func (w *World) surroundingRegions(rx, rz int32) []*Region {
	surrounding := make([]*Region, 0, 9)
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			nx, nz := rx+dx, rz+dz
			if w.grid.isValidRegionIndex(nx, nz) {
				surrounding = append(surrounding, w.regions[nx][nz])
			}
		}
	}
	return surrounding
}

// Bounds returns the covered area.
func (w *World) Bounds() Bounds { return w.grid.bounds }

// GetRegion returns the region containing pos, or nil outside the bounds.
func (w *World) GetRegion(pos model.Vec3) *Region {
	rx, rz := w.grid.coordToRegionIndex(pos.X, pos.Z)
	return w.GetRegionByIndex(rx, rz)
}

// GetRegionByIndex returns the region at (rx, rz), or nil if out of range.
func (w *World) GetRegionByIndex(rx, rz int32) *Region {
	if !w.grid.isValidRegionIndex(rx, rz) {
		return nil
	}
	return w.regions[rx][rz]
}

// AddObject indexes b at its current position.
// Returns error if the position lies outside the bounds.
func (w *World) AddObject(b Body) error {
	pos := b.Position()
	region := w.GetRegion(pos)
	if region == nil {
		return fmt.Errorf("invalid coordinates for object %d: (%.2f, %.2f)", b.ObjectID(), pos.X, pos.Z)
	}

	w.objects.Store(b.ObjectID(), b)
	w.located.Store(b.ObjectID(), region)
	region.AddBody(b)
	return nil
}

// RemoveObject removes a body from the world and its region.
func (w *World) RemoveObject(objectID uint32) {
	if _, ok := w.objects.LoadAndDelete(objectID); !ok {
		return
	}
	if value, ok := w.located.LoadAndDelete(objectID); ok {
		value.(*Region).RemoveBody(objectID)
	}
}

// GetObject returns a body by ID.
func (w *World) GetObject(objectID uint32) (Body, bool) {
	value, ok := w.objects.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(Body), true
}

// Refresh moves a body to the region matching its current position. A body
// that left the bounds stays in its last region.
// Returns true if the body changed region.
func (w *World) Refresh(objectID uint32) bool {
	value, ok := w.objects.Load(objectID)
	if !ok {
		return false
	}
	b := value.(Body)

	next := w.GetRegion(b.Position())
	if next == nil {
		return false
	}
	prevValue, _ := w.located.Load(objectID)
	prev, _ := prevValue.(*Region)
	if prev == next {
		return false
	}

	if prev != nil {
		prev.RemoveBody(objectID)
	}
	next.AddBody(b)
	w.located.Store(objectID, next)
	return true
}

// RefreshAll refreshes every body and returns how many changed region.
func (w *World) RefreshAll() int {
	moved := 0
	w.objects.Range(func(key, _ any) bool {
		if w.Refresh(key.(uint32)) {
			moved++
		}
		return true
	})
	return moved
}

// RegionCount returns total number of regions
func (w *World) RegionCount() int {
	return int(w.grid.regionsX * w.grid.regionsZ)
}

// ObjectCount returns total number of bodies (O(N)).
func (w *World) ObjectCount() int {
	count := 0
	w.objects.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Overlap returns bodies whose position lies within radius of center,
// ordered by object ID. Dead bodies are included.
func (w *World) Overlap(center model.Vec3, radius float64) []target.Entity {
	sqr := radius * radius

	minX, minZ := w.grid.coordToRegionIndex(center.X-radius, center.Z-radius)
	maxX, maxZ := w.grid.coordToRegionIndex(center.X+radius, center.Z+radius)
	minX, minZ = w.grid.clampIndex(minX, minZ)
	maxX, maxZ = w.grid.clampIndex(maxX, maxZ)

	var found []Body
	for rx := minX; rx <= maxX; rx++ {
		for rz := minZ; rz <= maxZ; rz++ {
			w.regions[rx][rz].ForEachBody(func(b Body) bool {
				if b.Position().DistanceSquared(center) <= sqr {
					found = append(found, b)
				}
				return true
			})
		}
	}
	slices.SortFunc(found, func(a, b Body) int { return cmp.Compare(a.ObjectID(), b.ObjectID()) })

	out := make([]target.Entity, len(found))
	for i, b := range found {
		out[i] = b
	}
	return out
}

// Pick returns the body nearest to point on the XZ plane within the pick
// radius, searching the 3×3 window around point. Without a body the ground
// at point is hit. Points outside the bounds hit nothing.
func (w *World) Pick(point model.Vec3) (target.Hit, bool) {
	region := w.GetRegion(point)
	if region == nil {
		return target.Hit{}, false
	}

	var (
		best    Body
		bestSqr = w.pickRadius * w.pickRadius
	)
	for _, r := range region.SurroundingRegions() {
		r.ForEachBody(func(b Body) bool {
			sqr := b.Position().WithY(point.Y).DistanceSquared(point)
			if sqr <= bestSqr {
				best, bestSqr = b, sqr
			}
			return true
		})
	}

	if best == nil {
		return target.Hit{Point: point}, true
	}
	return target.Hit{Entity: best, Point: best.Position()}, true
}
