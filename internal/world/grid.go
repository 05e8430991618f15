package world

import "math"

// Grid defaults. The arena is laid out on the XZ plane; Y is height and does
// not take part in region lookup.
const (
	// DefaultRegionSize is the edge of one square region in world units.
	DefaultRegionSize = 16.0

	// DefaultPickRadius is how close a pointer must land to an entity to pick it.
	DefaultPickRadius = 0.75
)

// Bounds is an axis-aligned rectangle on the XZ plane. Max is exclusive.
type Bounds struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// DefaultBounds is a 512×512 arena centered on the origin.
var DefaultBounds = Bounds{MinX: -256, MinZ: -256, MaxX: 256, MaxZ: 256}

// Contains reports whether (x, z) lies inside the bounds.
func (b Bounds) Contains(x, z float64) bool {
	return x >= b.MinX && x < b.MaxX && z >= b.MinZ && z < b.MaxZ
}

// grid converts world coordinates to region indices.
type grid struct {
	bounds     Bounds
	regionSize float64
	regionsX   int32
	regionsZ   int32
}

func newGrid(bounds Bounds, regionSize float64) grid {
	if regionSize <= 0 {
		regionSize = DefaultRegionSize
	}
	return grid{
		bounds:     bounds,
		regionSize: regionSize,
		regionsX:   int32(math.Ceil((bounds.MaxX - bounds.MinX) / regionSize)),
		regionsZ:   int32(math.Ceil((bounds.MaxZ - bounds.MinZ) / regionSize)),
	}
}

// coordToRegionIndex converts world coordinates to a region index.
// The index may be out of range; check with isValidRegionIndex.
func (g grid) coordToRegionIndex(x, z float64) (rx, rz int32) {
	rx = int32(math.Floor((x - g.bounds.MinX) / g.regionSize))
	rz = int32(math.Floor((z - g.bounds.MinZ) / g.regionSize))
	return rx, rz
}

// isValidRegionIndex checks if region index is within bounds.
func (g grid) isValidRegionIndex(rx, rz int32) bool {
	return rx >= 0 && rx < g.regionsX && rz >= 0 && rz < g.regionsZ
}

// clampIndex clamps a region index into the grid.
func (g grid) clampIndex(rx, rz int32) (int32, int32) {
	return min(max(rx, 0), g.regionsX-1), min(max(rz, 0), g.regionsZ-1)
}
