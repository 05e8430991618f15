package world

import (
	"testing"

	"github.com/udisondev/skillcore/internal/model"
)

func newTestWorld() *World {
	return New(DefaultBounds, DefaultRegionSize)
}

func TestWorld_RegionCount(t *testing.T) {
	w := newTestWorld()
	if w.RegionCount() != 32*32 {
		t.Errorf("RegionCount() = %d, want %d", w.RegionCount(), 32*32)
	}
}

func TestWorld_GetRegion(t *testing.T) {
	w := newTestWorld()

	if w.GetRegion(model.NewVec3(0, 100, 0)) == nil {
		t.Error("GetRegion(origin) returned nil")
	}
	if w.GetRegion(model.NewVec3(1000, 0, 0)) != nil {
		t.Error("GetRegion(out of bounds) should return nil")
	}
	if w.GetRegionByIndex(-1, 0) != nil || w.GetRegionByIndex(32, 0) != nil {
		t.Error("GetRegionByIndex(out of range) should return nil")
	}
}

func TestWorld_AddRemoveObject(t *testing.T) {
	w := newTestWorld()
	b := newTestBody(9999, 17, -40)

	if err := w.AddObject(b); err != nil {
		t.Fatalf("AddObject() error = %v", err)
	}
	got, ok := w.GetObject(9999)
	if !ok || got.ObjectID() != 9999 {
		t.Fatalf("GetObject() = %v, %v", got, ok)
	}

	region := w.GetRegion(b.pos)
	if len(region.Snapshot()) != 1 {
		t.Errorf("object not found in region after AddObject()")
	}

	w.RemoveObject(9999)
	if _, ok := w.GetObject(9999); ok {
		t.Error("GetObject() after RemoveObject() returned true")
	}
	if len(region.Snapshot()) != 0 {
		t.Error("object still in region after RemoveObject()")
	}
	if w.ObjectCount() != 0 {
		t.Errorf("ObjectCount() = %d, want 0", w.ObjectCount())
	}
}

func TestWorld_AddObject_InvalidCoordinates(t *testing.T) {
	w := newTestWorld()
	if err := w.AddObject(newTestBody(1, 5000, 5000)); err == nil {
		t.Error("AddObject() with invalid coordinates should return error")
	}
}

func TestWorld_Refresh(t *testing.T) {
	w := newTestWorld()
	b := newTestBody(1, 0, 0)
	if err := w.AddObject(b); err != nil {
		t.Fatal(err)
	}
	oldRegion := w.GetRegion(b.pos)

	b.pos = model.NewVec3(1, 0, 1)
	if w.Refresh(1) {
		t.Errorf("Refresh() inside the same region = true")
	}

	b.pos = model.NewVec3(40, 0, 40)
	if moved := w.RefreshAll(); moved != 1 {
		t.Fatalf("RefreshAll() = %d, want 1", moved)
	}
	if len(oldRegion.Snapshot()) != 0 {
		t.Errorf("body left behind in old region")
	}
	if len(w.GetRegion(b.pos).Snapshot()) != 1 {
		t.Errorf("body missing from new region")
	}

	b.pos = model.NewVec3(9000, 0, 0)
	if w.Refresh(1) {
		t.Errorf("Refresh() out of bounds = true")
	}
}

func TestWorld_SurroundingRegions(t *testing.T) {
	w := newTestWorld()

	if got := len(w.GetRegionByIndex(16, 16).SurroundingRegions()); got != 9 {
		t.Errorf("center SurroundingRegions() length = %d, want 9", got)
	}
	if got := len(w.GetRegionByIndex(0, 0).SurroundingRegions()); got != 4 {
		t.Errorf("corner SurroundingRegions() length = %d, want 4", got)
	}
}

func TestWorld_Overlap(t *testing.T) {
	w := newTestWorld()
	bodies := []*testBody{
		newTestBody(4, 0, 3),
		newTestBody(2, 3, 0),
		newTestBody(3, 0, 3.1),
		newTestBody(1, -20, 0), // other region, inside radius 25
		newTestBody(5, 100, 100),
	}
	bodies[2].dead = true
	for _, b := range bodies {
		if err := w.AddObject(b); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		center model.Vec3
		radius float64
		want   []uint32
	}{
		{"radius 3", model.Vec3{}, 3, []uint32{2, 4}},
		{"includes dead", model.Vec3{}, 3.5, []uint32{2, 3, 4}},
		{"spans regions", model.Vec3{}, 25, []uint32{1, 2, 3, 4}},
		{"empty", model.NewVec3(-200, 0, -200), 5, nil},
		{"zero radius on body", model.NewVec3(3, 0, 0), 0, []uint32{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.Overlap(tt.center, tt.radius)
			if len(got) != len(tt.want) {
				t.Fatalf("Overlap() = %d bodies, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if id := e.(Body).ObjectID(); id != tt.want[i] {
					t.Errorf("Overlap()[%d] = %d, want %d", i, id, tt.want[i])
				}
			}
		})
	}
}

func TestWorld_Pick(t *testing.T) {
	w := newTestWorld()
	near := newTestBody(1, 0, 2)
	other := newTestBody(2, 15.9, 0) // neighbouring region
	for _, b := range []*testBody{near, other} {
		if err := w.AddObject(b); err != nil {
			t.Fatal(err)
		}
	}

	hit, ok := w.Pick(model.NewVec3(0.3, 5, 2.2))
	if !ok || hit.Entity == nil || hit.Entity.(Body).ObjectID() != 1 {
		t.Fatalf("Pick() near body = %+v, %v", hit, ok)
	}

	hit, ok = w.Pick(model.NewVec3(16.2, 0, 0))
	if !ok || hit.Entity == nil || hit.Entity.(Body).ObjectID() != 2 {
		t.Errorf("Pick() across region edge = %+v, %v", hit, ok)
	}

	hit, ok = w.Pick(model.NewVec3(8, 0, 8))
	if !ok || hit.Entity != nil || hit.Point != model.NewVec3(8, 0, 8) {
		t.Errorf("Pick() on ground = %+v, %v", hit, ok)
	}

	if _, ok := w.Pick(model.NewVec3(900, 0, 0)); ok {
		t.Errorf("Pick() out of bounds = true")
	}
}

func BenchmarkWorld_Overlap(b *testing.B) {
	w := newTestWorld()
	for i := range 500 {
		_ = w.AddObject(newTestBody(uint32(i+1), float64(i%50)-25, float64(i/50)-5))
	}

	b.ResetTimer()
	for range b.N {
		w.Overlap(model.Vec3{}, 10)
	}
}
