package world

import (
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/target"
)

type testBody struct {
	id   uint32
	pos  model.Vec3
	dead bool
}

func newTestBody(id uint32, x, z float64) *testBody {
	return &testBody{id: id, pos: model.NewVec3(x, 0, z)}
}

func (b *testBody) ObjectID() uint32         { return b.id }
func (b *testBody) Position() model.Vec3     { return b.pos }
func (b *testBody) Forward() model.Vec3      { return model.Forward }
func (b *testBody) IsPlayer() bool           { return false }
func (b *testBody) IsDead() bool             { return b.dead }
func (b *testBody) Categories() []string     { return nil }
func (b *testBody) HasCategory(string) bool  { return false }
func (b *testBody) AimTarget() target.Entity { return nil }
func (b *testBody) Physics() target.Physics  { return nil }
func (b *testBody) Input() target.Input      { return nil }
