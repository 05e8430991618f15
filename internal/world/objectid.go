package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for arena participants.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Player-controlled entities
//	0x20000000 - 0x2FFFFFFF: AI-controlled entities
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(0x10000000)
	gen.nextNpcID.Store(0x20000000)
	return gen
}

// NextPlayerID generates next unique player entity ID.
func (g *ObjectIDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextNpcID generates next unique AI entity ID.
func (g *ObjectIDGenerator) NextNpcID() uint32 {
	return g.nextNpcID.Add(1)
}
