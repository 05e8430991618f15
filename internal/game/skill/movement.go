package skill

import (
	"math"

	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
)

// MoveSpeedStat is the stat code read by Mover for its speed.
const MoveSpeedStat = "moveSpeed"

// Movement moves an entity.
type Movement interface {
	// Roll dashes distance along the entity's facing.
	Roll(distance float64)
	IsRolling() bool
	// Stop cancels the current destination.
	Stop()
	// LookAt turns the entity toward pos on the horizontal plane.
	LookAt(pos model.Vec3)
	Update(dt float64)
}

// Mover is a kinematic Movement: it walks straight to a destination and
// rolls with in-out sine easing.
type Mover struct {
	owner    *Entity
	speed    float64
	rollTime float64

	destination model.Vec3
	moving      bool

	rolling      bool
	rollDistance float64
	rollElapsed  float64
	rollTraveled float64
}

// DefaultRollTime is the duration of a roll in seconds.
const DefaultRollTime = 0.5

// NewMover creates a Mover for owner. speed is used when the owner has no
// MoveSpeedStat.
func NewMover(owner *Entity, speed float64) *Mover {
	return &Mover{owner: owner, speed: speed, rollTime: DefaultRollTime}
}

// Speed returns the walking speed in units per second.
func (m *Mover) Speed() float64 {
	if stats := m.owner.Stats(); stats != nil {
		if st, ok := stats.TryGet(MoveSpeedStat); ok {
			return st.Value()
		}
	}
	return m.speed
}

func (m *Mover) IsMoving() bool          { return m.moving }
func (m *Mover) IsRolling() bool         { return m.rolling }
func (m *Mover) Destination() model.Vec3 { return m.destination }

// SetDestination starts walking to pos.
func (m *Mover) SetDestination(pos model.Vec3) {
	m.destination = pos
	m.moving = true
	m.LookAt(pos)
}

func (m *Mover) Stop() { m.moving = false }

func (m *Mover) LookAt(pos model.Vec3) {
	m.owner.setLocation(m.owner.Location().LookAt(pos))
}

func (m *Mover) Roll(distance float64) {
	m.Stop()
	m.rolling = true
	m.rollDistance = distance
	m.rollElapsed = 0
	m.rollTraveled = 0
}

func (m *Mover) Update(dt float64) {
	if m.rolling {
		m.updateRoll(dt)
		return
	}
	if !m.moving {
		return
	}

	pos := m.owner.Position()
	to := m.destination.WithY(pos.Y).Sub(pos)
	dist := to.Magnitude()
	step := m.Speed() * dt
	if step >= dist {
		m.owner.SetPosition(m.destination.WithY(pos.Y))
		m.moving = false
		return
	}
	m.owner.SetPosition(pos.Add(to.Scale(step / dist)))
}

func (m *Mover) updateRoll(dt float64) {
	m.rollElapsed += dt
	t := mathx.Clamp01(m.rollElapsed / m.rollTime)
	eased := -(math.Cos(math.Pi*t) - 1) / 2
	traveled := mathx.Lerp(0, m.rollDistance, eased)

	loc := m.owner.Location()
	m.owner.SetPosition(loc.Position.Add(loc.Heading.Scale(traveled - m.rollTraveled)))
	m.rollTraveled = traveled

	if m.rollElapsed >= m.rollTime {
		m.rolling = false
	}
}
