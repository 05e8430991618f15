// Package target implements two-phase target acquisition: a selection action
// resolves one reference point (an entity or a position), then a search
// action gathers the affected set around it.
package target

import (
	"slices"

	"github.com/udisondev/skillcore/internal/model"
)

// Object is anything with a world position and a facing.
type Object interface {
	Position() model.Vec3
	Forward() model.Vec3
}

// Entity is a selectable participant.
type Entity interface {
	Object
	IsPlayer() bool
	IsDead() bool
	Categories() []string
	HasCategory(id string) bool
	// AimTarget returns the entity an AI requester is locked on, or nil.
	AimTarget() Entity
	Physics() Physics
	// Input returns the pointer source of a player requester, or nil.
	Input() Input
}

// Hit is the result of a pointer pick. Entity is nil when only the ground was hit.
type Hit struct {
	Entity Entity
	Point  model.Vec3
}

// Physics answers spatial queries.
type Physics interface {
	// Pick resolves what lies under a world point.
	Pick(point model.Vec3) (Hit, bool)
	// Overlap returns live and dead entities within radius of center.
	Overlap(center model.Vec3, radius float64) []Entity
}

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// ClickFunc receives a pointer click at a world point.
type ClickFunc func(button Button, point model.Vec3)

// Input delivers pointer clicks to subscribers.
type Input interface {
	// Subscribe registers fn and returns a function removing it.
	Subscribe(fn ClickFunc) (unsubscribe func())
	// Pointer returns the current aim point.
	Pointer() model.Vec3
}

// Message classifies a selection outcome.
type Message int

const (
	// Fail means no reference point was found.
	Fail Message = iota
	// OutOfRange means a reference point exists outside the selection range.
	OutOfRange
	FindTarget
	FindPosition
)

func (m Message) String() string {
	switch m {
	case Fail:
		return "fail"
	case OutOfRange:
		return "out_of_range"
	case FindTarget:
		return "find_target"
	case FindPosition:
		return "find_position"
	default:
		return "unknown"
	}
}

// SelectionResult is the outcome of phase one.
type SelectionResult struct {
	// Target is nil for position results.
	Target   Object
	Position model.Vec3
	Message  Message
}

// TargetResult builds a result pointing at obj.
func TargetResult(obj Object, msg Message) SelectionResult {
	return SelectionResult{Target: obj, Position: obj.Position(), Message: msg}
}

// PositionResult builds a result pointing at a bare position.
func PositionResult(pos model.Vec3, msg Message) SelectionResult {
	return SelectionResult{Position: pos, Message: msg}
}

// SearchResult is the outcome of phase two.
type SearchResult struct {
	Targets   []Object
	Positions []model.Vec3
}

func targetsResult(targets []Object) SearchResult {
	positions := make([]model.Vec3, len(targets))
	for i, t := range targets {
		positions[i] = t.Position()
	}
	return SearchResult{Targets: targets, Positions: positions}
}

// Entities returns the targets that are entities.
func (r SearchResult) Entities() []Entity {
	var out []Entity
	for _, t := range r.Targets {
		if e, ok := t.(Entity); ok {
			out = append(out, e)
		}
	}
	return out
}

// categoryAllowed reports whether e passes the same-category filter relative
// to requester.
func categoryAllowed(requester, e Entity, sameCategory bool) bool {
	shared := slices.ContainsFunc(requester.Categories(), e.HasCategory)
	return shared == sameCategory
}

// flatAngle is the angle between forward and the direction from origin to pos
// with pos lifted to origin's height.
func flatAngle(origin, forward, pos model.Vec3) (model.Vec3, float64) {
	rel := pos.WithY(origin.Y).Sub(origin)
	return rel, model.AngleDeg(rel, forward)
}
