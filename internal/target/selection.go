package target

import (
	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// SelectCompletedFunc receives the result of an asynchronous selection.
type SelectCompletedFunc func(SelectionResult)

// SelectionAction resolves the reference point of a search.
type SelectionAction interface {
	Range() float64
	ScaledRange() float64
	ProperRange() float64
	Angle() float64
	Scale() float64
	SetScale(scale float64)

	// SelectImmediate selects synchronously. For a player requester pos is the
	// pointer point; for an AI requester it is the locked target's position.
	SelectImmediate(s *Searcher, requester Entity, obj Object, pos model.Vec3) SelectionResult
	// Select selects asynchronously and reports through done. done may run
	// before Select returns.
	Select(s *Searcher, requester Entity, obj Object, done SelectCompletedFunc)
	CancelSelect(s *Searcher)
	IsInRange(s *Searcher, requester Entity, obj Object, pos model.Vec3) bool

	Keywords() map[string]string
	Clone() SelectionAction
}

// scaling is the scale option shared by selection and search actions.
type scaling struct {
	useScale bool
	scale    float64
}

func newScaling(p params.Params) scaling {
	return scaling{useScale: p.Bool("use_scale", false), scale: 1}
}

func (c *scaling) Scale() float64         { return c.scale }
func (c *scaling) SetScale(scale float64) { c.scale = scale }
func (c *scaling) IsUseScale() bool       { return c.useScale }

func (c *scaling) proper(r float64) float64 {
	if c.useScale {
		return r * c.scale
	}
	return r
}

// SelectSelf selects the requesting object. It is always in range.
type SelectSelf struct {
	scaling
}

func NewSelectSelf(p params.Params) SelectionAction {
	return &SelectSelf{scaling: newScaling(p)}
}

func (a *SelectSelf) Range() float64       { return 0 }
func (a *SelectSelf) ScaledRange() float64 { return 0 }
func (a *SelectSelf) ProperRange() float64 { return 0 }
func (a *SelectSelf) Angle() float64       { return 0 }

func (a *SelectSelf) SelectImmediate(_ *Searcher, _ Entity, obj Object, _ model.Vec3) SelectionResult {
	return TargetResult(obj, FindTarget)
}

func (a *SelectSelf) Select(s *Searcher, requester Entity, obj Object, done SelectCompletedFunc) {
	done(a.SelectImmediate(s, requester, obj, model.Vec3{}))
}

func (a *SelectSelf) CancelSelect(*Searcher) {}

func (a *SelectSelf) IsInRange(*Searcher, Entity, Object, model.Vec3) bool { return true }

func (a *SelectSelf) Keywords() map[string]string { return nil }

func (a *SelectSelf) Clone() SelectionAction {
	c := *a
	return &c
}

// selectTarget holds the range and angle gate plus the pending pointer
// subscription shared by the click-driven selection actions.
// A range of 0 means unlimited.
type selectTarget struct {
	scaling
	rng   float64
	angle float64

	unsubscribe func()
}

// newSelectTarget reads range and angle. An omitted angle is a full circle;
// a 0 default would reject every target not dead ahead.
func newSelectTarget(p params.Params) selectTarget {
	return selectTarget{
		scaling: newScaling(p),
		rng:     max(0, p.Float("range", 0)),
		angle:   mathx.Clamp(p.Float("angle", 360), 0, 360),
	}
}

func (a *selectTarget) Range() float64       { return a.rng }
func (a *selectTarget) ScaledRange() float64 { return a.rng * a.scale }
func (a *selectTarget) ProperRange() float64 { return a.proper(a.rng) }
func (a *selectTarget) Angle() float64       { return a.angle }

// IsInRange tests the flattened squared distance against range² (times the
// scale when scaling is on) and the angle from obj's facing against half of
// the selection angle.
func (a *selectTarget) IsInRange(_ *Searcher, _ Entity, obj Object, pos model.Vec3) bool {
	if mathx.Approximately(0, a.rng) {
		return true
	}

	sqrRange := a.rng * a.rng
	if a.useScale {
		sqrRange *= a.scale
	}
	rel, angle := flatAngle(obj.Position(), obj.Forward(), pos)
	return rel.SqrMagnitude() <= sqrRange && angle <= a.angle/2
}

func (a *selectTarget) CancelSelect(*Searcher) {
	a.reset()
}

func (a *selectTarget) Keywords() map[string]string {
	return map[string]string{"range": textreplace.Number(a.rng)}
}

// selectAsync waits for a click when the requester is a player and resolves
// the AI path immediately otherwise.
func (a *selectTarget) selectAsync(
	requester Entity,
	done SelectCompletedFunc,
	byPlayer func(point model.Vec3) SelectionResult,
	byAI func(pos model.Vec3) SelectionResult,
) {
	if !requester.IsPlayer() {
		pos := requester.Position()
		if t := requester.AimTarget(); t != nil {
			pos = t.Position()
		}
		done(byAI(pos))
		return
	}

	input := requester.Input()
	if input == nil {
		done(PositionResult(requester.Position(), Fail))
		return
	}

	a.reset()
	a.unsubscribe = input.Subscribe(func(button Button, point model.Vec3) {
		a.reset()
		if button == ButtonLeft {
			done(byPlayer(point))
			return
		}
		done(PositionResult(model.Vec3{}, Fail))
	})
}

func (a *selectTarget) reset() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a selectTarget) clone() selectTarget {
	a.unsubscribe = nil
	return a
}

// SelectEntity selects an entity under the pointer, or the locked target of an
// AI requester.
type SelectEntity struct {
	selectTarget
	includeSelf  bool
	sameCategory bool
}

// NewSelectEntity creates a SelectEntity.
// Params: "range", "angle" (default 360), "use_scale", "include_self",
// "same_category".
func NewSelectEntity(p params.Params) SelectionAction {
	return &SelectEntity{
		selectTarget: newSelectTarget(p),
		includeSelf:  p.Bool("include_self", false),
		sameCategory: p.Bool("same_category", false),
	}
}

func (a *SelectEntity) SelectImmediate(s *Searcher, requester Entity, obj Object, pos model.Vec3) SelectionResult {
	if requester.IsPlayer() {
		return a.byPlayer(s, requester, obj, pos)
	}
	return a.byAI(s, requester, obj, pos)
}

func (a *SelectEntity) Select(s *Searcher, requester Entity, obj Object, done SelectCompletedFunc) {
	a.selectAsync(requester, done,
		func(p model.Vec3) SelectionResult { return a.byPlayer(s, requester, obj, p) },
		func(p model.Vec3) SelectionResult { return a.byAI(s, requester, obj, p) },
	)
}

func (a *SelectEntity) byPlayer(s *Searcher, requester Entity, obj Object, point model.Vec3) SelectionResult {
	physics := requester.Physics()
	if physics == nil {
		return PositionResult(obj.Position(), Fail)
	}
	hit, ok := physics.Pick(point)
	if !ok {
		return PositionResult(obj.Position(), Fail)
	}

	e := hit.Entity
	if e == nil || e.IsDead() || (e == requester && !a.includeSelf) {
		return PositionResult(hit.Point, Fail)
	}
	if e != requester && !categoryAllowed(requester, e, a.sameCategory) {
		return PositionResult(hit.Point, Fail)
	}

	if a.IsInRange(s, requester, obj, hit.Point) {
		return TargetResult(e, FindTarget)
	}
	return TargetResult(e, OutOfRange)
}

func (a *SelectEntity) byAI(s *Searcher, requester Entity, obj Object, pos model.Vec3) SelectionResult {
	t := requester.AimTarget()
	if t == nil {
		return PositionResult(pos, Fail)
	}
	if s.IsInRange(requester, obj, t.Position()) {
		return TargetResult(t, FindTarget)
	}
	return TargetResult(t, OutOfRange)
}

func (a *SelectEntity) Clone() SelectionAction {
	c := *a
	c.selectTarget = a.selectTarget.clone()
	return &c
}

// SelectPosition selects a ground point under the pointer, or the given point
// for an AI requester with a locked target.
type SelectPosition struct {
	selectTarget
}

// NewSelectPosition creates a SelectPosition.
// Params: "range", "angle" (default 360), "use_scale".
func NewSelectPosition(p params.Params) SelectionAction {
	return &SelectPosition{selectTarget: newSelectTarget(p)}
}

func (a *SelectPosition) SelectImmediate(s *Searcher, requester Entity, obj Object, pos model.Vec3) SelectionResult {
	if requester.IsPlayer() {
		return a.byPlayer(s, requester, obj, pos)
	}
	return a.byAI(s, requester, obj, pos)
}

func (a *SelectPosition) Select(s *Searcher, requester Entity, obj Object, done SelectCompletedFunc) {
	a.selectAsync(requester, done,
		func(p model.Vec3) SelectionResult { return a.byPlayer(s, requester, obj, p) },
		func(p model.Vec3) SelectionResult { return a.byAI(s, requester, obj, p) },
	)
}

func (a *SelectPosition) byPlayer(s *Searcher, requester Entity, obj Object, point model.Vec3) SelectionResult {
	physics := requester.Physics()
	if physics == nil {
		return PositionResult(obj.Position(), Fail)
	}
	hit, ok := physics.Pick(point)
	if !ok {
		return PositionResult(obj.Position(), Fail)
	}
	if a.IsInRange(s, requester, obj, hit.Point) {
		return PositionResult(hit.Point, FindPosition)
	}
	return PositionResult(hit.Point, OutOfRange)
}

func (a *SelectPosition) byAI(s *Searcher, requester Entity, obj Object, pos model.Vec3) SelectionResult {
	if requester.AimTarget() == nil {
		return PositionResult(pos, Fail)
	}
	if s.IsInRange(requester, obj, pos) {
		return PositionResult(pos, FindPosition)
	}
	return PositionResult(pos, OutOfRange)
}

func (a *SelectPosition) Clone() SelectionAction {
	c := *a
	c.selectTarget = a.selectTarget.clone()
	return &c
}

// SelectSelfByOneClick selects the requesting object once the player clicks.
type SelectSelfByOneClick struct {
	selectTarget
}

func NewSelectSelfByOneClick(p params.Params) SelectionAction {
	return &SelectSelfByOneClick{selectTarget: newSelectTarget(p)}
}

func (a *SelectSelfByOneClick) SelectImmediate(_ *Searcher, _ Entity, obj Object, _ model.Vec3) SelectionResult {
	return TargetResult(obj, FindTarget)
}

func (a *SelectSelfByOneClick) Select(_ *Searcher, requester Entity, obj Object, done SelectCompletedFunc) {
	self := func(model.Vec3) SelectionResult { return TargetResult(obj, FindTarget) }
	a.selectAsync(requester, done, self, self)
}

func (a *SelectSelfByOneClick) Clone() SelectionAction {
	c := *a
	c.selectTarget = a.selectTarget.clone()
	return &c
}
