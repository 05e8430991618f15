package skill

import (
	"math"
	"testing"

	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/params"
)

func TestMover_WalksToDestination(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	m := NewMover(e, 2)
	e.SetMovement(m)

	dest := model.NewVec3(4, 0, 0)
	m.SetDestination(dest)
	if got := e.Forward(); math.Abs(got.X-1) > 1e-9 {
		t.Errorf("heading = %v, want facing +X", got)
	}

	e.Update(1)
	if got, want := e.Position(), model.NewVec3(2, 0, 0); got.DistanceSquared(want) > 1e-12 {
		t.Errorf("position = %v, want %v", got, want)
	}
	if !m.IsMoving() {
		t.Errorf("mover stopped halfway")
	}

	e.Update(1)
	if e.Position() != dest || m.IsMoving() {
		t.Errorf("position = %v moving %v, want %v stopped", e.Position(), m.IsMoving(), dest)
	}
}

func TestMover_SpeedStat(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, map[string]float64{MoveSpeedStat: 3})
	m := NewMover(e, 1)
	if m.Speed() != 3 {
		t.Errorf("Speed = %v, want the stat value 3", m.Speed())
	}
}

func TestMover_RollLocksEntity(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, nil)
	m := NewMover(e, 2)
	e.SetMovement(m)

	m.Roll(5)
	e.Update(0.25)
	if !e.IsInState(EntityStateRolling) || e.IsControllable() {
		t.Fatalf("entity state = %s, want rolling and locked", e.Machine().CurrentStateID(0))
	}
	if z := e.Position().Z; math.Abs(z-2.5) > 1e-9 {
		t.Errorf("halfway Z = %v, want 2.5", z)
	}

	e.Update(0.25)
	if z := e.Position().Z; math.Abs(z-5) > 1e-9 {
		t.Errorf("Z = %v, want 5", z)
	}
	if m.IsRolling() || !e.IsInState(EntityStateDefault) || !e.IsControllable() {
		t.Errorf("roll should be over, state %s", e.Machine().CurrentStateID(0))
	}
}

func TestMover_DeadEntityDoesNotMove(t *testing.T) {
	e := newTestEntity("hero", ControlPlayer, map[string]float64{"hp": 1})
	m := NewMover(e, 2)
	e.SetMovement(m)
	m.SetDestination(model.NewVec3(0, 0, 10))

	e.TakeDamage(nil, nil, 1)
	e.Update(1)
	if e.Position() != (model.Vec3{}) {
		t.Errorf("dead entity moved to %v", e.Position())
	}
}

func TestRollingAction_PrecedesApply(t *testing.T) {
	roll, err := NewRollingAction(params.Params{"distance": "4"})
	if err != nil {
		t.Fatal(err)
	}
	action := &countAction{}
	def := testDefinition(1, "dash strike", action)
	def.Datas[0].PrecedingAction = roll

	e := newTestEntity("hero", ControlPlayer, nil)
	e.SetMovement(NewMover(e, 2))
	s := e.Skills().RegisterWithoutCost(New(def), 0)

	s.Use()
	e.Update(0.25)
	if !s.IsInState(StateInPrecedingAction) {
		t.Fatalf("state = %s, want in_preceding_action", s.CurrentStateID(0))
	}

	tickUntil(t, e, 0.25, 8, func() bool { return action.applies == 1 })
	if z := e.Position().Z; math.Abs(z-4) > 1e-9 {
		t.Errorf("Z = %v, want 4", z)
	}
}

func TestRollingAction_NoMovementEndsAtOnce(t *testing.T) {
	roll, err := NewRollingAction(nil)
	if err != nil {
		t.Fatal(err)
	}
	action := &countAction{}
	def := testDefinition(1, "dash strike", action)
	def.Datas[0].PrecedingAction = roll

	e := newTestEntity("hero", ControlPlayer, nil)
	s := e.Skills().RegisterWithoutCost(New(def), 0)
	s.Use()

	tickUntil(t, e, 0.25, 4, func() bool { return action.applies == 1 })
	if e.Position() != (model.Vec3{}) {
		t.Errorf("entity without movement moved to %v", e.Position())
	}
}

func TestClipAnimator(t *testing.T) {
	a := NewClipAnimator(map[string]Clip{
		"attack": {Length: 1, ApplyAt: 0.4},
		"wave":   {Length: 0.5},
	})
	var events []string
	a.OnApplyEvent(func(param string) { events = append(events, param) })

	a.SetBool("attack", true)
	a.SetTrigger("wave")
	a.SetBool("idle", true)

	a.Update(0.5)
	if len(events) != 1 || events[0] != "attack" {
		t.Errorf("events = %v, want [attack]", events)
	}
	if a.IsPlaying("wave") || !a.IsPlaying("attack") {
		t.Errorf("wave should be over and attack still playing")
	}

	a.Update(0.5)
	if a.Bool("attack") {
		t.Errorf("attack bool should clear when its clip ends")
	}
	if !a.Bool("idle") {
		t.Errorf("a bool without a clip holds its value")
	}
	if len(events) != 1 {
		t.Errorf("apply event fired again: %v", events)
	}

	a.SetBool("attack", true)
	a.SetBool("attack", false)
	if a.IsPlaying("attack") {
		t.Errorf("clearing the bool should stop the clip")
	}
}
