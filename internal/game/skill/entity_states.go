package skill

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/fsm"
)

// EntityCommand drives an entity machine.
type EntityCommand int

const (
	EntityCommandNone EntityCommand = iota
	EntityToDefault
	EntityToCastingSkill
	EntityToChargingSkill
	EntityToInSkillPrecedingAction
	EntityToInSkillAction
	EntityToStunning
	EntityToSleeping
)

func (c EntityCommand) String() string {
	switch c {
	case EntityToDefault:
		return "ToDefault"
	case EntityToCastingSkill:
		return "ToCastingSkill"
	case EntityToChargingSkill:
		return "ToChargingSkill"
	case EntityToInSkillPrecedingAction:
		return "ToInSkillPrecedingAction"
	case EntityToInSkillAction:
		return "ToInSkillAction"
	case EntityToStunning:
		return "ToStunning"
	case EntityToSleeping:
		return "ToSleeping"
	default:
		return "None"
	}
}

// EntityMessage is delivered to the current state of an entity machine.
type EntityMessage int

const (
	// EntityMessageUsingSkill carries a UsingSkill.
	EntityMessageUsingSkill EntityMessage = iota + 1
)

// Entity machine states.
const (
	EntityStateDefault                fsm.StateID = "default"
	EntityStateDead                   fsm.StateID = "dead"
	EntityStateRolling                fsm.StateID = "rolling"
	EntityStateCastingSkill           fsm.StateID = "casting_skill"
	EntityStateChargingSkill          fsm.StateID = "charging_skill"
	EntityStateInSkillPrecedingAction fsm.StateID = "in_skill_preceding_action"
	EntityStateInSkillAction          fsm.StateID = "in_skill_action"
	EntityStateStunning               fsm.StateID = "stunning"
	EntityStateSleeping               fsm.StateID = "sleeping"
)

// Animator bools set while an entity is crowd-controlled.
const (
	StunningParam = "isStunning"
	SleepingParam = "isSleeping"
)

// EntityMachine is the state machine type driving an entity.
type EntityMachine = fsm.Machine[*Entity, EntityCommand, EntityMessage]

type (
	entityState = fsm.BaseState[*Entity, EntityCommand, EntityMessage]
	entityGuard = fsm.Guard[*Entity, EntityCommand, EntityMessage]
)

// RunningSkiller is implemented by the entity states that play a skill.
type RunningSkiller interface {
	RunningSkill() *Skill
}

func newEntityMachine(e *Entity) *EntityMachine {
	m := fsm.New[*Entity, EntityCommand, EntityMessage](e)

	m.AddState(EntityStateDefault, &entityDefaultState{}, 0)
	m.AddState(EntityStateDead, &lockedState{}, 0)
	m.AddState(EntityStateRolling, &lockedState{}, 0)
	m.AddState(EntityStateCastingSkill, &entitySkillState{}, 0)
	m.AddState(EntityStateChargingSkill, &entitySkillState{}, 0)
	m.AddState(EntityStateInSkillPrecedingAction, &entitySkillState{}, 0)
	m.AddState(EntityStateInSkillAction, &inSkillActionState{}, 0)
	m.AddState(EntityStateStunning, &ccState{param: StunningParam}, 0)
	m.AddState(EntityStateSleeping, &ccState{param: SleepingParam}, 0)

	isRolling := func(fsm.State[*Entity, EntityCommand, EntityMessage]) bool {
		mv := e.Movement()
		return mv != nil && mv.IsRolling()
	}
	notRolling := func(cur fsm.State[*Entity, EntityCommand, EntityMessage]) bool { return !isRolling(cur) }

	m.MakeTransition(EntityStateDefault, EntityStateRolling, EntityCommandNone, isRolling, 0)
	m.MakeTransition(EntityStateDefault, EntityStateCastingSkill, EntityToCastingSkill, nil, 0)
	m.MakeTransition(EntityStateDefault, EntityStateChargingSkill, EntityToChargingSkill, nil, 0)
	m.MakeTransition(EntityStateDefault, EntityStateInSkillPrecedingAction, EntityToInSkillPrecedingAction, nil, 0)
	m.MakeTransition(EntityStateDefault, EntityStateInSkillAction, EntityToInSkillAction, nil, 0)

	m.MakeTransition(EntityStateRolling, EntityStateDefault, EntityCommandNone, notRolling, 0)

	m.MakeTransition(EntityStateCastingSkill, EntityStateInSkillPrecedingAction, EntityToInSkillPrecedingAction, nil, 0)
	m.MakeTransition(EntityStateCastingSkill, EntityStateInSkillAction, EntityToInSkillAction, nil, 0)
	m.MakeTransition(EntityStateCastingSkill, EntityStateDefault, EntityCommandNone, skillLeft(StateCasting), 0)

	m.MakeTransition(EntityStateChargingSkill, EntityStateInSkillPrecedingAction, EntityToInSkillPrecedingAction, nil, 0)
	m.MakeTransition(EntityStateChargingSkill, EntityStateInSkillAction, EntityToInSkillAction, nil, 0)
	m.MakeTransition(EntityStateChargingSkill, EntityStateDefault, EntityCommandNone, skillLeft(StateCharging), 0)

	m.MakeTransition(EntityStateInSkillPrecedingAction, EntityStateInSkillAction, EntityToInSkillAction, nil, 0)
	m.MakeTransition(EntityStateInSkillPrecedingAction, EntityStateDefault, EntityCommandNone, skillLeft(StateInPrecedingAction), 0)

	m.MakeTransition(EntityStateInSkillAction, EntityStateDefault, EntityCommandNone,
		func(cur fsm.State[*Entity, EntityCommand, EntityMessage]) bool {
			return cur.(*inSkillActionState).IsStateEnded()
		}, 0)

	m.MakeAnyTransition(EntityStateStunning, EntityToStunning, nil, 0, false)
	m.MakeAnyTransition(EntityStateSleeping, EntityToSleeping, nil, 0, false)
	m.MakeAnyTransition(EntityStateDefault, EntityToDefault, nil, 0, false)
	m.MakeAnyTransition(EntityStateDead, EntityCommandNone,
		func(fsm.State[*Entity, EntityCommand, EntityMessage]) bool { return e.IsDead() }, 0, false)

	m.MakeTransition(EntityStateDead, EntityStateDefault, EntityCommandNone,
		func(fsm.State[*Entity, EntityCommand, EntityMessage]) bool { return !e.IsDead() }, 0)

	return m
}

// skillLeft passes once the running skill of the current state is no longer
// in the skill state id. A state without a running skill passes.
func skillLeft(id fsm.StateID) entityGuard {
	return func(cur fsm.State[*Entity, EntityCommand, EntityMessage]) bool {
		s := cur.(RunningSkiller).RunningSkill()
		return s == nil || !s.IsInState(id)
	}
}

type entityDefaultState struct {
	entityState
}

// OnReceiveMessage plays the trigger of a skill used without leaving the
// default state.
func (st *entityDefaultState) OnReceiveMessage(msg EntityMessage, data any) bool {
	if msg != EntityMessageUsingSkill {
		return false
	}
	using := mustUsingSkill(msg, data)
	if a := st.Owner().Animator(); a != nil {
		a.SetTrigger(using.Param.Name)
	}
	return true
}

// lockedState takes control away from the entity while it is current.
type lockedState struct {
	entityState
}

func (st *lockedState) Enter() { st.Owner().lockControl() }
func (st *lockedState) Exit()  { st.Owner().unlockControl() }

type ccState struct {
	entityState
	param string
}

func (st *ccState) Enter() {
	e := st.Owner()
	if a := e.Animator(); a != nil {
		a.SetBool(st.param, true)
	}
	if mv := e.Movement(); mv != nil {
		mv.Stop()
	}
	e.lockControl()
}

func (st *ccState) Exit() {
	e := st.Owner()
	if a := e.Animator(); a != nil {
		a.SetBool(st.param, false)
	}
	e.unlockControl()
}

// entitySkillState holds the entity while one of its skills plays an
// animation bool.
type entitySkillState struct {
	entityState
	runningSkill *Skill
	param        AnimatorParam
}

func (st *entitySkillState) RunningSkill() *Skill { return st.runningSkill }

func (st *entitySkillState) Enter() {
	e := st.Owner()
	if mv := e.Movement(); mv != nil {
		mv.Stop()
	}
	e.lockControl()
}

func (st *entitySkillState) Exit() {
	e := st.Owner()
	if a := e.Animator(); a != nil && st.param.IsValid() {
		a.SetBool(st.param.Name, false)
	}
	st.runningSkill = nil
	st.param = AnimatorParam{}
	e.unlockControl()
}

func (st *entitySkillState) OnReceiveMessage(msg EntityMessage, data any) bool {
	if msg != EntityMessageUsingSkill {
		return false
	}
	using := mustUsingSkill(msg, data)
	st.runningSkill = using.Skill
	st.param = using.Param

	e := st.Owner()
	if using.Skill.IsTargetSelectSuccessful() {
		result := using.Skill.SelectionResult()
		if self, ok := result.Target.(*Entity); !ok || self != e {
			if mv := e.Movement(); mv != nil {
				mv.LookAt(result.Position)
			}
		}
	}
	if a := e.Animator(); a != nil {
		a.SetBool(st.param.Name, true)
	}
	return true
}

// inSkillActionState ends by the skill's InActionFinishOption: once the
// skill applies, once it is fully applied, or once the animation bool is
// cleared.
type inSkillActionState struct {
	entitySkillState
	ended       bool
	unsubscribe func()
}

func (st *inSkillActionState) IsStateEnded() bool { return st.ended }

func (st *inSkillActionState) Update(float64) {
	s := st.runningSkill
	if s == nil || s.InActionFinishOption() != FinishWhenAnimationEnded {
		return
	}
	a := st.Owner().Animator()
	st.ended = a == nil || !a.Bool(st.param.Name)
}

func (st *inSkillActionState) OnReceiveMessage(msg EntityMessage, data any) bool {
	if !st.entitySkillState.OnReceiveMessage(msg, data) {
		return false
	}
	if st.runningSkill.InActionFinishOption() != FinishWhenAnimationEnded {
		st.unsubscribeApplied()
		st.unsubscribe = st.runningSkill.OnApplied(st.onSkillApplied)
	}
	return true
}

func (st *inSkillActionState) Exit() {
	st.ended = false
	st.unsubscribeApplied()
	st.entitySkillState.Exit()
}

func (st *inSkillActionState) unsubscribeApplied() {
	if st.unsubscribe != nil {
		st.unsubscribe()
		st.unsubscribe = nil
	}
}

func (st *inSkillActionState) onSkillApplied(s *Skill, _ int) {
	switch s.InActionFinishOption() {
	case FinishOnceApplied:
		st.ended = true
	case FinishWhenFullyApplied:
		st.ended = s.IsFinished()
	}
}

func mustUsingSkill(msg EntityMessage, data any) UsingSkill {
	using, ok := data.(UsingSkill)
	if !ok || using.Skill == nil {
		panic(fmt.Sprintf("skill: entity message %d carries %T, want UsingSkill", msg, data))
	}
	return using
}
