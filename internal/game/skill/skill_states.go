package skill

import (
	"github.com/udisondev/skillcore/internal/fsm"
	"github.com/udisondev/skillcore/internal/target"
)

type skillState = fsm.BaseState[*Skill, Command, Message]

// UsingSkill is the payload of EntityMessageUsingSkill.
type UsingSkill struct {
	Skill *Skill
	Param AnimatorParam
}

// trySendCommandToOwner moves the owner's entity machine along with the
// skill. A bool parameter holds the entity in the skill state for as long as
// the parameter is set, so the command has to be accepted first. A trigger
// parameter does not restrict the entity, which returns to its default state.
func trySendCommandToOwner(s *Skill, cmd EntityCommand, param AnimatorParam) {
	m := s.Owner().Machine()
	if m == nil || !param.IsValid() {
		return
	}
	msg := UsingSkill{Skill: s, Param: param}
	switch param.Kind {
	case ParamBool:
		if m.ExecuteCommandAll(cmd) {
			m.SendMessageAll(EntityMessageUsingSkill, msg)
		}
	case ParamTrigger:
		m.ExecuteCommandAll(EntityToDefault)
		m.SendMessageAll(EntityMessageUsingSkill, msg)
	}
}

type readyState struct {
	skillState
}

func (st *readyState) Enter() {
	if st.Layer() != 0 {
		return
	}
	s := st.Owner()
	if s.IsActivated() {
		s.Deactivate()
	}
	s.ResetProperties()
}

type searchingTargetState struct {
	skillState
}

func (st *searchingTargetState) Enter() { st.Owner().SelectTarget(nil) }
func (st *searchingTargetState) Exit()  { st.Owner().CancelSelectTarget() }

type castingState struct {
	skillState
}

func (st *castingState) Enter() {
	s := st.Owner()
	s.Activate()
	s.StartCustomActions(CustomOnCast)
	trySendCommandToOwner(s, EntityToCastingSkill, s.CastParam())
}

func (st *castingState) Update(dt float64) {
	s := st.Owner()
	s.SetCurrentCastTime(s.CurrentCastTime() + dt)
	s.RunCustomActions(CustomOnCast)
}

func (st *castingState) Exit() { st.Owner().ReleaseCustomActions(CustomOnCast) }

// chargingState accumulates charge. A player finishes the charge by
// completing the selection once the minimum charge is reached; an AI owner
// finishes at max charge. When the charge duration runs out the skill is
// either used at the owner's aim point or dropped.
type chargingState struct {
	skillState
	ended     bool
	succeeded bool
	// reselect restarts the player's selection on the next tick.
	reselect bool
}

func (st *chargingState) IsChargeEnded() bool     { return st.ended }
func (st *chargingState) IsChargeSucceeded() bool { return st.succeeded }

func (st *chargingState) Enter() {
	s := st.Owner()
	s.Activate()
	if s.Owner().IsPlayer() {
		s.SelectTarget(st.onSelectCompleted)
	}
	s.StartCustomActions(CustomOnCharge)
	trySendCommandToOwner(s, EntityToChargingSkill, s.ChargeParam())
}

func (st *chargingState) Update(dt float64) {
	s := st.Owner()
	if st.reselect && !s.IsSearchingTarget() {
		st.reselect = false
		s.SelectTarget(st.onSelectCompleted)
	}

	s.SetCurrentChargeDuration(s.CurrentChargeDuration() + dt)

	switch {
	case !s.Owner().IsPlayer() && s.IsMaxChargeCompleted():
		st.ended = true
		s.SelectTarget(nil)
		st.tryUse()
	case s.IsChargeDurationEnded():
		st.ended = true
		if s.ChargeFinishAction() == ChargeFinishUse {
			s.SelectTargetImmediate(s.Owner().AimPoint())
			st.tryUse()
		}
	}

	s.RunCustomActions(CustomOnCharge)
}

func (st *chargingState) Exit() {
	st.ended = false
	st.succeeded = false
	st.reselect = false

	s := st.Owner()
	s.CancelSelectTarget()
	s.ReleaseCustomActions(CustomOnCharge)
}

func (st *chargingState) tryUse() bool {
	s := st.Owner()
	if s.IsMinChargeCompleted() && s.IsTargetSelectSuccessful() {
		st.succeeded = true
	}
	return st.succeeded
}

func (st *chargingState) onSelectCompleted(*Skill, target.SelectionResult) {
	if !st.tryUse() {
		st.reselect = true
	}
}

type inPrecedingActionState struct {
	skillState
	ended bool
}

func (st *inPrecedingActionState) IsPrecedingActionEnded() bool { return st.ended }

func (st *inPrecedingActionState) Enter() {
	s := st.Owner()
	if !s.IsActivated() {
		s.Activate()
	}
	trySendCommandToOwner(s, EntityToInSkillPrecedingAction, s.PrecedingActionParam())
	s.StartPrecedingAction()
}

func (st *inPrecedingActionState) Update(float64) { st.ended = st.Owner().RunPrecedingAction() }

func (st *inPrecedingActionState) Exit() {
	st.ended = false
	st.Owner().ReleasePrecedingAction()
}

// inActionState applies the skill. Auto skills apply on the cycle timer,
// input skills on every Use. An animation-applied skill only advances the
// counter here and applies from the animation event.
type inActionState struct {
	skillState
	auto    bool
	instant bool
}

func (st *inActionState) Init() {
	s := st.Owner()
	st.auto = s.ExecutionType() == ExecutionAuto
	st.instant = s.ApplyType() == ApplyInstant
}

func (st *inActionState) Enter() {
	s := st.Owner()
	if !s.IsActivated() {
		s.Activate()
	}
	s.StartAction()
	st.apply()
}

func (st *inActionState) Update(dt float64) {
	s := st.Owner()
	s.SetCurrentDuration(s.CurrentDuration() + dt)
	s.SetCurrentApplyCycle(s.CurrentApplyCycle() + dt)

	if s.IsToggleType() {
		s.UseDeltaCost(dt)
	}
	if st.auto && s.IsApplicable() {
		st.apply()
	}
}

func (st *inActionState) Exit() {
	s := st.Owner()
	s.CancelSelectTarget()
	s.ReleaseAction()
}

func (st *inActionState) OnReceiveMessage(msg Message, _ any) bool {
	if msg != MessageUse || st.auto {
		return false
	}
	s := st.Owner()
	if !s.IsApplicable() {
		return false
	}
	if s.IsTargetSelectionTiming(SelectInAction) {
		if !s.IsSearchingTarget() {
			s.SelectTarget(st.onSelectCompleted)
		}
	} else {
		st.apply()
	}
	return true
}

func (st *inActionState) apply() {
	s := st.Owner()
	trySendCommandToOwner(s, EntityToInSkillAction, s.ActionParam())

	switch {
	case st.instant:
		s.Apply(true)
	case !st.auto:
		s.SetCurrentApplyCount(s.CurrentApplyCount() + 1)
	}
}

func (st *inActionState) onSelectCompleted(s *Skill, _ target.SelectionResult) {
	if s.HasValidTargetSelectionResult() {
		st.apply()
	}
}

// cooldownState counts the cooldown down. When two layers sit in cooldown at
// once the lower layer owns the clock.
type cooldownState struct {
	skillState
}

func (st *cooldownState) Enter() {
	s := st.Owner()
	if st.Layer() == 0 && s.IsActivated() {
		s.Deactivate()
	}
	if s.IsCooldownCompleted() {
		s.SetCurrentCooldown(s.Cooldown())
	}
}

func (st *cooldownState) Update(dt float64) {
	if st.Layer() != 0 && st.Machine().IsInStateOn(StateCooldown, 0) {
		return
	}
	s := st.Owner()
	s.SetCurrentCooldown(s.CurrentCooldown() - dt)
}
