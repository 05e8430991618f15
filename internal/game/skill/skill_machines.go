package skill

import "github.com/udisondev/skillcore/internal/fsm"

type skillGuard = fsm.Guard[*Skill, Command, Message]

func always(fsm.State[*Skill, Command, Message]) bool { return true }

func when(cond func() bool) skillGuard {
	return func(fsm.State[*Skill, Command, Message]) bool { return cond() }
}

func newInstantMachine(s *Skill) *Machine {
	m := fsm.New[*Skill, Command, Message](s)

	charging := &chargingState{}
	preceding := &inPrecedingActionState{}

	m.AddState(StateReady, &readyState{}, 0)
	m.AddState(StateSearchingTarget, &searchingTargetState{}, 0)
	m.AddState(StateCasting, &castingState{}, 0)
	m.AddState(StateCharging, charging, 0)
	m.AddState(StateInPrecedingAction, preceding, 0)
	m.AddState(StateInAction, &inActionState{}, 0)
	m.AddState(StateCooldown, &cooldownState{}, 0)

	useCharge := when(s.IsUseCharge)
	selectOnUse := when(func() bool { return s.IsTargetSelectionTiming(SelectOnUse) })
	useCast := when(s.IsUseCast)
	hasPreceding := when(s.HasPrecedingAction)

	// Ready
	for _, cmd := range []Command{CommandUse, CommandUseImmediately} {
		m.MakeTransition(StateReady, StateCharging, cmd, useCharge, 0)
		if cmd == CommandUse {
			m.MakeTransition(StateReady, StateSearchingTarget, cmd, selectOnUse, 0)
		}
		m.MakeTransition(StateReady, StateCasting, cmd, useCast, 0)
		m.MakeTransition(StateReady, StateInPrecedingAction, cmd, hasPreceding, 0)
		m.MakeTransition(StateReady, StateInAction, cmd, always, 0)
	}
	m.MakeTransition(StateReady, StateCooldown, CommandNone, when(func() bool { return !s.IsCooldownCompleted() }), 0)

	// Charging
	m.MakeTransition(StateCharging, StateInPrecedingAction, CommandNone,
		when(func() bool { return charging.IsChargeSucceeded() && s.HasPrecedingAction() }), 0)
	m.MakeTransition(StateCharging, StateInAction, CommandNone, when(charging.IsChargeSucceeded), 0)
	m.MakeTransition(StateCharging, StateCooldown, CommandNone, when(charging.IsChargeEnded), 0)

	// SearchingTarget
	selected := s.IsTargetSelectSuccessful
	m.MakeTransition(StateSearchingTarget, StateCasting, CommandNone,
		when(func() bool { return selected() && s.IsUseCast() }), 0)
	m.MakeTransition(StateSearchingTarget, StateInPrecedingAction, CommandNone,
		when(func() bool { return selected() && s.HasPrecedingAction() }), 0)
	m.MakeTransition(StateSearchingTarget, StateInAction, CommandNone, when(selected), 0)
	m.MakeTransition(StateSearchingTarget, StateCooldown, CommandNone, when(func() bool { return !s.IsCooldownCompleted() }), 0)
	m.MakeTransition(StateSearchingTarget, StateReady, CommandNone, when(func() bool { return !s.IsSearchingTarget() }), 0)

	// Casting
	m.MakeTransition(StateCasting, StateInPrecedingAction, CommandNone,
		when(func() bool { return s.IsCastCompleted() && s.HasPrecedingAction() }), 0)
	m.MakeTransition(StateCasting, StateInAction, CommandNone, when(s.IsCastCompleted), 0)

	// InPrecedingAction
	m.MakeTransition(StateInPrecedingAction, StateInAction, CommandNone, when(preceding.IsPrecedingActionEnded), 0)

	// InAction
	m.MakeTransition(StateInAction, StateCooldown, CommandNone,
		when(func() bool { return s.IsFinished() && s.HasCooldown() }), 0)
	m.MakeTransition(StateInAction, StateReady, CommandNone, when(s.IsFinished), 0)

	// Cooldown
	m.MakeTransition(StateCooldown, StateReady, CommandNone, when(s.IsCooldownCompleted), 0)

	// An input-driven skill in action only stops on a forced cancel.
	cancelable := func() bool {
		return !(s.IsInState(StateInAction) && s.ExecutionType() == ExecutionInput)
	}
	m.MakeAnyTransition(StateCooldown, CommandCancel,
		when(func() bool { return cancelable() && s.IsActivated() && s.HasCooldown() }), 0, false)
	m.MakeAnyTransition(StateReady, CommandCancel, when(cancelable), 0, false)
	addCancelImmediately(m, s, 0)

	return m
}

func newPassiveMachine(s *Skill) *Machine {
	m := fsm.New[*Skill, Command, Message](s)

	preceding := &inPrecedingActionState{}

	m.AddState(StateReady, &readyState{}, 0)
	m.AddState(StateSearchingTarget, &searchingTargetState{}, 0)
	m.AddState(StateInPrecedingAction, preceding, 0)
	m.AddState(StateInAction, &inActionState{}, 0)
	m.AddState(StateCooldown, &cooldownState{}, 0)

	selected := s.IsTargetSelectSuccessful

	m.MakeTransition(StateReady, StateSearchingTarget, CommandNone, when(s.IsUseable), 0)

	m.MakeTransition(StateSearchingTarget, StateInPrecedingAction, CommandNone,
		when(func() bool { return selected() && s.HasPrecedingAction() }), 0)
	m.MakeTransition(StateSearchingTarget, StateInAction, CommandNone, when(selected), 0)

	m.MakeTransition(StateInPrecedingAction, StateInAction, CommandNone, when(preceding.IsPrecedingActionEnded), 0)

	m.MakeTransition(StateInAction, StateCooldown, CommandNone,
		when(func() bool { return s.IsFinished() && s.HasCooldown() }), 0)
	m.MakeTransition(StateInAction, StateReady, CommandNone, when(s.IsFinished), 0)

	m.MakeTransition(StateCooldown, StateReady, CommandNone, when(s.IsCooldownCompleted), 0)

	addCancelImmediately(m, s, 0)

	return m
}

// newToggleMachine builds a two-layer machine. Layer 0 runs the toggle itself.
// Layer 1 starts the cooldown as soon as the skill is switched on, so the
// toggle cannot be flipped back on right after it is switched off.
func newToggleMachine(s *Skill) *Machine {
	m := fsm.New[*Skill, Command, Message](s)

	m.AddState(StateReady, &readyState{}, 0)
	m.AddState(StateSearchingTarget, &searchingTargetState{}, 0)
	m.AddState(StateInAction, &inActionState{}, 0)
	m.AddState(StateCooldown, &cooldownState{}, 0)

	ended := func() bool { return s.IsFinished() || !s.HasEnoughCost() }

	m.MakeTransition(StateReady, StateSearchingTarget, CommandUse, always, 0)
	m.MakeTransition(StateReady, StateCooldown, CommandNone, when(func() bool { return !s.IsCooldownCompleted() }), 0)

	m.MakeTransition(StateSearchingTarget, StateInAction, CommandNone, when(s.IsTargetSelectSuccessful), 0)

	m.MakeTransition(StateInAction, StateCooldown, CommandNone,
		when(func() bool { return ended() && s.HasCooldown() }), 0)
	m.MakeTransition(StateInAction, StateCooldown, CommandUse, when(s.HasCooldown), 0)
	m.MakeTransition(StateInAction, StateReady, CommandNone, when(ended), 0)
	m.MakeTransition(StateInAction, StateReady, CommandUse, always, 0)

	m.MakeTransition(StateCooldown, StateReady, CommandNone, when(s.IsCooldownCompleted), 0)

	addCancelImmediately(m, s, 0)

	m.AddState(StateReady, &readyState{}, 1)
	m.AddState(StateCooldown, &cooldownState{}, 1)

	m.MakeTransition(StateReady, StateCooldown, CommandUse, when(s.HasCooldown), 1)
	m.MakeTransition(StateCooldown, StateReady, CommandNone, when(s.IsCooldownCompleted), 1)

	return m
}

func addCancelImmediately(m *Machine, s *Skill, layer int) {
	m.MakeAnyTransition(StateCooldown, CommandCancelImmediately,
		when(func() bool { return s.IsActivated() && s.HasCooldown() }), layer, false)
	m.MakeAnyTransition(StateReady, CommandCancelImmediately, always, layer, false)
}
