package fsm

// Guard decides whether a transition may fire.
// It receives the current state of the layer the transition is evaluated on.
type Guard[E any, C comparable, M comparable] func(current State[E, C, M]) bool

// Transition is an immutable edge between two states.
//
// A nil From marks an any-state transition. The zero value of C means the
// transition has no command and is evaluated by condition only.
type Transition[E any, C comparable, M comparable] struct {
	From    State[E, C, M]
	To      State[E, C, M]
	Command C
	Guard   Guard[E, C, M]
	CanSelf bool

	toID StateID
}

// HasCommand reports whether the transition is triggered by a command.
func (t *Transition[E, C, M]) HasCommand() bool {
	var zero C
	return t.Command != zero
}

// IsTransferable reports whether the guard passes for the given current state.
// A transition without a guard is always transferable.
func (t *Transition[E, C, M]) IsTransferable(current State[E, C, M]) bool {
	return t.Guard == nil || t.Guard(current)
}

// ToID returns the id of the destination state.
func (t *Transition[E, C, M]) ToID() StateID { return t.toID }
