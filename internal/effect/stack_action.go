package effect

// StackAction is an extra action applied while the effect's stack is at least
// Stack.
type StackAction struct {
	stack              int
	releaseOnNextApply bool
	applyOnceInLife    bool
	action             Action

	hasEverApplied bool
}

// NewStackAction creates a stack tier. stack below 1 is raised to 1.
func NewStackAction(stack int, releaseOnNextApply, applyOnceInLife bool, action Action) *StackAction {
	return &StackAction{
		stack:              max(stack, 1),
		releaseOnNextApply: releaseOnNextApply,
		applyOnceInLife:    applyOnceInLife,
		action:             action,
	}
}

func (s *StackAction) Stack() int                 { return s.stack }
func (s *StackAction) IsReleaseOnNextApply() bool { return s.releaseOnNextApply }
func (s *StackAction) IsApplyOnceInLife() bool    { return s.applyOnceInLife }
func (s *StackAction) Action() Action             { return s.action }
func (s *StackAction) HasEverApplied() bool       { return s.hasEverApplied }

// IsApplicable reports whether the tier may apply. A once-in-life tier applies
// only the first time its stack is reached.
func (s *StackAction) IsApplicable() bool {
	return !s.applyOnceInLife || !s.hasEverApplied
}

func (s *StackAction) Start(e *Effect, user, target Target, level int, scale float64) {
	s.action.Start(e, user, target, level, scale)
}

func (s *StackAction) Apply(e *Effect, level int, user, target Target, scale float64) {
	s.action.Apply(e, user, target, level, s.stack, scale)
	s.hasEverApplied = true
}

func (s *StackAction) Release(e *Effect, level int, user, target Target, scale float64) {
	s.action.Release(e, user, target, level, scale)
}

func (s *StackAction) BuildDescription(e *Effect, description string, stackActionIndex, effectIndex int) string {
	return BuildActionDescription(s.action, e, description, stackActionIndex, s.stack, effectIndex)
}

// Clone returns a fresh tier; the once-in-life flag history is not copied.
func (s *StackAction) Clone() *StackAction {
	return NewStackAction(s.stack, s.releaseOnNextApply, s.applyOnceInLife, s.action.Clone())
}
