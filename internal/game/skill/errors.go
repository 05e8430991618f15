package skill

import "errors"

var (
	// ErrSkillNotRegistered is returned when a system is asked to use a skill
	// it does not own.
	ErrSkillNotRegistered = errors.New("skill not registered")
	// ErrSkillNotUseable is returned when a skill cannot be used right now.
	ErrSkillNotUseable = errors.New("skill not useable")
)
