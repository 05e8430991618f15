package model

// Intention is what an AI controller is pursuing.
type Intention int32

const (
	// IntentionIdle - controller is stopped or its entity is dead
	IntentionIdle Intention = iota
	// IntentionActive - looking for a hostile target
	IntentionActive
	// IntentionMoveTo - closing in on the target
	IntentionMoveTo
	// IntentionAttack - target in range, using skills
	IntentionAttack
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionActive:
		return "ACTIVE"
	case IntentionMoveTo:
		return "MOVE_TO"
	case IntentionAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}
