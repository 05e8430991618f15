// Package custom holds presentation hooks attached to skills and effects.
//
// A custom action never changes game state. It reacts to the lifecycle of its
// holder (start, each run, release) and forwards named cues to whoever renders
// them.
package custom

// Action is a lifecycle hook. data is the skill or effect that owns it.
type Action interface {
	Start(data any)
	Run(data any)
	Release(data any)
	Clone() Action
}

// Emitter receives named cues.
type Emitter interface {
	EmitCue(name string, source any)
}

// Source routes cues of a skill or effect to an entity.
type Source interface {
	CueEmitter() Emitter
}

// Phase selects the lifecycle point an action reacts to.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseRun
	PhaseRelease
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseRun:
		return "run"
	case PhaseRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParsePhase maps a data name to a Phase. Unknown names map to PhaseStart.
func ParsePhase(s string) Phase {
	switch s {
	case "run":
		return PhaseRun
	case "release":
		return PhaseRelease
	default:
		return PhaseStart
	}
}

// StartAll calls Start on every action.
func StartAll(actions []Action, data any) {
	for _, a := range actions {
		a.Start(data)
	}
}

// RunAll calls Run on every action.
func RunAll(actions []Action, data any) {
	for _, a := range actions {
		a.Run(data)
	}
}

// ReleaseAll calls Release on every action.
func ReleaseAll(actions []Action, data any) {
	for _, a := range actions {
		a.Release(data)
	}
}

// CloneAll deep-copies a list of actions.
func CloneAll(actions []Action) []Action {
	if actions == nil {
		return nil
	}
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}
