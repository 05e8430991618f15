package skill

import (
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// Action is what a skill does when it applies.
type Action interface {
	Start(s *Skill)
	Apply(s *Skill)
	Release(s *Skill)
	// Keywords returns $[skillAction.key] substitutions, or nil.
	Keywords() map[string]string
	Clone() Action
}

// PrecedingAction runs before the main action, for example a dash.
type PrecedingAction interface {
	Start(s *Skill)
	// Run is called every tick and reports whether the action has ended.
	Run(s *Skill) bool
	Release(s *Skill)
	// Keywords returns $[precedingAction.key] substitutions, or nil.
	Keywords() map[string]string
	Clone() PrecedingAction
}

// BaseAction provides no-op hooks for skill and preceding actions.
type BaseAction struct{}

func (BaseAction) Start(*Skill)                {}
func (BaseAction) Release(*Skill)              {}
func (BaseAction) Keywords() map[string]string { return nil }

// InstantApplyAction applies the skill's effects to every searched target.
type InstantApplyAction struct {
	BaseAction
}

func NewInstantApplyAction(params.Params) (Action, error) { return &InstantApplyAction{}, nil }

func (a *InstantApplyAction) Apply(s *Skill) {
	for _, t := range s.Targets() {
		t.Skills().ApplySkill(s)
	}
}

func (a *InstantApplyAction) Clone() Action { return &InstantApplyAction{} }

// RollingAction rolls the owner forward and ends when the roll is over.
// An owner without movement ends it at once.
type RollingAction struct {
	BaseAction
	distance float64
}

// NewRollingAction creates a RollingAction.
// Params: "distance" (default 5).
func NewRollingAction(p params.Params) (PrecedingAction, error) {
	return &RollingAction{distance: p.Float("distance", 5)}, nil
}

func (a *RollingAction) Distance() float64 { return a.distance }

func (a *RollingAction) Start(s *Skill) {
	if m := s.Owner().Movement(); m != nil {
		m.Roll(a.distance)
	}
}

func (a *RollingAction) Run(s *Skill) bool {
	m := s.Owner().Movement()
	return m == nil || !m.IsRolling()
}

func (a *RollingAction) Keywords() map[string]string {
	return map[string]string{"distance": textreplace.Number(a.distance)}
}

func (a *RollingAction) Clone() PrecedingAction {
	cp := *a
	return &cp
}

func buildActionDescription(description string, a Action) string {
	return textreplace.ReplacePrefix(description, "skillAction", a.Keywords())
}

func buildPrecedingDescription(description string, a PrecedingAction) string {
	return textreplace.ReplacePrefix(description, "precedingAction", a.Keywords())
}
