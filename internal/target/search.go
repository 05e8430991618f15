package target

import (
	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// SearchAction gathers the affected set around a selection result.
type SearchAction interface {
	Range() float64
	ScaledRange() float64
	ProperRange() float64
	Angle() float64
	Scale() float64
	SetScale(scale float64)

	Search(s *Searcher, requester Entity, obj Object, selection SelectionResult) SearchResult

	Keywords() map[string]string
	Clone() SearchAction
}

// SearchArea sweeps a sphere around the selected point and keeps live
// entities passing the self and category filters that lie inside the cone
// in front of the requesting object.
type SearchArea struct {
	scaling
	rng          float64
	angle        float64
	includeSelf  bool
	sameCategory bool
}

// NewSearchArea creates a SearchArea.
// Params: "range", "angle" (default 360), "use_scale", "include_self",
// "same_category".
func NewSearchArea(p params.Params) SearchAction {
	return &SearchArea{
		scaling:      newScaling(p),
		rng:          max(0, p.Float("range", 0)),
		angle:        mathx.Clamp(p.Float("angle", 360), 0, 360),
		includeSelf:  p.Bool("include_self", false),
		sameCategory: p.Bool("same_category", false),
	}
}

func (a *SearchArea) Range() float64       { return a.rng }
func (a *SearchArea) ScaledRange() float64 { return a.rng * a.scale }
func (a *SearchArea) ProperRange() float64 { return a.proper(a.rng) }
func (a *SearchArea) Angle() float64       { return a.angle }

func (a *SearchArea) Search(_ *Searcher, requester Entity, obj Object, selection SelectionResult) SearchResult {
	physics := requester.Physics()
	if physics == nil {
		return SearchResult{}
	}

	center := selection.Position
	if selection.Message == FindTarget && selection.Target != nil {
		center = selection.Target.Position()
	}

	origin := obj.Position()
	forward := obj.Forward()

	var targets []Object
	for _, e := range physics.Overlap(center, a.ProperRange()) {
		if e.IsDead() || (e == requester && !a.includeSelf) {
			continue
		}
		if e != requester && !categoryAllowed(requester, e, a.sameCategory) {
			continue
		}
		if _, angle := flatAngle(origin, forward, e.Position()); angle < a.angle*0.5 {
			targets = append(targets, e)
		}
	}
	return targetsResult(targets)
}

func (a *SearchArea) Keywords() map[string]string {
	return map[string]string{"range": textreplace.Number(a.rng)}
}

func (a *SearchArea) Clone() SearchAction {
	c := *a
	return &c
}

// SelectedTarget returns the selection result itself.
type SelectedTarget struct {
	scaling
}

func NewSelectedTarget(p params.Params) SearchAction {
	return &SelectedTarget{scaling: newScaling(p)}
}

func (a *SelectedTarget) Range() float64       { return 0 }
func (a *SelectedTarget) ScaledRange() float64 { return 0 }
func (a *SelectedTarget) ProperRange() float64 { return 0 }
func (a *SelectedTarget) Angle() float64       { return 0 }

func (a *SelectedTarget) Search(_ *Searcher, _ Entity, _ Object, selection SelectionResult) SearchResult {
	if selection.Target != nil {
		return targetsResult([]Object{selection.Target})
	}
	return SearchResult{Positions: []model.Vec3{selection.Position}}
}

func (a *SelectedTarget) Keywords() map[string]string { return nil }

func (a *SelectedTarget) Clone() SearchAction {
	c := *a
	return &c
}
