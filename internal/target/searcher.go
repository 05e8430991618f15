package target

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// CompletedFunc receives the outcome of Searcher.SelectTarget.
type CompletedFunc func(s *Searcher, result SelectionResult)

// Searcher chains a selection action with a search action.
// Scale is shared by both and clamped to [0, 1].
type Searcher struct {
	selection SelectionAction
	search    SearchAction
	scale     float64

	searching   bool
	onCompleted CompletedFunc

	selectionResult SelectionResult
	searchResult    SearchResult
}

// NewSearcher creates a searcher with scale 1.
// Panics if either action is nil.
func NewSearcher(selection SelectionAction, search SearchAction) *Searcher {
	if selection == nil || search == nil {
		panic("target: searcher needs both a selection and a search action")
	}
	s := &Searcher{selection: selection, search: search}
	s.SetScale(1)
	return s
}

// Clone copies the configuration; results and pending selections are not copied.
func (s *Searcher) Clone() *Searcher {
	c := &Searcher{
		selection: s.selection.Clone(),
		search:    s.search.Clone(),
	}
	c.SetScale(s.scale)
	return c
}

func (s *Searcher) Selection() SelectionAction { return s.selection }
func (s *Searcher) Search() SearchAction       { return s.search }

func (s *Searcher) Scale() float64 { return s.scale }

// SetScale clamps scale to [0, 1] and forwards it to both actions.
func (s *Searcher) SetScale(scale float64) {
	s.scale = mathx.Clamp01(scale)
	s.selection.SetScale(s.scale)
	s.search.SetScale(s.scale)
}

func (s *Searcher) IsSearching() bool                { return s.searching }
func (s *Searcher) SelectionResult() SelectionResult { return s.selectionResult }
func (s *Searcher) SearchResult() SearchResult       { return s.searchResult }

// SelectTarget starts an asynchronous selection, cancelling a pending one.
// done runs when the selection completes, possibly before SelectTarget returns.
func (s *Searcher) SelectTarget(requester Entity, obj Object, done CompletedFunc) {
	s.CancelSelect()
	s.searching = true
	s.onCompleted = done
	s.selection.Select(s, requester, obj, s.selectCompleted)
}

// SelectImmediate selects synchronously, cancelling a pending selection.
func (s *Searcher) SelectImmediate(requester Entity, obj Object, pos model.Vec3) SelectionResult {
	s.CancelSelect()
	s.selectionResult = s.selection.SelectImmediate(s, requester, obj, pos)
	return s.selectionResult
}

// CancelSelect cancels a pending asynchronous selection and releases its
// input subscription.
func (s *Searcher) CancelSelect() {
	if !s.searching {
		return
	}
	s.searching = false
	s.selection.CancelSelect(s)
}

// SearchTargets gathers targets around the last selection result.
func (s *Searcher) SearchTargets(requester Entity, obj Object) SearchResult {
	s.searchResult = s.search.Search(s, requester, obj, s.selectionResult)
	return s.searchResult
}

// IsInRange reports whether pos passes the selection range and angle gate.
func (s *Searcher) IsInRange(requester Entity, obj Object, pos model.Vec3) bool {
	return s.selection.IsInRange(s, requester, obj, pos)
}

// BuildDescription fills $[prefix.targetSearcher.selectionAction.key] and
// $[prefix.targetSearcher.searchAction.key] placeholders.
func (s *Searcher) BuildDescription(description, prefix string) string {
	if prefix == "" {
		prefix = "targetSearcher"
	} else {
		prefix += ".targetSearcher"
	}
	description = textreplace.ReplacePrefix(description, prefix+".selectionAction", s.selection.Keywords())
	return textreplace.ReplacePrefix(description, prefix+".searchAction", s.search.Keywords())
}

func (s *Searcher) selectCompleted(result SelectionResult) {
	s.searching = false
	s.selectionResult = result
	if s.onCompleted != nil {
		s.onCompleted(s, result)
	}
}

func (s *Searcher) String() string {
	return fmt.Sprintf("Searcher{selection: %T, search: %T, scale: %.2f}", s.selection, s.search, s.scale)
}
