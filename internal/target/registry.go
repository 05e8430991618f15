package target

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
)

// selectionRegistry maps selection action type name → factory.
var selectionRegistry = map[string]func(p params.Params) SelectionAction{}

// searchRegistry maps search action type name → factory.
var searchRegistry = map[string]func(p params.Params) SearchAction{}

// RegisterSelection registers a selection action factory by name.
func RegisterSelection(name string, factory func(p params.Params) SelectionAction) {
	selectionRegistry[name] = factory
}

// RegisterSearch registers a search action factory by name.
func RegisterSearch(name string, factory func(p params.Params) SearchAction) {
	searchRegistry[name] = factory
}

// CreateSelection creates a selection action by registered name.
func CreateSelection(name string, p params.Params) (SelectionAction, error) {
	factory, ok := selectionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown selection action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p), nil
}

// CreateSearch creates a search action by registered name.
func CreateSearch(name string, p params.Params) (SearchAction, error) {
	factory, ok := searchRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown search action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p), nil
}

func init() {
	RegisterSelection("SelectSelf", NewSelectSelf)
	RegisterSelection("SelectSelfByOneClick", NewSelectSelfByOneClick)
	RegisterSelection("SelectEntity", NewSelectEntity)
	RegisterSelection("SelectPosition", NewSelectPosition)

	RegisterSearch("SearchArea", NewSearchArea)
	RegisterSearch("SelectedTarget", NewSelectedTarget)
}
