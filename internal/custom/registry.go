package custom

import (
	"fmt"

	"github.com/udisondev/skillcore/internal/params"
)

// registry maps custom action type name → factory.
var registry = map[string]func(p params.Params) Action{}

// Register registers a custom action factory by name.
func Register(name string, factory func(p params.Params) Action) {
	registry[name] = factory
}

// Create creates a custom action by registered name.
func Create(name string, p params.Params) (Action, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown custom action type %q: %w", name, params.ErrNotRegistered)
	}
	return factory(p), nil
}

func init() {
	Register("Cue", NewCueAction)
	Register("Log", NewLogAction)
}
