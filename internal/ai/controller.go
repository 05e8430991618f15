package ai

import "github.com/udisondev/skillcore/internal/model"

// Controller drives one AI entity.
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// SetIntention sets AI intention
	SetIntention(intention model.Intention)

	// CurrentIntention returns current AI intention
	CurrentIntention() model.Intention

	// Tick performs one decision step; it runs once per arena tick, before
	// the arena advances.
	Tick()
}
