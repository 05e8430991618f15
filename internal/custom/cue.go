package custom

import (
	"log/slog"

	"github.com/udisondev/skillcore/internal/params"
)

// CueAction emits a named cue to the holder's entity.
// Params: "cue" (name), "phase" ("start"/"run"/"release", default "start").
type CueAction struct {
	cue   string
	phase Phase
}

func NewCueAction(p params.Params) Action {
	return &CueAction{
		cue:   p.String("cue", ""),
		phase: ParsePhase(p.String("phase", "start")),
	}
}

func (a *CueAction) Cue() string  { return a.cue }
func (a *CueAction) Phase() Phase { return a.phase }

func (a *CueAction) Start(data any)   { a.on(PhaseStart, data) }
func (a *CueAction) Run(data any)     { a.on(PhaseRun, data) }
func (a *CueAction) Release(data any) { a.on(PhaseRelease, data) }

func (a *CueAction) Clone() Action {
	c := *a
	return &c
}

func (a *CueAction) on(phase Phase, data any) {
	if phase != a.phase || a.cue == "" {
		return
	}
	src, ok := data.(Source)
	if !ok {
		return
	}
	if em := src.CueEmitter(); em != nil {
		em.EmitCue(a.cue, data)
	}
}

// LogAction writes a debug record at the configured phase.
// Params: "message", "phase".
type LogAction struct {
	message string
	phase   Phase
}

func NewLogAction(p params.Params) Action {
	return &LogAction{
		message: p.String("message", "custom action"),
		phase:   ParsePhase(p.String("phase", "run")),
	}
}

func (a *LogAction) Start(data any)   { a.on(PhaseStart, data) }
func (a *LogAction) Run(data any)     { a.on(PhaseRun, data) }
func (a *LogAction) Release(data any) { a.on(PhaseRelease, data) }

func (a *LogAction) Clone() Action {
	c := *a
	return &c
}

func (a *LogAction) on(phase Phase, data any) {
	if phase != a.phase {
		return
	}
	slog.Debug(a.message, "phase", phase, "source", data)
}
