package skill

// Animator receives the animation parameters driven by skills and entity
// states.
type Animator interface {
	SetBool(name string, value bool)
	SetTrigger(name string)
	Bool(name string) bool
}

// AnimationEventFunc receives an animation event raised by a clip.
type AnimationEventFunc func(param string)

// Clip describes the animation played for a parameter.
type Clip struct {
	// Length is the clip length in seconds. A bool parameter is cleared when
	// its clip ends.
	Length float64
	// ApplyAt raises the apply event this many seconds into the clip.
	// Zero disables the event.
	ApplyAt float64
}

type playback struct {
	param   string
	clip    Clip
	elapsed float64
	applied bool
}

// ClipAnimator is a headless Animator playing fixed-length clips. A bool set
// to true or a trigger starts the clip registered under the parameter name.
// Parameters without a clip hold their value until changed.
type ClipAnimator struct {
	clips   map[string]Clip
	bools   map[string]bool
	playing []*playback

	onApplyEvent observers[AnimationEventFunc]
}

// NewClipAnimator creates an animator playing clips.
func NewClipAnimator(clips map[string]Clip) *ClipAnimator {
	if clips == nil {
		clips = make(map[string]Clip)
	}
	return &ClipAnimator{
		clips: clips,
		bools: make(map[string]bool),
	}
}

// OnApplyEvent registers fn for apply events.
func (a *ClipAnimator) OnApplyEvent(fn AnimationEventFunc) (unsubscribe func()) {
	return a.onApplyEvent.add(fn)
}

func (a *ClipAnimator) SetBool(name string, value bool) {
	prev := a.bools[name]
	a.bools[name] = value
	switch {
	case value && !prev:
		a.play(name)
	case !value:
		a.stop(name)
	}
}

func (a *ClipAnimator) SetTrigger(name string) { a.play(name) }

func (a *ClipAnimator) Bool(name string) bool { return a.bools[name] }

// IsPlaying reports whether the clip of param is playing.
func (a *ClipAnimator) IsPlaying(param string) bool {
	for _, p := range a.playing {
		if p.param == param {
			return true
		}
	}
	return false
}

func (a *ClipAnimator) play(name string) {
	clip, ok := a.clips[name]
	if !ok {
		return
	}
	a.stop(name)
	a.playing = append(a.playing, &playback{param: name, clip: clip})
}

func (a *ClipAnimator) stop(name string) {
	for i, p := range a.playing {
		if p.param == name {
			a.playing = append(a.playing[:i], a.playing[i+1:]...)
			return
		}
	}
}

// Update advances the playing clips by dt seconds.
func (a *ClipAnimator) Update(dt float64) {
	if len(a.playing) == 0 {
		return
	}
	playing := a.playing
	a.playing = nil
	for _, p := range playing {
		p.elapsed += dt
		if !p.applied && p.clip.ApplyAt > 0 && p.elapsed >= p.clip.ApplyAt {
			p.applied = true
			a.onApplyEvent.each(func(fn AnimationEventFunc) { fn(p.param) })
		}
		if p.elapsed >= p.clip.Length {
			a.bools[p.param] = false
			continue
		}
		a.playing = append(a.playing, p)
	}
}
