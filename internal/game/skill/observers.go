package skill

// observers is an ordered list of callbacks that can be removed individually.
type observers[F any] struct {
	nextID int
	subs   []subscription[F]
}

type subscription[F any] struct {
	id int
	fn F
}

// add appends fn and returns a func removing it. Removing twice is a no-op.
func (o *observers[F]) add(fn F) (unsubscribe func()) {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription[F]{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// each calls visit for every callback registered before the call started.
// Callbacks may subscribe or unsubscribe while being notified.
func (o *observers[F]) each(visit func(fn F)) {
	if len(o.subs) == 0 {
		return
	}
	snapshot := make([]subscription[F], len(o.subs))
	copy(snapshot, o.subs)
	for _, s := range snapshot {
		visit(s.fn)
	}
}

func (o *observers[F]) len() int { return len(o.subs) }
