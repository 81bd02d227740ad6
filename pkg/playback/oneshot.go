package playback

// oneShot holds a callback that may be invoked at most once.
// Take hands the callback out and clears the slot.
type oneShot[F func() | func(bool)] struct {
	fn  F
	set bool
}

func (o *oneShot[F]) Set(fn F) {
	o.fn = fn
	o.set = notNil(fn)
}

func (o *oneShot[F]) Take() (F, bool) {
	fn, ok := o.fn, o.set
	var zero F
	o.fn = zero
	o.set = false
	return fn, ok
}

func (o *oneShot[F]) Pending() bool {
	return o.set
}

func notNil[F func() | func(bool)](fn F) bool {
	switch f := any(fn).(type) {
	case func():
		return f != nil
	case func(bool):
		return f != nil
	}
	return false
}
