package playback

import "sync"

// Queue marshals callbacks from engine goroutines onto the presentation
// context. Post may be called from any goroutine; Drain runs the posted
// functions on the caller's goroutine, in order.
type Queue struct {
	mu  sync.Mutex
	fns []func()
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Post schedules fn to run on the next Drain.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

// Len returns the number of pending functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// Drain runs pending functions until the queue is empty, including functions
// posted by the functions it runs. It returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		batch := q.fns
		q.fns = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}
