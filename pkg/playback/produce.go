package playback

import (
	"sync"
	"sync/atomic"
	"time"
)

// produceRequest asks the worker for the buffer nearest target.
// Requests from an older epoch are stale and dropped.
type produceRequest struct {
	epoch         uint64
	target        time.Duration
	frameDuration time.Duration
}

// mailbox is a single-slot request box: a newer request overwrites an
// unconsumed older one, since only the latest target matters.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	req    produceRequest
	full   bool
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// put stores req, overwriting any unconsumed request. It reports whether an
// older request was overwritten.
func (m *mailbox) put(req produceRequest) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	dropped := m.full
	m.req = req
	m.full = true
	m.cond.Signal()
	return dropped
}

// take blocks until a request is available or the mailbox is closed.
func (m *mailbox) take() (produceRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.full && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return produceRequest{}, false
	}
	req := m.req
	m.full = false
	return req, true
}

// clear drops an unconsumed request.
func (m *mailbox) clear() {
	m.mu.Lock()
	m.full = false
	m.mu.Unlock()
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
}

type publishResult int

const (
	published publishResult = iota
	publishStale
	publishDuplicate
)

// bufferSlots holds the previous and current frame of one stream.
// The produce worker is the only writer; the presentation context reads
// consistent snapshots under the read lock.
type bufferSlots struct {
	mu       sync.RWMutex
	epoch    uint64
	previous *Frame
	current  *Frame

	// retired is the last frame of an invalidated epoch. It stays valid for
	// readers still displaying it and is released by the next publish.
	retired *Frame
}

func (s *bufferSlots) snapshot() (previous, current *Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous, s.current
}

func (s *bufferSlots) has(n int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (s.current != nil && s.current.Number == n) || (s.previous != nil && s.previous.Number == n)
}

// retain adds a holder to f if the slots still own it. Holding the read
// lock keeps publish from releasing f in between.
func (s *bufferSlots) retain(f *Frame) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f == nil || (f != s.current && f != s.previous && f != s.retired) {
		return false
	}
	f.retain()
	return true
}

// publish makes f current. Frames from another epoch, and frames not newer
// than current, are released instead.
func (s *bufferSlots) publish(f *Frame, epoch uint64) publishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		f.release()
		return publishStale
	}
	if s.current != nil && f.Number <= s.current.Number {
		f.release()
		return publishDuplicate
	}
	if s.retired != nil {
		s.retired.release()
		s.retired = nil
	}
	s.previous.release()
	s.previous = s.current
	s.current = f
	return published
}

// reset invalidates both slots for a new epoch.
func (s *bufferSlots) reset(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
	keep := s.current
	if keep == nil {
		keep = s.previous
	} else {
		s.previous.release()
	}
	if keep != nil {
		s.retired.release()
		s.retired = keep
	}
	s.previous = nil
	s.current = nil
}

// rebind moves the slots to a new epoch without dropping their frames.
func (s *bufferSlots) rebind(epoch uint64) {
	s.mu.Lock()
	s.epoch = epoch
	s.mu.Unlock()
}

func (s *bufferSlots) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retired.release()
	s.previous.release()
	s.current.release()
	s.retired, s.previous, s.current = nil, nil, nil
}

// OutputStats counts produce and selection outcomes of one Output.
type OutputStats struct {
	Produced        uint64 // buffers published to the slots
	Duplicates      uint64 // buffers dropped for not being newer than current
	Stale           uint64 // results and signals discarded after stop or seek
	Pending         uint64 // produce calls the engine could not serve yet
	Overwritten     uint64 // requests replaced before the worker took them
	Selected        uint64 // frames handed to the presentation context
	NotYetAvailable uint64 // selections with no suitable buffer
}

type outputCounters struct {
	produced, duplicates, stale, pending, overwritten atomic.Uint64
	selected, notYetAvailable                        atomic.Uint64
}

func (c *outputCounters) snapshot() OutputStats {
	return OutputStats{
		Produced:        c.produced.Load(),
		Duplicates:      c.duplicates.Load(),
		Stale:           c.stale.Load(),
		Pending:         c.pending.Load(),
		Overwritten:     c.overwritten.Load(),
		Selected:        c.selected.Load(),
		NotYetAvailable: c.notYetAvailable.Load(),
	}
}

// epochCounter identifies the current produce generation. Stop, seek and
// close advance it so results started before them are discarded.
type epochCounter struct {
	v atomic.Uint64
}

func (e *epochCounter) current() uint64 {
	return e.v.Load()
}

func (e *epochCounter) advance() uint64 {
	return e.v.Add(1)
}
