package mocks

import (
	"sync"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// Clock is a manually advanced ports.HostClock.
type Clock struct {
	mu  sync.Mutex
	now time.Duration
}

// NewClock creates a clock reading start.
func NewClock(start time.Duration) *Clock {
	return &Clock{now: start}
}

func (m *Clock) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Clock) Set(t time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d and returns the new reading.
func (m *Clock) Advance(d time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}

var _ ports.HostClock = (*Clock)(nil)
