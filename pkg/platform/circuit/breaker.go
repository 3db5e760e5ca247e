// Package circuit provides a small circuit breaker for calls to flaky upstreams.
package circuit

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown has elapsed.
	StateOpen
	// StateHalfOpen lets a single probe through after the cooldown.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// StateChange reports a transition caused by a recorded result.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker counts consecutive failures. After FailureThreshold failures the
// circuit opens and Allow returns false until Cooldown has passed; then one
// probe is admitted. A successful probe closes the circuit, a failed one
// re-opens it for another cooldown.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureCount     int
	failureThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	now              func() time.Time
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures to open the circuit.
// Default is 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before admitting a probe.
// Default is 30 seconds.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the circuit breaker's name for logging/metrics.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. While open it returns false until
// the cooldown elapses, then moves to half-open and admits exactly one caller.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateHalfOpen
		return true
	default:
		// a probe is already in flight
		return false
	}
}

// RecordFailure records a failed call.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		return StateChange{}
	case StateClosed:
		if b.failureCount >= b.failureThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			return StateChange{Opened: true}
		}
	}
	return StateChange{}
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state != StateClosed {
		b.state = StateClosed
		return StateChange{Closed: true}
	}
	return StateChange{}
}

// Reset resets the circuit breaker to closed state with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.openedAt = time.Time{}
}
