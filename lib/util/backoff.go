package util

import (
	"math/rand"
	"time"
)

// Backoff computes exponentially growing delays with a small random jitter (+-10%).
// The zero value is not usable, create instances with NewBackoff.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a backoff starting at initial and capped at max
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	if max < initial {
		max = initial
	}
	return &Backoff{initial: initial, max: max, current: initial}
}

// Next returns the delay to wait before the next attempt and doubles the base delay
func (b *Backoff) Next() time.Duration {
	jitter := float64(b.current) * (0.9 + 0.2*rand.Float64())

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return time.Duration(jitter)
}

// Reset starts over from the initial delay
func (b *Backoff) Reset() {
	b.current = b.initial
}
