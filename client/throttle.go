package client

import (
	"time"

	"arena/protocol"
)

// MovementThrottle caps how often the local transform goes out. Only the
// newest sample is kept; intermediate samples are dropped.
type MovementThrottle struct {
	interval time.Duration
	lastSent time.Time
	pending  protocol.Transform
	dirty    bool
}

func NewMovementThrottle(interval time.Duration) *MovementThrottle {
	if interval <= 0 {
		interval = protocol.SendInterval
	}
	return &MovementThrottle{interval: interval}
}

// Offer records the latest local transform.
func (t *MovementThrottle) Offer(tr protocol.Transform) {
	t.pending = tr
	t.dirty = true
}

// Due returns the sample to send if one is pending and the interval has
// elapsed since the last send.
func (t *MovementThrottle) Due(now time.Time) (protocol.Transform, bool) {
	if !t.dirty || now.Sub(t.lastSent) < t.interval {
		return protocol.Transform{}, false
	}
	t.lastSent = now
	t.dirty = false
	return t.pending, true
}
