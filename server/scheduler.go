package main

import "time"

// Timer is a scheduled callback that can be cancelled before it fires
type Timer interface {
	Stop() bool
}

// Scheduler defers work on behalf of the arena. Callbacks must run on the
// arena goroutine so they can touch session state without locking.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// loopScheduler re-enters the arena inbox when a timer fires
type loopScheduler struct {
	arena *Arena
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		s.arena.post(timerCmd{fn: fn})
	})
}
