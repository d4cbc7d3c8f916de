// Package gate implements the request admission gate that protects the
// quota-limited generation backend from rapid repeated requests.
package gate

import "time"

const (
	// SpacingInterval is the minimum delay between consecutive admitted requests.
	SpacingInterval = 3 * time.Second
	// LockoutDuration is how long all requests are refused after a quota error.
	LockoutDuration = 120 * time.Second
)

// Status is the outcome of an admission check.
type Status int

const (
	// Admitted means the request may be dispatched now.
	Admitted Status = iota
	// Refused means the spacing interval has not elapsed yet.
	Refused
	// Locked means a quota lockout is still active.
	Locked
)

// Decision is the result of checking the gate at a given time.
type Decision struct {
	Status Status
	// WaitSeconds is the remaining wait, rounded down to whole seconds.
	// Zero for Admitted.
	WaitSeconds int
}

// State holds the admission timers for one session. The zero value is an
// open gate. Callers pass the current time explicitly so tests can use
// synthetic clocks.
type State struct {
	LastRequestTime time.Time
	LockoutUntil    time.Time
}

// Check reports whether a request may proceed at time now. An expired
// lockout is cleared here (the Locked -> Open transition); otherwise Check
// does not mutate the state.
func (s *State) Check(now time.Time) Decision {
	if !s.LockoutUntil.IsZero() {
		if now.Before(s.LockoutUntil) {
			remaining := s.LockoutUntil.Sub(now)
			return Decision{Status: Locked, WaitSeconds: int(remaining.Seconds())}
		}
		s.LockoutUntil = time.Time{}
	}

	if !s.LastRequestTime.IsZero() {
		elapsed := now.Sub(s.LastRequestTime)
		if elapsed < SpacingInterval {
			remaining := SpacingInterval - elapsed
			return Decision{Status: Refused, WaitSeconds: int(remaining.Seconds())}
		}
	}

	return Decision{Status: Admitted}
}

// RecordRequest marks a request as dispatched at time now. It must be called
// immediately before the external call, not after it returns, so the spacing
// rule holds even when the call fails for unrelated reasons.
func (s *State) RecordRequest(now time.Time) {
	s.LastRequestTime = now
}

// RecordLockout starts the quota lockout at time now. Called only when the
// external service specifically reported quota exhaustion.
func (s *State) RecordLockout(now time.Time) {
	s.LockoutUntil = now.Add(LockoutDuration)
}
