package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestZeroValueGateAdmits(t *testing.T) {
	var s State
	d := s.Check(t0)
	assert.Equal(t, Admitted, d.Status)
	assert.Equal(t, 0, d.WaitSeconds)
}

func TestSpacingRefusesBeforeThreeSeconds(t *testing.T) {
	var s State
	s.RecordRequest(t0)

	d := s.Check(t0.Add(2900 * time.Millisecond))
	assert.Equal(t, Refused, d.Status)
	// 100ms remaining rounds down to 0 whole seconds
	assert.Equal(t, 0, d.WaitSeconds)

	d = s.Check(t0.Add(1 * time.Second))
	assert.Equal(t, Refused, d.Status)
	assert.Equal(t, 2, d.WaitSeconds)
}

func TestSpacingBoundaryIsInclusive(t *testing.T) {
	var s State
	s.RecordRequest(t0)

	d := s.Check(t0.Add(3 * time.Second))
	assert.Equal(t, Admitted, d.Status)

	d = s.Check(t0.Add(10 * time.Minute))
	assert.Equal(t, Admitted, d.Status)
}

func TestLockoutRefusesUntilExpiry(t *testing.T) {
	var s State
	s.RecordLockout(t0)

	d := s.Check(t0.Add(1 * time.Second))
	assert.Equal(t, Locked, d.Status)
	assert.Equal(t, 119, d.WaitSeconds)

	d = s.Check(t0.Add(119 * time.Second))
	assert.Equal(t, Locked, d.Status)
	assert.Equal(t, 1, d.WaitSeconds)
}

func TestLockoutClearsAtBoundary(t *testing.T) {
	var s State
	s.RecordLockout(t0)

	d := s.Check(t0.Add(120 * time.Second))
	assert.Equal(t, Admitted, d.Status)
	assert.True(t, s.LockoutUntil.IsZero(), "expired lockout should be cleared by Check")
}

func TestLockoutTakesPrecedenceOverSpacing(t *testing.T) {
	var s State
	s.RecordRequest(t0)
	s.RecordLockout(t0)

	d := s.Check(t0.Add(1 * time.Second))
	assert.Equal(t, Locked, d.Status)
}

func TestSpacingStillAppliesAfterLockoutClears(t *testing.T) {
	var s State
	s.RecordLockout(t0)
	// request dispatched just before lockout expiry, e.g. by another tab
	s.RecordRequest(t0.Add(119 * time.Second))

	d := s.Check(t0.Add(120 * time.Second))
	assert.Equal(t, Refused, d.Status)
	assert.Equal(t, 2, d.WaitSeconds)
}

func TestRecordRequestDoesNotTouchLockout(t *testing.T) {
	var s State
	s.RecordLockout(t0)
	s.RecordRequest(t0.Add(time.Second))
	assert.False(t, s.LockoutUntil.IsZero())
}
