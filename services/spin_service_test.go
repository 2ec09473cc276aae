package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanSpinCooldownBoundary(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, CanSpin(nil, last))
	assert.False(t, CanSpin(&last, last))
	assert.False(t, CanSpin(&last, last.Add(SpinCooldown-time.Second)))
	assert.True(t, CanSpin(&last, last.Add(SpinCooldown)))
	assert.True(t, CanSpin(&last, last.Add(SpinCooldown+time.Minute)))
}

func TestSpinRemaining(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, SpinRemaining(nil, last))
	assert.Equal(t, 23*time.Hour, SpinRemaining(&last, last.Add(time.Hour)))
	assert.Zero(t, SpinRemaining(&last, last.Add(25*time.Hour)))
}

func TestLandingRotationCentersSegment(t *testing.T) {
	assert.InDelta(t, 2092.5, landingRotation(1, 5), 0.001)
	assert.InDelta(t, 337.5, landingRotation(0, 0), 0.001)
}

func newSpinService(f *fixture, draws ...int) *SpinService {
	s := NewSpinService(f.store, f.log)
	s.now = f.clock
	i := 0
	s.intn = func(n int) int {
		v := 0
		if i < len(draws) {
			v = draws[i] % n
		}
		i++
		return v
	}
	return s
}

func TestSpinStatusForNewUser(t *testing.T) {
	f := newFixture(t)
	svc := newSpinService(f)
	u := f.user(0)

	st, err := svc.Status(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, st.CanSpin)
	assert.Nil(t, st.LastSpinAt)
	assert.Zero(t, st.RemainingSeconds)
	assert.Equal(t, WheelSegments, st.Segments)
}

func TestSpinOnlyLandsOnLosingSegments(t *testing.T) {
	for draw := range LosingSegments {
		f := newFixture(t)
		svc := newSpinService(f, draw, 0)
		u := f.user(0)

		out, err := svc.Spin(f.ctx, u.ID)
		require.NoError(t, err)
		assert.Contains(t, LosingSegments, out.Index)
		assert.Equal(t, WheelSegments[out.Index], out.Label)
		assert.NotContains(t, out.Label, "₹")
	}
}

func TestSpinStartsCooldown(t *testing.T) {
	f := newFixture(t)
	svc := newSpinService(f, 2, 1, 0, 0)
	u := f.user(0)

	out, err := svc.Spin(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Index)
	assert.InDelta(t, 6*360+(360-5*45-22.5), out.Rotation, 0.001)
	assert.False(t, out.Status.CanSpin)
	assert.Equal(t, int64(SpinCooldown/time.Second), out.Status.RemainingSeconds)

	f.advance(23 * time.Hour)
	_, err = svc.Spin(f.ctx, u.ID)
	require.ErrorIs(t, err, ErrSpinCooldown)

	st, err := svc.Status(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), st.RemainingSeconds)

	f.advance(time.Hour)
	_, err = svc.Spin(f.ctx, u.ID)
	require.NoError(t, err)
}

func TestSpinUnknownUser(t *testing.T) {
	f := newFixture(t)
	svc := newSpinService(f)

	_, err := svc.Spin(f.ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSpinSaveFailureKeepsSpinAvailable(t *testing.T) {
	f := newFixture(t)
	svc := newSpinService(f)
	u := f.user(0)
	f.store.FailOn("SaveSpinRecord", errBoom)

	_, err := svc.Spin(f.ctx, u.ID)
	require.ErrorIs(t, err, errBoom)

	st, err := svc.Status(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, st.CanSpin)
}
