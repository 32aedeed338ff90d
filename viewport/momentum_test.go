package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentumActivatesAboveStartThreshold(t *testing.T) {
	var m Momentum
	m.StartDrag()

	// Steady 10px samples every 16ms: ~625 px/s, well above the threshold.
	for i := 0; i < 10; i++ {
		m.Sample(0.016, 10, 0)
	}
	require.Greater(t, m.Speed(), momentumStartSpeed)
	assert.True(t, m.Release())
	assert.True(t, m.Active())
}

func TestMomentumStaysInactiveBelowStartThreshold(t *testing.T) {
	var m Momentum
	m.StartDrag()

	m.Sample(0.016, 0.2, 0)
	assert.False(t, m.Release())
	assert.False(t, m.Active())
	assert.Zero(t, m.Speed())
}

func TestMomentumRejectsStaleSamples(t *testing.T) {
	var m Momentum
	m.StartDrag()

	m.Sample(0.5, 500, 0) // gap too long
	m.Sample(0, 500, 0)   // zero interval
	m.Sample(-0.01, 500, 0)
	assert.Zero(t, m.Speed())
}

func TestMomentumDecaysToStop(t *testing.T) {
	var m Momentum
	m.StartDrag()
	for i := 0; i < 20; i++ {
		m.Sample(0.016, 8, 0)
	}
	require.True(t, m.Release())

	total := 0.0
	ticks := 0
	for {
		dx, _, ok := m.Step(1.0 / 60.0)
		total += dx
		ticks++
		if !ok {
			break
		}
		require.Less(t, ticks, 1000, "momentum must terminate")
	}

	assert.False(t, m.Active())
	assert.Zero(t, m.Speed(), "velocity is zeroed once momentum stops")

	// Total distance approximates the geometric series sum of the decaying
	// velocity: v0·f·dt · (1 - f^n) / (1 - f).
	v0 := 8.0 / 0.016 * (1 - math.Pow(momentumSmoothing, 20))
	dt := 1.0 / 60.0
	f := momentumFriction
	expected := v0 * f * dt * (1 - math.Pow(f, float64(ticks))) / (1 - f)
	assert.InDelta(t, expected, total, expected*0.05)
}

func TestMomentumStepClampsDelta(t *testing.T) {
	var m Momentum
	m.StartDrag()
	for i := 0; i < 10; i++ {
		m.Sample(0.016, 16, 0)
	}
	require.True(t, m.Release())

	speedBefore := m.Speed()

	// A huge frame gap must be treated as 1/30s at most.
	dx, _, _ := m.Step(2.0)
	assert.LessOrEqual(t, dx, speedBefore*momentumFriction*maxStepDelta+1e-9)

	// A tiny gap is stretched up to 1/120s.
	speedBefore = m.Speed()
	dx, _, _ = m.Step(0.0001)
	assert.InDelta(t, speedBefore*momentumFriction*minStepDelta, dx, 1e-9)
}

func TestStartDragCancelsMomentum(t *testing.T) {
	var m Momentum
	for i := 0; i < 10; i++ {
		m.Sample(0.016, 20, 0)
	}
	require.True(t, m.Release())

	m.StartDrag()
	assert.False(t, m.Active())
	_, _, ok := m.Step(1.0 / 60.0)
	assert.False(t, ok)
}
