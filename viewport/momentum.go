package viewport

import "math"

// Momentum tuning constants. The decay is a discrete damped exponential, not
// a physically exact integrator: reproducible trajectories require the same
// tick cadence and the same constants.
const (
	// momentumSmoothing is the exponential smoothing factor applied to
	// per-sample drag velocity.
	momentumSmoothing = 0.7
	// momentumFriction is the per-tick velocity decay factor.
	momentumFriction = 0.95
	// momentumStartSpeed is the release speed (px/s) above which momentum
	// activates.
	momentumStartSpeed = 30.0
	// momentumStopSpeed is the speed (px/s) below which momentum stops.
	momentumStopSpeed = 5.0
	// momentumMaxSpeed caps the velocity magnitude (px/s).
	momentumMaxSpeed = 2000.0
	// maxSampleGap rejects drag samples older than this (seconds).
	maxSampleGap = 0.1
	// minStepDelta / maxStepDelta clamp the tick time delta to keep
	// irregular tick spacing from producing jumps.
	minStepDelta = 1.0 / 120.0
	maxStepDelta = 1.0 / 30.0
	// minDisplacement is the smallest per-tick pan worth applying (px).
	minDisplacement = 0.05
)

// Momentum converts a sequence of drag samples into a decaying velocity that
// keeps panning the viewport after the pointer is released.
type Momentum struct {
	vx, vy float64
	active bool
}

// StartDrag resets the velocity state. Any running momentum animation is
// cancelled.
func (m *Momentum) StartDrag() {
	m.vx = 0
	m.vy = 0
	m.active = false
}

// Sample feeds one drag movement into the velocity estimate. dt is the time
// since the previous sample in seconds; samples outside (0, 0.1s) are
// rejected as stale or garbage.
func (m *Momentum) Sample(dt, dx, dy float64) {
	if dt <= 0 || dt >= maxSampleGap {
		return
	}
	m.vx = m.vx*momentumSmoothing + (dx/dt)*(1.0-momentumSmoothing)
	m.vy = m.vy*momentumSmoothing + (dy/dt)*(1.0-momentumSmoothing)
}

// Release activates momentum if the accumulated release speed exceeds the
// start threshold. Below it the velocity is zeroed.
func (m *Momentum) Release() bool {
	if m.Speed() > momentumStartSpeed {
		m.active = true
	} else {
		m.vx = 0
		m.vy = 0
		m.active = false
	}
	return m.active
}

// Active reports whether a momentum animation is running.
func (m *Momentum) Active() bool {
	return m.active
}

// Speed returns the current velocity magnitude in px/s.
func (m *Momentum) Speed() float64 {
	return math.Sqrt(m.vx*m.vx + m.vy*m.vy)
}

// Step advances the animation by one tick. dt is the elapsed time in seconds,
// clamped to [1/120, 1/30]. It returns the pan displacement for this tick;
// ok is false once momentum has decayed below the stop threshold, at which
// point the velocity is zeroed.
func (m *Momentum) Step(dt float64) (dx, dy float64, ok bool) {
	if !m.active {
		return 0, 0, false
	}

	if speed := m.Speed(); speed > momentumMaxSpeed {
		scale := momentumMaxSpeed / speed
		m.vx *= scale
		m.vy *= scale
	}

	m.vx *= momentumFriction
	m.vy *= momentumFriction

	dt = math.Max(minStepDelta, math.Min(maxStepDelta, dt))

	dx = m.vx * dt
	dy = m.vy * dt
	if math.Abs(dx) <= minDisplacement && math.Abs(dy) <= minDisplacement {
		dx, dy = 0, 0
	}

	if m.Speed() < momentumStopSpeed {
		m.vx = 0
		m.vy = 0
		m.active = false
		return dx, dy, false
	}
	return dx, dy, true
}
