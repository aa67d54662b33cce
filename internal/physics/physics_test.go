package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrustClampsServoRange(t *testing.T) {
	p := DefaultParameters()

	tests := []struct {
		name     string
		servoDeg float64
		want     float64
	}{
		{"below range clamps to idle", -45, p.IdleThrust},
		{"at idle", 0, p.IdleThrust},
		{"midpoint", 90, p.IdleThrust + (p.MaxThrust-p.IdleThrust)/2},
		{"at full deflection", 180, p.MaxThrust},
		{"above range clamps to max", 270, p.MaxThrust},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Thrust(p, tt.servoDeg), 1e-9)
		})
	}
}

func TestDragOpposesMotion(t *testing.T) {
	p := DefaultParameters()
	assert.Positive(t, Drag(p, 30))
	assert.Negative(t, Drag(p, -30))
	assert.Zero(t, Drag(p, 0))
}

func TestFirstStepFromStandstillAtFullThrottle(t *testing.T) {
	p := DefaultParameters()

	// thrust=2500N, drag=0 => accel = 2500/900 ≈ 2.778 m/s²
	v := Step(p, 0, 180, 0.05)
	assert.InDelta(t, 2500.0/900.0*0.05, v, 1e-9)
	assert.InDelta(t, 0.1389, v, 1e-4)
}

func TestCoastDownReachesRestAndStaysThere(t *testing.T) {
	// Zero idle thrust so the only force is drag: airspeed must decay
	// monotonically to exactly zero and stay there.
	p := DefaultParameters()
	p.IdleThrust = 0

	v := 40.0
	for i := 0; i < 100000 && v > 0; i++ {
		next := Step(p, v, 0, 0.05)
		require.Less(t, next, v, "airspeed must strictly decrease while moving")
		v = next
	}
	// Drag alone cannot reverse flight; rest is a fixed point.
	assert.Equal(t, 0.0, Step(p, 0, 0, 0.05))
}

func TestConvergesToTerminalVelocityWithoutOvershoot(t *testing.T) {
	p := DefaultParameters()
	dt := 0.05

	// Terminal velocity: thrust = drag => v = sqrt(2*T / (rho*CdA)).
	want := math.Sqrt(2 * p.MaxThrust / (p.AirDensity * p.DragArea))
	assert.InDelta(t, 58.3, want, 0.1)

	v := 0.0
	maxSeen := 0.0
	for i := 0; i < 20000; i++ {
		v = Step(p, v, 180, dt)
		if v > maxSeen {
			maxSeen = v
		}
	}
	assert.InDelta(t, want, v, 0.1)

	// Any overshoot is bounded by one integration step's delta.
	stepDelta := p.MaxThrust / p.Mass * dt
	assert.LessOrEqual(t, maxSeen, want+stepDelta)
}

func TestPressuresAreConsistent(t *testing.T) {
	p := DefaultParameters()

	for _, v := range []float64{0, 1, 25.5, 58.3, 120} {
		qc := DynamicPressure(p, v)
		assert.GreaterOrEqual(t, qc, 0.0)
		assert.GreaterOrEqual(t, PitotPressure(p, v), p.StaticPressure)
		assert.InDelta(t, p.StaticPressure+qc, PitotPressure(p, v), 1e-9)
	}

	// At rest the pitot probe reads ambient.
	assert.InDelta(t, p.StaticPressure, PitotPressure(p, 0), 1e-9)
}

func TestKnots(t *testing.T) {
	assert.InDelta(t, 1.94384, Knots(1), 1e-5)
	assert.Zero(t, Knots(0))
}
