package physics

// Simplified longitudinal flight model: thrust is a linear function of
// the throttle servo angle, drag is parasitic only, and airspeed is
// integrated with forward Euler at a fixed timestep. There is no
// altitude coupling; the static port always reads ambient pressure.

const (
	// MinServoDeg and MaxServoDeg bound the throttle servo travel.
	MinServoDeg = 0.0
	MaxServoDeg = 180.0

	metersPerSecondToKnots = 1.94384
)

// Parameters defines the aircraft and atmosphere constants. Immutable
// at runtime; an aircraft definition file may override the defaults
// before the simulation starts.
type Parameters struct {
	Mass           float64 `yaml:"mass"`            // kg
	DragArea       float64 `yaml:"drag_area"`       // Cd * frontal area, m²
	IdleThrust     float64 `yaml:"idle_thrust"`     // N at servo 0
	MaxThrust      float64 `yaml:"max_thrust"`      // N at servo 180
	AirDensity     float64 `yaml:"air_density"`     // kg/m³
	StaticPressure float64 `yaml:"static_pressure"` // Pa, ambient
}

// DefaultParameters returns the light single-engine aircraft at sea
// level ISA used by the autothrottle bench.
func DefaultParameters() Parameters {
	return Parameters{
		Mass:           900,
		DragArea:       1.2,
		IdleThrust:     50,
		MaxThrust:      2500,
		AirDensity:     1.225,
		StaticPressure: 101325,
	}
}

// Thrust returns engine thrust in newtons for a throttle servo angle.
// Angles outside [0,180] are clamped before interpolation.
func Thrust(p Parameters, servoDeg float64) float64 {
	frac := clamp(servoDeg, MinServoDeg, MaxServoDeg) / MaxServoDeg
	return p.IdleThrust + frac*(p.MaxThrust-p.IdleThrust)
}

// Drag returns parasitic drag in newtons. The v*|v| form keeps the
// sign of the velocity so drag always opposes motion.
func Drag(p Parameters, v float64) float64 {
	return 0.5 * p.AirDensity * v * abs(v) * p.DragArea
}

// Step advances airspeed by dt seconds under the given throttle servo
// angle and returns the new airspeed, clamped to non-negative.
func Step(p Parameters, v, servoDeg, dt float64) float64 {
	accel := (Thrust(p, servoDeg) - Drag(p, v)) / p.Mass
	v += accel * dt
	if v < 0 {
		v = 0
	}
	return v
}

// DynamicPressure returns qc = 0.5 * rho * v² in pascals.
func DynamicPressure(p Parameters, v float64) float64 {
	return 0.5 * p.AirDensity * v * v
}

// PitotPressure returns the total pressure seen by a probe facing the
// airflow: static plus dynamic.
func PitotPressure(p Parameters, v float64) float64 {
	return p.StaticPressure + DynamicPressure(p, v)
}

// Knots converts meters per second to knots.
func Knots(ms float64) float64 {
	return ms * metersPerSecondToKnots
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
