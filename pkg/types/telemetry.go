package types

// Sample is a snapshot of computed flight values surfaced to the
// telemetry reporter once per reporting interval.
type Sample struct {
	Airspeed        float64 // m/s
	ThrottleDeg     float64 // servo degrees, 0-180
	Thrust          float64 // N
	Drag            float64 // N
	DynamicPressure float64 // Pa
	PitotPressure   float64 // Pa
}

// ThrottlePercent returns the throttle position as a 0-100 percentage.
func (s Sample) ThrottlePercent() float64 {
	return s.ThrottleDeg / 180.0 * 100.0
}
