package state

import (
	"sync"

	"github.com/sparkbench/airplane-sim/internal/physics"
)

// Aircraft holds the mutable simulation record shared between the
// protocol receive path and the simulation clock. The receive path
// writes the throttle, the clock writes the airspeed; the mutex keeps
// composite reads consistent for telemetry.
type Aircraft struct {
	mu          sync.RWMutex
	airspeed    float64 // m/s, >= 0
	throttleDeg float64 // servo degrees, 0-180
}

// Snapshot is a consistent copy of the aircraft record.
type Snapshot struct {
	Airspeed    float64
	ThrottleDeg float64
}

// New returns an aircraft at rest with the throttle at idle.
func New() *Aircraft {
	return &Aircraft{}
}

// SetThrottle stores a new throttle servo angle, clamped to [0,180].
func (a *Aircraft) SetThrottle(deg float64) {
	if deg < physics.MinServoDeg {
		deg = physics.MinServoDeg
	} else if deg > physics.MaxServoDeg {
		deg = physics.MaxServoDeg
	}
	a.mu.Lock()
	a.throttleDeg = deg
	a.mu.Unlock()
}

// Throttle returns the current throttle servo angle.
func (a *Aircraft) Throttle() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.throttleDeg
}

// SetAirspeed stores a new airspeed, clamped to non-negative.
func (a *Aircraft) SetAirspeed(v float64) {
	if v < 0 {
		v = 0
	}
	a.mu.Lock()
	a.airspeed = v
	a.mu.Unlock()
}

// Airspeed returns the current airspeed in m/s.
func (a *Aircraft) Airspeed() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.airspeed
}

// Get returns both fields read under a single lock.
func (a *Aircraft) Get() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{Airspeed: a.airspeed, ThrottleDeg: a.throttleDeg}
}
