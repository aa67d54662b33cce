package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sparkbench/airplane-sim/internal/bench"
	"github.com/sparkbench/airplane-sim/internal/physics"
	"github.com/sparkbench/airplane-sim/internal/state"
	"github.com/sparkbench/airplane-sim/pkg/types"
)

// Bridge is the slice of bench.Client the clock needs. Defined here,
// on the consuming side, so tests can substitute a fake bench.
type Bridge interface {
	State() bench.ConnectionState
	ReadNext() (bench.Event, error)
	Send(cmd any) error
}

// Reporter consumes telemetry samples. It produces no feedback into
// the loop.
type Reporter interface {
	Report(s types.Sample)
}

// Config holds simulation clock settings.
type Config struct {
	TickInterval time.Duration // physics timestep and send cadence
	EveryNTicks  int           // telemetry sample interval, in ticks
	PitotPartID  string
	StaticPartID string
}

// DefaultConfig returns the 50 ms / once-per-second loop the
// autothrottle bench expects.
func DefaultConfig() Config {
	return Config{
		TickInterval: 50 * time.Millisecond,
		EveryNTicks:  20,
		PitotPartID:  "pitot",
		StaticPartID: "static",
	}
}

// Clock drives the closed loop: a receive goroutine keeps the throttle
// current from inbound state frames while the fixed-rate tick loop
// integrates physics and pushes sensor pressures back to the bench.
type Clock struct {
	bridge   Bridge
	aircraft *state.Aircraft
	params   physics.Parameters
	reporter Reporter
	cfg      Config
	log      *zap.Logger
}

// NewClock wires a clock to its collaborators.
func NewClock(bridge Bridge, aircraft *state.Aircraft, params physics.Parameters, reporter Reporter, cfg Config, log *zap.Logger) *Clock {
	return &Clock{
		bridge:   bridge,
		aircraft: aircraft,
		params:   params,
		reporter: reporter,
		cfg:      cfg,
		log:      log,
	}
}

// Run blocks, ticking at the configured fixed rate until ctx is
// cancelled, and returns ctx.Err(). The receive path runs alongside;
// if the connection drops mid-session the receive path ends but the
// tick loop keeps advancing physics on the last known throttle.
func (c *Clock) Run(ctx context.Context) error {
	if c.cfg.TickInterval == 0 {
		c.cfg.TickInterval = 50 * time.Millisecond
	}
	every := c.cfg.EveryNTicks
	if every <= 0 {
		every = 20
	}

	go c.receiveLoop(ctx)

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Fixed-rate loop: a skipped tick still consumed its slot.
			if c.bridge.State() != bench.StateConnected {
				continue
			}
			tick++
			c.step(tick%every == 0)
		}
	}
}

// step advances physics by one timestep, pushes the derived sensor
// pressures and a state poll to the bench, and optionally surfaces a
// telemetry sample.
func (c *Clock) step(report bool) {
	dt := c.cfg.TickInterval.Seconds()
	throttle := c.aircraft.Throttle()

	v := physics.Step(c.params, c.aircraft.Airspeed(), throttle, dt)
	c.aircraft.SetAirspeed(v)

	pitot := physics.PitotPressure(c.params, v)

	// Pitot, static, then poll. Sends are independent best-effort
	// telemetry; a broken connection must not abort the tick.
	c.send(bench.NewPressureCommand(c.cfg.PitotPartID, pitot))
	c.send(bench.NewPressureCommand(c.cfg.StaticPartID, c.params.StaticPressure))
	c.send(bench.NewStatePoll())

	if report && c.reporter != nil {
		c.reporter.Report(types.Sample{
			Airspeed:        v,
			ThrottleDeg:     throttle,
			Thrust:          physics.Thrust(c.params, throttle),
			Drag:            physics.Drag(c.params, v),
			DynamicPressure: physics.DynamicPressure(c.params, v),
			PitotPressure:   pitot,
		})
	}
}

func (c *Clock) send(cmd any) {
	if err := c.bridge.Send(cmd); err != nil {
		c.log.Debug("bench send failed", zap.Error(err))
	}
}

// receiveLoop applies inbound events until the connection or ctx ends.
func (c *Clock) receiveLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		ev, err := c.bridge.ReadNext()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("bench receive path closed", zap.Error(err))
			}
			return
		}

		switch ev.Type {
		case bench.EventState:
			if ev.HasThrottle {
				c.aircraft.SetThrottle(ev.ThrottleAngle)
			}
		case bench.EventSerial:
			if bench.IsTelemetryLine(ev.Line) {
				// Reserved for autothrottle telemetry parsing.
				continue
			}
			c.log.Debug("controller serial", zap.String("line", ev.Line))
		case bench.EventError:
			c.log.Error("bench reported error", zap.String("message", ev.Message))
		case bench.EventReady, bench.EventUnrecognized:
			// Ready is consumed during connect; anything unrecognized
			// is a no-op.
		}
	}
}
