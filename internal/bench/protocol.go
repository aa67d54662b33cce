package bench

import (
	"encoding/json"
	"math"
	"strings"
)

// Inbound frame type tags used by the SparkBench API.
const (
	frameReady  = "ready"
	frameState  = "state"
	frameSerial = "serial"
	frameError  = "error"
)

// serialTelemetryPrefix marks autothrottle debug lines reserved for
// future telemetry parsing. Recognized but currently unused.
const serialTelemetryPrefix = "AT:"

// EventType discriminates decoded inbound frames.
type EventType int

const (
	// EventUnrecognized is a frame that failed to decode or carried an
	// unknown type tag. Treated as a no-op by all consumers.
	EventUnrecognized EventType = iota
	EventReady
	EventState
	EventSerial
	EventError
)

// Part describes one bench component from the ready frame inventory.
type Part struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// SessionInfo carries the project identity announced in the ready frame.
type SessionInfo struct {
	Project string
	Parts   []Part
}

// Event is one decoded inbound frame. Only the fields matching Type
// are populated.
type Event struct {
	Type    EventType
	Session SessionInfo // EventReady

	// EventState: most recent servo angle seen among actuator parts,
	// plus the raw serial lines the bench captured since the last poll.
	ThrottleAngle float64
	HasThrottle   bool
	SerialLines   []string

	Line    string // EventSerial
	Message string // EventError
}

// SetControl commands the bench to drive one control of a part. Used
// to feed pressure readings into the pitot and static sensors.
type SetControl struct {
	Cmd     string `json:"cmd"`
	PartID  string `json:"partId"`
	Control string `json:"control"`
	Value   int64  `json:"value"`
}

// GetState requests a fresh state snapshot, which the bench answers
// with an inbound state frame.
type GetState struct {
	Cmd string `json:"cmd"`
}

// NewPressureCommand builds a set-control command writing a rounded
// pascal reading to the named sensor part.
func NewPressureCommand(partID string, pascals float64) SetControl {
	return SetControl{
		Cmd:     "set-control",
		PartID:  partID,
		Control: "pressure",
		Value:   int64(math.Round(pascals)),
	}
}

// NewStatePoll builds a get-state command.
func NewStatePoll() GetState {
	return GetState{Cmd: "get-state"}
}

// inboundFrame is the superset envelope of all inbound frames. The
// parts key is an array in ready frames and an object in state frames,
// so it stays raw until the type tag is known.
type inboundFrame struct {
	Type    string          `json:"type"`
	Project string          `json:"project"`
	Parts   json.RawMessage `json:"parts"`
	Serial  json.RawMessage `json:"serial"`
	Data    string          `json:"data"`
	Message string          `json:"message"`
}

// partState is the per-part attribute object inside a state frame.
type partState struct {
	Type  string  `json:"type"`
	Angle float64 `json:"angle"`
}

// DecodeEvent decodes one raw inbound frame. Malformed payloads yield
// an EventUnrecognized event rather than an error: the bridge drops
// them silently and the simulation carries on.
func DecodeEvent(raw []byte) Event {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Event{Type: EventUnrecognized}
	}

	switch f.Type {
	case frameReady:
		ev := Event{Type: EventReady, Session: SessionInfo{Project: f.Project}}
		if len(f.Parts) > 0 {
			// A malformed inventory still counts as a ready ack.
			_ = json.Unmarshal(f.Parts, &ev.Session.Parts)
		}
		return ev

	case frameState:
		ev := Event{Type: EventState}
		var parts map[string]partState
		if len(f.Parts) > 0 && json.Unmarshal(f.Parts, &parts) == nil {
			for _, p := range parts {
				if isActuator(p.Type) {
					ev.ThrottleAngle = p.Angle
					ev.HasThrottle = true
				}
			}
		}
		if len(f.Serial) > 0 {
			_ = json.Unmarshal(f.Serial, &ev.SerialLines)
		}
		return ev

	case frameSerial:
		return Event{Type: EventSerial, Line: f.Data}

	case frameError:
		return Event{Type: EventError, Message: f.Message}

	default:
		return Event{Type: EventUnrecognized}
	}
}

// isActuator reports whether a part type names a servo-style actuator
// whose angle is consumed as throttle position.
func isActuator(partType string) bool {
	return strings.Contains(partType, "servo")
}

// IsTelemetryLine reports whether a serial line carries the reserved
// autothrottle telemetry prefix.
func IsTelemetryLine(line string) bool {
	return strings.HasPrefix(line, serialTelemetryPrefix)
}
