package telemetry

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/sparkbench/airplane-sim/internal/bench"
	"github.com/sparkbench/airplane-sim/internal/physics"
	"github.com/sparkbench/airplane-sim/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	partStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Reporter renders operator-facing status to a terminal. It consumes
// computed samples and never feeds anything back into the loop.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	history []float64 // indicated airspeed in knots, one per sample
}

// NewReporter writes human-readable telemetry to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Banner prints the session header: project identity, part inventory,
// and the aircraft constants in play.
func (r *Reporter) Banner(session bench.SessionInfo, params physics.Parameters, altitudeFt int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule := ruleStyle.Render(strings.Repeat("=", 60))
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, titleStyle.Render(" Mini Airplane Simulator"))
	fmt.Fprintln(r.w, rule)
	if session.Project != "" {
		fmt.Fprintf(r.w, "  Project:    %s\n", session.Project)
	}
	for _, p := range session.Parts {
		fmt.Fprintf(r.w, "  %s\n", partStyle.Render(fmt.Sprintf("%-12s %s", p.ID, p.Type)))
	}
	fmt.Fprintf(r.w, "  Mass:       %.0f kg\n", params.Mass)
	fmt.Fprintf(r.w, "  Max thrust: %.0f N\n", params.MaxThrust)
	fmt.Fprintf(r.w, "  Altitude:   %d ft\n", altitudeFt)
	fmt.Fprintf(r.w, "  Static:     %.0f Pa\n", params.StaticPressure)
	fmt.Fprintln(r.w)
}

// Report renders one overwriting status line and records the airspeed
// for the shutdown trace.
func (r *Reporter) Report(s types.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, physics.Knots(s.Airspeed))

	fmt.Fprintf(r.w, "\r%s %6.1f kt  %s %3.0f%%  %s %6.0f/%6.0f N  %s %7.0f Pa  %s %8.0f Pa",
		labelStyle.Render("IAS:"), physics.Knots(s.Airspeed),
		labelStyle.Render("THR:"), s.ThrottlePercent(),
		labelStyle.Render("T/D:"), s.Thrust, s.Drag,
		labelStyle.Render("Qc:"), s.DynamicPressure,
		labelStyle.Render("Pitot:"), s.PitotPressure)
}

// Errorf surfaces an operator-facing error line.
func (r *Reporter) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Trace prints the recorded airspeed history as an ASCII graph. A
// session with fewer than two samples has nothing worth plotting.
func (r *Reporter) Trace() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) < 2 {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, labelStyle.Render("Airspeed trace (kt):"))
	fmt.Fprintln(r.w, asciigraph.Plot(r.history, asciigraph.Height(8), asciigraph.Width(60)))
}

// SampleCount returns how many samples have been reported.
func (r *Reporter) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}
