// Package sim implements the Scheduler/Executive module (spec.md §4.1):
// the fixed-rate driver that owns the module pipeline, the property
// bus, and the hold/trim/resume/hold-down state machine.
package sim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zerodha/logf"

	"camsim/internal/propbus"
)

// Module is one pipeline stage (spec.md §2's C3-C13). Executive calls
// Update in strict registration order every base tick the module's rate
// divisor permits.
type Module struct {
	Name         string
	RateDivisor  int // update every RateDivisor-th base tick; 1 = every tick
	Update       func(dt float64) error
	executionCount uint64
}

// State is the Executive's run state (spec.md §5).
type State int

const (
	Running State = iota
	Holding
	Trimming
	HoldDown
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Holding:
		return "holding"
	case Trimming:
		return "trimming"
	case HoldDown:
		return "hold-down"
	default:
		return "unknown"
	}
}

// Divergence thresholds (spec.md §6 exit code 5).
const (
	MaxForceMagnitudeLbf   = 1e8
	MaxMomentMagnitudeLbFt = 5e9
	MaxCompressionFt       = 500
	MaxSinkRateFtS         = 1.4666 * 30
)

// DivergenceError reports which invariant tripped (spec.md §6/§7).
type DivergenceError struct {
	Reason string
}

func (e *DivergenceError) Error() string { return "divergence: " + e.Reason }

// Executive drives the fixed-rate tick loop (spec.md §4.1).
type Executive struct {
	RunID  uuid.UUID
	Logger logf.Logger

	Bus *propbus.Bus

	DtSec float64
	modules []*Module

	state        State
	simTimeSec   float64
	baseTick     uint64
	quitRequested bool
}

// New constructs an Executive with a fresh run ID and the given base
// step and property bus.
func New(bus *propbus.Bus, dtSec float64, logger logf.Logger) *Executive {
	return &Executive{
		RunID:  uuid.New(),
		Logger: logger,
		Bus:    bus,
		DtSec:  dtSec,
		state:  Running,
	}
}

// Register appends a module to the pipeline. Call during setup only;
// spec.md §4.1 evaluation order is strictly registration order.
func (e *Executive) Register(m *Module) {
	if m.RateDivisor <= 0 {
		m.RateDivisor = 1
	}
	e.modules = append(e.modules, m)
}

func (e *Executive) State() State        { return e.state }
func (e *Executive) SimTimeSec() float64 { return e.simTimeSec }

// Hold transitions to Holding; resumed ticks are skipped until Resume.
func (e *Executive) Hold() { e.state = Holding }

// Resume returns to Running from Holding or Trimming.
func (e *Executive) Resume() {
	if e.state == Holding || e.state == Trimming {
		e.state = Running
	}
}

// Trim transitions to Trimming: cmd/camsim skips Propagate's integration
// step in this state while Accelerations and the rest of the pipeline keep
// evaluating so a trim solver can converge on a steady-state control
// setting (spec.md §4.1/§4.11).
func (e *Executive) Trim() { e.state = Trimming }

// EnterHoldDown transitions to HoldDown (spec.md §4.10/§4.11): v̇_body
// and ω̇_body are forced to zero and the ECI state stays fixed relative
// to the rotating Earth.
func (e *Executive) EnterHoldDown() { e.state = HoldDown }

// RequestQuit sets the cooperative-cancellation flag honored at the
// next tick boundary (spec.md §5).
func (e *Executive) RequestQuit() { e.quitRequested = true }

// QuitRequested reports whether a "quit" command is pending.
func (e *Executive) QuitRequested() bool { return e.quitRequested }

// Step advances the simulation by one base tick: every registered
// module whose rate divisor divides the current base tick count runs,
// in registration order. A module's error is a non-recoverable fault
// (spec.md §4.1): the Executive engages Holding and returns the error
// wrapped with the module's name rather than attempting to continue
// with partial state.
func (e *Executive) Step() error {
	if e.state == Holding {
		return nil
	}

	for _, m := range e.modules {
		if e.baseTick%uint64(m.RateDivisor) != 0 {
			continue
		}
		if err := m.Update(e.DtSec); err != nil {
			e.state = Holding
			e.Logger.Error("module fault, engaging hold", "module", m.Name, "error", err)
			return fmt.Errorf("module %q: %w", m.Name, err)
		}
		m.executionCount++
	}

	e.baseTick++
	e.simTimeSec += e.DtSec
	return nil
}

// CheckDivergence applies spec.md §6's runtime-divergence thresholds.
// Callers run this once per tick after Accelerations/Ground Reactions,
// passing the quantities those modules just computed.
func CheckDivergence(forceMagnitudeLbf, momentMagnitudeLbFt, maxCompressionFt, sinkRateFtS float64) error {
	switch {
	case forceMagnitudeLbf > MaxForceMagnitudeLbf:
		return &DivergenceError{Reason: fmt.Sprintf("|F| %.3g exceeds %.3g lbf", forceMagnitudeLbf, MaxForceMagnitudeLbf)}
	case momentMagnitudeLbFt > MaxMomentMagnitudeLbFt:
		return &DivergenceError{Reason: fmt.Sprintf("|M| %.3g exceeds %.3g lb-ft", momentMagnitudeLbFt, MaxMomentMagnitudeLbFt)}
	case maxCompressionFt > MaxCompressionFt:
		return &DivergenceError{Reason: fmt.Sprintf("strut compression %.1f ft exceeds %.1f ft", maxCompressionFt, MaxCompressionFt)}
	case sinkRateFtS > MaxSinkRateFtS:
		return &DivergenceError{Reason: fmt.Sprintf("sink rate %.1f ft/s exceeds %.1f ft/s", sinkRateFtS, MaxSinkRateFtS)}
	}
	return nil
}

// ExitCode maps a terminal condition to spec.md §6's process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var de *DivergenceError
	if errors.As(err, &de) {
		return 5
	}
	return 4
}
