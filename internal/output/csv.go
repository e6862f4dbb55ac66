// Package output is the external-collaborator CSV writer (spec.md §6):
// one header row followed by one line per recorded tick, columns in the
// fixed subsystem order the spec lays out, read straight off the
// property bus so the writer never needs its own copy of the state.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"camsim/internal/propbus"
)

// Columns is the fixed output column order: simulation time, then
// aerosurfaces, rates, velocities, forces, moments, atmosphere,
// massprops, propagate. There are no coefficient, FCS, ground-reaction
// or propulsion columns. Every entry is a property path; a path absent
// from the bus is a Configuration error, caught by NewWriter rather than
// silently printing zeros for the life of the run.
var Columns = []string{
	"sim-time-sec",

	"fcs/aileron-cmd-norm", "fcs/elevator-cmd-norm", "fcs/rudder-cmd-norm", "fcs/flap-cmd-norm",
	"fcs/aileron-pos-rad", "fcs/elevator-pos-rad", "fcs/rudder-pos-rad", "fcs/flap-pos-rad",

	"velocities/p-rad_sec", "velocities/q-rad_sec", "velocities/r-rad_sec",
	"accelerations/pdot-rad_sec2", "accelerations/qdot-rad_sec2", "accelerations/rdot-rad_sec2",

	"aero/qbar-psf", "velocities/vt-fps",
	"velocities/u-body-fps", "velocities/v-body-fps", "velocities/w-body-fps",
	"aero/u-aero-fps", "aero/v-aero-fps", "aero/w-aero-fps",
	"velocities/v-north-fps", "velocities/v-east-fps", "velocities/v-down-fps",

	"forces/fdrag-lbs", "forces/fside-lbs", "forces/flift-lbs",
	"aero/lod", "forces/fbx-lbs", "forces/fby-lbs", "forces/fbz-lbs",

	"moments/l-lbsft", "moments/m-lbsft", "moments/n-lbsft",

	"atmosphere/rho-slugs_ft3",
	"atmosphere/wind-north-fps", "atmosphere/wind-east-fps", "atmosphere/wind-down-fps",

	"inertia/ixx-slugs_ft2", "inertia/iyy-slugs_ft2", "inertia/izz-slugs_ft2",
	"inertia/mass-slugs",
	"inertia/cg-x-in", "inertia/cg-y-in", "inertia/cg-z-in",

	"position/h-sl-ft",
	"attitude/phi-rad", "attitude/theta-rad", "attitude/psi-rad",
	"aero/alpha-rad", "aero/beta-rad",
	"position/lat-gc-rad", "position/long-gc-rad",
	"position/h-agl-ft", "position/runway-radius-ft",
}

// Writer formats one row per recorded tick (spec.md §6). Build once
// after every module has bound its properties, then call WriteTick from
// the Executive's main loop at the configured output rate.
type Writer struct {
	w          *csv.Writer
	bus        *propbus.Bus
	columns    []string
	rateHz     float64
	nextDueSec float64
	headerDone bool
}

// NewWriter validates that every requested column is bound on bus and
// returns a Writer ready to emit rows. rateHz <= 0 means every tick.
func NewWriter(dst io.Writer, bus *propbus.Bus, columns []string, rateHz float64) (*Writer, error) {
	for _, name := range columns {
		if !bus.Has(name) {
			return nil, fmt.Errorf("output: column %q is not bound on the property bus", name)
		}
	}
	return &Writer{
		w:       csv.NewWriter(dst),
		bus:     bus,
		columns: columns,
		rateHz:  rateHz,
	}, nil
}

// WriteTick emits the header (once) and, if simTimeSec has reached the
// next due sample per the configured rate, one data row. Call every
// Executive tick; throttling is handled internally.
func (w *Writer) WriteTick(simTimeSec float64) error {
	if !w.headerDone {
		if err := w.w.Write(w.columns); err != nil {
			return fmt.Errorf("output: write header: %w", err)
		}
		w.headerDone = true
	}

	if w.rateHz > 0 && simTimeSec < w.nextDueSec {
		return nil
	}

	row := make([]string, len(w.columns))
	for i, name := range w.columns {
		v, _ := w.bus.Get(name)
		row[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("output: write row: %w", err)
	}

	if w.rateHz > 0 {
		w.nextDueSec += 1.0 / w.rateHz
	}
	return nil
}

// Flush pushes any buffered rows to the underlying writer. Call once at
// the end of a run.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
