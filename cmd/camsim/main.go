// Command camsim drives the flight-dynamics kernel end to end: it loads
// an aircraft description and optional run script, wires every module
// of the fixed-rate pipeline onto a shared property bus, and steps the
// Executive until the script's window ends, a divergence fires, or the
// console sends "quit" (spec.md §5/§6).
package main

import (
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/zerodha/logf"

	"camsim/internal/accelerations"
	"camsim/internal/aerodynamics"
	"camsim/internal/aircraft"
	"camsim/internal/atmosphere"
	"camsim/internal/auxiliary"
	"camsim/internal/config"
	"camsim/internal/console"
	"camsim/internal/earth"
	"camsim/internal/fcs"
	"camsim/internal/geodesy"
	"camsim/internal/ground"
	"camsim/internal/massbalance"
	"camsim/internal/output"
	"camsim/internal/propagate"
	"camsim/internal/propbus"
	"camsim/internal/propulsion"
	"camsim/internal/sim"
)

func main() {
	aircraftPath := flag.String("aircraft", "", "path to an aircraft description XML file")
	scriptPath := flag.String("script", "", "path to a runscript XML file (optional; overrides -duration/-dt)")
	outPath := flag.String("out", "", "CSV output path (default: stdout)")
	outRateHz := flag.Float64("out-rate", 20, "CSV output rate in Hz, 0 = every tick")
	consoleAddr := flag.String("console", "", "websocket console listen address, e.g. :8642 (empty disables it)")
	durationSec := flag.Float64("duration", 60, "run length in seconds when -script is not given")
	dtSec := flag.Float64("dt", 1.0/120, "base tick period in seconds when -script is not given")
	initAltFt := flag.Float64("alt-ft", 8000, "initial altitude above the WGS-84 ellipsoid, feet")
	initLatDeg := flag.Float64("lat-deg", 37.6, "initial geocentric latitude, degrees")
	initLonDeg := flag.Float64("lon-deg", -122.4, "initial longitude, degrees")
	initHeadingDeg := flag.Float64("heading-deg", 0, "initial heading, degrees")
	initVtFps := flag.Float64("vt-fps", 150, "initial true airspeed, ft/s")
	flag.Parse()

	logger := logf.New(logf.Opts{Level: logf.InfoLevel, EnableColor: true})

	if *aircraftPath == "" {
		logger.Error("startup: -aircraft is required")
		os.Exit(2)
	}

	exitCode := run(runOptions{
		aircraftPath:    *aircraftPath,
		scriptPath:      *scriptPath,
		outPath:         *outPath,
		outRateHz:       *outRateHz,
		consoleAddr:     *consoleAddr,
		durationSec:     *durationSec,
		dtSec:           *dtSec,
		initAltFt:       *initAltFt,
		initLatDeg:      *initLatDeg,
		initLonDeg:      *initLonDeg,
		initHeadingDeg:  *initHeadingDeg,
		initVtFps:       *initVtFps,
		logger:          logger,
	})
	os.Exit(exitCode)
}

type runOptions struct {
	aircraftPath   string
	scriptPath     string
	outPath        string
	outRateHz      float64
	consoleAddr    string
	durationSec    float64
	dtSec          float64
	initAltFt      float64
	initLatDeg     float64
	initLonDeg     float64
	initHeadingDeg float64
	initVtFps      float64
	logger         logf.Logger
}

// run wires and drives one simulation and returns the process exit code
// spec.md §6 defines: 0 complete, 2 XML parse failure, 3 missing
// aircraft file, 4 initialization failure, 5 runtime divergence.
func run(opt runOptions) int {
	aircraftFile, err := os.Open(opt.aircraftPath)
	if err != nil {
		opt.logger.Error("startup: cannot open aircraft file", "path", opt.aircraftPath, "error", err)
		return 3
	}
	defer aircraftFile.Close()

	cfg, err := config.ParseAircraft(aircraftFile)
	if err != nil {
		opt.logger.Error("startup: aircraft parse failed", "error", err)
		return 2
	}

	var script *config.Script
	if opt.scriptPath != "" {
		scriptFile, err := os.Open(opt.scriptPath)
		if err != nil {
			opt.logger.Error("startup: cannot open runscript", "path", opt.scriptPath, "error", err)
			return 3
		}
		script, err = config.ParseRunScript(scriptFile)
		scriptFile.Close()
		if err != nil {
			opt.logger.Error("startup: runscript parse failed", "error", err)
			return 2
		}
	}

	k, err := newKernel(cfg, opt)
	if err != nil {
		opt.logger.Error("startup: kernel build failed", "error", err)
		return 4
	}
	defer k.out.Flush()
	if k.closeOutputFile != nil {
		defer k.closeOutputFile()
	}

	if opt.consoleAddr != "" {
		srv := console.NewServer(k.dispatcher, opt.logger)
		go func() {
			if err := http.ListenAndServe(opt.consoleAddr, srv); err != nil {
				opt.logger.Error("console: listener exited", "error", err)
			}
		}()
		opt.logger.Info("console: listening", "addr", opt.consoleAddr)
	}

	endSec := opt.durationSec
	if script != nil {
		k.executive.DtSec = script.DtSec
		endSec = script.EndSec
	}

	for k.executive.SimTimeSec() < endSec {
		k.dispatcher.ApplyPending()
		if k.executive.QuitRequested() {
			break
		}

		if script != nil {
			k.applyScript(script)
		}

		if err := k.executive.Step(); err != nil {
			code := sim.ExitCode(err)
			opt.logger.Error("run: terminal condition", "error", err, "exit_code", code)
			return code
		}

		if err := k.out.WriteTick(k.executive.SimTimeSec()); err != nil {
			opt.logger.Error("output: write failed", "error", err)
			return 4
		}

		if err := k.checkDivergence(); err != nil {
			code := sim.ExitCode(err)
			opt.logger.Error("run: terminal condition", "error", err, "exit_code", code)
			return code
		}
	}

	opt.logger.Info("run: complete", "sim_time_sec", k.executive.SimTimeSec())
	return 0
}

// transitionKey identifies one when-block's set for the ramp state map:
// block/set slice position, since config.Script carries no other identity.
type transitionKey struct {
	block, set int
}

// transitionState is a SetRamp's captured start point, established the
// first tick its when-block holds true.
type transitionState struct {
	startSec   float64
	startValue float64
}

// applyScript writes every `when` block's sets whose predicates all hold
// this tick (spec.md §6). Predicates read the same bus properties every
// module publishes. SetRamp and SetStep drive toward Value over TcSec
// rather than snapping immediately (spec.md §6's `tc`/`action` attributes).
func (k *kernel) applyScript(script *config.Script) {
	simTimeSec := k.executive.SimTimeSec()
	for bi, block := range script.Whens {
		allHold := true
		for _, p := range block.Predicates {
			v, ok := k.bus.Get(p.Name)
			if !ok || !p.Holds(v) {
				allHold = false
				break
			}
		}
		if !allHold {
			continue
		}
		for si, s := range block.Sets {
			k.applySet(transitionKey{block: bi, set: si}, s, simTimeSec)
		}
	}
}

// applySet applies one set's transition. SetRamp linearly interpolates
// from the value the bus held when the transition started toward Value
// over TcSec seconds (a straight-line ramp, like a KinematicActuator with
// no lag). SetStep instead drives toward Value with a first-order lag of
// time constant TcSec, the same shape internal/fcs's FirstOrderFilter
// uses. SetImmediate (the default, TcSec<=0) snaps directly to Value.
func (k *kernel) applySet(key transitionKey, s config.Set, simTimeSec float64) {
	if s.Action == config.SetImmediate || s.TcSec <= 0 {
		k.bus.Set(s.Name, s.Value)
		delete(k.transitions, key)
		return
	}

	switch s.Action {
	case config.SetRamp:
		st, ok := k.transitions[key]
		if !ok {
			cur, _ := k.bus.Get(s.Name)
			st = &transitionState{startSec: simTimeSec, startValue: cur}
			k.transitions[key] = st
		}
		frac := (simTimeSec - st.startSec) / s.TcSec
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		k.bus.Set(s.Name, st.startValue+frac*(s.Value-st.startValue))
	case config.SetStep:
		cur, _ := k.bus.Get(s.Name)
		alpha := k.executive.DtSec / (s.TcSec + k.executive.DtSec)
		k.bus.Set(s.Name, cur+alpha*(s.Value-cur))
	}
}

// kernel bundles the wired module set and the shared per-tick results
// the property bus reads from (spec.md §4.2's "named, typed accessor
// registry" pattern).
type kernel struct {
	bus        *propbus.Bus
	executive  *sim.Executive
	dispatcher *console.Dispatcher
	out        *output.Writer
	closeOutputFile func() error

	massBalance *massbalance.Model
	massPoints  []massbalance.PointMass
	atmo        *atmosphere.Model
	aero        *aerodynamics.Model
	prop        *propulsion.Model
	grnd        *ground.Model
	propagate   *propagate.Model
	aux         *auxiliary.Model

	// groundCallback is the host-replaceable terrain model (spec.md §3/§5):
	// the kernel owns the current pointer and every AGL/ground query goes
	// through it rather than a hardcoded flat-Earth literal.
	groundCallback earth.GroundCallback

	transitions map[transitionKey]*transitionState

	tick tickState
}

// SetGroundCallback installs a host-supplied terrain model. spec.md §5
// permits a swap only while Holding, so it never lands mid-tick against
// accelerations or ground records the previous terrain model produced.
// A nil cb restores the flat-Earth default.
func (k *kernel) SetGroundCallback(cb earth.GroundCallback) error {
	if k.executive.State() != sim.Holding {
		return fmt.Errorf("kernel: ground callback may only be replaced while Holding, current state is %s", k.executive.State())
	}
	if cb == nil {
		cb = earth.FlatEarthCallback
	}
	k.groundCallback = cb
	return nil
}

// tickState is the scratch the module closures write into and the bus
// getters read from; it has no meaning outside one Executive.Step call.
type tickState struct {
	massResult  massResult
	atmoCond    atmosphere.Conditions
	windNED     atmosphere.Vector3
	aeroResult  aerodynamics.Result
	propResult  propulsion.Result
	groundResult ground.Result
	aircraftResult aircraft.Result
	accelResult accelerations.Result
	auxResult   auxiliary.Result
	solarResult auxiliary.SolarResult

	fcsPipeline *fcs.Pipeline
}

type massResult struct {
	totalMassSlug float64
	cg            geodesy.Vector3
	inertia       geodesy.Matrix3
	inertiaInv    geodesy.Matrix3
}

func newKernel(cfg *config.AircraftConfig, opt runOptions) (*kernel, error) {
	bus := propbus.New()

	baseline, points, err := cfg.MassBalanceInput()
	if err != nil {
		return nil, err
	}
	mb := massbalance.New(baseline)
	if err := mb.Update(points, nil); err != nil {
		return nil, err
	}

	grnd := ground.New(cfg.GroundContacts()...)
	atmo := atmosphere.NewModel()
	aero := aerodynamics.New()
	fuel := propulsion.NewFuelSystem()
	prop := propulsion.New(fuel)

	lonRad := opt.initLonDeg * math.Pi / 180
	latRad := opt.initLatDeg * math.Pi / 180
	headingRad := opt.initHeadingDeg * math.Pi / 180
	a, b := geodesy.EllipsoidSemiMajorFt, geodesy.EllipsoidSemiMinorFt
	surfaceRadiusFt := a * b / math.Sqrt(b*b*math.Cos(latRad)*math.Cos(latRad)+a*a*math.Sin(latRad)*math.Sin(latRad))
	radiusFt := surfaceRadiusFt + opt.initAltFt

	loc := geodesy.NewLocation(lonRad, latRad, radiusFt)
	positionInertial := loc.ToVector3()
	quaternion := geodesy.QuaternionFromEuler(0, 0, headingRad)

	tl2i := geodesy.TEC2I(0).Mul(geodesy.TL2EC(loc))
	velocityInertial := tl2i.MulVec(geodesy.Vector3{X: opt.initVtFps})

	initial := propagate.VehicleState{
		Quaternion:       quaternion,
		PositionInertial: positionInertial,
		VelocityInertial: velocityInertial,
	}
	integrators := propagate.Integrators{
		RotationalRate:        propagate.VectorIntegrator{Kind: propagate.None},
		TranslationalRate:     propagate.VectorIntegrator{Kind: propagate.Trapezoidal},
		RotationalPosition:    propagate.QuaternionIntegrator{Kind: propagate.Buss1},
		TranslationalPosition: propagate.VectorIntegrator{Kind: propagate.Trapezoidal},
	}
	prp := propagate.New(initial, integrators)

	aux := auxiliary.New()

	pipeline := &fcs.Pipeline{Components: []fcs.Component{
		fcs.NewKinematicActuator("aileron-actuator", "fcs/aileron-cmd-norm", "fcs/aileron-pos-rad"),
		fcs.NewKinematicActuator("elevator-actuator", "fcs/elevator-cmd-norm", "fcs/elevator-pos-rad"),
		fcs.NewKinematicActuator("rudder-actuator", "fcs/rudder-cmd-norm", "fcs/rudder-pos-rad"),
		fcs.NewKinematicActuator("flap-actuator", "fcs/flap-cmd-norm", "fcs/flap-pos-rad"),
	}}

	k := &kernel{
		bus:            bus,
		massBalance:    mb,
		massPoints:     points,
		atmo:           atmo,
		aero:           aero,
		prop:           prop,
		grnd:           grnd,
		propagate:      prp,
		aux:            aux,
		groundCallback: earth.FlatEarthCallback,
		transitions:    make(map[transitionKey]*transitionState),
	}
	k.tick.fcsPipeline = pipeline

	if err := bindControlInputs(bus); err != nil {
		return nil, err
	}
	if err := pipeline.Bind(bus); err != nil {
		return nil, err
	}
	if err := k.bindResults(); err != nil {
		return nil, err
	}

	exec := sim.New(bus, opt.dtSec, opt.logger)
	k.dispatcher = console.NewDispatcher(exec, bus, opt.logger)
	k.executive = exec
	exec.Register(&sim.Module{Name: "fcs", Update: k.stepFCS})
	exec.Register(&sim.Module{Name: "massbalance", Update: k.stepMassBalance})
	exec.Register(&sim.Module{Name: "atmosphere", Update: k.stepAtmosphere})
	exec.Register(&sim.Module{Name: "aerodynamics", Update: k.stepAerodynamics})
	exec.Register(&sim.Module{Name: "propulsion", Update: k.stepPropulsion})
	exec.Register(&sim.Module{Name: "ground", Update: k.stepGround})
	exec.Register(&sim.Module{Name: "aircraft", Update: k.stepAircraft})
	exec.Register(&sim.Module{Name: "accelerations", Update: k.stepAccelerations})
	exec.Register(&sim.Module{Name: "propagate", Update: k.stepPropagate})
	exec.Register(&sim.Module{Name: "auxiliary", Update: k.stepAuxiliary})

	if opt.outPath != "" {
		f, err := os.Create(opt.outPath)
		if err != nil {
			return nil, fmt.Errorf("open output %q: %w", opt.outPath, err)
		}
		k.closeOutputFile = f.Close
		w, err := output.NewWriter(f, bus, output.Columns, opt.outRateHz)
		if err != nil {
			return nil, err
		}
		k.out = w
	} else {
		w, err := output.NewWriter(os.Stdout, bus, output.Columns, opt.outRateHz)
		if err != nil {
			return nil, err
		}
		k.out = w
	}

	return k, nil
}

// bindControlInputs registers the raw pilot/script-driven command
// properties every FCS component and the runscript's `set` side-effects
// write through (spec.md §6). They start at zero and are read-write.
func bindControlInputs(bus *propbus.Bus) error {
	names := []string{
		"fcs/aileron-cmd-norm", "fcs/elevator-cmd-norm", "fcs/rudder-cmd-norm", "fcs/flap-cmd-norm",
		"fcs/throttle-cmd-norm",
		"ap/heading_setpoint", "ap/heading_hold",
	}
	for _, name := range names {
		v := 0.0
		ptr := &v
		if err := bus.Bind("controls", name, func() float64 { return *ptr }, func(nv float64) { *ptr = nv }); err != nil {
			return err
		}
	}
	return nil
}

func (k *kernel) bindResults() error {
	bus := k.bus
	bind := func(name string, get func() float64) error {
		return bus.Bind("kernel", name, get, nil)
	}

	if err := bind("sim-time-sec", func() float64 { return k.executive.SimTimeSec() }); err != nil {
		return err
	}

	if err := bind("velocities/p-rad_sec", func() float64 { return k.propagate.State.OmegaBody.X }); err != nil {
		return err
	}
	if err := bind("velocities/q-rad_sec", func() float64 { return k.propagate.State.OmegaBody.Y }); err != nil {
		return err
	}
	if err := bind("velocities/r-rad_sec", func() float64 { return k.propagate.State.OmegaBody.Z }); err != nil {
		return err
	}
	if err := bind("accelerations/pdot-rad_sec2", func() float64 { return k.tick.accelResult.OmegaDotBody.X }); err != nil {
		return err
	}
	if err := bind("accelerations/qdot-rad_sec2", func() float64 { return k.tick.accelResult.OmegaDotBody.Y }); err != nil {
		return err
	}
	if err := bind("accelerations/rdot-rad_sec2", func() float64 { return k.tick.accelResult.OmegaDotBody.Z }); err != nil {
		return err
	}

	if err := bind("aero/qbar-psf", func() float64 { return k.tick.auxResult.QBar }); err != nil {
		return err
	}
	if err := bind("velocities/vt-fps", func() float64 { return k.tick.auxResult.Vtotal }); err != nil {
		return err
	}
	if err := bind("velocities/u-body-fps", func() float64 { return k.propagate.State.VelocityBody.X }); err != nil {
		return err
	}
	if err := bind("velocities/v-body-fps", func() float64 { return k.propagate.State.VelocityBody.Y }); err != nil {
		return err
	}
	if err := bind("velocities/w-body-fps", func() float64 { return k.propagate.State.VelocityBody.Z }); err != nil {
		return err
	}
	if err := bind("aero/u-aero-fps", func() float64 { return k.tick.auxResult.AeroVelocityBody.X }); err != nil {
		return err
	}
	if err := bind("aero/v-aero-fps", func() float64 { return k.tick.auxResult.AeroVelocityBody.Y }); err != nil {
		return err
	}
	if err := bind("aero/w-aero-fps", func() float64 { return k.tick.auxResult.AeroVelocityBody.Z }); err != nil {
		return err
	}
	if err := bind("velocities/v-north-fps", func() float64 { return k.propagate.State.VelocityNED.X }); err != nil {
		return err
	}
	if err := bind("velocities/v-east-fps", func() float64 { return k.propagate.State.VelocityNED.Y }); err != nil {
		return err
	}
	if err := bind("velocities/v-down-fps", func() float64 { return k.propagate.State.VelocityNED.Z }); err != nil {
		return err
	}

	if err := bind("forces/fdrag-lbs", func() float64 { return -k.tick.aeroResult.ForceBody.X }); err != nil {
		return err
	}
	if err := bind("forces/fside-lbs", func() float64 { return k.tick.aeroResult.ForceBody.Y }); err != nil {
		return err
	}
	if err := bind("forces/flift-lbs", func() float64 { return -k.tick.aeroResult.ForceBody.Z }); err != nil {
		return err
	}
	if err := bind("aero/lod", func() float64 { return k.tick.aeroResult.LiftToDrag }); err != nil {
		return err
	}
	if err := bind("forces/fbx-lbs", func() float64 { return k.tick.aircraftResult.ForceBody.X }); err != nil {
		return err
	}
	if err := bind("forces/fby-lbs", func() float64 { return k.tick.aircraftResult.ForceBody.Y }); err != nil {
		return err
	}
	if err := bind("forces/fbz-lbs", func() float64 { return k.tick.aircraftResult.ForceBody.Z }); err != nil {
		return err
	}

	if err := bind("moments/l-lbsft", func() float64 { return k.tick.aircraftResult.MomentBody.X }); err != nil {
		return err
	}
	if err := bind("moments/m-lbsft", func() float64 { return k.tick.aircraftResult.MomentBody.Y }); err != nil {
		return err
	}
	if err := bind("moments/n-lbsft", func() float64 { return k.tick.aircraftResult.MomentBody.Z }); err != nil {
		return err
	}

	if err := bind("atmosphere/rho-slugs_ft3", func() float64 { return k.tick.atmoCond.DensitySlugFt3 }); err != nil {
		return err
	}
	if err := bind("atmosphere/wind-north-fps", func() float64 { return k.tick.windNED.North }); err != nil {
		return err
	}
	if err := bind("atmosphere/wind-east-fps", func() float64 { return k.tick.windNED.East }); err != nil {
		return err
	}
	if err := bind("atmosphere/wind-down-fps", func() float64 { return k.tick.windNED.Down }); err != nil {
		return err
	}

	if err := bind("inertia/ixx-slugs_ft2", func() float64 { return k.tick.massResult.inertia.M11 }); err != nil {
		return err
	}
	if err := bind("inertia/iyy-slugs_ft2", func() float64 { return k.tick.massResult.inertia.M22 }); err != nil {
		return err
	}
	if err := bind("inertia/izz-slugs_ft2", func() float64 { return k.tick.massResult.inertia.M33 }); err != nil {
		return err
	}
	if err := bind("inertia/mass-slugs", func() float64 { return k.tick.massResult.totalMassSlug }); err != nil {
		return err
	}
	if err := bind("inertia/cg-x-in", func() float64 { return k.tick.massResult.cg.X * 12 }); err != nil {
		return err
	}
	if err := bind("inertia/cg-y-in", func() float64 { return k.tick.massResult.cg.Y * 12 }); err != nil {
		return err
	}
	if err := bind("inertia/cg-z-in", func() float64 { return k.tick.massResult.cg.Z * 12 }); err != nil {
		return err
	}

	if err := bind("position/h-sl-ft", func() float64 { return k.propagate.State.Location.GeodeticAltitude() }); err != nil {
		return err
	}
	if err := bind("attitude/phi-rad", func() float64 {
		phi, _, _ := k.propagate.State.QuaternionLocal.ToEuler()
		return phi
	}); err != nil {
		return err
	}
	if err := bind("attitude/theta-rad", func() float64 {
		_, theta, _ := k.propagate.State.QuaternionLocal.ToEuler()
		return theta
	}); err != nil {
		return err
	}
	if err := bind("attitude/psi-rad", func() float64 {
		_, _, psi := k.propagate.State.QuaternionLocal.ToEuler()
		return psi
	}); err != nil {
		return err
	}
	if err := bind("aero/alpha-rad", func() float64 { return k.tick.auxResult.Alpha }); err != nil {
		return err
	}
	if err := bind("aero/beta-rad", func() float64 { return k.tick.auxResult.Beta }); err != nil {
		return err
	}
	if err := bind("position/lat-gc-rad", func() float64 { return k.propagate.State.Location.GeocentricLat() }); err != nil {
		return err
	}
	if err := bind("position/long-gc-rad", func() float64 { return k.propagate.State.Location.Longitude() }); err != nil {
		return err
	}
	if err := bind("position/h-agl-ft", func() float64 {
		return earth.AltitudeAGL(k.propagate.State.Location, k.propagate.State.Location.GeodeticAltitude(), k.groundCallback)
	}); err != nil {
		return err
	}
	if err := bind("position/runway-radius-ft", func() float64 { return geodesy.EllipsoidSemiMajorFt }); err != nil {
		return err
	}

	if err := bind("time/julian-date", func() float64 { return k.tick.solarResult.JulianDate }); err != nil {
		return err
	}
	if err := bind("time/local-solar-hour", func() float64 { return k.tick.solarResult.LocalSolarTimeHour }); err != nil {
		return err
	}
	if err := bind("time/subsolar-longitude-rad", func() float64 { return k.tick.solarResult.SubsolarLongitude }); err != nil {
		return err
	}
	if err := bind("time/solar-declination-rad", func() float64 { return k.tick.solarResult.SolarDeclination }); err != nil {
		return err
	}

	return nil
}

func (k *kernel) stepFCS(dt float64) error {
	k.tick.fcsPipeline.Update(k.bus, dt)
	return nil
}

func (k *kernel) stepMassBalance(dt float64) error {
	var tanks []massbalance.TankMoment
	if k.prop.Fuel != nil {
		for _, t := range k.prop.Fuel.Tanks {
			massSlug, loc := t.Moment()
			tanks = append(tanks, massbalance.TankMoment{MassSlug: massSlug, Location: loc})
		}
	}
	if err := k.massBalance.Update(k.massPoints, tanks); err != nil {
		return err
	}
	k.tick.massResult = massResult{
		totalMassSlug: k.massBalance.TotalMass(),
		cg:            k.massBalance.CG(),
		inertia:       k.massBalance.InertiaMatrix3(),
		inertiaInv:    k.massBalance.InertiaInverseMatrix3(),
	}
	return nil
}

func (k *kernel) stepAtmosphere(dt float64) error {
	altAGL := earth.AltitudeAGL(k.propagate.State.Location, k.propagate.State.Location.GeodeticAltitude(), k.groundCallback)
	k.tick.atmoCond = k.atmo.At(k.propagate.State.Location.GeodeticAltitude())
	k.tick.windNED = k.atmo.TotalWind(dt, altAGL, 36)
	return nil
}

func (k *kernel) stepAerodynamics(dt float64) error {
	in := aerodynamics.Inputs{
		Alpha:        k.tick.auxResult.Alpha,
		Beta:         k.tick.auxResult.Beta,
		Qbar:         k.tick.auxResult.QBar,
		Vt:           k.tick.auxResult.Vtotal,
		WingSpanFt:   36,
		ChordFt:      5,
		AlphaDotRadS: k.tick.auxResult.AlphaDot,
	}
	k.tick.aeroResult = k.aero.Update(in, k.tick.massResult.cg, geodesy.Vector3{})
	return nil
}

func (k *kernel) stepPropulsion(dt float64) error {
	throttle, _ := k.bus.Get("fcs/throttle-cmd-norm")
	cond := propulsion.Conditions{
		DensitySlugFt3:  k.tick.atmoCond.DensitySlugFt3,
		PressurePsf:     k.tick.atmoCond.PressurePsf,
		Mach:            k.tick.auxResult.Mach,
		TrueAirspeedFps: k.tick.auxResult.Vtotal,
	}
	k.tick.propResult = k.prop.Update(dt, cond, []float64{throttle})
	return nil
}

func (k *kernel) stepGround(dt float64) error {
	cgAltAGL := earth.AltitudeAGL(k.propagate.State.Location, k.propagate.State.Location.GeodeticAltitude(), k.groundCallback)
	k.tick.groundResult = k.grnd.Update(dt, cgAltAGL, k.propagate.State.Tb2l,
		k.propagate.State.VelocityBody, k.propagate.State.OmegaBody,
		nil, nil, k.groundCallback, k.propagate.State.Location)
	return nil
}

func (k *kernel) stepAircraft(dt float64) error {
	k.tick.aircraftResult = aircraft.Aggregate(k.tick.aeroResult, k.tick.propResult, k.tick.groundResult, k.tick.massResult.totalMassSlug)
	return nil
}

func (k *kernel) stepAccelerations(dt float64) error {
	s := &k.propagate.State
	gravityECEF := earth.Gravity(s.Location, earth.GravityWGS84J2)

	var contacts []ground.Record
	var terrainVel []geodesy.Vector3
	for _, rec := range k.tick.groundResult.Records {
		if rec.Compressed {
			contacts = append(contacts, rec)
			terrainVel = append(terrainVel, rec.TerrainVelocityBody)
		}
	}

	in := accelerations.Inputs{
		ForceBody:         k.tick.aircraftResult.ForceBody,
		MomentBody:        k.tick.aircraftResult.MomentBody,
		MassSlug:          k.tick.massResult.totalMassSlug,
		Inertia:           k.tick.massResult.inertia,
		InertiaInv:        k.tick.massResult.inertiaInv,
		OmegaBodyInertial: s.OmegaBodyInertial,
		VelocityBody:      s.VelocityBody,
		Ti2b:              s.Ti2b,
		Tb2i:              s.Tb2i,
		Tec2b:             s.Ti2b.Mul(s.Tec2i),
		Tec2i:             s.Tec2i,
		PositionInertial:  s.PositionInertial,
		GravityECEF:       gravityECEF,
		RadiusFt:          s.Location.Radius(),
		BodyUnitFromCenter: s.Ti2b.MulVec(s.PositionInertial.Normalize()),
		HoldDown:          k.executive.State() == sim.HoldDown,
		Contacts:          contacts,
		TerrainVelocityBodyByContact: terrainVel,
		DtSec:             dt,
	}
	k.tick.accelResult = accelerations.Compute(in)
	return nil
}

func (k *kernel) stepPropagate(dt float64) error {
	if k.executive.State() == sim.Trimming {
		return nil
	}
	k.propagate.Step(dt, k.tick.accelResult.OmegaDotBody, k.tick.accelResult.VelocityDotInertial)
	return nil
}

func (k *kernel) stepAuxiliary(dt float64) error {
	s := &k.propagate.State
	in := auxiliary.Inputs{
		VelocityBody:    s.VelocityBody,
		WindNED:         geodesy.Vector3{X: k.tick.windNED.North, Y: k.tick.windNED.East, Z: k.tick.windNED.Down},
		Tl2b:            s.Tl2b,
		VelocityNED:     s.VelocityNED,
		ForceBody:       k.tick.aircraftResult.ForceBody,
		MassSlug:        k.tick.massResult.totalMassSlug,
		OmegaBody:       s.OmegaBody,
		OmegaDotBody:    k.tick.accelResult.OmegaDotBody,
		GravityBody:     s.Ti2b.MulVec(earth.Gravity(s.Location, earth.GravityWGS84J2)),
		DensitySlugFt3:  k.tick.atmoCond.DensitySlugFt3,
		PressurePsf:     k.tick.atmoCond.PressurePsf,
		SpeedOfSoundFtS: k.tick.atmoCond.SoundSpeedFps,
		DtSec:           dt,
	}
	k.tick.auxResult = k.aux.Update(in)
	k.tick.solarResult = auxiliary.Solar(time.Now(), s.Location.Longitude()+s.EPA, s.EPA)
	return nil
}

// checkDivergence applies spec.md §6's runtime thresholds against this
// tick's force/moment and the most-compressed/fastest-sinking strut.
func (k *kernel) checkDivergence() error {
	var maxCompressionFt, maxSinkRateFtS float64
	for _, rec := range k.tick.groundResult.Records {
		if !rec.Compressed {
			continue
		}
		if rec.CompressionFt > maxCompressionFt {
			maxCompressionFt = rec.CompressionFt
		}
		if -rec.CompressionRate > maxSinkRateFtS {
			maxSinkRateFtS = -rec.CompressionRate
		}
	}
	return sim.CheckDivergence(
		k.tick.aircraftResult.ForceBody.Magnitude(),
		k.tick.aircraftResult.MomentBody.Magnitude(),
		maxCompressionFt,
		maxSinkRateFtS,
	)
}
