// Package propulsion implements the Propulsion module (spec.md §4.7):
// a polymorphic engine/thruster pipeline and the fuel tanks that feed it.
package propulsion

import "math"

// Kind identifies which physical engine model an Engine implements.
type Kind int

const (
	Rocket Kind = iota
	Piston
	Turbine
	Turboprop
	Electric
)

// Conditions is the atmospheric/flight state an engine's Calculate needs;
// kept minimal and dependency-free so propulsion does not need to import
// atmosphere or geodesy for a handful of scalars.
type Conditions struct {
	DensitySlugFt3  float64
	PressurePsf     float64
	Mach            float64
	TrueAirspeedFps float64
	ThrottleCmd     float64 // 0..1
	MixtureCmd      float64 // 0..1, Piston only
	Starved         bool    // set by FuelSystem when demand outran supply
}

// Output is what Engine.Calculate produces each tick: the raw thrust (or
// shaft power, for prop-driven engines) and the fuel demand the
// FuelSystem must satisfy.
type Output struct {
	ThrustLbf        float64 // direct thrust, for Rocket/Turbine/Electric-direct
	ShaftPowerFtLbS  float64 // shaft power, for Piston/Turboprop (drives a Propeller thruster)
	FuelDemandLbSec  float64
	Running          bool
}

// Engine is the polymorphic interface every engine kind implements
// (spec.md §4.7).
type Engine interface {
	Kind() Kind
	Calculate(dt float64, c Conditions) Output
}

// PistonEngine is a naturally-aspirated or supercharged reciprocating
// engine, adapted from the teacher's P-51D Packard-V-1650-7 model
// (propulsion_system.go) and generalized: RPM/MAP interpolate between
// idle and max off the throttle command, and shaft power (rather than a
// hardcoded thrust constant) is handed to a Propeller thruster.
type PistonEngine struct {
	Name string

	IdleRPM, MaxRPM float64
	IdleMAP, MaxMAP float64
	MaxPowerHP      float64

	running bool
	rpm     float64
	mapInHg float64
}

func (e *PistonEngine) Kind() Kind { return Piston }

func (e *PistonEngine) Calculate(dt float64, c Conditions) Output {
	if !e.running && c.ThrottleCmd > 0.1 && !c.Starved {
		e.running = true
	}
	if c.Starved {
		e.running = false
	}

	if e.running {
		e.rpm = e.IdleRPM + c.ThrottleCmd*(e.MaxRPM-e.IdleRPM)
		e.mapInHg = e.IdleMAP + c.ThrottleCmd*(e.MaxMAP-e.IdleMAP)
	} else {
		e.rpm = 0
		e.mapInHg = 29.92
	}

	rpmFrac := 0.0
	if e.MaxRPM > 0 {
		rpmFrac = e.rpm / e.MaxRPM
	}
	powerHP := e.MaxPowerHP * rpmFrac * c.MixtureFactorOr(1.0)
	powerFtLbS := powerHP * 550.0

	// ~0.45 lb fuel per horsepower-hour is a typical brake-specific-fuel-
	// consumption figure for a gasoline piston engine.
	fuelDemand := 0.0
	if e.running {
		fuelDemand = powerHP * 0.45 / 3600.0
	}

	return Output{ShaftPowerFtLbS: powerFtLbS, FuelDemandLbSec: fuelDemand, Running: e.running}
}

// MixtureFactorOr lets Calculate default to full power when the caller
// does not model mixture leaning.
func (c Conditions) MixtureFactorOr(def float64) float64 {
	if c.MixtureCmd == 0 {
		return def
	}
	return c.MixtureCmd
}

// TurbineEngine is a simple turbojet: thrust scales with throttle and
// falls off with altitude density per a lapse exponent, consuming fuel
// proportional to thrust (a standard thrust-specific fuel consumption
// model).
type TurbineEngine struct {
	Name        string
	MaxThrustLbf float64
	TSFCPerHr   float64 // lb fuel per lb thrust per hour

	running bool
}

func (e *TurbineEngine) Kind() Kind { return Turbine }

func (e *TurbineEngine) Calculate(dt float64, c Conditions) Output {
	e.running = c.ThrottleCmd > 0.01 && !c.Starved
	if !e.running {
		return Output{Running: false}
	}
	densityRatio := c.DensitySlugFt3 / 0.00237767
	thrust := e.MaxThrustLbf * c.ThrottleCmd * math.Pow(densityRatio, 0.7)
	fuelDemand := thrust * e.TSFCPerHr / 3600.0
	return Output{ThrustLbf: thrust, FuelDemandLbSec: fuelDemand, Running: true}
}

// TurbopropEngine drives a Propeller thruster from shaft power much like
// PistonEngine, but with a turbine's altitude lapse and fuel consumption
// model.
type TurbopropEngine struct {
	Name         string
	MaxPowerHP   float64
	TSFCPerHpHr  float64

	running bool
}

func (e *TurbopropEngine) Kind() Kind { return Turboprop }

func (e *TurbopropEngine) Calculate(dt float64, c Conditions) Output {
	e.running = c.ThrottleCmd > 0.01 && !c.Starved
	if !e.running {
		return Output{Running: false}
	}
	densityRatio := c.DensitySlugFt3 / 0.00237767
	powerHP := e.MaxPowerHP * c.ThrottleCmd * math.Pow(densityRatio, 0.5)
	fuelDemand := powerHP * e.TSFCPerHpHr / 3600.0
	return Output{ShaftPowerFtLbS: powerHP * 550.0, FuelDemandLbSec: fuelDemand, Running: true}
}

// RocketEngine burns propellant at a fixed mass flow rate whenever
// commanded; thrust is not airspeed- or density-dependent to first order.
type RocketEngine struct {
	Name           string
	MaxThrustLbf   float64
	MassFlowLbSec  float64
}

func (e *RocketEngine) Kind() Kind { return Rocket }

func (e *RocketEngine) Calculate(dt float64, c Conditions) Output {
	if c.ThrottleCmd <= 0 || c.Starved {
		return Output{Running: false}
	}
	return Output{
		ThrustLbf:       e.MaxThrustLbf * c.ThrottleCmd,
		FuelDemandLbSec: e.MassFlowLbSec * c.ThrottleCmd,
		Running:         true,
	}
}

// ElectricEngine draws no fuel at all; "demand" is left at zero so the
// FuelSystem never starves it, matching an electric motor's actual
// energy source being outside the scope of this fuel model.
type ElectricEngine struct {
	Name         string
	MaxThrustLbf float64
}

func (e *ElectricEngine) Kind() Kind { return Electric }

func (e *ElectricEngine) Calculate(dt float64, c Conditions) Output {
	return Output{ThrustLbf: e.MaxThrustLbf * c.ThrottleCmd, Running: c.ThrottleCmd > 0}
}
