// Package fcs implements the Flight Control System module (spec.md
// §4.13): summers, switches, filters, deadband, gain and kinematic
// actuators, each reading named properties off the bus and writing a
// single output property back, run in load order every tick.
package fcs

import (
	"math"

	"camsim/internal/propbus"
)

// Component is one FCS block (spec.md §4.13): one or more input
// property paths, a single output property, and a per-tick Execute.
type Component interface {
	Name() string
	Output() string
	Value() float64
	Execute(bus *propbus.Bus, dt float64) float64
	Reset()
}

// base holds the fields every component shares.
type base struct {
	name   string
	output string
	value  float64
}

func (b *base) Name() string    { return b.name }
func (b *base) Output() string  { return b.output }
func (b *base) Value() float64  { return b.value }

func get(bus *propbus.Bus, name string) float64 {
	v, _ := bus.Get(name)
	return v
}

// Summer adds/subtracts a list of inputs, each with its own sign, plus
// an optional bias.
type Summer struct {
	base
	Inputs []string
	Signs  []float64
	Bias   float64
}

func NewSummer(name string, inputs []string, output string) *Summer {
	signs := make([]float64, len(inputs))
	for i := range signs {
		signs[i] = 1
	}
	return &Summer{base: base{name: name, output: output}, Inputs: inputs, Signs: signs}
}

func (s *Summer) Execute(bus *propbus.Bus, dt float64) float64 {
	sum := s.Bias
	for i, in := range s.Inputs {
		sign := 1.0
		if i < len(s.Signs) {
			sign = s.Signs[i]
		}
		sum += sign * get(bus, in)
	}
	s.value = sum
	return sum
}

func (s *Summer) Reset() { s.value = 0 }

// Gain multiplies a single input.
type Gain struct {
	base
	Input      string
	Multiplier float64
}

func NewGain(name, input, output string, multiplier float64) *Gain {
	return &Gain{base: base{name: name, output: output}, Input: input, Multiplier: multiplier}
}

func (g *Gain) Execute(bus *propbus.Bus, dt float64) float64 {
	g.value = get(bus, g.Input) * g.Multiplier
	return g.value
}

func (g *Gain) Reset() { g.value = 0 }

// Deadband zeros any input whose magnitude is below Width, and shifts
// anything outside the band back toward zero by Width so the output is
// continuous at the band edge.
type Deadband struct {
	base
	Input string
	Width float64
}

func NewDeadband(name, input, output string, width float64) *Deadband {
	return &Deadband{base: base{name: name, output: output}, Input: input, Width: width}
}

func (d *Deadband) Execute(bus *propbus.Bus, dt float64) float64 {
	in := get(bus, d.Input)
	switch {
	case in > d.Width:
		d.value = in - d.Width
	case in < -d.Width:
		d.value = in + d.Width
	default:
		d.value = 0
	}
	return d.value
}

func (d *Deadband) Reset() { d.value = 0 }

// TestOp is a switch predicate's comparison operator (spec.md §6's
// runscript predicates reuse the same ge/le/eq vocabulary).
type TestOp int

const (
	GT TestOp = iota
	LT
	GE
	LE
	EQ
	NE
)

// Switch selects between two input properties (or constants) based on a
// test property and comparison against a threshold.
type Switch struct {
	base
	TestProperty          string
	Op                    TestOp
	Threshold             float64
	TrueInput, FalseInput string
	TrueValue, FalseValue float64
	UseInputs             bool // true -> read TrueInput/FalseInput; false -> use the constants
}

func NewSwitch(name, output string) *Switch {
	return &Switch{base: base{name: name, output: output}}
}

func (s *Switch) Execute(bus *propbus.Bus, dt float64) float64 {
	test := get(bus, s.TestProperty)
	var result bool
	switch s.Op {
	case GT:
		result = test > s.Threshold
	case LT:
		result = test < s.Threshold
	case GE:
		result = test >= s.Threshold
	case LE:
		result = test <= s.Threshold
	case EQ:
		result = test == s.Threshold
	case NE:
		result = test != s.Threshold
	}

	if result {
		if s.UseInputs {
			s.value = get(bus, s.TrueInput)
		} else {
			s.value = s.TrueValue
		}
	} else {
		if s.UseInputs {
			s.value = get(bus, s.FalseInput)
		} else {
			s.value = s.FalseValue
		}
	}
	return s.value
}

func (s *Switch) Reset() { s.value = 0 }

// FirstOrderFilter is a single-pole lag: output += (dt/(C1+dt))*(input-output).
type FirstOrderFilter struct {
	base
	Input       string
	TimeConst   float64
	initialized bool
}

func NewFirstOrderFilter(name, input, output string, timeConstSec float64) *FirstOrderFilter {
	return &FirstOrderFilter{base: base{name: name, output: output}, Input: input, TimeConst: timeConstSec}
}

func (f *FirstOrderFilter) Execute(bus *propbus.Bus, dt float64) float64 {
	in := get(bus, f.Input)
	if f.TimeConst <= 0 {
		f.value = in
		return f.value
	}
	if !f.initialized {
		f.value = in
		f.initialized = true
	}
	alpha := dt / (f.TimeConst + dt)
	f.value += alpha * (in - f.value)
	return f.value
}

func (f *FirstOrderFilter) Reset() { f.initialized = false; f.value = 0 }

// SecondOrderFilter cascades two first-order lags, the standard
// low-cost approximation to a critically-damped second-order response
// when the two time constants are built from the target natural
// frequency/damping rather than exposed as independent knobs.
type SecondOrderFilter struct {
	base
	Input             string
	TimeConst1, TimeConst2 float64
	stage1            FirstOrderFilter
	initialized       bool
}

func NewSecondOrderFilter(name, input, output string, tc1, tc2 float64) *SecondOrderFilter {
	f := &SecondOrderFilter{base: base{name: name, output: output}, Input: input, TimeConst1: tc1, TimeConst2: tc2}
	f.stage1 = FirstOrderFilter{base: base{name: name + ".stage1"}, TimeConst: tc1}
	return f
}

func (f *SecondOrderFilter) Execute(bus *propbus.Bus, dt float64) float64 {
	in := get(bus, f.Input)
	stage1Out := f.stage1.stepValue(in, dt)
	if !f.initialized {
		f.value = stage1Out
		f.initialized = true
	}
	if f.TimeConst2 <= 0 {
		f.value = stage1Out
		return f.value
	}
	alpha := dt / (f.TimeConst2 + dt)
	f.value += alpha * (stage1Out - f.value)
	return f.value
}

func (f *SecondOrderFilter) Reset() {
	f.initialized = false
	f.value = 0
	f.stage1.Reset()
}

// stepValue runs FirstOrderFilter's lag law directly on an in-memory
// value rather than through the bus, for SecondOrderFilter's internal
// first stage.
func (f *FirstOrderFilter) stepValue(in, dt float64) float64 {
	if f.TimeConst1Zero() {
		return in
	}
	if !f.initialized {
		f.value = in
		f.initialized = true
	}
	alpha := dt / (f.TimeConst + dt)
	f.value += alpha * (in - f.value)
	return f.value
}

func (f *FirstOrderFilter) TimeConst1Zero() bool { return f.TimeConst <= 0 }

// KinematicActuator models a rate-limited, lagged control-surface
// actuator with optional hysteresis (spec.md §4.13's "kinematic
// actuators"), adapted from the teacher's actuator component.
type KinematicActuator struct {
	base
	Input           string
	RateLimit       float64 // units/sec, math.Inf(1) for unlimited
	Lag             float64 // seconds, 0 disables lag
	HysteresisWidth float64
	current         float64
	target          float64
	prevInput       float64
	initialized     bool
}

func NewKinematicActuator(name, input, output string) *KinematicActuator {
	return &KinematicActuator{
		base:      base{name: name, output: output},
		Input:     input,
		RateLimit: math.Inf(1),
	}
}

func (k *KinematicActuator) Execute(bus *propbus.Bus, dt float64) float64 {
	in := get(bus, k.Input)
	if k.HysteresisWidth > 0 && math.Abs(in-k.prevInput) < k.HysteresisWidth {
		in = k.prevInput
	}
	k.prevInput = in

	if !k.initialized {
		k.current, k.target, k.value = 0, 0, 0
		k.initialized = true
	}

	if math.IsInf(k.RateLimit, 1) {
		k.target = in
	} else {
		maxStep := k.RateLimit * dt
		if in > k.target+maxStep {
			k.target += maxStep
		} else if in < k.target-maxStep {
			k.target -= maxStep
		} else {
			k.target = in
		}
	}
	k.current = k.target

	if k.Lag > 0 {
		alpha := dt / (k.Lag + dt)
		k.value += alpha * (k.current - k.value)
	} else {
		k.value = k.current
	}
	return k.value
}

func (k *KinematicActuator) Reset() {
	k.initialized = false
	k.current, k.target, k.prevInput, k.value = 0, 0, 0, 0
}

// Pipeline runs a fixed load-order list of Components every tick,
// binding each output property to the bus exactly once.
type Pipeline struct {
	Components []Component
}

// Bind registers every component's output property on bus. Call once,
// before the first Update.
func (p *Pipeline) Bind(bus *propbus.Bus) error {
	for _, c := range p.Components {
		comp := c
		if err := bus.Bind("fcs", comp.Output(), func() float64 { return comp.Value() }, nil); err != nil {
			return err
		}
	}
	return nil
}

// Update runs every component's Execute in load order (spec.md §4.13).
func (p *Pipeline) Update(bus *propbus.Bus, dt float64) {
	for _, c := range p.Components {
		c.Execute(bus, dt)
	}
}
