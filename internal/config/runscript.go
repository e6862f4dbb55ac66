package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ComparisonOp is a `when`-block predicate's comparison operator (spec.md
// §6's runscript, ge|le|eq).
type ComparisonOp int

const (
	GreaterOrEqual ComparisonOp = iota
	LessOrEqual
	Equal
)

func parseComparisonOp(s string) (ComparisonOp, error) {
	switch strings.ToLower(s) {
	case "ge":
		return GreaterOrEqual, nil
	case "le":
		return LessOrEqual, nil
	case "eq":
		return Equal, nil
	default:
		return 0, fmt.Errorf("config: unknown comparison %q", s)
	}
}

// SetAction is a `set` side-effect's transition shape (spec.md §6).
type SetAction int

const (
	SetImmediate SetAction = iota
	SetRamp
	SetStep
)

func parseSetAction(s string) SetAction {
	switch strings.ToUpper(s) {
	case "FG_RAMP":
		return SetRamp
	case "FG_STEP":
		return SetStep
	default:
		return SetImmediate
	}
}

// RunScript is the root `runscript` element: which aircraft and
// initialization to load, the sim-time window to run, and the `when`
// blocks that drive properties during the run.
type RunScript struct {
	XMLName xml.Name    `xml:"runscript"`
	Name    string      `xml:"name,attr"`
	Use     UseXML      `xml:"use"`
	Run     RunBlockXML `xml:"run"`
}

// UseXML is the `use aircraft=... initialize=...` element naming the
// aircraft description and initial-condition tag this script drives.
type UseXML struct {
	Aircraft   string `xml:"aircraft,attr"`
	Initialize string `xml:"initialize,attr"`
}

// RunBlockXML is the `run` element: the sim-time window and its `when`
// blocks, evaluated every tick in document order.
type RunBlockXML struct {
	StartSec float64      `xml:"start,attr"`
	EndSec   float64       `xml:"end,attr"`
	DtSec    float64       `xml:"dt,attr"`
	Whens    []WhenBlockXML `xml:"when"`
}

// WhenBlockXML fires its Sets every tick all of its Predicates hold.
type WhenBlockXML struct {
	Predicates []PredicateXML `xml:"parameter"`
	Sets       []SetXML       `xml:"set"`
}

// PredicateXML tests a bus property against a threshold.
type PredicateXML struct {
	Name       string  `xml:"name,attr"`
	Comparison string  `xml:"comparison,attr"`
	Value      float64 `xml:"value,attr"`
}

// SetXML writes a bus property when its owning when-block's predicates
// all hold, optionally ramping or stepping toward Value over TcSec.
type SetXML struct {
	Name   string  `xml:"name,attr"`
	Value  float64 `xml:"value,attr"`
	Action string  `xml:"action,attr"`
	TcSec  float64 `xml:"tc,attr"`
}

// Predicate is a parsed, ready-to-evaluate parameter test.
type Predicate struct {
	Name       string
	Comparison ComparisonOp
	Value      float64
}

// Holds reports whether the given current property value satisfies this
// predicate.
func (p Predicate) Holds(current float64) bool {
	switch p.Comparison {
	case GreaterOrEqual:
		return current >= p.Value
	case LessOrEqual:
		return current <= p.Value
	case Equal:
		return current == p.Value
	default:
		return false
	}
}

// Set is a parsed, ready-to-apply property write.
type Set struct {
	Name   string
	Value  float64
	Action SetAction
	TcSec  float64
}

// WhenBlock is a parsed when-block: every Predicates entry must hold for
// Sets to apply this tick.
type WhenBlock struct {
	Predicates []Predicate
	Sets       []Set
}

// Script is the parsed, ready-to-drive form of a RunScript.
type Script struct {
	Name          string
	AircraftFile  string
	InitializeTag string
	StartSec      float64
	EndSec        float64
	DtSec         float64
	Whens         []WhenBlock
}

// ParseRunScript decodes a runscript document (spec.md §6) and resolves
// its predicates/sets into evaluable form.
func ParseRunScript(r io.Reader) (*Script, error) {
	var raw RunScript
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: parse runscript: %w", err)
	}
	if raw.Use.Aircraft == "" {
		return nil, fmt.Errorf("config: runscript %q has no use aircraft=...", raw.Name)
	}
	if raw.Run.EndSec <= raw.Run.StartSec {
		return nil, fmt.Errorf("config: runscript %q run end %.3f must exceed start %.3f", raw.Name, raw.Run.EndSec, raw.Run.StartSec)
	}

	script := &Script{
		Name:          raw.Name,
		AircraftFile:  raw.Use.Aircraft,
		InitializeTag: raw.Use.Initialize,
		StartSec:      raw.Run.StartSec,
		EndSec:        raw.Run.EndSec,
		DtSec:         raw.Run.DtSec,
	}

	for _, w := range raw.Run.Whens {
		block := WhenBlock{}
		for _, p := range w.Predicates {
			op, err := parseComparisonOp(p.Comparison)
			if err != nil {
				return nil, fmt.Errorf("config: runscript %q: %w", raw.Name, err)
			}
			block.Predicates = append(block.Predicates, Predicate{Name: p.Name, Comparison: op, Value: p.Value})
		}
		for _, s := range w.Sets {
			block.Sets = append(block.Sets, Set{Name: s.Name, Value: s.Value, Action: parseSetAction(s.Action), TcSec: s.TcSec})
		}
		script.Whens = append(script.Whens, block)
	}
	return script, nil
}
