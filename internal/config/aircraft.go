// Package config is the external-collaborator XML loader (spec.md §6):
// aircraft description and runscript parsing, format-version gating,
// and unit conversion to camsim's canonical feet/slugs/seconds/radians.
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"

	"camsim/internal/geodesy"
	"camsim/internal/ground"
	"camsim/internal/massbalance"
)

// Unit conversion constants (spec.md §6).
const (
	FtToM    = 0.3048
	InToFt   = 1.0 / 12.0
	LbsToKg  = 0.453592
	DegToRad = 0.0174532925199433
	WattsToHP = 1.0 / 745.7

	// StandardGravityFtS2 converts a weight in pounds to a mass in slugs
	// (spec.md §3: W = m·g).
	StandardGravityFtS2 = 32.174
)

// weightLbToSlug converts a weight in pounds to mass in slugs.
func weightLbToSlug(weightLb float64) float64 {
	return weightLb / StandardGravityFtS2
}

// MinSupportedFormat is the oldest aircraft XML `version` attribute this
// loader accepts; older files are a Configuration error (spec.md §7).
var MinSupportedFormat = semver.MustParse("1.0.0")

// AircraftConfig is the root aircraft XML element.
type AircraftConfig struct {
	XMLName         xml.Name             `xml:"aircraft"`
	Name            string               `xml:"name,attr"`
	Version         string               `xml:"version,attr"`
	Metrics         *MetricsXML          `xml:"metrics"`
	MassBalance     *MassBalanceXML      `xml:"mass_balance"`
	GroundReactions *GroundReactionsXML  `xml:"ground_reactions"`
	Propulsion      *PropulsionXML       `xml:"propulsion"`
}

// MeasurementXML is a value tagged with its source unit.
type MeasurementXML struct {
	Unit  string  `xml:"unit,attr"`
	Value float64 `xml:",chardata"`
}

// toFeet converts a tagged measurement to feet, the canonical linear unit.
func (m *MeasurementXML) toFeet() float64 {
	if m == nil {
		return 0
	}
	switch strings.ToUpper(m.Unit) {
	case "IN":
		return m.Value * InToFt
	case "M":
		return m.Value / FtToM
	default: // "FT" or unspecified
		return m.Value
	}
}

func (m *MeasurementXML) raw() float64 {
	if m == nil {
		return 0
	}
	return m.Value
}

// MetricsXML carries wing/tail geometry and named reference points
// (spec.md §6's `metrics` element), expressed in the structural frame.
type MetricsXML struct {
	WingArea  *MeasurementXML  `xml:"wingarea"`
	WingSpan  *MeasurementXML  `xml:"wingspan"`
	Chord     *MeasurementXML  `xml:"chord"`
	HTailArea *MeasurementXML  `xml:"htailarea"`
	HTailArm  *MeasurementXML  `xml:"htailarm"`
	VTailArea *MeasurementXML  `xml:"vtailarea"`
	VTailArm  *MeasurementXML  `xml:"vtailarm"`
	Locations []LocationXML    `xml:"location"`
}

// LocationXML is a named point in the structural frame (inches by
// convention, tagged otherwise).
type LocationXML struct {
	Name string  `xml:"name,attr"`
	Unit string  `xml:"unit,attr"`
	X    float64 `xml:"x"`
	Y    float64 `xml:"y"`
	Z    float64 `xml:"z"`
}

func (l LocationXML) toFeet() (x, y, z float64) {
	scale := 1.0
	if strings.ToUpper(l.Unit) == "IN" || l.Unit == "" {
		scale = InToFt
	}
	return l.X * scale, l.Y * scale, l.Z * scale
}

// toInches normalizes a tagged location to inches, the structural frame's
// native unit, so it can feed geodesy.StructuralToBody directly.
func (l LocationXML) toInches() geodesy.Vector3 {
	scale := 1.0
	switch strings.ToUpper(l.Unit) {
	case "FT":
		scale = 12.0
	case "M":
		scale = 12.0 / FtToM
	}
	return geodesy.Vector3{X: l.X * scale, Y: l.Y * scale, Z: l.Z * scale}
}

// MassBalanceXML is spec.md §6's `mass_balance` element.
type MassBalanceXML struct {
	Ixx                          float64      `xml:"ixx"`
	Iyy                          float64      `xml:"iyy"`
	Izz                          float64      `xml:"izz"`
	Ixy                          float64      `xml:"ixy"`
	Ixz                          float64      `xml:"ixz"`
	Iyz                          float64      `xml:"iyz"`
	EmptyWeightLbs              float64      `xml:"emptywt"`
	CG                           *LocationXML `xml:"location"`
	PointMasses                  []PointMassXML `xml:"pointmass"`
}

// PointMassXML is one discrete mass item (payload, ballast, ...).
type PointMassXML struct {
	Name     string      `xml:"name,attr"`
	WeightLb float64     `xml:"weight"`
	Location LocationXML `xml:"location"`
}

// GroundReactionsXML is spec.md §6's `ground_reactions` element.
type GroundReactionsXML struct {
	Contacts []ContactXML `xml:"contact"`
}

// ContactXML is one landing-gear strut.
type ContactXML struct {
	Name                   string          `xml:"name,attr"`
	Location               LocationXML     `xml:"location"`
	SpringCoeff            *MeasurementXML `xml:"spring_coeff"`
	DampingCoeff           *MeasurementXML `xml:"damping_coeff"`
	DampingCoeffRebound    *MeasurementXML `xml:"damping_coeff_rebound"`
	StaticFriction         float64         `xml:"static_friction"`
	DynamicFriction        float64         `xml:"dynamic_friction"`
	RollingFriction        float64         `xml:"rolling_friction"`
	MaxSteer               *MeasurementXML `xml:"max_steer"`
	Retractable            int             `xml:"retractable,attr"`
	SteerType              string          `xml:"steer_type,attr"`
	BrakeGroup             string          `xml:"brake_group,attr"`
}

// PropulsionXML is spec.md §6's `propulsion` element. Engine/thruster
// construction is deliberately thin here: the XML only carries placement
// and feed-group wiring, and the caller supplies the actual Engine/
// Thruster implementation (spec.md §1 treats per-component aero/engine
// tables as external collaborators, not part of the loader's job).
type PropulsionXML struct {
	Engines []EngineXML `xml:"engine"`
	Tanks   []TankXML   `xml:"tank"`
}

type EngineXML struct {
	Name     string      `xml:"name,attr"`
	Location LocationXML `xml:"location"`
	Feed     []int       `xml:"feed"`
}

type TankXML struct {
	Name     string          `xml:"name,attr"`
	Location LocationXML     `xml:"location"`
	Capacity *MeasurementXML `xml:"capacity"`
	Contents *MeasurementXML `xml:"contents"`
}

// ParseAircraft decodes an aircraft description and checks its format
// version against MinSupportedFormat (spec.md §7: unknown/unsupported
// format is a fatal Configuration error at load).
func ParseAircraft(r io.Reader) (*AircraftConfig, error) {
	var cfg AircraftConfig
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse aircraft: %w", err)
	}
	if cfg.Version != "" {
		v, err := semver.NewVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("config: aircraft %q has unparseable version %q: %w", cfg.Name, cfg.Version, err)
		}
		if v.LessThan(MinSupportedFormat) {
			return nil, fmt.Errorf("config: aircraft %q format version %s is older than minimum supported %s", cfg.Name, v, MinSupportedFormat)
		}
	}
	return &cfg, nil
}

// MassBalanceInput converts MassBalanceXML + pointmasses into the
// massbalance.Baseline and PointMass slice internal/massbalance needs.
// EmptyCG and each point mass's Location are carried through
// geodesy.StructuralToBody relative to the structural datum (spec.md
// §3/§4.5): Mass Balance itself computes the live CG from these
// datum-relative positions every tick.
func (c *AircraftConfig) MassBalanceInput() (massbalance.Baseline, []massbalance.PointMass, error) {
	if c.MassBalance == nil {
		return massbalance.Baseline{}, nil, fmt.Errorf("config: aircraft %q has no mass_balance element", c.Name)
	}
	mb := c.MassBalance
	var cgStructural geodesy.Vector3
	if mb.CG != nil {
		cgStructural = mb.CG.toInches()
	}

	baseline := massbalance.Baseline{
		EmptyMassSlug: weightLbToSlug(mb.EmptyWeightLbs),
		EmptyCG:       geodesy.StructuralToBody(cgStructural, geodesy.Vector3{}),
		Ixx:           mb.Ixx,
		Iyy:           mb.Iyy,
		Izz:           mb.Izz,
		Ixy:           mb.Ixy,
		Ixz:           mb.Ixz,
		Iyz:           mb.Iyz,
	}

	points := make([]massbalance.PointMass, 0, len(mb.PointMasses))
	for _, p := range mb.PointMasses {
		points = append(points, massbalance.PointMass{
			Name:     p.Name,
			MassSlug: weightLbToSlug(p.WeightLb),
			Location: geodesy.StructuralToBody(p.Location.toInches(), geodesy.Vector3{}),
		})
	}
	return baseline, points, nil
}

// GroundContacts converts every <contact> into a ground.Contact, ready
// for ground.New. PositionBody is resolved against the loaded baseline
// empty-aircraft CG (mass_balance's <location>); it does not track the
// live CG shift from fuel burn or point masses, consistent with
// treating strut geometry as a load-time constant. StrutAxis is always
// body-frame +Z (down the airframe's vertical axis); XML files that
// need an angled strut would add an explicit axis element, which no
// example aircraft in this loader's scope uses.
func (c *AircraftConfig) GroundContacts() []*ground.Contact {
	if c.GroundReactions == nil {
		return nil
	}
	var cgStructural geodesy.Vector3
	if c.MassBalance != nil && c.MassBalance.CG != nil {
		cgStructural = c.MassBalance.CG.toInches()
	}
	contacts := make([]*ground.Contact, 0, len(c.GroundReactions.Contacts))
	for _, cx := range c.GroundReactions.Contacts {
		contacts = append(contacts, &ground.Contact{
			Name:                     cx.Name,
			PositionBody:             geodesy.StructuralToBody(cx.Location.toInches(), cgStructural),
			StrutAxis:                geodesy.Vector3{Z: 1},
			SpringCoeffLbFt:          cx.SpringCoeff.raw(),
			DampingCoeffLbFtS:        cx.DampingCoeff.raw(),
			DampingCoeffReboundLbFtS: cx.DampingCoeffRebound.raw(),
			StaticFriction:           cx.StaticFriction,
			DynamicFriction:          cx.DynamicFriction,
			RollingFriction:          cx.RollingFriction,
			MaxSteerRad:              cx.MaxSteer.raw() * DegToRad,
			Retractable:              cx.Retractable != 0,
			Steer:                    steerType(cx.SteerType),
			Brake:                    brakeGroup(cx.BrakeGroup),
		})
	}
	return contacts
}

func steerType(s string) ground.SteerType {
	switch strings.ToUpper(s) {
	case "STEERABLE":
		return ground.Steerable
	case "CASTERED":
		return ground.Castered
	default:
		return ground.Fixed
	}
}

func brakeGroup(s string) ground.BrakeGroup {
	switch strings.ToUpper(s) {
	case "LEFT":
		return ground.Left
	case "RIGHT":
		return ground.Right
	case "CENTER":
		return ground.Center
	case "NOSE":
		return ground.Nose
	case "TAIL":
		return ground.Tail
	default:
		return ground.NoBrake
	}
}
