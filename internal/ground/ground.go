// Package ground implements the Ground Reactions module (spec.md §4.8):
// per-strut contact detection, spring/damper normal force, and the
// friction Jacobian each contact hands to Accelerations' Gauss-Seidel
// solver (internal/accelerations).
package ground

import (
	"math"

	"camsim/internal/earth"
	"camsim/internal/geodesy"
)

// SteerType is how a strut's steering angle is driven.
type SteerType int

const (
	Fixed SteerType = iota
	Steerable
	Castered
)

// BrakeGroup assigns a strut to a pilot brake command.
type BrakeGroup int

const (
	NoBrake BrakeGroup = iota
	Left
	Right
	Center
	Nose
	Tail
)

// CorneringTable maps tire slip angle (radians) to a lateral friction
// coefficient. A nil table falls back to the piecewise-linear model of
// spec.md §4.8.
type CorneringTable func(slipAngleRad float64) float64

// Contact is one landing-gear strut (spec.md §3/§4.8).
type Contact struct {
	Name string

	PositionBody geodesy.Vector3 // body frame, relative to CG, strut-tip-at-full-extension
	StrutAxis    geodesy.Vector3 // unit vector, body frame, direction of compression travel

	SpringCoeffLbFt         float64
	DampingCoeffLbFtS       float64
	DampingCoeffReboundLbFtS float64

	StaticFriction  float64
	DynamicFriction float64
	RollingFriction float64

	MaxSteerRad float64
	Retractable bool
	Steer       SteerType
	Brake       BrakeGroup
	Cornering   CorneringTable

	prevCompressionFt float64
}

// Record is what Contact.Update hands to Accelerations: the normal
// force/moment already resolved, plus the friction Jacobian and bounds
// the Gauss-Seidel solver iterates over (spec.md §3, §4.10).
type Record struct {
	Compressed      bool
	CompressionFt   float64
	CompressionRate float64

	NormalForceBody  geodesy.Vector3
	NormalMomentBody geodesy.Vector3

	// TerrainVelocityBody is the ground callback's reported terrain linear
	// velocity at this strut's tip, rotated into the body frame (spec.md
	// §4.8/§4.10); zero for a stationary surface such as FlatEarthCallback.
	TerrainVelocityBody geodesy.Vector3

	// Friction Jacobian: U is the body-frame unit direction the contact's
	// Lagrange multiplier lambda acts along; LeverArm is r from CG.
	U        geodesy.Vector3
	LeverArm geodesy.Vector3
	LambdaMin, LambdaMax float64
}

// Update detects contact and computes the spring/damper normal force and
// the friction Jacobian bounds for one strut, given the current body
// velocity/angular rate, steering and brake commands (spec.md §4.8).
// cgAltitudeAGLFt is the aircraft CG's height above the terrain directly
// below it; bodyToLocal is the current Tb2l transform, used to project
// the strut's body-frame offset from CG onto the local-vertical axis so
// each strut's own height above terrain can be derived from the CG's.
func (c *Contact) Update(dt float64, cgAltitudeAGLFt float64, bodyToLocal geodesy.Matrix3,
	cgToTipBody geodesy.Vector3, bodyVelocity, bodyAngularRate geodesy.Vector3,
	steerCmdRad, brakeCmd float64, info earth.GroundInfo) Record {

	// strut tip velocity in body frame (rigid body point velocity)
	tipVelocity := bodyVelocity.Add(bodyAngularRate.Cross(cgToTipBody))

	// the ground callback's terrain normal (local NED), defaulting to
	// straight up when the callback reports none (e.g. a zero-value
	// GroundInfo{}), matching FlatEarthCallback's own -Z convention.
	normal := info.Normal.Normalize()
	if normal == (geodesy.Vector3{}) {
		normal = geodesy.Vector3{Z: -1}
	}

	// the strut's offset from CG projected onto the terrain-down
	// direction (the negative of the terrain normal); a positive
	// compression means the tip has penetrated below the terrain plane
	// sloped terrain tilts this axis away from pure NED-down.
	tipOffsetLocal := bodyToLocal.MulVec(cgToTipBody)
	tipDownOffsetFt := tipOffsetLocal.Dot(normal.Negate())
	tipAltitudeAGLFt := cgAltitudeAGLFt - tipDownOffsetFt
	compression := -tipAltitudeAGLFt

	localToBody := bodyToLocal.Transpose()
	terrainVelocityBody := localToBody.MulVec(info.VelocityFps)

	rec := Record{LeverArm: cgToTipBody, TerrainVelocityBody: terrainVelocityBody}
	if compression <= 0 {
		c.prevCompressionFt = 0
		return rec
	}

	rec.Compressed = true
	rec.CompressionFt = compression
	rate := (compression - c.prevCompressionFt) / maxFloat(dt, 1e-6)
	rec.CompressionRate = rate
	c.prevCompressionFt = compression

	spring := c.SpringCoeffLbFt * compression
	damperCoeff := c.DampingCoeffLbFtS
	if rate < 0 {
		damperCoeff = c.DampingCoeffReboundLbFtS
	}
	damper := damperCoeff * rate

	normalMag := spring + damper
	if normalMag < 0 {
		normalMag = 0
	}
	normal := c.StrutAxis.Scale(-1).Normalize().Scale(normalMag)
	rec.NormalForceBody = normal
	rec.NormalMomentBody = cgToTipBody.Cross(normal)

	// wheel-plane (ground-tangent) velocity rotated into the steering
	// frame: rolling is along the wheel heading, sideslip perpendicular.
	steerAngle := steerCmdRad
	if c.Steer == Fixed {
		steerAngle = 0
	}
	cs, sn := math.Cos(steerAngle), math.Sin(steerAngle)
	rollingDir := geodesy.Vector3{X: cs, Y: sn}
	lateralDir := geodesy.Vector3{X: -sn, Y: cs}

	rollingVel := tipVelocity.Dot(rollingDir)
	lateralVel := tipVelocity.Dot(lateralDir)

	brakeMu := c.RollingFriction*(1-brakeCmd) + c.StaticFriction*brakeCmd
	slipAngle := math.Atan2(lateralVel, math.Abs(rollingVel)+1e-6)
	lateralMu := c.lateralFrictionCoefficient(slipAngle)

	// combine rolling (opposing rollingVel) and lateral (opposing
	// lateralVel) friction directions into one resultant Jacobian,
	// matching the single-lambda-per-contact solver of spec.md §4.10.
	frictionDir := rollingDir.Scale(-sign(rollingVel) * brakeMu).Add(lateralDir.Scale(-sign(lateralVel) * lateralMu))
	if frictionDir.Magnitude() > 1e-9 {
		frictionDir = frictionDir.Normalize()
	}
	rec.U = frictionDir
	muCombined := math.Hypot(brakeMu, lateralMu)
	rec.LambdaMin = -muCombined * normalMag
	rec.LambdaMax = muCombined * normalMag

	return rec
}

// lateralFrictionCoefficient uses the tire's cornering table if present,
// else the piecewise-linear fallback of spec.md §4.8: +-10 deg linear to
// static, 10-40 deg blend to dynamic, >40 deg saturated.
func (c *Contact) lateralFrictionCoefficient(slipAngleRad float64) float64 {
	if c.Cornering != nil {
		return c.Cornering(slipAngleRad)
	}
	deg := math.Abs(slipAngleRad) * 180 / math.Pi
	switch {
	case deg <= 10:
		return c.StaticFriction * (deg / 10)
	case deg <= 40:
		frac := (deg - 10) / 30
		return c.StaticFriction + frac*(c.DynamicFriction-c.StaticFriction)
	default:
		return c.DynamicFriction
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
