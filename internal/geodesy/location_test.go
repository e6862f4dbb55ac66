package geodesy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationTrigCacheMatchesPrimitives(t *testing.T) {
	loc := NewLocation(0.7, 0.5, EllipsoidSemiMajorFt)
	assert.InDelta(t, math.Sin(0.7), loc.SinLongitude(), 1e-12)
	assert.InDelta(t, math.Cos(0.5), loc.CosLatitude(), 1e-12)

	loc.SetPosition(1.2, -0.3, EllipsoidSemiMinorFt)
	assert.InDelta(t, math.Sin(1.2), loc.SinLongitude(), 1e-12)
	assert.InDelta(t, math.Cos(-0.3), loc.CosLatitude(), 1e-12)
}

func TestLocationRadiusAboveMinorAxis(t *testing.T) {
	loc := NewLocation(0, 0, EllipsoidSemiMajorFt)
	assert.GreaterOrEqual(t, loc.Radius(), EllipsoidSemiMinorFt)
}

func TestLocationVectorRoundTrip(t *testing.T) {
	loc := NewLocation(0.4, 0.3, 20900000)
	v := loc.ToVector3()
	back := FromVector3(v)
	assert.InDelta(t, loc.Longitude(), back.Longitude(), 1e-9)
	assert.InDelta(t, loc.GeocentricLat(), back.GeocentricLat(), 1e-9)
	assert.InDelta(t, loc.Radius(), back.Radius(), 1e-6)
}
