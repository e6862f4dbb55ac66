package auxiliary

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SolarResult is the time-of-day auxiliary output spec.md §4.12 groups
// with the Earth-position-angle integral: epoch Julian date, local solar
// time, and the subsolar longitude and declination used by any daylight-
// dependent aerodynamics or sensor model layered on top of camsim.
type SolarResult struct {
	JulianDate         float64
	SubsolarLongitude  float64 // radians, east positive
	SolarDeclination   float64 // radians
	LocalSolarTimeHour float64
}

// Solar derives the subsolar point and local solar time at longitudeRad
// (an inertial-frame longitude, i.e. the ECEF longitude plus epaRad,
// converted back to ECEF via epaRad before the local-time calculation) from
// the wall-clock epoch. The declination/equation-of-time approximation
// is the standard low-precision solar-position formula (Meeus ch. 25);
// the epoch-to-JD conversion is the grounded third-party piece
// (meeus/v3/julian).
func Solar(epoch time.Time, longitudeRad, epaRad float64) SolarResult {
	jd := julian.TimeToJD(epoch.UTC())

	d := jd - 2451545.0 // days since J2000.0
	g := math.Mod(357.529+0.98560028*d, 360) * math.Pi / 180
	meanLong := math.Mod(280.459+0.98564736*d, 360) * math.Pi / 180
	eclipticLong := meanLong + (1.915*math.Sin(g)+0.020*math.Sin(2*g))*math.Pi/180
	obliquity := (23.439 - 0.0000004*d) * math.Pi / 180

	declination := math.Asin(math.Sin(obliquity) * math.Sin(eclipticLong))

	// equation of time, minutes
	y := math.Tan(obliquity / 2)
	y *= y
	eqTimeRad := y*math.Sin(2*meanLong) - 2*0.0167*math.Sin(g) +
		4*0.0167*y*math.Sin(g)*math.Cos(2*meanLong) -
		0.5*y*y*math.Sin(4*meanLong) - 1.25*0.0167*0.0167*math.Sin(2*g)
	eqTimeMinutes := eqTimeRad * 4 * 180 / math.Pi

	ecefLongitudeRad := longitudeRad - epaRad

	subsolarLon := math.Mod(-15*(epochHourUTC(epoch)+eqTimeMinutes/60-12), 360) * math.Pi / 180

	localHour := math.Mod(epochHourUTC(epoch)+eqTimeMinutes/60+ecefLongitudeRad*180/math.Pi/15, 24)
	if localHour < 0 {
		localHour += 24
	}

	return SolarResult{
		JulianDate:         jd,
		SubsolarLongitude:  normalizeLongitude(subsolarLon),
		SolarDeclination:   declination,
		LocalSolarTimeHour: localHour,
	}
}

func epochHourUTC(t time.Time) float64 {
	u := t.UTC()
	return float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
}

func normalizeLongitude(lonRad float64) float64 {
	for lonRad > math.Pi {
		lonRad -= 2 * math.Pi
	}
	for lonRad < -math.Pi {
		lonRad += 2 * math.Pi
	}
	return lonRad
}
