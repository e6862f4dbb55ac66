package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAircraftXML = `
<aircraft name="testbird" version="1.2.0">
  <metrics>
    <wingarea unit="FT2">180</wingarea>
  </metrics>
  <mass_balance>
    <emptywt>2200</emptywt>
    <location unit="IN">
      <x>40</x><y>0</y><z>10</z>
    </location>
    <ixx>1000</ixx>
    <iyy>2000</iyy>
    <izz>2500</izz>
    <pointmass name="pilot">
      <weight>180</weight>
      <location unit="IN"><x>30</x><y>0</y><z>12</z></location>
    </pointmass>
  </mass_balance>
  <ground_reactions>
    <contact name="nose" steer_type="STEERABLE" brake_group="NOSE" retractable="0">
      <location unit="IN"><x>60</x><y>0</y><z>0</z></location>
      <spring_coeff unit="LBS/FT">1200</spring_coeff>
      <damping_coeff unit="LBS/FT/SEC">300</damping_coeff>
      <damping_coeff_rebound unit="LBS/FT/SEC">300</damping_coeff_rebound>
      <static_friction>0.8</static_friction>
      <dynamic_friction>0.5</dynamic_friction>
      <rolling_friction>0.02</rolling_friction>
      <max_steer unit="DEG">45</max_steer>
    </contact>
  </ground_reactions>
</aircraft>
`

func TestParseAircraftAcceptsSupportedFormat(t *testing.T) {
	cfg, err := ParseAircraft(strings.NewReader(sampleAircraftXML))
	require.NoError(t, err)
	assert.Equal(t, "testbird", cfg.Name)
	require.NotNil(t, cfg.MassBalance)
	assert.Equal(t, 2200.0, cfg.MassBalance.EmptyWeightLbs)
}

func TestParseAircraftRejectsOldFormat(t *testing.T) {
	old := strings.Replace(sampleAircraftXML, `version="1.2.0"`, `version="0.1.0"`, 1)
	_, err := ParseAircraft(strings.NewReader(old))
	assert.Error(t, err)
}

func TestParseAircraftRejectsUnparseableVersion(t *testing.T) {
	bad := strings.Replace(sampleAircraftXML, `version="1.2.0"`, `version="not-a-version"`, 1)
	_, err := ParseAircraft(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestMassBalanceInputConvertsWeightToSlugs(t *testing.T) {
	cfg, err := ParseAircraft(strings.NewReader(sampleAircraftXML))
	require.NoError(t, err)

	baseline, points, err := cfg.MassBalanceInput()
	require.NoError(t, err)
	assert.InDelta(t, 2200.0/StandardGravityFtS2, baseline.EmptyMassSlug, 1e-9)
	assert.Equal(t, 1000.0, baseline.Ixx)

	require.Len(t, points, 1)
	assert.Equal(t, "pilot", points[0].Name)
	assert.InDelta(t, 180.0/StandardGravityFtS2, points[0].MassSlug, 1e-9)
}

func TestMassBalanceInputRequiresElement(t *testing.T) {
	cfg := &AircraftConfig{Name: "bare"}
	_, _, err := cfg.MassBalanceInput()
	assert.Error(t, err)
}

func TestGroundContactsConvertsUnitsAndEnums(t *testing.T) {
	cfg, err := ParseAircraft(strings.NewReader(sampleAircraftXML))
	require.NoError(t, err)

	contacts := cfg.GroundContacts()
	require.Len(t, contacts, 1)
	nose := contacts[0]
	assert.Equal(t, "nose", nose.Name)
	assert.InDelta(t, 1200.0, nose.SpringCoeffLbFt, 1e-9)
	assert.InDelta(t, 45*DegToRad, nose.MaxSteerRad, 1e-9)
	assert.False(t, nose.Retractable)
}

func TestGroundContactsNilWithoutElement(t *testing.T) {
	cfg := &AircraftConfig{Name: "bare"}
	assert.Nil(t, cfg.GroundContacts())
}
