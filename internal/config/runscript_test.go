package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRunScriptXML = `
<runscript name="c172-cruise">
  <use aircraft="c172.xml" initialize="reset00"/>
  <run start="0.0" end="400.0" dt="0.008333">
    <when>
      <parameter name="sim-time-sec" comparison="ge" value="5.0"/>
      <parameter name="ap/heading_setpoint" comparison="eq" value="200.0"/>
      <set name="ap/heading_hold" value="1" action="FG_STEP" tc="0.0"/>
    </when>
    <when>
      <parameter name="sim-time-sec" comparison="ge" value="10.0"/>
      <set name="fcs/throttle-cmd-norm" value="0.8" action="FG_RAMP" tc="2.0"/>
    </when>
  </run>
</runscript>
`

func TestParseRunScriptResolvesUseAndWindow(t *testing.T) {
	script, err := ParseRunScript(strings.NewReader(sampleRunScriptXML))
	require.NoError(t, err)
	assert.Equal(t, "c172.xml", script.AircraftFile)
	assert.Equal(t, "reset00", script.InitializeTag)
	assert.Equal(t, 0.0, script.StartSec)
	assert.Equal(t, 400.0, script.EndSec)
	require.Len(t, script.Whens, 2)
}

func TestParseRunScriptResolvesPredicatesAndSets(t *testing.T) {
	script, err := ParseRunScript(strings.NewReader(sampleRunScriptXML))
	require.NoError(t, err)

	first := script.Whens[0]
	require.Len(t, first.Predicates, 2)
	assert.Equal(t, "sim-time-sec", first.Predicates[0].Name)
	assert.Equal(t, GreaterOrEqual, first.Predicates[0].Comparison)
	assert.Equal(t, Equal, first.Predicates[1].Comparison)

	require.Len(t, first.Sets, 1)
	assert.Equal(t, SetStep, first.Sets[0].Action)

	second := script.Whens[1]
	assert.Equal(t, SetRamp, second.Sets[0].Action)
	assert.InDelta(t, 2.0, second.Sets[0].TcSec, 1e-9)
}

func TestPredicateHoldsEvaluatesComparison(t *testing.T) {
	p := Predicate{Comparison: GreaterOrEqual, Value: 5.0}
	assert.True(t, p.Holds(5.0))
	assert.True(t, p.Holds(6.0))
	assert.False(t, p.Holds(4.9))
}

func TestParseRunScriptRejectsMissingAircraft(t *testing.T) {
	bad := strings.Replace(sampleRunScriptXML, `aircraft="c172.xml"`, `aircraft=""`, 1)
	_, err := ParseRunScript(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseRunScriptRejectsInvertedWindow(t *testing.T) {
	bad := strings.Replace(sampleRunScriptXML, `start="0.0" end="400.0"`, `start="400.0" end="0.0"`, 1)
	_, err := ParseRunScript(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseRunScriptRejectsUnknownComparison(t *testing.T) {
	bad := strings.Replace(sampleRunScriptXML, `comparison="ge"`, `comparison="fuzzy"`, 1)
	_, err := ParseRunScript(strings.NewReader(bad))
	assert.Error(t, err)
}
