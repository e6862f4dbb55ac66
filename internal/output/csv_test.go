package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camsim/internal/propbus"
)

func busWithTime(t *testing.T, simTime *float64) *propbus.Bus {
	bus := propbus.New()
	require.NoError(t, bus.Bind("sim", "sim-time-sec", func() float64 { return *simTime }, nil))
	require.NoError(t, bus.Bind("sim", "velocities/vt-fps", func() float64 { return 150 }, nil))
	return bus
}

func TestNewWriterRejectsUnboundColumn(t *testing.T) {
	var simTime float64
	bus := busWithTime(t, &simTime)
	var buf bytes.Buffer
	_, err := NewWriter(&buf, bus, []string{"sim-time-sec", "nope/not-bound"}, 0)
	assert.Error(t, err)
}

func TestWriteTickEmitsHeaderOnce(t *testing.T) {
	var simTime float64
	bus := busWithTime(t, &simTime)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, bus, []string{"sim-time-sec", "velocities/vt-fps"}, 0)
	require.NoError(t, err)

	require.NoError(t, w.WriteTick(0))
	simTime = 0.1
	require.NoError(t, w.WriteTick(0.1))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "sim-time-sec,velocities/vt-fps", lines[0])
	assert.Contains(t, lines[2], "0.100000")
}

func TestWriteTickThrottlesByRate(t *testing.T) {
	var simTime float64
	bus := busWithTime(t, &simTime)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, bus, []string{"sim-time-sec"}, 10) // one sample every 0.1s
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		simTime = float64(i) * 0.05
		require.NoError(t, w.WriteTick(simTime))
	}
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// header + samples at t=0.0, 0.10 and 0.20 (0.05 and 0.15 are throttled)
	assert.LessOrEqual(t, len(lines), 4)
	assert.Greater(t, len(lines), 1)
}
