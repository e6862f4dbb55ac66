package console

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerodha/logf"

	"camsim/internal/propbus"
	"camsim/internal/sim"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *sim.Executive, *propbus.Bus) {
	bus := propbus.New()
	var throttle float64
	require.NoError(t, bus.Bind("fcs", "fcs/throttle-cmd-norm", func() float64 { return throttle }, func(v float64) { throttle = v }))
	exec := sim.New(bus, 1.0/120, logf.New(logf.Opts{}))
	d := NewDispatcher(exec, bus, logf.New(logf.Opts{}))
	return d, exec, bus
}

func TestApplyPendingAppliesHoldAndResume(t *testing.T) {
	d, exec, _ := newTestDispatcher(t)
	d.Enqueue(Command{Kind: CommandHold})
	d.ApplyPending()
	assert.Equal(t, sim.Holding, exec.State())

	d.Enqueue(Command{Kind: CommandResume})
	d.ApplyPending()
	assert.Equal(t, sim.Running, exec.State())
}

func TestApplyPendingSetsProperty(t *testing.T) {
	d, _, bus := newTestDispatcher(t)
	d.Enqueue(Command{Kind: CommandSetProperty, Property: "fcs/throttle-cmd-norm", Value: 0.8})
	d.ApplyPending()

	v, ok := bus.Get("fcs/throttle-cmd-norm")
	assert.True(t, ok)
	assert.InDelta(t, 0.8, v, 1e-9)
}

func TestApplyPendingQuitSetsFlag(t *testing.T) {
	d, exec, _ := newTestDispatcher(t)
	d.Enqueue(Command{Kind: CommandQuit})
	d.ApplyPending()
	assert.True(t, exec.QuitRequested())
}

func TestApplyPendingDrainsQueueOnce(t *testing.T) {
	d, exec, _ := newTestDispatcher(t)
	d.Enqueue(Command{Kind: CommandHold})
	d.ApplyPending()
	d.ApplyPending() // nothing pending, must not re-apply or panic
	assert.Equal(t, sim.Holding, exec.State())
}

func TestServerEnqueuesDecodedCommands(t *testing.T) {
	d, exec, _ := newTestDispatcher(t)
	srv := NewServer(d, logf.New(logf.Opts{}))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"hold"}`)))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.ApplyPending()
		if exec.State() == sim.Holding {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, sim.Holding, exec.State())
}
