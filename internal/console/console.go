// Package console is the external-collaborator input channel (spec.md
// §5): an async, socket-based command queue that the Executive drains
// at a tick-boundary synchronization barrier it owns, never mid-tick.
package console

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zerodha/logf"

	"camsim/internal/propbus"
	"camsim/internal/sim"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// CommandKind is the verb a console message carries.
type CommandKind string

const (
	CommandHold        CommandKind = "hold"
	CommandResume      CommandKind = "resume"
	CommandTrim        CommandKind = "trim"
	CommandQuit        CommandKind = "quit"
	CommandSetProperty CommandKind = "set"
)

// Command is one decoded console message (spec.md §5's "quit" and
// property-set commands, plus the hold/resume/trim transitions).
type Command struct {
	Kind     CommandKind `json:"kind"`
	Property string      `json:"property,omitempty"`
	Value    float64     `json:"value,omitempty"`
}

// Dispatcher queues commands arriving off any number of console
// connections and applies them only when the Executive calls
// ApplyPending, never from the connection's own goroutine — this is the
// "synchronization barrier owned by the Executive" spec.md §5 requires.
type Dispatcher struct {
	executive *sim.Executive
	bus       *propbus.Bus
	logger    logf.Logger

	mu      sync.Mutex
	pending []Command
}

// NewDispatcher builds a Dispatcher bound to the Executive it controls
// and the bus its "set" commands write through.
func NewDispatcher(executive *sim.Executive, bus *propbus.Bus, logger logf.Logger) *Dispatcher {
	return &Dispatcher{executive: executive, bus: bus, logger: logger}
}

// Enqueue appends a command for the next ApplyPending call. Safe to call
// from any goroutine, including a console connection's read loop.
func (d *Dispatcher) Enqueue(cmd Command) {
	d.mu.Lock()
	d.pending = append(d.pending, cmd)
	d.mu.Unlock()
}

// ApplyPending drains and applies every queued command. Call once per
// tick, between Executive.Step calls, never concurrently with Step.
func (d *Dispatcher) ApplyPending() {
	d.mu.Lock()
	cmds := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, cmd := range cmds {
		switch cmd.Kind {
		case CommandHold:
			d.executive.Hold()
		case CommandResume:
			d.executive.Resume()
		case CommandTrim:
			d.executive.Trim()
		case CommandQuit:
			d.executive.RequestQuit()
		case CommandSetProperty:
			if !d.bus.Set(cmd.Property, cmd.Value) {
				d.logger.Warn("console: set on unknown or read-only property", "property", cmd.Property)
			}
		default:
			d.logger.Warn("console: unrecognized command", "kind", cmd.Kind)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server accepts websocket connections and feeds every decoded Command
// into a Dispatcher. One connection at a time is expected (an operator's
// console), but any number may connect; all feed the same queue.
type Server struct {
	dispatcher *Dispatcher
	logger     logf.Logger
}

func NewServer(dispatcher *Dispatcher, logger logf.Logger) *Server {
	return &Server{dispatcher: dispatcher, logger: logger}
}

// ServeHTTP upgrades the connection and runs its read pump until the
// peer disconnects or a read fails; malformed messages are logged and
// skipped.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("console: upgrade failed", "error", err)
		return
	}
	go s.writePump(conn)
	s.readPump(conn)
}

// writePump keeps the connection alive with periodic pings so an idle
// console session is not dropped by an intervening proxy's idle timeout.
// It exits once readPump closes the connection.
func (s *Server) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (s *Server) readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("console: connection closed", "error", err)
			return
		}
		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			s.logger.Warn("console: malformed command", "error", err)
			continue
		}
		s.dispatcher.Enqueue(cmd)
	}
}
