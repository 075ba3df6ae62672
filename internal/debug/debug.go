// Package debug provides session-scoped tracing for the reveal pipeline:
// compilation, engine steps, frame drawing and encoding.
//
// The debug system follows these principles:
//   - Single switch: TEXTBOX_DEBUG=1 or --debug enables everything
//   - Zero overhead: No performance impact when disabled
//   - Session scoped: Each render gets unique session ID for concurrent safety
//   - Machine parsable: JSON Lines by default, pretty format optional
package debug

import (
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// enabled is the global debug flag - set once at startup.
var enabled uint32

// SetEnabled configures debug mode globally.
// This should be called once at program startup.
func SetEnabled(on bool) {
	if on {
		atomic.StoreUint32(&enabled, 1)
	} else {
		atomic.StoreUint32(&enabled, 0)
	}
}

// Enabled returns true if debug mode is active.
func Enabled() bool {
	return atomic.LoadUint32(&enabled) == 1
}

// InitFromEnv initialises debug settings from environment variables.
// Recognised variables:
//   - TEXTBOX_DEBUG=1: Enable debug mode
//   - TEXTBOX_DEBUG_PRETTY=1: Use pretty output format (see PrettyFromEnv)
func InitFromEnv() {
	if os.Getenv(EnvDebug) == "1" {
		SetEnabled(true)
	}
}

// Environment variables consulted by InitFromEnv and PrettyFromEnv.
const (
	EnvDebug       = "TEXTBOX_DEBUG"
	EnvDebugPretty = "TEXTBOX_DEBUG_PRETTY"
)

// PrettyFromEnv reports whether TEXTBOX_DEBUG_PRETTY=1 is set.
func PrettyFromEnv() bool {
	return os.Getenv(EnvDebugPretty) == "1"
}

// Session represents a debug session for a single reveal.
// Batch renders open one session per job over a shared sink; the sinks in
// this package serialise writes, so sessions never interleave within a line.
type Session struct {
	sessionID string
	name      string
	sink      Sink
	startTime time.Time
}

// NewSession creates a new debug session with the provided sink.
// Returns nil if debug mode is not enabled.
func NewSession(sink Sink) *Session {
	return NewNamedSession(sink, "")
}

// NewNamedSession is NewSession with a label recorded in the start event,
// used to tell batch jobs apart.
func NewNamedSession(sink Sink, name string) *Session {
	if !Enabled() {
		return nil
	}
	if sink == nil {
		return nil
	}

	s := &Session{
		sessionID: generateSessionID(),
		name:      name,
		sink:      sink,
		startTime: time.Now(),
	}

	start := map[string]interface{}{
		"version": "1.0",
	}
	if name != "" {
		start["name"] = name
	}
	s.Emit("session", "Start", start)

	return s
}

// Name returns the label given to NewNamedSession.
func (s *Session) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// SessionID returns the unique identifier for this session.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	return s.sessionID
}

// Emit sends an event to the sink.
// This is a no-op if the session is nil (fast-path for disabled debug).
func (s *Session) Emit(phase, event string, data interface{}) {
	if s == nil {
		return
	}

	evt := Event{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		SessionID: s.sessionID,
		Phase:     phase,
		Event:     event,
		Data:      data,
	}

	// Write errors are intentionally ignored - debug failures should not break normal operation
	//nolint:errcheck // Debug sink errors are non-critical
	s.sink.Write(evt)
}

// Close emits the end event and flushes the sink. The sink itself stays
// open so that other sessions sharing it can keep writing; the owner closes it.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	// Emit session end event
	elapsed := time.Since(s.startTime).Milliseconds()
	s.Emit("session", "End", map[string]int64{
		"elapsed_ms": elapsed,
	})

	return s.sink.Flush()
}

// generateSessionID creates a short unique session identifier: the first
// group of a random UUID.
func generateSessionID() string {
	id, _, _ := strings.Cut(uuid.NewString(), "-")
	return id
}

// Event is the base envelope for all debug events.
type Event struct {
	Timestamp string      `json:"ts"`
	SessionID string      `json:"session_id"`
	Phase     string      `json:"phase"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
}
