package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Sink is the interface for debug output destinations.
type Sink interface {
	Write(event Event) error
	Flush() error
	Close() error
}

// JSONSink writes events in JSON Lines format.
type JSONSink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	encoder *json.Encoder
}

// NewJSONSink creates a new JSON Lines sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	bw := bufio.NewWriter(w)
	return &JSONSink{
		w:       bw,
		encoder: json.NewEncoder(bw),
	}
}

// Write encodes and writes an event as a JSON line.
func (s *JSONSink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Encode(event)
}

// Flush writes any buffered data to the underlying writer.
func (s *JSONSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *JSONSink) Close() error {
	return s.Flush()
}

// PrettySink writes events in human-readable format.
type PrettySink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewPrettySink creates a new pretty-format sink writing to w.
func NewPrettySink(w io.Writer) *PrettySink {
	return &PrettySink{
		w: bufio.NewWriter(w),
	}
}

// Write formats and writes an event in human-readable format.
func (s *PrettySink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Format: [timestamp] [phase/event]
	fmt.Fprintf(s.w, "[%s] [%s/%s] session=%s\n", event.Timestamp, event.Phase, event.Event, event.SessionID)

	switch d := event.Data.(type) {
	case CompileData:
		s.writeCompile(d)
	case StepData:
		s.writeStep(d)
	case FrameData:
		s.writeFrame(d)
	case EncodeFrameData:
		fmt.Fprintf(s.w, "  index: %d, format: %s, delay_ms: %d\n", d.Index, d.Format, d.DelayMs)
	case EncodeDoneData:
		fmt.Fprintf(s.w, "  format: %s, output: %s\n", d.Format, d.Output)
		fmt.Fprintf(s.w, "  frames: %d, elapsed_ms: %d\n", d.Frames, d.ElapsedMs)
	case BatchJobData:
		s.writeBatchJob(d)
	case OptionsData:
		s.writeOptions(d)
	case ErrorData:
		fmt.Fprintf(s.w, "  %s: %s\n", d.Type, d.Message)
		s.writeMap(d.Context)
	case map[string]interface{}:
		s.writeMap(d)
	case map[string]int64:
		s.writeMapInt64(d)
	default:
		fmt.Fprintf(s.w, "  data: %+v\n", d)
	}

	return nil
}

func (s *PrettySink) writeCompile(d CompileData) {
	fmt.Fprintf(s.w, "  text_length: %d bytes, %d runes, budget: %d\n", d.TextLength, d.Runes, d.Budget)
	fmt.Fprintf(s.w, "  events: %d (chars=%d breaks=%d continuations=%d)\n",
		d.Events, d.Chars, d.Breaks, d.Continuations)
	fmt.Fprintf(s.w, "  auto_wraps: %d\n", d.AutoWraps)
}

func (s *PrettySink) writeStep(d StepData) {
	fmt.Fprintf(s.w, "  step: %d, rune: %s, active: %d, remaining: %d\n",
		d.Step, runeStr(d.Rune), d.Active, d.Remaining)
	for i, line := range d.Lines {
		fmt.Fprintf(s.w, "  line[%d]: %q\n", i, line)
	}
	if d.Evicted != "" {
		fmt.Fprintf(s.w, "  evicted: %q\n", d.Evicted)
	}
}

func (s *PrettySink) writeFrame(d FrameData) {
	fmt.Fprintf(s.w, "  index: %d, size: %dx%d, markers: %d\n", d.Index, d.Width, d.Height, d.Markers)
	fmt.Fprintf(s.w, "  elapsed_us: %d\n", d.ElapsedUs)
}

func (s *PrettySink) writeBatchJob(d BatchJobData) {
	fmt.Fprintf(s.w, "  name: %s, output: %s\n", d.Name, d.Output)
	fmt.Fprintf(s.w, "  frames: %d, elapsed_ms: %d\n", d.Frames, d.ElapsedMs)
	if d.Error != "" {
		fmt.Fprintf(s.w, "  error: %s\n", d.Error)
	}
}

func (s *PrettySink) writeOptions(d OptionsData) {
	marker := func(p *int) string {
		if p == nil {
			return "off"
		}
		return runeStr(rune(*p))
	}
	fmt.Fprintf(s.w, "  budget: %d, speed_ms: %d, audio: %t\n", d.Budget, d.SpeedMs, d.Audio)
	fmt.Fprintf(s.w, "  speaker: %s, continuation: %s, forced_break: %s\n",
		marker(d.Speaker), marker(d.Continuation), marker(d.ForcedBreak))
}

// writeMap prints keys in sorted order so output is stable.
func (s *PrettySink) writeMap(d map[string]interface{}) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.w, "  %s: %v\n", k, d[k])
	}
}

func (s *PrettySink) writeMapInt64(d map[string]int64) {
	for k, v := range d {
		fmt.Fprintf(s.w, "  %s: %d\n", k, v)
	}
}

// Flush writes any buffered data to the underlying writer.
func (s *PrettySink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *PrettySink) Close() error {
	return s.Flush()
}

// runeStr formats a rune for display: 'X' (0x58) or NUL for 0.
func runeStr(r rune) string {
	if r == 0 {
		return "NUL"
	}
	if r >= 32 && r < 127 {
		return fmt.Sprintf("'%c' (0x%02X)", r, r)
	}
	return fmt.Sprintf("%q (U+%04X)", r, r)
}
