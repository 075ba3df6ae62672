package textbox

import (
	"unicode/utf8"

	"github.com/ryanlewis/textbox/internal/debug"
)

// lastLine is the index of the bottom window line. The active-line counter
// saturates here.
const lastLine = WindowLines - 1

// Box is the reveal engine: a three-line window stepping through a compiled
// event queue one observable change at a time.
//
// A Box is forward-only and not safe for concurrent use. Independent boxes
// share nothing and may run in parallel.
type Box struct {
	lines  [WindowLines][]byte
	active int

	// events is private to the box and never written; pos is the consumption point
	events []Event
	pos    int

	// setup is retained for Restart
	text string
	opts *options

	// shown is the last snapshot returned; the zero Window before the first
	shown Window
	last  Event
	steps int
	debug *debug.Session
}

// New compiles text and returns a Box positioned before the first snapshot.
// It returns ErrInvalidBudget when the configured budget is below 1.
func New(text string, opts ...Option) (*Box, error) {
	o := buildOptions(opts)
	events, err := compile(text, o)
	if err != nil {
		return nil, err
	}
	b := FromEvents(events)
	b.text = text
	b.opts = o
	b.debug = o.debug
	return b, nil
}

// FromEvents returns a Box over a copy of events. Later changes to the
// caller's slice do not affect the box.
func FromEvents(events []Event) *Box {
	queue := make([]Event, len(events))
	copy(queue, events)
	return &Box{events: queue}
}

// Next applies events until the window visibly changes and returns the new
// snapshot. It returns false once the queue is exhausted; every later call
// returns false as well.
//
// Line breaks that still have room in the window and continuation markers are
// consumed within the same call as the next visible character or shift. A
// shift that leaves the window as it was last returned, such as scrolling
// lines that hold only continuation markers, is consumed the same way, so no
// two consecutive snapshots are equal. When the queue ends while only such
// events were consumed, Next reports exhaustion.
func (b *Box) Next() (Window, bool) {
	for b.pos < len(b.events) {
		e := b.events[b.pos]
		b.pos++

		switch e.Kind {
		case VisibleChar:
			b.lines[b.active] = utf8.AppendRune(b.lines[b.active], e.Rune)
			return b.observe(e, b.Window(), ""), true
		case Continuation:
			b.lines[b.active] = utf8.AppendRune(b.lines[b.active], e.Rune)
		case LineBreak:
			if b.active < lastLine {
				b.active++
				continue
			}
			evicted := b.shift()
			w := b.Window()
			if w == b.shown {
				continue
			}
			return b.observe(e, w, evicted), true
		}
	}

	if b.debug != nil && b.pos == len(b.events) {
		b.debug.Emit("step", "Exhausted", map[string]interface{}{
			"steps":  b.steps,
			"events": len(b.events),
		})
		// Report exhaustion once
		b.pos++
	}
	return Window{}, false
}

// shift evicts the top line and promotes the other two. The evicted buffer
// is recycled as the new bottom line, so its content is returned as a copy.
func (b *Box) shift() string {
	top := b.lines[0]
	evicted := string(top)
	b.lines[0] = b.lines[1]
	b.lines[1] = b.lines[2]
	b.lines[2] = top[:0]
	return evicted
}

func (b *Box) observe(e Event, w Window, evicted string) Window {
	b.shown = w
	b.last = e
	b.steps++
	if b.debug != nil {
		name := "Char"
		if e.Kind == LineBreak {
			name = "Shift"
		}
		b.debug.Emit("step", name, debug.StepData{
			Step:      b.steps,
			Rune:      e.Rune,
			Active:    b.active,
			Remaining: b.Remaining(),
			Lines:     w,
			Evicted:   evicted,
		})
	}
	return w
}

// Window returns the current snapshot without advancing.
func (b *Box) Window() Window {
	return Window{string(b.lines[0]), string(b.lines[1]), string(b.lines[2])}
}

// Last returns the event that produced the most recent snapshot: a
// VisibleChar or a LineBreak that shifted the window. Before the first
// snapshot it returns the zero Event.
func (b *Box) Last() Event { return b.last }

// Steps returns the number of snapshots produced so far.
func (b *Box) Steps() int { return b.steps }

// Active returns the index of the line currently receiving characters.
func (b *Box) Active() int { return b.active }

// Remaining returns the number of events not yet consumed.
func (b *Box) Remaining() int {
	if b.pos >= len(b.events) {
		return 0
	}
	return len(b.events) - b.pos
}

// Events returns a copy of the full compiled queue, consumed or not.
func (b *Box) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Done reports whether the queue is exhausted.
func (b *Box) Done() bool { return b.pos >= len(b.events) }

// Restart returns a fresh Box built from the same text and options by
// recompiling. A Box built with FromEvents restarts over its own queue.
// The receiver is left untouched.
func (b *Box) Restart() *Box {
	if b.opts == nil {
		return FromEvents(b.events)
	}
	// Options were validated when b was constructed
	events, _ := compile(b.text, b.opts)
	nb := &Box{events: events, text: b.text, opts: b.opts, debug: b.opts.debug}
	return nb
}
