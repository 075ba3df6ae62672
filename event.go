package textbox

import (
	"fmt"
	"unicode/utf8"

	"github.com/ryanlewis/textbox/internal/debug"
)

// EventKind tags a reveal event.
type EventKind uint8

const (
	// VisibleChar appends Event.Rune to the active line.
	VisibleChar EventKind = iota
	// LineBreak moves to the next window line, shifting when the window is full.
	LineBreak
	// Continuation appends Event.Rune, the continuation marker, to the line
	// just started. It is never observable on its own.
	Continuation
)

func (k EventKind) String() string {
	switch k {
	case VisibleChar:
		return "VisibleChar"
	case LineBreak:
		return "LineBreak"
	case Continuation:
		return "Continuation"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one atomic unit of compiled input.
// Rune is meaningful for VisibleChar and Continuation only.
type Event struct {
	Kind EventKind
	Rune rune
}

func (e Event) String() string {
	if e.Kind == LineBreak {
		return "LineBreak"
	}
	return fmt.Sprintf("%s(%q)", e.Kind, e.Rune)
}

// Char returns a VisibleChar event for r.
func Char(r rune) Event { return Event{Kind: VisibleChar, Rune: r} }

// Break returns a LineBreak event.
func Break() Event { return Event{Kind: LineBreak} }

// Cont returns a Continuation event carrying marker r.
func Cont(r rune) Event { return Event{Kind: Continuation, Rune: r} }

// Compile turns text into the ordered reveal event queue.
//
// The scan is a single left-to-right pass over the runes of text:
//   - the first line gets the speaker marker as a visible character
//   - '\n' emits a line break followed by the speaker marker
//   - the forced-break rune emits a line break followed by the continuation marker
//   - any other rune is visible; the rune that would exceed the budget is
//     preceded by a line break and the continuation marker
//
// Compile fails only when the budget is below 1.
func Compile(text string, opts ...Option) ([]Event, error) {
	o := buildOptions(opts)
	return compile(text, o)
}

func compile(text string, o *options) ([]Event, error) {
	if o.budget < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, o.budget)
	}

	// Most runes map to exactly one event
	events := make([]Event, 0, len(text)+2)
	var wraps int

	speaker := func() {
		if o.speaker != NoRune {
			events = append(events, Char(o.speaker))
		}
	}
	continuation := func() {
		if o.continuation != NoRune {
			events = append(events, Cont(o.continuation))
		}
	}

	speaker()
	size := 0
	for _, r := range text {
		switch {
		case r == '\n':
			events = append(events, Break())
			speaker()
			size = 0
		case o.forcedBreak != NoRune && r == o.forcedBreak:
			events = append(events, Break())
			continuation()
			size = 0
		case size < o.budget:
			events = append(events, Char(r))
			size++
		default:
			events = append(events, Break())
			continuation()
			events = append(events, Char(r))
			size = 1
			wraps++
		}
	}

	if o.debug != nil {
		o.debug.Emit("compile", "Done", compileStats(text, o, events, wraps))
	}
	return events, nil
}

func compileStats(text string, o *options, events []Event, wraps int) debug.CompileData {
	d := debug.CompileData{
		TextLength: len(text),
		Runes:      utf8.RuneCountInString(text),
		Budget:     o.budget,
		Events:     len(events),
		AutoWraps:  wraps,
	}
	for _, e := range events {
		switch e.Kind {
		case VisibleChar:
			d.Chars++
		case LineBreak:
			d.Breaks++
		case Continuation:
			d.Continuations++
		}
	}
	return d
}
