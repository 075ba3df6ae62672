// Package textbox reveals dialogue text the way a retro game's text box does:
// one character at a time inside a fixed three-line window.
//
// Text is compiled once into a queue of reveal events (visible characters,
// line breaks and continuation markers). A Box steps through that queue and
// yields one Window snapshot per observable change, either one more visible
// character or a shift that scrolls the oldest line out of view.
//
// Rendering snapshots to images, encoding animations and playing them in a
// terminal live in the internal packages and the textbox command.
package textbox

import (
	"iter"
	"strings"
)

// Reveal returns every snapshot of the reveal of text, in order.
//
// Example:
//
//	frames, err := textbox.Reveal("Hello!\nHow are you?", textbox.WithBudget(20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range frames {
//	    fmt.Println(w)
//	}
func Reveal(text string, opts ...Option) ([]Window, error) {
	b, err := New(text, opts...)
	if err != nil {
		return nil, err
	}
	frames := make([]Window, 0, len(b.events))
	for {
		w, ok := b.Next()
		if !ok {
			return frames, nil
		}
		frames = append(frames, w)
	}
}

// All returns an iterator over the snapshots of b. Iterating consumes b;
// stopping early leaves the remaining events for the next call to Next.
func All(b *Box) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		for {
			w, ok := b.Next()
			if !ok || !yield(w) {
				return
			}
		}
	}
}

// Count returns the number of snapshots the reveal of text produces without
// keeping them.
func Count(text string, opts ...Option) (int, error) {
	events, err := Compile(text, opts...)
	if err != nil {
		return 0, err
	}
	return CountEvents(events), nil
}

// CountEvents returns the number of snapshots a Box over events produces:
// every visible character plus every line break that arrives with the window
// already full and changes what it shows. Shifts that only scroll
// marker-only lines into the same picture are not counted.
func CountEvents(events []Event) int {
	n := 0
	b := FromEvents(events)
	for _, ok := b.Next(); ok; _, ok = b.Next() {
		n++
	}
	return n
}

// SnapshotEvents returns, for each snapshot a Box over events produces, the
// event that produced it. Element i equals Box.Last after the i-th call to
// Next. It lets collaborators such as the audio track plan ahead of playback.
func SnapshotEvents(events []Event) []Event {
	var out []Event
	b := FromEvents(events)
	for _, ok := b.Next(); ok; _, ok = b.Next() {
		out = append(out, b.Last())
	}
	return out
}

// Transcript renders snapshots as text: each line wrapped in brackets so
// leading and trailing spaces stay visible, snapshots separated by a blank
// line. It is the format of the golden files and the frames command.
func Transcript(frames []Window) string {
	var sb strings.Builder
	for i, w := range frames {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for j, line := range w {
			if j > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteByte('[')
			sb.WriteString(line)
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
