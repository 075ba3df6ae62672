package textbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ryanlewis/textbox/internal/debug"
)

func collect(t *testing.T, text string, opts ...Option) []Window {
	t.Helper()
	frames, err := Reveal(text, opts...)
	if err != nil {
		t.Fatalf("Reveal(%q) error = %v", text, err)
	}
	return frames
}

func assertFrames(t *testing.T, got, want []Window) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %d snapshots, want %d", len(got), len(want))
	}
	for i := 0; i < len(got) && i < len(want); i++ {
		if got[i] != want[i] {
			t.Errorf("snapshot %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestRevealMarkers covers the default variant: speaker marker on every
// utterance, space continuation marker, '|' forced break.
func TestRevealMarkers(t *testing.T) {
	got := collect(t, "aaab\ncccdd\ne|f", WithBudget(3))
	want := []Window{
		{"◆", "", ""},
		{"◆a", "", ""},
		{"◆aa", "", ""},
		{"◆aaa", "", ""},
		{"◆aaa", " b", ""},
		{"◆aaa", " b", "◆"},
		{"◆aaa", " b", "◆c"},
		{"◆aaa", " b", "◆cc"},
		{"◆aaa", " b", "◆ccc"},
		{" b", "◆ccc", ""},
		{" b", "◆ccc", " d"},
		{" b", "◆ccc", " dd"},
		{"◆ccc", " dd", ""},
		{"◆ccc", " dd", "◆"},
		{"◆ccc", " dd", "◆e"},
		{" dd", "◆e", ""},
		{" dd", "◆e", " f"},
	}
	assertFrames(t, got, want)
}

// TestRevealPlain covers the variant without markers or forced breaks.
func TestRevealPlain(t *testing.T) {
	got := collect(t, "aaab\ncccdd\ne", WithBudget(3), WithoutMarkers())
	want := []Window{
		{"a", "", ""},
		{"aa", "", ""},
		{"aaa", "", ""},
		{"aaa", "b", ""},
		{"aaa", "b", "c"},
		{"aaa", "b", "cc"},
		{"aaa", "b", "ccc"},
		{"b", "ccc", ""},
		{"b", "ccc", "d"},
		{"b", "ccc", "dd"},
		{"ccc", "dd", ""},
		{"ccc", "dd", "e"},
	}
	assertFrames(t, got, want)
}

func TestRevealEmpty(t *testing.T) {
	t.Run("speaker marker", func(t *testing.T) {
		got := collect(t, "")
		assertFrames(t, got, []Window{{"◆", "", ""}})
	})
	t.Run("plain", func(t *testing.T) {
		got := collect(t, "", WithoutMarkers())
		if len(got) != 0 {
			t.Errorf("got %d snapshots for empty plain input, want 0", len(got))
		}
	})
}

func TestSingleLineWithinBudget(t *testing.T) {
	tests := []string{"a", "hello", "exactly ten", "日本語", "x y z"}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			got := collect(t, text, WithBudget(11), WithoutMarkers())
			runes := []rune(text)
			if len(got) != len(runes) {
				t.Fatalf("got %d snapshots, want %d", len(got), len(runes))
			}
			for i, w := range got {
				want := Window{string(runes[:i+1]), "", ""}
				if w != want {
					t.Errorf("snapshot %d = %q, want %q", i, w, want)
				}
			}
		})
	}
}

func TestAutoWrapCountsRunes(t *testing.T) {
	got := collect(t, "日本語テキスト", WithBudget(3), WithSpeakerMarker(NoRune))
	want := []Window{
		{"日", "", ""},
		{"日本", "", ""},
		{"日本語", "", ""},
		{"日本語", " テ", ""},
		{"日本語", " テキ", ""},
		{"日本語", " テキス", ""},
		{"日本語", " テキス", " ト"},
	}
	assertFrames(t, got, want)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts []Option
		want []Event
	}{
		{
			name: "empty with speaker",
			text: "",
			want: []Event{Char('◆')},
		},
		{
			name: "empty plain",
			text: "",
			opts: []Option{WithoutMarkers()},
			want: []Event{},
		},
		{
			name: "forced break newline and wrap",
			text: "ab|c\nd",
			opts: []Option{WithBudget(2)},
			want: []Event{
				Char('◆'), Char('a'), Char('b'),
				Break(), Cont(' '), Char('c'),
				Break(), Char('◆'), Char('d'),
			},
		},
		{
			name: "auto wrap resets counter to one",
			text: "abcde",
			opts: []Option{WithBudget(2), WithSpeakerMarker(NoRune)},
			want: []Event{
				Char('a'), Char('b'),
				Break(), Cont(' '), Char('c'), Char('d'),
				Break(), Cont(' '), Char('e'),
			},
		},
		{
			name: "forced break disabled",
			text: "a|b",
			opts: []Option{WithForcedBreak(NoRune)},
			want: []Event{Char('◆'), Char('a'), Char('|'), Char('b')},
		},
		{
			name: "continuation disabled",
			text: "a|b",
			opts: []Option{WithContinuationMarker(NoRune), WithSpeakerMarker(NoRune)},
			want: []Event{Char('a'), Break(), Char('b')},
		},
		{
			name: "custom markers",
			text: "ab/c",
			opts: []Option{WithSpeakerMarker('*'), WithContinuationMarker('>'), WithForcedBreak('/')},
			want: []Event{Char('*'), Char('a'), Char('b'), Break(), Cont('>'), Char('c')},
		},
		{
			name: "markers do not consume budget",
			text: "ab\ncd",
			opts: []Option{WithBudget(2)},
			want: []Event{
				Char('◆'), Char('a'), Char('b'),
				Break(), Char('◆'), Char('c'), Char('d'),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.text, tt.opts...)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Compile() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInvalidBudget(t *testing.T) {
	for _, budget := range []int{0, -1, -25} {
		if _, err := Compile("abc", WithBudget(budget)); !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("Compile(budget=%d) error = %v, want ErrInvalidBudget", budget, err)
		}
		if b, err := New("abc", WithBudget(budget)); !errors.Is(err, ErrInvalidBudget) || b != nil {
			t.Errorf("New(budget=%d) = %v, %v, want nil, ErrInvalidBudget", budget, b, err)
		}
		if _, err := Reveal("", WithBudget(budget)); !errors.Is(err, ErrInvalidBudget) {
			t.Errorf("Reveal(budget=%d) error = %v, want ErrInvalidBudget", budget, err)
		}
	}
}

func TestLineBreakKeepsFilledLines(t *testing.T) {
	got := collect(t, "ab\ncd", WithoutMarkers())
	want := []Window{
		{"a", "", ""},
		{"ab", "", ""},
		{"ab", "c", ""},
		{"ab", "cd", ""},
	}
	assertFrames(t, got, want)
}

func TestShiftEvictsTop(t *testing.T) {
	got := collect(t, "a\nb\nc\nd", WithoutMarkers())
	want := []Window{
		{"a", "", ""},
		{"a", "b", ""},
		{"a", "b", "c"},
		{"b", "c", ""},
		{"b", "c", "d"},
	}
	assertFrames(t, got, want)
}

func TestConsecutiveForcedBreaks(t *testing.T) {
	// Each forced break opens its own line, leaving a marker-only line behind
	got := collect(t, "a||b")
	want := []Window{
		{"◆", "", ""},
		{"◆a", "", ""},
		{"◆a", " ", " b"},
	}
	assertFrames(t, got, want)
}

// TestUnchangedShiftsCoalesce covers shifts that leave the window as it was
// last shown: they are consumed with the next visible change.
func TestUnchangedShiftsCoalesce(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts []Option
		want []Window
	}{
		{
			name: "forced breaks scroll marker-only lines",
			text: "|||||",
			want: []Window{
				{"◆", "", ""},
				{" ", " ", ""},
			},
		},
		{
			name: "forced breaks then text",
			text: "|||||x",
			want: []Window{
				{"◆", "", ""},
				{" ", " ", ""},
				{" ", " ", " x"},
			},
		},
		{
			name: "leading newlines scroll an empty window",
			text: "\n\n\n\nab",
			opts: []Option{WithoutMarkers()},
			want: []Window{
				{"", "", "a"},
				{"", "", "ab"},
			},
		},
		{
			name: "blank lines scroll text out then stop",
			text: "a\n\n\n\nb",
			opts: []Option{WithoutMarkers()},
			want: []Window{
				{"a", "", ""},
				{"", "", ""},
				{"", "", "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.text, tt.opts...)
			assertFrames(t, got, tt.want)

			n, err := Count(tt.text, tt.opts...)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("Count() = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestTrailingBookkeeping(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts []Option
		want []Window
	}{
		{
			name: "trailing newline plain",
			text: "ab\n",
			opts: []Option{WithoutMarkers()},
			want: []Window{{"a", "", ""}, {"ab", "", ""}},
		},
		{
			name: "trailing forced break",
			text: "ab|",
			want: []Window{{"◆", "", ""}, {"◆a", "", ""}, {"◆ab", "", ""}},
		},
		{
			name: "trailing forced break with full window shifts",
			text: "a\nb\nc|",
			opts: []Option{WithSpeakerMarker(NoRune)},
			want: []Window{
				{"a", "", ""},
				{"a", "b", ""},
				{"a", "b", "c"},
				{"b", "c", ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.text, tt.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			var got []Window
			for w := range All(b) {
				got = append(got, w)
			}
			assertFrames(t, got, tt.want)
			if !b.Done() {
				t.Error("Done() = false after exhaustion")
			}
			if b.Remaining() != 0 {
				t.Errorf("Remaining() = %d after exhaustion", b.Remaining())
			}
		})
	}
}

func TestExhaustionIsTerminal(t *testing.T) {
	b, err := New("hi", WithoutMarkers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for range All(b) {
	}
	for i := 0; i < 3; i++ {
		if w, ok := b.Next(); ok {
			t.Fatalf("Next() after exhaustion = %q, true", w)
		}
	}
	if got := b.Window(); got != (Window{"hi", "", ""}) {
		t.Errorf("Window() after exhaustion = %q", got)
	}
}

// sampleTexts exercises every compile rule at several budgets.
var sampleTexts = []string{
	"",
	"a",
	"aaab\ncccdd\ne|f",
	"The quick brown fox jumps over the lazy dog.\nIt was|a dark night.",
	"||||",
	"\n\n\n\n",
	"a|\n|b\n",
	"日本語のテキストを表示します。\n二行目|三行目",
	strings.Repeat("long line without breaks ", 8),
}

func TestSnapshotCount(t *testing.T) {
	for _, text := range sampleTexts {
		for _, budget := range []int{1, 3, 10, 25} {
			for _, variant := range [][]Option{nil, {WithoutMarkers()}} {
				opts := append([]Option{WithBudget(budget)}, variant...)
				events, err := Compile(text, opts...)
				if err != nil {
					t.Fatalf("Compile() error = %v", err)
				}
				frames := collect(t, text, opts...)
				if want := CountEvents(events); len(frames) != want {
					t.Errorf("%q budget %d: %d snapshots, CountEvents = %d", text, budget, len(frames), want)
				}
				if n, _ := Count(text, opts...); n != len(frames) {
					t.Errorf("%q budget %d: Count() = %d, want %d", text, budget, n, len(frames))
				}
			}
		}
	}
}

func TestNoConsecutiveDuplicates(t *testing.T) {
	for _, text := range sampleTexts {
		for _, budget := range []int{1, 2, 5} {
			frames := collect(t, text, WithBudget(budget))
			for i := 1; i < len(frames); i++ {
				if frames[i] == frames[i-1] {
					t.Errorf("%q budget %d: snapshots %d and %d are both %q", text, budget, i-1, i, frames[i])
				}
			}
		}
	}
}

func TestLinesNeverExceedBudget(t *testing.T) {
	const budget = 4
	for _, text := range sampleTexts {
		for _, w := range collect(t, text, WithBudget(budget), WithoutMarkers()) {
			for i, line := range w {
				if n := len([]rune(line)); n > budget {
					t.Errorf("%q: line %d = %q has %d runes, budget %d", text, i, line, n, budget)
				}
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, text := range sampleTexts {
		a := collect(t, text, WithBudget(7))
		b := collect(t, text, WithBudget(7))
		assertFrames(t, a, b)
	}
}

func TestParallelReveals(t *testing.T) {
	want := make([][]Window, len(sampleTexts))
	for i, text := range sampleTexts {
		want[i] = collect(t, text, WithBudget(5))
	}

	var wg sync.WaitGroup
	got := make([][]Window, len(sampleTexts))
	for i, text := range sampleTexts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = Reveal(text, WithBudget(5))
		}()
	}
	wg.Wait()

	for i := range sampleTexts {
		assertFrames(t, got[i], want[i])
	}
}

func TestFromEventsCopiesQueue(t *testing.T) {
	events := []Event{Char('a'), Break(), Cont('>'), Char('b')}
	b := FromEvents(events)
	events[0] = Char('z')
	events[3] = Char('y')

	var got []Window
	for w := range All(b) {
		got = append(got, w)
	}
	assertFrames(t, got, []Window{{"a", "", ""}, {"a", ">b", ""}})
}

func TestLastAndSteps(t *testing.T) {
	b, err := New("a\nb\nc\nd", WithoutMarkers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Last() != (Event{}) {
		t.Errorf("Last() before first step = %v", b.Last())
	}

	wantLast := []Event{Char('a'), Char('b'), Char('c'), Break(), Char('d')}
	for i, want := range wantLast {
		if _, ok := b.Next(); !ok {
			t.Fatalf("Next() exhausted at step %d", i)
		}
		if got := b.Last(); got != want {
			t.Errorf("step %d Last() = %v, want %v", i, got, want)
		}
		if b.Steps() != i+1 {
			t.Errorf("Steps() = %d, want %d", b.Steps(), i+1)
		}
	}
	if b.Active() != 2 {
		t.Errorf("Active() = %d, want 2", b.Active())
	}
}

func TestSnapshotEventsMatchesLast(t *testing.T) {
	for _, text := range sampleTexts {
		b, err := New(text, WithBudget(5))
		if err != nil {
			t.Fatalf("New(%q) error = %v", text, err)
		}
		planned := SnapshotEvents(b.Events())

		var got []Event
		for _, ok := b.Next(); ok; _, ok = b.Next() {
			got = append(got, b.Last())
		}
		if len(got) != len(planned) {
			t.Fatalf("%q: %d snapshots, SnapshotEvents planned %d", text, len(got), len(planned))
		}
		for i := range got {
			if got[i] != planned[i] {
				t.Errorf("%q: snapshot %d produced by %v, planned %v", text, i, got[i], planned[i])
			}
		}
		if len(b.Events()) != len(b.events) {
			t.Errorf("Events() should return the whole queue after consumption")
		}
	}
}

func TestRestart(t *testing.T) {
	b, err := New("hello\nworld", WithBudget(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var first []Window
	for w := range All(b) {
		first = append(first, w)
	}

	r := b.Restart()
	if r == b {
		t.Fatal("Restart() returned the receiver")
	}
	var second []Window
	for w := range All(r) {
		second = append(second, w)
	}
	assertFrames(t, second, first)

	if _, ok := b.Next(); ok {
		t.Error("Restart() revived the original box")
	}

	fe := FromEvents([]Event{Char('x')}).Restart()
	if w, ok := fe.Next(); !ok || w != (Window{"x", "", ""}) {
		t.Errorf("FromEvents restart Next() = %q, %v", w, ok)
	}
}

func TestAllStopsEarly(t *testing.T) {
	b, err := New("abcdef", WithoutMarkers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	n := 0
	for range All(b) {
		n++
		if n == 2 {
			break
		}
	}
	w, ok := b.Next()
	if !ok || w != (Window{"abc", "", ""}) {
		t.Errorf("Next() after early stop = %q, %v", w, ok)
	}
}

func TestWindowAccessors(t *testing.T) {
	w := Window{"top", "mid", ""}
	if w.Top() != "top" || w.Middle() != "mid" || w.Bottom() != "" {
		t.Errorf("accessors = %q %q %q", w.Top(), w.Middle(), w.Bottom())
	}
	if got := w.String(); got != "top\nmid\n" {
		t.Errorf("String() = %q", got)
	}
	if w.Empty() || !(Window{}).Empty() {
		t.Error("Empty() mismatch")
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{Char('a'), `VisibleChar('a')`},
		{Break(), "LineBreak"},
		{Cont(' '), `Continuation(' ')`},
		{Event{Kind: EventKind(9)}, `EventKind(9)('\x00')`},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestDebugTrace(t *testing.T) {
	debug.SetEnabled(true)
	defer debug.SetEnabled(false)

	var buf bytes.Buffer
	session := debug.NewSession(debug.NewJSONSink(&buf))
	frames := collect(t, "a\nb\nc\nd", WithoutMarkers(), WithDebug(session))
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	counts := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var evt debug.Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		counts[evt.Phase+"/"+evt.Event]++
	}

	want := map[string]int{
		"session/Start":  1,
		"compile/Done":   1,
		"step/Char":      4,
		"step/Shift":     1,
		"step/Exhausted": 1,
		"session/End":    1,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s events = %d, want %d (all: %v)", k, counts[k], n, counts)
		}
	}
	if len(frames) != 5 {
		t.Errorf("got %d snapshots, want 5", len(frames))
	}
}
