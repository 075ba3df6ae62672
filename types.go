package textbox

import (
	"errors"
	"strings"

	"github.com/ryanlewis/textbox/internal/debug"
)

// WindowLines is the number of lines visible in the dialogue box at once.
const WindowLines = 3

// Defaults used when no option overrides them.
const (
	// DefaultBudget is the number of ordinary characters allowed on one line
	// before an automatic wrap is inserted.
	DefaultBudget = 25

	// DefaultSpeakerMarker starts every new utterance.
	DefaultSpeakerMarker = '◆'

	// DefaultContinuationMarker starts every wrapped line.
	DefaultContinuationMarker = ' '

	// DefaultForcedBreak forces a wrap without consuming the line budget.
	DefaultForcedBreak = '|'

	// NoRune disables a marker or the forced-break delimiter.
	NoRune rune = 0
)

// Window is one snapshot of the dialogue box: top, middle and bottom line.
//
// Window is a value type. Snapshots returned by a Box are never modified
// after they are returned, so they can be retained and compared freely.
type Window [WindowLines]string

// Top returns the first visible line.
func (w Window) Top() string { return w[0] }

// Middle returns the second visible line.
func (w Window) Middle() string { return w[1] }

// Bottom returns the third visible line.
func (w Window) Bottom() string { return w[2] }

// Empty reports whether all three lines are empty.
func (w Window) Empty() bool {
	return w[0] == "" && w[1] == "" && w[2] == ""
}

// String joins the lines with newlines. Trailing empty lines are kept so the
// result always holds exactly WindowLines-1 newline characters.
func (w Window) String() string {
	return strings.Join(w[:], "\n")
}

// Common errors returned by the textbox package
var (
	// ErrInvalidBudget is returned when the per-line character budget is below 1
	ErrInvalidBudget = errors.New("invalid line budget")
)

// Option configures compilation of the reveal event queue.
type Option func(*options)

type options struct {
	budget       int
	speaker      rune
	continuation rune
	forcedBreak  rune
	debug        *debug.Session
}

func defaultOptions() *options {
	return &options{
		budget:       DefaultBudget,
		speaker:      DefaultSpeakerMarker,
		continuation: DefaultContinuationMarker,
		forcedBreak:  DefaultForcedBreak,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBudget sets the maximum number of ordinary characters on one line.
//
// Budget Behavior:
//   - Each rune counts as one unit regardless of its encoded byte length
//   - Speaker and continuation markers never count against the budget
//   - The rune that would exceed the budget starts a new wrapped line
//   - Values below 1 make New and Compile return ErrInvalidBudget
func WithBudget(budget int) Option {
	return func(opts *options) {
		opts.budget = budget
	}
}

// WithSpeakerMarker sets the glyph placed at the start of the text and after
// every literal newline. NoRune disables the marker; the first line then
// starts directly with the text.
func WithSpeakerMarker(r rune) Option {
	return func(opts *options) {
		opts.speaker = r
	}
}

// WithContinuationMarker sets the glyph placed at the start of lines begun
// by an automatic or forced wrap. NoRune disables it.
func WithContinuationMarker(r rune) Option {
	return func(opts *options) {
		opts.continuation = r
	}
}

// WithForcedBreak sets the delimiter that forces a wrap. NoRune disables
// forced breaks, in which case the default '|' is an ordinary character.
func WithForcedBreak(r rune) Option {
	return func(opts *options) {
		opts.forcedBreak = r
	}
}

// WithoutMarkers disables both markers and the forced break. This is the
// plain variant: the output holds only the input text.
func WithoutMarkers() Option {
	return func(opts *options) {
		opts.speaker = NoRune
		opts.continuation = NoRune
		opts.forcedBreak = NoRune
	}
}

// WithDebug attaches a debug session that receives compile and step events.
// A nil session disables tracing.
func WithDebug(session *debug.Session) Option {
	return func(opts *options) {
		opts.debug = session
	}
}
