// Package player animates a reveal in the terminal.
package player

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/ryanlewis/textbox"
)

// Options configures a player.
type Options struct {
	// Delay is the time between snapshots
	Delay time.Duration
	// SpeakerMarker is coloured when it leads a line; NoRune disables it
	SpeakerMarker rune
	// MarkerColor is a lipgloss colour for the speaker marker
	MarkerColor string
	// Output and Profile replace lipgloss's stdout renderer; tests use them
	// to force plain output
	Output  io.Writer
	Profile termenv.Profile
}

type tickMsg struct{ gen int }

// Model is the bubbletea model of the player.
type Model struct {
	box    *textbox.Box
	window textbox.Window
	done   bool
	// gen invalidates ticks scheduled before a restart
	gen int

	delay  time.Duration
	marker rune
	width  int

	keys   KeyMap
	help   help.Model
	frame  lipgloss.Style
	accent lipgloss.Style
}

// New returns a player for b.
func New(b *textbox.Box, opts Options) Model {
	if opts.Delay <= 0 {
		opts.Delay = 50 * time.Millisecond
	}
	if opts.MarkerColor == "" {
		opts.MarkerColor = "#dea386"
	}

	r := lipgloss.DefaultRenderer()
	if opts.Output != nil {
		r = lipgloss.NewRenderer(opts.Output, termenv.WithProfile(opts.Profile))
	}

	h := help.New()
	h.Styles.ShortKey = r.NewStyle().Bold(true)
	h.Styles.ShortDesc = r.NewStyle().Faint(true)
	h.Styles.ShortSeparator = r.NewStyle().Faint(true)

	return Model{
		box:    b,
		delay:  opts.Delay,
		marker: opts.SpeakerMarker,
		width:  widest(b),
		keys:   DefaultKeyMap(),
		help:   h,
		frame: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		accent: r.NewStyle().Foreground(lipgloss.Color(opts.MarkerColor)),
	}
}

// widest measures the widest line of the whole reveal in terminal cells, so
// the frame does not resize while text appears.
func widest(b *textbox.Box) int {
	w := 1
	for win := range textbox.All(textbox.FromEvents(b.Events())) {
		for _, line := range win {
			w = max(w, runewidth.StringWidth(line))
		}
	}
	return w
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Init starts the animation.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles ticks and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.gen || m.done {
			return m, nil
		}
		return m.step()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Finish):
			return m.finish(), nil
		case key.Matches(msg, m.keys.Restart):
			m.box = m.box.Restart()
			m.window = textbox.Window{}
			m.done = false
			m.gen++
			return m, m.tick()
		}
	}
	return m, nil
}

func (m Model) step() (tea.Model, tea.Cmd) {
	w, ok := m.box.Next()
	if !ok {
		m.done = true
		return m, nil
	}
	m.window = w
	return m, m.tick()
}

// finish jumps to the final snapshot.
func (m Model) finish() Model {
	for w, ok := m.box.Next(); ok; w, ok = m.box.Next() {
		m.window = w
	}
	m.done = true
	return m
}

// Window returns the snapshot on screen.
func (m Model) Window() textbox.Window { return m.window }

// Done reports whether the reveal has finished.
func (m Model) Done() bool { return m.done }

// View renders the box and the help line.
func (m Model) View() string {
	lines := make([]string, len(m.window))
	for i, line := range m.window {
		lines[i] = m.renderLine(line)
	}
	return m.frame.Render(strings.Join(lines, "\n")) + "\n" + m.help.View(m.keys)
}

func (m Model) renderLine(line string) string {
	pad := strings.Repeat(" ", max(0, m.width-runewidth.StringWidth(line)))
	if m.marker != textbox.NoRune {
		if rest, ok := strings.CutPrefix(line, string(m.marker)); ok {
			return m.accent.Render(string(m.marker)) + rest + pad
		}
	}
	return line + pad
}

// Run plays b until the user quits.
func Run(b *textbox.Box, opts Options) error {
	_, err := tea.NewProgram(New(b, opts)).Run()
	return err
}
