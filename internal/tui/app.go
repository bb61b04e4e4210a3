package tui

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stochlab/internal/logging"
	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const (
	rateStep   = 0.01
	readoutLen = 120
	barWidth   = 36
)

type screen int

const (
	screenMenu screen = iota
	screenLab
)

type Options struct {
	Mode    stochastic.Mode
	Rate    float64
	Seed    int64
	FPS     int
	Theme   string
	Refresh float64
	// SkipMenu opens straight into the lab for Mode.
	SkipMenu bool
	Logger   *slog.Logger
}

type Model struct {
	screen screen
	cursor int
	fpsCap int

	sess    *session.Session
	canvas  *viz.Canvas
	theme   viz.Theme
	keys    keyMap
	help    help.Model
	log     *slog.Logger
	sampler *stats.Throttle
	readout []float64

	paused bool
	clock  float64
	last   time.Time
	gen    int
	fps    float64

	width  int
	height int
}

func New(opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = stats.DefaultRefresh
	}
	log := logging.OrDefault(opts.Logger)

	m := Model{
		fpsCap: opts.FPS,
		sess: session.New(session.Config{
			Mode:    opts.Mode,
			Rate:    opts.Rate,
			Seed:    opts.Seed,
			Refresh: refresh,
			Logger:  log,
		}),
		canvas:  viz.NewCanvas(0, 0),
		theme:   viz.GetTheme(opts.Theme),
		keys:    newKeyMap(),
		help:    help.New(),
		log:     log,
		sampler: stats.NewThrottle(refresh),
	}
	for i, mode := range stochastic.Modes {
		if mode == opts.Mode {
			m.cursor = i
		}
	}
	if opts.SkipMenu {
		m.screen = screenLab
	}
	m.keys.inMenu = m.screen == screenMenu
	return m
}

type tickMsg struct {
	at  time.Time
	gen int
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/time.Duration(m.fpsCap), func(t time.Time) tea.Msg {
		return tickMsg{at: t, gen: gen}
	})
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenLab {
		return m.tick()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case tickMsg:
		// ticks from a loop started before the last menu round trip
		if m.screen != screenLab || msg.gen != m.gen {
			return m, nil
		}
		m.advance(msg.at)
		return m, m.tick()
	}
	return m, nil
}

// advance feeds one wall-clock step to the session. The lab clock only
// runs while unpaused.
func (m *Model) advance(at time.Time) {
	dt := 0.0
	if !m.last.IsZero() {
		dt = at.Sub(m.last).Seconds()
	}
	m.last = at
	if dt > 0 {
		m.fps = 1 / dt
	}
	if m.paused || dt <= 0 {
		return
	}

	m.clock += dt
	m.sess.Tick(dt, m.clock)
	if m.sampler.Ready(m.clock) {
		m.readout = append(m.readout, readoutValue(m.sess.Stats()))
		if len(m.readout) > readoutLen {
			m.readout = m.readout[1:]
		}
	}
}

func readoutValue(l stats.Live) float64 {
	if l.Mode == stochastic.Poisson {
		return l.Rate
	}
	return l.Probability
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		m.canvas.Resize(0, 0)
		return
	}
	m.canvas.Resize(max(m.width-6, 20), max(m.height-16, 6))
}

func (m *Model) clearReadout() {
	m.readout = nil
	m.sampler.Reset()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.screen == screenMenu {
		return m.menuKey(msg)
	}
	return m.labKey(msg)
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(stochastic.Modes)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Start, m.keys.Pause):
		mode := stochastic.Modes[m.cursor]
		if mode != m.sess.Mode() {
			m.sess.SetMode(mode)
			m.clearReadout()
		}
		m.screen = screenLab
		m.keys.inMenu = false
		m.paused = false
		m.last = time.Time{}
		m.gen++
		return m, tea.Batch(tea.ClearScreen, m.tick())
	}
	return m, nil
}

func (m Model) labKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
		m.keys.inMenu = true
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Mode):
		m.sess.SetMode(m.sess.Mode().Next())
		m.cursor = int(m.sess.Mode())
		m.clearReadout()
	case key.Matches(msg, m.keys.Up):
		m.sess.SetRate(roundRate(m.sess.Rate() + rateStep))
	case key.Matches(msg, m.keys.Down):
		m.sess.SetRate(roundRate(m.sess.Rate() - rateStep))
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Reset):
		m.sess.Reset()
		m.clearReadout()
	case key.Matches(msg, m.keys.Theme):
		m.theme = viz.NextTheme(m.theme)
		m.log.Debug("theme", "name", m.theme.Name)
	}
	return m, nil
}

func roundRate(r float64) float64 {
	return math.Round(r*100) / 100
}

func (m Model) View() string {
	if m.screen == screenMenu {
		return m.viewMenu()
	}
	return m.viewLab()
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("s t o c h l a b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, mode := range stochastic.Modes {
		info := mode.Info()
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-20s", info.Header)) + dim.Render(info.Description) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-20s", info.Header)) + dimmer.Render(info.Description) + "\n")
		}
	}

	b.WriteString("\n      " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) viewLab() string {
	var b strings.Builder
	mode := m.sess.Mode()
	info := mode.Info()

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s\n", statusIcon, cyan.Render(info.Header), statusText, dimmer.Render(m.theme.Name))

	rate := m.sess.Rate()
	filled := int(math.Round(rate * barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	value := fmt.Sprintf("%.2f", rate)
	if mode == stochastic.Poisson {
		value += fmt.Sprintf(" (λ≈%.1f Hz)", stochastic.EffectiveRate(rate))
	}
	fmt.Fprintf(&b, "   %s %s %s  %s\n\n", dim.Render(info.ParamLabel), bar, white.Render(value), dim.Render(fmt.Sprintf("%.0ffps", m.fps)))

	frame, ok := m.sess.Frame(m.canvas)
	if !ok {
		b.WriteString(dim.Render("   waiting for terminal size…") + "\n")
	} else {
		m.canvas.Draw(frame)
		for _, line := range strings.Split(strings.TrimSuffix(m.canvas.Render(m.theme), "\n"), "\n") {
			b.WriteString("   " + line + "\n")
		}
		label := m.theme.Style(viz.RoleLabel)
		b.WriteString("   " + label.Render(strings.Join(frame.Texts(), "   ")) + "\n")
	}

	b.WriteString("\n   " + white.Render(readoutLine(m.sess.Stats())) + "\n")

	if len(m.readout) > 1 {
		opts := []asciigraph.Option{
			asciigraph.Height(4),
			asciigraph.Width(min(max(m.width-16, 20), readoutLen)),
			asciigraph.Precision(2),
			asciigraph.Offset(3),
		}
		if mode == stochastic.Bernoulli {
			opts = append(opts, asciigraph.LowerBound(0), asciigraph.UpperBound(1), asciigraph.Caption("p̂ over time"))
		} else {
			opts = append(opts, asciigraph.LowerBound(0), asciigraph.Caption("rate (Hz) over time"))
		}
		b.WriteString(dim.Render(asciigraph.Plot(m.readout, opts...)) + "\n")
	}

	b.WriteString("\n   " + m.help.View(m.keys) + "\n")
	return b.String()
}

func readoutLine(l stats.Live) string {
	if l.Mode == stochastic.Poisson && l.SpikeCount > 1 {
		return fmt.Sprintf("%s   mean ISI %.1fms   CV %.2f", l, l.MeanISI*1000, l.CV)
	}
	return l.String()
}

// Run starts the lab on the alternate screen and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
