package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/viz"
)

const (
	liveWidth   = 70
	liveHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer streams frames of a headless run to a plain terminal. Pass
// OnTick as the session.Run callback.
type LiveRenderer struct {
	w        io.Writer
	sess     *session.Session
	canvas   *viz.Canvas
	theme    viz.Theme
	interval float64
	realtime bool

	wallStart time.Time
	simStart  float64
	lastFrame float64
	frames    int
}

// NewLiveRenderer draws at most fps frames per simulated second. With
// realtime set, OnTick sleeps so simulated time tracks the wall clock.
func NewLiveRenderer(w io.Writer, sess *session.Session, fps int, theme viz.Theme, realtime bool) *LiveRenderer {
	if fps <= 0 {
		fps = 30
	}
	return &LiveRenderer{
		w:        w,
		sess:     sess,
		canvas:   viz.NewCanvas(liveWidth, liveHeight),
		theme:    theme,
		interval: 1 / float64(fps),
		realtime: realtime,
	}
}

func (r *LiveRenderer) OnTick(t session.Tick) bool {
	if r.wallStart.IsZero() {
		r.wallStart = time.Now()
		r.simStart = t.Now
	}
	if r.realtime {
		target := r.wallStart.Add(time.Duration((t.Now - r.simStart) * float64(time.Second)))
		if d := time.Until(target); d > 0 {
			time.Sleep(d)
		}
	}

	if r.frames > 0 && t.Now-r.lastFrame < r.interval {
		return true
	}
	r.lastFrame = t.Now
	r.frames++
	r.render(t.Now)
	return true
}

func (r *LiveRenderer) render(now float64) {
	frame, ok := r.sess.Frame(r.canvas)
	if !ok {
		return
	}
	r.canvas.Draw(frame)

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  t=%.2fs  rate=%.2f\n", r.sess.Mode().Info().Header, now, r.sess.Rate())
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")

	for _, line := range strings.Split(strings.TrimSuffix(r.canvas.Render(r.theme), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString("  " + strings.Join(frame.Texts(), "   ") + "\n")
	b.WriteString("  " + readoutLine(r.sess.Stats()) + "\n")

	fmt.Fprint(r.w, b.String())
}

// Frames is the number of frames drawn so far.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }
