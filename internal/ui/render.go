package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/olivier-w/playa/internal/session"
	"github.com/olivier-w/playa/internal/util"
	"github.com/rs/zerolog"
)

// DefaultRefreshInterval is how often the renderer redraws.
const DefaultRefreshInterval = 100 * time.Millisecond

// Screen receives whole frames. Draw replaces whatever was shown before
// and flushes it to the terminal. It returns ErrScreenClosed once the
// screen can no longer show frames.
type Screen interface {
	Draw(frame string) error
}

// ErrScreenClosed is returned by Draw after the screen has shut down.
var ErrScreenClosed = errors.New("screen closed")

// Layout is the part of the render input that does not come from the session.
type Layout struct {
	// Width and Height are the terminal size in cells; 0 means unknown.
	Width     int
	Height    int
	HelpLines []string
}

// Render draws one frame from a session snapshot. It does not touch the
// session and never fails on a zero or stale duration.
func Render(snap session.Snapshot, l Layout) string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("playa"))
	b.WriteString("\n\n")

	switch {
	case snap.Help:
		renderHelp(&b, l)
	case snap.Mode == session.Playlist:
		renderPlaylist(&b, snap, l)
	default:
		renderNowPlaying(&b, snap, l)
	}
	return b.String()
}

func renderHelp(b *strings.Builder, l Layout) {
	for _, line := range l.HelpLines {
		b.WriteString("  ")
		b.WriteString(statusStyle.Render(line))
		b.WriteString("\n")
	}
}

func renderNowPlaying(b *strings.Builder, snap session.Snapshot, l Layout) {
	track := snap.Current()

	b.WriteString("  ")
	b.WriteString(titleStyle.Render(truncate(track.Path, l.Width-2)))
	b.WriteString("\n")
	if sub := subtitle(track); sub != "" {
		b.WriteString("  ")
		b.WriteString(artistStyle.Render(truncate(sub, l.Width-2)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fraction := progressFraction(snap.PositionMs, snap.DurationMs)
	b.WriteString("  ")
	b.WriteString(renderProgressBar(fraction))
	b.WriteString("  ")
	b.WriteString(timeStyle.Render(fmt.Sprintf("%s / %s",
		util.FormatMillis(snap.PositionMs), util.FormatMillis(snap.DurationMs))))
	b.WriteString("\n\n")

	state := "▶  playing"
	if snap.Paused {
		state = "❚❚ paused"
	}
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s  %d/%d", state, snap.Index+1, len(snap.Tracks))))
	b.WriteString("\n")
	if snap.Status != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(truncate(snap.Status, l.Width-2)))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render("? help  esc playlist  ctrl+c quit"))
	b.WriteString("\n")
}

// subtitle joins whatever tag metadata is known about a track.
func subtitle(t session.Track) string {
	var parts []string
	for _, s := range []string{t.Title, t.Artist, t.Album} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " - ")
}

// renderPlaylist lists the tracks. The current entry carries a "> " marker
// and starts two columns left of the others.
func renderPlaylist(b *strings.Builder, snap session.Snapshot, l Layout) {
	start, end := playlistWindow(len(snap.Tracks), snap.Index, l.Height-4)
	for i := start; i < end; i++ {
		label := fmt.Sprintf("%d. %s", i+1, snap.Tracks[i].Path)
		if i == snap.Index {
			b.WriteString("  > ")
			b.WriteString(currentStyle.Render(truncate(label, l.Width-4)))
		} else {
			b.WriteString("    ")
			b.WriteString(trackStyle.Render(truncate(label, l.Width-4)))
		}
		b.WriteString("\n")
	}
}

// playlistWindow picks which tracks fit in rows lines while keeping current
// visible. rows <= 0 means no limit.
func playlistWindow(n, current, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := current - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

// truncate shortens s to width cells. width <= 0 means unlimited.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// sizer reports the current terminal size.
type sizer interface {
	Size() (width, height int)
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	Interval  time.Duration
	HelpLines []string
	Logger    zerolog.Logger
}

// Renderer periodically draws the session onto a screen.
type Renderer struct {
	session  *session.Session
	screen   Screen
	interval time.Duration
	help     []string
	log      zerolog.Logger
}

// NewRenderer creates a Renderer drawing s onto screen.
func NewRenderer(s *session.Session, screen Screen, opts RendererOptions) *Renderer {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Renderer{
		session:  s,
		screen:   screen,
		interval: interval,
		help:     opts.HelpLines,
		log:      opts.Logger,
	}
}

// Run redraws on every tick until the session stops running, the screen
// closes or ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if !r.tick() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// tick draws one frame and reports whether the loop should continue.
func (r *Renderer) tick() bool {
	snap := r.session.Snapshot()
	if !snap.Running {
		return false
	}
	l := Layout{HelpLines: r.help}
	if sz, ok := r.screen.(sizer); ok {
		l.Width, l.Height = sz.Size()
	}
	if err := r.screen.Draw(Render(snap, l)); err != nil {
		if errors.Is(err, ErrScreenClosed) {
			r.log.Debug().Msg("screen closed, renderer stopping")
			return false
		}
		r.log.Warn().Err(err).Msg("draw failed")
	}
	return true
}
