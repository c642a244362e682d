package ui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/olivier-w/playa/internal/session"
	"github.com/rs/zerolog"
)

// KeySource yields one key name at a time, in the order they were pressed.
// NextKey blocks until a key arrives, the source is closed (io.EOF) or ctx
// is done.
type KeySource interface {
	NextKey(ctx context.Context) (string, error)
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Logger zerolog.Logger
}

// Dispatcher turns key presses into session operations.
type Dispatcher struct {
	session *session.Session
	keys    keyMap
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher for s.
func NewDispatcher(s *session.Session, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		session: s,
		keys:    newKeyMap(),
		log:     opts.Logger,
	}
}

// HelpLines returns the help overlay text for this dispatcher's bindings.
func (d *Dispatcher) HelpLines() []string {
	return d.keys.HelpLines()
}

// Dispatch applies a single key. It reports true when the key ended the
// session. Unknown keys are ignored.
func (d *Dispatcher) Dispatch(k string) bool {
	kp := keyPress(k)
	switch {
	case key.Matches(kp, d.keys.Quit):
		d.session.Shutdown()
		return true
	case key.Matches(kp, d.keys.Next):
		d.session.Next()
	case key.Matches(kp, d.keys.Prev):
		d.session.Previous()
	case key.Matches(kp, d.keys.SeekBack):
		d.session.SeekRelative(-seekStepSeconds)
	case key.Matches(kp, d.keys.SeekForward):
		d.session.SeekRelative(seekStepSeconds)
	case key.Matches(kp, d.keys.Jump):
		d.session.JumpTo(jumpNumber(k))
	case key.Matches(kp, d.keys.Scrub):
		d.session.SeekToFraction(ScrubFraction(scrubRank(k)))
	case key.Matches(kp, d.keys.Pause):
		d.session.TogglePause()
	case key.Matches(kp, d.keys.Mode):
		d.session.ToggleMode()
	case key.Matches(kp, d.keys.Help):
		d.session.ToggleHelp()
	default:
		return false
	}
	d.log.Debug().Str("key", k).Int("index", d.session.CurrentIndex()).Msg("key")
	return false
}

// Run reads keys from src until the quit key, the end of input or ctx is
// done. The session is shut down whichever way the loop ends.
func (d *Dispatcher) Run(ctx context.Context, src KeySource) error {
	defer d.session.Shutdown()
	for {
		k, err := src.NextKey(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if d.Dispatch(k) {
			return nil
		}
	}
}
