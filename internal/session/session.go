package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrEmptyPlaylist is returned by New when there is nothing to play.
var ErrEmptyPlaylist = errors.New("playlist is empty")

// statusTTL is how long a backend error stays on the status line.
const statusTTL = 5 * time.Second

// Track is one playlist entry. Path is the identifier handed to the backend;
// the remaining fields are optional display metadata.
type Track struct {
	Path   string
	Title  string
	Artist string
	Album  string
}

// Options configures a Session.
type Options struct {
	// ClampSeek clamps relative seeks to [0, duration] before they reach
	// the backend. When false the backend decides what out-of-range means.
	ClampSeek bool
	Logger    zerolog.Logger
}

// Session is the playback state shared by the input dispatcher and the
// renderer. Every exported method holds the session lock for its whole
// duration, including the backend calls it makes.
type Session struct {
	mu      sync.Mutex
	tracks  []Track
	backend Backend
	current int
	mode    ViewMode
	help    bool
	running bool

	clampSeek bool
	log       zerolog.Logger
	now       func() time.Time

	status     string
	statusTime time.Time
}

// Snapshot is a consistent copy of the session taken under the lock.
type Snapshot struct {
	Tracks     []Track
	Index      int
	Mode       ViewMode
	Help       bool
	Running    bool
	Paused     bool
	PositionMs int
	DurationMs int
	Status     string
}

// Current returns the track at Index.
func (s Snapshot) Current() Track {
	if s.Index < 0 || s.Index >= len(s.Tracks) {
		return Track{}
	}
	return s.Tracks[s.Index]
}

// New creates a session over tracks and immediately loads and plays the
// first one. The tracks slice must not be modified afterwards.
func New(tracks []Track, backend Backend, opts Options) (*Session, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}
	if backend == nil {
		return nil, fmt.Errorf("session: nil backend")
	}
	s := &Session{
		tracks:    tracks,
		backend:   backend,
		running:   true,
		clampSeek: opts.ClampSeek,
		log:       opts.Logger,
		now:       time.Now,
	}
	s.mu.Lock()
	s.loadAndPlay(0)
	s.mu.Unlock()
	return s, nil
}

// CurrentIndex returns the zero-based index of the current track.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Running reports whether the session has not been shut down.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Next plays the following track. No-op on the last track.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.current+1 >= len(s.tracks) {
		return
	}
	s.loadAndPlay(s.current + 1)
}

// Previous plays the preceding track. No-op on the first track.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.current-1 < 0 {
		return
	}
	s.loadAndPlay(s.current - 1)
}

// JumpTo plays track n, counted from 1. Out-of-range n is ignored.
func (s *Session) JumpTo(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := n - 1
	if !s.running || i < 0 || i >= len(s.tracks) {
		return
	}
	s.loadAndPlay(i)
}

// SeekRelative moves the playback position by deltaSeconds.
func (s *Session) SeekRelative(deltaSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	target := s.backend.PositionMs() + deltaSeconds*1000
	if s.clampSeek {
		target = clampMs(target, s.backend.DurationMs())
	}
	if err := s.backend.SetPositionMs(target); err != nil {
		s.fail(err, "seek failed")
	}
}

// SeekToFraction moves to fraction of the track duration. Fractions outside
// [0, 1] and an unknown duration are ignored.
func (s *Session) SeekToFraction(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || fraction < 0 || fraction > 1 {
		return
	}
	dur := s.backend.DurationMs()
	if dur <= 0 {
		return
	}
	if err := s.backend.SetPositionMs(int(fraction * float64(dur))); err != nil {
		s.fail(err, "seek failed")
	}
}

// TogglePause forwards to the backend's pause toggle.
func (s *Session) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if err := s.backend.Pause(); err != nil {
		s.fail(err, "pause failed")
	}
}

// ToggleMode switches between the now-playing and playlist views.
func (s *Session) ToggleMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.mode = s.mode.Next()
	}
}

// ToggleHelp shows or hides the help overlay.
func (s *Session) ToggleHelp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.help = !s.help
	}
}

// Mode returns the current view mode.
func (s *Session) Mode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// HelpVisible reports whether the help overlay is shown.
func (s *Session) HelpVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.help
}

// Shutdown stops the backend and marks the session as no longer running.
// Only the first call has any effect; it reports whether it was that call.
func (s *Session) Shutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	if err := s.backend.Stop(); err != nil {
		s.log.Warn().Err(err).Msg("stopping backend")
	}
	s.log.Debug().Int("index", s.current).Msg("session shut down")
	return true
}

// Snapshot copies the state the renderer needs.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tracks:     s.tracks,
		Index:      s.current,
		Mode:       s.mode,
		Help:       s.help,
		Running:    s.running,
		PositionMs: s.backend.PositionMs(),
		DurationMs: s.backend.DurationMs(),
	}
	if pr, ok := s.backend.(pauseReporter); ok {
		snap.Paused = pr.Paused()
	}
	if s.status != "" && s.now().Sub(s.statusTime) < statusTTL {
		snap.Status = s.status
	}
	return snap
}

// loadAndPlay is the only writer of s.current. Callers hold s.mu.
func (s *Session) loadAndPlay(i int) {
	path := s.tracks[i].Path
	if err := s.backend.Stop(); err != nil {
		s.log.Warn().Err(err).Msg("stopping backend")
	}
	s.current = i
	if err := s.backend.Load(path); err != nil {
		s.fail(err, "cannot play "+path)
		return
	}
	if err := s.backend.Play(); err != nil {
		s.fail(err, "cannot play "+path)
		return
	}
	s.status = ""
	s.log.Debug().Int("index", i).Str("track", path).Msg("playing")
}

// fail records a backend error. Callers hold s.mu.
func (s *Session) fail(err error, msg string) {
	s.log.Error().Err(err).Int("index", s.current).Msg(msg)
	s.status = fmt.Sprintf("%s: %v", msg, err)
	s.statusTime = s.now()
}

func clampMs(ms, durationMs int) int {
	if ms < 0 {
		return 0
	}
	if durationMs > 0 && ms > durationMs {
		return durationMs
	}
	return ms
}
