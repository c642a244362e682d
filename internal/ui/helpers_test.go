package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/olivier-w/playa/internal/session"
	"github.com/rs/zerolog"
)

type stubBackend struct {
	mu       sync.Mutex
	position int
	duration int
	paused   bool
	stops    int
	loads    int
}

func (b *stubBackend) Load(string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loads++
	b.position = 0
	return nil
}

func (b *stubBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = false
	return nil
}

func (b *stubBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = !b.paused
	return nil
}

func (b *stubBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops++
	return nil
}

func (b *stubBackend) PositionMs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

func (b *stubBackend) SetPositionMs(ms int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = ms
	return nil
}

func (b *stubBackend) DurationMs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *stubBackend) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *stubBackend) stopCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

func newStubSession(t *testing.T, n int) (*session.Session, *stubBackend) {
	t.Helper()
	tracks := make([]session.Track, n)
	for i := range tracks {
		tracks[i] = session.Track{Path: fmt.Sprintf("/music/track%02d.mp3", i+1)}
	}
	b := &stubBackend{duration: 100000}
	s, err := session.New(tracks, b, session.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	return s, b
}

// sliceKeys replays a fixed key sequence and then reports io.EOF.
type sliceKeys struct {
	keys []string
}

func (s *sliceKeys) NextKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.keys) == 0 {
		return "", io.EOF
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, nil
}

// recordingScreen keeps every frame drawn.
type recordingScreen struct {
	mu     sync.Mutex
	frames []string
	width  int
	height int
	err    error
}

func (r *recordingScreen) Draw(frame string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return r.err
}

func (r *recordingScreen) Size() (int, int) {
	return r.width, r.height
}

func (r *recordingScreen) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}
