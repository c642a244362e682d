package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"
)

// ErrNoTrack is returned by operations that need a loaded track.
var ErrNoTrack = errors.New("no track loaded")

// countingReader tracks how many bytes the output has pulled. Reads and
// seeks are serialized so the output goroutine never sees the decoder mid
// seek.
type countingReader struct {
	reader io.ReadSeeker
	readMu sync.Mutex

	mu  sync.Mutex
	pos int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	cr.readMu.Lock()
	n, err := cr.reader.Read(p)
	cr.readMu.Unlock()

	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

// SeekTo moves the underlying reader to pos and resets the count.
func (cr *countingReader) SeekTo(pos int64) error {
	cr.readMu.Lock()
	defer cr.readMu.Unlock()
	if _, err := cr.reader.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
	return nil
}

// sink is the audio output for one track. *oto.Player implements it.
type sink interface {
	Play()
	Pause()
	IsPlaying() bool
	BufferedSize() int
	SetVolume(float64)
	Close() error
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   outputRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

func otoSink(r io.Reader) (sink, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return ctx.NewPlayer(r), nil
}

// Options configures an Engine.
type Options struct {
	// Volume in [0,1], applied to every track. Zero is silent.
	Volume float64
	Logger zerolog.Logger
}

// Engine plays one local file at a time through the shared oto context.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	newSink func(io.Reader) (sink, error)
	log     zerolog.Logger
	volume  float64

	path    string
	file    io.Closer
	decoder audioDecoder
	counter *countingReader
	out     sink
	paused  bool
}

// NewEngine opens the audio device and returns an idle Engine.
func NewEngine(opts Options) (*Engine, error) {
	if _, err := initOto(); err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return newEngine(opts, otoSink), nil
}

func newEngine(opts Options, newSink func(io.Reader) (sink, error)) *Engine {
	return &Engine{
		newSink: newSink,
		log:     opts.Logger,
		volume:  min(max(opts.Volume, 0), 1),
	}
}

// Load opens path and prepares it for playback without starting it. Any
// previously loaded track is released first.
func (e *Engine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.release()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	dec, err := newDecoder(path, f)
	if err != nil {
		f.Close()
		return err
	}
	dec, err = newResampler(dec)
	if err != nil {
		f.Close()
		return err
	}

	cr := &countingReader{reader: dec}
	out, err := e.newSink(cr)
	if err != nil {
		f.Close()
		return err
	}
	out.SetVolume(e.volume)

	e.path = path
	e.file = f
	e.decoder = dec
	e.counter = cr
	e.out = out
	e.paused = false
	e.log.Debug().Str("track", path).Int("duration_ms", e.durationMs()).Msg("loaded")
	return nil
}

// Play starts or resumes output.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return ErrNoTrack
	}
	e.out.Play()
	e.paused = false
	return nil
}

// Pause toggles between paused and playing. Without a track it does nothing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	if e.paused {
		e.out.Play()
	} else {
		e.out.Pause()
	}
	e.paused = !e.paused
	return nil
}

// Paused reports whether output is paused by Pause.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Stop halts output and releases the current track. It is safe to call
// repeatedly.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.release()
}

// Close is Stop for use with defer.
func (e *Engine) Close() error {
	return e.Stop()
}

// PositionMs returns what has actually been heard, which is what the
// decoder handed out minus what oto still holds.
func (e *Engine) PositionMs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return 0
	}
	pos := e.counter.Pos() - int64(e.out.BufferedSize())
	return bytesToMs(max(pos, 0))
}

// DurationMs returns the length of the loaded track, or 0.
func (e *Engine) DurationMs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durationMs()
}

func (e *Engine) durationMs() int {
	if e.decoder == nil {
		return 0
	}
	return bytesToMs(e.decoder.Length())
}

// SetPositionMs seeks to ms, clamped to the track. The output player is
// rebuilt so nothing buffered before the seek is heard after it.
func (e *Engine) SetPositionMs(ms int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return ErrNoTrack
	}

	total := e.decoder.Length()
	pos := int64(ms) * bytesPerSec / 1000
	pos = min(max(pos, 0), total)
	pos -= pos % outputFrameSize

	// The old output must stop pulling before the decoder moves.
	e.out.Pause()
	if err := e.out.Close(); err != nil {
		e.log.Warn().Err(err).Str("track", e.path).Msg("closing output")
	}
	e.out = nil

	if err := e.counter.SeekTo(pos); err != nil {
		return fmt.Errorf("seeking %s: %w", e.path, err)
	}

	out, err := e.newSink(e.counter)
	if err != nil {
		return err
	}
	out.SetVolume(e.volume)
	if !e.paused {
		out.Play()
	}
	e.out = out
	return nil
}

func (e *Engine) release() error {
	var errs []error
	if e.out != nil {
		e.out.Pause()
		errs = append(errs, e.out.Close())
	}
	if e.file != nil {
		errs = append(errs, e.file.Close())
	}
	e.path = ""
	e.file = nil
	e.decoder = nil
	e.counter = nil
	e.out = nil
	e.paused = false
	return errors.Join(errs...)
}

func bytesToMs(b int64) int {
	return int(b * 1000 / bytesPerSec)
}
