package player

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes a 16-bit PCM file whose samples are produced by sample,
// called with the frame and channel index.
func writeWAV(t *testing.T, name string, rate, chans, frames int, sample func(frame, ch int) int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, chans, 1)
	data := make([]int, 0, frames*chans)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < chans; ch++ {
			data = append(data, sample(i, ch))
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: chans, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finish %s: %v", path, err)
	}
	return path
}

func silence(int, int) int { return 0 }

// memDecoder serves s16le PCM from memory.
type memDecoder struct {
	*bytes.Reader
	rate  int
	chans int
}

func newMemDecoder(rate, chans int, samples []int16) *memDecoder {
	raw := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(s))
	}
	return &memDecoder{Reader: bytes.NewReader(raw), rate: rate, chans: chans}
}

func (d *memDecoder) Length() int64     { return d.Size() }
func (d *memDecoder) SampleRate() int   { return d.rate }
func (d *memDecoder) ChannelCount() int { return d.chans }

func decodeSamples(t *testing.T, r io.Reader) []int16 {
	t.Helper()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read PCM: %v", err)
	}
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

// fakeSink records what the engine asks of the output.
type fakeSink struct {
	mu       sync.Mutex
	src      io.Reader
	playing  bool
	volume   float64
	buffered int
	closed   bool
	// posAtClose is how far the source had been read when Close ran.
	posAtClose int64
}

func (s *fakeSink) Play()  { s.mu.Lock(); s.playing = true; s.mu.Unlock() }
func (s *fakeSink) Pause() { s.mu.Lock(); s.playing = false; s.mu.Unlock() }

func (s *fakeSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *fakeSink) BufferedSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffered
}

func (s *fakeSink) SetVolume(v float64) { s.mu.Lock(); s.volume = v; s.mu.Unlock() }

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if cr, ok := s.src.(*countingReader); ok {
		s.posAtClose = cr.Pos()
	}
	return nil
}

// sinkRecorder hands out fake sinks and remembers each one.
type sinkRecorder struct {
	sinks []*fakeSink
}

func (r *sinkRecorder) newSink(src io.Reader) (sink, error) {
	s := &fakeSink{src: src}
	r.sinks = append(r.sinks, s)
	return s, nil
}

func (r *sinkRecorder) last() *fakeSink {
	if len(r.sinks) == 0 {
		return nil
	}
	return r.sinks[len(r.sinks)-1]
}
