package player

import (
	"errors"
	"io"
	"os"
	"testing"
)

func openWAV(t *testing.T, path string) audioDecoder {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { f.Close() })
	dec, err := newDecoder(path, f)
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	return dec
}

func TestNewDecoderRejectsUnknownExtension(t *testing.T) {
	_, err := newDecoder("song.xyz", nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestWAVDecoderReadsAllSamples(t *testing.T) {
	path := writeWAV(t, "ramp.wav", 44100, 2, 1000, func(i, ch int) int {
		if ch == 0 {
			return i
		}
		return -i
	})
	dec := openWAV(t, path)

	if dec.SampleRate() != 44100 || dec.ChannelCount() != 2 {
		t.Fatalf("unexpected format %d Hz x %d", dec.SampleRate(), dec.ChannelCount())
	}
	if dec.Length() != 4000 {
		t.Fatalf("expected length 4000, got %d", dec.Length())
	}

	samples := decodeSamples(t, dec)
	if len(samples) != 2000 {
		t.Fatalf("expected 2000 samples, got %d", len(samples))
	}
	for _, i := range []int{0, 1, 500, 999} {
		if samples[i*2] != int16(i) || samples[i*2+1] != int16(-i) {
			t.Fatalf("frame %d: got %d,%d", i, samples[i*2], samples[i*2+1])
		}
	}
}

func TestWAVDecoderSeekAlignsToFrame(t *testing.T) {
	path := writeWAV(t, "ramp.wav", 44100, 2, 1000, func(i, _ int) int { return i })
	dec := openWAV(t, path)

	pos, err := dec.Seek(403, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if pos != 400 {
		t.Fatalf("expected aligned offset 400, got %d", pos)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(dec, buf); err != nil {
		t.Fatalf("read after seek: %v", err)
	}
	if got := int16(uint16(buf[0]) | uint16(buf[1])<<8); got != 100 {
		t.Fatalf("expected frame 100 after seek, got %d", got)
	}

	if pos, _ := dec.Seek(1<<20, io.SeekStart); pos != dec.Length() {
		t.Fatalf("expected seek past end to clamp to %d, got %d", dec.Length(), pos)
	}
	if pos, _ := dec.Seek(-50, io.SeekStart); pos != 0 {
		t.Fatalf("expected negative seek to clamp to 0, got %d", pos)
	}
}

func TestPCMCursorRejectsBadWhence(t *testing.T) {
	c := pcmCursor{length: 100, frame: 4}
	if _, err := c.target(0, 42); err == nil {
		t.Fatal("expected error for invalid whence")
	}
}

func TestClampSample(t *testing.T) {
	if clampSample(40000) != 32767 || clampSample(-40000) != -32768 || clampSample(12) != 12 {
		t.Fatal("clampSample out of range")
	}
}
