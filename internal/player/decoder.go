package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupported is returned for files whose extension has no decoder.
var ErrUnsupported = errors.New("unsupported format")

// audioDecoder presents a track as seekable s16le PCM at its own rate and
// channel count. Length and offsets are in output bytes.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder by the extension of name.
func newDecoder(name string, r io.ReadSeeker) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".mp3":
		return newMP3Decoder(r)
	case ".wav":
		return newWAVDecoder(r)
	case ".flac":
		return newFLACDecoder(r)
	case ".ogg":
		return newOGGDecoder(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// pcmCursor tracks the output position of decoders that convert whole
// blocks and hand them out piecewise.
type pcmCursor struct {
	pending []byte
	pos     int64
	length  int64
	frame   int64
}

// drain copies pending bytes into p.
func (c *pcmCursor) drain(p []byte) int {
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	c.pos += int64(n)
	return n
}

// emit hands out a freshly converted block, keeping what does not fit.
func (c *pcmCursor) emit(p, block []byte) int {
	c.pending = block
	return c.drain(p)
}

// target resolves a seek request to a clamped, frame aligned byte offset.
func (c *pcmCursor) target(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = c.pos + offset
	case io.SeekEnd:
		pos = c.length + offset
	default:
		return c.pos, fmt.Errorf("invalid whence %d", whence)
	}
	pos = min(max(pos, 0), c.length)
	return pos - pos%c.frame, nil
}

func (c *pcmCursor) reset(pos int64) {
	c.pending = nil
	c.pos = pos
}

func clampSample(s int) int16 {
	return int16(min(max(s, -32768), 32767))
}

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(r io.ReadSeeker) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

type wavDecoder struct {
	pcmCursor
	r        io.ReadSeeker
	pcmStart int64
	rate     int
	channels int
	srcDepth int
	srcFrame int64
	scratch  []byte
}

func newWAVDecoder(r io.ReadSeeker) (*wavDecoder, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupported, depth)
	}
	srcFrame := int64(channels * depth / 8)
	if srcFrame == 0 {
		return nil, errors.New("invalid WAV format chunk")
	}

	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}

	frames := dec.PCMLen() / srcFrame
	return &wavDecoder{
		pcmCursor: pcmCursor{
			length: frames * int64(channels) * 2,
			frame:  int64(channels) * 2,
		},
		r:        r,
		pcmStart: start,
		rate:     int(dec.SampleRate),
		channels: channels,
		srcDepth: depth,
		srcFrame: srcFrame,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}
	if d.pos >= d.length {
		return 0, io.EOF
	}

	width := d.srcDepth / 8
	samples := max(len(p)/2, 1)
	remaining := int((d.length - d.pos) / 2)
	samples = min(samples, remaining)

	need := samples * width
	if cap(d.scratch) < need {
		d.scratch = make([]byte, need)
	}
	src := d.scratch[:need]
	n, err := io.ReadFull(d.r, src)
	samples = n / width
	if samples == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}

	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		b := src[i*width:]
		var s int
		switch d.srcDepth {
		case 8:
			s = (int(b[0]) - 128) << 8
		case 16:
			s = int(int16(binary.LittleEndian.Uint16(b)))
		case 24:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			s = int(v >> 8)
		case 32:
			s = int(int32(binary.LittleEndian.Uint32(b)) >> 16)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clampSample(s)))
	}
	return d.emit(p, out), nil
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	src := pos / d.frame * d.srcFrame
	if _, err := d.r.Seek(d.pcmStart+src, io.SeekStart); err != nil {
		return d.pos, fmt.Errorf("seeking WAV: %w", err)
	}
	d.reset(pos)
	return pos, nil
}

func (d *wavDecoder) SampleRate() int   { return d.rate }
func (d *wavDecoder) ChannelCount() int { return d.channels }
func (d *wavDecoder) Length() int64     { return d.length }

type flacDecoder struct {
	pcmCursor
	stream   *flac.Stream
	rate     int
	channels int
	bps      int
}

func newFLACDecoder(r io.ReadSeeker) (*flacDecoder, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		pcmCursor: pcmCursor{
			length: int64(info.NSamples) * int64(channels) * 2,
			frame:  int64(channels) * 2,
		},
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: channels,
		bps:      int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	n := int(frame.Subframes[0].NSamples)
	out := make([]byte, n*d.channels*2)
	for i := 0; i < n; i++ {
		for ch := 0; ch < d.channels; ch++ {
			s := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				s >>= d.bps - 16
			} else if d.bps < 16 {
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(out[(i*d.channels+ch)*2:], uint16(clampSample(s)))
		}
	}
	return d.emit(p, out), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if _, err := d.stream.Seek(uint64(pos / d.frame)); err != nil {
		return d.pos, fmt.Errorf("seeking FLAC: %w", err)
	}
	d.reset(pos)
	return pos, nil
}

func (d *flacDecoder) SampleRate() int   { return d.rate }
func (d *flacDecoder) ChannelCount() int { return d.channels }
func (d *flacDecoder) Length() int64     { return d.length }

type oggDecoder struct {
	pcmCursor
	reader  *oggvorbis.Reader
	scratch []float32
}

func newOGGDecoder(r io.ReadSeeker) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	return &oggDecoder{
		pcmCursor: pcmCursor{
			length: reader.Length() * int64(channels) * 2,
			frame:  int64(channels) * 2,
		},
		reader: reader,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}

	want := max(len(p)/2, 1)
	if cap(d.scratch) < want {
		d.scratch = make([]float32, want)
	}
	samples := d.scratch[:want]
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	out := make([]byte, n*2)
	for i, s := range samples[:n] {
		s = min(max(s, -1), 1)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return d.emit(p, out), nil
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if err := d.reader.SetPosition(pos / d.frame); err != nil {
		return d.pos, fmt.Errorf("seeking OGG: %w", err)
	}
	d.reset(pos)
	return pos, nil
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }
func (d *oggDecoder) Length() int64     { return d.length }
