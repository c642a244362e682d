package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	outputRate      = 44100
	outputChannels  = 2
	outputFrameSize = outputChannels * 2
	bytesPerSec     = outputRate * outputFrameSize
	chunkFrames     = 2048
)

type stereoFrame [outputChannels]int16

// resampler converts a decoder's PCM to 44.1kHz stereo by linear
// interpolation. Mono sources are duplicated onto both channels.
type resampler struct {
	src       audioDecoder
	srcRate   int64
	srcChans  int
	srcFrame  int
	srcFrames int64
	outFrames int64

	pos      int64
	outFrame int64
	pending  []byte

	// a is source frame aIdx, b is the one after it. b repeats a past the
	// end of the source.
	a, b   stereoFrame
	aIdx   int64
	primed bool

	in    []byte
	inOff int
}

func newResampler(src audioDecoder) (audioDecoder, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupported, rate)
	}
	chans := src.ChannelCount()
	if chans < 1 || chans > outputChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupported, chans)
	}
	if rate == outputRate && chans == outputChannels {
		return src, nil
	}

	frameSize := chans * 2
	srcFrames := src.Length() / int64(frameSize)
	outFrames := srcFrames * outputRate / int64(rate)
	if srcFrames > 0 && outFrames == 0 {
		outFrames = 1
	}
	return &resampler{
		src:       src,
		srcRate:   int64(rate),
		srcChans:  chans,
		srcFrame:  frameSize,
		srcFrames: srcFrames,
		outFrames: outFrames,
	}, nil
}

func (r *resampler) Length() int64     { return r.outFrames * outputFrameSize }
func (r *resampler) SampleRate() int   { return outputRate }
func (r *resampler) ChannelCount() int { return outputChannels }

func (r *resampler) Read(p []byte) (int, error) {
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		r.pos += int64(n)
		return n, nil
	}
	if r.outFrame >= r.outFrames {
		return 0, io.EOF
	}

	frames := (len(p) + outputFrameSize - 1) / outputFrameSize
	frames = int(min(int64(max(frames, 1)), r.outFrames-r.outFrame))
	out := make([]byte, 0, frames*outputFrameSize)
	for i := 0; i < frames; i++ {
		num := r.outFrame * r.srcRate
		idx, frac := num/outputRate, num%outputRate
		if err := r.advance(idx); err != nil {
			if len(out) == 0 {
				return 0, err
			}
			break
		}
		for ch := 0; ch < outputChannels; ch++ {
			s := lerp(r.a[ch], r.b[ch], frac)
			out = binary.LittleEndian.AppendUint16(out, uint16(s))
		}
		r.outFrame++
	}

	n := copy(p, out)
	r.pending = out[n:]
	r.pos += int64(n)
	return n, nil
}

func (r *resampler) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = r.pos + offset
	case io.SeekEnd:
		pos = r.Length() + offset
	default:
		return r.pos, fmt.Errorf("invalid whence %d", whence)
	}
	pos = min(max(pos, 0), r.Length())
	pos -= pos % outputFrameSize

	outFrame := pos / outputFrameSize
	srcFrame := outFrame * r.srcRate / outputRate
	if _, err := r.src.Seek(srcFrame*int64(r.srcFrame), io.SeekStart); err != nil {
		return r.pos, err
	}

	r.pos = pos
	r.outFrame = outFrame
	r.pending = nil
	r.in = r.in[:0]
	r.inOff = 0
	r.aIdx = srcFrame
	r.primed = false
	return pos, nil
}

// advance slides the interpolation window until a is source frame idx.
func (r *resampler) advance(idx int64) error {
	if !r.primed {
		a, err := r.readFrame()
		if err != nil {
			return err
		}
		r.a = a
		r.b = r.nextOr(a)
		r.primed = true
	}
	for r.aIdx < idx {
		r.a = r.b
		r.aIdx++
		r.b = r.nextOr(r.a)
	}
	return nil
}

func (r *resampler) nextOr(hold stereoFrame) stereoFrame {
	f, err := r.readFrame()
	if err != nil {
		return hold
	}
	return f
}

func (r *resampler) readFrame() (stereoFrame, error) {
	for len(r.in)-r.inOff < r.srcFrame {
		rest := copy(r.in, r.in[r.inOff:])
		r.in = r.in[:rest]
		r.inOff = 0

		want := rest + chunkFrames*r.srcFrame
		if cap(r.in) < want {
			grown := make([]byte, rest, want)
			copy(grown, r.in)
			r.in = grown
		}
		n, err := r.src.Read(r.in[rest:want])
		r.in = r.in[:rest+n]
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return stereoFrame{}, err
		}
	}

	b := r.in[r.inOff:]
	r.inOff += r.srcFrame
	left := int16(binary.LittleEndian.Uint16(b))
	if r.srcChans == 1 {
		return stereoFrame{left, left}, nil
	}
	return stereoFrame{left, int16(binary.LittleEndian.Uint16(b[2:]))}, nil
}

// lerp interpolates between a and b at frac/outputRate, rounding
// symmetrically around zero.
func lerp(a, b int16, frac int64) int16 {
	if frac == 0 || a == b {
		return a
	}
	d := (int64(b) - int64(a)) * frac
	if d < 0 {
		d -= outputRate / 2
	} else {
		d += outputRate / 2
	}
	return int16(int64(a) + d/outputRate)
}
