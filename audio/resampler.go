// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// Quality selects the interpolation kernel used by the Resampler.
type Quality int

const (
	// QualityLinear interpolates between two neighbouring frames. Cheap,
	// good enough for playback of speech and most game audio.
	QualityLinear Quality = iota
	// QualityCubic uses Catmull-Rom interpolation over a four frame
	// window. More CPU, less aliasing.
	QualityCubic
)

// Resampler streams from src to a target sample rate. Works on interleaved
// samples and preserves the channel count.
//
// The conversion ratio is reduced by the gcd of the two rates and the read
// position is advanced as an exact integer fraction (phase/stepDen), so long
// streams never drift the way a running float position would. Only the
// interpolation weight itself is computed in floating point.
type Resampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int
	quality  Quality

	// Each output frame advances the source position by stepNum/stepDen
	// source frames. phase is the fractional part of the position in units
	// of 1/stepDen, kept in [0, stepDen) between output frames.
	stepNum int
	stepDen int
	phase   int

	// Sliding window around the read position:
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2.
	// Linear interpolates frames[1..2], cubic uses all four. isDup marks
	// slots holding a duplicated edge frame rather than real input.
	frames [4][]float32
	isDup  [4]bool

	srcBuf []float32
	primed bool
	eof    bool
}

// NewResampler creates a linear-interpolation resampler converting src to
// dstRate. Both the source rate and dstRate must be positive.
func NewResampler(src Source, dstRate int) (*Resampler, error) {
	return NewResamplerQuality(src, dstRate, QualityLinear)
}

// NewResamplerQuality is NewResampler with an explicit interpolation kernel.
func NewResamplerQuality(src Source, dstRate int, quality Quality) (*Resampler, error) {
	if src.SampleRate() <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler %d -> %d Hz: %w", src.SampleRate(), dstRate, ErrInvalidRate)
	}
	if src.Channels() <= 0 {
		return nil, fmt.Errorf("resampler: %w", ErrInvalidChannels)
	}

	channels := src.Channels()
	g := gcd(src.SampleRate(), dstRate)

	r := &Resampler{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		channels: channels,
		quality:  quality,
		stepNum:  src.SampleRate() / g,
		stepDen:  dstRate / g,
		srcBuf:   make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r, nil
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Reset rewinds the inner source and clears all interpolation state.
func (r *Resampler) Reset() error {
	if err := r.src.Reset(); err != nil {
		return fmt.Errorf("%w", err)
	}
	r.phase = 0
	r.primed = false
	r.eof = false
	for i := range r.isDup {
		r.isDup[i] = false
	}
	return nil
}

// readFrame reads exactly one interleaved frame from the source into dst.
// Returns io.EOF when no complete frame is available; a trailing partial
// frame is dropped because its missing channels are not determined by the
// input.
func (r *Resampler) readFrame(dst []float32) error {
	if r.eof {
		return io.EOF
	}

	got := 0
	for got < r.channels {
		n, err := r.src.ReadSamples(r.srcBuf[got:r.channels])
		got += n
		if err == io.EOF {
			r.eof = true
			if got < r.channels {
				return io.EOF
			}
			break
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		if n == 0 {
			r.eof = true
			if got < r.channels {
				return io.EOF
			}
			break
		}
	}

	copy(dst, r.srcBuf[:r.channels])
	return nil
}

// prime fills the initial window. frames[1] holds the first input frame and
// frames[0] duplicates it as the leading edge. An empty source is io.EOF;
// a source that fails its very first read surfaces that error as-is.
func (r *Resampler) prime() error {
	if err := r.readFrame(r.frames[1]); err != nil {
		return err
	}
	copy(r.frames[0], r.frames[1])
	r.isDup[0] = true

	for i := 2; i < 4; i++ {
		if err := r.readFrame(r.frames[i]); err != nil {
			if err != io.EOF {
				return err
			}
			copy(r.frames[i], r.frames[i-1])
			r.isDup[i] = true
		}
	}

	r.primed = true
	return nil
}

// advance slides the window one input frame forward, duplicating the last
// real frame once the source is exhausted.
func (r *Resampler) advance() {
	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.isDup[0], r.isDup[1], r.isDup[2] = r.isDup[1], r.isDup[2], r.isDup[3]

	if err := r.readFrame(r.frames[3]); err != nil {
		copy(r.frames[3], r.frames[2])
		r.isDup[3] = true
	} else {
		r.isDup[3] = false
	}
}

// ReadSamples produces samples at the target rate. dst length must be a
// multiple of the channel count.
//
// Output ends as soon as the read position passes the last input frame: for
// N input frames the stream yields ceil(N*dstRate/srcRate) output frames,
// then io.EOF. Identity conversion is a bit-exact passthrough.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.srcRate == r.dstRate {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.phase >= r.stepDen {
			r.phase -= r.stepDen
			r.advance()
		}
		// frames[1] being a duplicate means the position is past the
		// end of the input.
		if r.isDup[1] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		t := float32(r.phase) / float32(r.stepDen)
		out := dst[written*r.channels:]
		switch r.quality {
		case QualityCubic:
			for c := 0; c < r.channels; c++ {
				out[c] = utils.CubicInterpolate(
					r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], t)
			}
		default:
			for c := 0; c < r.channels; c++ {
				out[c] = r.frames[1][c]*(1-t) + r.frames[2][c]*t
			}
		}

		written++
		r.phase += r.stepNum
	}

	return written * r.channels, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
