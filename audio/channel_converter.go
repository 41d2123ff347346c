// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ChannelConverter remaps an interleaved stream from the source channel
// count to a target channel count. Mono input is replicated into every
// output channel, multi-channel input collapsing to mono is averaged, and
// any other pair maps each output channel to the nearest available input
// channel. No (in, out) combination panics.
//
// The mapping is per frame; equal channel counts pass through. Sources
// count samples, not frames, so a read may end mid-frame: the converter
// carries those samples over to the next read instead of dropping them.
type ChannelConverter struct {
	src      Source
	channels int
	tmp      []float32
	rem      []float32 // partial input frame left by the previous read
}

// NewChannelConverter creates a converter producing the given number of
// channels from src.
func NewChannelConverter(src Source, channels int) (*ChannelConverter, error) {
	if channels <= 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("channel converter %d -> %d: %w", src.Channels(), channels, ErrInvalidChannels)
	}

	return &ChannelConverter{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

func (c *ChannelConverter) SampleRate() int { return c.src.SampleRate() }
func (c *ChannelConverter) Channels() int   { return c.channels }

func (c *ChannelConverter) Reset() error {
	err := c.src.Reset()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	c.rem = c.rem[:0]
	return nil
}

func (c *ChannelConverter) Close() error {
	err := c.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with frames of the target channel count. dst length
// must be a multiple of the target channel count.
func (c *ChannelConverter) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%c.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := c.src.Channels()
	if in == c.channels {
		// Pass-through: frame layout is identical.
		return c.src.ReadSamples(dst)
	}

	maxFrames := len(dst) / c.channels
	samplesNeeded := maxFrames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(c.tmp) < samplesNeeded {
		newCap := samplesNeeded
		if newCap < 8192 {
			newCap = 8192
		}
		c.tmp = make([]float32, newCap)
	}
	c.tmp = c.tmp[:samplesNeeded]

	// Samples left over from a read that ended mid-frame lead this one.
	carried := copy(c.tmp, c.rem)
	c.rem = c.rem[:0]

	n, err := c.src.ReadSamples(c.tmp[carried:])
	total := carried + n
	frames := total / in

	// A trailing partial frame at end of stream is dropped, because its
	// missing channels are not determined by the input.
	if total%in != 0 && err != io.EOF {
		c.rem = append(c.rem, c.tmp[frames*in:total]...)
	}
	if frames == 0 {
		return 0, err
	}

	switch {
	case in == 1:
		// Replicate the mono signal into every output channel.
		for f := range frames {
			v := c.tmp[f]
			base := f * c.channels
			for ch := range c.channels {
				dst[base+ch] = v
			}
		}

	case c.channels == 1:
		c.downmixMono(frames, in, dst)

	default:
		// Nearest available channel: copy matching channels, clamp the
		// remainder to the last input channel.
		for f := range frames {
			inBase := f * in
			outBase := f * c.channels
			for ch := range c.channels {
				srcCh := ch
				if srcCh >= in {
					srcCh = in - 1
				}
				dst[outBase+ch] = c.tmp[inBase+srcCh]
			}
		}
	}

	return frames * c.channels, err
}

// downmixMono averages all input channels into one. Unrolled for the common
// stereo and quad layouts.
func (c *ChannelConverter) downmixMono(frames, in int, dst []float32) {
	switch in {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (c.tmp[idx] + c.tmp[idx+1]) * 0.5
		}
	case 4:
		for f := range frames {
			idx := f << 2
			sum := c.tmp[idx] + c.tmp[idx+1] + c.tmp[idx+2] + c.tmp[idx+3]
			dst[f] = sum * 0.25
		}
	default:
		invChannels := float32(1.0) / float32(in)
		for f := range frames {
			sum := float32(0)
			baseIdx := f * in
			for ch := range in {
				sum += c.tmp[baseIdx+ch]
			}
			dst[f] = sum * invChannels
		}
	}
}
