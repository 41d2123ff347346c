// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// Render runs src through the same conversion pipeline a playing sound gets
// (resample, then channel remap) and collects the whole output as
// interleaved 16-bit PCM, with no device involved.
//
// bufferSize is the pull size in samples; 4096 is a reasonable default.
// Endless sources (a looping mixer, a SineWave) never finish, so only
// render sources that end.
func Render(src audio.Source, sampleRate, channels, bufferSize int) ([]int16, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidSource)
	}
	if bufferSize <= 0 {
		return nil, fmt.Errorf("render: %w", audio.ErrInvalidDstSize)
	}

	wrapped := src
	if wrapped.SampleRate() != sampleRate {
		r, err := audio.NewResampler(wrapped, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		wrapped = r
	}
	if wrapped.Channels() != channels {
		c, err := audio.NewChannelConverter(wrapped, channels)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		wrapped = c
	}

	// Round the pull size down to whole frames; the converters insist on it.
	bufferSize -= bufferSize % channels
	if bufferSize == 0 {
		bufferSize = channels
	}

	pcm16 := make([]int16, 0, sampleRate*channels)
	buf := make([]float32, bufferSize)

	for {
		n, err := wrapped.ReadSamples(buf)
		if n > 0 {
			if cap(pcm16)-len(pcm16) < n {
				grown := make([]int16, len(pcm16), len(pcm16)+max(n, cap(pcm16)))
				copy(grown, pcm16)
				pcm16 = grown
			}
			start := len(pcm16)
			pcm16 = pcm16[:start+n]
			utils.Float32ToInt16Slice(pcm16[start:], buf[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return pcm16, nil
}
