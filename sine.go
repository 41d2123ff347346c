// SPDX-License-Identifier: EPL-2.0

package audmix

import "math"

// SineWave is a mono test-tone source. It produces an endless sine at the
// given frequency and never returns io.EOF; stop it through its Sound
// handle or wrap it with your own limiter.
type SineWave struct {
	sampleRate int
	freq       float64
	amplitude  float32
	pos        uint64
}

// NewSineWave creates a tone generator at freq Hz, rendered at sampleRate.
// The amplitude is fixed at 0.25 to leave headroom when mixed with other
// sounds.
func NewSineWave(sampleRate int, freq float64) *SineWave {
	return &SineWave{
		sampleRate: sampleRate,
		freq:       freq,
		amplitude:  0.25,
	}
}

func (s *SineWave) SampleRate() int { return s.sampleRate }
func (s *SineWave) Channels() int   { return 1 }

func (s *SineWave) ReadSamples(dst []float32) (int, error) {
	step := 2 * math.Pi * s.freq / float64(s.sampleRate)
	for i := range dst {
		dst[i] = s.amplitude * float32(math.Sin(float64(s.pos)*step))
		s.pos++
	}
	return len(dst), nil
}

func (s *SineWave) Reset() error {
	s.pos = 0
	return nil
}

func (s *SineWave) Close() error { return nil }
