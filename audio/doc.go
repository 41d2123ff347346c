// SPDX-License-Identifier: EPL-2.0

// Package audio provides low-level audio processing primitives.
//
// This package contains the core audio processing building blocks:
//   - Source interface for audio input
//   - Resampler for sample rate conversion
//   - ChannelConverter for channel count conversion
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Reset() error
//	    Close() error
//	}
//
// All audio decoders and processors implement this interface, allowing
// them to be chained together in processing pipelines. Reset rewinds a
// source to its beginning; the mixer uses it for looping playback and for
// restarting a stopped sound.
//
// # Resampling
//
// The Resampler changes the sample rate of audio:
//
//	resampler, err := audio.NewResampler(source, 48000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// The conversion ratio is reduced by the gcd of the input and output rates
// and the stream position is tracked as an exact integer fraction, so the
// output never drifts against the input no matter how long the stream runs.
// Interpolation between input frames is linear by default; pass
// QualityCubic to NewResamplerQuality for a Catmull-Rom kernel when the CPU
// budget allows it. Converting to the same rate is a bit-exact passthrough.
//
// # Channel Conversion
//
// The ChannelConverter remaps between channel counts:
//
//	conv, err := audio.NewChannelConverter(source, 2)
//	buf := make([]float32, 4096)
//	n, err := conv.ReadSamples(buf)
//
// Mono input is replicated into every output channel and multi-channel
// input collapsing to mono is averaged. Any other combination maps each
// output channel to the nearest available input channel, so no pair of
// channel counts is an error.
//
// # Format Registry
//
// The registry allows dynamic decoder registration:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get("wav")
//
// This is useful for applications that need to support multiple formats.
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// This normalized format makes it easy to process audio without worrying
// about bit depths and keeps intermediate mixing free of integer clipping.
//
// # Real-Time Use
//
// Both converters allocate their working buffers at construction time and
// reuse them on every read, so once a pipeline is built it can be pulled
// from an audio callback without allocating.
//
// # Error Handling
//
// Audio processing functions return io.EOF when no more data is available,
// possibly together with a final partial sample count. Other errors
// indicate problems with the source or processing:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Processing error
//	    }
//	    // Process n samples from buf
//	}
package audio
