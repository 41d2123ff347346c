// SPDX-License-Identifier: EPL-2.0

package audmix

// StreamConfig describes the fixed output configuration of one stream. The
// sample rate and channel count never change for the lifetime of a stream;
// every registered sound is converted to this pair.
type StreamConfig struct {
	// SampleRate of the output in Hz.
	SampleRate int
	// Channels of interleaved output.
	Channels int
	// PeriodMillis is the requested callback period. The backend may pick
	// a close value; the buffer handed to Fill is sized accordingly.
	PeriodMillis int
}

// StreamCallbacks are invoked by the backend's audio thread.
type StreamCallbacks struct {
	// Fill is called once per period with an interleaved signed 16-bit
	// little-endian buffer holding frames frames. It must fill the whole
	// buffer before returning and must do so within the period.
	Fill func(out []byte, frames int)

	// Stopped is called whenever the stream stops producing callbacks,
	// including an engine-initiated stop and device loss.
	Stopped func()
}

// Backend opens output streams on an audio device. The production
// implementation sits on miniaudio (via malgo); tests substitute fakes.
type Backend interface {
	// OpenStream connects to the default output device. The stream is
	// created stopped; call Start on it.
	OpenStream(cfg StreamConfig, cb StreamCallbacks) (OutputStream, error)

	// Close releases the backend. All streams opened from it must be
	// closed first.
	Close() error
}

// OutputStream is one open connection to an output device.
type OutputStream interface {
	// Start begins periodic Fill callbacks.
	Start() error
	// Stop suspends callbacks without releasing the device.
	Stop() error
	// Close releases the device. The stream cannot be restarted.
	Close() error
}
