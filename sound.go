// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"sync/atomic"

	"github.com/ik5/audmix/audio"
)

// entry is the mixer's side of a registered sound: the converted source
// plus its transport state. volume, paused and looping are guarded by the
// mixer mutex; stopped is atomic and monotonic — once set it is never
// cleared, which is what makes Stop safe against a concurrent mix cycle.
type entry struct {
	src      audio.Source
	group    any
	hasGroup bool

	volume  float32
	paused  bool
	looping bool

	stopped atomic.Bool
}

// Sound is the application's handle to one sound registered with a Mixer.
//
// The handle and the mixer share the underlying entry. Discarding the
// handle does not cancel playback: the sound keeps playing until it ends on
// its own or Stop is called, at which point the mixer releases its side and
// the source is closed. All methods are safe to call from any goroutine,
// concurrently with the audio callback.
type Sound struct {
	mixer *Mixer
	e     *entry
}

// Play starts or resumes the sound. Playing a stopped or finished sound has
// no effect; register the source again to replay it.
func (s *Sound) Play() {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	if s.e.stopped.Load() {
		return
	}
	s.e.paused = false
}

// Pause suspends the sound without losing its position. Play resumes it.
func (s *Sound) Pause() {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	s.e.paused = true
}

// Stop permanently removes the sound from the mixer. It is idempotent and
// takes effect no later than the start of the next mix cycle, even when it
// races with a cycle already pulling samples from the sound. A stopped
// sound never plays again.
func (s *Sound) Stop() {
	s.e.stopped.Store(true)
}

// Stopped reports whether the sound has been stopped or has finished.
func (s *Sound) Stopped() bool {
	return s.e.stopped.Load()
}

// Reset seeks the sound back to its beginning, whether it is playing or
// paused. Sources backed by non-seekable readers may return an error.
func (s *Sound) Reset() error {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	if s.e.stopped.Load() {
		return nil
	}
	return s.e.src.Reset()
}

// SetVolume sets the sound's linear gain. The value is not clamped; 1 is
// unity, 0 silences the sound while keeping it running.
func (s *Sound) SetVolume(volume float32) {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	s.e.volume = volume
}

// Volume reports the sound's current gain.
func (s *Sound) Volume() float32 {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	return s.e.volume
}

// SetLoop makes the sound restart from the beginning whenever it reaches
// its end. Requires a source whose Reset succeeds.
func (s *Sound) SetLoop(looping bool) {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	s.e.looping = looping
}

// Playing reports whether the sound is currently audible.
func (s *Sound) Playing() bool {
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()

	return !s.e.paused && !s.e.stopped.Load()
}
