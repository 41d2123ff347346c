// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audmix/audio"
)

// Mixer owns the registry of active sounds and sums their converted output
// into a single interleaved stream at a fixed sample rate and channel count.
//
// The Mixer itself implements audio.Source, so it can be handed to the
// backend callback of an Engine, rendered offline with Render, or even
// nested inside another Mixer. ReadSamples always fills the whole buffer,
// producing silence when nothing is playing.
//
// All registry state lives behind one mutex that is held only for the
// duration of a single mix cycle or a single transport command; per-sound
// stop flags are atomic and monotonic, so a stopped sound can never be
// pulled again, no matter how the stop races with an in-flight mix.
type Mixer struct {
	channels   int
	sampleRate int

	mu      sync.Mutex
	entries []*entry
	groups  map[any]float32
	scratch []float32
}

// NewMixer creates a mixer producing interleaved samples with the given
// channel count and sample rate.
func NewMixer(channels, sampleRate int) (*Mixer, error) {
	return NewMixerWithGroups(channels, sampleRate)
}

// NewMixerWithGroups is NewMixer with a fixed set of volume group keys.
// Keys may be any comparable values; every group volume starts at 1. The
// key set cannot change after construction, only the volumes can.
func NewMixerWithGroups(channels, sampleRate int, groups ...any) (*Mixer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("mixer: %w", audio.ErrInvalidChannels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("mixer: %w", audio.ErrInvalidRate)
	}

	m := &Mixer{
		channels:   channels,
		sampleRate: sampleRate,
		groups:     make(map[any]float32, len(groups)),
		scratch:    make([]float32, defaultScratchSamples),
	}
	for _, g := range groups {
		m.groups[g] = 1
	}

	return m, nil
}

// defaultScratchSamples sizes the per-cycle scratch buffer so that typical
// backend periods never allocate inside the callback. It only grows if the
// backend asks for larger buffers, and then only once.
const defaultScratchSamples = 8192

func (m *Mixer) SampleRate() int { return m.sampleRate }
func (m *Mixer) Channels() int   { return m.channels }

// Reset is a no-op; the mixer has no start to rewind to.
func (m *Mixer) Reset() error { return nil }

// Close stops and releases every registered sound.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, e := range m.entries {
		e.stopped.Store(true)
		if err := e.src.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w", err)
		}
	}
	m.entries = nil
	return firstErr
}

// AddSound registers src with the mixer and returns its transport handle.
//
// The source is wrapped with a fresh Resampler and ChannelConverter as
// needed so that it produces samples at the mixer's output configuration;
// conversion state is per sound because every source may have a distinct
// native rate and channel count. The new sound starts paused; call Play on
// the returned handle to start it.
func (m *Mixer) AddSound(src audio.Source) (*Sound, error) {
	return m.addSound(src, nil, false)
}

// AddSoundToGroup is AddSound with the sound tagged by a volume group. The
// group must be one of the keys fixed at mixer construction.
func (m *Mixer) AddSoundToGroup(group any, src audio.Source) (*Sound, error) {
	m.mu.Lock()
	_, ok := m.groups[group]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("group %v: %w", group, ErrUnknownGroup)
	}

	return m.addSound(src, group, true)
}

func (m *Mixer) addSound(src audio.Source, group any, hasGroup bool) (*Sound, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidSource)
	}
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidSource, src.SampleRate(), src.Channels())
	}

	// Conversion order follows the signal path: resample at the source's
	// native channel count first, then remap channels.
	wrapped := src
	if wrapped.SampleRate() != m.sampleRate {
		r, err := audio.NewResampler(wrapped, m.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		wrapped = r
	}
	if wrapped.Channels() != m.channels {
		c, err := audio.NewChannelConverter(wrapped, m.channels)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		wrapped = c
	}

	e := &entry{
		src:      wrapped,
		volume:   1,
		paused:   true,
		group:    group,
		hasGroup: hasGroup,
	}

	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()

	return &Sound{mixer: m, e: e}, nil
}

// SetGroupVolume changes the gain applied to every sound tagged with group.
// The change is observed by the very next mix cycle. Volumes are linear and
// not clamped; 0 silences the group.
func (m *Mixer) SetGroupVolume(group any, volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[group]; !ok {
		return fmt.Errorf("group %v: %w", group, ErrUnknownGroup)
	}
	m.groups[group] = volume
	return nil
}

// GroupVolume reports the current gain of group.
func (m *Mixer) GroupVolume(group any) (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.groups[group]
	if !ok {
		return 0, fmt.Errorf("group %v: %w", group, ErrUnknownGroup)
	}
	return v, nil
}

// Playing reports how many sounds are currently audible (registered, not
// paused, not stopped).
func (m *Mixer) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.entries {
		if !e.paused && !e.stopped.Load() {
			n++
		}
	}
	return n
}

// ReadSamples runs one mix cycle: it zeroes dst, pulls converted samples
// from every active sound, applies the sound and group gains and sums the
// result. dst length must be a multiple of the channel count. The buffer is
// always filled completely; the mixer never ends.
//
// Entries are visited in insertion order. Stopped entries are removed
// before they are pulled — the check is per entry and never depends on any
// other sound's state. A sound that exhausts mid-cycle contributes its
// final partial data exactly once and is gone by the next cycle.
func (m *Mixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clear(dst)
	if len(m.scratch) < len(dst) {
		m.scratch = make([]float32, len(dst))
	}

	i := 0
	for i < len(m.entries) {
		e := m.entries[i]
		if e.stopped.Load() {
			m.removeAt(i)
			continue
		}
		if e.paused {
			i++
			continue
		}

		n := m.pull(e, m.scratch[:len(dst)])

		gain := e.volume
		if e.hasGroup {
			gain *= m.groups[e.group]
		}
		switch {
		case gain == 1:
			for j := range n {
				dst[j] += m.scratch[j]
			}
		case gain != 0:
			for j := range n {
				dst[j] += m.scratch[j] * gain
			}
		}

		// pull marks entries that exhausted or failed; drop them now so
		// the next cycle never sees them.
		if e.stopped.Load() {
			m.removeAt(i)
			continue
		}
		i++
	}

	return len(dst), nil
}

// pull fills buf from the entry's source, restarting it when looping.
// Returns the number of samples produced; the entry is flagged stopped when
// the source is exhausted, broken, or cannot loop.
func (m *Mixer) pull(e *entry, buf []float32) int {
	got := 0
	zeroReads := 0

	for got < len(buf) {
		n, err := e.src.ReadSamples(buf[got:])
		got += n

		if n == 0 {
			zeroReads++
			// A source that keeps yielding nothing after a restart
			// would spin the callback forever.
			if zeroReads > 1 {
				e.stopped.Store(true)
				break
			}
		} else {
			zeroReads = 0
		}

		switch {
		case err == io.EOF || (err == nil && n == 0):
			if e.looping && !e.stopped.Load() {
				if rerr := e.src.Reset(); rerr != nil {
					e.stopped.Store(true)
					return got
				}
				continue
			}
			e.stopped.Store(true)
			return got
		case err != nil:
			// One broken source never takes down the mix; it is
			// dropped and the remaining sounds play on.
			e.stopped.Store(true)
			return got
		}
	}

	return got
}

// removeAt drops the entry at index i, preserving insertion order of the
// remaining entries.
func (m *Mixer) removeAt(i int) {
	e := m.entries[i]
	copy(m.entries[i:], m.entries[i+1:])
	m.entries[len(m.entries)-1] = nil
	m.entries = m.entries[:len(m.entries)-1]
	_ = e.src.Close()
}
