// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// State of an Engine's connection to the output device.
type State int32

const (
	// StateRunning: the stream is open and the callback is being driven.
	StateRunning State = iota
	// StateSuspended: Pause was called; the registry is intact and Resume
	// restarts the stream.
	StateSuspended
	// StateLost: the device stopped the stream on its own (unplugged,
	// backend failure). Resume reopens a default device with all sounds
	// preserved. The engine never retries in the background.
	StateLost
	// StateClosed: Close was called; the engine is dead.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateLost:
		return "lost"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Config for creating an Engine. The zero value picks sensible defaults.
type Config struct {
	// SampleRate of the output stream in Hz. Default 48000.
	SampleRate int
	// Channels of the output stream. Default 2.
	Channels int
	// PeriodMillis is the requested callback period. Default 10.
	PeriodMillis int
	// Backend to open the stream on. Default is the miniaudio backend on
	// the system default output device. The engine takes ownership and
	// closes it on Close.
	Backend Backend
	// Log receives backend diagnostics. Optional.
	Log func(string)
}

func (c *Config) fillDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 48000
	}
	if c.Channels == 0 {
		c.Channels = 2
	}
	if c.PeriodMillis == 0 {
		c.PeriodMillis = 10
	}
}

// Engine owns the connection to the platform audio backend, the Mixer, and
// the group volume table.
//
// The type parameter G is the volume group key; engines created with New
// use string keys and no groups. The engine is safe for concurrent use
// from any number of goroutines; Resume and Close are serialized because
// they may rebuild or tear down the backend connection itself.
type Engine[G comparable] struct {
	mixer   *Mixer
	backend Backend
	cfg     StreamConfig
	log     func(string)

	mu     sync.Mutex // lifecycle: pause/resume/reopen/close
	stream OutputStream
	state  atomic.Int32

	// scratch is touched only by the backend's callback thread. It is
	// sized on the first callback and reused for every one after, so the
	// steady-state mix path never allocates.
	scratch []float32
}

// New creates an engine with no volume groups, opens the default output
// device and starts the stream.
func New(cfg Config) (*Engine[string], error) {
	return NewWithGroups[string](cfg)
}

// NewWithGroups is New with a fixed set of volume group keys. Every group
// volume starts at 1; the key set cannot change after construction.
func NewWithGroups[G comparable](cfg Config, groups ...G) (*Engine[G], error) {
	cfg.fillDefaults()

	backend := cfg.Backend
	if backend == nil {
		b, err := newMalgoBackend(cfg.Log)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	keys := make([]any, len(groups))
	for i, g := range groups {
		keys[i] = g
	}
	mixer, err := NewMixerWithGroups(cfg.Channels, cfg.SampleRate, keys...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	e := &Engine[G]{
		mixer:   mixer,
		backend: backend,
		log:     cfg.Log,
		cfg: StreamConfig{
			SampleRate:   cfg.SampleRate,
			Channels:     cfg.Channels,
			PeriodMillis: cfg.PeriodMillis,
		},
	}
	e.state.Store(int32(StateSuspended))

	stream, err := backend.OpenStream(e.cfg, StreamCallbacks{
		Fill:    e.fill,
		Stopped: e.streamStopped,
	})
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	e.stream = stream

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = backend.Close()
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	e.state.Store(int32(StateRunning))

	return e, nil
}

// SampleRate of the output stream in Hz.
func (e *Engine[G]) SampleRate() int { return e.cfg.SampleRate }

// Channels of the output stream.
func (e *Engine[G]) Channels() int { return e.cfg.Channels }

// State reports the engine's current connection state.
func (e *Engine[G]) State() State { return State(e.state.Load()) }

// Mixer exposes the engine's mixer, e.g. to nest it or inspect Playing.
// The mixer stays valid for the engine's whole lifetime, across device
// loss and reconnection.
func (e *Engine[G]) Mixer() *Mixer { return e.mixer }

// NewSound registers a source and returns its transport handle. The sound
// starts paused. A source that failed its own setup should surface that
// from its decoder; sources reporting a non-positive rate or channel count
// are rejected here with ErrInvalidSource.
func (e *Engine[G]) NewSound(src audio.Source) (*Sound, error) {
	if e.State() == StateClosed {
		return nil, ErrEngineClosed
	}
	return e.mixer.AddSound(src)
}

// NewSoundWithGroup is NewSound with the sound tagged by a volume group
// declared at construction.
func (e *Engine[G]) NewSoundWithGroup(group G, src audio.Source) (*Sound, error) {
	if e.State() == StateClosed {
		return nil, ErrEngineClosed
	}
	return e.mixer.AddSoundToGroup(group, src)
}

// SetGroupVolume changes a group's gain. The next mix cycle observes the
// new value — applied exactly once per cycle, never retroactively.
func (e *Engine[G]) SetGroupVolume(group G, volume float32) error {
	if e.State() == StateClosed {
		return ErrEngineClosed
	}
	return e.mixer.SetGroupVolume(group, volume)
}

// GroupVolume reports a group's current gain.
func (e *Engine[G]) GroupVolume(group G) (float32, error) {
	if e.State() == StateClosed {
		return 0, ErrEngineClosed
	}
	return e.mixer.GroupVolume(group)
}

// Pause suspends the output stream. Registered sounds and their positions
// are retained; nothing is reset.
func (e *Engine[G]) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch State(e.state.Load()) {
	case StateClosed:
		return ErrEngineClosed
	case StateSuspended, StateLost:
		return ErrAlreadyStopped
	}

	// Flip the state first so streamStopped attributes the stop to us.
	e.state.Store(int32(StateSuspended))
	if err := e.stream.Stop(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Resume restarts a suspended stream, or rebuilds the backend connection
// after device loss. It is exclusive: concurrent Resume calls serialize,
// and reconnection replaces the stream while keeping the mixer and every
// registered sound exactly as they were.
func (e *Engine[G]) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch State(e.state.Load()) {
	case StateClosed:
		return ErrEngineClosed
	case StateRunning:
		return ErrAlreadyRunning
	case StateLost:
		return e.reopen()
	}

	if err := e.stream.Start(); err != nil {
		// The device may have disappeared while we were suspended.
		if e.log != nil {
			e.log(fmt.Sprintf("audmix: restart failed (%v), reopening default device", err))
		}
		return e.reopen()
	}
	e.state.Store(int32(StateRunning))
	return nil
}

// reopen replaces a dead stream with a fresh one on the current default
// device. Caller holds e.mu.
func (e *Engine[G]) reopen() error {
	_ = e.stream.Close()

	stream, err := e.backend.OpenStream(e.cfg, StreamCallbacks{
		Fill:    e.fill,
		Stopped: e.streamStopped,
	})
	if err != nil {
		e.state.Store(int32(StateLost))
		return fmt.Errorf("reopen output stream: %w", err)
	}
	e.stream = stream

	if err := stream.Start(); err != nil {
		e.state.Store(int32(StateLost))
		return fmt.Errorf("start output stream: %w", err)
	}
	e.state.Store(int32(StateRunning))
	return nil
}

// Close stops the stream and releases the backend. The stream is torn down
// before any owned state is dropped, so a late callback can never observe
// freed state. Close is idempotent.
func (e *Engine[G]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if State(e.state.Load()) == StateClosed {
		return nil
	}
	e.state.Store(int32(StateClosed))

	_ = e.stream.Stop()
	_ = e.stream.Close()
	err := e.backend.Close()
	_ = e.mixer.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// fill is the audio callback: one mix cycle into the backend's S16LE
// buffer. It runs on the backend's real-time thread and must not block or
// allocate in steady state.
func (e *Engine[G]) fill(out []byte, frames int) {
	need := frames * e.cfg.Channels
	if len(e.scratch) < need {
		e.scratch = make([]float32, need)
	}
	buf := e.scratch[:need]

	_, _ = e.mixer.ReadSamples(buf)

	for i, s := range buf {
		v := utils.Float32ToInt16(s)
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
}

// streamStopped runs when the backend stops delivering callbacks. A stop
// the engine did not initiate means the device is gone; the transition is
// observed on the owner's next interaction, there is no retry thread.
func (e *Engine[G]) streamStopped() {
	if e.state.CompareAndSwap(int32(StateRunning), int32(StateLost)) {
		if e.log != nil {
			e.log("audmix: output stream stopped unexpectedly, device lost")
		}
	}
}
