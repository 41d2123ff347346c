// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// malgoBackend drives the OS audio stack through miniaudio. One backend
// holds one malgo context; each OpenStream call initializes a playback
// device on the current default output.
type malgoBackend struct {
	ctx *malgo.AllocatedContext
}

func newMalgoBackend(logf func(string)) (*malgoBackend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if logf != nil {
			logf(message)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	return &malgoBackend{ctx: ctx}, nil
}

func (b *malgoBackend) OpenStream(cfg StreamConfig, cb StreamCallbacks) (OutputStream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PerformanceProfile = malgo.LowLatency
	deviceConfig.PeriodSizeInMilliseconds = uint32(cfg.PeriodMillis)

	device, err := malgo.InitDevice(b.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(output, _ []byte, frameCount uint32) {
			cb.Fill(output, int(frameCount))
		},
		Stop: cb.Stopped,
	})
	if err != nil {
		return nil, fmt.Errorf("init playback device: %w", err)
	}

	return &malgoStream{device: device}, nil
}

func (b *malgoBackend) Close() error {
	err := b.ctx.Uninit()
	b.ctx.Free()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("start playback device: %w", err)
	}
	return nil
}

func (s *malgoStream) Stop() error {
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("stop playback device: %w", err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.device.Uninit()
	return nil
}
