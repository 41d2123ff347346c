// SPDX-License-Identifier: EPL-2.0

// Package audmix is a real-time audio playback engine for Go applications.
//
// The engine mixes any number of concurrent sounds into a single output
// stream on the system's default playback device. Each sound keeps its own
// conversion state, transport state (play, pause, stop, loop) and volume;
// sounds may additionally be tagged with volume groups whose gains apply to
// every member at once.
//
// # Supported Formats
//
// Decoders for the following formats produce engine-ready sources:
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//
// # Quick Start
//
// Create an engine, register a decoded sound and start it:
//
//	engine, _ := audmix.New(audmix.Config{})
//	defer engine.Close()
//
//	file, _ := os.Open("music.mp3")
//	src, _ := mp3.Decoder{}.Decode(file)
//
//	sound, _ := engine.NewSound(src)
//	sound.SetLoop(true)
//	sound.Play()
//
// Sounds start paused; nothing is audible until Play is called. The handle
// stays valid from any goroutine, concurrently with playback.
//
// # Volume Groups
//
// Engines created with NewWithGroups carry a fixed set of group keys:
//
//	engine, _ := audmix.NewWithGroups(audmix.Config{}, "music", "effects")
//	sound, _ := engine.NewSoundWithGroup("music", src)
//	engine.SetGroupVolume("music", 0.5)
//
// A sound's effective gain is its own volume multiplied by its group's.
//
// # Device Loss
//
// When the output device disappears mid-playback the engine moves to
// StateLost and keeps all sounds registered; Resume reopens the current
// default device and playback continues where it left off. The engine
// never reconnects on its own.
//
// # Offline Use
//
// Mixer implements the same Source interface the decoders produce, so the
// whole pipeline runs without a device: build a Mixer directly, or collect
// a single source as 16-bit PCM with Render and write it out with
// formats/wav.WriteWAV16.
//
// # Real-Time Behavior
//
// The mix path is built for the audio callback: conversion buffers are
// allocated when a sound is registered, the mix scratch buffer is reused
// across cycles, and transport commands touch one short-held mutex plus
// atomic stop flags. Clipping is applied once, at the final float32 to
// int16 conversion.
//
// See the audio subpackage for the Source contract and the conversion
// primitives.
package audmix
