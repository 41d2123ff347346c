// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// streams. Vorbis decodes natively to float32, so samples pass through to
// the audio.Source interface without conversion.
//
// # Decoding Vorbis Files
//
// Use the Decoder to read Ogg Vorbis files:
//
//	decoder := vorbis.Decoder{}
//	file, _ := os.Open("audio.ogg")
//	source, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	// Read samples as float32 in range [-1.0, 1.0]
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: As encoded in the file (mono, stereo, or more)
//   - Sample rate: As encoded in the file
//
// # Looping and Reset
//
// Reset seeks back to the first sample and requires the input reader to
// be an io.ReadSeeker (such as os.File or bytes.Reader). Sources decoded
// from plain streams cannot rewind and so cannot loop.
package vorbis
