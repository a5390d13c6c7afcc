// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives the player is built
// from.
//
// The Source interface is the foundation:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Format decoders (see the formats subpackages) produce Sources, and
// the processors here wrap Sources, so stages chain into a pipeline:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	res := audio.NewResampler(src, 48000)
//	out, _ := audio.NewChannelMixer(res, 2)
//
// The player decodes through such a pipeline exactly once, at load
// time, into an in-memory clip at the output device's rate and channel
// count. Nothing in this package runs on the real-time path.
//
// # Sample Format
//
// Samples are interleaved float32 in [-1.0, 1.0]. ReadSamples returns
// the number of float32 values written, and io.EOF (possibly together
// with a final short count) once the stream is exhausted.
//
// # Format Registry
//
// The Registry maps format keys and file extensions to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, ok := reg.ForPath("take3.wav")
package audio
