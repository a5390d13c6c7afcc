// SPDX-License-Identifier: EPL-2.0

// Package abloop is a practice-oriented audio playback engine: looped
// (A/B) playback of a decoded asset at variable speed with the pitch
// preserved.
//
// The engine is split along the real-time boundary. A render goroutine
// reads source frames, runs them through a time stretcher and pushes
// finished audio onto a bounded single-producer single-consumer queue.
// The output device's callback pops from that queue without ever
// blocking; when the queue runs dry it emits silence and counts an
// underrun. Control commands (play, pause, seek, loop, speed) travel
// over a channel and are applied between render cycles, so a cycle
// always observes one consistent set of parameters.
//
// Typical use:
//
//	snk, err := portaudio.New(sink.Config{})
//	if err != nil { ... }
//	p, err := abloop.New(snk, abloop.Config{})
//	if err != nil { ... }
//	defer p.Close()
//
//	if err := p.Load("riff.wav"); err != nil { ... }
//	p.SetLoopSeconds(12.5, 17.0, true)
//	p.SetSpeed(0.75)
//	p.Play()
//
// Decoders for WAV, AIFF, MP3 and Ogg Vorbis are registered by
// default; additional formats can be added through audio.Registry.
package abloop
