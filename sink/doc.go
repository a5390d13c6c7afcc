// SPDX-License-Identifier: EPL-2.0

// Package sink defines the output-device contract and a manual sink
// for tests.
//
// The engine never talks to audio hardware directly: it hands a
// FillFunc to a Sink, and the sink's host clock calls it back with
// buffers to fill. Two real backends ship in subpackages, portaudio
// (callback-driven, lowest latency) and otosink (pure-Go friendly,
// pull-driven via oto). The Manual sink lets tests act as the clock.
package sink
