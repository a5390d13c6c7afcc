// SPDX-License-Identifier: EPL-2.0

// Package clip owns decoded audio assets.
//
// A Clip is the in-memory form of one loaded recording: interleaved
// float32 PCM with a fixed sample rate and channel count, immutable
// after load. ReadAt is a clamped random-access read, safe for
// concurrent use from the render thread.
//
// The Store is the single-writer swap point between the control thread
// (which loads and replaces clips) and the render thread (which
// acquires the current clip once per render cycle). No clip is ever
// mutated after publication, so the reader needs no locks.
//
// Preview produces the downsampled mono RMS trace used for waveform
// display; it is computed from the decoded data on demand.
package clip
