// SPDX-License-Identifier: EPL-2.0

// Package stretch implements pitch-preserving time-stretching.
//
// Slowing audio down by plain resampling also lowers its pitch. The
// Stretcher here avoids that by re-timing in the time domain: short
// Hann-windowed grains of the input are overlap-added on a fixed
// output grid while the position they are taken from advances at the
// requested speed ratio. Each grain is aligned by cross-correlation
// against the natural continuation of the previous one, which keeps
// waveforms coherent at the grain joins (the "WS" in WSOLA).
//
// The algorithm is replaceable: the transport depends only on the
// Process/Flush/Reset contract, so a phase-vocoder implementation
// could be dropped in behind the same interface.
//
// Supported ratios are [MinRatio, MaxRatio] (one-eighth to double
// speed). Callers are expected to clamp user input to this range;
// Process fails with ErrUnsupportedRatio rather than guessing.
package stretch
