// SPDX-License-Identifier: EPL-2.0

// Package transport implements the playback state machine.
//
// The Transport owns position, loop region, speed and play state. Each
// render cycle it drains its command channel, reads source frames from
// the clip store, feeds them through the time-stretcher and hands back
// one finished output block. Reads are split at the loop boundary and
// never cross it: the seam is always treated as a discontinuity, the
// stretcher is flushed and reset there, so no stretch history bleeds
// across the loop point.
//
// Two positions are tracked. readPos (integer) is where source frames
// are fed from, and guarantees each loop iteration covers exactly
// [Start, End) with no skipped or duplicated frames. pos (fractional)
// is the source position of output actually rendered, advanced by
// outputFrames x speed, which both avoids rounding drift across long
// sessions and naturally discounts the stretcher's buffered latency;
// pos is what Status reports.
//
// All state mutation happens on the render thread. Commands from the
// control thread are applied only between blocks, and the Status
// snapshot is published through an atomic pointer, so the real-time
// path never takes a lock.
package transport
