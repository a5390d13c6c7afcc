// SPDX-License-Identifier: EPL-2.0

package stretch

import "math"

// Supported speed ratio range. Ratios are source frames consumed per
// output frame, so 0.5 plays at half speed and 2.0 at double speed.
const (
	MinRatio = 0.125
	MaxRatio = 2.0
)

// Stretcher re-times audio without changing its pitch, using
// waveform-similarity overlap-add (WSOLA): Hann-windowed grains are
// taken from the input at a rate scaled by the speed ratio, aligned
// against the natural continuation of the previous grain by
// cross-correlation, and overlap-added on a fixed synthesis grid.
//
// A Stretcher is stateful across Process calls (input history, grain
// position, overlap tail). Reset must be called on any discontinuity
// in the input stream: seek, loop wrap, reload, or a large speed jump.
// Carrying state across a cut would bleed audio from one position into
// another.
//
// Not safe for concurrent use; the render thread owns it.
type Stretcher struct {
	channels int
	window   int // grain size, frames
	synthHop int // fixed output hop, frames
	search   int // correlation search span, frames
	cmpLen   int // correlation template length, frames

	win []float32 // Hann, length window

	fifo   []float32 // buffered input, interleaved
	anaPos float64   // fractional grain position within fifo, frames

	ola    []float32 // overlap-add accumulator, window frames
	tmpl   []float32 // mono template of the natural continuation
	primed bool      // at least one grain emitted since Reset

	lastRatio float64
}

// New creates a Stretcher for interleaved audio with the given channel
// count. The grain size is derived from the sample rate (about 50ms),
// which works well for most musical material.
func New(channels, sampleRate int) *Stretcher {
	window := sampleRate / 20
	if window < 256 {
		window = 256
	}
	window &^= 1 // even, so the 50% hop divides exactly

	s := &Stretcher{
		channels: channels,
		window:   window,
		synthHop: window / 2,
		search:   max(window/8, 1),
		cmpLen:   window / 2,
		win:      make([]float32, window),
		ola:      make([]float32, window*channels),
		tmpl:     make([]float32, window/2),

		lastRatio: 1.0,
	}
	for i := range s.win {
		// Periodic Hann; windows at 50% overlap sum to one.
		s.win[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(window))))
	}

	return s
}

func (s *Stretcher) Channels() int { return s.channels }

// Latency is the worst-case number of input frames the Stretcher
// buffers before producing output. The transport subtracts buffered
// input when reporting the played-back position.
func (s *Stretcher) Latency() int { return s.window + s.search }

// Buffered reports how many input frames are currently held without
// having been rendered yet.
func (s *Stretcher) Buffered() int {
	b := s.fifoFrames() - int(s.anaPos)
	if b < 0 {
		return 0
	}
	return b
}

func (s *Stretcher) MinRatio() float64 { return MinRatio }
func (s *Stretcher) MaxRatio() float64 { return MaxRatio }

// Reset drops all internal state. Must be called whenever the next
// input is not contiguous with the previous one.
func (s *Stretcher) Reset() {
	s.fifo = s.fifo[:0]
	s.anaPos = 0
	clear(s.ola)
	clear(s.tmpl)
	s.primed = false
}

// Process buffers in (interleaved samples) and returns as many
// stretched output samples as the buffered history allows. Output
// duration approaches input duration / ratio. Deterministic for a
// given input stream and ratio sequence since the last Reset.
func (s *Stretcher) Process(in []float32, ratio float64) ([]float32, error) {
	if ratio < MinRatio || ratio > MaxRatio {
		return nil, ErrUnsupportedRatio
	}
	if len(in)%s.channels != 0 {
		return nil, ErrBadInput
	}

	s.lastRatio = ratio
	s.fifo = append(s.fifo, in...)
	return s.emit(ratio), nil
}

// Flush pads the buffered history with silence and drains it, then
// resets. Used at a loop seam or end-of-asset so buffered frames are
// not silently discarded; the Hann taper makes the tail fade out.
func (s *Stretcher) Flush() []float32 {
	if s.fifoFrames() == 0 && !s.primed {
		s.Reset()
		return nil
	}

	pad := make([]float32, (s.window+s.search)*s.channels)
	s.fifo = append(s.fifo, pad...)
	out := s.emit(s.lastRatio)
	s.Reset()
	return out
}

func (s *Stretcher) fifoFrames() int { return len(s.fifo) / s.channels }

func (s *Stretcher) emit(ratio float64) []float32 {
	var out []float32

	for {
		base := int(s.anaPos)
		if base+s.window+s.search > s.fifoFrames() {
			break
		}

		grain := base + s.bestOffset(base)
		s.overlapAdd(grain)

		out = append(out, s.ola[:s.synthHop*s.channels]...)
		copy(s.ola, s.ola[s.synthHop*s.channels:])
		clear(s.ola[(s.window-s.synthHop)*s.channels:])

		s.saveTemplate(grain + s.synthHop)
		s.primed = true
		s.anaPos += float64(s.synthHop) * ratio
	}

	s.trim()
	return out
}

// bestOffset searches [0, search) for the grain start whose mono
// signal best matches the natural continuation of the previous grain.
func (s *Stretcher) bestOffset(base int) int {
	if !s.primed || s.search <= 1 {
		return 0
	}

	best := 0
	bestScore := math.Inf(-1)
	for off := range s.search {
		var score float64
		for i := range s.cmpLen {
			idx := (base + off + i) * s.channels
			var m float32
			for c := range s.channels {
				m += s.fifo[idx+c]
			}
			score += float64(m) * float64(s.tmpl[i])
		}
		if score > bestScore {
			bestScore = score
			best = off
		}
	}
	return best
}

func (s *Stretcher) overlapAdd(grain int) {
	base := grain * s.channels
	for i := range s.window {
		w := s.win[i]
		for c := range s.channels {
			s.ola[i*s.channels+c] += w * s.fifo[base+i*s.channels+c]
		}
	}
}

func (s *Stretcher) saveTemplate(start int) {
	base := start * s.channels
	for i := range s.cmpLen {
		var m float32
		for c := range s.channels {
			m += s.fifo[base+i*s.channels+c]
		}
		s.tmpl[i] = m
	}
}

// trim discards fifo history behind the grain position so the buffer
// stays bounded during long playback.
func (s *Stretcher) trim() {
	d := int(s.anaPos)
	if d <= 0 {
		return
	}
	s.fifo = append(s.fifo[:0], s.fifo[d*s.channels:]...)
	s.anaPos -= float64(d)
}
