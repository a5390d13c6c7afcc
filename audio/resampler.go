// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/abloop/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation over a sliding four-frame window. Works on interleaved
// samples and preserves the channel count. A one-pole low-pass is
// applied when downsampling to tame aliasing.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled int // how many window slots hold real frames

	pos float64 // fractional position between window[1] and window[2]
	eof bool

	frameBuf []float32

	// low-pass state, one value per channel
	lpState []float32
	lpAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frameBuf: make([]float32, channels),
		lpState:  make([]float32, channels),
	}
	if step > 1.0 {
		// Crude anti-aliasing; enough for preview-quality downsampling.
		r.lpAlpha = 0.5
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls exactly one frame from the source into frameBuf.
func (r *Resampler) readFrame() (bool, error) {
	if r.eof {
		return false, io.EOF
	}

	got := 0
	for got < r.channels {
		n, err := r.src.ReadSamples(r.frameBuf[got:r.channels])
		got += n
		if err == io.EOF {
			r.eof = true
			return false, io.EOF
		}
		if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == 0 {
			return false, nil
		}
	}

	if r.lpAlpha > 0 {
		for c := range r.channels {
			r.lpState[c] = r.lpAlpha*r.frameBuf[c] + (1-r.lpAlpha)*r.lpState[c]
			r.frameBuf[c] = r.lpState[c]
		}
	}
	return true, nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	ok, err := r.readFrame()
	if !ok && err != nil {
		return err
	}

	r.window[0], r.window[1], r.window[2], r.window[3] =
		r.window[1], r.window[2], r.window[3], r.window[0]
	if ok {
		copy(r.window[3], r.frameBuf)
		if r.filled < 4 {
			r.filled++
		}
	} else {
		// Duplicate the last real frame at the tail.
		copy(r.window[3], r.window[2])
	}
	return nil
}

func (r *Resampler) prime() error {
	clear(r.lpState)
	for range 4 {
		if err := r.shift(); err != nil {
			break
		}
	}
	if r.filled == 0 {
		return io.EOF
	}
	// Center the interpolation window on the first frame.
	r.pos = 0
	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.filled == 0 {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			dst[written*r.channels+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], alpha)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
