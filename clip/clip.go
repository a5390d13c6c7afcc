// SPDX-License-Identifier: EPL-2.0

package clip

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/abloop/audio"
)

// Clip is a fully decoded audio asset: interleaved float32 PCM plus
// its format. A Clip is immutable after FromSource returns; the
// transport reads it concurrently without synchronization.
type Clip struct {
	sampleRate int
	channels   int
	frames     int
	data       []float32
}

// New builds a Clip directly from interleaved PCM. The data slice is
// owned by the Clip afterwards. len(data) must be a multiple of
// channels.
func New(sampleRate, channels int, data []float32) (*Clip, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrBadFormat
	}
	if len(data)%channels != 0 {
		return nil, ErrBadFormat
	}

	return &Clip{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     len(data) / channels,
		data:       data,
	}, nil
}

// FromSource drains src into memory. Any read failure surfaces as a
// decode error; a source that ends immediately yields an empty clip,
// which is also treated as a decode failure.
func FromSource(src audio.Source) (*Clip, error) {
	buf := make([]float32, 8192)
	data := make([]float32, 0, 1<<16)

	for {
		n, err := src.ReadSamples(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty stream", ErrDecode)
	}

	c, err := New(src.SampleRate(), src.Channels(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return c, nil
}

func (c *Clip) SampleRate() int { return c.sampleRate }
func (c *Clip) Channels() int   { return c.channels }

// Frames is the total frame count of the asset.
func (c *Clip) Frames() int { return c.frames }

// Duration in seconds.
func (c *Clip) Duration() float64 {
	return float64(c.frames) / float64(c.sampleRate)
}

// ReadAt copies interleaved samples starting at startFrame into dst
// and returns the number of frames copied. Reads past end-of-asset
// return the available remainder, possibly zero; out-of-range start
// frames read nothing. dst length must be a multiple of the channel
// count; a trailing partial frame is ignored.
func (c *Clip) ReadAt(dst []float32, startFrame int) int {
	if startFrame < 0 || startFrame >= c.frames {
		return 0
	}

	frames := len(dst) / c.channels
	if avail := c.frames - startFrame; frames > avail {
		frames = avail
	}
	if frames <= 0 {
		return 0
	}

	off := startFrame * c.channels
	copy(dst[:frames*c.channels], c.data[off:off+frames*c.channels])
	return frames
}

// Preview summarizes the clip as one mono RMS value per window of
// windowFrames frames, for waveform display. The trailing partial
// window is included. Returns nil when windowFrames is not positive.
func (c *Clip) Preview(windowFrames int) []float32 {
	if windowFrames <= 0 {
		return nil
	}

	out := make([]float32, 0, c.frames/windowFrames+1)
	var accSq float64
	var accN int

	for f := range c.frames {
		base := f * c.channels
		var sum float32
		for ch := range c.channels {
			sum += c.data[base+ch]
		}
		mono := float64(sum) / float64(c.channels)

		accSq += mono * mono
		accN++
		if accN == windowFrames {
			out = append(out, float32(math.Sqrt(accSq/float64(accN))))
			accSq, accN = 0, 0
		}
	}
	if accN > 0 {
		out = append(out, float32(math.Sqrt(accSq/float64(accN))))
	}

	return out
}
