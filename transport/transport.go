// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"sync/atomic"

	"github.com/ik5/abloop/clip"
)

// Stretcher is the time-stretch contract the transport drives. The
// concrete implementation lives in the stretch package; anything
// honoring this contract (e.g. a phase vocoder) can be substituted.
type Stretcher interface {
	Process(in []float32, ratio float64) ([]float32, error)
	Flush() []float32
	Reset()
	MinRatio() float64
	MaxRatio() float64
}

// Config for a Transport. Zero values get sensible defaults.
type Config struct {
	SampleRate int
	Channels   int

	// ChunkFrames is how many source frames are fed to the stretcher
	// per call while producing a block.
	ChunkFrames int

	// SpeedJump is the ratio delta beyond which a speed change is
	// treated as a discontinuity and resets the stretcher.
	SpeedJump float64

	// CommandBacklog is the command channel capacity.
	CommandBacklog int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.Channels <= 0 {
		c.Channels = 2
	}
	if c.ChunkFrames <= 0 {
		c.ChunkFrames = 512
	}
	if c.SpeedJump <= 0 {
		c.SpeedJump = 0.5
	}
	if c.CommandBacklog <= 0 {
		c.CommandBacklog = 64
	}
	return c
}

// Transport owns playback position, loop region, speed and play state,
// and turns clip reads plus the stretcher into finished output blocks.
//
// All mutation happens on the render thread inside Render: commands
// queue up on a channel and are applied at the start of a cycle, never
// mid-block. Other threads interact only through the command methods
// and the Status snapshot.
type Transport struct {
	cfg   Config
	store *clip.Store
	st    Stretcher

	cmds chan command

	state State
	loop  Loop
	speed float64

	// pos is the fractional source-frame position of rendered output;
	// readPos is the next integer source frame to feed the stretcher.
	// pos trails readPos by the stretcher's buffered latency and is
	// the value reported to the UI.
	pos     float64
	readPos int

	pending []float32 // stretched output not yet delivered
	inBuf   []float32

	lastErr error

	status atomic.Pointer[Status]
}

// New creates a Transport rendering from store through st.
func New(store *clip.Store, st Stretcher, cfg Config) *Transport {
	cfg = cfg.withDefaults()
	t := &Transport{
		cfg:   cfg,
		store: store,
		st:    st,
		cmds:  make(chan command, cfg.CommandBacklog),
		speed: 1.0,
	}
	t.publish()
	return t
}

// Render fills dst (len must be a multiple of the channel count) with
// the next block of finished output, applying queued commands first.
// Called only from the render goroutine.
func (t *Transport) Render(dst []float32) {
	c := t.store.Current()
	t.drainCommands(c)

	if t.state != Playing || c == nil {
		if t.state == Playing && c == nil {
			// Clip was swapped out underneath a playing transport.
			t.failStop(clip.ErrNoClip)
		}
		t.deliver(dst)
		t.publish()
		return
	}

	t.produce(c, len(dst))
	t.deliver(dst)
	t.publish()
}

// produce runs the stretch pipeline until enough output is pending.
func (t *Transport) produce(c *clip.Clip, need int) {
	ch := t.cfg.Channels
	if cap(t.inBuf) < t.cfg.ChunkFrames*ch {
		t.inBuf = make([]float32, t.cfg.ChunkFrames*ch)
	}

	for len(t.pending) < need && t.state == Playing {
		limit := t.framesUntilBoundary(c)
		if limit <= 0 {
			// Boundary reached: the seam is always a discontinuity.
			// Drain the stretcher tail, then either wrap or stop.
			t.appendOutput(t.st.Flush())
			if t.loop.Enabled {
				t.readPos = t.loop.Start
				t.pos = float64(t.loop.Start)
			} else {
				t.state = Stopped
				t.resetToStart()
			}
			continue
		}

		k := min(t.cfg.ChunkFrames, limit)
		in := t.inBuf[:k*ch]
		got := c.ReadAt(in, t.readPos)
		if got == 0 {
			t.failStop(clip.ErrNoClip)
			return
		}

		out, err := t.st.Process(in[:got*ch], t.speed)
		if err != nil {
			t.failStop(err)
			return
		}
		t.readPos += got
		t.appendOutput(out)
	}
}

// framesUntilBoundary returns how many source frames may be read
// before the loop end (when looping) or end-of-asset.
func (t *Transport) framesUntilBoundary(c *clip.Clip) int {
	if t.loop.Enabled {
		return t.loop.End - t.readPos
	}
	return c.Frames() - t.readPos
}

func (t *Transport) appendOutput(out []float32) {
	if len(out) == 0 {
		return
	}
	t.pending = append(t.pending, out...)

	// Advance the played position by the source content this output
	// represents, kept fractional so rounding never accumulates.
	t.pos += float64(len(out)/t.cfg.Channels) * t.speed
	if t.loop.Enabled && t.pos > float64(t.loop.End) {
		t.pos = float64(t.loop.End)
	}
}

// deliver copies pending output into dst and zero-fills any shortfall.
// Pending audio still drains after a natural stop (end-of-asset flush
// tail); explicit stop/seek discard it instead.
func (t *Transport) deliver(dst []float32) {
	n := copy(dst, t.pending)
	if n > 0 {
		rest := t.pending[n:]
		t.pending = append(t.pending[:0], rest...)
	}
	clear(dst[n:])
}

func (t *Transport) resetToStart() {
	if t.loop.Enabled {
		t.readPos = t.loop.Start
	} else {
		t.readPos = 0
	}
	t.pos = float64(t.readPos)
}

func (t *Transport) failStop(err error) {
	t.lastErr = err
	t.state = Stopped
	t.pending = t.pending[:0]
	t.st.Reset()
}

func (t *Transport) discardPending() {
	t.pending = t.pending[:0]
}

func (t *Transport) publish() {
	s := &Status{
		State:    t.state,
		Position: t.pos,
		Seconds:  t.pos / float64(t.cfg.SampleRate),
		Speed:    t.speed,
		Loop:     t.loop,
		Err:      t.lastErr,
	}
	t.status.Store(s)
}

// Status returns the latest snapshot published at a cycle boundary.
// Safe to call from any goroutine; intended for UI polling.
func (t *Transport) Status() Status {
	return *t.status.Load()
}
