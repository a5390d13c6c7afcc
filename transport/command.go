// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"math"

	"github.com/ik5/abloop/clip"
)

type cmdKind uint8

const (
	cmdPlay cmdKind = iota
	cmdPause
	cmdStop
	cmdSeek
	cmdSetLoop
	cmdSetSpeed
	cmdReload
)

type command struct {
	kind  cmdKind
	frame int
	loop  Loop
	speed float64
}

// The command methods enqueue; the render thread applies the command
// at the start of its next cycle, so a change never splits one output
// block. Up to one cycle of latency is inherent and acceptable for
// audio control. The queue is buffered; a full queue blocks the
// caller until the render loop catches up.

func (t *Transport) Play()  { t.cmds <- command{kind: cmdPlay} }
func (t *Transport) Pause() { t.cmds <- command{kind: cmdPause} }
func (t *Transport) Stop()  { t.cmds <- command{kind: cmdStop} }

// Seek moves the playback position to frame (clamped into the asset,
// and into the loop region while looping).
func (t *Transport) Seek(frame int) { t.cmds <- command{kind: cmdSeek, frame: frame} }

// SetLoop installs a loop region. Region validity against the asset is
// checked by the caller (the Player API boundary); the transport only
// normalizes defensively.
func (t *Transport) SetLoop(l Loop) { t.cmds <- command{kind: cmdSetLoop, loop: l} }

// SetSpeed requests a playback speed ratio; out-of-range values are
// clamped, never rejected.
func (t *Transport) SetSpeed(ratio float64) { t.cmds <- command{kind: cmdSetSpeed, speed: ratio} }

// Reload tells the transport a new clip was swapped into the store:
// position rewinds, the loop is cleared, and stretch state drops.
func (t *Transport) Reload() { t.cmds <- command{kind: cmdReload} }

func (t *Transport) drainCommands(c *clip.Clip) {
	for {
		select {
		case cmd := <-t.cmds:
			t.apply(cmd, c)
		default:
			return
		}
	}
}

func (t *Transport) apply(cmd command, c *clip.Clip) {
	switch cmd.kind {
	case cmdPlay:
		if c == nil {
			t.lastErr = clip.ErrNoClip
			return
		}
		if t.state != Playing {
			t.state = Playing
		}

	case cmdPause:
		if t.state == Playing {
			t.state = Paused
		}

	case cmdStop:
		t.state = Stopped
		t.resetToStart()
		t.st.Reset()
		t.discardPending()

	case cmdSeek:
		t.applySeek(cmd.frame, c)

	case cmdSetLoop:
		t.applyLoop(cmd.loop, c)

	case cmdSetSpeed:
		r := cmd.speed
		if r < t.st.MinRatio() {
			r = t.st.MinRatio()
		} else if r > t.st.MaxRatio() {
			r = t.st.MaxRatio()
		}
		if math.Abs(r-t.speed) > t.cfg.SpeedJump {
			// A large jump sounds like a cut; don't smear across it.
			t.st.Reset()
		}
		t.speed = r

	case cmdReload:
		t.state = Stopped
		t.loop = Loop{}
		t.pos = 0
		t.readPos = 0
		t.st.Reset()
		t.discardPending()
		t.lastErr = nil
	}
}

func (t *Transport) applySeek(frame int, c *clip.Clip) {
	if c == nil {
		return
	}
	frame = clampFrame(frame, c.Frames())
	if t.loop.Enabled {
		if frame < t.loop.Start {
			frame = t.loop.Start
		} else if frame >= t.loop.End {
			frame = t.loop.Start
		}
	}

	t.pos = float64(frame)
	t.readPos = frame
	t.st.Reset()
	t.discardPending()
}

func (t *Transport) applyLoop(l Loop, c *clip.Clip) {
	if l.Enabled {
		if c == nil {
			t.lastErr = ErrInvalidLoop
			return
		}
		l = l.normalize(c.Frames())
		if !l.Enabled {
			t.lastErr = ErrInvalidLoop
			return
		}
	}

	toggled := l.Enabled != t.loop.Enabled
	t.loop = l

	if l.Enabled && (t.readPos < l.Start || t.readPos >= l.End) {
		// Position outside the new region: clamp to its start. This
		// is a position jump, so pending audio is stale too.
		t.pos = float64(l.Start)
		t.readPos = l.Start
		t.st.Reset()
		t.discardPending()
		return
	}
	if toggled {
		// Enabling or disabling changes upcoming read continuity.
		t.st.Reset()
	}
}

func clampFrame(frame, total int) int {
	if frame < 0 {
		return 0
	}
	if frame >= total {
		return total - 1
	}
	return frame
}
