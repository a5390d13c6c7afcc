// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"errors"
	"testing"

	"github.com/ik5/abloop/clip"
)

// stubStretcher passes audio through unchanged and counts resets, so
// tests can assert exact frame sequences and seam handling without the
// real WSOLA pipeline in the way.
type stubStretcher struct {
	resets  int
	flushes int
}

func (s *stubStretcher) Process(in []float32, ratio float64) ([]float32, error) {
	out := make([]float32, len(in))
	copy(out, in)
	return out, nil
}

func (s *stubStretcher) Flush() []float32  { s.flushes++; return nil }
func (s *stubStretcher) Reset()            { s.resets++ }
func (s *stubStretcher) MinRatio() float64 { return 0.125 }
func (s *stubStretcher) MaxRatio() float64 { return 2.0 }

// rampClip builds a mono clip where sample value equals frame index,
// so output frames identify their source position exactly.
func rampClip(t *testing.T, frames int) *clip.Clip {
	t.Helper()

	data := make([]float32, frames)
	for i := range data {
		data[i] = float32(i)
	}
	c, err := clip.New(1000, 1, data)
	if err != nil {
		t.Fatalf("clip.New() error = %v", err)
	}
	return c
}

func newTestTransport(t *testing.T, frames, chunk int) (*Transport, *stubStretcher, *clip.Store) {
	t.Helper()

	store := clip.NewStore()
	store.Swap(rampClip(t, frames))
	st := &stubStretcher{}
	tr := New(store, st, Config{
		SampleRate:  1000,
		Channels:    1,
		ChunkFrames: chunk,
	})
	return tr, st, store
}

// render runs n cycles of blockFrames and returns the concatenated
// output.
func render(tr *Transport, blockFrames, n int) []float32 {
	out := make([]float32, 0, blockFrames*n)
	dst := make([]float32, blockFrames)
	for range n {
		tr.Render(dst)
		out = append(out, dst...)
	}
	return out
}

func TestRender_StoppedIsSilent(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	out := render(tr, 64, 2)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence while stopped", i, v)
		}
	}

	if st := tr.Status(); st.State != Stopped {
		t.Errorf("State = %v, want Stopped", st.State)
	}
}

func TestPlay_WithoutClip(t *testing.T) {
	t.Parallel()

	store := clip.NewStore()
	tr := New(store, &stubStretcher{}, Config{SampleRate: 1000, Channels: 1})

	tr.Play()
	render(tr, 64, 1)

	st := tr.Status()
	if st.State != Stopped {
		t.Errorf("State = %v, want Stopped", st.State)
	}
	if !errors.Is(st.Err, clip.ErrNoClip) {
		t.Errorf("Err = %v, want ErrNoClip", st.Err)
	}
}

func TestRender_PlaysFromStart(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.Play()
	out := render(tr, 64, 3)

	for i, v := range out {
		if v != float32(i) {
			t.Fatalf("out[%d] = %v, want %v", i, v, float32(i))
		}
	}
	if st := tr.Status(); st.State != Playing {
		t.Errorf("State = %v, want Playing", st.State)
	}
}

func TestLoop_WrapsExactly(t *testing.T) {
	t.Parallel()

	tr, st, _ := newTestTransport(t, 1000, 64)

	tr.SetLoop(Loop{Start: 100, End: 200, Enabled: true})
	tr.Play()
	out := render(tr, 64, 5) // 320 frames, more than three iterations

	// Every loop iteration covers [100, 200) exactly, then wraps.
	want := 100
	for i, v := range out {
		if v != float32(want) {
			t.Fatalf("out[%d] = %v, want %v", i, v, float32(want))
		}
		want++
		if want == 200 {
			want = 100
		}
	}

	if st.flushes == 0 {
		t.Error("loop wrap did not flush the stretcher")
	}

	status := tr.Status()
	if !status.Loop.Enabled || status.Loop.Start != 100 || status.Loop.End != 200 {
		t.Errorf("Loop = %+v, want enabled [100, 200)", status.Loop)
	}
	if status.Position < 100 || status.Position > 200 {
		t.Errorf("Position = %v, want inside the loop region", status.Position)
	}
}

func TestSeek_DiscardsPendingOutput(t *testing.T) {
	t.Parallel()

	// Large chunk so a render cycle leaves pre-stretched output pending.
	tr, st, _ := newTestTransport(t, 1000, 512)

	tr.Play()
	render(tr, 64, 1)

	resetsBefore := st.resets
	tr.Seek(700)
	out := render(tr, 64, 1)

	// Stale pending audio from before the seek must not leak out.
	if out[0] != 700 {
		t.Fatalf("out[0] after seek = %v, want 700", out[0])
	}
	if st.resets == resetsBefore {
		t.Error("seek did not reset the stretcher")
	}
}

func TestSeek_ClampedIntoLoop(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.SetLoop(Loop{Start: 100, End: 200, Enabled: true})
	tr.Seek(500) // outside the region
	tr.Play()
	out := render(tr, 64, 1)

	if out[0] != 100 {
		t.Errorf("out[0] = %v, want seek clamped to loop start 100", out[0])
	}
}

func TestStop_RewindsToLoopStart(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.SetLoop(Loop{Start: 100, End: 200, Enabled: true})
	tr.Play()
	render(tr, 64, 2)

	tr.Stop()
	out := render(tr, 64, 1)

	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence after stop", i, v)
		}
	}

	st := tr.Status()
	if st.State != Stopped {
		t.Errorf("State = %v, want Stopped", st.State)
	}
	if st.Position != 100 {
		t.Errorf("Position = %v, want loop start 100", st.Position)
	}
}

func TestPause_KeepsPosition(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.Play()
	render(tr, 64, 2)
	tr.Pause()
	render(tr, 64, 1)

	st := tr.Status()
	if st.State != Paused {
		t.Errorf("State = %v, want Paused", st.State)
	}
	pos := st.Position

	out := render(tr, 64, 2)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence while paused", i, v)
		}
	}
	if got := tr.Status().Position; got != pos {
		t.Errorf("Position drifted while paused: %v -> %v", pos, got)
	}

	// Resume continues where pause left off.
	tr.Play()
	resumed := render(tr, 64, 1)
	if resumed[0] != float32(int(pos)) {
		t.Errorf("resumed at %v, want %v", resumed[0], pos)
	}
}

func TestSetSpeed_Clamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"in range", 0.75, 0.75},
		{"too fast", 5.0, 2.0},
		{"too slow", 0.01, 0.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, _, _ := newTestTransport(t, 1000, 64)
			tr.SetSpeed(tt.ratio)
			render(tr, 64, 1)

			if got := tr.Status().Speed; got != tt.want {
				t.Errorf("Speed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetSpeed_JumpResetsStretch(t *testing.T) {
	t.Parallel()

	tr, st, _ := newTestTransport(t, 1000, 64)
	tr.Play()
	render(tr, 64, 1)

	before := st.resets
	tr.SetSpeed(0.9) // small nudge
	render(tr, 64, 1)
	if st.resets != before {
		t.Error("small speed change reset the stretcher")
	}

	tr.SetSpeed(0.25) // jump of 0.65
	render(tr, 64, 1)
	if st.resets == before {
		t.Error("large speed jump did not reset the stretcher")
	}
}

func TestSetLoop_InvalidRejected(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.SetLoop(Loop{Start: 100, End: 200, Enabled: true})
	render(tr, 64, 1)

	tr.SetLoop(Loop{Start: 500, End: 400, Enabled: true})
	render(tr, 64, 1)

	st := tr.Status()
	if !errors.Is(st.Err, ErrInvalidLoop) {
		t.Errorf("Err = %v, want ErrInvalidLoop", st.Err)
	}
	// The previous region survives a rejected update.
	if st.Loop.Start != 100 || st.Loop.End != 200 || !st.Loop.Enabled {
		t.Errorf("Loop = %+v, want previous region kept", st.Loop)
	}
}

func TestSetLoop_MovesPositionIntoRegion(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 1000, 64)

	tr.Play()
	render(tr, 64, 1) // position near 64
	tr.SetLoop(Loop{Start: 300, End: 400, Enabled: true})
	out := render(tr, 64, 1)

	if out[0] != 300 {
		t.Errorf("out[0] = %v, want playback moved to loop start 300", out[0])
	}
}

func TestEndOfAsset_Stops(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 100, 64)

	tr.Play()
	out := render(tr, 64, 3)

	// 100 ramp frames, then silence.
	for i, v := range out {
		want := float32(0)
		if i < 100 {
			want = float32(i)
		}
		if v != want {
			t.Fatalf("out[%d] = %v, want %v", i, v, want)
		}
	}

	st := tr.Status()
	if st.State != Stopped {
		t.Errorf("State = %v, want Stopped at end of asset", st.State)
	}
	if st.Position != 0 {
		t.Errorf("Position = %v, want rewound to 0", st.Position)
	}
}

func TestReload_ClearsState(t *testing.T) {
	t.Parallel()

	tr, _, store := newTestTransport(t, 1000, 64)

	tr.SetLoop(Loop{Start: 100, End: 200, Enabled: true})
	tr.SetSpeed(0.5)
	tr.Play()
	render(tr, 64, 2)

	store.Swap(rampClip(t, 500))
	tr.Reload()
	render(tr, 64, 1)

	st := tr.Status()
	if st.State != Stopped {
		t.Errorf("State = %v, want Stopped after reload", st.State)
	}
	if st.Loop.Enabled {
		t.Errorf("Loop = %+v, want cleared after reload", st.Loop)
	}
	if st.Position != 0 {
		t.Errorf("Position = %v, want 0 after reload", st.Position)
	}
	if st.Err != nil {
		t.Errorf("Err = %v, want nil after reload", st.Err)
	}
	// Speed is a user preference and survives the reload.
	if st.Speed != 0.5 {
		t.Errorf("Speed = %v, want 0.5 kept across reload", st.Speed)
	}
}

func TestPosition_TracksSpeed(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, 10000, 64)

	tr.SetSpeed(0.5)
	tr.Play()
	render(tr, 64, 1)

	// One 64-frame block at half speed advances 32 source frames.
	if got := tr.Status().Position; got != 32 {
		t.Errorf("Position = %v, want 32", got)
	}
}

func TestLoopValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		loop  Loop
		total int
		want  bool
	}{
		{"disabled always valid", Loop{Start: 9, End: 3, Enabled: false}, 10, true},
		{"well formed", Loop{Start: 0, End: 10, Enabled: true}, 10, true},
		{"empty region", Loop{Start: 5, End: 5, Enabled: true}, 10, false},
		{"inverted", Loop{Start: 8, End: 2, Enabled: true}, 10, false},
		{"negative start", Loop{Start: -1, End: 5, Enabled: true}, 10, false},
		{"past end", Loop{Start: 0, End: 11, Enabled: true}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.loop.Valid(tt.total); got != tt.want {
				t.Errorf("Valid(%d) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}
