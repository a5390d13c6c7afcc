// SPDX-License-Identifier: EPL-2.0

// Package otosink provides a sink.Sink backed by oto v3. Oto pulls
// bytes from an io.Reader on its own playback goroutine; the reader
// here bridges those pulls to the engine's FillFunc.
package otosink

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/abloop/sink"
)

type Sink struct {
	cfg    sink.Config
	ctx    *oto.Context
	player *oto.Player
}

func New(cfg sink.Config) (*Sink, error) {
	cfg = cfg.WithDefaults()

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize: time.Duration(cfg.BufferFrames) * time.Second /
			time.Duration(cfg.SampleRate),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	return &Sink{cfg: cfg, ctx: ctx}, nil
}

func (s *Sink) Start(fill sink.FillFunc) error {
	if s.player != nil {
		s.player.Play()
		return nil
	}

	r := &fillReader{
		fill:     fill,
		channels: s.cfg.Channels,
	}
	s.player = s.ctx.NewPlayer(r)
	s.player.Play()
	return nil
}

func (s *Sink) Stop() error {
	if s.player != nil {
		s.player.Pause()
	}
	return nil
}

func (s *Sink) Close() error {
	if s.player != nil {
		err := s.player.Close()
		s.player = nil
		// oto.Context has no Close in v3; it is released with the
		// process.
		return err
	}
	return nil
}

// fillReader adapts FillFunc to the io.Reader oto consumes: each Read
// asks the engine for samples and encodes them as float32 LE bytes.
// It never returns an error, so the device stream never tears down on
// a transient underrun (the engine already substitutes silence).
type fillReader struct {
	fill     sink.FillFunc
	channels int
	scratch  []float32
}

func (r *fillReader) Read(p []byte) (int, error) {
	frameBytes := 4 * r.channels
	n := len(p) - len(p)%frameBytes
	if n == 0 {
		return 0, nil
	}

	samples := n / 4
	if cap(r.scratch) < samples {
		r.scratch = make([]float32, samples)
	}
	buf := r.scratch[:samples]

	r.fill(buf)

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n, nil
}
