// SPDX-License-Identifier: EPL-2.0

// Package portaudio provides a sink.Sink backed by PortAudio. The
// device invokes the engine's FillFunc directly from its real-time
// callback thread.
package portaudio

import (
	"fmt"

	pa "github.com/gordonklaus/portaudio"

	"github.com/ik5/abloop/sink"
)

// Sink opens the default output device. PortAudio's process-wide
// initialization is done in New and undone in Close.
type Sink struct {
	cfg    sink.Config
	stream *pa.Stream
	inited bool
}

func New(cfg sink.Config) (*Sink, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}
	return &Sink{cfg: cfg.WithDefaults(), inited: true}, nil
}

func (s *Sink) Start(fill sink.FillFunc) error {
	if s.stream != nil {
		return s.stream.Start()
	}

	stream, err := pa.OpenDefaultStream(
		0,              // no input channels
		s.cfg.Channels, // output channels
		float64(s.cfg.SampleRate),
		s.cfg.BufferFrames,
		func(out []float32) {
			fill(out)
		},
	)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	s.stream = stream

	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	return nil
}

func (s *Sink) Stop() error {
	if s.stream == nil {
		return nil
	}
	return s.stream.Stop()
}

func (s *Sink) Close() error {
	var firstErr error
	if s.stream != nil {
		firstErr = s.stream.Close()
		s.stream = nil
	}
	if s.inited {
		if err := pa.Terminate(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.inited = false
	}
	return firstErr
}
