// SPDX-License-Identifier: EPL-2.0

package sink

import "sync"

// Manual is a Sink with no device behind it: tests drive the callback
// themselves through Pump, standing in for the host audio clock.
type Manual struct {
	cfg Config

	mtx     sync.Mutex
	fill    FillFunc
	started bool
	closed  bool
}

func NewManual(cfg Config) *Manual {
	return &Manual{cfg: cfg.WithDefaults()}
}

func (m *Manual) Start(fill FillFunc) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.closed {
		return ErrSinkClosed
	}
	m.fill = fill
	m.started = true
	return nil
}

func (m *Manual) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = false
	return nil
}

func (m *Manual) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = false
	m.closed = true
	return nil
}

func (m *Manual) Started() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.started
}

// Pump invokes the callback once for frames frames and returns the
// produced samples. Returns nil when the sink is not started.
func (m *Manual) Pump(frames int) []float32 {
	m.mtx.Lock()
	fill := m.fill
	started := m.started
	ch := m.cfg.Channels
	m.mtx.Unlock()

	if !started || fill == nil {
		return nil
	}

	out := make([]float32, frames*ch)
	fill(out)
	return out
}
