// SPDX-License-Identifier: EPL-2.0

package transport

// State of the transport state machine.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Loop is an A/B region in source frames. End is exclusive.
type Loop struct {
	Start   int
	End     int
	Enabled bool
}

// Valid reports whether the region is well formed for an asset of
// total frames. A disabled loop is always valid.
func (l Loop) Valid(total int) bool {
	if !l.Enabled {
		return true
	}
	return l.Start >= 0 && l.Start < l.End && l.End <= total
}

// normalize clamps the region into [0, total) and disables it when
// nothing remains.
func (l Loop) normalize(total int) Loop {
	if !l.Enabled {
		return l
	}
	if l.Start < 0 {
		l.Start = 0
	}
	if l.End > total {
		l.End = total
	}
	if l.Start >= l.End {
		l.Enabled = false
	}
	return l
}

// Status is the polled snapshot of transport state, published once per
// render cycle. Position is in fractional source frames and already
// accounts for the stretcher's buffered latency.
type Status struct {
	State    State
	Position float64
	Seconds  float64
	Speed    float64
	Loop     Loop
	Err      error
}
