// SPDX-License-Identifier: EPL-2.0

package sink

// FillFunc is the output callback contract. The host audio clock calls
// it with a mutable buffer of interleaved float32 samples to fill
// completely. Implementations of the callback must not block, allocate
// or take locks shared with non-real-time threads; when no audio is
// available they fill silence.
type FillFunc func(out []float32)

// Config describes the stream a Sink opens.
type Config struct {
	SampleRate int
	Channels   int
	// BufferFrames is the preferred callback period in frames. The
	// host may choose a different period.
	BufferFrames int
}

func (c Config) WithDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.Channels <= 0 {
		c.Channels = 2
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = 1024
	}
	return c
}

// Sink is a hardware audio output. Start registers the callback and
// begins invoking it at the device cadence; Stop pauses invocations;
// Close releases the device. Device/session global state (library
// init, contexts) is owned by the concrete sink, not by the engine.
type Sink interface {
	Start(fill FillFunc) error
	Stop() error
	Close() error
}
