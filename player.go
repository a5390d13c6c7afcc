// SPDX-License-Identifier: EPL-2.0

package abloop

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/ik5/abloop/audio"
	"github.com/ik5/abloop/clip"
	"github.com/ik5/abloop/ring"
	"github.com/ik5/abloop/sink"
	"github.com/ik5/abloop/stretch"
	"github.com/ik5/abloop/transport"
)

// Config for a Player. Zero values get sensible defaults.
type Config struct {
	// SampleRate and Channels are the engine format. Loaded assets
	// are converted to this format once, at load time.
	SampleRate int
	Channels   int

	// BlockFrames is the render block size; QueueBlocks is how many
	// blocks the output queue holds. Their product bounds both the
	// control latency and the underrun resilience.
	BlockFrames int
	QueueBlocks int

	// Registry resolves decoders by file extension. Defaults to
	// DefaultRegistry.
	Registry *audio.Registry

	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.Channels <= 0 {
		c.Channels = 2
	}
	if c.BlockFrames <= 0 {
		c.BlockFrames = 1024
	}
	if c.QueueBlocks <= 0 {
		c.QueueBlocks = 8
	}
	if c.Registry == nil {
		c.Registry = DefaultRegistry()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Status is the polled view of the whole engine: transport state plus
// the output callback's underrun counter.
type Status struct {
	transport.Status
	Underruns uint64
}

// Player wires the engine together: clip store, transport, stretcher,
// bounded output queue and a hardware sink. The render goroutine runs
// ahead of real time filling the queue; the sink's callback drains it.
//
// All Player methods are safe to call from a single control thread
// (typically the UI); they return immediately and take effect at the
// next render cycle.
type Player struct {
	cfg   Config
	store *clip.Store
	tr    *transport.Transport
	queue *ring.Buffer
	snk   sink.Sink

	underruns atomic.Uint64
	logger    *log.Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// New builds a Player on top of snk, starts the sink and the render
// goroutine. The Player owns the sink from here on and closes it in
// Close.
func New(snk sink.Sink, cfg Config) (*Player, error) {
	cfg = cfg.withDefaults()

	store := clip.NewStore()
	st := stretch.New(cfg.Channels, cfg.SampleRate)
	tr := transport.New(store, st, transport.Config{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	})

	p := &Player{
		cfg:    cfg,
		store:  store,
		tr:     tr,
		queue:  ring.New(cfg.QueueBlocks * cfg.BlockFrames * cfg.Channels),
		snk:    snk,
		logger: cfg.Logger,
	}

	if err := snk.Start(p.fill); err != nil {
		return nil, fmt.Errorf("start sink: %w", err)
	}

	p.wg.Add(1)
	go p.renderLoop()

	return p, nil
}

// fill is the output callback: wait-free queue pop, silence on
// underrun. Runs on the sink's real-time thread.
func (p *Player) fill(out []float32) {
	n := p.queue.Pop(out)
	if n < len(out) {
		clear(out[n:])
		p.underruns.Add(1)
	}
}

func (p *Player) renderLoop() {
	defer p.wg.Done()

	block := make([]float32, p.cfg.BlockFrames*p.cfg.Channels)
	for {
		p.tr.Render(block)
		if err := p.queue.Push(block); err != nil {
			// Queue closed: the player is shutting down.
			return
		}
	}
}

// Load decodes the file at path into memory, converted to the engine
// format, and makes it the current asset. Playback state rewinds and
// any loop region is cleared. Fails without touching the previous
// asset when the file cannot be decoded.
func (p *Player) Load(path string) error {
	dec, ok := p.cfg.Registry.ForPath(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDecoder, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", clip.ErrDecode, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %w", clip.ErrDecode, err)
	}
	defer src.Close()

	c, err := p.decodeToEngineFormat(src)
	if err != nil {
		return err
	}

	p.store.Swap(c)
	p.tr.Reload()
	p.logger.Info("asset loaded",
		"path", path,
		"frames", c.Frames(),
		"seconds", fmt.Sprintf("%.2f", c.Duration()))
	return nil
}

// LoadSource decodes an already-open source (any audio.Source) into
// the engine. Useful for tests and custom decoders.
func (p *Player) LoadSource(src audio.Source) error {
	c, err := p.decodeToEngineFormat(src)
	if err != nil {
		return err
	}
	p.store.Swap(c)
	p.tr.Reload()
	return nil
}

func (p *Player) decodeToEngineFormat(src audio.Source) (*clip.Clip, error) {
	var pipe audio.Source = src
	if pipe.SampleRate() != p.cfg.SampleRate {
		pipe = audio.NewResampler(pipe, p.cfg.SampleRate)
	}
	if pipe.Channels() != p.cfg.Channels {
		mixed, err := audio.NewChannelMixer(pipe, p.cfg.Channels)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", clip.ErrDecode, err)
		}
		pipe = mixed
	}

	return clip.FromSource(pipe)
}

// Play starts or resumes playback.
func (p *Player) Play() error {
	if p.store.Current() == nil {
		return clip.ErrNoClip
	}
	p.tr.Play()
	return nil
}

// Pause freezes playback, keeping the position.
func (p *Player) Pause() {
	p.tr.Pause()
}

// Stop halts playback and rewinds to the loop start (or the asset
// start when not looping).
func (p *Player) Stop() {
	p.tr.Stop()
}

// Seek moves to the given source frame, clamped into the asset and
// the active loop region.
func (p *Player) Seek(frame int) error {
	if p.store.Current() == nil {
		return clip.ErrNoClip
	}
	p.tr.Seek(frame)
	return nil
}

// SeekSeconds is Seek with a position in seconds.
func (p *Player) SeekSeconds(sec float64) error {
	return p.Seek(int(sec * float64(p.cfg.SampleRate)))
}

// SetLoop installs an A/B loop region in source frames (end is
// exclusive). An invalid region is rejected immediately and the
// previous region is kept.
func (p *Player) SetLoop(startFrame, endFrame int, enabled bool) error {
	l := transport.Loop{Start: startFrame, End: endFrame, Enabled: enabled}
	if enabled {
		c := p.store.Current()
		if c == nil {
			return clip.ErrNoClip
		}
		if !l.Valid(c.Frames()) {
			return transport.ErrInvalidLoop
		}
	}
	p.tr.SetLoop(l)
	return nil
}

// SetLoopSeconds is SetLoop with positions in seconds. The start is
// floored and the end is ceiled to whole frames, so the region always
// covers the requested span.
func (p *Player) SetLoopSeconds(start, end float64, enabled bool) error {
	rate := float64(p.cfg.SampleRate)
	return p.SetLoop(int(math.Floor(start*rate)), int(math.Ceil(end*rate)), enabled)
}

// SetSpeed requests a playback speed ratio (1.0 = original; smaller is
// slower at the same pitch). Out-of-range ratios are clamped to the
// supported range rather than rejected; the clamped value shows up in
// Status.
func (p *Player) SetSpeed(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return stretch.ErrUnsupportedRatio
	}
	p.tr.SetSpeed(ratio)
	return nil
}

// Status returns the latest engine snapshot. Polled, never pushed, so
// the UI stays decoupled from the real-time path.
func (p *Player) Status() Status {
	return Status{
		Status:    p.tr.Status(),
		Underruns: p.underruns.Load(),
	}
}

// Preview returns the mono RMS waveform trace of the current asset,
// one value per windowFrames frames, or nil when nothing is loaded.
func (p *Player) Preview(windowFrames int) []float32 {
	c := p.store.Current()
	if c == nil {
		return nil
	}
	return c.Preview(windowFrames)
}

// Close tears the engine down: stops the sink, unblocks and joins the
// render goroutine, then releases the device.
func (p *Player) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	stopErr := p.snk.Stop()
	p.queue.Close()
	p.wg.Wait()

	if err := p.snk.Close(); err != nil {
		return err
	}
	return stopErr
}
