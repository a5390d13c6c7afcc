// SPDX-License-Identifier: EPL-2.0

// Command abloop plays an audio file in a loop at an adjustable speed,
// printing transport status while it runs.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ik5/abloop"
	"github.com/ik5/abloop/sink"
	"github.com/ik5/abloop/sink/otosink"
	"github.com/ik5/abloop/sink/portaudio"
	"github.com/ik5/abloop/transport"
)

var (
	flagLoopStart time.Duration
	flagLoopEnd   time.Duration
	flagSpeed     float64
	flagBackend   string
	flagRate      int
	flagChannels  int
	flagQuiet     bool
)

func main() {
	root := &cobra.Command{
		Use:   "abloop <file>",
		Short: "loop a section of an audio file at practice speed",
		Long: `abloop plays an audio file, optionally restricted to an A/B loop
region, at a chosen speed with the original pitch preserved. Meant for
practicing along with recordings.`,
		Args: cobra.ExactArgs(1),
		RunE: run,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().DurationVar(&flagLoopStart, "loop-start", 0, "loop region start (e.g. 12.5s)")
	root.Flags().DurationVar(&flagLoopEnd, "loop-end", 0, "loop region end; 0 disables looping")
	root.Flags().Float64Var(&flagSpeed, "speed", 1.0, "playback speed ratio (0.125 to 2.0)")
	root.Flags().StringVar(&flagBackend, "backend", "portaudio", "output backend: portaudio or oto")
	root.Flags().IntVar(&flagRate, "rate", 44100, "engine sample rate")
	root.Flags().IntVar(&flagChannels, "channels", 2, "engine channel count")
	root.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress the status line")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	snk, err := openSink()
	if err != nil {
		return err
	}

	p, err := abloop.New(snk, abloop.Config{
		SampleRate: flagRate,
		Channels:   flagChannels,
	})
	if err != nil {
		snk.Close()
		return err
	}
	defer p.Close()

	if err := p.Load(args[0]); err != nil {
		return err
	}

	if flagLoopEnd > 0 {
		err = p.SetLoopSeconds(flagLoopStart.Seconds(), flagLoopEnd.Seconds(), true)
		if err != nil {
			return err
		}
	}
	if err := p.SetSpeed(flagSpeed); err != nil {
		return err
	}
	if err := p.Play(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			fmt.Println()
			return nil

		case <-tick.C:
			st := p.Status()
			if st.Err != nil {
				return st.Err
			}
			if st.State == transport.Stopped && flagLoopEnd <= 0 {
				// Ran off the end of the file without a loop.
				fmt.Println()
				return nil
			}
			if !flagQuiet {
				fmt.Printf("\r%-7s %8.2fs  x%.2f  underruns %d ",
					st.State, st.Seconds, st.Speed, st.Underruns)
			}
		}
	}
}

func openSink() (sink.Sink, error) {
	cfg := sink.Config{SampleRate: flagRate, Channels: flagChannels}
	switch flagBackend {
	case "portaudio":
		return portaudio.New(cfg)
	case "oto":
		return otosink.New(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", flagBackend)
	}
}
