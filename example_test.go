// SPDX-License-Identifier: EPL-2.0

package abloop_test

import (
	"log"
	"time"

	"github.com/ik5/abloop"
	"github.com/ik5/abloop/sink"
	"github.com/ik5/abloop/sink/portaudio"
)

// Loop four bars of a track at three-quarter speed for practice.
func Example() {
	snk, err := portaudio.New(sink.Config{})
	if err != nil {
		log.Fatal(err)
	}

	p, err := abloop.New(snk, abloop.Config{})
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	if err := p.Load("solo.wav"); err != nil {
		log.Fatal(err)
	}

	if err := p.SetLoopSeconds(12.5, 21.0, true); err != nil {
		log.Fatal(err)
	}
	if err := p.SetSpeed(0.75); err != nil {
		log.Fatal(err)
	}
	if err := p.Play(); err != nil {
		log.Fatal(err)
	}

	for {
		st := p.Status()
		if st.Err != nil {
			log.Fatal(st.Err)
		}
		log.Printf("at %.2fs", st.Seconds)
		time.Sleep(time.Second)
	}
}
