// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// WritePCM16 writes interleaved 16-bit PCM as a canonical WAV file.
// Mostly used by tests to synthesize fixtures for the decoder and
// player.
func WritePCM16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	enc := gowav.NewEncoder(w, sampleRate, 16, channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
