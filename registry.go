// SPDX-License-Identifier: EPL-2.0

package abloop

import (
	"github.com/ik5/abloop/audio"
	"github.com/ik5/abloop/formats/aiff"
	"github.com/ik5/abloop/formats/mp3"
	"github.com/ik5/abloop/formats/vorbis"
	"github.com/ik5/abloop/formats/wav"
)

// DefaultRegistry returns a registry with all built-in format decoders
// registered under their usual file extensions.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	return reg
}
