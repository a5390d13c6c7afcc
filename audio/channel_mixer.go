// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts a source to a fixed output channel count.
// Downmixing averages all input channels; upmixing is only supported
// from mono, by duplicating the single channel. Anything else returns
// ErrChannelMix from NewChannelMixer.
type ChannelMixer struct {
	src         Source
	outChannels int
	tmp         []float32
}

func NewChannelMixer(src Source, outChannels int) (*ChannelMixer, error) {
	in := src.Channels()
	if outChannels < 1 {
		return nil, ErrChannelMix
	}
	if in != outChannels && outChannels != 1 && in != 1 {
		return nil, ErrChannelMix
	}

	return &ChannelMixer{
		src:         src,
		outChannels: outChannels,
	}, nil
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.outChannels }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.outChannels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.outChannels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.outChannels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	gotFrames := n / in

	switch {
	case m.outChannels == 1:
		inv := float32(1.0) / float32(in)
		for f := range gotFrames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	default: // mono in, fan out
		for f := range gotFrames {
			v := m.tmp[f]
			base := f * m.outChannels
			for c := range m.outChannels {
				dst[base+c] = v
			}
		}
	}

	return gotFrames * m.outChannels, err
}
