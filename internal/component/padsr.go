package component

import (
	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// Padsr is Adsr's sample-accurate sibling: the same attack/decay/sustain/
// release curve, but evaluated once per sample and returned as an Audio
// signal rather than one scalar per block.
type Padsr struct {
	sampleClock float32
}

// NewPadsr creates a Padsr instance with its clock reset to zero.
func NewPadsr() *Padsr { return &Padsr{} }

// Process evaluates the envelope at every sample in the block, advancing
// the clock one sample at a time, and broadcasts the result identically
// across every output channel.
func (p *Padsr) Process(info StreamInfo, args []value.Value) value.Value {
	sr := float32(info.SampleRate)
	attack := args[0].GetFloat() * sr
	decay := args[1].GetFloat() * sr
	sustain := args[2].GetFloat()
	release := args[3].GetFloat() * sr
	total := args[4].GetFloat() * sr

	buf := audiobuffer.New(info.Channels, info.BufferSize)
	for f := 0; f < info.BufferSize; f++ {
		s := envelopeLevel(p.sampleClock, attack, decay, sustain, release, total)
		for c := 0; c < info.Channels; c++ {
			buf.Set(c, f, s)
		}
		p.sampleClock++
	}

	v := value.NewAudio(buf)
	buf.Release()
	return v
}
