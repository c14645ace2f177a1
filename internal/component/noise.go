package component

import (
	"math/rand/v2"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// Noise generates white noise uniformly distributed in [-amp, +amp). It
// carries no state between blocks; a per-instance rand.Rand only avoids
// contending the global generator across concurrently active events.
type Noise struct {
	rng *rand.Rand
}

// NewNoise creates a Noise instance seeded from an unpredictable source.
func NewNoise() *Noise {
	return &Noise{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Process fills one block with uniform noise. Every output channel carries
// the same per-frame value, matching the rest of the component library's
// single-signal-broadcast convention.
func (n *Noise) Process(info StreamInfo, args []value.Value) value.Value {
	amp := args[0].GetFloat()
	buf := audiobuffer.New(info.Channels, info.BufferSize)
	for f := 0; f < info.BufferSize; f++ {
		s := (n.rng.Float32()*2 - 1) * amp
		for c := 0; c < info.Channels; c++ {
			buf.Set(c, f, s)
		}
	}
	v := value.NewAudio(buf)
	buf.Release()
	return v
}
