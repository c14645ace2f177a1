package component

import "github.com/ryanjeffares/ral-go/internal/value"

// Adsr is a block-rate attack/decay/sustain/release envelope: it produces
// one scalar Float per call rather than a per-sample Audio signal, and
// advances its internal clock by a whole block each call.
type Adsr struct {
	sampleClock float32
}

// NewAdsr creates an Adsr instance with its clock reset to zero.
func NewAdsr() *Adsr { return &Adsr{} }

// Process evaluates the envelope at the clock's current position, then
// advances the clock by info.BufferSize samples.
func (a *Adsr) Process(info StreamInfo, args []value.Value) value.Value {
	sr := float32(info.SampleRate)
	attack := args[0].GetFloat() * sr
	decay := args[1].GetFloat() * sr
	sustain := args[2].GetFloat()
	release := args[3].GetFloat() * sr
	total := args[4].GetFloat() * sr

	out := envelopeLevel(a.sampleClock, attack, decay, sustain, release, total)
	a.sampleClock += float32(info.BufferSize)
	return value.NewFloat(out)
}

// envelopeLevel evaluates an ADSR curve at clock, shared between Adsr's
// block-rate output and Padsr's sample-accurate output.
func envelopeLevel(clock, attack, decay, sustain, release, total float32) float32 {
	switch {
	case clock < attack:
		return clock / attack
	case clock-attack < decay:
		base := clock - attack
		level := 1.0 - (base / decay)
		return sustain + ((1.0 - sustain) * level)
	case clock >= attack+decay && clock < total-release:
		return sustain
	case clock >= total-release && clock-(total-release) < release:
		base := clock - (total - release)
		level := 1.0 - (base / release)
		return sustain * level
	default:
		return 0.0
	}
}
