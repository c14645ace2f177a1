package component

import (
	"math"

	"github.com/ryanjeffares/ral-go/internal/value"
)

// Mtof converts a MIDI note number to frequency in Hz. It is stateless —
// every call is a pure function of its argument.
type Mtof struct{}

// NewMtof creates an Mtof instance.
func NewMtof() *Mtof { return &Mtof{} }

// Process computes 440 * 2^((midi-69)/12), ignoring info since Mtof does
// not produce a per-sample signal.
func (Mtof) Process(_ StreamInfo, args []value.Value) value.Value {
	midi := float64(args[0].GetInt())
	freq := math.Pow(2, (midi-69)/12) * 440
	return value.NewFloat(float32(freq))
}
