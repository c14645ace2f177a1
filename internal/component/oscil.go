package component

import (
	"log/slog"
	"math"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// OscilShape selects Oscil's waveform, matching the integer literals a
// score program passes as the shape argument.
type OscilShape int64

const (
	OscilSine OscilShape = iota
	OscilSaw
	OscilSquare
	OscilTriangle
)

func (s OscilShape) valid() bool {
	return s >= OscilSine && s <= OscilTriangle
}

// Oscil is a phase-accumulating oscillator. Its phase persists across
// blocks so consecutive calls produce a continuous waveform.
type Oscil struct {
	phase float32
}

// NewOscil creates an Oscil instance with phase reset to zero.
func NewOscil() *Oscil {
	return &Oscil{}
}

// Process fills one block from the oscillator's running phase. An
// out-of-range shape logs a diagnostic and produces silence rather than
// panicking, since the shape argument may be computed at runtime and
// can't always be checked at compile time.
func (o *Oscil) Process(info StreamInfo, args []value.Value) value.Value {
	buf := audiobuffer.New(info.Channels, info.BufferSize)

	amp := args[0].GetFloat()
	freq := args[1].GetFloat()
	shape := OscilShape(args[2].GetInt())

	if !shape.valid() {
		slog.Error("oscil: unknown waveform shape", "shape", int64(shape))
		v := value.NewAudio(buf)
		buf.Release()
		return v
	}

	sr := float32(info.SampleRate)

	for f := 0; f < info.BufferSize; f++ {
		var out float32
		switch shape {
		case OscilSine:
			if o.phase >= 1.0 {
				o.phase = 0.0
			}
			out = float32(math.Sin(float64(o.phase) * math.Pi * 2))
			o.phase += 1.0 / (sr / freq)
		case OscilSaw:
			if o.phase >= 1.0 {
				o.phase = -1.0
			}
			out = o.phase
			o.phase += 1.0 / (sr / freq) * 2.0
		case OscilSquare:
			if o.phase >= 1.0 {
				o.phase = 0.0
			}
			o.phase += 1.0 / (sr / freq)
			if o.phase < 0.5 {
				out = -1.0
			} else {
				out = 1.0
			}
		case OscilTriangle:
			if o.phase >= 1.0 {
				o.phase = 0.0
			}
			o.phase += 1.0 / (sr / freq)
			if o.phase < 0.5 {
				out = (o.phase - 0.25) * 4.0
			} else {
				out = ((1.0 - o.phase) - 0.25) * 4.0
			}
		}

		out *= amp
		for c := 0; c < info.Channels; c++ {
			buf.Set(c, f, out)
		}
	}

	v := value.NewAudio(buf)
	buf.Release()
	return v
}
