// Package component implements the component library (C3): the set of
// built-in signal generators a compiled instrument can call, plus the
// static registry the compiler and instrument builder resolve call sites
// against.
package component

import "github.com/ryanjeffares/ral-go/internal/value"

// StreamInfo describes the audio block a Component.Process call is being
// asked to fill: the program-wide sample rate and channel count, and the
// current call's block length in frames.
type StreamInfo struct {
	SampleRate int
	Channels   int
	BufferSize int
}

// Component is one stateful instance of a built-in generator. A fresh
// instance is created per event activation (see instrument.NewComponentInstances)
// so that per-instance state — an oscillator's phase, an envelope's sample
// clock, a player's read position — is never shared between overlapping
// events of the same instrument.
type Component interface {
	// Process computes this call's output for the current block from args,
	// which are already type-checked against Meta.InputTypes in call order.
	Process(info StreamInfo, args []value.Value) value.Value
}

// Meta is a component's static description: the textual name it is
// called by in score-language source, its parameter types in declared
// order, its output type, and a factory that creates a fresh stateful
// instance.
type Meta struct {
	Name       string
	InputTypes []value.Type
	OutputType value.Type
	Factory    func() Component
}

// registry maps a component's textual name to its static metadata. Built
// once at package init and never mutated afterwards, so concurrent lookups
// need no locking.
var registry = map[string]Meta{}

func register(m Meta) {
	registry[m.Name] = m
}

// Lookup returns the metadata registered under name and whether it exists.
func Lookup(name string) (Meta, bool) {
	m, ok := registry[name]
	return m, ok
}

func init() {
	register(Meta{
		Name:       "Noise",
		InputTypes: []value.Type{value.Float},
		OutputType: value.Audio,
		Factory:    func() Component { return NewNoise() },
	})
	register(Meta{
		Name:       "Oscil",
		InputTypes: []value.Type{value.Float, value.Float, value.Int},
		OutputType: value.Audio,
		Factory:    func() Component { return NewOscil() },
	})
	register(Meta{
		Name:       "Mtof",
		InputTypes: []value.Type{value.Int},
		OutputType: value.Float,
		Factory:    func() Component { return NewMtof() },
	})
	register(Meta{
		Name:       "Adsr",
		InputTypes: []value.Type{value.Float, value.Float, value.Float, value.Float, value.Float},
		OutputType: value.Float,
		Factory:    func() Component { return NewAdsr() },
	})
	register(Meta{
		Name:       "Padsr",
		InputTypes: []value.Type{value.Float, value.Float, value.Float, value.Float, value.Float},
		OutputType: value.Audio,
		Factory:    func() Component { return NewPadsr() },
	})
	register(Meta{
		Name:       "WavPlayer",
		InputTypes: []value.Type{value.String},
		OutputType: value.Audio,
		Factory:    func() Component { return NewWavPlayer() },
	})
}
