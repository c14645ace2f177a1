// Package event implements the event instance (C5): a single running
// activation of an instrument, owning its member storage, its two
// functions' per-site component state, and the elapsed-sample counters
// that govern its lifecycle.
package event

import (
	"io"

	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/instrument"
	"github.com/ryanjeffares/ral-go/internal/interp"
	"github.com/ryanjeffares/ral-go/internal/value"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
)

// Instance is one activation of an instrument created when the scheduler
// fires a score event. Its member storage and component instances are
// never shared with any other Instance, even another activation of the
// same instrument, so concurrent/overlapping events never observe each
// other's state.
type Instance struct {
	instrument *instrument.Instrument

	members []value.Value

	initArgs []value.Value
	perfArgs []value.Value

	initComponents []component.Component
	perfComponents []component.Component

	durationSamples int64
	sampleCounter   int64

	initRan bool
}

// New creates an Instance for instr with the given frozen argument lists
// and duration, with member storage initialised to each member's type
// default and a fresh component instance per call site in both init and
// perf.
func New(instr *instrument.Instrument, initArgs, perfArgs []value.Value, durationSamples int64) *Instance {
	members := make([]value.Value, len(instr.Members))
	for i, m := range instr.Members {
		members[i] = value.Default(m.Type)
	}

	return &Instance{
		instrument:      instr,
		members:         members,
		initArgs:        initArgs,
		perfArgs:        perfArgs,
		initComponents:  instrument.NewComponentInstances(instr.Init),
		perfComponents:  instrument.NewComponentInstances(instr.Perf),
		durationSamples: durationSamples,
	}
}

// RunInit executes the instrument's init routine exactly once, during the
// block that contains this instance's start sample and strictly before
// its first RunPerf call. Calling it more than once is a caller bug.
func (inst *Instance) RunInit(info component.StreamInfo, output *audiobuffer.Buffer, stdout io.Writer) {
	if inst.initRan {
		panic("event: RunInit called more than once")
	}
	inst.initRan = true

	ctx := &interp.Context{
		Members:    inst.members,
		Args:       inst.initArgs,
		Components: inst.initComponents,
		Info:       info,
		Output:     output,
		Stdout:     stdout,
	}
	interp.Run(&inst.instrument.Init, ctx)
}

// RunPerf executes one block's worth of the instrument's perf routine and
// advances the instance's sample counter by info.BufferSize. It reports
// whether the instance should be retired after this call, per the
// documented retirement rule: retire on the first call for which the
// post-call counter reaches or exceeds the instance's duration.
func (inst *Instance) RunPerf(info component.StreamInfo, output *audiobuffer.Buffer, stdout io.Writer) (done bool) {
	ctx := &interp.Context{
		Members:    inst.members,
		Args:       inst.perfArgs,
		Components: inst.perfComponents,
		Info:       info,
		Output:     output,
		Stdout:     stdout,
	}
	interp.Run(&inst.instrument.Perf, ctx)

	inst.sampleCounter += int64(info.BufferSize)
	return inst.sampleCounter >= inst.durationSamples
}
