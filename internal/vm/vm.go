// Package vm implements the VM / scheduler (C9): ownership of a
// program's instruments and score, timing resolution against a sample
// rate, and the block-production loop that activates and retires event
// instances.
package vm

import (
	"io"
	"math"
	"os"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/bytecode"
	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/event"
	"github.com/ryanjeffares/ral-go/internal/instrument"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// ScoreEvent is one timed activation: which instrument to instantiate,
// when, for how long, and with what arguments to its init/perf routines.
// startSample is computed by Finalise and is meaningless beforehand.
type ScoreEvent struct {
	InstrumentName string
	StartTime      float64
	Duration       float64
	InitArgs       []value.Value
	PerfArgs       []value.Value

	startSample     int64
	durationSamples int64
}

// VM owns every instrument and score event in a compiled program. It is
// built by the compiler, finalised once, and then driven block by block
// by a C10 output sink.
type VM struct {
	instrumentOrder []string
	instruments     map[string]*instrument.Instrument

	scoreEvents []*ScoreEvent

	sampleRate int

	sampleCounter int64
	schedule      map[int64][]*ScoreEvent
	active        []*event.Instance

	stdout io.Writer

	finalised bool
}

// New creates an empty VM for a program compiled against sampleRate. If
// stdout is nil, os.Stdout is used for print/println.
func New(sampleRate int, stdout io.Writer) *VM {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &VM{
		instruments: make(map[string]*instrument.Instrument),
		sampleRate:  sampleRate,
		stdout:      stdout,
	}
}

// AddInstrument registers instr under its name in insertion order. Adding
// a second instrument under the same name overwrites the first — the
// compiler is responsible for rejecting duplicate instrument names before
// this is ever reached.
func (vm *VM) AddInstrument(instr *instrument.Instrument) {
	if _, exists := vm.instruments[instr.Name]; !exists {
		vm.instrumentOrder = append(vm.instrumentOrder, instr.Name)
	}
	vm.instruments[instr.Name] = instr
}

// Instrument looks up a registered instrument by name.
func (vm *VM) Instrument(name string) (*instrument.Instrument, bool) {
	i, ok := vm.instruments[name]
	return i, ok
}

// AddScoreEvent appends ev to the program's score, in source order.
func (vm *VM) AddScoreEvent(ev *ScoreEvent) {
	vm.scoreEvents = append(vm.scoreEvents, ev)
}

// Finalise freezes the score's timing against the VM's sample rate,
// bucketing every event by its start sample, and returns the program's
// length in seconds (the latest start_time + duration across the score).
// It must be called exactly once, before the first call to GetNextBuffer.
func (vm *VM) Finalise() float64 {
	if vm.finalised {
		panic("vm: Finalise called more than once")
	}
	vm.finalised = true

	vm.schedule = make(map[int64][]*ScoreEvent, len(vm.scoreEvents))
	var programLength float64
	for _, ev := range vm.scoreEvents {
		ev.startSample = int64(math.Floor(ev.StartTime * float64(vm.sampleRate)))
		ev.durationSamples = int64(math.Floor(ev.Duration * float64(vm.sampleRate)))
		vm.schedule[ev.startSample] = append(vm.schedule[ev.startSample], ev)

		if end := ev.StartTime + ev.Duration; end > programLength {
			programLength = end
		}
	}

	return programLength
}

// PreloadWavPaths decodes every WavPlayer call site whose path argument is
// a literal string constant, ahead of time, so device-mode playback never
// pays a first-use disk-read inside the audio callback. Call sites whose
// path is computed at runtime (not a literal immediately before the
// CallComponent instruction) cannot be preloaded this way and still pay
// the cost on first use.
func (vm *VM) PreloadWavPaths() {
	for _, name := range vm.instrumentOrder {
		instr := vm.instruments[name]
		preloadFunction(instr.Init)
		preloadFunction(instr.Perf)
	}
}

func preloadFunction(fn instrument.Function) {
	for i, ins := range fn.Code {
		if ins.Op != bytecode.OpCallComponent {
			continue
		}
		if ins.Index >= len(fn.Components) || fn.Components[ins.Index].Meta.Name != "WavPlayer" {
			continue
		}
		if i == 0 {
			continue
		}
		prev := fn.Code[i-1]
		if prev.Op != bytecode.OpLoadConstant || prev.Constant.Type() != value.String {
			continue
		}
		component.PreloadWav(prev.Constant.GetString())
	}
}

// GetNextBuffer produces one block of shape (channels, bufferSize): events
// scheduled to start within this block are instantiated and their init
// routine run, every currently active instance runs one perf call in
// insertion order, retired instances are dropped, and the mixed result is
// returned. Must only be called after Finalise.
func (vm *VM) GetNextBuffer(channels, bufferSize int) *audiobuffer.Buffer {
	if !vm.finalised {
		panic("vm: GetNextBuffer called before Finalise")
	}

	output := audiobuffer.New(channels, bufferSize)
	info := component.StreamInfo{SampleRate: vm.sampleRate, Channels: channels, BufferSize: bufferSize}

	for i := 0; i < bufferSize; i++ {
		if evs, ok := vm.schedule[vm.sampleCounter]; ok {
			for _, ev := range evs {
				instr, ok := vm.instruments[ev.InstrumentName]
				if !ok {
					continue
				}
				inst := event.New(instr, ev.InitArgs, ev.PerfArgs, ev.durationSamples)
				inst.RunInit(info, output, vm.stdout)
				// A zero-duration event runs its init and nothing else: it
				// is already "finished" before its first perf would fire,
				// so it never joins the active list.
				if ev.durationSamples > 0 {
					vm.active = append(vm.active, inst)
				}
			}
		}
		vm.sampleCounter++
	}

	remaining := vm.active[:0]
	for _, inst := range vm.active {
		if !inst.RunPerf(info, output, vm.stdout) {
			remaining = append(remaining, inst)
		}
	}
	vm.active = remaining

	return output
}

// SampleCounter reports the total number of samples produced so far.
func (vm *VM) SampleCounter() int64 { return vm.sampleCounter }
