package compiler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjeffares/ral-go/internal/compiler"
	"github.com/ryanjeffares/ral-go/internal/vm"
)

func TestCompileEmptyProgramProducesNoDiagnostics(t *testing.T) {
	t.Parallel()

	prog, diags := compiler.Compile("silence.ral", "instruments {}\nscore {}\n")
	require.False(t, diags.HadError())
	assert.Empty(t, prog.InstrumentOrder)
	assert.Empty(t, prog.ScoreEvents)
}

func TestCompileSineScenarioProducesOneInstrumentAndEvent(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	sine {
		amp: Float;
		perf() {
			output(Oscil(amp, 440.0, 0));
		}
	}
}

score {
	sine(0.0 1.0);
}
`
	prog, diags := compiler.Compile("sine.ral", src)
	require.False(t, diags.HadError(), diags.String())
	require.Len(t, prog.InstrumentOrder, 1)
	assert.Equal(t, "sine", prog.InstrumentOrder[0])

	instr := prog.Instruments["sine"]
	require.NotNil(t, instr)
	require.Len(t, instr.Members, 1)
	assert.Equal(t, "amp", instr.Members[0].Name)
	require.Len(t, instr.Perf.Components, 1)
	assert.Equal(t, "Oscil", instr.Perf.Components[0].Name)

	require.Len(t, prog.ScoreEvents, 1)
	ev := prog.ScoreEvents[0]
	assert.Equal(t, "sine", ev.InstrumentName)
	assert.InDelta(t, 0.0, ev.StartTime, 1e-9)
	assert.InDelta(t, 1.0, ev.Duration, 1e-9)
}

func TestCompileMtofScenarioPrintsFromInit(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		init() {
			println(Mtof(69));
		}
	}
}

score {
	t(0.0 0.0);
}
`
	prog, diags := compiler.Compile("mtof.ral", src)
	require.False(t, diags.HadError(), diags.String())

	var printed bytes.Buffer
	machine := vm.New(48000, &printed)
	for _, name := range prog.InstrumentOrder {
		machine.AddInstrument(prog.Instruments[name])
	}
	for _, ev := range prog.ScoreEvents {
		machine.AddScoreEvent(ev)
	}
	machine.Finalise()
	machine.GetNextBuffer(1, 16)
	assert.Equal(t, "440\n", printed.String())
}

func TestCompileOutputNonAudioIsTypeError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			output(1);
		}
	}
}
score {}
`
	_, diags := compiler.Compile("bad.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "Expected Audio for 'output' but got Int")
}

func TestCompileUnknownInstrumentInScoreIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {}
score {
	ghost(0.0 1.0);
}
`
	_, diags := compiler.Compile("ghost.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "no instrument named 'ghost'")
}

func TestCompileDuplicateMemberNameIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		amp: Float;
		amp: Float;
	}
}
score {}
`
	_, diags := compiler.Compile("dup.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "duplicate instrument member name")
}

func TestCompileUppercaseMemberNameIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		Amp: Float;
	}
}
score {}
`
	_, diags := compiler.Compile("upper.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "must not begin with a capital letter")
}

func TestCompileComponentArityMismatchIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			output(Oscil(0.25, 440.0));
		}
	}
}
score {}
`
	_, diags := compiler.Compile("arity.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "wrong number of arguments to 'Oscil'")
}

func TestCompileComponentArgTypeMismatchIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			output(Oscil(0.25, 440.0, 0.0));
		}
	}
}
score {}
`
	_, diags := compiler.Compile("argtype.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "argument type mismatch calling 'Oscil'")
}

func TestCompileUnknownComponentNameIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			output(Ghost(1));
		}
	}
}
score {}
`
	_, diags := compiler.Compile("ghostcomp.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "no component named 'Ghost'")
}

func TestCompileAudioParameterIsRejected(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf(sig: Audio) {
		}
	}
}
score {}
`
	_, diags := compiler.Compile("audioparam.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "Audio is not a valid parameter type")
}

func TestCompileInitArgsRequiredWhenInitTakesParams(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		init(freq: Float) {
		}
	}
}
score {
	t(0.0 1.0);
}
`
	_, diags := compiler.Compile("missinginit.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "init function for 't' takes arguments but no init call was given")
}

func TestCompileScoreEventWithInitAndPerfArgs(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		init(freq: Float) {
		}
		perf(amt: Int) {
		}
	}
}
score {
	t(0.0 1.0 init(440.0) perf(3));
}
`
	prog, diags := compiler.Compile("both.ral", src)
	require.False(t, diags.HadError(), diags.String())
	require.Len(t, prog.ScoreEvents, 1)
	ev := prog.ScoreEvents[0]
	require.Len(t, ev.InitArgs, 1)
	assert.Equal(t, float32(440.0), ev.InitArgs[0].GetFloat())
	require.Len(t, ev.PerfArgs, 1)
	assert.Equal(t, int64(3), ev.PerfArgs[0].GetInt())
}

func TestCompileLocalDeclarationTypeMismatchIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			local x: Int = 1.0;
		}
	}
}
score {}
`
	_, diags := compiler.Compile("localmismatch.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "type mismatch in local declaration for 'x'")
}

func TestCompileAssignmentToUnknownNameIsError(t *testing.T) {
	t.Parallel()

	src := `
instruments {
	t {
		perf() {
			ghost = 1;
		}
	}
}
score {}
`
	_, diags := compiler.Compile("unknownassign.ral", src)
	require.True(t, diags.HadError())
	assert.Contains(t, diags.String(), "no member variable or local named 'ghost'")
}

func TestCompileContinuesAfterTopLevelErrorToSurfaceMoreDiagnostics(t *testing.T) {
	t.Parallel()

	src := `
nonsense
instruments {
	t {
		Amp: Float;
	}
}
`
	_, diags := compiler.Compile("recover.ral", src)
	require.True(t, diags.HadError())
	all := diags.All()
	require.GreaterOrEqual(t, len(all), 2)
	assert.Contains(t, diags.String(), "expected 'instruments' or 'score' at top level")
	assert.Contains(t, diags.String(), "must not begin with a capital letter")
}
