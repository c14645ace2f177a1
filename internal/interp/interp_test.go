package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/bytecode"
	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/instrument"
	"github.com/ryanjeffares/ral-go/internal/interp"
	"github.com/ryanjeffares/ral-go/internal/value"
)

func TestRunPrintLnFormatsLoadedConstant(t *testing.T) {
	t.Parallel()

	fn := &instrument.Function{
		Code: []bytecode.Instruction{
			bytecode.LoadConstant(value.NewInt(42)),
			bytecode.PrintLn(),
		},
	}

	var out bytes.Buffer
	ctx := &interp.Context{Stdout: &out}
	interp.Run(fn, ctx)

	assert.Equal(t, "42\n", out.String())
}

func TestRunAssignMemberAndLoadMember(t *testing.T) {
	t.Parallel()

	fn := &instrument.Function{
		Code: []bytecode.Instruction{
			bytecode.LoadConstant(value.NewInt(5)),
			bytecode.AssignMember(0),
			bytecode.LoadMember(0),
			bytecode.LoadConstant(value.NewInt(1)),
			bytecode.Add(),
			bytecode.AssignMember(0),
		},
	}

	members := []value.Value{value.NewInt(0)}
	ctx := &interp.Context{Members: members, Stdout: &bytes.Buffer{}}
	interp.Run(fn, ctx)

	assert.Equal(t, int64(6), members[0].GetInt())
}

func TestRunDeclareLocalThenLoad(t *testing.T) {
	t.Parallel()

	fn := &instrument.Function{
		Locals: []instrument.Local{{Name: "x", Type: value.Int}},
		Code: []bytecode.Instruction{
			bytecode.LoadConstant(value.NewInt(10)),
			bytecode.DeclareLocal(),
			bytecode.LoadLocal(0),
			bytecode.PrintLn(),
		},
	}

	var out bytes.Buffer
	interp.Run(fn, &interp.Context{Stdout: &out})
	assert.Equal(t, "10\n", out.String())
}

func TestRunCallComponentAndOutputMixesIntoBuffer(t *testing.T) {
	t.Parallel()

	meta, ok := component.Lookup("Oscil")
	require.True(t, ok)

	fn := &instrument.Function{
		Components: []instrument.ComponentSlot{{Name: "Oscil", Meta: meta}},
		Code: []bytecode.Instruction{
			bytecode.LoadConstant(value.NewFloat(1.0)),   // amp
			bytecode.LoadConstant(value.NewFloat(440.0)), // freq
			bytecode.LoadConstant(value.NewInt(0)),       // shape
			bytecode.CallComponent(0),
			bytecode.Output(),
		},
	}

	info := component.StreamInfo{SampleRate: 48000, Channels: 2, BufferSize: 16}
	output := audiobuffer.New(info.Channels, info.BufferSize)
	ctx := &interp.Context{
		Components: instrument.NewComponentInstances(*fn),
		Info:       info,
		Output:     output,
		Stdout:     &bytes.Buffer{},
	}

	interp.Run(fn, ctx)

	var nonZero bool
	for f := 0; f < output.Frames(); f++ {
		if output.Get(0, f) != 0 {
			nonZero = true
		}
		assert.Equal(t, output.Get(0, f), output.Get(1, f))
	}
	assert.True(t, nonZero)
}

func TestRunPanicsOnStackUnderflow(t *testing.T) {
	t.Parallel()

	fn := &instrument.Function{Code: []bytecode.Instruction{bytecode.PrintLn()}}
	assert.Panics(t, func() { interp.Run(fn, &interp.Context{Stdout: &bytes.Buffer{}}) })
}
