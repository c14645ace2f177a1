// Package interp implements the interpreter (C6): a stack machine that
// executes one compiled Function's bytecode over a set of member/local/
// arg storage, a per-event component instance list, and a shared output
// buffer.
package interp

import (
	"fmt"
	"io"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/bytecode"
	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/instrument"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// Context bundles everything one Run call needs besides the bytecode
// itself: the event instance's storage, its per-site component instances,
// the block's stream info, and the shared output buffer that Output
// mixes into.
type Context struct {
	Members    []value.Value
	Args       []value.Value
	Components []component.Component
	Info       component.StreamInfo
	Output     *audiobuffer.Buffer
	Stdout     io.Writer
}

// Run executes fn's bytecode once against ctx. The operand stack is local
// to this call: it starts empty and a non-empty residue at the end is a
// compiler bug, not a user error, so it panics rather than returning an
// error — consistent with the documented split between user-program
// errors (caught at compile time) and internal invariant violations.
func Run(fn *instrument.Function, ctx *Context) {
	stack := make([]value.Value, 0, 8)
	locals := make([]value.Value, 0, len(fn.Locals))

	push := func(v value.Value) { stack = append(stack, v) }
	pop := func() value.Value {
		if len(stack) == 0 {
			panic("interp: stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, ins := range fn.Code {
		switch ins.Op {
		case bytecode.OpLoadConstant:
			push(ins.Constant)
		case bytecode.OpLoadMember:
			push(ctx.Members[ins.Index])
		case bytecode.OpLoadLocal:
			push(locals[ins.Index])
		case bytecode.OpLoadArg:
			push(ctx.Args[ins.Index])
		case bytecode.OpAssignMember:
			ctx.Members[ins.Index] = pop()
		case bytecode.OpAssignLocal:
			locals[ins.Index] = pop()
		case bytecode.OpDeclareLocal:
			locals = append(locals, pop())
		case bytecode.OpAdd:
			b, a := pop(), pop()
			push(value.Add(a, b))
		case bytecode.OpSubtract:
			b, a := pop(), pop()
			push(value.Subtract(a, b))
		case bytecode.OpMultiply:
			b, a := pop(), pop()
			push(value.Multiply(a, b))
		case bytecode.OpDivide:
			b, a := pop(), pop()
			push(value.Divide(a, b))
		case bytecode.OpCallComponent:
			slot := fn.Components[ins.Index]
			n := len(slot.Meta.InputTypes)
			args := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = pop()
			}
			push(ctx.Components[ins.Index].Process(ctx.Info, args))
		case bytecode.OpOutput:
			v := pop()
			ctx.Output.MixInto(v.GetAudio())
		case bytecode.OpPrint:
			fmt.Fprint(ctx.Stdout, pop().Format())
		case bytecode.OpPrintLn:
			fmt.Fprintln(ctx.Stdout, pop().Format())
		case bytecode.OpPrintEmpty:
			fmt.Fprint(ctx.Stdout, "\t")
		case bytecode.OpPrintLnEmpty:
			fmt.Fprintln(ctx.Stdout)
		default:
			panic(fmt.Sprintf("interp: unhandled opcode %d", ins.Op))
		}
	}

	if len(stack) != 0 {
		panic("interp: non-empty operand stack at function exit")
	}
}
