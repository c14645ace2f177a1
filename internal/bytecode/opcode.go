// Package bytecode defines the instruction set executed by the
// interpreter (C6): a compact, stack-oriented, tagged-variant op stream
// with inlined operands.
package bytecode

import "github.com/ryanjeffares/ral-go/internal/value"

// Op identifies an instruction's kind.
type Op int

const (
	OpLoadConstant Op = iota
	OpLoadMember
	OpLoadLocal
	OpLoadArg
	OpAssignMember
	OpAssignLocal
	OpDeclareLocal
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpCallComponent
	OpOutput
	OpPrint
	OpPrintLn
	OpPrintEmpty
	OpPrintLnEmpty
)

// Instruction is one tagged bytecode op. Only the operand field relevant
// to Op is populated; the rest are zero.
type Instruction struct {
	Op       Op
	Constant value.Value
	Index    int // member/local/arg/component-slot index, depending on Op
}

func LoadConstant(v value.Value) Instruction { return Instruction{Op: OpLoadConstant, Constant: v} }
func LoadMember(i int) Instruction           { return Instruction{Op: OpLoadMember, Index: i} }
func LoadLocal(i int) Instruction            { return Instruction{Op: OpLoadLocal, Index: i} }
func LoadArg(i int) Instruction              { return Instruction{Op: OpLoadArg, Index: i} }
func AssignMember(i int) Instruction         { return Instruction{Op: OpAssignMember, Index: i} }
func AssignLocal(i int) Instruction          { return Instruction{Op: OpAssignLocal, Index: i} }
func DeclareLocal() Instruction              { return Instruction{Op: OpDeclareLocal} }
func Add() Instruction                       { return Instruction{Op: OpAdd} }
func Subtract() Instruction                  { return Instruction{Op: OpSubtract} }
func Multiply() Instruction                  { return Instruction{Op: OpMultiply} }
func Divide() Instruction                    { return Instruction{Op: OpDivide} }
func CallComponent(slot int) Instruction     { return Instruction{Op: OpCallComponent, Index: slot} }
func Output() Instruction                    { return Instruction{Op: OpOutput} }
func Print() Instruction                     { return Instruction{Op: OpPrint} }
func PrintLn() Instruction                   { return Instruction{Op: OpPrintLn} }
func PrintEmpty() Instruction                { return Instruction{Op: OpPrintEmpty} }
func PrintLnEmpty() Instruction              { return Instruction{Op: OpPrintLnEmpty} }
