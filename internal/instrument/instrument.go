// Package instrument implements Instrument (C4): typed symbol tables and
// frozen bytecode for an instrument's init/perf routines, plus its
// member-variable layout.
package instrument

import (
	"github.com/ryanjeffares/ral-go/internal/bytecode"
	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// Member describes one instrument member variable, addressed by index.
type Member struct {
	Name string
	Type value.Type
}

// Param describes one function parameter. Audio parameters are rejected
// at compile time — see the compiler's Audio-as-parameter diagnostic.
type Param struct {
	Name string
	Type value.Type
}

// Local describes one function local, in source declaration order; the
// compiler emits DeclareLocal once per local statement in that same
// order, so an index into Locals is stable without a runtime symbol
// table.
type Local struct {
	Name string
	Type value.Type
}

// ComponentSlot is one textual component call site within a function. Its
// persistent process() state lives in a fresh component.Component created
// per event instance from Meta's factory — never shared between
// overlapping events.
type ComponentSlot struct {
	Name string
	Meta component.Meta
}

// Function is one compiled routine (init or perf): its parameters,
// locals, component call sites, and frozen bytecode.
type Function struct {
	Params     []Param
	Locals     []Local
	Components []ComponentSlot
	Code       []bytecode.Instruction
}

// Instrument is the frozen, long-lived artifact produced by the
// compiler: a unique name, ordered members, and two compiled functions.
// Once finalised (see vm.VM.Finalise) this value is shared read-only by
// every event instance created from it.
type Instrument struct {
	Name    string
	Members []Member
	Init    Function
	Perf    Function
}

// MemberIndex returns the index of the member named name, if any.
func (instr *Instrument) MemberIndex(name string) (int, bool) {
	for i, m := range instr.Members {
		if m.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ParamIndex returns the index of the parameter named name, if any.
func (fn *Function) ParamIndex(name string) (int, bool) {
	for i, p := range fn.Params {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// LocalIndex returns the index of the local named name, if any.
func (fn *Function) LocalIndex(name string) (int, bool) {
	for i, l := range fn.Locals {
		if l.Name == name {
			return i, true
		}
	}
	return 0, false
}

// NameInUse reports whether name already names a member of instr or a
// parameter/local of fn, enforcing the namespace rule that members,
// parameters, and locals are pairwise disjoint by name within a function.
func NameInUse(instr *Instrument, fn *Function, name string) bool {
	if _, ok := instr.MemberIndex(name); ok {
		return true
	}
	if _, ok := fn.ParamIndex(name); ok {
		return true
	}
	if _, ok := fn.LocalIndex(name); ok {
		return true
	}
	return false
}

// NewComponentInstances returns one fresh component.Component per slot in
// fn, created from each slot's factory. Called once per event instance so
// stateful components (Oscil's phase, WavPlayer's read position) are
// isolated between overlapping events of the same instrument.
func NewComponentInstances(fn Function) []component.Component {
	instances := make([]component.Component, len(fn.Components))
	for i, slot := range fn.Components {
		instances[i] = slot.Meta.Factory()
	}
	return instances
}
