// Package compiler implements the compiler (C8): a recursive-descent
// parser and type checker that turns a token stream into instrument
// bytecode and a frozen score event list, resolving component calls
// against the registry in C3 as it goes.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/ryanjeffares/ral-go/internal/bytecode"
	"github.com/ryanjeffares/ral-go/internal/component"
	"github.com/ryanjeffares/ral-go/internal/diag"
	"github.com/ryanjeffares/ral-go/internal/instrument"
	"github.com/ryanjeffares/ral-go/internal/lexer"
	"github.com/ryanjeffares/ral-go/internal/value"
	"github.com/ryanjeffares/ral-go/internal/vm"
)

// context identifies which production is currently being parsed, mirroring
// what determines where an emitted op lands and which namespace an
// identifier resolves against.
type context int

const (
	ctxTopLevel context = iota
	ctxInstrumentsBlock
	ctxInstrument
	ctxInitFunc
	ctxPerfFunc
	ctxScoreBlock
)

// Program is the compiler's output: every instrument declared in the
// source, in declaration order, and the score events to schedule.
type Program struct {
	Instruments     map[string]*instrument.Instrument
	InstrumentOrder []string
	ScoreEvents     []*vm.ScoreEvent
}

type parser struct {
	lex      *lexer.Lexer
	diags    *diag.Bag
	previous lexer.Token
	current  lexer.Token
	hadError bool
	context  []context

	program *Program

	curInstrument *instrument.Instrument
}

// Compile parses and type-checks source (whose path is used only for
// diagnostic messages) and returns the resulting Program together with
// every diagnostic collected along the way. If any diagnostic is an
// error, the Program is incomplete and must not be run.
func Compile(filePath, source string) (*Program, *diag.Bag) {
	p := &parser{
		lex:   lexer.New(source),
		diags: diag.NewBag(filePath, source),
		program: &Program{
			Instruments: make(map[string]*instrument.Instrument),
		},
	}
	p.pushContext(ctxTopLevel)
	p.advance()

	for {
		switch {
		case p.matchToken(lexer.TokenInstruments):
			p.instrumentsBlock()
		case p.matchToken(lexer.TokenScore):
			p.scoreBlock()
		case p.matchToken(lexer.TokenEndOfFile):
			return p.program, p.diags
		default:
			p.errorAtCurrent("expected 'instruments' or 'score' at top level")
			p.advance()
		}
	}
}

// --- token plumbing ---

func (p *parser) advance() {
	p.previous = p.current
	p.current = p.lex.Next()
}

func (p *parser) checkToken(t lexer.TokenType) bool {
	return p.current.Type == t
}

func (p *parser) matchToken(t lexer.TokenType) bool {
	if p.checkToken(t) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) consume(t lexer.TokenType, message string) bool {
	if p.checkToken(t) {
		p.advance()
		return true
	}
	p.errorAtCurrent(message)
	return false
}

func (p *parser) pushContext(c context) { p.context = append(p.context, c) }
func (p *parser) popContext()           { p.context = p.context[:len(p.context)-1] }
func (p *parser) currentContext() context {
	return p.context[len(p.context)-1]
}

func (p *parser) errorAtCurrent(format string) { p.errorAt(p.current, format) }
func (p *parser) errorAtPrevious(format string) { p.errorAt(p.previous, format) }

func (p *parser) errorAt(tok lexer.Token, message string) {
	p.hadError = true
	p.diags.Add(tok.Line, tok.Col, "%s", message)
}

// curFunction returns the Function currently being compiled: Init or Perf
// of curInstrument, according to the innermost InitFunc/PerfFunc context.
func (p *parser) curFunction() *instrument.Function {
	switch p.currentContext() {
	case ctxInitFunc:
		return &p.curInstrument.Init
	case ctxPerfFunc:
		return &p.curInstrument.Perf
	default:
		panic("compiler: curFunction called outside a function context")
	}
}

func (p *parser) emit(ins bytecode.Instruction) {
	fn := p.curFunction()
	fn.Code = append(fn.Code, ins)
}

// --- instruments block ---

func (p *parser) instrumentsBlock() {
	p.pushContext(ctxInstrumentsBlock)
	defer p.popContext()
	if !p.consume(lexer.TokenBraceOpen, "expected '{'") {
		return
	}

	for {
		switch {
		case p.matchToken(lexer.TokenIdentifier):
			p.instrument()
		case p.matchToken(lexer.TokenBraceClose):
			return
		default:
			p.errorAtCurrent("expected instrument name or '}'")
			return
		}
		if p.hadError {
			return
		}
	}
}

func (p *parser) instrument() {
	p.pushContext(ctxInstrument)
	defer p.popContext()

	name := p.previous.Text
	if _, exists := p.program.Instruments[name]; exists {
		p.errorAtPrevious("duplicate instrument name '" + name + "'")
		return
	}
	instr := &instrument.Instrument{Name: name}
	p.curInstrument = instr

	if !p.consume(lexer.TokenBraceOpen, "expected '{'") {
		return
	}

	for {
		switch {
		case p.matchToken(lexer.TokenIdentifier):
			p.memberDeclaration(instr)
		case p.matchToken(lexer.TokenInit):
			p.pushContext(ctxInitFunc)
			p.function(instr)
			p.popContext()
		case p.matchToken(lexer.TokenPerf):
			p.pushContext(ctxPerfFunc)
			p.function(instr)
			p.popContext()
		case p.matchToken(lexer.TokenBraceClose):
			if !p.hadError {
				if _, exists := p.program.Instruments[name]; !exists {
					p.program.InstrumentOrder = append(p.program.InstrumentOrder, name)
				}
				p.program.Instruments[name] = instr
			}
			return
		default:
			p.errorAtCurrent("expected member variable, 'init', or 'perf'")
			return
		}
		if p.hadError {
			return
		}
	}
}

func (p *parser) memberDeclaration(instr *instrument.Instrument) {
	name := p.previous.Text
	if isUpper(name) {
		p.errorAtPrevious("member variable names must not begin with a capital letter")
		return
	}
	if _, exists := instr.MemberIndex(name); exists {
		p.errorAtPrevious("duplicate instrument member name")
		return
	}

	if !p.consume(lexer.TokenColon, "expected ':'") {
		return
	}
	if !p.current.Type.IsTypeIdent() {
		p.errorAtCurrent("expected type identifier")
		return
	}
	typ := typeFromToken(p.current.Type)
	p.advance()
	instr.Members = append(instr.Members, instrument.Member{Name: name, Type: typ})
	p.consume(lexer.TokenSemicolon, "expected ';'")
}

// --- functions ---

func (p *parser) function(instr *instrument.Instrument) {
	fn := p.curFunction()

	if p.matchToken(lexer.TokenParenOpen) {
	paramsLoop:
		for {
			switch {
			case p.matchToken(lexer.TokenIdentifier):
				paramName := p.previous.Text
				if isUpper(paramName) {
					p.errorAtPrevious("parameter names must not begin with a capital letter")
					return
				}
				if !p.consume(lexer.TokenColon, "expected ':'") {
					return
				}
				if !p.current.Type.IsTypeIdent() {
					p.errorAtCurrent("expected type identifier")
					return
				}
				if p.current.Type == lexer.TokenAudioType {
					p.errorAtCurrent("Audio is not a valid parameter type")
					return
				}
				typ := typeFromToken(p.current.Type)
				p.advance()
				if instrument.NameInUse(instr, fn, paramName) {
					p.errorAtPrevious("a member variable or parameter with the same name already exists")
					return
				}
				fn.Params = append(fn.Params, instrument.Param{Name: paramName, Type: typ})

				if !p.checkToken(lexer.TokenParenClose) {
					if !p.matchToken(lexer.TokenComma) {
						p.errorAtCurrent("expected ','")
						return
					}
				}
			case p.matchToken(lexer.TokenParenClose):
				break paramsLoop
			default:
				p.errorAtCurrent("expected parameter name or ')'")
				return
			}
			if p.hadError {
				return
			}
		}
	}

	if !p.consume(lexer.TokenBraceOpen, "expected '{'") {
		return
	}

	for {
		switch {
		case p.matchToken(lexer.TokenLocal):
			p.localDeclaration(instr, fn)
		case p.matchToken(lexer.TokenBraceClose):
			return
		default:
			p.statement(instr, fn)
		}
		if p.hadError {
			return
		}
	}
}

func (p *parser) localDeclaration(instr *instrument.Instrument, fn *instrument.Function) {
	if !p.consume(lexer.TokenIdentifier, "expected identifier") {
		return
	}
	name := p.previous.Text
	if isUpper(name) {
		p.errorAtPrevious("local names must not begin with a capital letter")
		return
	}
	if !p.consume(lexer.TokenColon, "expected ':'") {
		return
	}
	if !p.current.Type.IsTypeIdent() {
		p.errorAtCurrent("expected type identifier")
		return
	}
	typ := typeFromToken(p.current.Type)
	p.advance()

	if instrument.NameInUse(instr, fn, name) {
		p.errorAtPrevious("a member variable, parameter, or local with the same name already exists")
		return
	}

	if !p.consume(lexer.TokenEqual, "expected '='") {
		return
	}
	exprType, ok := p.expression(instr, fn)
	if !ok {
		return
	}
	if exprType != typ {
		p.errorAtPrevious("type mismatch in local declaration for '" + name + "'")
		return
	}

	fn.Locals = append(fn.Locals, instrument.Local{Name: name, Type: typ})
	p.emit(bytecode.DeclareLocal())
	p.consume(lexer.TokenSemicolon, "expected ';'")
}

func (p *parser) statement(instr *instrument.Instrument, fn *instrument.Function) {
	switch {
	case p.matchToken(lexer.TokenPrint):
		if !p.consume(lexer.TokenParenOpen, "expected '('") {
			return
		}
		if p.matchToken(lexer.TokenParenClose) {
			p.emit(bytecode.PrintEmpty())
		} else {
			if _, ok := p.expression(instr, fn); !ok {
				return
			}
			p.emit(bytecode.Print())
			p.consume(lexer.TokenParenClose, "expected ')'")
		}
	case p.matchToken(lexer.TokenPrintLn):
		if !p.consume(lexer.TokenParenOpen, "expected '('") {
			return
		}
		if p.matchToken(lexer.TokenParenClose) {
			p.emit(bytecode.PrintLnEmpty())
		} else {
			if _, ok := p.expression(instr, fn); !ok {
				return
			}
			p.emit(bytecode.PrintLn())
			p.consume(lexer.TokenParenClose, "expected ')'")
		}
	case p.matchToken(lexer.TokenOutput):
		if !p.consume(lexer.TokenParenOpen, "expected '('") {
			return
		}
		exprType, ok := p.expression(instr, fn)
		if !ok {
			return
		}
		if exprType != value.Audio {
			p.errorAtPrevious(fmt.Sprintf("Expected Audio for 'output' but got %s", exprType))
			return
		}
		p.emit(bytecode.Output())
		p.consume(lexer.TokenParenClose, "expected ')'")
	case p.matchToken(lexer.TokenIdentifier):
		p.assignmentStatement(instr, fn)
	default:
		p.errorAtCurrent("expected statement")
		return
	}

	p.consume(lexer.TokenSemicolon, "expected ';'")
}

func (p *parser) assignmentStatement(instr *instrument.Instrument, fn *instrument.Function) {
	name := p.previous.Text

	if index, ok := instr.MemberIndex(name); ok {
		if !p.consume(lexer.TokenEqual, "expected '='") {
			return
		}
		exprType, ok := p.expression(instr, fn)
		if !ok {
			return
		}
		if exprType != instr.Members[index].Type {
			p.errorAtPrevious("type mismatch assigning to member '" + name + "'")
			return
		}
		p.emit(bytecode.AssignMember(index))
		return
	}

	if index, ok := fn.LocalIndex(name); ok {
		if !p.consume(lexer.TokenEqual, "expected '='") {
			return
		}
		exprType, ok := p.expression(instr, fn)
		if !ok {
			return
		}
		if exprType != fn.Locals[index].Type {
			p.errorAtPrevious("type mismatch assigning to local '" + name + "'")
			return
		}
		p.emit(bytecode.AssignLocal(index))
		return
	}

	p.errorAtPrevious("no member variable or local named '" + name + "'")
}

// --- expressions ---

func (p *parser) expression(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	return p.term(instr, fn)
}

func (p *parser) term(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	lhs, ok := p.factor(instr, fn)
	if !ok {
		return 0, false
	}

	for {
		switch {
		case p.matchToken(lexer.TokenPlus):
			rhs, ok := p.factor(instr, fn)
			if !ok {
				return 0, false
			}
			result, legal := value.ResultType(lhs, rhs)
			if !legal {
				p.errorAtPrevious("cannot add these types")
				return 0, false
			}
			p.emit(bytecode.Add())
			lhs = result
		case p.matchToken(lexer.TokenMinus):
			rhs, ok := p.factor(instr, fn)
			if !ok {
				return 0, false
			}
			result, legal := value.ResultType(lhs, rhs)
			if !legal {
				p.errorAtPrevious("cannot subtract these types")
				return 0, false
			}
			p.emit(bytecode.Subtract())
			lhs = result
		default:
			return lhs, true
		}
	}
}

func (p *parser) factor(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	lhs, ok := p.call(instr, fn)
	if !ok {
		return 0, false
	}

	for {
		switch {
		case p.matchToken(lexer.TokenStar):
			rhs, ok := p.call(instr, fn)
			if !ok {
				return 0, false
			}
			result, legal := value.ResultType(lhs, rhs)
			if !legal {
				p.errorAtPrevious("cannot multiply these types")
				return 0, false
			}
			p.emit(bytecode.Multiply())
			lhs = result
		case p.matchToken(lexer.TokenSlash):
			rhs, ok := p.call(instr, fn)
			if !ok {
				return 0, false
			}
			result, legal := value.ResultType(lhs, rhs)
			if !legal {
				p.errorAtPrevious("cannot divide these types")
				return 0, false
			}
			p.emit(bytecode.Divide())
			lhs = result
		default:
			return lhs, true
		}
	}
}

func (p *parser) call(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	return p.primary(instr, fn)
}

func (p *parser) primary(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	switch {
	case p.matchToken(lexer.TokenInteger):
		n, err := strconv.ParseInt(p.previous.Text, 10, 64)
		if err != nil {
			p.errorAtPrevious("invalid integer literal")
			return 0, false
		}
		p.emit(bytecode.LoadConstant(value.NewInt(n)))
		return value.Int, true
	case p.matchToken(lexer.TokenFloat):
		f, err := strconv.ParseFloat(p.previous.Text, 32)
		if err != nil {
			p.errorAtPrevious("invalid float literal")
			return 0, false
		}
		p.emit(bytecode.LoadConstant(value.NewFloat(float32(f))))
		return value.Float, true
	case p.matchToken(lexer.TokenString):
		p.emit(bytecode.LoadConstant(value.NewString(p.previous.Text)))
		return value.String, true
	case p.matchToken(lexer.TokenIdentifier):
		return p.identifier(instr, fn)
	case p.matchToken(lexer.TokenParenOpen):
		t, ok := p.expression(instr, fn)
		if !ok {
			return 0, false
		}
		p.consume(lexer.TokenParenClose, "expected ')'")
		return t, true
	default:
		p.errorAtCurrent("expected an expression")
		return 0, false
	}
}

func (p *parser) identifier(instr *instrument.Instrument, fn *instrument.Function) (value.Type, bool) {
	name := p.previous.Text

	if isUpper(name) {
		return p.componentCall(instr, fn, name)
	}

	if index, ok := fn.ParamIndex(name); ok {
		p.emit(bytecode.LoadArg(index))
		return fn.Params[index].Type, true
	}
	if index, ok := fn.LocalIndex(name); ok {
		p.emit(bytecode.LoadLocal(index))
		return fn.Locals[index].Type, true
	}
	if index, ok := instr.MemberIndex(name); ok {
		p.emit(bytecode.LoadMember(index))
		return instr.Members[index].Type, true
	}

	p.errorAtPrevious("no member variable, parameter, or local named '" + name + "'")
	return 0, false
}

func (p *parser) componentCall(instr *instrument.Instrument, fn *instrument.Function, name string) (value.Type, bool) {
	meta, ok := component.Lookup(name)
	if !ok {
		p.errorAtPrevious("no component named '" + name + "'")
		return 0, false
	}

	if !p.consume(lexer.TokenParenOpen, "expected '('") {
		return 0, false
	}

	argCount := 0
	for {
		if p.matchToken(lexer.TokenParenClose) {
			break
		}
		if argCount == len(meta.InputTypes) {
			p.errorAtCurrent("too many inputs to '" + name + "'")
			return 0, false
		}

		argType, ok := p.expression(instr, fn)
		if !ok {
			return 0, false
		}
		if argType != meta.InputTypes[argCount] {
			p.errorAtPrevious("argument type mismatch calling '" + name + "'")
			return 0, false
		}
		argCount++

		if !p.checkToken(lexer.TokenParenClose) {
			if !p.consume(lexer.TokenComma, "expected ','") {
				return 0, false
			}
		}
	}

	if argCount != len(meta.InputTypes) {
		p.errorAtPrevious("wrong number of arguments to '" + name + "'")
		return 0, false
	}

	slot := len(fn.Components)
	fn.Components = append(fn.Components, instrument.ComponentSlot{Name: name, Meta: meta})
	p.emit(bytecode.CallComponent(slot))
	return meta.OutputType, true
}

// --- score ---

func (p *parser) scoreBlock() {
	p.pushContext(ctxScoreBlock)
	defer p.popContext()
	if !p.consume(lexer.TokenBraceOpen, "expected '{'") {
		return
	}

	for {
		switch {
		case p.matchToken(lexer.TokenBraceClose):
			return
		case p.matchToken(lexer.TokenIdentifier):
			p.scoreEvent()
		default:
			p.errorAtCurrent("expected instrument name or '}'")
			return
		}
		if p.hadError {
			return
		}
	}
}

func (p *parser) scoreEvent() {
	name := p.previous.Text
	instr, ok := p.program.Instruments[name]
	if !ok {
		p.errorAtPrevious("no instrument named '" + name + "'")
		return
	}

	if !p.consume(lexer.TokenParenOpen, "expected '('") {
		return
	}

	startTime, ok := p.literalFloat("expected Float for start time")
	if !ok {
		return
	}
	duration, ok := p.literalFloat("expected Float for duration")
	if !ok {
		return
	}

	hadInitCall, hadPerfCall := false, false
	var initArgs, perfArgs []value.Value

	for {
		switch {
		case p.matchToken(lexer.TokenParenClose):
			goto done
		case p.matchToken(lexer.TokenInit):
			args, ok := p.scoreArgs(instr.Init.Params)
			if !ok {
				return
			}
			initArgs = args
			hadInitCall = true
		case p.matchToken(lexer.TokenPerf):
			args, ok := p.scoreArgs(instr.Perf.Params)
			if !ok {
				return
			}
			perfArgs = args
			hadPerfCall = true
		default:
			p.errorAtCurrent("expected 'init' or 'perf'")
			return
		}
	}
done:

	if len(instr.Init.Params) > 0 && !hadInitCall {
		p.errorAtPrevious("init function for '" + name + "' takes arguments but no init call was given")
		return
	}
	if len(instr.Perf.Params) > 0 && !hadPerfCall {
		p.errorAtPrevious("perf function for '" + name + "' takes arguments but no perf call was given")
		return
	}

	p.program.ScoreEvents = append(p.program.ScoreEvents, &vm.ScoreEvent{
		InstrumentName: name,
		StartTime:      startTime,
		Duration:       duration,
		InitArgs:       initArgs,
		PerfArgs:       perfArgs,
	})
	p.consume(lexer.TokenSemicolon, "expected ';'")
}

func (p *parser) literalFloat(message string) (float64, bool) {
	if !p.matchToken(lexer.TokenFloat) {
		p.errorAtCurrent(message)
		return 0, false
	}
	f, err := strconv.ParseFloat(p.previous.Text, 64)
	if err != nil {
		p.errorAtPrevious("invalid float literal")
		return 0, false
	}
	return f, true
}

func (p *parser) scoreArgs(params []instrument.Param) ([]value.Value, bool) {
	if !p.consume(lexer.TokenParenOpen, "expected '('") {
		return nil, false
	}

	var args []value.Value
	argCount := 0
	for {
		if p.matchToken(lexer.TokenParenClose) {
			break
		}
		if argCount == len(params) {
			p.errorAtCurrent("too many arguments")
			return nil, false
		}

		switch params[argCount].Type {
		case value.Float:
			if !p.matchToken(lexer.TokenFloat) {
				p.errorAtCurrent("expected Float literal")
				return nil, false
			}
			f, err := strconv.ParseFloat(p.previous.Text, 32)
			if err != nil {
				p.errorAtPrevious("invalid float literal")
				return nil, false
			}
			args = append(args, value.NewFloat(float32(f)))
		case value.Int:
			if !p.matchToken(lexer.TokenInteger) {
				p.errorAtCurrent("expected Int literal")
				return nil, false
			}
			n, err := strconv.ParseInt(p.previous.Text, 10, 64)
			if err != nil {
				p.errorAtPrevious("invalid integer literal")
				return nil, false
			}
			args = append(args, value.NewInt(n))
		case value.String:
			if !p.matchToken(lexer.TokenString) {
				p.errorAtCurrent("expected String literal")
				return nil, false
			}
			args = append(args, value.NewString(p.previous.Text))
		default:
			p.errorAtCurrent("unsupported argument type")
			return nil, false
		}
		argCount++

		if !p.checkToken(lexer.TokenParenClose) {
			if !p.consume(lexer.TokenComma, "expected ','") {
				return nil, false
			}
		}
	}

	if argCount != len(params) {
		p.errorAtPrevious("wrong number of arguments")
		return nil, false
	}

	return args, true
}

// --- helpers ---

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func typeFromToken(t lexer.TokenType) value.Type {
	switch t {
	case lexer.TokenIntType:
		return value.Int
	case lexer.TokenFloatType:
		return value.Float
	case lexer.TokenAudioType:
		return value.Audio
	case lexer.TokenStringType:
		return value.String
	default:
		panic("compiler: typeFromToken called with non-type token")
	}
}
