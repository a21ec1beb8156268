// Package compiler implements a single-pass Pratt parser that compiles
// source text directly to bytecode, with no intermediate syntax tree.
package compiler

import (
	"strconv"

	"github.com/lumen-lang/lumen/vm"
)

// Parser drives a Lexer and emits bytecode into a vm.Chunk as it goes.
// current/previous are the Pratt parser's one-token lookahead pair.
// panicMode suppresses cascading diagnostics after the first syntax
// error; it is never cleared, so only the first error is recorded.
type Parser struct {
	lexer     *Lexer
	chunk     *vm.Chunk
	strings   *vm.StringPool
	current   Token
	previous  Token
	hadError  bool
	panicMode bool
	errors    []*CompileError
}

// Compile parses source as a single expression and emits its bytecode
// into chunk, terminated by OP_RETURN. strings is the pool constant
// string objects are interned against; the caller passes the same pool
// to the VM so runtime-built strings compare equal to compile-time
// ones. It returns false and the first CompileError encountered if the
// source is not well-formed.
func Compile(source string, chunk *vm.Chunk, strings *vm.StringPool) (bool, *CompileError) {
	p := &Parser{
		lexer:   NewLexer(source),
		chunk:   chunk,
		strings: strings,
	}
	p.advance()
	p.expression()
	p.consume(TokenEOF, "Expect end of expression.")
	p.emitByte(byte(vm.OpReturn))

	if p.hadError {
		return false, p.errors[0]
	}
	return true, nil
}

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lexer.NextToken()
		if p.current.Kind != TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) consume(kind TokenKind, message string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *Parser) check(kind TokenKind) bool {
	return p.current.Kind == kind
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *Parser) error(message string) {
	p.errorAt(p.previous, message)
}

func (p *Parser) errorAt(tok Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	where := "end"
	if tok.Kind == TokenError {
		where = ""
	} else if tok.Kind != TokenEOF {
		where = "'" + tok.Lexeme + "'"
	}

	p.errors = append(p.errors, &CompileError{Line: tok.Pos.Line, Where: where, Message: message})
	p.hadError = true
	log.Warningf("compile error at line %d: %s", tok.Pos.Line, message)
}

func (p *Parser) emitByte(b byte) {
	p.chunk.WriteByte(b, p.previous.Pos.Line)
}

func (p *Parser) emitOp(op vm.Opcode) {
	p.chunk.WriteOp(op, p.previous.Pos.Line)
}

func (p *Parser) emitConstant(v vm.Value) {
	if len(p.chunk.Constants) >= vm.MaxConstants {
		p.error("Too many constants in one chunk.")
		return
	}
	p.chunk.EmitConstant(v, p.previous.Pos.Line)
}

func (p *Parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

func (p *Parser) parsePrecedence(minPrec Precedence) {
	p.advance()
	prefix := ruleFor(p.previous.Kind).Prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := minPrec <= PrecAssignment
	prefix(p, canAssign)

	for minPrec <= ruleFor(p.current.Kind).Precedence {
		p.advance()
		infix := ruleFor(p.previous.Kind).Infix
		infix(p, canAssign)
	}
}

func (p *Parser) number(canAssign bool) {
	f, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(vm.Number(f))
}

func (p *Parser) stringLiteral(canAssign bool) {
	// Lexeme includes the surrounding quotes.
	content := p.previous.Lexeme[1 : len(p.previous.Lexeme)-1]
	obj := p.strings.Intern([]byte(content))
	p.emitConstant(vm.StringValue(obj))
}

func (p *Parser) literal(canAssign bool) {
	switch p.previous.Kind {
	case TokenFalse:
		p.emitOp(vm.OpFalse)
	case TokenTrue:
		p.emitOp(vm.OpTrue)
	case TokenNil:
		p.emitOp(vm.OpNil)
	}
}

func (p *Parser) grouping(canAssign bool) {
	p.expression()
	p.consume(TokenRightParen, "Expect ')' after expression.")
}

func (p *Parser) unary(canAssign bool) {
	kind := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch kind {
	case TokenMinus:
		p.emitOp(vm.OpNegate)
	case TokenBang:
		p.emitOp(vm.OpNot)
	}
}

func (p *Parser) binary(canAssign bool) {
	kind := p.previous.Kind
	rule := ruleFor(kind)
	p.parsePrecedence(rule.Precedence + 1)

	switch kind {
	case TokenBangEqual:
		p.emitOp(vm.OpEqual)
		p.emitOp(vm.OpNot)
	case TokenEqualEqual:
		p.emitOp(vm.OpEqual)
	case TokenGreater:
		p.emitOp(vm.OpGreater)
	case TokenGreaterEqual:
		p.emitOp(vm.OpLess)
		p.emitOp(vm.OpNot)
	case TokenLess:
		p.emitOp(vm.OpLess)
	case TokenLessEqual:
		p.emitOp(vm.OpGreater)
		p.emitOp(vm.OpNot)
	case TokenPlus:
		p.emitOp(vm.OpAdd)
	case TokenMinus:
		p.emitOp(vm.OpSubtract)
	case TokenStar:
		p.emitOp(vm.OpMultiply)
	case TokenSlash:
		p.emitOp(vm.OpDivide)
	}
}
