package compiler

// Precedence orders binding strength from loosest to tightest, per the
// language's precedence ladder. parsePrecedence consumes an expression
// whose next operator binds at least as tightly as the level passed in.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecConditional
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is a prefix or infix parsing routine bound to the Pratt
// table. canAssign is threaded through even though this fragment has
// no assignment targets, so the table shape matches what a fuller
// grammar (variables, calls) would need without modification.
type parseFn func(p *Parser, canAssign bool)

// ParseRule associates a token kind with its prefix parser (if it can
// start an expression), its infix parser (if it can continue one), and
// the precedence of that infix use.
type ParseRule struct {
	Prefix     parseFn
	Infix      parseFn
	Precedence Precedence
}

var rules map[TokenKind]ParseRule

func init() {
	rules = map[TokenKind]ParseRule{
		TokenLeftParen:    {Prefix: (*Parser).grouping, Infix: nil, Precedence: PrecNone},
		TokenMinus:        {Prefix: (*Parser).unary, Infix: (*Parser).binary, Precedence: PrecTerm},
		TokenPlus:         {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecTerm},
		TokenSlash:        {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecFactor},
		TokenStar:         {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecFactor},
		TokenBang:         {Prefix: (*Parser).unary, Infix: nil, Precedence: PrecNone},
		TokenBangEqual:    {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecEquality},
		TokenEqualEqual:   {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecEquality},
		TokenGreater:      {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecComparison},
		TokenGreaterEqual: {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecComparison},
		TokenLess:         {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecComparison},
		TokenLessEqual:    {Prefix: nil, Infix: (*Parser).binary, Precedence: PrecComparison},
		TokenNumber:       {Prefix: (*Parser).number, Infix: nil, Precedence: PrecNone},
		TokenString:       {Prefix: (*Parser).stringLiteral, Infix: nil, Precedence: PrecNone},
		TokenFalse:        {Prefix: (*Parser).literal, Infix: nil, Precedence: PrecNone},
		TokenTrue:         {Prefix: (*Parser).literal, Infix: nil, Precedence: PrecNone},
		TokenNil:          {Prefix: (*Parser).literal, Infix: nil, Precedence: PrecNone},
	}
}

func ruleFor(kind TokenKind) ParseRule {
	if r, ok := rules[kind]; ok {
		return r
	}
	return ParseRule{Precedence: PrecNone}
}
