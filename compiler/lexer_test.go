package compiler

import "testing"

func TestLexerPunctuation(t *testing.T) {
	input := `( ) { } , . - + ; * /`
	expected := []TokenKind{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenComma, TokenDot, TokenMinus, TokenPlus, TokenSemicolon,
		TokenStar, TokenSlash, TokenEOF,
	}

	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Kind != want {
			t.Errorf("token[%d] kind = %v, want %v", i, tok.Kind, want)
		}
	}
}

func TestLexerOneOrTwoCharOperators(t *testing.T) {
	tests := []struct {
		input string
		want  TokenKind
	}{
		{"!", TokenBang},
		{"!=", TokenBangEqual},
		{"=", TokenEqual},
		{"==", TokenEqualEqual},
		{"<", TokenLess},
		{"<=", TokenLessEqual},
		{">", TokenGreater},
		{">=", TokenGreaterEqual},
	}
	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Kind != tc.want {
			t.Errorf("Lexer(%q): kind = %v, want %v", tc.input, tok.Kind, tc.want)
		}
		if tok.Lexeme != tc.input {
			t.Errorf("Lexer(%q): lexeme = %q, want %q", tc.input, tok.Lexeme, tc.input)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []string{"42", "0", "3.14", "1234.5678"}
	for _, input := range tests {
		l := NewLexer(input)
		tok := l.NextToken()
		if tok.Kind != TokenNumber {
			t.Errorf("Lexer(%q): kind = %v, want NUMBER", input, tok.Kind)
		}
		if tok.Lexeme != input {
			t.Errorf("Lexer(%q): lexeme = %q, want %q", input, tok.Lexeme, input)
		}
	}
}

func TestLexerNumberDotNotFollowedByDigitStopsAtDot(t *testing.T) {
	l := NewLexer("42.method")
	num := l.NextToken()
	if num.Kind != TokenNumber || num.Lexeme != "42" {
		t.Fatalf("got %v %q, want NUMBER 42", num.Kind, num.Lexeme)
	}
	dot := l.NextToken()
	if dot.Kind != TokenDot {
		t.Fatalf("got %v, want DOT", dot.Kind)
	}
}

func TestLexerStrings(t *testing.T) {
	l := NewLexer(`"hello world"`)
	tok := l.NextToken()
	if tok.Kind != TokenString {
		t.Fatalf("kind = %v, want STRING", tok.Kind)
	}
	if tok.Lexeme != `"hello world"` {
		t.Fatalf("lexeme = %q, want %q", tok.Lexeme, `"hello world"`)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer(`"hello`)
	tok := l.NextToken()
	if tok.Kind != TokenError {
		t.Fatalf("kind = %v, want ERROR", tok.Kind)
	}
}

func TestLexerStringSpanningLinesAdvancesLine(t *testing.T) {
	l := NewLexer("\"line one\nline two\"")
	tok := l.NextToken()
	if tok.Kind != TokenString {
		t.Fatalf("kind = %v, want STRING", tok.Kind)
	}
	next := l.NextToken()
	if next.Pos.Line != 2 {
		t.Fatalf("line after multi-line string = %d, want 2", next.Pos.Line)
	}
}

func TestLexerIdentifiersAndKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenKind
	}{
		{"foo", TokenIdentifier},
		{"_bar", TokenIdentifier},
		{"and", TokenAnd},
		{"class", TokenClass},
		{"else", TokenElse},
		{"false", TokenFalse},
		{"for", TokenFor},
		{"fun", TokenFun},
		{"if", TokenIf},
		{"nil", TokenNil},
		{"or", TokenOr},
		{"print", TokenPrint},
		{"return", TokenReturn},
		{"super", TokenSuper},
		{"this", TokenThis},
		{"true", TokenTrue},
		{"var", TokenVar},
		{"while", TokenWhile},
	}
	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Kind != tc.want {
			t.Errorf("Lexer(%q): kind = %v, want %v", tc.input, tok.Kind, tc.want)
		}
	}
}

func TestLexerSkipsWhitespaceAndLineComments(t *testing.T) {
	l := NewLexer("  \t// a comment\n  42")
	tok := l.NextToken()
	if tok.Kind != TokenNumber || tok.Lexeme != "42" {
		t.Fatalf("got %v %q, want NUMBER 42", tok.Kind, tok.Lexeme)
	}
	if tok.Pos.Line != 2 {
		t.Fatalf("line = %d, want 2", tok.Pos.Line)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := NewLexer("@")
	tok := l.NextToken()
	if tok.Kind != TokenError {
		t.Fatalf("kind = %v, want ERROR", tok.Kind)
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := NewLexer("")
	first := l.NextToken()
	second := l.NextToken()
	if first.Kind != TokenEOF || second.Kind != TokenEOF {
		t.Fatalf("expected repeated EOF, got %v then %v", first.Kind, second.Kind)
	}
}
