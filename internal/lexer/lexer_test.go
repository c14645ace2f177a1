package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjeffares/ral-go/internal/lexer"
)

func scanAll(t *testing.T, source string) []lexer.Token {
	t.Helper()
	l := lexer.New(source)
	var toks []lexer.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == lexer.TokenEndOfFile || tok.Type == lexer.TokenError {
			break
		}
	}
	return toks
}

func TestKeywordsAndTypes(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "instruments score init perf local print println output Int Float Audio String")
	want := []lexer.TokenType{
		lexer.TokenInstruments, lexer.TokenScore, lexer.TokenInit, lexer.TokenPerf,
		lexer.TokenLocal, lexer.TokenPrint, lexer.TokenPrintLn, lexer.TokenOutput,
		lexer.TokenIntType, lexer.TokenFloatType, lexer.TokenAudioType, lexer.TokenStringType,
		lexer.TokenEndOfFile,
	}
	require.Len(t, toks, len(want))
	for i, tt := range want {
		assert.Equal(t, tt, toks[i].Type, "token %d", i)
	}
}

func TestIdentifierVsComponentCase(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "myVar Oscil _under")
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.TokenIdentifier, toks[0].Type)
	assert.Equal(t, "myVar", toks[0].Text)
	assert.Equal(t, lexer.TokenIdentifier, toks[1].Type)
	assert.Equal(t, "Oscil", toks[1].Text)
	assert.Equal(t, lexer.TokenIdentifier, toks[2].Type)
}

func TestIntegerAndFloat(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "42 3.14 7.")
	assert.Equal(t, lexer.TokenInteger, toks[0].Type)
	assert.Equal(t, "42", toks[0].Text)
	assert.Equal(t, lexer.TokenFloat, toks[1].Type)
	assert.Equal(t, "3.14", toks[1].Text)
	// "7." with no following digit is an integer followed by punctuation-less dot,
	// which is not valid punctuation; the lexer stops at the integer "7" and the
	// next token scan hits the lone '.' producing an error token.
	assert.Equal(t, lexer.TokenInteger, toks[2].Type)
	assert.Equal(t, "7", toks[2].Text)
}

func TestStringEscapes(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, `"hello\tworld\n\"quoted\""`)
	require.Equal(t, lexer.TokenString, toks[0].Type)
	assert.Equal(t, "hello\tworld\n\"quoted\"", toks[0].Text)
}

func TestUnterminatedString(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, `"unterminated`)
	require.Len(t, toks, 1)
	assert.Equal(t, lexer.TokenError, toks[0].Type)
}

func TestUnknownByte(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "@")
	require.Len(t, toks, 1)
	assert.Equal(t, lexer.TokenError, toks[0].Type)
}

func TestLineAndColumnTracking(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "a\n  b")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[1].Col)
}

func TestPunctuation(t *testing.T) {
	t.Parallel()

	toks := scanAll(t, "{}(),:;=+-*/")
	want := []lexer.TokenType{
		lexer.TokenBraceOpen, lexer.TokenBraceClose, lexer.TokenParenOpen, lexer.TokenParenClose,
		lexer.TokenComma, lexer.TokenColon, lexer.TokenSemicolon, lexer.TokenEqual,
		lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash,
		lexer.TokenEndOfFile,
	}
	require.Len(t, toks, len(want))
	for i, tt := range want {
		assert.Equal(t, tt, toks[i].Type, "token %d", i)
	}
}
