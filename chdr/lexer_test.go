package chdr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	toks, err := NewLexer(src).Lex()
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, TokenEOF, toks[len(toks)-1].Kind)
	return toks[:len(toks)-1]
}

func TestLexerBasicTokens(t *testing.T) {
	toks := lexAll(t, "typedef struct Foo { int x; } Foo;")
	texts := make([]string, 0, len(toks))
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	require.Equal(t, []string{"typedef", "struct", "Foo", "{", "int", "x", ";", "}", "Foo", ";"}, texts)
	require.Equal(t, TokenKeyword, toks[0].Kind)
	require.Equal(t, TokenKeyword, toks[1].Kind)
	require.Equal(t, TokenIdent, toks[2].Kind)
	// int is not a lexer keyword: type words resolve during parsing.
	require.Equal(t, TokenIdent, toks[4].Kind)
	require.Equal(t, TokenPunct, toks[6].Kind)
}

func TestLexerCommentsStripped(t *testing.T) {
	toks := lexAll(t, "int a; // trailing comment\n/* block\ncomment */ int b;")
	texts := make([]string, 0, len(toks))
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	require.Equal(t, []string{"int", "a", ";", "int", "b", ";"}, texts)
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	_, err := NewLexer("int a; /* never closed").Lex()
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexerDirective(t *testing.T) {
	toks := lexAll(t, "#define MAX_LIGHTS 8\nint x;")
	require.Equal(t, TokenDirective, toks[0].Kind)
	require.Equal(t, "define MAX_LIGHTS 8", toks[0].Text)
	require.Equal(t, "int", toks[1].Text)
}

func TestLexerDirectiveContinuation(t *testing.T) {
	toks := lexAll(t, "#define WIDE \\\n    42\n")
	require.Equal(t, TokenDirective, toks[0].Kind)
	require.Contains(t, toks[0].Text, "WIDE")
	require.Contains(t, toks[0].Text, "42")
}

func TestLexerDirectiveTrailingComment(t *testing.T) {
	toks := lexAll(t, "#define PI 3.14159 // circle constant\n")
	require.Equal(t, "define PI 3.14159", toks[0].Text)
}

func TestLexerHashMidLineIsPunct(t *testing.T) {
	// Only a '#' at the beginning of a line starts a directive.
	toks := lexAll(t, "int a # b;")
	require.Equal(t, TokenPunct, toks[2].Kind)
	require.Equal(t, "#", toks[2].Text)
}

func TestLexerNumbers(t *testing.T) {
	toks := lexAll(t, "0x1F 1e10 2.5f 0777 1U 10L")
	for _, tok := range toks {
		require.Equal(t, TokenNumber, tok.Kind, "token %q", tok.Text)
	}
	require.Equal(t, "0x1F", toks[0].Text)
	require.Equal(t, "2.5f", toks[2].Text)
}

func TestLexerStringAndChar(t *testing.T) {
	toks := lexAll(t, `char c = 'a'; const char *s = "hi\n";`)
	var foundChar, foundString bool
	for _, tok := range toks {
		switch tok.Kind {
		case TokenChar:
			foundChar = true
			require.Equal(t, `'a'`, tok.Text)
		case TokenString:
			foundString = true
			require.Equal(t, `"hi\n"`, tok.Text)
		}
	}
	require.True(t, foundChar)
	require.True(t, foundString)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer("const char *s = \"oops;\n").Lex()
	require.Error(t, err)
}

func TestLexerMultiCharPunct(t *testing.T) {
	toks := lexAll(t, "a << b ... c != d")
	texts := make([]string, 0, len(toks))
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	require.Equal(t, []string{"a", "<<", "b", "...", "c", "!=", "d"}, texts)
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "int a;\nfloat b;")
	require.Equal(t, 1, toks[0].Pos.Line)
	require.Equal(t, 1, toks[0].Pos.Col)
	require.Equal(t, 2, toks[3].Pos.Line) // "float"
	require.Equal(t, "float", toks[3].Text)
}

func TestLexerSingleUse(t *testing.T) {
	lx := NewLexer("int a;")
	_, err := lx.Lex()
	require.NoError(t, err)
	_, err = lx.Lex()
	require.Error(t, err)
}
