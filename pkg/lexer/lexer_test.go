package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []Tok {
	t.Helper()
	l := New(src)
	var out []Tok
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == KindEoF {
			return out
		}
	}
}

func TestLexer_SimpleInstruction(t *testing.T) {
	toks := tokens(t, "ldi r1, 0x55\n")
	require.Len(t, toks, 6)
	assert.Equal(t, KindMnemonic, toks[0].Kind)
	assert.Equal(t, "ldi", toks[0].Text)
	assert.Equal(t, KindRegister, toks[1].Kind)
	assert.EqualValues(t, 1, toks[1].Register)
	assert.Equal(t, KindComma, toks[2].Kind)
	assert.Equal(t, KindImmediate, toks[3].Kind)
	assert.EqualValues(t, 0x55, toks[3].Immediate.Value)
	assert.Equal(t, KindNewLine, toks[4].Kind)
}

func TestLexer_CollapsesBlankLines(t *testing.T) {
	toks := tokens(t, "nop\n\n\n\nnop\n")
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{KindMnemonic, KindNewLine, KindMnemonic, KindNewLine, KindEoF}, kinds)
}

func TestLexer_CommentsAreSkipped(t *testing.T) {
	toks := tokens(t, "nop ; this is a comment\n")
	assert.Equal(t, KindMnemonic, toks[0].Kind)
	assert.Equal(t, KindNewLine, toks[1].Kind)
}

func TestLexer_LabelDefAndRef(t *testing.T) {
	toks := tokens(t, "start: beq start\n")
	assert.Equal(t, KindLabelDef, toks[0].Kind)
	assert.Equal(t, "start", toks[0].Text)
	assert.Equal(t, KindMnemonic, toks[1].Kind)
	assert.Equal(t, KindLabelRef, toks[2].Kind)
	assert.Equal(t, "start", toks[2].Text)
}

func TestLexer_SignedImmediate(t *testing.T) {
	toks := tokens(t, "+5 -5 5\n")
	assert.True(t, toks[0].Immediate.Signed)
	assert.EqualValues(t, 5, toks[0].Immediate.Value)
	assert.True(t, toks[1].Immediate.Signed)
	assert.EqualValues(t, -5, toks[1].Immediate.Value)
	assert.False(t, toks[2].Immediate.Signed)
}

func TestLexer_RadixPrefixes(t *testing.T) {
	toks := tokens(t, "0x10 0b10 0o10\n")
	assert.EqualValues(t, 16, toks[0].Immediate.Value)
	assert.EqualValues(t, 2, toks[1].Immediate.Value)
	assert.EqualValues(t, 8, toks[2].Immediate.Value)
}

func TestLexer_Directive(t *testing.T) {
	toks := tokens(t, ".global foo\n")
	assert.Equal(t, KindDirective, toks[0].Kind)
	assert.Equal(t, "global", toks[0].Text)
}

func TestLexer_InvalidCharacter(t *testing.T) {
	l := New("$\n")
	_, err := l.Next()
	assert.ErrorContains(t, err, "lex error")
}
