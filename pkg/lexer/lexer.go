package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
)

// Lexer produces a lazy stream of tokens from source text. It is
// single-pass and holds no state beyond its cursor into src (byte offset
// and line number) and whether it has already returned EoF.
type Lexer struct {
	src  string
	pos  int
	line int

	pendingNewLine bool
	emittedEof     bool
}

// New returns a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1}
}

func (l *Lexer) errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", sentinel, l.line, fmt.Sprintf(format, args...))
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' }

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Next returns the next token. Once it returns a KindEoF token, every
// subsequent call returns an error: callers must stop iterating at EoF.
func (l *Lexer) Next() (Tok, error) {
	if l.emittedEof {
		return Tok{}, fmt.Errorf("%w: read past end of file", atlaserr.ErrLex)
	}

	for {
		l.skipSpacesAndComments()

		if l.pos >= len(l.src) {
			l.emittedEof = true
			return Tok{Kind: KindEoF, Span: Span{Line: l.line, Offset: l.pos}}, nil
		}

		if l.src[l.pos] == '\n' {
			l.consumeNewLineRun()
			return Tok{Kind: KindNewLine, Span: Span{Line: l.line, Offset: l.pos}}, nil
		}

		return l.lexWord()
	}
}

func (l *Lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == ';':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// consumeNewLineRun swallows one or more consecutive newlines (and any
// interleaved whitespace/comments), collapsing them into the single
// NewLine token the caller is about to return.
func (l *Lexer) consumeNewLineRun() {
	for l.pos < len(l.src) {
		l.skipSpacesAndComments()
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.pos++
			l.line++
			continue
		}
		break
	}
}

func (l *Lexer) lexWord() (Tok, error) {
	start := l.pos
	startSpan := Span{Line: l.line, Offset: l.pos}
	c := l.src[l.pos]

	switch c {
	case ',':
		l.pos++
		return Tok{Kind: KindComma, Span: startSpan}, nil
	case '@':
		l.pos++
		return Tok{Kind: KindAt, Span: startSpan}, nil
	case '(':
		l.pos++
		return Tok{Kind: KindLParen, Span: startSpan}, nil
	case ')':
		l.pos++
		return Tok{Kind: KindRParen, Span: startSpan}, nil
	case '[':
		l.pos++
		return Tok{Kind: KindLBracket, Span: startSpan}, nil
	case ']':
		l.pos++
		return Tok{Kind: KindRBracket, Span: startSpan}, nil
	}

	if c == '.' {
		l.pos++
		nameStart := l.pos
		for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
			l.pos++
		}
		name := l.src[nameStart:l.pos]
		if name == "" {
			return Tok{}, l.errorf(atlaserr.ErrLex, "invalid directive at offset %d", start)
		}
		return Tok{Kind: KindDirective, Span: startSpan, Text: strings.ToLower(name)}, nil
	}

	if c == '+' || c == '-' || c >= '0' && c <= '9' {
		return l.lexNumber(startSpan)
	}

	if isWordByte(c) {
		for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
			l.pos++
		}
		word := l.src[start:l.pos]

		if l.pos < len(l.src) && l.src[l.pos] == ':' {
			l.pos++
			if word == "" {
				return Tok{}, l.errorf(atlaserr.ErrLex, "empty label name")
			}
			return Tok{Kind: KindLabelDef, Span: startSpan, Text: word}, nil
		}

		if reg, ok := tryParseRegister(word); ok {
			return Tok{Kind: KindRegister, Span: startSpan, Register: uint8(reg)}, nil
		}

		if _, ok := isa.LookupMnemonic(word); ok {
			return Tok{Kind: KindMnemonic, Span: startSpan, Text: strings.ToLower(word)}, nil
		}

		return Tok{Kind: KindLabelRef, Span: startSpan, Text: word}, nil
	}

	return Tok{}, l.errorf(atlaserr.ErrLex, "invalid character %q", c)
}

func tryParseRegister(word string) (isa.RegId, bool) {
	reg, err := isa.ParseRegister(word)
	if err != nil {
		return 0, false
	}
	return reg, true
}

// lexNumber consumes a numeric literal: optional sign, optional 0x/0b/0o
// radix prefix, then digits in that radix.
func (l *Lexer) lexNumber(span Span) (Tok, error) {
	start := l.pos
	signed := false

	if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
		signed = true
		l.pos++
	}

	if l.pos >= len(l.src) || l.src[l.pos] < '0' || l.src[l.pos] > '9' {
		return Tok{}, l.errorf(atlaserr.ErrLex, "invalid character %q", l.src[start])
	}

	digitsStart := l.pos
	base := 10
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			base = 16
			l.pos += 2
			digitsStart = l.pos
		case 'b', 'B':
			base = 2
			l.pos += 2
			digitsStart = l.pos
		case 'o', 'O':
			base = 8
			l.pos += 2
			digitsStart = l.pos
		}
	}

	for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
		l.pos++
	}

	digits := l.src[digitsStart:l.pos]
	if digits == "" {
		return Tok{}, l.errorf(atlaserr.ErrLex, "invalid number %q", l.src[start:l.pos])
	}

	magnitude, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return Tok{}, l.errorf(atlaserr.ErrLex, "invalid number %q", l.src[start:l.pos])
	}

	value := magnitude
	if signed && l.src[start] == '-' {
		value = -magnitude
	}

	return Tok{
		Kind:      KindImmediate,
		Span:      span,
		Immediate: Immediate{Value: int32(value), Signed: signed},
	}, nil
}
