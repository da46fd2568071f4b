// Package lexer turns Atlas8 assembly source into a lazy stream of spanned
// tokens.
package lexer

import "fmt"

// Kind discriminates the token classes named in the source grammar.
type Kind int

const (
	KindMnemonic Kind = iota
	KindDirective
	KindRegister
	KindImmediate
	KindLabelDef
	KindLabelRef
	KindComma
	KindAt
	KindLParen
	KindRParen
	KindLBracket
	KindRBracket
	KindNewLine
	KindEoF
)

func (k Kind) String() string {
	switch k {
	case KindMnemonic:
		return "mnemonic"
	case KindDirective:
		return "directive"
	case KindRegister:
		return "register"
	case KindImmediate:
		return "immediate"
	case KindLabelDef:
		return "label definition"
	case KindLabelRef:
		return "label reference"
	case KindComma:
		return ","
	case KindAt:
		return "@"
	case KindLParen:
		return "("
	case KindRParen:
		return ")"
	case KindLBracket:
		return "["
	case KindRBracket:
		return "]"
	case KindNewLine:
		return "newline"
	case KindEoF:
		return "end of file"
	default:
		return "?"
	}
}

// Span locates a token in the original source: a 1-based line number and
// the byte offset of its first character.
type Span struct {
	Line   int
	Offset int
}

// Immediate is the payload of a KindImmediate token.
type Immediate struct {
	Value  int32
	Signed bool
}

// Tok is the actual token value produced by the lexer: kind plus whichever
// payload field that kind uses.
type Tok struct {
	Kind Kind
	Span Span

	Text      string    // Mnemonic, Directive (without '.'), LabelDef, LabelRef
	Register  uint8     // KindRegister
	Immediate Immediate // KindImmediate
}

func (t Tok) String() string {
	switch t.Kind {
	case KindMnemonic, KindLabelRef:
		return t.Text
	case KindDirective:
		return "." + t.Text
	case KindLabelDef:
		return t.Text + ":"
	case KindRegister:
		return fmt.Sprintf("r%d", t.Register)
	case KindImmediate:
		return fmt.Sprintf("%d", t.Immediate.Value)
	default:
		return t.Kind.String()
	}
}
