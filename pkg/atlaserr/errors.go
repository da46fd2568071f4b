// Package atlaserr defines the single error taxonomy shared by the lexer,
// parser, assembler, object codec and linker. Every stage wraps one of
// these sentinels with fmt.Errorf("%w: ...") so callers can use errors.Is
// regardless of which stage raised the error.
package atlaserr

import "errors"

var (
	// ErrIo covers failed reads/writes of input or output files.
	ErrIo = errors.New("io error")
	// ErrLex covers malformed source text at the token level.
	ErrLex = errors.New("lex error")
	// ErrParse covers malformed syntax above the token level.
	ErrParse = errors.New("parse error")
	// ErrImmediateOutOfRange covers a numeric operand that does not fit
	// its encoded field.
	ErrImmediateOutOfRange = errors.New("immediate out of range")
	// ErrWriteToR0 covers an instruction whose destination is r0 where
	// that is not permitted.
	ErrWriteToR0 = errors.New("write to r0")
	// ErrUnknownSymbol covers a reference to a name the parser cannot
	// classify.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrEncoding covers an instruction that cannot be reduced to a valid
	// 16-bit word, or an object whose layout is invalid.
	ErrEncoding = errors.New("encoding error")
	// ErrUnresolvedLabel covers a relocation whose symbol is not defined
	// anywhere in the linked inputs.
	ErrUnresolvedLabel = errors.New("unresolved label")
	// ErrDuplicateSymbol covers two global-binding symbols of the same
	// name across linker inputs.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrObjectFile covers a malformed object file container.
	ErrObjectFile = errors.New("object file error")
)
