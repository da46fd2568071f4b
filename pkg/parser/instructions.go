package parser

import (
	"fmt"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/lexer"
)

func (p *Parser) expectKind(kind lexer.Kind) (lexer.Tok, error) {
	tok, err := p.advance()
	if err != nil {
		return lexer.Tok{}, err
	}
	if tok.Kind != kind {
		return lexer.Tok{}, p.errorf("line %d: expected %s, found %s", tok.Span.Line, kind, tok.Kind)
	}
	return tok, nil
}

func (p *Parser) expectRegister() (isa.RegId, error) {
	tok, err := p.expectKind(lexer.KindRegister)
	if err != nil {
		return 0, err
	}
	return isa.RegId(tok.Register), nil
}

func (p *Parser) expectComma() error {
	_, err := p.expectKind(lexer.KindComma)
	return err
}

// parseOperand accepts an Immediate or a LabelRef, producing an isa.Operand.
func (p *Parser) parseOperand() (isa.Operand, error) {
	tok, err := p.advance()
	if err != nil {
		return isa.Operand{}, err
	}
	switch tok.Kind {
	case lexer.KindImmediate:
		return isa.ImmediateOperand(uint16(uint32(tok.Immediate.Value))), nil
	case lexer.KindLabelRef:
		return isa.LabelOperand(tok.Text), nil
	default:
		return isa.Operand{}, p.errorf("line %d: expected an immediate or label, found %s", tok.Span.Line, tok.Kind)
	}
}

// parseInstruction parses the operand list for the mnemonic named by tok
// and returns the resulting ParsedInstruction.
func (p *Parser) parseInstruction(tok lexer.Tok) (isa.ParsedInstruction, error) {
	mnem, ok := isa.LookupMnemonic(tok.Text)
	if !ok {
		return isa.ParsedInstruction{}, p.errorf("line %d: unknown mnemonic %q", tok.Span.Line, tok.Text)
	}

	base := isa.ParsedInstruction{Line: tok.Span.Line, SourceFile: p.sourceFile}

	switch mnem.Format {
	case isa.FormatVirtual:
		return p.parseVirtual(tok, mnem, base)
	case isa.FormatA:
		return p.parseA(tok, mnem, base)
	case isa.FormatI:
		return p.parseI(tok, mnem, base)
	case isa.FormatM:
		return p.parseM(tok, mnem, base)
	case isa.FormatBI:
		return p.parseBranch(tok, mnem, base)
	case isa.FormatS:
		return p.parseS(tok, mnem, base)
	case isa.FormatP:
		return p.parseP(tok, mnem, base)
	case isa.FormatX:
		return p.parseX(tok, mnem, base)
	default:
		return isa.ParsedInstruction{}, p.errorf("line %d: unsupported mnemonic format for %q", tok.Span.Line, tok.Text)
	}
}

func (p *Parser) parseVirtual(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	switch tok.Text {
	case "nop":
		base.Format = isa.FormatA
		base.Alu = isa.ALU_ADD
		base.Dest = 0
		base.Source = 0
		return base, nil

	case "inc", "dec":
		reg, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		if reg == 0 {
			return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: %s r0", atlaserr.ErrWriteToR0, tok.Span.Line, tok.Text)
		}
		base.Format = isa.FormatI
		base.Dest = reg
		base.Immediate = isa.ImmediateOperand(1)
		if tok.Text == "inc" {
			base.Imm = isa.IMM_ADDI
		} else {
			base.Imm = isa.IMM_SUBI
		}
		return base, nil

	default:
		return isa.ParsedInstruction{}, p.errorf("line %d: unknown virtual mnemonic %q", tok.Span.Line, tok.Text)
	}
}

func (p *Parser) parseA(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	dest, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return isa.ParsedInstruction{}, err
	}
	source, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if dest == 0 && !mnem.Alu.FlagOnly() {
		return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: %s r0, %s", atlaserr.ErrWriteToR0, tok.Span.Line, mnem.Name, source)
	}

	base.Format = isa.FormatA
	base.Alu = mnem.Alu
	base.Dest = dest
	base.Source = source
	return base, nil
}

func (p *Parser) parseI(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	dest, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return isa.ParsedInstruction{}, err
	}
	operand, err := p.parseOperand()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if dest == 0 {
		return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: %s r0, ...", atlaserr.ErrWriteToR0, tok.Span.Line, mnem.Name)
	}

	base.Format = isa.FormatI
	base.Imm = mnem.Imm
	base.Dest = dest
	base.Immediate = operand
	return base, nil
}

func (p *Parser) parseM(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	dest, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return isa.ParsedInstruction{}, err
	}
	if _, err := p.expectKind(lexer.KindLBracket); err != nil {
		return isa.ParsedInstruction{}, err
	}
	baseReg, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}

	offset, err := p.parseMOffset(tok)
	if err != nil {
		return isa.ParsedInstruction{}, err
	}

	if _, err := p.expectKind(lexer.KindRBracket); err != nil {
		return isa.ParsedInstruction{}, err
	}

	if dest == 0 && mnem.Mem == isa.MEM_LD {
		return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: ld r0, [...]", atlaserr.ErrWriteToR0, tok.Span.Line)
	}

	base.Format = isa.FormatM
	base.Mem = mnem.Mem
	base.Dest = dest
	base.Base = baseReg
	base.Offset = offset
	return base, nil
}

// parseMOffset parses the "(, | + | -) offset" portion inside [base ...].
// A comma is followed by an unsigned immediate or a register; no comma
// means the next token is a signed immediate (its sign came from the '+'
// or '-' the lexer folded into the literal).
func (p *Parser) parseMOffset(tok lexer.Tok) (isa.MOffset, error) {
	next, err := p.peek()
	if err != nil {
		return isa.MOffset{}, err
	}

	if next.Kind == lexer.KindComma {
		if _, err := p.advance(); err != nil {
			return isa.MOffset{}, err
		}
		next, err = p.peek()
		if err != nil {
			return isa.MOffset{}, err
		}
	}

	switch next.Kind {
	case lexer.KindRegister:
		if _, err := p.advance(); err != nil {
			return isa.MOffset{}, err
		}
		reg := isa.RegId(next.Register)
		switch reg {
		case isa.RegTR:
			return isa.SpecialRegisterMOffset(isa.PairTR), nil
		case isa.RegSP:
			return isa.SpecialRegisterMOffset(isa.PairSP), nil
		case isa.RegPC:
			return isa.SpecialRegisterMOffset(isa.PairPC), nil
		default:
			return isa.MOffset{}, p.errorf("line %d: %s cannot be used as a memory offset (only tr, sp, pc)", tok.Span.Line, reg)
		}

	case lexer.KindImmediate:
		if _, err := p.advance(); err != nil {
			return isa.MOffset{}, err
		}
		v := next.Immediate.Value
		if v < -5 || v > 7 {
			return isa.MOffset{}, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, v, -5, 7)
		}
		return isa.ImmediateMOffset(int8(v)), nil

	default:
		return isa.MOffset{}, p.errorf("line %d: expected a memory offset, found %s", next.Span.Line, next.Kind)
	}
}

func (p *Parser) parseBranch(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	next, err := p.peek()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}

	// No operand at all means end of line -- not a valid branch, every
	// branch mnemonic requires a target.
	if next.Kind == lexer.KindNewLine || next.Kind == lexer.KindEoF {
		return isa.ParsedInstruction{}, p.errorf("line %d: %s requires a branch target", tok.Span.Line, mnem.Name)
	}

	if next.Kind == lexer.KindRegister {
		hi, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		if err := p.expectComma(); err != nil {
			return isa.ParsedInstruction{}, err
		}
		lo, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		base.Format = isa.FormatBR
		base.Cond = mnem.Cond
		base.Absolute = true
		base.TargetPair = isa.RegisterPair{Hi: hi, Lo: lo}
		return base, nil
	}

	switch next.Kind {
	case lexer.KindImmediate:
		if _, err := p.advance(); err != nil {
			return isa.ParsedInstruction{}, err
		}
		base.Format = isa.FormatBI
		base.Cond = mnem.Cond
		base.Absolute = !next.Immediate.Signed
		if !base.Absolute {
			if next.Immediate.Value < -128 || next.Immediate.Value > 127 {
				return isa.ParsedInstruction{}, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, next.Immediate.Value, -128, 127)
			}
		}
		base.Target = isa.ImmediateOperand(uint16(uint32(next.Immediate.Value)))
		return base, nil

	case lexer.KindLabelRef:
		if _, err := p.advance(); err != nil {
			return isa.ParsedInstruction{}, err
		}
		base.Format = isa.FormatBI
		base.Cond = mnem.Cond
		base.Absolute = true
		base.Target = isa.LabelOperand(next.Text)
		return base, nil

	default:
		return isa.ParsedInstruction{}, p.errorf("line %d: invalid branch target %s", next.Span.Line, next.Kind)
	}
}

func (p *Parser) parseS(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	base.Format = isa.FormatS

	switch tok.Text {
	case "push":
		reg, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		base.Stack = isa.STACK_PUSH
		base.StackReg = reg
		return base, nil

	case "pop":
		reg, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		if reg == 0 {
			return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: pop r0", atlaserr.ErrWriteToR0, tok.Span.Line)
		}
		base.Stack = isa.STACK_POP
		base.StackReg = reg
		return base, nil

	case "subsp", "addsp":
		next, err := p.peek()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		if next.Kind == lexer.KindRegister {
			reg, err := p.expectRegister()
			if err != nil {
				return isa.ParsedInstruction{}, err
			}
			base.StackReg = reg
			if tok.Text == "subsp" {
				base.Stack = isa.STACK_SUBSP_REG
			} else {
				base.Stack = isa.STACK_ADDSP_REG
			}
			return base, nil
		}
		if next.Kind == lexer.KindImmediate {
			if _, err := p.advance(); err != nil {
				return isa.ParsedInstruction{}, err
			}
			if next.Immediate.Value < 0 || next.Immediate.Value > 255 {
				return isa.ParsedInstruction{}, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, next.Immediate.Value, 0, 255)
			}
			base.StackImm = isa.ImmediateOperand(uint16(next.Immediate.Value))
			if tok.Text == "subsp" {
				base.Stack = isa.STACK_SUBSP_IMM
			} else {
				base.Stack = isa.STACK_ADDSP_IMM
			}
			return base, nil
		}
		return isa.ParsedInstruction{}, p.errorf("line %d: %s requires a register or immediate", tok.Span.Line, tok.Text)

	default:
		return isa.ParsedInstruction{}, p.errorf("line %d: unknown stack mnemonic %q", tok.Span.Line, tok.Text)
	}
}

func (p *Parser) parseP(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	reg, err := p.expectRegister()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return isa.ParsedInstruction{}, err
	}
	offset, err := p.parseOperand()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}
	if reg == 0 && mnem.Peek == isa.PP_PEEK {
		return isa.ParsedInstruction{}, fmt.Errorf("%w: line %d: peek r0, ...", atlaserr.ErrWriteToR0, tok.Span.Line)
	}

	base.Format = isa.FormatP
	base.Dest = reg
	base.Peek = mnem.Peek
	base.PeekOffset = offset
	return base, nil
}

func (p *Parser) parseX(tok lexer.Tok, mnem isa.Mnemonic, base isa.ParsedInstruction) (isa.ParsedInstruction, error) {
	base.Format = isa.FormatX
	base.XOp = mnem.XOp

	next, err := p.peek()
	if err != nil {
		return isa.ParsedInstruction{}, err
	}

	switch next.Kind {
	case lexer.KindNewLine, lexer.KindEoF:
		base.XOperand = isa.NoXOperand()
		return base, nil

	case lexer.KindImmediate:
		if _, err := p.advance(); err != nil {
			return isa.ParsedInstruction{}, err
		}
		if next.Immediate.Value < 0 || next.Immediate.Value > 255 {
			return isa.ParsedInstruction{}, wrapRange(atlaserr.ErrImmediateOutOfRange, tok.Span.Line, next.Immediate.Value, 0, 255)
		}
		base.XOperand = isa.ImmediateXOperand(uint8(next.Immediate.Value))
		return base, nil

	case lexer.KindRegister:
		reg1, err := p.expectRegister()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		after, err := p.peek()
		if err != nil {
			return isa.ParsedInstruction{}, err
		}
		if after.Kind == lexer.KindComma {
			if _, err := p.advance(); err != nil {
				return isa.ParsedInstruction{}, err
			}
			reg2, err := p.expectRegister()
			if err != nil {
				return isa.ParsedInstruction{}, err
			}
			base.XOperand = isa.RegistersXOperand(isa.RegisterPair{Hi: reg1, Lo: reg2})
			return base, nil
		}
		base.XOperand = isa.RegisterXOperand(reg1)
		return base, nil

	default:
		return isa.ParsedInstruction{}, p.errorf("line %d: invalid operand for %s", next.Span.Line, tok.Text)
	}
}
