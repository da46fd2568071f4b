package isa

import (
	"fmt"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

// DecodedInstruction is the result of decoding one 16-bit word. It mirrors
// ParsedInstruction's field layout but carries only already-resolved
// values: there are no labels left to look up once a word has been
// encoded, so Target/Immediate/etc. are plain integers rather than Operand.
type DecodedInstruction struct {
	Format Format

	Dest   RegId
	Source RegId
	Alu    AluOp

	Imm       ImmOp
	Immediate uint16

	Base   RegId
	Offset MOffset
	Mem    MemOp

	Absolute   bool
	Cond       BranchCond
	Target     uint16
	TargetPair RegisterPair

	Stack       StackOp
	StackOperand uint16

	Peek       PeekPokeOp
	PeekReg    RegId
	PeekOffset uint16

	XOp      XTypeOp
	XOperand uint16
}

// Decode decodes a 16-bit instruction word. The two reserved/unused type
// fields (0xE, 0xF) and undefined StackOp/XTypeOp subfield values return
// ErrEncoding; every other word decodes.
func Decode(word uint16) (DecodedInstruction, error) {
	v := CreateBitView(&word)
	typeField := v.Read(12, 4)

	switch {
	case typeField == typeA:
		return DecodedInstruction{
			Format: FormatA,
			Dest:   RegId(v.Read(8, 4)),
			Source: RegId(v.Read(4, 4)),
			Alu:    AluOp(v.Read(0, 4)),
		}, nil

	case typeField >= typeIBase && typeField < typeIBase+uint16(totalImmOps):
		return DecodedInstruction{
			Format:    FormatI,
			Dest:      RegId(v.Read(8, 4)),
			Imm:       ImmOp(typeField - typeIBase),
			Immediate: v.Read(0, 8),
		}, nil

	case typeField >= typeMBase && typeField < typeMBase+uint16(totalMemOps):
		return DecodedInstruction{
			Format: FormatM,
			Dest:   RegId(v.Read(8, 4)),
			Base:   RegId(v.Read(4, 4)),
			Offset: mOffsetFromField(uint8(v.Read(0, 4))),
			Mem:    MemOp(typeField - typeMBase),
		}, nil

	case typeField == typeBI:
		return DecodedInstruction{
			Format:   FormatBI,
			Absolute: v.Read(11, 1) != 0,
			Cond:     BranchCond(v.Read(8, 3)),
			Target:   v.Read(0, 8),
		}, nil

	case typeField == typeBR:
		return DecodedInstruction{
			Format:   FormatBR,
			Absolute: v.Read(11, 1) != 0,
			Cond:     BranchCond(v.Read(8, 3)),
			TargetPair: RegisterPair{
				Lo: RegId(v.Read(4, 4)),
				Hi: RegId(v.Read(0, 4)),
			},
		}, nil

	case typeField == typeS:
		stack := StackOp(v.Read(8, 4))
		if stack >= totalStackOps {
			return DecodedInstruction{}, fmt.Errorf("%w: undefined stack op %d", atlaserr.ErrEncoding, stack)
		}
		return DecodedInstruction{
			Format:       FormatS,
			Stack:        stack,
			StackOperand: v.Read(0, 8),
		}, nil

	case typeField == typePPeek:
		return DecodedInstruction{
			Format:     FormatP,
			Peek:       PP_PEEK,
			PeekReg:    RegId(v.Read(8, 4)),
			PeekOffset: v.Read(0, 8),
		}, nil

	case typeField == typePPoke:
		return DecodedInstruction{
			Format:     FormatP,
			Peek:       PP_POKE,
			PeekReg:    RegId(v.Read(8, 4)),
			PeekOffset: v.Read(0, 8),
		}, nil

	case typeField == typeX:
		xop := XTypeOp(v.Read(8, 4))
		if xop >= totalXTypeOps {
			return DecodedInstruction{}, fmt.Errorf("%w: undefined system op %d", atlaserr.ErrEncoding, xop)
		}
		return DecodedInstruction{
			Format:   FormatX,
			XOp:      xop,
			XOperand: v.Read(0, 8),
		}, nil

	default:
		return DecodedInstruction{}, fmt.Errorf("%w: unknown type field 0x%X", atlaserr.ErrEncoding, typeField)
	}
}
