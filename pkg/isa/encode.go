package isa

import (
	"fmt"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

// typeField values, the high 4 bits of every encoded word.
const (
	typeA        = 0x0
	typeIBase    = 0x1 // I-format occupies 0x1..0x5, one per ImmOp
	typeMBase    = 0x6 // M-format occupies 0x6..0x7, one per MemOp
	typeBI       = 0x8
	typeBR       = 0x9
	typeS        = 0xA
	typePPeek    = 0xB
	typePPoke    = 0xC
	typeX        = 0xD
)

func checkReg(r RegId) error {
	if r > 15 {
		return fmt.Errorf("%w: register %d out of range", atlaserr.ErrEncoding, r)
	}
	return nil
}

func fitsUnsigned(v uint16, bits int) bool {
	return v <= uint16(AllOnes[uint32](bits))
}

// EncodeA encodes an A-format ALU instruction.
func EncodeA(dest, source RegId, op AluOp) (uint16, error) {
	if err := checkReg(dest); err != nil {
		return 0, err
	}
	if err := checkReg(source); err != nil {
		return 0, err
	}
	if dest == 0 && !op.FlagOnly() {
		return 0, fmt.Errorf("%w: %s r0, %s", atlaserr.ErrWriteToR0, op, source)
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(typeA, 12, 4)
	v.Write(uint16(dest), 8, 4)
	v.Write(uint16(source), 4, 4)
	v.Write(uint16(op), 0, 4)
	return word, nil
}

// EncodeI encodes an I-format immediate instruction. imm must fit 8 bits.
func EncodeI(dest RegId, op ImmOp, imm uint16) (uint16, error) {
	if err := checkReg(dest); err != nil {
		return 0, err
	}
	if !fitsUnsigned(imm, 8) {
		return 0, fmt.Errorf("%w: immediate %d does not fit 8 bits", atlaserr.ErrImmediateOutOfRange, imm)
	}
	if dest == 0 {
		return 0, fmt.Errorf("%w: %s r0, #%d", atlaserr.ErrWriteToR0, op, imm)
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(uint16(typeIBase)+uint16(op), 12, 4)
	v.Write(uint16(dest), 8, 4)
	v.Write(imm, 0, 8)
	return word, nil
}

// EncodeM encodes an M-format load/store instruction.
func EncodeM(dest, base RegId, off MOffset, op MemOp) (uint16, error) {
	if err := checkReg(dest); err != nil {
		return 0, err
	}
	if err := checkReg(base); err != nil {
		return 0, err
	}
	if dest == 0 && op == MEM_LD {
		return 0, fmt.Errorf("%w: ld r0, [%s%+d]", atlaserr.ErrWriteToR0, base, off.Offset)
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(uint16(typeMBase)+uint16(op), 12, 4)
	v.Write(uint16(dest), 8, 4)
	v.Write(uint16(base), 4, 4)
	v.Write(uint16(off.field()), 0, 4)
	return word, nil
}

// EncodeBI encodes a BI-format (immediate/absolute-address) branch. When
// absolute is true, only the low 8 bits of addr are stored (the target may
// be any 16-bit address; spec §4.1 defines this as truncation, not an
// error). When absolute is false, addr must already be the raw two's
// complement encoding of a signed displacement in -128..127, which always
// fits 8 bits.
func EncodeBI(absolute bool, cond BranchCond, addr uint16) (uint16, error) {
	var word uint16
	v := CreateBitView(&word)
	v.Write(typeBI, 12, 4)
	if absolute {
		v.Write(1, 11, 1)
	}
	v.Write(uint16(cond), 8, 3)
	v.Write(addr, 0, 8)
	return word, nil
}

// EncodeBR encodes a BR-format (register-pair) branch.
func EncodeBR(absolute bool, cond BranchCond, pair RegisterPair) (uint16, error) {
	if err := checkReg(pair.Hi); err != nil {
		return 0, err
	}
	if err := checkReg(pair.Lo); err != nil {
		return 0, err
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(typeBR, 12, 4)
	if absolute {
		v.Write(1, 11, 1)
	}
	v.Write(uint16(cond), 8, 3)
	v.Write(uint16(pair.Lo), 4, 4)
	v.Write(uint16(pair.Hi), 0, 4)
	return word, nil
}

// EncodeS encodes an S-format stack instruction. operand is the already
// resolved 8-bit field: a register id for push/pop/_reg variants, an
// immediate for the _imm variants.
func EncodeS(op StackOp, operand uint16) (uint16, error) {
	if !fitsUnsigned(operand, 8) {
		return 0, fmt.Errorf("%w: stack operand %d does not fit 8 bits", atlaserr.ErrImmediateOutOfRange, operand)
	}
	if op == STACK_POP && operand == 0 {
		return 0, fmt.Errorf("%w: pop r0", atlaserr.ErrWriteToR0)
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(typeS, 12, 4)
	v.Write(uint16(op), 8, 4)
	v.Write(operand, 0, 8)
	return word, nil
}

// EncodeP encodes a P-format peek/poke instruction.
func EncodeP(op PeekPokeOp, reg RegId, offset uint16) (uint16, error) {
	if err := checkReg(reg); err != nil {
		return 0, err
	}
	if !fitsUnsigned(offset, 8) {
		return 0, fmt.Errorf("%w: offset %d does not fit 8 bits", atlaserr.ErrImmediateOutOfRange, offset)
	}
	if reg == 0 && op == PP_PEEK {
		return 0, fmt.Errorf("%w: peek r0, #%d", atlaserr.ErrWriteToR0, offset)
	}

	typeField := uint16(typePPoke)
	if op == PP_PEEK {
		typeField = typePPeek
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(typeField, 12, 4)
	v.Write(uint16(reg), 8, 4)
	v.Write(offset, 0, 8)
	return word, nil
}

// EncodeX encodes an X-format system instruction.
func EncodeX(op XTypeOp, operand uint16) (uint16, error) {
	if !fitsUnsigned(operand, 8) {
		return 0, fmt.Errorf("%w: operand %d does not fit 8 bits", atlaserr.ErrImmediateOutOfRange, operand)
	}

	var word uint16
	v := CreateBitView(&word)
	v.Write(typeX, 12, 4)
	v.Write(uint16(op), 8, 4)
	v.Write(operand, 0, 8)
	return word, nil
}
