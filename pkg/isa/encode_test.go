package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeA_NopEncodesToZero(t *testing.T) {
	word, err := EncodeA(0, 0, ALU_ADD)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0000), word)
}

func TestEncodeA_WriteToR0Rejected(t *testing.T) {
	_, err := EncodeA(0, 1, ALU_MOV)
	assert.ErrorContains(t, err, "write to r0")
}

func TestEncodeA_FlagOnlyAllowsR0Dest(t *testing.T) {
	_, err := EncodeA(0, 1, ALU_CMP)
	assert.NoError(t, err)
}

func TestEncodeI_LDI(t *testing.T) {
	word, err := EncodeI(1, IMM_LDI, 0x55)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1155), word)
}

func TestEncodeI_ImmediateOutOfRange(t *testing.T) {
	_, err := EncodeI(1, IMM_LDI, 0x100)
	assert.ErrorContains(t, err, "immediate out of range")
}

func TestEncodeBI_LocalBranch(t *testing.T) {
	word, err := EncodeBI(true, COND_EQ, 0x00)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8100), word)
}

func TestDecode_RoundTripA(t *testing.T) {
	word, err := EncodeA(3, 4, ALU_ADD)
	require.NoError(t, err)
	dec, err := Decode(word)
	require.NoError(t, err)
	assert.Equal(t, FormatA, dec.Format)
	assert.Equal(t, RegId(3), dec.Dest)
	assert.Equal(t, RegId(4), dec.Source)
	assert.Equal(t, ALU_ADD, dec.Alu)
}

func TestDecode_RoundTripI(t *testing.T) {
	word, err := EncodeI(2, IMM_ADDI, 0x7F)
	require.NoError(t, err)
	dec, err := Decode(word)
	require.NoError(t, err)
	assert.Equal(t, FormatI, dec.Format)
	assert.Equal(t, RegId(2), dec.Dest)
	assert.Equal(t, IMM_ADDI, dec.Imm)
	assert.Equal(t, uint16(0x7F), dec.Immediate)
}

func TestDecode_UnknownTypeField(t *testing.T) {
	_, err := Decode(0xE000)
	assert.ErrorContains(t, err, "encoding error")
}

func TestMOffset_SpecialRegisterCodes(t *testing.T) {
	off := mOffsetFromField(0x8) // -8
	assert.Equal(t, MOffsetSpecialRegister, off.Kind)
	assert.Equal(t, PairTR, off.Pair)

	off = mOffsetFromField(0x9) // -7
	assert.Equal(t, PairSP, off.Pair)

	off = mOffsetFromField(0xA) // -6
	assert.Equal(t, PairPC, off.Pair)
}

func TestMOffset_ImmediateCodes(t *testing.T) {
	off := mOffsetFromField(0x7) // +7
	assert.Equal(t, MOffsetImmediate, off.Kind)
	assert.EqualValues(t, 7, off.Offset)
}

func TestParseRegister_Aliases(t *testing.T) {
	reg, err := ParseRegister("tr")
	require.NoError(t, err)
	assert.Equal(t, RegTR, reg)

	reg, err = ParseRegister("R7")
	require.NoError(t, err)
	assert.Equal(t, RegId(7), reg)

	_, err = ParseRegister("r16")
	assert.Error(t, err)
}
