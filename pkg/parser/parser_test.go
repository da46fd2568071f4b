package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
)

func drain(t *testing.T, src string) ([]ParsedItem, *SymbolTable) {
	t.Helper()
	p := New(src, "test.s")
	var items []ParsedItem
	for {
		item, done, err := p.Next()
		require.NoError(t, err)
		if done {
			break
		}
		items = append(items, item)
	}
	return items, p.Table()
}

func TestParser_Nop(t *testing.T) {
	items, table := drain(t, "nop\n")
	require.Len(t, items, 1)
	assert.Equal(t, ItemInstruction, items[0].Kind)
	assert.Equal(t, isa.FormatA, items[0].Instruction.Format)
	assert.Equal(t, isa.RegId(0), items[0].Instruction.Dest)
	assert.Empty(t, table.Symbols)
}

func TestParser_LocalBranch(t *testing.T) {
	items, table := drain(t, "start: ldi r1, 1\n       beq start\n")
	require.Len(t, items, 2)

	assert.Equal(t, isa.FormatI, items[0].Instruction.Format)
	assert.Equal(t, isa.RegId(1), items[0].Instruction.Dest)

	assert.Equal(t, isa.FormatBI, items[1].Instruction.Format)
	assert.Equal(t, isa.OperandLabel, items[1].Instruction.Target.Kind)
	assert.Equal(t, "start", items[1].Instruction.Target.Label)

	sym, ok := table.Symbols["start"]
	require.True(t, ok)
	assert.Equal(t, SymbolLabel, sym.Kind)
	assert.EqualValues(t, 0, sym.Offset)
	assert.Equal(t, ".text", sym.Section)
}

func TestParser_WriteToR0Rejected(t *testing.T) {
	p := New("addi r0, 1\n", "test.s")
	_, _, err := p.Next()
	assert.ErrorContains(t, err, "write to r0")
}

func TestParser_ConstantDefinition(t *testing.T) {
	_, table := drain(t, "STACK_TOP: .imm 0x1000\n")
	sym, ok := table.Symbols["STACK_TOP"]
	require.True(t, ok)
	assert.Equal(t, SymbolConstant, sym.Kind)
	assert.EqualValues(t, 0x1000, sym.Constant)
}

func TestParser_GlobalAndImport(t *testing.T) {
	_, table := drain(t, ".global foo\n.import bar\nfoo: nop\n")
	assert.True(t, table.Exports["foo"])
	assert.True(t, table.Imports["bar"])
}

func TestParser_SectionChange(t *testing.T) {
	items, _ := drain(t, ".data\n.byte 1,2,3\n")
	require.Len(t, items, 2)
	assert.Equal(t, ItemSectionChange, items[0].Kind)
	assert.Equal(t, ".data", items[0].Section)
	assert.Equal(t, ItemData, items[1].Kind)
	assert.Equal(t, []byte{1, 2, 3}, items[1].Data)
}

func TestParser_MOffsetSpecialRegister(t *testing.T) {
	items, _ := drain(t, "ld r1, [r2, tr]\n")
	require.Len(t, items, 1)
	offset := items[0].Instruction.Offset
	assert.Equal(t, isa.MOffsetSpecialRegister, offset.Kind)
	assert.Equal(t, isa.PairTR, offset.Pair)
}

func TestParser_MOffsetImmediate(t *testing.T) {
	items, _ := drain(t, "ld r1, [r2 +3]\n")
	require.Len(t, items, 1)
	offset := items[0].Instruction.Offset
	assert.Equal(t, isa.MOffsetImmediate, offset.Kind)
	assert.EqualValues(t, 3, offset.Offset)
}

func TestParser_IncDecExpansion(t *testing.T) {
	items, _ := drain(t, "inc r1\ndec r1\n")
	require.Len(t, items, 2)
	assert.Equal(t, isa.IMM_ADDI, items[0].Instruction.Imm)
	assert.Equal(t, isa.IMM_SUBI, items[1].Instruction.Imm)
}

func TestParser_PopR0Rejected(t *testing.T) {
	p := New("pop r0\n", "test.s")
	_, _, err := p.Next()
	assert.ErrorContains(t, err, "write to r0")
}
