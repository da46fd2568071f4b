package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
)

func textSection(t *testing.T, obj *objfile.ObjectFile) []byte {
	t.Helper()
	for _, s := range obj.Sections {
		if s.Name == ".text" {
			return s.Data
		}
	}
	t.Fatalf("no .text section in object file")
	return nil
}

func TestAssemble_Nop(t *testing.T) {
	obj, err := Assemble("nop\n", "s1.s")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, textSection(t, obj))
	assert.Empty(t, obj.Symbols)
	assert.Empty(t, obj.Relocations)
}

func TestAssemble_Ldi(t *testing.T) {
	obj, err := Assemble("ldi r1, 0x55\n", "s2.s")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x55}, textSection(t, obj))
}

func TestAssemble_LocalBranch(t *testing.T) {
	obj, err := Assemble("start: ldi r1, 1\nbeq start\n", "s3.s")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x01, 0x81, 0x00}, textSection(t, obj))
	assert.Empty(t, obj.Relocations)
}

func TestAssemble_CrossFileImportProducesRelocation(t *testing.T) {
	obj, err := Assemble(".import inc_r1\nbeq inc_r1\n", "caller.s")
	require.NoError(t, err)
	require.Len(t, obj.Relocations, 1)
	reloc := obj.Relocations[0]
	assert.Equal(t, uint32(0), reloc.Offset)
	assert.Equal(t, "inc_r1", reloc.Symbol)
	assert.Equal(t, ".text", reloc.Section)

	var found bool
	for _, sym := range obj.Symbols {
		if sym.Name == "inc_r1" {
			found = true
			assert.Nil(t, sym.Section)
			assert.Equal(t, objfile.Global, sym.Binding)
		}
	}
	assert.True(t, found)
}

func TestAssemble_ExportedButUndefinedFails(t *testing.T) {
	_, err := Assemble(".global missing\n", "bad.s")
	assert.ErrorContains(t, err, "is not defined")
}

func TestAssemble_GlobalLabelExported(t *testing.T) {
	obj, err := Assemble(".global inc_r1\ninc_r1: addi r1, 1\n", "lib.s")
	require.NoError(t, err)
	require.Len(t, obj.Symbols, 1)
	sym := obj.Symbols[0]
	assert.Equal(t, "inc_r1", sym.Name)
	assert.Equal(t, objfile.Global, sym.Binding)
	require.NotNil(t, sym.Section)
	assert.Equal(t, ".text", *sym.Section)
	assert.EqualValues(t, 0, sym.Value)
}

func TestAssemble_ConstantSymbolGoesToAbsSection(t *testing.T) {
	obj, err := Assemble("STACK_TOP: .imm 0x2000\n", "const.s")
	require.NoError(t, err)
	require.Len(t, obj.Symbols, 1)
	sym := obj.Symbols[0]
	require.NotNil(t, sym.Section)
	assert.Equal(t, ".abs", *sym.Section)
	assert.EqualValues(t, 0x2000, sym.Value)
}

func TestAssemble_SectionOrderMatchesFirstAppearance(t *testing.T) {
	// The parser always starts in .text, so it leads section order even
	// when the source switches away from it before emitting anything.
	obj, err := Assemble(".data\n.byte 1\n.text\nnop\n.bss\n.byte 0\n", "order.s")
	require.NoError(t, err)
	var names []string
	for _, s := range obj.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{".text", ".data", ".bss"}, names)
}
