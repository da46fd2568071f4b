package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/assembler"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
)

func TestLink_CrossFileCall(t *testing.T) {
	caller, err := assembler.Assemble(".import inc_r1\nbeq inc_r1\n", "caller.s")
	require.NoError(t, err)

	lib, err := assembler.Assemble(".global inc_r1\ninc_r1: addi r1, 1\n", "lib.s")
	require.NoError(t, err)

	result, err := Link([]*objfile.ObjectFile{caller, lib})
	require.NoError(t, err)

	// caller.text = [beq inc_r1] placeholder patched to point at offset 2
	// (start of lib's .text once merged), followed by lib's "addi r1, 1".
	assert.Equal(t, []byte{0x81, 0x02, 0x21, 0x01}, result.Image)
	assert.EqualValues(t, 2, result.Addresses["inc_r1"])
}

func TestLink_DuplicateGlobalFails(t *testing.T) {
	a, err := assembler.Assemble(".global shared\nshared: nop\n", "a.s")
	require.NoError(t, err)
	b, err := assembler.Assemble(".global shared\nshared: nop\n", "b.s")
	require.NoError(t, err)

	_, err = Link([]*objfile.ObjectFile{a, b})
	assert.ErrorContains(t, err, "shared")
	assert.ErrorContains(t, err, "more than one")
}

func TestLink_UnresolvedExternalFails(t *testing.T) {
	caller, err := assembler.Assemble(".import foo\nbeq foo\n", "caller.s")
	require.NoError(t, err)

	_, err = Link([]*objfile.ObjectFile{caller})
	assert.ErrorContains(t, err, "foo")
}

func TestLink_LocalLabelsAreMonotonicallyPlaced(t *testing.T) {
	a, err := assembler.Assemble("nop\nnop\n", "a.s") // 4 bytes of .text
	require.NoError(t, err)
	b, err := assembler.Assemble(".global second\nsecond: nop\n", "b.s")
	require.NoError(t, err)
	c, err := assembler.Assemble(".import second\nbeq second\n", "c.s")
	require.NoError(t, err)

	result, err := Link([]*objfile.ObjectFile{a, b, c})
	require.NoError(t, err)
	require.Len(t, result.Image, 8)
	// second's own nop sits at offset 4; c's relocation should patch to that.
	assert.Equal(t, byte(0x04), result.Image[7])
	assert.EqualValues(t, 4, result.Addresses["second"])
}

func TestLink_AbsoluteConstantAddressedAsIs(t *testing.T) {
	a, err := assembler.Assemble(".global TOP\nTOP: .imm 0x20\nbeq TOP\n", "a.s")
	require.NoError(t, err)

	result, err := Link([]*objfile.ObjectFile{a})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x20}, result.Image)
	assert.EqualValues(t, 0x20, result.Addresses["TOP"])
}
