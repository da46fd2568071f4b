package objfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_FullObjectFile(t *testing.T) {
	textSection := ".text"
	absSection := ".abs"

	obj := &ObjectFile{
		Version: Version,
		Sections: []Section{
			{Name: ".text", Start: 0, Data: []byte{0x11, 0x01, 0x81, 0x00}},
			{Name: ".data", Start: 0, Data: []byte{1, 2, 3}},
		},
		Symbols: []Symbol{
			{Name: "start", Value: 0, Section: &textSection, Binding: Local},
			{Name: "inc_r1", Value: 2, Section: &textSection, Binding: Global},
			{Name: "STACK_TOP", Value: 0x1000, Section: &absSection, Binding: Local},
			{Name: "foo", Value: 0, Section: nil, Binding: Global},
		},
		Relocations: []Relocation{
			{Offset: 2, Symbol: "foo", Addend: 0, Section: ".text"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, obj))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, obj, got)
}

func TestRead_BadMagicRejected(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("XXXX")))
	assert.ErrorContains(t, err, "bad magic")
}

func TestRead_InvalidUTF8NameRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	bw := &byteWriter{w: &buf}
	bw.u32(1) // version
	bw.u32(1) // n_sections
	bw.u32(0) // n_symbols
	bw.u32(0) // n_relocations
	bw.u32(2)
	bw.bytes([]byte{0xFF, 0xFE}) // invalid UTF-8 name
	bw.u32(0)                    // start
	bw.u32(0)                    // data len
	require.NoError(t, bw.err)

	_, err := Read(&buf)
	assert.ErrorContains(t, err, "not valid UTF-8")
}

func TestRoundTrip_EmptyObjectFile(t *testing.T) {
	obj := &ObjectFile{Version: Version}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, obj))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, obj.Version, got.Version)
	assert.Empty(t, got.Sections)
	assert.Empty(t, got.Symbols)
	assert.Empty(t, got.Relocations)
}
