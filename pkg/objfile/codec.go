package objfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

var magic = [4]byte{'A', 'T', 'O', 'B'}

// Write serializes obj to w in the binary layout of spec §4.5.
func Write(w io.Writer, obj *ObjectFile) error {
	bw := &byteWriter{w: w}

	bw.bytes(magic[:])
	bw.u32(obj.Version)
	bw.u32(uint32(len(obj.Sections)))
	bw.u32(uint32(len(obj.Symbols)))
	bw.u32(uint32(len(obj.Relocations)))

	for _, s := range obj.Sections {
		bw.name(s.Name)
		bw.u32(s.Start)
		bw.u32(uint32(len(s.Data)))
		bw.bytes(s.Data)
	}
	for _, s := range obj.Symbols {
		bw.name(s.Name)
		bw.u32(s.Value)
		if s.Section != nil {
			bw.u8(1)
			bw.name(*s.Section)
		} else {
			bw.u8(0)
		}
		bw.u8(uint8(s.Binding))
	}
	for _, r := range obj.Relocations {
		bw.u32(r.Offset)
		bw.name(r.Symbol)
		bw.i32(r.Addend)
		bw.name(r.Section)
	}

	return bw.err
}

// Read deserializes an ObjectFile from r.
func Read(r io.Reader) (*ObjectFile, error) {
	br := &byteReader{r: r}

	var gotMagic [4]byte
	br.bytes(gotMagic[:])
	if br.err == nil && gotMagic != magic {
		br.err = fmt.Errorf("%w: bad magic %q", atlaserr.ErrObjectFile, gotMagic[:])
	}
	if br.err != nil {
		return nil, br.err
	}

	obj := &ObjectFile{}
	obj.Version = br.u32()
	nSections := br.u32()
	nSymbols := br.u32()
	nRelocs := br.u32()
	if br.err != nil {
		return nil, wrapObjErr(br.err)
	}

	obj.Sections = make([]Section, 0, nSections)
	for i := uint32(0); i < nSections; i++ {
		name := br.name()
		start := br.u32()
		dataLen := br.u32()
		data := br.bytesN(dataLen)
		if br.err != nil {
			return nil, wrapObjErr(br.err)
		}
		obj.Sections = append(obj.Sections, Section{Name: name, Start: start, Data: data})
	}

	obj.Symbols = make([]Symbol, 0, nSymbols)
	for i := uint32(0); i < nSymbols; i++ {
		name := br.name()
		value := br.u32()
		flag := br.u8()
		var section *string
		if flag == 1 {
			s := br.name()
			section = &s
		}
		binding := Binding(br.u8())
		if br.err != nil {
			return nil, wrapObjErr(br.err)
		}
		obj.Symbols = append(obj.Symbols, Symbol{Name: name, Value: value, Section: section, Binding: binding})
	}

	obj.Relocations = make([]Relocation, 0, nRelocs)
	for i := uint32(0); i < nRelocs; i++ {
		offset := br.u32()
		symbol := br.name()
		addend := br.i32()
		section := br.name()
		if br.err != nil {
			return nil, wrapObjErr(br.err)
		}
		obj.Relocations = append(obj.Relocations, Relocation{Offset: offset, Symbol: symbol, Addend: addend, Section: section})
	}

	return obj, nil
}

func wrapObjErr(err error) error {
	return fmt.Errorf("%w: %s", atlaserr.ErrObjectFile, err)
}

// byteWriter accumulates the first error across many small writes so
// callers don't need to check err after every field.
type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) bytes(b []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(b)
}

func (bw *byteWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *byteWriter) i32(v int32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *byteWriter) u8(v uint8) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte{v})
}

func (bw *byteWriter) name(s string) {
	bw.u32(uint32(len(s)))
	bw.bytes([]byte(s))
}

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) bytes(b []byte) {
	if br.err != nil {
		return
	}
	_, br.err = io.ReadFull(br.r, b)
}

func (br *byteReader) bytesN(n uint32) []byte {
	b := make([]byte, n)
	br.bytes(b)
	return b
}

func (br *byteReader) u32() uint32 {
	if br.err != nil {
		return 0
	}
	var v uint32
	br.err = binary.Read(br.r, binary.LittleEndian, &v)
	return v
}

func (br *byteReader) i32() int32 {
	if br.err != nil {
		return 0
	}
	var v int32
	br.err = binary.Read(br.r, binary.LittleEndian, &v)
	return v
}

func (br *byteReader) u8() uint8 {
	if br.err != nil {
		return 0
	}
	var b [1]byte
	if _, err := io.ReadFull(br.r, b[:]); err != nil {
		br.err = err
		return 0
	}
	return b[0]
}

func (br *byteReader) name() string {
	n := br.u32()
	b := br.bytesN(n)
	if br.err != nil {
		return ""
	}
	if !utf8.Valid(b) {
		br.err = fmt.Errorf("%w: name is not valid UTF-8", atlaserr.ErrObjectFile)
		return ""
	}
	return string(b)
}

