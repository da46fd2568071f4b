// Package linker merges assembler output object files into one flat
// image, per spec §4.6.
package linker

import (
	"fmt"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
)

// baseKey identifies one file's placement of one section within the
// merged output.
type baseKey struct {
	fileIndex int
	section   string
}

// Result is everything linking produces: the flat image plus the global
// symbol table it resolved along the way, keyed by name. The latter has
// no wire representation of its own — it exists purely so callers (the
// "ld -v" verbose listing) can label the disassembly without redoing the
// address arithmetic.
type Result struct {
	Image     []byte
	Addresses map[string]uint16
}

// Link merges objs (already parsed, in link order) into a single image.
// sectionOrder controls output order beyond ".text", which always comes
// first; it is derived from the order sections are first seen across objs.
func Link(objs []*objfile.ObjectFile) (Result, error) {
	merged := map[string][]byte{}
	var sectionOrder []string
	base := map[baseKey]uint32{}

	for fi, obj := range objs {
		for _, sec := range obj.Sections {
			if _, seen := merged[sec.Name]; !seen {
				merged[sec.Name] = nil
				sectionOrder = append(sectionOrder, sec.Name)
			}
			base[baseKey{fi, sec.Name}] = uint32(len(merged[sec.Name]))
			merged[sec.Name] = append(merged[sec.Name], sec.Data...)
		}
	}

	addresses := map[string]uint16{}
	for fi, obj := range objs {
		for _, sym := range obj.Symbols {
			if sym.Section == nil {
				continue // undefined external; nothing to contribute
			}
			var address uint16
			if *sym.Section == ".abs" {
				address = uint16(sym.Value)
			} else {
				b := base[baseKey{fi, *sym.Section}]
				address = uint16(b + sym.Value)
			}

			if sym.Binding == objfile.Global {
				if _, exists := addresses[sym.Name]; exists {
					return Result{}, fmt.Errorf("%w: %q defined in more than one input file", atlaserr.ErrDuplicateSymbol, sym.Name)
				}
			}
			addresses[sym.Name] = address
		}
	}

	for fi, obj := range objs {
		for _, reloc := range obj.Relocations {
			address, ok := addresses[reloc.Symbol]
			if !ok {
				return Result{}, fmt.Errorf("%w: %q", atlaserr.ErrUnresolvedLabel, reloc.Symbol)
			}
			finalValue := (uint32(address) + uint32(reloc.Addend)) & 0xFFFF
			if finalValue > 0xFF {
				return Result{}, fmt.Errorf("%w: relocated value %#x for %q does not fit the low byte of an instruction word", atlaserr.ErrEncoding, finalValue, reloc.Symbol)
			}

			patchOffset := base[baseKey{fi, reloc.Section}] + reloc.Offset
			data := merged[reloc.Section]
			if int(patchOffset)+1 >= len(data) {
				return Result{}, fmt.Errorf("%w: relocation offset %d out of bounds in section %q", atlaserr.ErrEncoding, patchOffset, reloc.Section)
			}
			data[patchOffset+1] = byte(finalValue)
		}
	}

	var image []byte
	if data, ok := merged[".text"]; ok {
		image = append(image, data...)
	}
	for _, name := range sectionOrder {
		if name == ".text" || name == ".abs" {
			continue
		}
		image = append(image, merged[name]...)
	}

	return Result{Image: image, Addresses: addresses}, nil
}
