// Package assembler drives the parser to completion and turns its output
// into a relocatable object file, per spec §4.4.
package assembler

import (
	"encoding/binary"
	"fmt"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/parser"
)

// Assemble compiles src (from sourceFile, used only for diagnostics) into
// an object file.
func Assemble(src string, sourceFile string) (*objfile.ObjectFile, error) {
	p := parser.New(src, sourceFile)

	// Pass 1: drain the parser into memory; this finishes building the
	// symbol table before Pass 2 resolves anything against it.
	var items []parser.ParsedItem
	for {
		item, done, err := p.Next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		items = append(items, item)
	}
	table := p.Table().Snapshot()

	// Pass 2: encode each item, resolving local operands against the
	// snapshot and recording a relocation for anything still unresolved.
	sectionData := map[string][]byte{}
	for _, name := range p.SectionOrder() {
		sectionData[name] = nil
	}
	currentSection := ".text"
	var relocations []objfile.Relocation

	for _, item := range items {
		switch item.Kind {
		case parser.ItemSectionChange:
			currentSection = item.Section

		case parser.ItemData:
			sectionData[currentSection] = append(sectionData[currentSection], item.Data...)

		case parser.ItemInstruction:
			offset := uint32(len(sectionData[currentSection]))
			word, unresolved, err := encodeWithRelocation(item.Instruction, table)
			if err != nil {
				return nil, err
			}
			if unresolved != "" {
				relocations = append(relocations, objfile.Relocation{
					Offset:  offset,
					Symbol:  unresolved,
					Addend:  0,
					Section: currentSection,
				})
			}
			var buf [2]byte
			binary.BigEndian.PutUint16(buf[:], word)
			sectionData[currentSection] = append(sectionData[currentSection], buf[:]...)
		}
	}

	var sections []objfile.Section
	for _, name := range p.SectionOrder() {
		sections = append(sections, objfile.Section{Name: name, Start: 0, Data: sectionData[name]})
	}

	symbols, err := materializeSymbols(table)
	if err != nil {
		return nil, err
	}

	return &objfile.ObjectFile{
		Version:     objfile.Version,
		Sections:    sections,
		Symbols:     symbols,
		Relocations: relocations,
	}, nil
}

// resolveValue looks up a label against the symbol table, returning its
// resolved 16-bit value. ok is false when the name is not locally defined
// (it must then become a relocation).
func resolveValue(name string, table *parser.SymbolTable) (value uint16, ok bool) {
	sym, found := table.Symbols[name]
	if !found {
		return 0, false
	}
	if sym.Kind == parser.SymbolConstant {
		return sym.Constant, true
	}
	return uint16(sym.Offset), true
}

// resolveOperand replaces a label operand with its resolved immediate
// value when possible. unresolved carries the label name when it isn't.
func resolveOperand(op isa.Operand, table *parser.SymbolTable) (resolved isa.Operand, unresolved string) {
	if op.Kind != isa.OperandLabel {
		return op, ""
	}
	if value, ok := resolveValue(op.Label, table); ok {
		return isa.ImmediateOperand(value), ""
	}
	return op, op.Label
}

// encodeWithRelocation performs local operand resolution and encoding for
// one instruction. It returns the symbol name that still needs a
// relocation, or "" if the instruction needed none.
func encodeWithRelocation(inst isa.ParsedInstruction, table *parser.SymbolTable) (uint16, string, error) {
	switch inst.Format {
	case isa.FormatA:
		w, err := isa.EncodeA(inst.Dest, inst.Source, inst.Alu)
		return w, "", err

	case isa.FormatI:
		operand, unresolved := resolveOperand(inst.Immediate, table)
		if unresolved != "" {
			w, err := isa.EncodeI(inst.Dest, inst.Imm, 0)
			return w, unresolved, err
		}
		w, err := isa.EncodeI(inst.Dest, inst.Imm, operand.Value)
		return w, "", err

	case isa.FormatM:
		w, err := isa.EncodeM(inst.Dest, inst.Base, inst.Offset, inst.Mem)
		return w, "", err

	case isa.FormatBI:
		operand, unresolved := resolveOperand(inst.Target, table)
		if unresolved != "" {
			w, err := isa.EncodeBI(inst.Absolute, inst.Cond, 0)
			return w, unresolved, err
		}
		w, err := isa.EncodeBI(inst.Absolute, inst.Cond, operand.Value)
		return w, "", err

	case isa.FormatBR:
		w, err := isa.EncodeBR(inst.Absolute, inst.Cond, inst.TargetPair)
		return w, "", err

	case isa.FormatS:
		switch inst.Stack {
		case isa.STACK_PUSH, isa.STACK_POP, isa.STACK_SUBSP_REG, isa.STACK_ADDSP_REG:
			w, err := isa.EncodeS(inst.Stack, uint16(inst.StackReg))
			return w, "", err
		default:
			w, err := isa.EncodeS(inst.Stack, inst.StackImm.Value)
			return w, "", err
		}

	case isa.FormatP:
		operand, unresolved := resolveOperand(inst.PeekOffset, table)
		if unresolved != "" {
			w, err := isa.EncodeP(inst.Peek, inst.Dest, 0)
			return w, unresolved, err
		}
		w, err := isa.EncodeP(inst.Peek, inst.Dest, operand.Value)
		return w, "", err

	case isa.FormatX:
		w, err := encodeX(inst)
		return w, "", err

	default:
		return 0, "", fmt.Errorf("%w: unrecognized instruction format", atlaserr.ErrEncoding)
	}
}

func encodeX(inst isa.ParsedInstruction) (uint16, error) {
	switch inst.XOperand.Kind {
	case isa.XOperandNone:
		return isa.EncodeX(inst.XOp, 0)
	case isa.XOperandImmediate:
		return isa.EncodeX(inst.XOp, uint16(inst.XOperand.Immediate))
	case isa.XOperandRegister:
		return isa.EncodeX(inst.XOp, uint16(inst.XOperand.Register))
	case isa.XOperandRegisters:
		return isa.EncodeX(inst.XOp, uint16(inst.XOperand.Pair.Hi)<<4|uint16(inst.XOperand.Pair.Lo))
	default:
		return 0, fmt.Errorf("%w: unrecognized X operand", atlaserr.ErrEncoding)
	}
}

// materializeSymbols converts the parser's accumulated table into the
// object file's symbol list, per the rule in spec §4.4.
func materializeSymbols(table *parser.SymbolTable) ([]objfile.Symbol, error) {
	var out []objfile.Symbol

	bindingOf := func(name string) objfile.Binding {
		if table.Exports[name] {
			return objfile.Global
		}
		return objfile.Local
	}

	for _, name := range table.DefinitionOrder {
		sym := table.Symbols[name]
		switch sym.Kind {
		case parser.SymbolLabel:
			section := sym.Section
			out = append(out, objfile.Symbol{Name: name, Value: sym.Offset, Section: &section, Binding: bindingOf(name)})
		case parser.SymbolConstant:
			abs := ".abs"
			out = append(out, objfile.Symbol{Name: name, Value: uint32(sym.Constant), Section: &abs, Binding: bindingOf(name)})
		}
	}

	for name := range table.Exports {
		if _, defined := table.Symbols[name]; !defined {
			return nil, fmt.Errorf("%w: exported symbol %q is not defined", atlaserr.ErrEncoding, name)
		}
	}

	for _, name := range table.ImportOrder {
		if _, defined := table.Symbols[name]; defined {
			continue
		}
		out = append(out, objfile.Symbol{Name: name, Value: 0, Section: nil, Binding: objfile.Global})
	}

	return out, nil
}
