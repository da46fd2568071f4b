package isa

import (
	"fmt"
	"strings"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

// Format identifies one of the seven wire instruction formats, plus the
// Virtual bucket for mnemonics that expand to a real instruction during
// parsing rather than encoding directly.
type Format int

const (
	FormatA Format = iota
	FormatI
	FormatM
	FormatBI
	FormatBR
	FormatS
	FormatP
	FormatX
	FormatVirtual
)

func (f Format) String() string {
	switch f {
	case FormatA:
		return "A"
	case FormatI:
		return "I"
	case FormatM:
		return "M"
	case FormatBI:
		return "BI"
	case FormatBR:
		return "BR"
	case FormatS:
		return "S"
	case FormatP:
		return "P"
	case FormatX:
		return "X"
	case FormatVirtual:
		return "Virtual"
	default:
		return "?"
	}
}

// Mnemonic is a single assembly-source mnemonic. Branch mnemonics are
// format-ambiguous: the operand shape chosen by the parser decides whether
// the instruction encodes as BI or BR (spec.md §4.3).
type Mnemonic struct {
	Name   string
	Format Format

	Alu    AluOp
	Imm    ImmOp
	Mem    MemOp
	Cond   BranchCond
	Stack  StackOp
	Peek   PeekPokeOp
	XOp    XTypeOp
}

var mnemonicTable = buildMnemonicTable()

func buildMnemonicTable() map[string]Mnemonic {
	t := make(map[string]Mnemonic)

	for op, name := range aluMnemonics {
		t[name] = Mnemonic{Name: name, Format: FormatA, Alu: op}
	}
	for op, name := range immMnemonics {
		t[name] = Mnemonic{Name: name, Format: FormatI, Imm: op}
	}
	for op, name := range memMnemonics {
		t[name] = Mnemonic{Name: name, Format: FormatM, Mem: op}
	}
	for cond, name := range branchMnemonics {
		// Registered once; the parser picks BI vs BR from the operand it
		// actually sees, so the table entry just carries the condition.
		t[name] = Mnemonic{Name: name, Format: FormatBI, Cond: cond}
	}
	for op, name := range xTypeMnemonics {
		t[name] = Mnemonic{Name: name, Format: FormatX, XOp: op}
	}

	t["push"] = Mnemonic{Name: "push", Format: FormatS, Stack: STACK_PUSH}
	t["pop"] = Mnemonic{Name: "pop", Format: FormatS, Stack: STACK_POP}
	// subsp/addsp pick the _imm or _reg StackOp variant from the operand
	// kind the parser sees; the table only needs to mark the format.
	t["subsp"] = Mnemonic{Name: "subsp", Format: FormatS, Stack: STACK_SUBSP_IMM}
	t["addsp"] = Mnemonic{Name: "addsp", Format: FormatS, Stack: STACK_ADDSP_IMM}

	t["peek"] = Mnemonic{Name: "peek", Format: FormatP, Peek: PP_PEEK}
	t["poke"] = Mnemonic{Name: "poke", Format: FormatP, Peek: PP_POKE}

	t["nop"] = Mnemonic{Name: "nop", Format: FormatVirtual}
	t["inc"] = Mnemonic{Name: "inc", Format: FormatVirtual}
	t["dec"] = Mnemonic{Name: "dec", Format: FormatVirtual}

	return t
}

// LookupMnemonic resolves a mnemonic name (case-insensitively). The bool is
// false when no such mnemonic exists.
func LookupMnemonic(name string) (Mnemonic, bool) {
	m, ok := mnemonicTable[strings.ToLower(name)]
	return m, ok
}

// ParseMnemonic is LookupMnemonic wrapped with the shared error taxonomy,
// for callers that want a single error return rather than an ok bool.
func ParseMnemonic(name string) (Mnemonic, error) {
	m, ok := LookupMnemonic(name)
	if !ok {
		return Mnemonic{}, fmt.Errorf("%w: %q is not a mnemonic", atlaserr.ErrParse, name)
	}
	return m, nil
}
