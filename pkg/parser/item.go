package parser

import "github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"

// ItemKind discriminates the ParsedItem variants.
type ItemKind int

const (
	ItemInstruction ItemKind = iota
	ItemData
	ItemSectionChange
)

// ParsedItem is one unit of the parser's output stream: an instruction to
// encode, a run of raw data bytes, or a section switch.
type ParsedItem struct {
	Kind ItemKind

	Instruction isa.ParsedInstruction
	Data        []byte
	Section     string
}
