package isa

// ParsedInstruction is the parser's output for one assembly-source
// instruction line. Exactly one group of fields is meaningful, selected by
// Format; the rest are zero. Line and SourceFile record where the
// instruction came from; the encoder's error messages do not include them.
type ParsedInstruction struct {
	Format     Format
	Line       int
	SourceFile string

	// FormatA
	Dest   RegId
	Source RegId
	Alu    AluOp

	// FormatI (reuses Dest)
	Imm ImmOp
	Immediate Operand

	// FormatM (reuses Dest)
	Base   RegId
	Offset MOffset
	Mem    MemOp

	// FormatBI / FormatBR
	Absolute bool
	Cond     BranchCond
	Target   Operand       // FormatBI: branch target, immediate or label
	TargetPair RegisterPair // FormatBR: branch target register pair

	// FormatS
	Stack       StackOp
	StackReg    RegId   // push, pop, subsp_reg, addsp_reg
	StackImm    Operand // subsp_imm, addsp_imm

	// FormatP (reuses Dest as the register operand)
	Peek       PeekPokeOp
	PeekOffset Operand

	// FormatX
	XOp      XTypeOp
	XOperand XOperand

	// FormatVirtual
	Virtual VirtualOp
}

// VirtualOp names a mnemonic that expands into a real instruction during
// parsing rather than encoding directly (spec.md §4.3).
type VirtualOp int

const (
	VirtualNop VirtualOp = iota
	VirtualInc
	VirtualDec
)

// VirtualTarget is the register operand of inc/dec; unused for nop.
func (pi ParsedInstruction) VirtualTarget() RegId { return pi.Dest }
