// Package disasm renders decoded Atlas8 instruction words as assembly
// text. It is a thin presentation layer over isa.Decode (spec §1: purely a
// presentation layer over the decoder, not part of the core redesign).
package disasm

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
)

// colorEnabled mirrors the teacher's NO_COLOR handling: disabled whenever
// the environment variable is set, regardless of value.
func colorEnabled() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}

func paint(c *color.Color, s string) string {
	if !colorEnabled() {
		return s
	}
	return c.Sprint(s)
}

var (
	mnemonicColor = color.New(color.FgCyan, color.Bold)
	registerColor = color.New(color.FgYellow)
	numberColor   = color.New(color.FgMagenta)
	labelColor    = color.New(color.FgGreen, color.Bold)
)

// One renders a single decoded instruction as a line of assembly text.
func One(dec isa.DecodedInstruction) string {
	switch dec.Format {
	case isa.FormatA:
		return fmt.Sprintf("%s %s, %s", paint(mnemonicColor, dec.Alu.String()),
			paint(registerColor, dec.Dest.String()), paint(registerColor, dec.Source.String()))

	case isa.FormatI:
		return fmt.Sprintf("%s %s, %s", paint(mnemonicColor, dec.Imm.String()),
			paint(registerColor, dec.Dest.String()), paint(numberColor, fmt.Sprintf("0x%02X", dec.Immediate)))

	case isa.FormatM:
		return fmt.Sprintf("%s %s, [%s%s]", paint(mnemonicColor, dec.Mem.String()),
			paint(registerColor, dec.Dest.String()), paint(registerColor, dec.Base.String()),
			formatMOffset(dec.Offset))

	case isa.FormatBI:
		mnem := "b" + condSuffix(dec.Cond)
		target := fmt.Sprintf("0x%02X", dec.Target)
		if !dec.Absolute {
			target = fmt.Sprintf("%+d", int8(dec.Target))
		}
		return fmt.Sprintf("%s %s", paint(mnemonicColor, mnem), paint(numberColor, target))

	case isa.FormatBR:
		mnem := "b" + condSuffix(dec.Cond)
		return fmt.Sprintf("%s %s, %s", paint(mnemonicColor, mnem),
			paint(registerColor, dec.TargetPair.Hi.String()), paint(registerColor, dec.TargetPair.Lo.String()))

	case isa.FormatS:
		return formatStack(dec)

	case isa.FormatP:
		mnem := "poke"
		if dec.Peek == isa.PP_PEEK {
			mnem = "peek"
		}
		return fmt.Sprintf("%s %s, 0x%02X", paint(mnemonicColor, mnem),
			paint(registerColor, dec.PeekReg.String()), dec.PeekOffset)

	case isa.FormatX:
		return formatX(dec)

	default:
		return "???"
	}
}

// Listing disassembles data (big-endian 16-bit instruction words) into
// assembly-text lines, printing the name above the instruction at its
// address whenever labels holds one. A trailing odd byte is rendered as a
// raw .byte line rather than silently dropped.
func Listing(data []byte, labels map[uint16]string) []string {
	var lines []string
	for off := 0; off+1 < len(data); off += 2 {
		addr := uint16(off)
		if name, ok := labels[addr]; ok {
			lines = append(lines, fmt.Sprintf("%s:", paint(labelColor, name)))
		}

		word := uint16(data[off])<<8 | uint16(data[off+1])
		text := "???"
		if dec, err := isa.Decode(word); err == nil {
			text = One(dec)
		}
		lines = append(lines, fmt.Sprintf("%04x: %04x  %s", addr, word, text))
	}
	if len(data)%2 != 0 {
		last := len(data) - 1
		lines = append(lines, fmt.Sprintf("%04x: %02x    .byte 0x%02x", last, data[last], data[last]))
	}
	return lines
}

func condSuffix(c isa.BranchCond) string {
	s := c.String()
	return strings.TrimPrefix(s, "b")
}

func formatMOffset(off isa.MOffset) string {
	if off.Kind == isa.MOffsetSpecialRegister {
		switch off.Pair {
		case isa.PairTR:
			return ", tr"
		case isa.PairSP:
			return ", sp"
		case isa.PairPC:
			return ", pc"
		}
	}
	return fmt.Sprintf("%+d", off.Offset)
}

func formatStack(dec isa.DecodedInstruction) string {
	switch dec.Stack {
	case isa.STACK_PUSH:
		return fmt.Sprintf("%s %s", paint(mnemonicColor, "push"), paint(registerColor, isa.RegId(dec.StackOperand).String()))
	case isa.STACK_POP:
		return fmt.Sprintf("%s %s", paint(mnemonicColor, "pop"), paint(registerColor, isa.RegId(dec.StackOperand).String()))
	case isa.STACK_SUBSP_IMM:
		return fmt.Sprintf("%s 0x%02X", paint(mnemonicColor, "subsp"), dec.StackOperand)
	case isa.STACK_SUBSP_REG:
		return fmt.Sprintf("%s %s", paint(mnemonicColor, "subsp"), paint(registerColor, isa.RegId(dec.StackOperand).String()))
	case isa.STACK_ADDSP_IMM:
		return fmt.Sprintf("%s 0x%02X", paint(mnemonicColor, "addsp"), dec.StackOperand)
	case isa.STACK_ADDSP_REG:
		return fmt.Sprintf("%s %s", paint(mnemonicColor, "addsp"), paint(registerColor, isa.RegId(dec.StackOperand).String()))
	default:
		return "???"
	}
}

func formatX(dec isa.DecodedInstruction) string {
	mnem := paint(mnemonicColor, dec.XOp.String())
	return fmt.Sprintf("%s %s", mnem, paint(numberColor, fmt.Sprintf("0x%02X", dec.XOperand)))
}
