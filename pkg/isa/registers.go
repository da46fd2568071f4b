package isa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

// RegId identifies one of the 16 general purpose registers. Register 0 is
// hardwired to zero: reads yield 0, writes are silently discarded.
type RegId uint8

const TotalRegisters = 16

// Register aliases for the three special register pairs.
const (
	RegTR RegId = 10
	RegSP RegId = 12
	RegPC RegId = 14
)

// RegisterPair names the high/low register of a 16-bit special pair. The
// pair's 16-bit value packs as (hi<<8)|lo, where hi and lo are the runtime
// values held by the two registers.
type RegisterPair struct {
	Hi RegId
	Lo RegId
}

var (
	PairTR = RegisterPair{Hi: RegTR, Lo: RegTR + 1}
	PairSP = RegisterPair{Hi: RegSP, Lo: RegSP + 1}
	PairPC = RegisterPair{Hi: RegPC, Lo: RegPC + 1}
)

// String renders a register using its alias ("tr", "sp", "pc") when it
// names the high half of a special pair, and "rN" otherwise. Aliases refer
// to the pair as a whole by convention (the parser accepts "tr"/"sp"/"pc"
// as names for the pair's high register, per ParseRegister).
func (r RegId) String() string {
	switch r {
	case RegTR:
		return "tr"
	case RegSP:
		return "sp"
	case RegPC:
		return "pc"
	default:
		return fmt.Sprintf("r%d", uint8(r))
	}
}

// ParseRegister parses a register name: "r0".."r15", or one of the aliases
// "tr", "sp", "pc".
func ParseRegister(name string) (RegId, error) {
	switch strings.ToLower(name) {
	case "tr":
		return RegTR, nil
	case "sp":
		return RegSP, nil
	case "pc":
		return RegPC, nil
	}

	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "r") {
		return 0, fmt.Errorf("%w: %q is not a register name", atlaserr.ErrParse, name)
	}

	n, err := strconv.Atoi(lower[1:])
	if err != nil || n < 0 || n > 15 {
		return 0, fmt.Errorf("%w: %q is not a valid register (expected r0..r15, tr, sp, pc)", atlaserr.ErrParse, name)
	}

	return RegId(n), nil
}
