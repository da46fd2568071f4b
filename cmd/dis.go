package cmd

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/disasm"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/isa"
)

var disCmd = &cobra.Command{
	Use:   "dis INPUT",
	Short: "Disassemble a raw Atlas8 binary image",
	Args:  cobra.ExactArgs(1),
	Run:   runDis,
}

func runDis(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fail(err)
	}

	for off := 0; off+1 < len(data); off += 2 {
		word := binary.BigEndian.Uint16(data[off:])
		dec, err := isa.Decode(word)
		if err != nil {
			fmt.Printf("%04x: %04x  ???\n", off, word)
			continue
		}
		fmt.Printf("%04x: %04x  %s\n", off, word, disasm.One(dec))
	}
}
