package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/assembler"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/disasm"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
)

var asmVerbose bool

var asmCmd = &cobra.Command{
	Use:   "asm INPUT OUTPUT",
	Short: "Assemble Atlas8 source into a relocatable object file",
	Args:  cobra.ExactArgs(2),
	Run:   runAsm,
}

func init() {
	asmCmd.Flags().BoolVarP(&asmVerbose, "verbose", "v", false, "print section/symbol/relocation tables and a disassembly listing")
}

func runAsm(cmd *cobra.Command, args []string) {
	inputPath, outputPath := args[0], args[1]

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fail(err)
	}

	obj, err := assembler.Assemble(string(src), inputPath)
	if err != nil {
		fail(err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		fail(err)
	}
	defer out.Close()

	if err := objfile.Write(out, obj); err != nil {
		fail(err)
	}

	verbose := asmVerbose
	if !cmd.Flags().Changed("verbose") {
		verbose = viper.GetBool("verbose")
	}
	if verbose {
		printObjectFile(obj)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	os.Exit(1)
}

func printObjectFile(obj *objfile.ObjectFile) {
	header := color.New(color.FgGreen, color.Bold)
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	labels := map[uint16]string{}
	for _, sym := range obj.Symbols {
		if sym.Section != nil && *sym.Section == ".text" {
			labels[uint16(sym.Value)] = sym.Name
		}
	}

	fmt.Fprintln(os.Stderr, header.Sprint("sections:"))
	for _, s := range obj.Sections {
		fmt.Fprintf(os.Stderr, "  %-10s %4d bytes\n", s.Name, len(s.Data))
		if s.Name == ".text" {
			for _, line := range disasm.Listing(s.Data, labels) {
				fmt.Fprintf(os.Stderr, "    %s\n", line)
			}
		}
	}

	fmt.Fprintln(os.Stderr, header.Sprint("symbols:"))
	for _, sym := range obj.Symbols {
		section := "<undefined>"
		if sym.Section != nil {
			section = *sym.Section
		}
		binding := "local"
		if sym.Binding == objfile.Global {
			binding = "global"
		}
		fmt.Fprintf(os.Stderr, "  %-16s %-7s %-10s value=%d\n", sym.Name, binding, section, sym.Value)
	}

	fmt.Fprintln(os.Stderr, header.Sprint("relocations:"))
	for _, r := range obj.Relocations {
		fmt.Fprintf(os.Stderr, "  %-10s +%-4d -> %s\n", r.Section, r.Offset, r.Symbol)
	}
}
