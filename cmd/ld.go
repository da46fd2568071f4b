package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/disasm"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/ihex"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/linker"
	"github.com/TheCodeCurrents/atlas-toolchain/pkg/objfile"
)

var (
	ldOutputPath string
	ldVerbose    bool
	ldHexBase    uint16
)

var ldCmd = &cobra.Command{
	Use:   "ld INPUT...",
	Short: "Link one or more Atlas8 object files into a flat image",
	Args:  cobra.MinimumNArgs(1),
	Run:   runLd,
}

func init() {
	ldCmd.Flags().StringVarP(&ldOutputPath, "output", "o", "", "output image path (required)")
	ldCmd.Flags().BoolVarP(&ldVerbose, "verbose", "v", false, "print symbol/relocation tables and a disassembly of the linked image")
	ldCmd.Flags().Uint16Var(&ldHexBase, "base", 0, "base address for .hex output (default from config's hex-base)")
	ldCmd.MarkFlagRequired("output")
}

func runLd(cmd *cobra.Command, args []string) {
	var objs []*objfile.ObjectFile
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			fail(err)
		}
		obj, err := objfile.Read(f)
		f.Close()
		if err != nil {
			fail(err)
		}
		objs = append(objs, obj)
	}

	result, err := linker.Link(objs)
	if err != nil {
		fail(err)
	}

	var payload []byte
	if strings.HasSuffix(ldOutputPath, ".hex") {
		base := ldHexBase
		if !cmd.Flags().Changed("base") {
			base = uint16(viper.GetUint32("hex-base"))
		}
		payload = []byte(ihex.Encode(result.Image, base))
	} else {
		payload = result.Image
	}

	if err := os.WriteFile(ldOutputPath, payload, 0o644); err != nil {
		fail(err)
	}

	verbose := ldVerbose
	if !cmd.Flags().Changed("verbose") {
		verbose = viper.GetBool("verbose")
	}
	if verbose {
		printLinkListing(objs, args, ldOutputPath, result)
	}
}

// printLinkListing prints a one-line summary of the merged image, its
// symbol and relocation tables, and a label-aware disassembly. Unlike
// asm.go's printObjectFile it prints no per-section table.
func printLinkListing(objs []*objfile.ObjectFile, inputs []string, outputPath string, result linker.Result) {
	header := color.New(color.FgGreen, color.Bold)
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	fmt.Fprintf(os.Stderr, "linked %d input file(s) into %s (%d bytes)\n", len(objs), outputPath, len(result.Image))

	names := make([]string, 0, len(result.Addresses))
	for name := range result.Addresses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return result.Addresses[names[i]] < result.Addresses[names[j]] })

	fmt.Fprintln(os.Stderr, header.Sprint("symbols:"))
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-16s 0x%04x\n", name, result.Addresses[name])
	}

	fmt.Fprintln(os.Stderr, header.Sprint("relocations:"))
	for i, obj := range objs {
		for _, r := range obj.Relocations {
			fmt.Fprintf(os.Stderr, "  %-10s %-10s +%-4d -> %s\n", inputs[i], r.Section, r.Offset, r.Symbol)
		}
	}

	fmt.Fprintln(os.Stderr, header.Sprint("disassembly:"))
	labels := map[uint16]string{}
	for name, addr := range result.Addresses {
		labels[addr] = name
	}
	for _, line := range disasm.Listing(result.Image, labels) {
		fmt.Fprintf(os.Stderr, "  %s\n", line)
	}
}
