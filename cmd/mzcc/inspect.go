package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mzcc/pkg/mz"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.exe>",
	Short: "Decode and print the header of an executable image",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectExecution,
}

var (
	fieldColor = color.New(color.FgCyan)
	badColor   = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
)

func inspectExecution(cmd *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	h, ok := mz.ParseHeader(buf)
	if !ok {
		return fmt.Errorf("%s is not an MZ executable", args[0])
	}

	field := func(name string, value any) {
		fmt.Printf("%s %v\n", fieldColor.Sprintf("%-24s", name), value)
	}

	field("signature", fmt.Sprintf("0x%04X", h.Signature))
	field("bytes on last page", h.BytesOnLastPage)
	field("pages in file", h.PagesInFile)
	field("relocations", h.RelocationCount)
	field("header paragraphs", h.HeaderParagraphs)
	field("min extra paragraphs", h.MinExtraParas)
	field("max extra paragraphs", h.MaxExtraParas)
	field("initial SS:SP", fmt.Sprintf("%04X:%04X", h.InitialSS, h.InitialSP))
	field("initial CS:IP", fmt.Sprintf("%04X:%04X", h.InitialCS, h.InitialIP))
	field("checksum", fmt.Sprintf("0x%04X", h.Checksum))
	field("reloc table offset", fmt.Sprintf("0x%04X", h.RelocTableOffset))
	field("overlay number", h.OverlayNumber)
	field("implied file size", h.ImageSize())
	field("actual file size", len(buf))

	if h.ImageSize() != len(buf) {
		badColor.Println("size mismatch: header pages disagree with the file length")
	}

	relocs, truncated := mz.ReadRelocations(h, buf)
	for i, r := range relocs {
		fmt.Printf("  reloc %-3d %04X:%04X\n", i, r.Segment, r.Offset)
	}
	if truncated {
		badColor.Printf("relocation table truncated: %d of %d entries readable\n", len(relocs), h.RelocationCount)
	}

	if mz.VerifyChecksum(buf) {
		okColor.Println("checksum: valid (word sum is zero)")
	} else {
		fmt.Println("checksum: not applied or stale")
	}
	return nil
}
