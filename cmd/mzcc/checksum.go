package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mzcc/pkg/mz"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <file.exe>",
	Short: "Verify or apply the image checksum",
	Long:  "Verify that the word sum over the image is zero. With --apply, rewrite the checksum field in place first.",
	Args:  cobra.ExactArgs(1),
	RunE:  checksumExecution,
}

func checksumExecution(cmd *cobra.Command, args []string) error {
	apply, err := cmd.Flags().GetBool("apply")
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if !mz.IsValidExecutable(buf) {
		return fmt.Errorf("%s is not an MZ executable", args[0])
	}

	if apply {
		mz.ApplyChecksum(buf)
		if err := os.WriteFile(args[0], buf, 0644); err != nil {
			return err
		}
		h, _ := mz.ParseHeader(buf)
		fmt.Printf("checksum applied: 0x%04X\n", h.Checksum)
		return nil
	}

	if mz.VerifyChecksum(buf) {
		fmt.Println("checksum valid")
		return nil
	}
	return fmt.Errorf("checksum invalid: word sum over %s is non-zero", args[0])
}

func init() {
	checksumCmd.Flags().Bool("apply", false, "store the correct checksum into the file")
}
