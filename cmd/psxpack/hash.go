package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/pkg/checksum"
)

var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the MD5, SHA-1 and CRC32 of a disc image",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	sums, err := checksum.File(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(sums)
		return nil
	}

	fmt.Printf("File:   %s\n", args[0])
	fmt.Printf("Size:   %s (%d bytes)\n", humanize.IBytes(uint64(sums.Size)), sums.Size)
	fmt.Printf("MD5:    %s\n", sums.MD5)
	fmt.Printf("SHA1:   %s\n", sums.SHA1)
	fmt.Printf("CRC32:  %s\n", sums.CRC32)
	return nil
}
