// Command asm assembles MIMA assembly source against a compiled firmware's
// mnemonic table, producing a program a machine can load.
package main

import (
	"fmt"
	"os"

	"github.com/mimatoolkit/mima/asm"
	"github.com/mimatoolkit/mima/firmware"
	"github.com/spf13/cobra"
)

func main() {
	var output string

	rootCmd := &cobra.Command{
		Use:   "asm <firmware> <input>",
		Short: "Assemble a MIMA program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fwFile, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("can't open firmware: %w", err)
			}
			defer fwFile.Close()

			fw, err := firmware.Load(fwFile)
			if err != nil {
				return fmt.Errorf("can't load firmware: %w", err)
			}

			srcFile, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("can't open input: %w", err)
			}
			defer srcFile.Close()

			program, err := asm.Assemble(fw, srcFile)
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}

			return os.WriteFile(output, []byte(program), 0644)
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "out.mima", "Output file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "asm:", err)
		os.Exit(1)
	}
}
