// Command fwc compiles firmware written in register-transfer notation into
// the microcode a machine executes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mimatoolkit/mima/rtc"
	"github.com/spf13/cobra"
)

func main() {
	var (
		output   string
		useStock bool
		verbose  bool
	)

	rootCmd := &cobra.Command{
		Use:   "fwc [input]",
		Short: "Compile MIMA firmware from register-transfer notation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if useStock {
				// Mirrors the original tool's --default: it writes the
				// uncompiled stock source, to be compiled with a second
				// invocation of fwc.
				_, err := io.WriteString(out, rtc.StockFirmwareSource)
				return err
			}

			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			var diag io.Writer = io.Discard
			if verbose {
				diag = os.Stderr
			}
			fw, err := rtc.CompileVerbose(in, diag)
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}
			return fw.Save(out)
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().BoolVar(&useStock, "default", false, "Write the stock (uncompiled) firmware source")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a line per defined instruction to stderr")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fwc:", err)
		os.Exit(1)
	}
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
