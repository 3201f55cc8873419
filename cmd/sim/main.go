// Command sim runs a compiled firmware against an assembled program: the
// fetch/decode/execute cycle engine described in package vm.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mimatoolkit/mima/config"
	"github.com/mimatoolkit/mima/firmware"
	"github.com/mimatoolkit/mima/numeric"
	"github.com/mimatoolkit/mima/vm"
	"github.com/spf13/cobra"
)

// consoleLogger prints one line per decoded instruction: the cycle count,
// the instruction's address, any label at that address, its opcode and
// mnemonic, and its parameter (with the parameter's label, when the
// instruction actually treats it as an address). numberFormat controls
// how the parameter is rendered: "hex", "dec", or "both".
type consoleLogger struct {
	numberFormat string
}

func (c consoleLogger) LogInstruction(m *vm.Machine, iar uint32, instr firmware.Instruction, param uint32) {
	label := ""
	if labels := m.LabelsAt(iar); len(labels) > 0 {
		label = labels[0]
	}

	paramLabel := ""
	if instr.Opcode > 0 && instr.Opcode <= 0xF {
		if labels := m.LabelsAt(param); len(labels) > 0 {
			paramLabel = fmt.Sprintf(" (%s)", labels[0])
		}
	}

	fmt.Printf("%6d [%#08x] %10s (%#04x)[%-7s] %s%s\n",
		m.CycleCount, iar, label, instr.Opcode, instr.Mnemonic, c.formatParam(param), paramLabel)
}

func (c consoleLogger) formatParam(param uint32) string {
	switch c.numberFormat {
	case "dec":
		return fmt.Sprintf("%8d", param)
	case "both":
		return fmt.Sprintf("%#8x (%d)", param, param)
	default:
		return fmt.Sprintf("%#8x", param)
	}
}

func main() {
	var (
		startLoc   string
		configPath string
		maxCycles  uint64
		presets    []string
		quiet      bool
	)

	rootCmd := &cobra.Command{
		Use:   "sim <firmware> <input>",
		Short: "Run a compiled MIMA firmware against an assembled program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configPath)
			if err != nil {
				return err
			}
			if maxCycles == 0 {
				maxCycles = cfg.Execution.MaxCycles
			}

			fwFile, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("can't open firmware: %w", err)
			}
			defer fwFile.Close()
			fw, err := firmware.Load(fwFile)
			if err != nil {
				return fmt.Errorf("can't load firmware: %w", err)
			}

			m := vm.NewMachine(fw)

			progFile, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("can't open input: %w", err)
			}
			defer progFile.Close()
			if err := m.Load(progFile); err != nil {
				return fmt.Errorf("can't load program: %w", err)
			}

			for _, preset := range presets {
				name, value, ok := strings.Cut(preset, "=")
				if !ok {
					return fmt.Errorf("invalid -m value %q, want NAME=VALUE", preset)
				}
				if err := m.MemoryPreset(name, value); err != nil {
					return fmt.Errorf("preset %q: %w", preset, err)
				}
			}

			explicitStart := cmd.Flags().Changed("start")
			if startLoc == "" {
				startLoc = cfg.Execution.DefaultEntry
			}
			if startLoc != "" {
				addr, ok := numeric.ParseNum(startLoc)
				if !ok {
					a, labelOk := m.LabelAddress(startLoc)
					switch {
					case labelOk:
						addr = int32(a)
					case explicitStart:
						return fmt.Errorf("can't find start location %q", startLoc)
					default:
						// Config's default_entry doesn't name a label in this
						// program; fall back to the machine's reset state.
						addr = -1
					}
				}
				if addr >= 0 {
					m.Jump(uint32(addr))
				}
			}

			trace := cfg.Execution.EnableTrace
			if cmd.Flags().Changed("quiet") {
				trace = !quiet
			}
			var logger vm.Logger = consoleLogger{numberFormat: cfg.Display.NumberFormat}
			if !trace {
				logger = vm.NoLogging{}
			}

			for m.CycleCount < maxCycles {
				state, err := m.Cycle(logger)
				if err != nil {
					return fmt.Errorf("cycle %d: %w", m.CycleCount, err)
				}
				if state != vm.Running {
					fmt.Println(state)
					break
				}
			}
			if m.CycleCount >= maxCycles {
				fmt.Fprintf(os.Stderr, "sim: stopped after %d cycles without halting\n", maxCycles)
			}

			dumpLabels(m)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&startLoc, "start", "s", "", "Start location, given as a number or label")
	rootCmd.Flags().StringVar(&configPath, "config", config.GetConfigPath(), "Path to the TOML config file")
	rootCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Cycle ceiling (0 uses the config default)")
	rootCmd.Flags().StringArrayVarP(&presets, "memory", "m", nil, "Preset a memory cell: NAME=VALUE (repeatable)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the per-instruction trace (overrides the config's enable_trace)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sim:", err)
		os.Exit(1)
	}
}

// dumpLabels prints the final value of every labeled memory cell, sorted by
// address, matching the end-of-run report the original tool prints.
func dumpLabels(m *vm.Machine) {
	type entry struct {
		label   string
		address uint32
	}
	var entries []entry
	for label, address := range m.Labels() {
		entries = append(entries, entry{label, address})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].address < entries[j].address })

	for _, e := range entries {
		data := m.GetMemory(e.address)
		fmt.Printf("  Cell %#08x %10s: %#8x (%d)\n", e.address, e.label, data, data)
	}
}
