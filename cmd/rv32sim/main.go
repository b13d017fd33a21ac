// Package main provides the command-line entry point for rv32sim.
//
// rv32sim loads a flat little-endian word-stream RV32I program and
// clocks it through the five-stage pipeline in timing/pipeline.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/loader"
	"github.com/sarchlab/m2sim/timing/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "rv32sim",
		Short: "RV32I five-stage pipeline simulator",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a per-tick PC/IF-ID/ID-EX trace")

	root.AddCommand(newRunCmd(&verbose), newStepCmd(&verbose))
	return root
}

func newRunCmd(verbose *bool) *cobra.Command {
	var maxCycles uint64

	cmd := &cobra.Command{
		Use:   "run <program.bin>",
		Short: "Run a program until it reaches the cycle ceiling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, regFile, _, csr, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			var n uint64
			for n = 0; n < maxCycles; n++ {
				pipe.Clock()
				if *verbose {
					printTrace(cmd.OutOrStdout(), pipe)
				}
			}

			printDump(cmd.OutOrStdout(), pipe, regFile, csr)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 100000, "maximum number of cycles to run")

	return cmd
}

func newStepCmd(verbose *bool) *cobra.Command {
	var ticks uint64

	cmd := &cobra.Command{
		Use:   "step <program.bin>",
		Short: "Clock a fixed number of ticks and dump state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, regFile, _, csr, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			var n uint64
			for n = 0; n < ticks; n++ {
				pipe.Clock()
				if *verbose {
					printTrace(cmd.OutOrStdout(), pipe)
				}
			}

			printDump(cmd.OutOrStdout(), pipe, regFile, csr)
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&ticks, "num-ticks", "n", 1, "number of ticks to clock")

	return cmd
}

func loadProgram(path string) (*pipeline.Pipeline, *emu.RegFile, *emu.Memory, *emu.CSRFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	regFile := &emu.RegFile{}
	mem := emu.NewMemory()
	csr := emu.NewCSRFile()

	if _, err := loader.LoadInto(f, mem, 0); err != nil {
		return nil, nil, nil, nil, err
	}

	pipe := pipeline.NewPipeline(regFile, mem, csr)
	return pipe, regFile, mem, csr, nil
}

func printTrace(w io.Writer, pipe *pipeline.Pipeline) {
	ifid := pipe.GetIFID()
	idex := pipe.GetIDEX()
	fmt.Fprintf(w, "pc=0x%08X if/id.valid=%v id/ex.valid=%v\n", pipe.PC(), ifid.Valid, idex.Valid)
}

func printDump(w io.Writer, pipe *pipeline.Pipeline, regFile *emu.RegFile, csr *emu.CSRFile) {
	stats := pipe.Stats()
	fmt.Fprintf(w, "cycles=%d instructions=%d stalls=%d flushes=%d pc=0x%08X\n",
		stats.Cycles, stats.Instructions, stats.Stalls, stats.Flushes, pipe.PC())

	for i := uint8(0); i < 32; i++ {
		fmt.Fprintf(w, "x%-2d = 0x%08X", i, regFile.ReadReg(i))
		if i%4 == 3 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, "  ")
		}
	}

	fmt.Fprintf(w, "mepc=0x%08X mcause=0x%08X mtval=0x%08X mtvec=0x%08X\n",
		csr.Read(emu.CSRMEPC), csr.Read(emu.CSRMCause), csr.Read(emu.CSRMTVal), csr.Read(emu.CSRMTVec))
}
