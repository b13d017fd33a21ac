// Package core provides the cycle-accurate CPU core model.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64
}

// Core represents a cycle-accurate CPU core model.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory
	csr     *emu.CSRFile
}

// NewCore creates a new Core with the given register file, memory and CSR
// file.
func NewCore(regFile *emu.RegFile, memory *emu.Memory, csr *emu.CSRFile) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, csr),
		regFile:  regFile,
		memory:   memory,
		csr:      csr,
	}
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.Pipeline.SetPC(pc)
}

// PC returns the current program counter.
func (c *Core) PC() uint32 {
	return c.Pipeline.PC()
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Clock()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
	}
}

// Run executes the core for up to maxCycles cycles. There is no halt
// instruction in this ISA (§4.8), so the caller is always responsible
// for bounding execution.
func (c *Core) Run(maxCycles uint64) {
	c.Pipeline.RunCycles(maxCycles)
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
