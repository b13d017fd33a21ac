// Package pipeline implements a classical five-stage in-order RV32I
// pipeline:
//   - Fetch (IF): read the instruction word at PC from memory
//   - Decode (ID): extract fields, sign-extend the immediate, read registers
//   - Execute (EX): resolve forwarding, run the ALU, evaluate branches/jumps/CSR
//   - Memory (MEM): aligned load/store with sign/zero extension
//   - Writeback (WB): commit the result to the register file
//
// Between stages sit four latches (IF/ID, ID/EX, EX/MEM, MEM/WB). Each
// Clock call computes the next value of every latch from the current
// values of all latches and the register file, then commits all
// latches atomically — the classic textbook five-stage design, with a
// hazard unit for load-use stalling and EX/MEM+MEM/WB-to-EX
// forwarding, and a minimal machine-mode CSR facility for synchronous
// traps via ECALL/MRET.
package pipeline

import (
	"github.com/sarchlab/m2sim/emu"
)

// Pipeline is the five-stage pipelined RV32I execution engine (§6
// engine-facing API).
type Pipeline struct {
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage
	hazardUnit     *HazardUnit

	regFile *emu.RegFile
	memory  *emu.Memory
	csr     *emu.CSRFile
	pc      uint32

	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	nextIfid  IFIDRegister
	nextIdex  IDEXRegister
	nextExmem EXMEMRegister
	nextMemwb MEMWBRegister

	cycleCount       uint64
	instructionCount uint64
	stallCount       uint64
	flushCount       uint64
}

// NewPipeline creates a new five-stage pipeline wired to regFile,
// memory, and csr. The caller owns the lifetime of all three — the
// pipeline only ever reads and mutates them through its stages.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, csr *emu.CSRFile) *Pipeline {
	return &Pipeline{
		fetchStage:     NewFetchStage(memory),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(csr),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
		memory:         memory,
		csr:            csr,
	}
}

// Reset zeroes the register file, PC, CSR file, and all four latches
// (§3 Lifecycle).
func (p *Pipeline) Reset() {
	p.regFile.Reset()
	p.csr.Reset()
	p.pc = 0

	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.nextIfid.Clear()
	p.nextIdex.Clear()
	p.nextExmem.Clear()
	p.nextMemwb.Clear()

	p.cycleCount = 0
	p.instructionCount = 0
	p.stallCount = 0
	p.flushCount = 0
}

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC sets the program counter. Intended for test setup and for
// pointing the engine at a loaded program's entry address.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// GetReg returns the architectural value of register i (§6).
func (p *Pipeline) GetReg(i uint8) uint32 {
	return p.regFile.ReadReg(i)
}

// GetCSR returns the value of the CSR at addr (§6).
func (p *Pipeline) GetCSR(addr uint16) uint32 {
	return p.csr.Read(addr)
}

// Stats reports pipeline execution counters.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Flushes      uint64
}

// Stats returns the pipeline's execution counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Cycles:       p.cycleCount,
		Instructions: p.instructionCount,
		Stalls:       p.stallCount,
		Flushes:      p.flushCount,
	}
}

// Clock advances every latch by one tick (§2, §5). Stages are
// computed here in an order convenient for a sequential implementation
// (WB, MEM, EX, ID, IF) so that each stage can read the others'
// *current* latch values before any of them are overwritten; the
// observable result is equivalent to the fully-simultaneous model the
// specification describes, except for one deliberate exception: the
// WB commit for this tick is visible to this tick's EX-stage
// forwarding and to this tick's ID-stage register read (internal
// register-file forwarding, §5).
func (p *Pipeline) Clock() {
	p.cycleCount++

	p.doWriteback()
	p.doMemory()
	flush, redirect := p.doExecute()
	loadUseHazard := p.doDecode()
	p.doFetch()

	stall := p.hazardUnit.ComputeStalls(loadUseHazard, flush)

	if stall.StallIF {
		p.stallCount++
	}

	if stall.InsertBubbleEX {
		p.nextIdex.Clear()
	}

	if stall.FlushIF {
		p.flushCount++
		p.nextIfid.Clear()
	}

	if stall.FlushID {
		p.nextIdex.Clear()
	}

	if stall.StallIF {
		p.nextIfid = p.ifid
	}

	p.ifid = p.nextIfid
	p.idex = p.nextIdex
	p.exmem = p.nextExmem
	p.memwb = p.nextMemwb

	switch {
	case flush:
		p.pc = redirect
	case stall.StallIF:
		// PC held; IF/ID already held above.
	default:
		p.pc += 4
	}
}

// RunCycles clocks the pipeline n times. It is a convenience for
// drivers and tests; the pipeline itself never decides when to stop
// (§5 — there is no cancellation or halt state in the core).
func (p *Pipeline) RunCycles(n uint64) {
	for i := uint64(0); i < n; i++ {
		p.Clock()
	}
}

func (p *Pipeline) doFetch() {
	word := p.fetchStage.Fetch(p.pc)
	p.nextIfid.Valid = true
	p.nextIfid.PC = p.pc
	p.nextIfid.Instruction = word
}

// doDecode performs the decode stage and reports whether a load-use
// hazard was detected against the instruction currently in ID/EX.
func (p *Pipeline) doDecode() bool {
	if !p.ifid.Valid {
		p.nextIdex.Clear()
		return false
	}

	result := p.decodeStage.Decode(p.ifid.Instruction)

	loadUseHazard := p.hazardUnit.DetectLoadUseHazard(&p.idex, result.Rs1, result.Rs2, result.UsesRs1, result.UsesRs2)
	if loadUseHazard {
		return true
	}

	p.nextIdex.Valid = true
	p.nextIdex.PC = p.ifid.PC
	p.nextIdex.RegVal1 = result.RegVal1
	p.nextIdex.RegVal2 = result.RegVal2
	p.nextIdex.Imm = result.Imm
	p.nextIdex.Rs1 = result.Rs1
	p.nextIdex.Rs2 = result.Rs2
	p.nextIdex.Rd = result.Rd
	p.nextIdex.RegWrite = result.RegWrite
	p.nextIdex.MemRead = result.MemRead
	p.nextIdex.MemWrite = result.MemWrite
	p.nextIdex.Branch = result.Branch
	p.nextIdex.Jump = result.Jump
	p.nextIdex.ALUSrc = result.ALUSrc
	p.nextIdex.ALUOp = result.ALUOp
	p.nextIdex.Funct3 = result.Funct3
	p.nextIdex.Funct7 = result.Funct7
	p.nextIdex.IsECALL = result.IsECALL
	p.nextIdex.IsMRET = result.IsMRET

	return false
}

// doExecute performs the execute stage and reports whether a control
// transfer (taken branch, jump, ECALL, or MRET) requires a flush.
func (p *Pipeline) doExecute() (flush bool, redirect uint32) {
	if !p.idex.Valid {
		p.nextExmem.Clear()
		return false, 0
	}

	forwarding := p.hazardUnit.DetectForwarding(&p.idex, &p.exmem, &p.memwb)
	rs1Val := p.hazardUnit.GetForwardedValue(forwarding.ForwardRs1, p.idex.RegVal1, &p.exmem, &p.memwb)
	rs2Val := p.hazardUnit.GetForwardedValue(forwarding.ForwardRs2, p.idex.RegVal2, &p.exmem, &p.memwb)

	result := p.executeStage.Execute(&p.idex, rs1Val, rs2Val)

	p.nextExmem.Valid = true
	p.nextExmem.PC = p.idex.PC
	p.nextExmem.ALUResult = result.ALUResult
	p.nextExmem.RegVal2 = result.StoreValue
	p.nextExmem.Rd = p.idex.Rd
	p.nextExmem.RegWrite = p.idex.RegWrite
	p.nextExmem.MemRead = p.idex.MemRead
	p.nextExmem.MemWrite = p.idex.MemWrite
	p.nextExmem.MemToReg = p.idex.MemRead
	p.nextExmem.Funct3 = p.idex.Funct3

	return result.Flush, result.RedirectTarget
}

func (p *Pipeline) doMemory() {
	if !p.exmem.Valid {
		p.nextMemwb.Clear()
		return
	}

	memData := p.memoryStage.Access(&p.exmem)

	p.nextMemwb.Valid = true
	p.nextMemwb.PC = p.exmem.PC
	p.nextMemwb.ALUResult = p.exmem.ALUResult
	p.nextMemwb.MemData = memData
	p.nextMemwb.Rd = p.exmem.Rd
	p.nextMemwb.RegWrite = p.exmem.RegWrite
	p.nextMemwb.MemToReg = p.exmem.MemToReg
}

func (p *Pipeline) doWriteback() {
	if !p.memwb.Valid {
		return
	}

	p.writebackStage.Writeback(&p.memwb)
	p.instructionCount++
}

// GetIFID returns the current IF/ID latch for inspection.
func (p *Pipeline) GetIFID() IFIDRegister { return p.ifid }

// GetIDEX returns the current ID/EX latch for inspection.
func (p *Pipeline) GetIDEX() IDEXRegister { return p.idex }

// GetEXMEM returns the current EX/MEM latch for inspection.
func (p *Pipeline) GetEXMEM() EXMEMRegister { return p.exmem }

// GetMEMWB returns the current MEM/WB latch for inspection.
func (p *Pipeline) GetMEMWB() MEMWBRegister { return p.memwb }
