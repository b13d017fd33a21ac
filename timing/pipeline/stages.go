// Package pipeline implements a classical five-stage in-order RV32I
// pipeline: IF, ID, EX, MEM, WB, with forwarding and hazard detection.
package pipeline

import (
	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
)

// FetchStage reads the instruction word at PC from memory (§4.1).
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch reads the 32-bit little-endian word at pc. Fetch never
// traps; an out-of-range fetch yields zero from the memory
// collaborator (§4.1), which decodes as an illegal instruction.
func (s *FetchStage) Fetch(pc uint32) uint32 {
	return s.memory.Read32(pc)
}

// DecodeStage decodes the fetched word and reads the register file
// (§4.2).
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// DecodeResult holds the decode stage's output: the control bundle
// plus the operand values read from the register file.
type DecodeResult struct {
	RegVal1 uint32
	RegVal2 uint32
	Imm     int32

	Rs1 uint8
	Rs2 uint8
	Rd  uint8

	RegWrite bool
	MemRead  bool
	MemWrite bool
	Branch   bool
	Jump     bool
	ALUSrc   bool
	ALUOp    insts.ALUOp
	Funct3   uint8
	Funct7   uint8

	IsECALL bool
	IsMRET  bool

	// UsesRs1 and UsesRs2 tell the hazard unit whether this
	// instruction actually reads rs1/rs2 (as opposed to those fields
	// being don't-care, e.g. for LUI/JAL/AUIPC).
	UsesRs1 bool
	UsesRs2 bool
}

// Decode decodes word and reads its source operands.
func (s *DecodeStage) Decode(word uint32) DecodeResult {
	inst := s.decoder.Decode(word)

	result := DecodeResult{
		Imm:      inst.Imm,
		Rs1:      inst.Rs1,
		Rs2:      inst.Rs2,
		Rd:       inst.Rd,
		RegWrite: inst.RegWrite,
		MemRead:  inst.MemRead,
		MemWrite: inst.MemWrite,
		Branch:   inst.Branch,
		Jump:     inst.Jump,
		ALUSrc:   inst.ALUSrc,
		ALUOp:    inst.ALUOp,
		Funct3:   inst.Funct3,
		Funct7:   inst.Funct7,
		IsECALL:  inst.IsECALL,
		IsMRET:   inst.IsMRET,
	}

	result.RegVal1 = s.regFile.ReadReg(inst.Rs1)
	result.RegVal2 = s.regFile.ReadReg(inst.Rs2)

	switch inst.Format {
	case insts.FormatR, insts.FormatS, insts.FormatB:
		result.UsesRs1 = true
		result.UsesRs2 = true
	case insts.FormatI:
		// CSRRWI/CSRRSI/CSRRCI and ECALL/MRET repurpose the rs1 field
		// as a 5-bit immediate or leave it unused; they don't read a
		// source register there, so they must not participate in
		// load-use hazard detection on rs1.
		isImmediateCSR := inst.ALUOp == insts.ALUOpSYS && (inst.Funct3 == 0x5 || inst.Funct3 == 0x6 || inst.Funct3 == 0x7)
		if !isImmediateCSR && !inst.IsECALL && !inst.IsMRET {
			result.UsesRs1 = true
		}
	}

	return result
}

// ExecuteStage resolves forwarding, performs the ALU/branch/jump/CSR
// computation, and evaluates traps (§4.3, §4.7).
type ExecuteStage struct {
	csr *emu.CSRFile
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(csr *emu.CSRFile) *ExecuteStage {
	return &ExecuteStage{csr: csr}
}

// ExecuteResult holds the execute stage's output.
type ExecuteResult struct {
	ALUResult  uint32
	StoreValue uint32

	// Flush is asserted on a taken branch, a jump, ECALL, or MRET
	// (§4.6). RedirectTarget is the new PC in that case.
	Flush          bool
	RedirectTarget uint32
}

// Execute performs the ALU operation (or branch/jump/CSR dispatch)
// for the instruction in ID/EX, given its already-forwarded operands.
func (s *ExecuteStage) Execute(idex *IDEXRegister, rs1Val, rs2Val uint32) ExecuteResult {
	result := ExecuteResult{}

	operandB := rs2Val
	if idex.ALUSrc {
		operandB = uint32(idex.Imm)
	}

	switch idex.ALUOp {
	case insts.ALUOpLUI:
		result.ALUResult = uint32(idex.Imm)

	case insts.ALUOpAUIPC:
		result.ALUResult = idex.PC + uint32(idex.Imm)

	case insts.ALUOpJAL:
		result.ALUResult = idex.PC + 4
		result.Flush = true
		result.RedirectTarget = idex.PC + uint32(idex.Imm)

	case insts.ALUOpJALR:
		result.ALUResult = idex.PC + 4
		result.Flush = true
		result.RedirectTarget = (rs1Val + uint32(idex.Imm)) &^ 1

	case insts.ALUOpADD:
		result.ALUResult = rs1Val + operandB
		result.StoreValue = rs2Val

	case insts.ALUOpALU:
		// funct7 only distinguishes SUB/SRA from ADD/SRL for the
		// register-register form (OP); for OP-IMM those same bits are
		// part of the sign-extended immediate and must be ignored,
		// except for the shift-immediate shamt field (§4.3).
		result.ALUResult = evalALU(idex.Funct3, idex.Funct7, !idex.ALUSrc, rs1Val, operandB)

	case insts.ALUOpCMP:
		taken := evalBranch(idex.Funct3, rs1Val, rs2Val)
		if taken {
			result.Flush = true
			result.RedirectTarget = idex.PC + uint32(idex.Imm)
		}

	case insts.ALUOpSYS:
		result = s.executeSystem(idex, rs1Val)
	}

	return result
}

// evalALU dispatches the OP/OP-IMM ALU family on funct3 (§4.3).
// isReg distinguishes OP (register-register) from OP-IMM: the
// ADD/SUB split on funct7 only applies to OP, since OP-IMM has no
// SUBI and its funct7 bits are just the top of a generic sign-extended
// immediate that could coincidentally equal 0x20. The shift family
// doesn't need this guard because RV32I reserves those same bits as a
// genuine funct7 for SLLI/SRLI/SRAI too.
func evalALU(funct3, funct7 uint8, isReg bool, a, b uint32) uint32 {
	switch funct3 {
	case 0x0:
		if isReg && funct7 == 0x20 {
			return a - b
		}
		return a + b
	case 0x1:
		return a << (b & 0x1f)
	case 0x2:
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case 0x3:
		if a < b {
			return 1
		}
		return 0
	case 0x4:
		return a ^ b
	case 0x5:
		if funct7 == 0x20 {
			return uint32(int32(a) >> (b & 0x1f))
		}
		return a >> (b & 0x1f)
	case 0x6:
		return a | b
	case 0x7:
		return a & b
	default:
		return 0
	}
}

// evalBranch evaluates the branch taken-condition for funct3 (§4.3).
func evalBranch(funct3 uint8, a, b uint32) bool {
	switch funct3 {
	case 0x0: // BEQ
		return a == b
	case 0x1: // BNE
		return a != b
	case 0x4: // BLT
		return int32(a) < int32(b)
	case 0x5: // BGE
		return int32(a) >= int32(b)
	case 0x6: // BLTU
		return a < b
	case 0x7: // BGEU
		return a >= b
	default:
		return false
	}
}

// executeSystem dispatches SYSTEM instructions: CSR read-modify-write,
// ECALL, and MRET (§4.7).
func (s *ExecuteStage) executeSystem(idex *IDEXRegister, rs1Val uint32) ExecuteResult {
	result := ExecuteResult{}

	if idex.IsECALL {
		s.csr.Write(emu.CSRMCause, 11)
		s.csr.Write(emu.CSRMEPC, idex.PC)
		s.csr.Write(emu.CSRMTVal, idex.PC)
		result.Flush = true
		result.RedirectTarget = s.csr.Read(emu.CSRMTVec)
		return result
	}

	if idex.IsMRET {
		result.Flush = true
		result.RedirectTarget = s.csr.Read(emu.CSRMEPC)
		return result
	}

	addr := uint16(idex.Imm)
	old := s.csr.Read(addr)

	switch idex.Funct3 {
	case 0x1: // CSRRW
		s.csr.Write(addr, rs1Val)
	case 0x2: // CSRRS
		s.csr.Write(addr, old|rs1Val)
	case 0x3: // CSRRC
		s.csr.Write(addr, old&^rs1Val)
	case 0x5: // CSRRWI
		s.csr.Write(addr, uint32(idex.Rs1))
	case 0x6: // CSRRSI
		s.csr.Write(addr, old|uint32(idex.Rs1))
	case 0x7: // CSRRCI
		s.csr.Write(addr, old&^uint32(idex.Rs1))
	}

	result.ALUResult = old
	return result
}

// MemoryStage performs aligned load/store, sign- or zero-extending
// loads per funct3 (§4.4).
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Access performs the memory access described by exmem, returning the
// (possibly extended) loaded value.
func (s *MemoryStage) Access(exmem *EXMEMRegister) uint32 {
	addr := exmem.ALUResult

	if exmem.MemRead {
		switch exmem.Funct3 {
		case 0x0: // LB
			return uint32(int32(int8(s.memory.Read8(addr))))
		case 0x1: // LH
			return uint32(int32(int16(s.memory.Read16(addr))))
		case 0x2: // LW
			return s.memory.Read32(addr)
		case 0x4: // LBU
			return uint32(s.memory.Read8(addr))
		case 0x5: // LHU
			return uint32(s.memory.Read16(addr))
		default:
			return 0
		}
	}

	if exmem.MemWrite {
		switch exmem.Funct3 {
		case 0x0: // SB
			s.memory.Write8(addr, uint8(exmem.RegVal2))
		case 0x1: // SH
			s.memory.Write16(addr, uint16(exmem.RegVal2))
		case 0x2: // SW
			s.memory.Write32(addr, exmem.RegVal2)
		}
	}

	return 0
}

// WritebackStage commits the ALU or memory result to the register
// file (§4.5).
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits memwb's result to its destination register.
func (s *WritebackStage) Writeback(memwb *MEMWBRegister) {
	if !memwb.Valid || !memwb.RegWrite || memwb.Rd == 0 {
		return
	}

	value := memwb.ALUResult
	if memwb.MemToReg {
		value = memwb.MemData
	}

	s.regFile.WriteReg(memwb.Rd, value)
}
