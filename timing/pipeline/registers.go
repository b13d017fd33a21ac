// Package pipeline implements a classical five-stage in-order RV32I
// pipeline: IF, ID, EX, MEM, WB, with forwarding and hazard detection.
package pipeline

import "github.com/sarchlab/m2sim/insts"

// IFIDRegister holds state latched between Fetch and Decode (§3).
type IFIDRegister struct {
	// Valid is false for a bubble.
	Valid bool

	// PC of the fetched instruction.
	PC uint32

	// Instruction is the raw 32-bit word fetched from memory.
	Instruction uint32
}

// Clear turns the latch into a bubble.
func (r *IFIDRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Instruction = 0
}

// IDEXRegister holds state latched between Decode and Execute (§3).
type IDEXRegister struct {
	Valid bool

	PC uint32

	RegVal1 uint32
	RegVal2 uint32
	Imm     int32

	Rs1 uint8
	Rs2 uint8
	Rd  uint8

	// Control bundle.
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
}

// Clear turns the latch into a bubble: a latch whose control bundle
// has every boolean cleared and Rd=0 (§3 Invariants).
func (r *IDEXRegister) Clear() {
	*r = IDEXRegister{}
}

// EXMEMRegister holds state latched between Execute and Memory (§3).
type EXMEMRegister struct {
	Valid bool

	PC uint32

	ALUResult uint32
	RegVal2   uint32 // forwarded rs2 value, used as store data
	Rd        uint8

	RegWrite bool
	MemRead  bool
	MemWrite bool
	MemToReg bool
	Funct3   uint8
}

// Clear turns the latch into a bubble.
func (r *EXMEMRegister) Clear() {
	*r = EXMEMRegister{}
}

// MEMWBRegister holds state latched between Memory and Write-Back
// (§3).
type MEMWBRegister struct {
	Valid bool

	PC uint32

	MemData   uint32
	ALUResult uint32
	Rd        uint8

	RegWrite bool
	MemToReg bool
}

// Clear turns the latch into a bubble.
func (r *MEMWBRegister) Clear() {
	*r = MEMWBRegister{}
}
