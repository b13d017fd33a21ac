// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of the RV32I base integer
// instruction set into a structured representation consumed by the
// decode stage of the five-stage pipeline in timing/pipeline. It
// covers:
//   - LUI, AUIPC (U-type)
//   - JAL, JALR (unconditional jumps)
//   - BEQ/BNE/BLT/BGE/BLTU/BGEU (B-type conditional branches)
//   - LB/LH/LW/LBU/LHU, SB/SH/SW (I/S-type loads and stores)
//   - OP-IMM and OP arithmetic/logic (ADD/SUB/SLL/SLT/SLTU/XOR/SRL/SRA/OR/AND)
//   - SYSTEM: CSRRW/CSRRS/CSRRC/CSRRWI/CSRRSI/CSRRCI, ECALL, MRET
//
// Usage:
//
//	d := insts.NewDecoder()
//	inst := d.Decode(0x00A00093) // ADDI x1, x0, 10
//	fmt.Printf("Opcode: %v, Rd: %d, Imm: %d\n", inst.Opcode, inst.Rd, inst.Imm)
package insts
