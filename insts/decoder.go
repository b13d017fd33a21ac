// Package insts provides RV32I instruction definitions and decoding.
package insts

// Opcode is the 7-bit opcode field (bits[6:0]) of an RV32I instruction
// word.
type Opcode uint8

// Recognized RV32I opcodes (§4.2).
const (
	OpcodeLUI     Opcode = 0x37
	OpcodeAUIPC   Opcode = 0x17
	OpcodeJAL     Opcode = 0x6F
	OpcodeJALR    Opcode = 0x67
	OpcodeBranch  Opcode = 0x63
	OpcodeLoad    Opcode = 0x03
	OpcodeStore   Opcode = 0x23
	OpcodeOpImm   Opcode = 0x13
	OpcodeOp      Opcode = 0x33
	OpcodeSystem  Opcode = 0x73
)

// Format is the instruction encoding format, which determines how the
// immediate is assembled.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // register-register (OP)
	FormatI              // register-immediate (OP-IMM, LOAD, JALR, SYSTEM)
	FormatS              // store
	FormatB              // branch
	FormatU              // LUI, AUIPC
	FormatJ              // JAL
)

// ALUOp tags the family of computation the execute stage performs for
// a decoded instruction (§4.3). It is the "tagged variant" §9
// recommends fusing branch/jump/alu_src/alu_op into.
type ALUOp uint8

// ALU operation tags.
const (
	ALUOpNone ALUOp = iota
	ALUOpLUI
	ALUOpAUIPC
	ALUOpJAL
	ALUOpJALR
	ALUOpADD // address computation for load/store
	ALUOpALU // dispatched further by Funct3/Funct7
	ALUOpCMP // branch comparison, dispatched by Funct3
	ALUOpSYS // CSR / ECALL / MRET, dispatched by Funct3
)

// Instruction is a decoded RV32I instruction together with the
// control bundle the decode stage derives from it (§3, §4.2).
type Instruction struct {
	Raw    uint32
	Opcode Opcode
	Format Format

	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8

	// Imm is the sign-extended (or, for U-type, pre-shifted) immediate
	// for this instruction's format. For SYSTEM instructions it
	// carries the 12-bit CSR address (§4.2) instead.
	Imm int32

	// ALUOp selects the execute-stage computation family.
	ALUOp ALUOp

	// Control bundle booleans (§3).
	RegWrite bool
	MemRead  bool
	MemWrite bool
	Branch   bool
	Jump     bool
	ALUSrc   bool // false = register operand, true = immediate operand

	// IsECALL and IsMRET distinguish the two recognized SYSTEM
	// instruction words (§4.2) from ordinary CSR instructions, which
	// share opcode 0x73.
	IsECALL bool
	IsMRET  bool
}

// Decoder decodes raw 32-bit RV32I instruction words.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

const (
	wordECALL uint32 = 0x00000073
	wordMRET  uint32 = 0x30200073
)

func opcodeOf(word uint32) Opcode  { return Opcode(word & 0x7f) }
func rdOf(word uint32) uint8       { return uint8((word >> 7) & 0x1f) }
func funct3Of(word uint32) uint8   { return uint8((word >> 12) & 0x7) }
func rs1Of(word uint32) uint8      { return uint8((word >> 15) & 0x1f) }
func rs2Of(word uint32) uint8      { return uint8((word >> 20) & 0x1f) }
func funct7Of(word uint32) uint8   { return uint8((word >> 25) & 0x7f) }

// signExtend sign-extends the low `bits` bits of v to a full int32.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func immI(word uint32) int32 {
	return signExtend(word>>20, 12)
}

func immS(word uint32) int32 {
	v := ((word >> 25) << 5) | ((word >> 7) & 0x1f)
	return signExtend(v, 12)
}

func immB(word uint32) int32 {
	v := (((word >> 31) & 0x1) << 12) |
		(((word >> 7) & 0x1) << 11) |
		(((word >> 25) & 0x3f) << 5) |
		(((word >> 8) & 0xf) << 1)
	return signExtend(v, 13)
}

func immU(word uint32) int32 {
	return int32(word & 0xfffff000)
}

func immJ(word uint32) int32 {
	v := (((word >> 31) & 0x1) << 20) |
		(((word >> 12) & 0xff) << 12) |
		(((word >> 20) & 0x1) << 11) |
		(((word >> 21) & 0x3ff) << 1)
	return signExtend(v, 21)
}

// Decode decodes a 32-bit instruction word into an Instruction,
// including the control bundle the decode stage needs (§4.2).
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Raw:    word,
		Opcode: opcodeOf(word),
		Rd:     rdOf(word),
		Funct3: funct3Of(word),
		Rs1:    rs1Of(word),
		Rs2:    rs2Of(word),
		Funct7: funct7Of(word),
	}

	switch inst.Opcode {
	case OpcodeLUI:
		inst.Format = FormatU
		inst.Imm = immU(word)
		inst.ALUOp = ALUOpLUI
		inst.RegWrite = true

	case OpcodeAUIPC:
		inst.Format = FormatU
		inst.Imm = immU(word)
		inst.ALUOp = ALUOpAUIPC
		inst.RegWrite = true

	case OpcodeJAL:
		inst.Format = FormatJ
		inst.Imm = immJ(word)
		inst.ALUOp = ALUOpJAL
		inst.RegWrite = true
		inst.Jump = true

	case OpcodeJALR:
		inst.Format = FormatI
		inst.Imm = immI(word)
		inst.ALUOp = ALUOpJALR
		inst.RegWrite = true
		inst.Jump = true
		inst.ALUSrc = true

	case OpcodeBranch:
		inst.Format = FormatB
		inst.Imm = immB(word)
		inst.ALUOp = ALUOpCMP
		inst.Branch = true

	case OpcodeLoad:
		inst.Format = FormatI
		inst.Imm = immI(word)
		inst.ALUOp = ALUOpADD
		inst.RegWrite = true
		inst.MemRead = true
		inst.ALUSrc = true

	case OpcodeStore:
		inst.Format = FormatS
		inst.Imm = immS(word)
		inst.ALUOp = ALUOpADD
		inst.MemWrite = true
		inst.ALUSrc = true

	case OpcodeOpImm:
		inst.Format = FormatI
		inst.Imm = immI(word)
		inst.ALUOp = ALUOpALU
		inst.RegWrite = true
		inst.ALUSrc = true

	case OpcodeOp:
		inst.Format = FormatR
		inst.ALUOp = ALUOpALU
		inst.RegWrite = true

	case OpcodeSystem:
		inst.Format = FormatI
		switch {
		case word == wordECALL:
			inst.IsECALL = true
			inst.ALUOp = ALUOpSYS
		case word == wordMRET:
			inst.IsMRET = true
			inst.ALUOp = ALUOpSYS
		case inst.Funct3 != 0:
			inst.ALUOp = ALUOpSYS
			// CSR address occupies bits[31:20], carried in Imm (§4.2).
			inst.Imm = int32(word >> 20)
			inst.RegWrite = inst.Rd != 0
		default:
			// funct3 == 0 but not ECALL/MRET: illegal, treated as a
			// no-op slot (§7).
		}

	default:
		// Illegal instruction (§7): no control signals are set, which
		// the pipeline treats as a no-op slot.
		inst.Format = FormatUnknown
	}

	return inst
}
