// Package pipeline implements a classical five-stage in-order RV32I
// pipeline: IF, ID, EX, MEM, WB, with forwarding and hazard detection.
package pipeline

// HazardUnit detects data hazards and produces the stall/flush
// signals that drive latch updates (§4.6).
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// ForwardingSource indicates where an EX-stage operand should come
// from.
type ForwardingSource uint8

const (
	// ForwardNone means use the value read at decode.
	ForwardNone ForwardingSource = iota
	// ForwardFromEXMEM forwards EX/MEM.ALUResult (newest producer).
	ForwardFromEXMEM
	// ForwardFromMEMWB forwards MEM/WB's committed result.
	ForwardFromMEMWB
)

// ForwardingResult holds the forwarding decision for both source
// operands of the instruction in ID/EX.
type ForwardingResult struct {
	ForwardRs1 ForwardingSource
	ForwardRs2 ForwardingSource
}

// DetectForwarding resolves the newest-producer-wins forwarding rule
// (§4.3): EX/MEM shadows MEM/WB on the same operand.
func (h *HazardUnit) DetectForwarding(idex *IDEXRegister, exmem *EXMEMRegister, memwb *MEMWBRegister) ForwardingResult {
	result := ForwardingResult{}

	if !idex.Valid {
		return result
	}

	if idex.Rs1 != 0 {
		switch {
		case exmem.Valid && exmem.RegWrite && exmem.Rd == idex.Rs1:
			result.ForwardRs1 = ForwardFromEXMEM
		case memwb.Valid && memwb.RegWrite && memwb.Rd == idex.Rs1:
			result.ForwardRs1 = ForwardFromMEMWB
		}
	}

	if idex.Rs2 != 0 {
		switch {
		case exmem.Valid && exmem.RegWrite && exmem.Rd == idex.Rs2:
			result.ForwardRs2 = ForwardFromEXMEM
		case memwb.Valid && memwb.RegWrite && memwb.Rd == idex.Rs2:
			result.ForwardRs2 = ForwardFromMEMWB
		}
	}

	return result
}

// GetForwardedValue resolves a ForwardingSource to the actual 32-bit
// operand value.
func (h *HazardUnit) GetForwardedValue(source ForwardingSource, originalValue uint32, exmem *EXMEMRegister, memwb *MEMWBRegister) uint32 {
	switch source {
	case ForwardFromEXMEM:
		return exmem.ALUResult
	case ForwardFromMEMWB:
		if memwb.MemToReg {
			return memwb.MemData
		}
		return memwb.ALUResult
	default:
		return originalValue
	}
}

// DetectLoadUseHazard checks whether the instruction currently being
// decoded reads a register that the load sitting in ID/EX will only
// produce after MEM (§4.6). Forwarding cannot resolve this because
// the value isn't available until the cycle after EX.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXRegister, decodedRs1, decodedRs2 uint8, usesRs1, usesRs2 bool) bool {
	if !idex.Valid || !idex.MemRead || idex.Rd == 0 {
		return false
	}

	if usesRs1 && decodedRs1 == idex.Rd {
		return true
	}

	if usesRs2 && decodedRs2 == idex.Rd {
		return true
	}

	return false
}

// StallResult indicates what latch actions the pipeline must take
// this tick.
type StallResult struct {
	// StallIF holds IF/ID and PC (refetch the same instruction).
	StallIF bool
	// InsertBubbleEX means the next ID/EX must be a bubble, instead of
	// admitting the instruction decoded this tick. Combined with
	// StallIF, this inserts exactly one bubble per load-use dependency
	// without re-issuing the load sitting in ID/EX.
	InsertBubbleEX bool
	// FlushIF means the next IF/ID must be a bubble.
	FlushIF bool
	// FlushID means the next ID/EX must be a bubble.
	FlushID bool
}

// ComputeStalls combines the load-use and control-hazard signals into
// latch actions. When both could occur in the same tick, flush wins
// and stall is cleared (§4.6).
func (h *HazardUnit) ComputeStalls(loadUseHazard bool, flush bool) StallResult {
	if flush {
		return StallResult{FlushIF: true, FlushID: true}
	}

	if loadUseHazard {
		return StallResult{StallIF: true, InsertBubbleEX: true}
	}

	return StallResult{}
}
