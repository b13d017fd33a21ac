package emu

// Recognized machine-mode CSR addresses (§3 Data Model).
const (
	CSRMStatus uint16 = 0x300
	CSRMIE     uint16 = 0x304
	CSRMTVec   uint16 = 0x305
	CSRMEPC    uint16 = 0x341
	CSRMCause  uint16 = 0x342
	CSRMTVal   uint16 = 0x343
	CSRMIP     uint16 = 0x344
	CSRMCycle  uint16 = 0xB00
)

// CSRFile is a sparse, 12-bit-indexed word-addressed control/status
// register store. Unmapped reads return 0; writes create entries
// lazily, including writes to addresses outside the recognized set
// (§9: unmapped writes must still become visible to later reads of
// the same address).
type CSRFile struct {
	regs map[uint16]uint32
}

// NewCSRFile creates an empty CSR file.
func NewCSRFile() *CSRFile {
	return &CSRFile{regs: make(map[uint16]uint32)}
}

// Read returns the value at addr, or 0 if the address has never been
// written.
func (c *CSRFile) Read(addr uint16) uint32 {
	return c.regs[addr&0xfff]
}

// Write stores value at addr, creating the entry if it doesn't exist.
func (c *CSRFile) Write(addr uint16, value uint32) {
	c.regs[addr&0xfff] = value
}

// Reset empties the CSR file.
func (c *CSRFile) Reset() {
	c.regs = make(map[uint16]uint32)
}
