package emu

import "encoding/binary"

// DefaultMemorySize is the flat memory size used when a size isn't
// specified explicitly.
const DefaultMemorySize = 1 << 20 // 1 MiB

// Memory is a byte-addressed, little-endian flat memory model. It is
// the engine's sole collaborator for instruction fetch and load/store:
// out-of-range reads return zero and out-of-range writes are silently
// dropped, matching the contract the pipeline stages depend on (no
// alignment faults, no bounds-check traps).
type Memory struct {
	bytes []byte
}

// NewMemory creates a Memory of DefaultMemorySize.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultMemorySize)
}

// NewMemoryWithSize creates a Memory of the given size in bytes.
func NewMemoryWithSize(size int) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() int {
	return len(m.bytes)
}

// Read8 reads a single byte. Returns 0 if addr is out of range.
func (m *Memory) Read8(addr uint32) uint8 {
	if !m.inRange(addr, 1) {
		return 0
	}
	return m.bytes[addr]
}

// Read16 reads a little-endian halfword. Returns 0 if any byte of the
// access is out of range.
func (m *Memory) Read16(addr uint32) uint16 {
	if !m.inRange(addr, 2) {
		return 0
	}
	return binary.LittleEndian.Uint16(m.bytes[addr : addr+2])
}

// Read32 reads a little-endian word. Returns 0 if any byte of the
// access is out of range.
func (m *Memory) Read32(addr uint32) uint32 {
	if !m.inRange(addr, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(m.bytes[addr : addr+4])
}

// Write8 writes a single byte. Silently dropped if addr is out of
// range.
func (m *Memory) Write8(addr uint32, val uint8) {
	if !m.inRange(addr, 1) {
		return
	}
	m.bytes[addr] = val
}

// Write16 writes a little-endian halfword. Silently dropped if any
// byte of the access is out of range.
func (m *Memory) Write16(addr uint32, val uint16) {
	if !m.inRange(addr, 2) {
		return
	}
	binary.LittleEndian.PutUint16(m.bytes[addr:addr+2], val)
}

// Write32 writes a little-endian word. Silently dropped if any byte
// of the access is out of range.
func (m *Memory) Write32(addr uint32, val uint32) {
	if !m.inRange(addr, 4) {
		return
	}
	binary.LittleEndian.PutUint32(m.bytes[addr:addr+4], val)
}

// LoadProgram writes a sequence of 32-bit words contiguously starting
// at start, little-endian, four bytes per word.
func (m *Memory) LoadProgram(words []uint32, start uint32) {
	for i, w := range words {
		m.Write32(start+uint32(i)*4, w)
	}
}

// inRange reports whether the n-byte access at addr falls entirely
// within the backing array, guarding against the wraparound that a
// naive addr+n-1 < len(m.bytes) check would miss near the top of the
// 32-bit address space.
func (m *Memory) inRange(addr uint32, n uint32) bool {
	if addr > uint32(len(m.bytes)) {
		return false
	}
	end := uint64(addr) + uint64(n)
	return end <= uint64(len(m.bytes))
}
