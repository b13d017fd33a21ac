package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	It("round-trips a 32-bit word", func() {
		mem.Write32(0x100, 0xCAFEBABE)
		Expect(mem.Read32(0x100)).To(Equal(uint32(0xCAFEBABE)))
	})

	It("round-trips a 16-bit halfword", func() {
		mem.Write16(0x200, 0xBEEF)
		Expect(mem.Read16(0x200)).To(Equal(uint16(0xBEEF)))
	})

	It("round-trips a byte", func() {
		mem.Write8(0x300, 0xAB)
		Expect(mem.Read8(0x300)).To(Equal(uint8(0xAB)))
	})

	It("stores multi-byte values little-endian", func() {
		mem.Write32(0x400, 0x11223344)
		Expect(mem.Read8(0x400)).To(Equal(uint8(0x44)))
		Expect(mem.Read8(0x401)).To(Equal(uint8(0x33)))
		Expect(mem.Read8(0x402)).To(Equal(uint8(0x22)))
		Expect(mem.Read8(0x403)).To(Equal(uint8(0x11)))
	})

	It("returns zero for an out-of-range read", func() {
		small := emu.NewMemoryWithSize(16)
		Expect(small.Read32(0x1000)).To(Equal(uint32(0)))
	})

	It("silently drops an out-of-range write", func() {
		small := emu.NewMemoryWithSize(16)
		small.Write32(0x1000, 0xFFFFFFFF)
		Expect(small.Read32(0x1000)).To(Equal(uint32(0)))
	})

	It("doesn't panic or wrap on a read near the top of the address space", func() {
		small := emu.NewMemoryWithSize(16)
		Expect(small.Read32(0xFFFFFFFF)).To(Equal(uint32(0)))
	})

	It("loads a program as contiguous little-endian words", func() {
		mem.LoadProgram([]uint32{0x00A00093, 0xFFB08113}, 0x1000)
		Expect(mem.Read32(0x1000)).To(Equal(uint32(0x00A00093)))
		Expect(mem.Read32(0x1004)).To(Equal(uint32(0xFFB08113)))
	})
})
