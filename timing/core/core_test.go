package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/timing/core"
)

var _ = Describe("Core", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		csr     *emu.CSRFile
		c       *core.Core
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		csr = emu.NewCSRFile()
		c = core.NewCore(regFile, memory, csr)
	})

	It("should create a core with pipeline", func() {
		Expect(c).NotTo(BeNil())
		Expect(c.Pipeline).NotTo(BeNil())
	})

	It("should set and get PC", func() {
		c.SetPC(0x1000)
		Expect(c.PC()).To(Equal(uint32(0x1000)))
	})

	It("should execute instructions through tick", func() {
		memory.Write32(0x1000, 0x00A00093) // ADDI x1, x0, 10
		memory.Write32(0x1004, 0x00000013) // ADDI x0, x0, 0 (nop)
		memory.Write32(0x1008, 0x00000013)
		memory.Write32(0x100C, 0x00000013)
		memory.Write32(0x1010, 0x00000013)

		c.SetPC(0x1000)

		for i := 0; i < 10; i++ {
			c.Tick()
		}

		Expect(regFile.ReadReg(1)).To(Equal(uint32(10)))
	})

	It("should return stats", func() {
		memory.Write32(0x1000, 0x00A00093)
		memory.Write32(0x1004, 0x00000013)

		c.SetPC(0x1000)
		c.Tick()
		c.Tick()

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(2)))
	})

	It("should run for the requested number of cycles", func() {
		memory.Write32(0x1000, 0x00108093) // ADDI x1, x1, 1
		for addr := uint32(0x1004); addr <= 0x1024; addr += 4 {
			memory.Write32(addr, 0x00000013) // nop
		}

		c.SetPC(0x1000)
		c.Run(5)

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(5)))
	})

	It("should reset core state", func() {
		memory.Write32(0x1000, 0x00108093) // ADDI x1, x1, 1
		for addr := uint32(0x1004); addr <= 0x1010; addr += 4 {
			memory.Write32(addr, 0x00000013)
		}

		c.SetPC(0x1000)
		for i := 0; i < 10; i++ {
			c.Tick()
		}

		stats := c.Stats()
		Expect(stats.Cycles).To(BeNumerically(">", 0))

		c.Reset()

		statsAfterReset := c.Stats()
		Expect(statsAfterReset.Cycles).To(Equal(uint64(0)))
		Expect(statsAfterReset.Instructions).To(Equal(uint64(0)))
		Expect(c.PC()).To(Equal(uint32(0)))
	})
})
