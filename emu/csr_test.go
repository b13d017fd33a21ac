package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/emu"
)

var _ = Describe("CSRFile", func() {
	var csr *emu.CSRFile

	BeforeEach(func() {
		csr = emu.NewCSRFile()
	})

	It("returns zero for an unmapped address", func() {
		Expect(csr.Read(0x7C0)).To(Equal(uint32(0)))
	})

	It("makes a write visible to a later read of the same address", func() {
		csr.Write(0x7C0, 42)
		Expect(csr.Read(0x7C0)).To(Equal(uint32(42)))
	})

	It("creates unmapped addresses lazily on write", func() {
		csr.Write(emu.CSRMTVec, 0x1000)
		Expect(csr.Read(emu.CSRMTVec)).To(Equal(uint32(0x1000)))
		Expect(csr.Read(emu.CSRMEPC)).To(Equal(uint32(0)))
	})

	It("resets to an empty map", func() {
		csr.Write(emu.CSRMStatus, 7)
		csr.Reset()
		Expect(csr.Read(emu.CSRMStatus)).To(Equal(uint32(0)))
	})
})
