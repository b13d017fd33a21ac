package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var hazard *pipeline.HazardUnit

	BeforeEach(func() {
		hazard = pipeline.NewHazardUnit()
	})

	Describe("DetectForwarding", func() {
		var idex *pipeline.IDEXRegister

		BeforeEach(func() {
			idex = &pipeline.IDEXRegister{Valid: true, Rs1: 1, Rs2: 2}
		})

		It("forwards nothing when no upstream latch writes rs1/rs2", func() {
			exmem := &pipeline.EXMEMRegister{}
			memwb := &pipeline.MEMWBRegister{}

			result := hazard.DetectForwarding(idex, exmem, memwb)
			Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
			Expect(result.ForwardRs2).To(Equal(pipeline.ForwardNone))
		})

		It("prefers EX/MEM over MEM/WB when both produce the same register", func() {
			exmem := &pipeline.EXMEMRegister{Valid: true, RegWrite: true, Rd: 1, ALUResult: 111}
			memwb := &pipeline.MEMWBRegister{Valid: true, RegWrite: true, Rd: 1, ALUResult: 222}

			result := hazard.DetectForwarding(idex, exmem, memwb)
			Expect(result.ForwardRs1).To(Equal(pipeline.ForwardFromEXMEM))

			value := hazard.GetForwardedValue(result.ForwardRs1, 0, exmem, memwb)
			Expect(value).To(Equal(uint32(111)))
		})

		It("falls back to MEM/WB when EX/MEM doesn't produce the register", func() {
			exmem := &pipeline.EXMEMRegister{Valid: true, RegWrite: true, Rd: 9}
			memwb := &pipeline.MEMWBRegister{Valid: true, RegWrite: true, Rd: 2, ALUResult: 77}

			result := hazard.DetectForwarding(idex, exmem, memwb)
			Expect(result.ForwardRs2).To(Equal(pipeline.ForwardFromMEMWB))

			value := hazard.GetForwardedValue(result.ForwardRs2, 0, exmem, memwb)
			Expect(value).To(Equal(uint32(77)))
		})

		It("never forwards into x0", func() {
			idex.Rs1 = 0
			exmem := &pipeline.EXMEMRegister{Valid: true, RegWrite: true, Rd: 0, ALUResult: 999}
			memwb := &pipeline.MEMWBRegister{}

			result := hazard.DetectForwarding(idex, exmem, memwb)
			Expect(result.ForwardRs1).To(Equal(pipeline.ForwardNone))
		})

		It("prefers MemData over ALUResult when MEM/WB is a load", func() {
			exmem := &pipeline.EXMEMRegister{}
			memwb := &pipeline.MEMWBRegister{Valid: true, RegWrite: true, Rd: 1, MemToReg: true, MemData: 55, ALUResult: 999}

			result := hazard.DetectForwarding(idex, exmem, memwb)
			value := hazard.GetForwardedValue(result.ForwardRs1, 0, exmem, memwb)
			Expect(value).To(Equal(uint32(55)))
		})
	})

	Describe("DetectLoadUseHazard", func() {
		It("signals a hazard when the decoded instruction reads the load's destination", func() {
			idex := &pipeline.IDEXRegister{Valid: true, MemRead: true, Rd: 5}
			Expect(hazard.DetectLoadUseHazard(idex, 5, 0, true, false)).To(BeTrue())
		})

		It("does not signal a hazard when the load writes x0", func() {
			idex := &pipeline.IDEXRegister{Valid: true, MemRead: true, Rd: 0}
			Expect(hazard.DetectLoadUseHazard(idex, 0, 0, true, false)).To(BeFalse())
		})

		It("does not signal a hazard when ID/EX isn't a load", func() {
			idex := &pipeline.IDEXRegister{Valid: true, MemRead: false, Rd: 5}
			Expect(hazard.DetectLoadUseHazard(idex, 5, 0, true, false)).To(BeFalse())
		})

		It("does not signal a hazard when the decoded instruction doesn't read that operand", func() {
			idex := &pipeline.IDEXRegister{Valid: true, MemRead: true, Rd: 5}
			Expect(hazard.DetectLoadUseHazard(idex, 5, 0, false, false)).To(BeFalse())
		})

		It("checks rs2 independently of rs1", func() {
			idex := &pipeline.IDEXRegister{Valid: true, MemRead: true, Rd: 7}
			Expect(hazard.DetectLoadUseHazard(idex, 0, 7, false, true)).To(BeTrue())
		})
	})

	Describe("ComputeStalls", func() {
		It("does nothing when neither hazard is present", func() {
			result := hazard.ComputeStalls(false, false)
			Expect(result).To(Equal(pipeline.StallResult{}))
		})

		It("stalls IF/ID and bubbles ID/EX on a load-use hazard", func() {
			result := hazard.ComputeStalls(true, false)
			Expect(result.StallIF).To(BeTrue())
			Expect(result.InsertBubbleEX).To(BeTrue())
			Expect(result.FlushIF).To(BeFalse())
		})

		It("flushes IF/ID and ID/EX on a control hazard", func() {
			result := hazard.ComputeStalls(false, true)
			Expect(result.FlushIF).To(BeTrue())
			Expect(result.FlushID).To(BeTrue())
			Expect(result.StallIF).To(BeFalse())
		})

		It("lets flush win when both hazards occur in the same tick", func() {
			result := hazard.ComputeStalls(true, true)
			Expect(result.FlushIF).To(BeTrue())
			Expect(result.StallIF).To(BeFalse())
			Expect(result.InsertBubbleEX).To(BeFalse())
		})
	})
})
