package selftest

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Run", func() {
	var (
		mockCtrl  *gomock.Controller
		registers *MockRegisters
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		registers = NewMockRegisters(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should test 8 clean bits and reset twice", func() {
		gomock.InOrder(
			registers.EXPECT().Reset(),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().ReadIISR().Return(uint32(0)),
			registers.EXPECT().WriteIISR(uint32(0xFF)),
			registers.EXPECT().ReadIISR().Return(uint32(0xFF)),
			registers.EXPECT().WriteIISR(uint32(0xFF)),
			registers.EXPECT().ReadIISR().Return(uint32(0x00)),
			registers.EXPECT().WriteIIER(uint32(0xFF)),
			registers.EXPECT().ReadIIER().Return(uint32(0xFF)),
			registers.EXPECT().WriteIIER(uint32(0)),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().Reset(),
		)

		Expect(Run(registers, 8)).To(Equal(Success))
	})

	It("should leave preset status bits out of the mask", func() {
		gomock.InOrder(
			registers.EXPECT().Reset(),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().ReadIISR().Return(uint32(0x02)),
			registers.EXPECT().WriteIISR(uint32(0x0D)),
			registers.EXPECT().ReadIISR().Return(uint32(0x0F)),
			registers.EXPECT().WriteIISR(uint32(0x0D)),
			registers.EXPECT().ReadIISR().Return(uint32(0x02)),
			registers.EXPECT().WriteIIER(uint32(0x0D)),
			registers.EXPECT().ReadIIER().Return(uint32(0x0D)),
			registers.EXPECT().WriteIIER(uint32(0)),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().Reset(),
		)

		Expect(Run(registers, 4)).To(Equal(Success))
	})

	It("should only check IIER when no IP interrupt is implemented", func() {
		gomock.InOrder(
			registers.EXPECT().Reset(),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().Reset(),
		)

		Expect(Run(registers, 0)).To(Equal(Success))
	})

	It("should test all 32 bits", func() {
		all := uint32(0xFFFFFFFF)

		gomock.InOrder(
			registers.EXPECT().Reset(),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().ReadIISR().Return(uint32(0)),
			registers.EXPECT().WriteIISR(all),
			registers.EXPECT().ReadIISR().Return(all),
			registers.EXPECT().WriteIISR(all),
			registers.EXPECT().ReadIISR().Return(uint32(0)),
			registers.EXPECT().WriteIIER(all),
			registers.EXPECT().ReadIIER().Return(all),
			registers.EXPECT().WriteIIER(uint32(0)),
			registers.EXPECT().ReadIIER().Return(uint32(0)),
			registers.EXPECT().Reset(),
		)

		Expect(Run(registers, 32)).To(Equal(Success))
	})

	Context("when a check fails", func() {
		It("should report ResetRegisterError without a second reset", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0x1)),
			)

			Expect(Run(registers, 8)).To(Equal(ResetRegisterError))
		})

		It("should report ResetRegisterError even with width 0", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0x80000000)),
			)

			Expect(Run(registers, 0)).To(Equal(ResetRegisterError))
		})

		It("should report IPStatusError when bits do not latch", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0x7F)),
			)

			Expect(Run(registers, 8)).To(Equal(IPStatusError))
		})

		It("should ignore extra status bits outside the mask", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIISR(uint32(0x3)),
				registers.EXPECT().ReadIISR().Return(uint32(0x103)),
				registers.EXPECT().WriteIISR(uint32(0x3)),
				registers.EXPECT().ReadIISR().Return(uint32(0x100)),
				registers.EXPECT().WriteIIER(uint32(0x3)),
				registers.EXPECT().ReadIIER().Return(uint32(0x3)),
				registers.EXPECT().WriteIIER(uint32(0)),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().Reset(),
			)

			Expect(Run(registers, 2)).To(Equal(Success))
		})

		It("should report IPAckError when bits do not clear", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0xFF)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0x01)),
			)

			Expect(Run(registers, 8)).To(Equal(IPAckError))
		})

		It("should report IPEnableError when IIER does not set exactly", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0xFF)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIIER(uint32(0xFF)),
				registers.EXPECT().ReadIIER().Return(uint32(0x1FF)),
			)

			Expect(Run(registers, 8)).To(Equal(IPEnableError))
		})

		It("should report IPEnableError when IIER does not clear", func() {
			gomock.InOrder(
				registers.EXPECT().Reset(),
				registers.EXPECT().ReadIIER().Return(uint32(0)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0xFF)),
				registers.EXPECT().WriteIISR(uint32(0xFF)),
				registers.EXPECT().ReadIISR().Return(uint32(0)),
				registers.EXPECT().WriteIIER(uint32(0xFF)),
				registers.EXPECT().ReadIIER().Return(uint32(0xFF)),
				registers.EXPECT().WriteIIER(uint32(0)),
				registers.EXPECT().ReadIIER().Return(uint32(0x10)),
			)

			Expect(Run(registers, 8)).To(Equal(IPEnableError))
		})
	})
})

var _ = Describe("testIPInterruptRegisters", func() {
	It("should issue no writes when the width is 0", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		registers := NewMockRegisters(mockCtrl)
		registers.EXPECT().ReadIIER().Return(uint32(0))

		r := &run{tester: &Tester{}}

		Expect(r.testIPInterruptRegisters(registers, 0)).To(Equal(Success))
	})
})

var _ = Describe("Status", func() {
	It("should name every status", func() {
		Expect(Success.String()).To(Equal("Success"))
		Expect(ResetRegisterError.String()).To(Equal("ResetRegisterError"))
		Expect(IPStatusError.String()).To(Equal("IPStatusError"))
		Expect(IPAckError.String()).To(Equal("IPAckError"))
		Expect(IPEnableError.String()).To(Equal("IPEnableError"))
		Expect(Status(42).String()).To(Equal("Status(42)"))
	})

	It("should only treat Success as OK", func() {
		Expect(Success.OK()).To(BeTrue())
		Expect(IPAckError.OK()).To(BeFalse())
	})
})

var _ = Describe("Stage", func() {
	It("should name stages", func() {
		Expect(StageStatusAck.String()).To(Equal("StatusAck"))
		Expect(Stage(99).String()).To(Equal("Unknown"))
	})
})
