package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ipif/device"
	"github.com/sarchlab/ipif/hooking"
	"github.com/sarchlab/ipif/regs"
	"github.com/sarchlab/ipif/selftest"
)

var _ = Describe("AccessTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		dev      *device.Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		dev = device.MakeBuilder().WithIPWidth(8).Build("IPIF")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep accesses in memory without a recorder", func() {
		tracer := NewAccessTracer(nil)
		dev.AcceptHook(tracer)

		dev.Write32(regs.IIEROffset, 0x3)
		dev.Read32(regs.IIEROffset)

		Expect(tracer.Accesses()).To(Equal([]AccessRecord{
			{Seq: 1, Device: "IPIF", Kind: KindWrite, Register: "IIER",
				Offset: regs.IIEROffset, Value: 0x3},
			{Seq: 2, Device: "IPIF", Kind: KindRead, Register: "IIER",
				Offset: regs.IIEROffset, Value: 0x3},
		}))

		tracer.Clear()
		Expect(tracer.Accesses()).To(BeEmpty())
	})

	It("should store accesses through the recorder", func() {
		recorder.EXPECT().CreateTable(AccessTable, AccessRecord{})
		recorder.EXPECT().InsertData(AccessTable, AccessRecord{
			Seq: 1, Device: "IPIF", Kind: KindReset, Register: "RESETR",
			Offset: regs.RESETROffset, Value: regs.ResetMask,
		})

		tracer := NewAccessTracer(recorder)
		dev.AcceptHook(tracer)

		dev.Reset()
	})

	It("should ignore unrelated hook positions", func() {
		tracer := NewAccessTracer(nil)

		tracer.Func(hooking.HookCtx{Pos: selftest.HookPosTestEnd})

		Expect(tracer.Accesses()).To(BeEmpty())
	})

	It("should trace the full self-test sequence", func() {
		tracer := NewAccessTracer(nil)
		dev.AcceptHook(tracer)

		Expect(selftest.Run(dev.Registers(), 8)).To(Equal(selftest.Success))

		kinds := []string{}
		for _, a := range tracer.Accesses() {
			kinds = append(kinds, a.Kind+" "+a.Register)
		}

		Expect(kinds).To(Equal([]string{
			"write RESETR", "reset RESETR",
			"read IIER",
			"read IISR",
			"write IISR", "read IISR",
			"write IISR", "read IISR",
			"write IIER", "read IIER",
			"write IIER", "read IIER",
			"write RESETR", "reset RESETR",
		}))
	})
})

var _ = Describe("ResultTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		tester   *selftest.Tester
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		tester = selftest.NewTester("SelfTest")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record results and steps", func() {
		recorder.EXPECT().CreateTable(ResultTable, ResultRecord{})
		recorder.EXPECT().CreateTable(StepTable, StepRecord{})
		recorder.EXPECT().
			InsertData(StepTable, gomock.AssignableToTypeOf(StepRecord{})).
			Times(4)
		recorder.EXPECT().InsertData(ResultTable, gomock.Any()).
			Do(func(_ string, entry any) {
				record := entry.(ResultRecord)
				Expect(record.Tester).To(Equal("SelfTest"))
				Expect(record.Status).To(Equal("IPAckError"))
				Expect(record.StatusCode).To(Equal(1307))
				Expect(record.FailedStage).To(Equal("StatusAck"))
			})

		tracer := NewResultTracer(recorder)
		tester.AcceptHook(tracer)

		dev := device.MakeBuilder().
			WithIPWidth(8).
			WithFaults(device.Faults{StatusNoAck: true}).
			Build("IPIF")

		Expect(tester.Run(dev.Registers(), 8)).To(Equal(selftest.IPAckError))

		Expect(tracer.Results()).To(HaveLen(1))
		steps := tracer.Steps()
		Expect(steps).To(HaveLen(4))
		Expect(steps[3].Passed).To(BeFalse())
		Expect(steps[3].Read).To(Equal(uint32(0xFF)))
	})

	It("should work without a recorder", func() {
		tracer := NewResultTracer(nil)
		tester.AcceptHook(tracer)

		dev := device.MakeBuilder().WithIPWidth(0).Build("IPIF")
		tester.Run(dev.Registers(), 0)

		Expect(tracer.Results()).To(ConsistOf(HaveField("Status", "Success")))
		Expect(tracer.Steps()).To(HaveLen(1))
	})
})
