// Package selftest checks that the IP interrupt registers of an IPIF behave
// as documented. The test is destructive. It resets the whole device,
// aborting anything in flight.
//
// Nothing in this package locks. The registers are shared with the device
// driver and its interrupt handler, so the caller must keep every other user
// of the device away for the full duration of a test. Devices at different
// base addresses can be tested concurrently.
package selftest

import (
	"log"

	"github.com/sarchlab/ipif/hooking"
	"github.com/sarchlab/ipif/id"
	"github.com/sarchlab/ipif/regs"
)

// Run resets the device, tests its IP interrupt registers and resets it
// again. The device is left reset with interrupts globally disabled only if
// the test succeeds. A failing test returns immediately and the registers
// keep whatever the failing stage left in them.
//
// ipWidth is the number of implemented IP interrupt bits, in [0, 32]. A
// width out of range panics unless built with the ipifnoassert tag.
func Run(registers regs.Registers, ipWidth int) Status {
	var t Tester
	return t.Run(registers, ipWidth)
}

// SelfTest runs the self-test on the IPIF mapped at baseAddress.
func SelfTest(bus regs.Bus, baseAddress uint64, ipWidth int) Status {
	return Run(regs.OnBus(bus, baseAddress), ipWidth)
}

// A Tester runs self-tests and reports their progress to hooks. The zero
// value is ready to use.
type Tester struct {
	hooking.HookableBase

	name string
}

// NewTester creates a named Tester.
func NewTester(name string) *Tester {
	return &Tester{name: name}
}

// Name returns the name of the tester.
func (t *Tester) Name() string {
	return t.name
}

// Run is the same as the package-level Run, with progress reported to the
// tester's hooks.
func (t *Tester) Run(registers regs.Registers, ipWidth int) Status {
	mustBeValidWidth(ipWidth)

	r := t.startRun(ipWidth)

	registers.Reset()

	status := r.testIPInterruptRegisters(registers, ipWidth)
	if status != Success {
		r.end(status)
		return status
	}

	registers.Reset()

	r.end(Success)

	return Success
}

func mustBeValidWidth(ipWidth int) {
	if !assertionsEnabled {
		return
	}

	if ipWidth < 0 || ipWidth > regs.MaxInterruptWidth {
		log.Panicf("IP interrupt width %d is out of range [0, %d]",
			ipWidth, regs.MaxInterruptWidth)
	}
}

type run struct {
	tester *Tester
	id     string
	width  int
	mask   uint32
	stage  Stage
}

func (t *Tester) startRun(ipWidth int) *run {
	r := &run{tester: t, width: ipWidth}

	if t.NumHooks() == 0 {
		return r
	}

	r.id = id.Generate()
	t.invoke(HookPosTestStart, Start{RunID: r.id, Width: ipWidth})

	return r
}

// testIPInterruptRegisters expects a freshly reset device. Bits already set
// in IISR after reset are IP-defined and are left out of the test.
func (r *run) testIPInterruptRegisters(
	registers regs.Registers,
	ipWidth int,
) Status {
	enable := registers.ReadIIER()
	if !r.step(StageResetValue, 0, enable, enable == 0) {
		return ResetRegisterError
	}

	if ipWidth == 0 {
		return Success
	}

	preset := registers.ReadIISR()
	r.mask = regs.WidthMask(ipWidth) &^ preset
	r.step(StageExcludePreset, 0, preset, true)

	registers.WriteIISR(r.mask)
	status := registers.ReadIISR()
	if !r.step(StageStatusSet, r.mask, status, status&r.mask == r.mask) {
		return IPStatusError
	}

	registers.WriteIISR(r.mask)
	status = registers.ReadIISR()
	if !r.step(StageStatusAck, r.mask, status, status&r.mask == 0) {
		return IPAckError
	}

	registers.WriteIIER(r.mask)
	enable = registers.ReadIIER()
	if !r.step(StageEnableSet, r.mask, enable, enable == r.mask) {
		return IPEnableError
	}

	registers.WriteIIER(0)
	enable = registers.ReadIIER()
	if !r.step(StageEnableClear, 0, enable, enable == 0) {
		return IPEnableError
	}

	return Success
}

func (r *run) step(stage Stage, wrote, read uint32, passed bool) bool {
	if !passed {
		r.stage = stage
	}

	if r.tester.NumHooks() > 0 {
		r.tester.invoke(HookPosTestStep, Step{
			RunID:  r.id,
			Stage:  stage,
			Mask:   r.mask,
			Wrote:  wrote,
			Read:   read,
			Passed: passed,
		})
	}

	return passed
}

func (r *run) end(status Status) {
	if r.tester.NumHooks() == 0 {
		return
	}

	r.tester.invoke(HookPosTestEnd, Result{
		RunID:       r.id,
		Width:       r.width,
		Mask:        r.mask,
		Status:      status,
		FailedStage: r.stage,
	})
}

func (t *Tester) invoke(pos *hooking.HookPos, item any) {
	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    pos,
		Item:   item,
	})
}
