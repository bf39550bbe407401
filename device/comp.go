// Package device simulates the interrupt registers of an IPIF so that the
// self-test can run without real hardware.
package device

import (
	"log"
	"math/bits"

	"github.com/sarchlab/ipif/hooking"
	"github.com/sarchlab/ipif/memory"
	"github.com/sarchlab/ipif/regs"
)

// Hook positions triggered by a simulated device.
var (
	HookPosRegRead  = &hooking.HookPos{Name: "RegRead"}
	HookPosRegWrite = &hooking.HookPos{Name: "RegWrite"}
	HookPosReset    = &hooking.HookPos{Name: "Reset"}
)

// Access is the item passed to hooks for every register access. Value is the
// value read or the value written by software.
type Access struct {
	Device   string
	Offset   uint64
	Register string
	Value    uint32
}

// State is a copy of the software-visible registers.
type State struct {
	DISR  uint32
	DIPR  uint32
	DIER  uint32
	DIIR  uint32
	DGIER uint32
	IISR  uint32
	IIER  uint32
}

// noPendingID is what DIIR reads when nothing is pending.
const noPendingID uint32 = 128

// Comp is a simulated IPIF. It is not safe for concurrent use.
type Comp struct {
	hooking.HookableBase

	name             string
	ipWidth          int
	implemented      uint32
	statusResetValue uint32
	faults           Faults
	storage          *memory.Storage
}

// Name returns the name of the device.
func (c *Comp) Name() string {
	return c.name
}

// IPWidth returns the number of implemented IP interrupt bits.
func (c *Comp) IPWidth() int {
	return c.ipWidth
}

// Size returns the span of the register window.
func (c *Comp) Size() uint64 {
	return regs.Size
}

// Registers returns the IP interrupt registers of the device, addressed
// directly rather than through a bus.
func (c *Comp) Registers() regs.Registers {
	return regs.OnBus(c, 0)
}

// Read32 reads the register at offset, as seen by software.
func (c *Comp) Read32(offset uint64) uint32 {
	value := c.peek(offset)
	c.invoke(HookPosRegRead, offset, value)

	return value
}

// Write32 writes the register at offset, as done by software.
func (c *Comp) Write32(offset uint64, value uint32) {
	c.invoke(HookPosRegWrite, offset, value)

	switch offset {
	case regs.RESETROffset:
		if value == regs.ResetMask {
			c.Reset()
		}
	case regs.DISROffset:
		c.store(offset, c.load(offset)^value)
	case regs.DIEROffset:
		c.store(offset, value)
	case regs.DGIEROffset:
		c.store(offset, value&regs.GlobalIntrEnable)
	case regs.IIEROffset:
		c.writeIIER(value)
	case regs.IISROffset:
		c.writeIISR(value)
	case regs.DIPROffset, regs.DIIROffset:
	default:
		log.Panicf("%s: write to unimplemented register 0x%02x", c.name, offset)
	}
}

// Reset puts every register back to its power-on value. Interrupts end up
// globally disabled.
func (c *Comp) Reset() {
	c.storage.Clear()
	c.store(regs.IISROffset, c.statusResetValue&c.implemented)
	c.store(regs.IIEROffset, c.faults.EnableAtReset)

	c.invoke(HookPosReset, regs.RESETROffset, regs.ResetMask)
}

// RaiseIPInterrupt latches IP interrupt events into IISR, the way the IP logic
// of a real device does.
func (c *Comp) RaiseIPInterrupt(events uint32) {
	status := c.load(regs.IISROffset) | (events & c.implemented)
	c.store(regs.IISROffset, status&^c.faults.StatusDropped)
}

// IRQ reports whether the device drives its interrupt output.
func (c *Comp) IRQ() bool {
	if c.load(regs.DGIEROffset)&regs.GlobalIntrEnable == 0 {
		return false
	}

	ipPending := c.peek(regs.IISROffset) & c.peek(regs.IIEROffset)

	return ipPending != 0 || c.peek(regs.DIPROffset) != 0
}

// Snapshot returns the registers without triggering hooks.
func (c *Comp) Snapshot() State {
	return State{
		DISR:  c.peek(regs.DISROffset),
		DIPR:  c.peek(regs.DIPROffset),
		DIER:  c.peek(regs.DIEROffset),
		DIIR:  c.peek(regs.DIIROffset),
		DGIER: c.peek(regs.DGIEROffset),
		IISR:  c.peek(regs.IISROffset),
		IIER:  c.peek(regs.IIEROffset),
	}
}

// IIER returns the IP interrupt enable register without triggering hooks.
func (c *Comp) IIER() uint32 {
	return c.peek(regs.IIEROffset)
}

// IISR returns the IP interrupt status register without triggering hooks.
func (c *Comp) IISR() uint32 {
	return c.peek(regs.IISROffset)
}

// DGIER returns the global interrupt enable register without triggering
// hooks.
func (c *Comp) DGIER() uint32 {
	return c.peek(regs.DGIEROffset)
}

func (c *Comp) writeIIER(value uint32) {
	old := c.load(regs.IIEROffset)
	next := value & c.implemented &^ c.faults.EnableDropped
	next |= old & c.faults.EnableNoClear

	c.store(regs.IIEROffset, next)
}

func (c *Comp) writeIISR(value uint32) {
	old := c.load(regs.IISROffset)
	next := old ^ (value & c.implemented)
	next &^= c.faults.StatusDropped

	if c.faults.StatusNoAck {
		next |= old
	}

	c.store(regs.IISROffset, next)
}

func (c *Comp) peek(offset uint64) uint32 {
	switch offset {
	case regs.RESETROffset:
		return 0
	case regs.DIPROffset:
		return c.load(regs.DISROffset) & c.load(regs.DIEROffset)
	case regs.DIIROffset:
		pending := c.load(regs.DISROffset) & c.load(regs.DIEROffset)
		if pending == 0 {
			return noPendingID
		}

		return uint32(bits.TrailingZeros32(pending))
	case regs.IISROffset:
		return c.load(offset) | c.faults.StatusStuck
	}

	return c.load(offset)
}

func (c *Comp) load(offset uint64) uint32 {
	value, err := c.storage.Read32(offset)
	if err != nil {
		log.Panicf("%s: %v", c.name, err)
	}

	return value
}

func (c *Comp) store(offset uint64, value uint32) {
	err := c.storage.Write32(offset, value)
	if err != nil {
		log.Panicf("%s: %v", c.name, err)
	}
}

func (c *Comp) invoke(pos *hooking.HookPos, offset uint64, value uint32) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item: Access{
			Device:   c.name,
			Offset:   offset,
			Register: regs.Name(offset),
			Value:    value,
		},
	})
}
