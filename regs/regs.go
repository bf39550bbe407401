// Package regs describes the IPIF interrupt register map and the capabilities
// the self-test needs to reach those registers.
package regs

import "fmt"

// Register offsets relative to the IPIF base address.
const (
	DISROffset   uint64 = 0x00 // device interrupt status, toggle on write
	DIPROffset   uint64 = 0x04 // device interrupt pending, read only
	DIEROffset   uint64 = 0x08 // device interrupt enable
	DIIROffset   uint64 = 0x18 // device interrupt ID, read only
	DGIEROffset  uint64 = 0x1C // device global interrupt enable
	IISROffset   uint64 = 0x20 // IP interrupt status, toggle on write
	IIEROffset   uint64 = 0x28 // IP interrupt enable
	RESETROffset uint64 = 0x40 // reset, write only

	// Size is the span of the register window.
	Size uint64 = 0x44
)

const (
	// ResetMask is the value that must be written to RESETR to reset the
	// device.
	ResetMask uint32 = 0x0000000A

	// GlobalIntrEnable is the only implemented bit of DGIER.
	GlobalIntrEnable uint32 = 0x80000000

	// MaxInterruptWidth is the number of bits in an interrupt register.
	MaxInterruptWidth = 32
)

var names = map[uint64]string{
	DISROffset:   "DISR",
	DIPROffset:   "DIPR",
	DIEROffset:   "DIER",
	DIIROffset:   "DIIR",
	DGIEROffset:  "DGIER",
	IISROffset:   "IISR",
	IIEROffset:   "IIER",
	RESETROffset: "RESETR",
}

// Name returns the mnemonic of the register at the given offset.
func Name(offset uint64) string {
	if name, ok := names[offset]; ok {
		return name
	}

	return fmt.Sprintf("0x%02x", offset)
}

// Registers is the capability the self-test uses to reach the IP interrupt
// registers of one device.
//
// Implementations are not expected to be safe for concurrent use. The
// registers are shared with the device driver and its interrupt handler, so
// callers must keep every other user away for as long as they hold the
// registers.
type Registers interface {
	// Reset resets the whole device and disables interrupts globally.
	Reset()

	ReadIIER() uint32
	WriteIIER(value uint32)
	ReadIISR() uint32
	WriteIISR(value uint32)
}

// Bus performs 32-bit memory-mapped accesses.
type Bus interface {
	Read32(addr uint64) uint32
	Write32(addr uint64, value uint32)
}

// OnBus returns the Registers of the device whose IPIF is mapped at
// baseAddress.
func OnBus(bus Bus, baseAddress uint64) Registers {
	return &busRegisters{bus: bus, base: baseAddress}
}

type busRegisters struct {
	bus  Bus
	base uint64
}

func (r *busRegisters) Reset() {
	r.bus.Write32(r.base+RESETROffset, ResetMask)
}

func (r *busRegisters) ReadIIER() uint32 {
	return r.bus.Read32(r.base + IIEROffset)
}

func (r *busRegisters) WriteIIER(value uint32) {
	r.bus.Write32(r.base+IIEROffset, value)
}

func (r *busRegisters) ReadIISR() uint32 {
	return r.bus.Read32(r.base + IISROffset)
}

func (r *busRegisters) WriteIISR(value uint32) {
	r.bus.Write32(r.base+IISROffset, value)
}
