package device

import (
	"log"

	"github.com/sarchlab/ipif/memory"
	"github.com/sarchlab/ipif/regs"
)

// Builder can build simulated IPIF devices.
type Builder struct {
	ipWidth          int
	statusResetValue uint32
	faults           Faults
	storage          *memory.Storage
}

// MakeBuilder returns a Builder for a healthy device with all 32 IP
// interrupt bits implemented.
func MakeBuilder() Builder {
	return Builder{
		ipWidth: regs.MaxInterruptWidth,
	}
}

// WithIPWidth sets how many IP interrupt bits are implemented, starting from
// bit 0.
func (b Builder) WithIPWidth(width int) Builder {
	b.ipWidth = width
	return b
}

// WithIPStatusResetValue sets the IP-defined value of IISR after reset.
func (b Builder) WithIPStatusResetValue(value uint32) Builder {
	b.statusResetValue = value
	return b
}

// WithFaults injects hardware defects.
func (b Builder) WithFaults(faults Faults) Builder {
	b.faults = faults
	return b
}

// WithStorage sets the backing store of the register window. It must hold
// at least regs.Size bytes.
func (b Builder) WithStorage(storage *memory.Storage) Builder {
	b.storage = storage
	return b
}

// Build creates a device in its power-on state.
func (b Builder) Build(name string) *Comp {
	if b.ipWidth < 0 || b.ipWidth > regs.MaxInterruptWidth {
		log.Panicf("IP interrupt width %d is out of range", b.ipWidth)
	}

	c := &Comp{
		name:             name,
		ipWidth:          b.ipWidth,
		implemented:      regs.WidthMask(b.ipWidth),
		statusResetValue: b.statusResetValue,
		faults:           b.faults,
		storage:          b.storage,
	}

	if c.storage == nil {
		c.storage = memory.NewStorage(regs.Size)
	}

	if c.storage.Capacity() < regs.Size {
		log.Panicf("%s: storage of %d bytes cannot hold the register window",
			name, c.storage.Capacity())
	}

	c.Reset()

	return c
}
