package bus

import "log"

// Bus forwards 32-bit accesses to mapped devices.
//
// A Bus does not serialize accesses. Devices at distinct addresses can be
// used from different goroutines, but each device must only be used by one
// goroutine at a time. Mapping must finish before the bus is shared.
type Bus struct {
	mapper *RangeMapper
}

// New creates a Bus with nothing mapped.
func New() *Bus {
	return &Bus{mapper: NewRangeMapper()}
}

// Map places dev at base.
func (b *Bus) Map(base uint64, dev Device) {
	b.mapper.Map(base, dev)
}

// Mapper returns the address mapper used by the bus.
func (b *Bus) Mapper() AddressMapper {
	return b.mapper
}

// Devices lists the mapped devices in address order.
func (b *Bus) Devices() []Mapping {
	return b.mapper.Mappings()
}

// Lookup returns the mapping of the device with the given name.
func (b *Bus) Lookup(name string) (Mapping, bool) {
	for _, m := range b.mapper.Mappings() {
		if m.Device.Name() == name {
			return m, true
		}
	}

	return Mapping{}, false
}

// Read32 reads a word from the device mapped at addr.
func (b *Bus) Read32(addr uint64) uint32 {
	dev, base := b.mustFind(addr)
	return dev.Read32(addr - base)
}

// Write32 writes a word to the device mapped at addr.
func (b *Bus) Write32(addr uint64, value uint32) {
	dev, base := b.mustFind(addr)
	dev.Write32(addr-base, value)
}

func (b *Bus) mustFind(addr uint64) (Device, uint64) {
	dev, base, ok := b.mapper.Find(addr)
	if !ok {
		log.Panicf("bus error: nothing mapped at 0x%x", addr)
	}

	return dev, base
}
