// Package bus routes memory-mapped accesses to the devices that own the
// addressed register windows.
package bus

import (
	"log"
	"sort"
)

// Device is a register window that can be mapped onto a bus. Offsets are
// relative to the window base.
type Device interface {
	Name() string
	Size() uint64
	Read32(offset uint64) uint32
	Write32(offset uint64, value uint32)
}

// AddressMapper finds the device that serves an address.
type AddressMapper interface {
	Find(address uint64) (dev Device, base uint64, ok bool)
}

type window struct {
	base uint64
	dev  Device
}

func (w window) end() uint64 {
	return w.base + w.dev.Size()
}

// RangeMapper maps devices onto non-overlapping address windows.
type RangeMapper struct {
	windows []window
}

// NewRangeMapper creates an empty RangeMapper.
func NewRangeMapper() *RangeMapper {
	return &RangeMapper{}
}

// Map places dev at base. Overlapping windows panic.
func (m *RangeMapper) Map(base uint64, dev Device) {
	w := window{base: base, dev: dev}

	i := sort.Search(len(m.windows), func(i int) bool {
		return m.windows[i].base >= base
	})

	if i > 0 && m.windows[i-1].end() > base {
		log.Panicf("device %s at 0x%x overlaps %s",
			dev.Name(), base, m.windows[i-1].dev.Name())
	}

	if i < len(m.windows) && w.end() > m.windows[i].base {
		log.Panicf("device %s at 0x%x overlaps %s",
			dev.Name(), base, m.windows[i].dev.Name())
	}

	m.windows = append(m.windows, window{})
	copy(m.windows[i+1:], m.windows[i:])
	m.windows[i] = w
}

// Find returns the device whose window contains address.
func (m *RangeMapper) Find(address uint64) (Device, uint64, bool) {
	i := sort.Search(len(m.windows), func(i int) bool {
		return m.windows[i].end() > address
	})

	if i == len(m.windows) || m.windows[i].base > address {
		return nil, 0, false
	}

	return m.windows[i].dev, m.windows[i].base, true
}

// Mapping pairs a device with its base address.
type Mapping struct {
	Base   uint64
	Device Device
}

// Mappings lists the mapped devices in address order.
func (m *RangeMapper) Mappings() []Mapping {
	list := make([]Mapping, 0, len(m.windows))
	for _, w := range m.windows {
		list = append(list, Mapping{Base: w.base, Device: w.dev})
	}

	return list
}
