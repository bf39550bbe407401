// Package memory provides the byte-addressed backing store of simulated
// register files.
package memory

import (
	"encoding/binary"
	"errors"
)

// ErrOutOfRange is returned when an access falls outside the storage.
var ErrOutOfRange = errors.New("accessing address beyond the storage capacity")

// A Storage keeps the bytes of a simulated register window.
//
// The storage is managed in units. Units that are never touched by Read or
// Write are not allocated, which keeps sparse windows cheap.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return NewStorageWithUnitSize(capacity, 64)
}

// NewStorageWithUnitSize creates a storage that allocates unitSize bytes at a
// time.
func NewStorageWithUnitSize(capacity, unitSize uint64) *Storage {
	if unitSize == 0 {
		panic("unit size must be positive")
	}

	return &Storage{
		unitSize: unitSize,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of addressable bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) createOrGetUnit(address uint64) ([]byte, error) {
	if address >= s.capacity {
		return nil, ErrOutOfRange
	}

	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit, nil
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return baseAddr, inUnitAddr
}

// Read returns length bytes starting at address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		unit, err := s.createOrGetUnit(currAddr)
		if err != nil {
			return nil, err
		}

		_, inUnitAddr := s.parseAddress(currAddr)
		n := copy(res[dataOffset:], unit[inUnitAddr:])
		dataOffset += uint64(n)
		currAddr += uint64(n)
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < uint64(len(data)) {
		unit, err := s.createOrGetUnit(currAddr)
		if err != nil {
			return err
		}

		_, inUnitAddr := s.parseAddress(currAddr)
		n := copy(unit[inUnitAddr:], data[dataOffset:])
		dataOffset += uint64(n)
		currAddr += uint64(n)
	}

	return nil
}

// Read32 reads a little-endian 32-bit word.
func (s *Storage) Read32(address uint64) (uint32, error) {
	buf, err := s.Read(address, 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf), nil
}

// Write32 writes a little-endian 32-bit word.
func (s *Storage) Write32(address uint64, value uint32) error {
	var buf [4]byte

	binary.LittleEndian.PutUint32(buf[:], value)

	return s.Write(address, buf[:])
}

// Clear zeroes every byte of the storage.
func (s *Storage) Clear() {
	s.data = make(map[uint64][]byte)
}
