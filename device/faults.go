package device

// Faults describes hardware defects injected into a simulated device. The
// zero value is a healthy device.
type Faults struct {
	// EnableAtReset is the IIER value right after a reset.
	EnableAtReset uint32

	// EnableNoClear lists IIER bits that cannot be cleared once set.
	EnableNoClear uint32

	// EnableDropped lists IIER bits that cannot be set.
	EnableDropped uint32

	// StatusStuck lists IISR bits that always read as one.
	StatusStuck uint32

	// StatusDropped lists IISR bits that never latch.
	StatusDropped uint32

	// StatusNoAck makes IISR ignore writes that would clear latched bits.
	StatusNoAck bool
}

// Healthy reports whether no fault is injected.
func (f Faults) Healthy() bool {
	return f == Faults{}
}
