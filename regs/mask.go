package regs

// WidthMask returns a mask with the low width bits set. Implemented
// interrupt bits are allocated from bit 0 upwards.
func WidthMask(width int) uint32 {
	switch {
	case width <= 0:
		return 0
	case width >= MaxInterruptWidth:
		return ^uint32(0)
	}

	return uint32(1)<<width - 1
}
