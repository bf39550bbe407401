package cmd

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/ipif/device"
	"github.com/spf13/cobra"
)

// faultFlags are the command-line forms of device.Faults.
type faultFlags struct {
	enableAtReset string
	enableNoClear string
	enableDropped string
	statusStuck   string
	statusDropped string
	statusNoAck   bool
}

func addFaultFlags(cmd *cobra.Command, f *faultFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.enableAtReset, "enable-at-reset", "0",
		"Fault: IIER value right after reset")
	flags.StringVar(&f.enableNoClear, "enable-no-clear", "0",
		"Fault: IIER bits that cannot be cleared")
	flags.StringVar(&f.enableDropped, "enable-dropped", "0",
		"Fault: IIER bits that cannot be set")
	flags.StringVar(&f.statusStuck, "status-stuck", "0",
		"Fault: IISR bits that always read as one")
	flags.StringVar(&f.statusDropped, "status-dropped", "0",
		"Fault: IISR bits that never latch")
	flags.BoolVar(&f.statusNoAck, "status-no-ack", false,
		"Fault: IISR ignores acknowledge writes")
}

func (f faultFlags) faults() (device.Faults, error) {
	var (
		faults device.Faults
		err    error
	)

	fields := []struct {
		flag  string
		value string
		dst   *uint32
	}{
		{"enable-at-reset", f.enableAtReset, &faults.EnableAtReset},
		{"enable-no-clear", f.enableNoClear, &faults.EnableNoClear},
		{"enable-dropped", f.enableDropped, &faults.EnableDropped},
		{"status-stuck", f.statusStuck, &faults.StatusStuck},
		{"status-dropped", f.statusDropped, &faults.StatusDropped},
	}

	for _, field := range fields {
		*field.dst, err = parseWord(field.flag, field.value)
		if err != nil {
			return device.Faults{}, err
		}
	}

	faults.StatusNoAck = f.statusNoAck

	return faults, nil
}

// parseWord parses a 32-bit register value in any base strconv accepts.
func parseWord(flag, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}

	return uint32(v), nil
}
