package selftest

import "strconv"

// Status is the outcome of a self-test.
type Status int

// The possible outcomes of a self-test.
const (
	// Success means every check passed.
	Success Status = 0

	// ResetRegisterError means IIER was not zero right after reset.
	ResetRegisterError Status = 1302

	// IPStatusError means bits written to IISR did not latch.
	IPStatusError Status = 1306

	// IPAckError means latched IISR bits did not clear when acknowledged.
	IPAckError Status = 1307

	// IPEnableError means IIER did not read back exactly what was written.
	IPEnableError Status = 1308
)

var statusNames = map[Status]string{
	Success:            "Success",
	ResetRegisterError: "ResetRegisterError",
	IPStatusError:      "IPStatusError",
	IPAckError:         "IPAckError",
	IPEnableError:      "IPEnableError",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// OK reports whether the status is Success.
func (s Status) OK() bool {
	return s == Success
}
