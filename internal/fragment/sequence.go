package fragment

import (
	"fmt"
	"math"
	"strconv"
)

const MaxSequence = math.MaxUint32

// FormatSequence renders seq as the 10-digit fragment file name.
func FormatSequence(seq uint32) string {
	return fmt.Sprintf("%010d", seq)
}

func ParseSequence(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSequence)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSequence, s)
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSequence, s)
	}
	return uint32(v), nil
}
