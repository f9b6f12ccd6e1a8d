package encoder

import "fmt"

// encodeHalt emits the reserved halt word
func (e *Encoder) encodeHalt(operands []string) (uint32, error) {
	if len(operands) != 0 {
		return 0, fmt.Errorf("halt takes no operands")
	}
	return HaltWord, nil
}

// encodeIntDirective emits a verbatim 32-bit value for .int
func (e *Encoder) encodeIntDirective(operands []string) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf(".int expects 1 value, got %d", len(operands))
	}
	value, err := parseImmediate(operands[0])
	if err != nil {
		return 0, err
	}
	if value < -(1<<31) || value > (1<<32)-1 {
		return 0, fmt.Errorf(".int value out of 32-bit range: %d", value)
	}
	return uint32(value), nil // #nosec G115 -- range checked above, negative values wrap intentionally
}
