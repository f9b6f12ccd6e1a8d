package vm

// ShiftType represents the shift operator applied to a register operand
type ShiftType int

const (
	ShiftLSL ShiftType = iota // Logical Shift Left
	ShiftLSR                  // Logical Shift Right
	ShiftASR                  // Arithmetic Shift Right
	ShiftROR                  // Rotate Right
)

// String returns the assembler mnemonic for a shift type
func (s ShiftType) String() string {
	switch s {
	case ShiftLSL:
		return "LSL"
	case ShiftLSR:
		return "LSR"
	case ShiftASR:
		return "ASR"
	case ShiftROR:
		return "ROR"
	}
	return "??"
}

// ApplyShift shifts a value at the current width. ASR uses a signed shift,
// ROR rotates across the width, and amounts are taken modulo the width.
// In 32-bit mode the input is reduced and the result masked to 32 bits.
func ApplyShift(value uint64, shiftType ShiftType, amount uint32, sf bool) uint64 {
	width := uint32(64)
	if !sf {
		width = 32
		value &= Mask32Bit
	}
	amount %= width
	if amount == 0 {
		return value
	}

	var result uint64
	switch shiftType {
	case ShiftLSL:
		result = value << amount
	case ShiftLSR:
		result = value >> amount
	case ShiftASR:
		if sf {
			result = uint64(int64(value) >> amount)
		} else {
			result = uint64(int64(int32(value)) >> amount)
		}
	case ShiftROR:
		result = (value >> amount) | (value << (width - amount))
	default:
		result = value
	}

	if !sf {
		result &= Mask32Bit
	}
	return result
}
