package encoder

import "fmt"

// arithOpc maps canonical arithmetic mnemonics to their opc field
var arithOpc = map[string]uint32{
	"add":  0,
	"adds": 1,
	"sub":  2,
	"subs": 3,
}

// encodeArithmetic encodes add/adds/sub/subs with an immediate or shifted-
// register second operand: Rd, Rn, <#imm|Rm> [, shift #amount]
func (e *Encoder) encodeArithmetic(mnemonic string, operands []string) (uint32, error) {
	if len(operands) < 3 || len(operands) > 4 {
		return 0, fmt.Errorf("%s expects 3 operands with optional shift, got %d", mnemonic, len(operands))
	}
	opc := arithOpc[mnemonic]

	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(operands[1])
	if err != nil {
		return 0, err
	}

	if isImmediate(operands[2]) {
		return e.encodeArithImmediate(opc, rd, rn, operands)
	}
	return e.encodeArithRegister(opc, rd, rn, operands)
}

func (e *Encoder) encodeArithImmediate(opc uint32, rd, rn register, operands []string) (uint32, error) {
	imm, err := parseImmediate(operands[2])
	if err != nil {
		return 0, err
	}
	if imm < 0 || imm > maxImm12 {
		return 0, fmt.Errorf("immediate out of 12-bit range: %d", imm)
	}

	// Optional "lsl #12" moves the immediate into the upper slot
	sh := uint32(0)
	if len(operands) == 4 {
		shift, err := parseShift(operands[3], false)
		if err != nil {
			return 0, err
		}
		if shift.name != "lsl" || (shift.amount != 0 && shift.amount != 12) {
			return 0, fmt.Errorf("immediate shift must be lsl #0 or lsl #12")
		}
		if shift.amount == 12 {
			sh = 1
		}
	}

	sf := sfBit(widthOf(rd, rn))
	word := sf<<31 | opc<<29 | arithImmBase | sh<<22 |
		uint32(imm)<<10 | uint32(rn.index)<<5 | uint32(rd.index)
	return word, nil
}

func (e *Encoder) encodeArithRegister(opc uint32, rd, rn register, operands []string) (uint32, error) {
	rm, err := parseRegister(operands[2])
	if err != nil {
		return 0, err
	}

	var shift shiftSpec
	if len(operands) == 4 {
		if shift, err = parseShift(operands[3], false); err != nil {
			return 0, err
		}
	}

	sf := sfBit(widthOf(rd, rn, rm))
	word := sf<<31 | opc<<29 | arithRegBase | shift.code<<22 |
		uint32(rm.index)<<16 | shift.amount<<10 |
		uint32(rn.index)<<5 | uint32(rd.index)
	return word, nil
}

// logicalOpc maps canonical logical mnemonics to opc and the N bit
var logicalOpc = map[string]struct {
	opc uint32
	n   uint32
}{
	"and":  {0, 0},
	"bic":  {0, 1},
	"orr":  {1, 0},
	"orn":  {1, 1},
	"eor":  {2, 0},
	"eon":  {2, 1},
	"ands": {3, 0},
	"bics": {3, 1},
}

// encodeLogical encodes the bitwise register instructions:
// Rd, Rn, Rm [, shift #amount]. ROR is permitted here.
func (e *Encoder) encodeLogical(mnemonic string, operands []string) (uint32, error) {
	if len(operands) < 3 || len(operands) > 4 {
		return 0, fmt.Errorf("%s expects 3 operands with optional shift, got %d", mnemonic, len(operands))
	}
	op := logicalOpc[mnemonic]

	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	if isImmediate(operands[2]) {
		return 0, fmt.Errorf("%s does not take an immediate operand", mnemonic)
	}
	rm, err := parseRegister(operands[2])
	if err != nil {
		return 0, err
	}

	var shift shiftSpec
	if len(operands) == 4 {
		if shift, err = parseShift(operands[3], true); err != nil {
			return 0, err
		}
	}

	sf := sfBit(widthOf(rd, rn, rm))
	word := sf<<31 | op.opc<<29 | dpRegBase | shift.code<<22 | op.n<<21 |
		uint32(rm.index)<<16 | shift.amount<<10 |
		uint32(rn.index)<<5 | uint32(rd.index)
	return word, nil
}

// wideMoveOpc maps wide-move mnemonics to their opc field
var wideMoveOpc = map[string]uint32{
	"movn": 0,
	"movz": 2,
	"movk": 3,
}

// encodeWideMove encodes movn/movz/movk: Rd, #imm16 [, lsl #hw*16]
func (e *Encoder) encodeWideMove(mnemonic string, operands []string) (uint32, error) {
	if len(operands) < 2 || len(operands) > 3 {
		return 0, fmt.Errorf("%s expects 2 operands with optional shift, got %d", mnemonic, len(operands))
	}
	opc := wideMoveOpc[mnemonic]

	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	imm, err := parseImmediate(operands[1])
	if err != nil {
		return 0, err
	}
	if imm < 0 || imm > maxImm16 {
		return 0, fmt.Errorf("immediate out of 16-bit range: %d", imm)
	}

	hw := uint32(0)
	if len(operands) == 3 {
		shift, err := parseShift(operands[2], false)
		if err != nil {
			return 0, err
		}
		if shift.name != "lsl" || shift.amount%16 != 0 || shift.amount > 48 {
			return 0, fmt.Errorf("wide-move shift must be lsl #0/16/32/48")
		}
		hw = shift.amount / 16
	}
	if !rd.is64 && hw > 1 {
		return 0, fmt.Errorf("wide-move shift exceeds 32-bit width")
	}

	sf := sfBit(rd.is64)
	word := sf<<31 | opc<<29 | wideMoveBase | hw<<21 |
		uint32(imm)<<5 | uint32(rd.index)
	return word, nil
}

// encodeMultiply encodes madd/msub: Rd, Rn, Rm, Ra
func (e *Encoder) encodeMultiply(mnemonic string, operands []string) (uint32, error) {
	if len(operands) != 4 {
		return 0, fmt.Errorf("%s expects 4 operands, got %d", mnemonic, len(operands))
	}

	rd, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	rn, err := parseRegister(operands[1])
	if err != nil {
		return 0, err
	}
	rm, err := parseRegister(operands[2])
	if err != nil {
		return 0, err
	}
	ra, err := parseRegister(operands[3])
	if err != nil {
		return 0, err
	}

	x := uint32(0)
	if mnemonic == "msub" {
		x = 1
	}

	sf := sfBit(widthOf(rd, rn, rm))
	word := sf<<31 | multiplyBase | uint32(rm.index)<<16 | x<<15 |
		uint32(ra.index)<<10 | uint32(rn.index)<<5 | uint32(rd.index)
	return word, nil
}
