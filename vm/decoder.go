package vm

// Decoder for 32-bit little-endian instruction words. The top-level
// dispatch is on op0 = bits[28:25]; HALT is recognised before any family.

// signExtend interprets the low width bits of value as a signed quantity
func signExtend(value uint32, width uint) int64 {
	shift := 64 - width
	return int64(uint64(value)<<shift) >> shift
}

// Decode decodes one instruction word into its family variant
func Decode(word uint32) Instruction {
	if word == HaltWord {
		return Halt{}
	}

	op0 := (word >> 25) & 0xF
	switch op0 {
	case 0x8, 0x9:
		return decodeDPImmediate(word)
	case 0x5:
		// M = bit 28 is 0 within this group; bit 24 splits logical/arith
		if (word>>24)&1 == 1 {
			return decodeArithRegister(word)
		}
		return decodeLogicalRegister(word)
	case 0xD:
		return decodeMultiply(word)
	case 0x6, 0x7, 0xC:
		// Loads and stores; bit 31 separates the register-addressed form
		// from the PC-relative literal form.
		if word>>31 == 1 {
			return decodeLoadStore(word)
		}
		return decodeLoadLiteral(word)
	case 0xA, 0xB:
		return decodeBranch(word)
	}
	return Unknown{Word: word}
}

// decodeDPImmediate handles the data-processing immediate group,
// discriminated by opi = bits[25:23]
func decodeDPImmediate(word uint32) Instruction {
	opi := (word >> 23) & 0x7
	switch opi {
	case 0x2: // arithmetic immediate
		return ArithImm{
			SF:    word>>31 == 1,
			Op:    ArithOp((word >> 29) & 0x3),
			Shift: (word>>22)&1 == 1,
			Imm12: (word >> 10) & 0xFFF,
			Rn:    int((word >> 5) & Mask5Bit),
			Rd:    int(word & Mask5Bit),
		}
	case 0x5: // wide move
		return WideMove{
			SF:    word>>31 == 1,
			Op:    WideMoveOp((word >> 29) & 0x3),
			HW:    (word >> 21) & 0x3,
			Imm16: (word >> 5) & 0xFFFF,
			Rd:    int(word & Mask5Bit),
		}
	}
	return Unknown{Word: word}
}

func decodeArithRegister(word uint32) Instruction {
	return ArithReg{
		SF:     word>>31 == 1,
		Op:     ArithOp((word >> 29) & 0x3),
		Shift:  ShiftType((word >> 22) & 0x3),
		Amount: (word >> 10) & 0x3F,
		Rm:     int((word >> 16) & Mask5Bit),
		Rn:     int((word >> 5) & Mask5Bit),
		Rd:     int(word & Mask5Bit),
	}
}

func decodeLogicalRegister(word uint32) Instruction {
	return LogicalReg{
		SF:     word>>31 == 1,
		Op:     LogicalOp((word >> 29) & 0x3),
		Negate: (word>>21)&1 == 1,
		Shift:  ShiftType((word >> 22) & 0x3),
		Amount: (word >> 10) & 0x3F,
		Rm:     int((word >> 16) & Mask5Bit),
		Rn:     int((word >> 5) & Mask5Bit),
		Rd:     int(word & Mask5Bit),
	}
}

func decodeMultiply(word uint32) Instruction {
	return Multiply{
		SF:  word>>31 == 1,
		Sub: (word>>15)&1 == 1,
		Rm:  int((word >> 16) & Mask5Bit),
		Ra:  int((word >> 10) & Mask5Bit),
		Rn:  int((word >> 5) & Mask5Bit),
		Rd:  int(word & Mask5Bit),
	}
}

func decodeLoadStore(word uint32) Instruction {
	inst := LoadStore{
		SF:   (word>>30)&1 == 1,
		Load: (word>>22)&1 == 1,
		Rn:   int((word >> 5) & Mask5Bit),
		Rt:   int(word & Mask5Bit),
	}

	unsigned := (word>>24)&1 == 1
	registerOffset := (word>>21)&1 == 1
	preIndexed := (word>>11)&1 == 1

	switch {
	case unsigned:
		inst.Mode = AddrUnsignedOffset
		inst.Imm12 = (word >> 10) & 0xFFF
	case registerOffset:
		inst.Mode = AddrRegisterOffset
		inst.Rm = int((word >> 16) & Mask5Bit)
	case preIndexed:
		inst.Mode = AddrPreIndexed
		inst.Simm9 = signExtend((word>>12)&0x1FF, 9)
	default:
		inst.Mode = AddrPostIndexed
		inst.Simm9 = signExtend((word>>12)&0x1FF, 9)
	}
	return inst
}

func decodeLoadLiteral(word uint32) Instruction {
	return LoadLiteral{
		SF:     (word>>30)&1 == 1,
		Offset: signExtend((word>>5)&0x7FFFF, 19),
		Rt:     int(word & Mask5Bit),
	}
}

// decodeBranch splits the branch group on bits[31:26]
func decodeBranch(word uint32) Instruction {
	switch word >> 26 {
	case 0x05: // unconditional
		return Branch{Offset: signExtend(word&0x3FFFFFF, 26)}
	case 0x35: // register
		return BranchReg{Rn: int((word >> 5) & Mask5Bit)}
	}
	if word>>24 == 0x54 { // conditional
		return BranchCond{
			Offset: signExtend((word>>5)&0x7FFFF, 19),
			Cond:   ConditionCode(word & 0xF),
		}
	}
	return Unknown{Word: word}
}
