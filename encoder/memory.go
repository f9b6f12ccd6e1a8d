package encoder

import (
	"fmt"
	"strings"
)

// encodeLoadStore encodes ldr/str in their addressing-mode variants:
//
//	ldr Rt, label          load literal (PC-relative)
//	ldr Rt, [Xn]           unsigned offset 0
//	ldr Rt, [Xn, #imm]     unsigned offset (scaled)
//	ldr Rt, [Xn, Xm]       register offset
//	ldr Rt, [Xn, #imm]!    pre-indexed
//	ldr Rt, [Xn], #imm     post-indexed
func (e *Encoder) encodeLoadStore(mnemonic string, operands []string) (uint32, error) {
	if len(operands) < 2 {
		return 0, fmt.Errorf("%s expects a target register and an address, got %d operands", mnemonic, len(operands))
	}

	rt, err := parseRegister(operands[0])
	if err != nil {
		return 0, err
	}
	load := mnemonic == "ldr"

	addr := strings.TrimSpace(operands[1])
	if !strings.HasPrefix(addr, "[") {
		if !load {
			return 0, fmt.Errorf("str cannot take a literal address")
		}
		return e.encodeLoadLiteral(rt, addr)
	}

	// Post-indexed: the immediate sits outside the brackets
	if len(operands) == 3 {
		if strings.HasSuffix(addr, "!") || !strings.HasSuffix(addr, "]") {
			return 0, fmt.Errorf("malformed addressing mode: %s", strings.Join(operands[1:], ", "))
		}
		return e.encodeIndexed(load, rt, addr, operands[2], false)
	}
	if len(operands) != 2 {
		return 0, fmt.Errorf("%s expects 2 operands with optional post-index, got %d", mnemonic, len(operands))
	}

	// Pre-indexed: trailing '!'
	if strings.HasSuffix(addr, "!") {
		return e.encodeIndexed(load, rt, strings.TrimSuffix(addr, "!"), "", true)
	}

	return e.encodeOffset(load, rt, addr)
}

// bracketFields strips the surrounding brackets and splits the content
func bracketFields(addr string) ([]string, error) {
	if !strings.HasPrefix(addr, "[") || !strings.HasSuffix(addr, "]") {
		return nil, fmt.Errorf("malformed addressing mode: %s", addr)
	}
	inner := strings.TrimSpace(addr[1 : len(addr)-1])
	if inner == "" {
		return nil, fmt.Errorf("empty addressing mode: %s", addr)
	}
	fields := strings.Split(inner, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// encodeOffset encodes the unsigned-offset and register-offset modes
func (e *Encoder) encodeOffset(load bool, rt register, addr string) (uint32, error) {
	fields, err := bracketFields(addr)
	if err != nil {
		return 0, err
	}
	xn, err := parseRegister(fields[0])
	if err != nil {
		return 0, err
	}

	sf := sfBit(rt.is64)
	base := loadStoreBase | sf<<30 | lBit(load) |
		uint32(xn.index)<<5 | uint32(rt.index)

	switch len(fields) {
	case 1: // [Xn] — unsigned offset of zero
		return base | 1<<24, nil

	case 2:
		if isImmediate(fields[1]) { // [Xn, #imm] — scaled unsigned offset
			imm, err := parseImmediate(fields[1])
			if err != nil {
				return 0, err
			}
			scale := int64(4)
			if rt.is64 {
				scale = 8
			}
			if imm < 0 || imm%scale != 0 {
				return 0, fmt.Errorf("offset %d is not a positive multiple of %d", imm, scale)
			}
			offset := imm / scale
			if offset > maxImm12 {
				return 0, fmt.Errorf("offset out of range: %d", imm)
			}
			return base | 1<<24 | uint32(offset)<<10, nil
		}

		// [Xn, Xm] — register offset
		xm, err := parseRegister(fields[1])
		if err != nil {
			return 0, err
		}
		return base | 1<<21 | uint32(xm.index)<<16 | 0x1A<<10, nil
	}
	return 0, fmt.Errorf("malformed addressing mode: %s", addr)
}

// encodeIndexed encodes the pre- and post-indexed write-back modes
func (e *Encoder) encodeIndexed(load bool, rt register, addr, postImm string, pre bool) (uint32, error) {
	fields, err := bracketFields(addr)
	if err != nil {
		return 0, err
	}

	var immField string
	if pre {
		if len(fields) != 2 || !isImmediate(fields[1]) {
			return 0, fmt.Errorf("pre-indexed mode expects [Xn, #imm]!: %s", addr)
		}
		immField = fields[1]
	} else {
		if len(fields) != 1 {
			return 0, fmt.Errorf("post-indexed mode expects [Xn], #imm: %s", addr)
		}
		immField = postImm
	}

	xn, err := parseRegister(fields[0])
	if err != nil {
		return 0, err
	}
	imm, err := parseImmediate(immField)
	if err != nil {
		return 0, err
	}
	if imm < minSimm9 || imm > maxSimm9 {
		return 0, fmt.Errorf("indexed offset out of 9-bit signed range: %d", imm)
	}

	sf := sfBit(rt.is64)
	word := loadStoreBase | sf<<30 | lBit(load) |
		uint32(imm&0x1FF)<<12 | iBit(pre) | 1<<10 |
		uint32(xn.index)<<5 | uint32(rt.index)
	return word, nil
}

// encodeLoadLiteral encodes a PC-relative literal load
func (e *Encoder) encodeLoadLiteral(rt register, target string) (uint32, error) {
	offset, err := e.resolveTarget(target)
	if err != nil {
		return 0, err
	}
	if offset < -(1<<18) || offset >= 1<<18 {
		return 0, fmt.Errorf("literal offset out of 19-bit signed range: %d", offset)
	}

	sf := sfBit(rt.is64)
	word := loadLiteralBase | sf<<30 |
		uint32(offset&0x7FFFF)<<5 | uint32(rt.index)
	return word, nil
}

func lBit(load bool) uint32 {
	if load {
		return 1 << 22
	}
	return 0
}

func iBit(pre bool) uint32 {
	if pre {
		return 1 << 11
	}
	return 0
}
