package encoder

import (
	"fmt"
	"strings"

	"github.com/a64sim/a64sim/vm"
)

// encodeBranch encodes b (PC-relative label) and br (register target)
func (e *Encoder) encodeBranch(mnemonic string, operands []string) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("%s expects 1 operand, got %d", mnemonic, len(operands))
	}

	if mnemonic == "br" {
		xn, err := parseRegister(operands[0])
		if err != nil {
			return 0, err
		}
		return branchRegBase | uint32(xn.index)<<5, nil
	}

	offset, err := e.resolveTarget(operands[0])
	if err != nil {
		return 0, err
	}
	if offset < -(1<<25) || offset >= 1<<25 {
		return 0, fmt.Errorf("branch offset out of 26-bit signed range: %d", offset)
	}
	return branchBase | uint32(offset&0x3FFFFFF), nil
}

// encodeBranchCond encodes b.<cond> with a PC-relative target
func (e *Encoder) encodeBranchCond(mnemonic string, operands []string) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("%s expects 1 operand, got %d", mnemonic, len(operands))
	}

	suffix := strings.TrimPrefix(mnemonic, "b.")
	cond, ok := vm.ParseConditionCode(suffix)
	if !ok {
		return 0, fmt.Errorf("unknown branch condition: %s", suffix)
	}

	offset, err := e.resolveTarget(operands[0])
	if err != nil {
		return 0, err
	}
	if offset < -(1<<18) || offset >= 1<<18 {
		return 0, fmt.Errorf("branch offset out of 19-bit signed range: %d", offset)
	}
	return branchCondBase | uint32(offset&0x7FFFF)<<5 | uint32(cond), nil
}
