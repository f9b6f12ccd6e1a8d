package vm

import "fmt"

// Executors for single data transfers and PC-relative literal loads.

// executeLoadStore resolves the addressing mode, performs the transfer,
// then applies post-index write-back. Pre-index write-back happens before
// the transfer, so a load into the base register wins.
func (v *VM) executeLoadStore(inst LoadStore) error {
	scale := uint64(4)
	if inst.SF {
		scale = 8
	}

	var address uint64
	switch inst.Mode {
	case AddrUnsignedOffset:
		address = v.CPU.GetX(inst.Rn) + uint64(inst.Imm12)*scale
	case AddrRegisterOffset:
		address = v.CPU.GetX(inst.Rn) + v.CPU.GetX(inst.Rm)
	case AddrPreIndexed:
		address = v.CPU.GetX(inst.Rn) + uint64(inst.Simm9)
		v.CPU.SetX(inst.Rn, address)
	case AddrPostIndexed:
		address = v.CPU.GetX(inst.Rn)
	default:
		return fmt.Errorf("unknown addressing mode %d", inst.Mode)
	}

	if err := v.transfer(inst.SF, inst.Load, address, inst.Rt); err != nil {
		return err
	}

	if inst.Mode == AddrPostIndexed {
		v.CPU.SetX(inst.Rn, v.CPU.GetX(inst.Rn)+uint64(inst.Simm9))
	}
	return nil
}

// executeLoadLiteral loads from PC + offset*4. The PC still holds the
// address of the current instruction at this point.
func (v *VM) executeLoadLiteral(inst LoadLiteral) error {
	address := v.CPU.PC + uint64(inst.Offset*InstructionSize)
	return v.transfer(inst.SF, true, address, inst.Rt)
}

// transfer moves one register-sized value between memory and Rt.
// 32-bit loads zero-extend; 32-bit stores truncate. Rt = 31 stores zero
// and discards loads via the zero-register accessors.
func (v *VM) transfer(sf, load bool, address uint64, rt int) error {
	if load {
		if sf {
			value, err := v.Memory.ReadDouble(address)
			if err != nil {
				return err
			}
			v.CPU.SetX(rt, value)
		} else {
			value, err := v.Memory.ReadWord(address)
			if err != nil {
				return err
			}
			v.CPU.SetX(rt, uint64(value))
		}
		return nil
	}

	if sf {
		return v.Memory.WriteDouble(address, v.CPU.GetX(rt))
	}
	return v.Memory.WriteWord(address, uint32(v.CPU.GetX(rt)))
}
