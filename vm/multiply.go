package vm

// executeMultiply performs MADD/MSUB. Arithmetic is modulo the operation
// width and no flags are written. Ra = 31 reads the zero register, which
// realises the MUL and MNEG aliases.
func (v *VM) executeMultiply(inst Multiply) {
	op1 := v.CPU.GetReg(inst.Rn, inst.SF)
	op2 := v.CPU.GetReg(inst.Rm, inst.SF)
	accumulate := v.CPU.GetReg(inst.Ra, inst.SF)

	product := op1 * op2
	var result uint64
	if inst.Sub {
		result = accumulate - product
	} else {
		result = accumulate + product
	}
	if !inst.SF {
		result &= Mask32Bit
	}
	v.CPU.SetReg(inst.Rd, inst.SF, result)
}
