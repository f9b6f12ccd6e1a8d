package vm

// CPU represents the processor state: 31 general-purpose 64-bit registers,
// the program counter, and the PSTATE condition flags.
type CPU struct {
	// General purpose registers X0-X30
	X [NumRegisters]uint64

	// Program Counter: byte address of the instruction currently executing
	PC uint64

	// Condition flags
	PSTATE PSTATE

	// Cycle counter for limits and statistics
	Cycles uint64
}

// PSTATE holds the four condition flags
type PSTATE struct {
	N bool // Negative flag (msb of result at the current width)
	Z bool // Zero flag (result == 0)
	C bool // Carry flag (unsigned overflow / no borrow)
	V bool // Overflow flag (signed overflow)
}

// Flag bit positions within the packed PSTATE byte
const (
	flagPosN = 3
	flagPosZ = 2
	flagPosC = 1
	flagPosV = 0
)

// ToByte packs the flags into a single byte: N=bit3, Z=bit2, C=bit1, V=bit0
func (p *PSTATE) ToByte() byte {
	var result byte
	if p.N {
		result |= 1 << flagPosN
	}
	if p.Z {
		result |= 1 << flagPosZ
	}
	if p.C {
		result |= 1 << flagPosC
	}
	if p.V {
		result |= 1 << flagPosV
	}
	return result
}

// FromByte unpacks the flags from a single byte
func (p *PSTATE) FromByte(value byte) {
	p.N = value&(1<<flagPosN) != 0
	p.Z = value&(1<<flagPosZ) != 0
	p.C = value&(1<<flagPosC) != 0
	p.V = value&(1<<flagPosV) != 0
}

// String renders the flags in dump order, e.g. "-Z--"
func (p *PSTATE) String() string {
	buf := []byte{'-', '-', '-', '-'}
	if p.N {
		buf[0] = 'N'
	}
	if p.Z {
		buf[1] = 'Z'
	}
	if p.C {
		buf[2] = 'C'
	}
	if p.V {
		buf[3] = 'V'
	}
	return string(buf)
}

// NewCPU creates a CPU in its reset state (all registers zero, Z flag set)
func NewCPU() *CPU {
	return &CPU{
		PSTATE: PSTATE{Z: true},
	}
}

// Reset returns the CPU to its initial state
func (c *CPU) Reset() {
	for i := range c.X {
		c.X[i] = 0
	}
	c.PC = 0
	c.PSTATE = PSTATE{Z: true}
	c.Cycles = 0
}

// GetX returns a register value. Index 31 is the zero register and reads as 0.
func (c *CPU) GetX(reg int) uint64 {
	if reg < 0 || reg >= NumRegisters {
		return 0
	}
	return c.X[reg]
}

// SetX writes a register. Writes to index 31 are discarded.
func (c *CPU) SetX(reg int, value uint64) {
	if reg < 0 || reg >= NumRegisters {
		return
	}
	c.X[reg] = value
}

// GetW returns the low 32 bits of a register, zero-extended
func (c *CPU) GetW(reg int) uint64 {
	return c.GetX(reg) & Mask32Bit
}

// SetW writes the low 32 bits of a register and clears bits [63:32]
func (c *CPU) SetW(reg int, value uint64) {
	c.SetX(reg, value&Mask32Bit)
}

// GetReg reads a register at the given width
func (c *CPU) GetReg(reg int, sf bool) uint64 {
	if sf {
		return c.GetX(reg)
	}
	return c.GetW(reg)
}

// SetReg writes a register at the given width
func (c *CPU) SetReg(reg int, sf bool, value uint64) {
	if sf {
		c.SetX(reg, value)
	} else {
		c.SetW(reg, value)
	}
}

// IncrementPC advances the program counter by one instruction
func (c *CPU) IncrementPC() {
	c.PC += InstructionSize
}

// Branch sets the program counter to a new address
func (c *CPU) Branch(address uint64) {
	c.PC = address
}
