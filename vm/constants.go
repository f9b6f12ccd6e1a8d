package vm

// Memory layout
const (
	MemorySize      = 2 * 1024 * 1024 // 2MB flat image
	InstructionSize = 4
)

// HaltWord is the reserved instruction word that terminates emulation.
// It is recognised before family dispatch.
const HaltWord = 0x8A000000

// Register file
const (
	NumRegisters = 31
	ZR           = 31 // encodings of index 31 denote the zero register
)

// Bit masks and positions
const (
	Mask32Bit    = 0xFFFFFFFF
	Mask5Bit     = 0x1F
	SignBitPos32 = 31
	SignBitPos64 = 63
	SignBit32    = uint64(1) << SignBitPos32
	SignBit64    = uint64(1) << SignBitPos64
)

// Execution defaults
const (
	DefaultMaxCycles = 1000000
)
