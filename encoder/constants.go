package encoder

// Fixed encoding bit patterns for the supported families
const (
	// HaltWord is emitted for the halt mnemonic and intercepted by the
	// emulator before family dispatch
	HaltWord = 0x8A000000

	// Arithmetic immediate: 100 at bits [28:26], opi 010 at [25:23]
	arithImmBase = 0x4<<26 | 0x2<<23

	// Wide move: 100 at bits [28:26], opi 101 at [25:23]
	wideMoveBase = 0x4<<26 | 0x5<<23

	// Data-processing register: 101 at bits [27:25]; bit 24 set for
	// arithmetic, clear for logical
	dpRegBase    = 0x5 << 25
	arithRegBase = dpRegBase | 1<<24

	// Multiply: 0011011000 at bits [30:21]
	multiplyBase = 0xD8 << 21

	// Load/store register form: bit 31 set, 11100 at bits [29:25]
	loadStoreBase = 1<<31 | 0x1C<<25

	// Load literal: 011000 at bits [29:24], bit 31 clear
	loadLiteralBase = 0x18 << 24

	// Branches
	branchBase     = 0x05 << 26 // unconditional
	branchRegBase  = 0x3587C0 << 10
	branchCondBase = 0x54 << 24
)

// Field limits
const (
	maxImm12 = 0xFFF
	maxImm16 = 0xFFFF
	minSimm9 = -256
	maxSimm9 = 255
)
