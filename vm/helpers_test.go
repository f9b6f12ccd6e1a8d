package vm_test

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/a64sim/a64sim/vm"
)

// Hand-built encodings for driving the executor directly. These mirror
// the documented bit layouts rather than the encoder package, so the two
// sides are tested independently.

func arithImm(sf bool, opc uint32, sh bool, imm12 uint32, rn, rd int) uint32 {
	word := opc<<29 | 0x4<<26 | 0x2<<23 | imm12<<10 | uint32(rn)<<5 | uint32(rd)
	if sf {
		word |= 1 << 31
	}
	if sh {
		word |= 1 << 22
	}
	return word
}

func arithReg(sf bool, opc, shift, amount uint32, rm, rn, rd int) uint32 {
	word := opc<<29 | 0x5<<25 | 1<<24 | shift<<22 |
		uint32(rm)<<16 | amount<<10 | uint32(rn)<<5 | uint32(rd)
	if sf {
		word |= 1 << 31
	}
	return word
}

func logicalReg(sf bool, opc uint32, negate bool, shift, amount uint32, rm, rn, rd int) uint32 {
	word := opc<<29 | 0x5<<25 | shift<<22 |
		uint32(rm)<<16 | amount<<10 | uint32(rn)<<5 | uint32(rd)
	if sf {
		word |= 1 << 31
	}
	if negate {
		word |= 1 << 21
	}
	return word
}

func wideMove(sf bool, opc, hw, imm16 uint32, rd int) uint32 {
	word := opc<<29 | 0x4<<26 | 0x5<<23 | hw<<21 | imm16<<5 | uint32(rd)
	if sf {
		word |= 1 << 31
	}
	return word
}

func multiply(sf, sub bool, rm, ra, rn, rd int) uint32 {
	word := uint32(0xD8)<<21 | uint32(rm)<<16 | uint32(ra)<<10 |
		uint32(rn)<<5 | uint32(rd)
	if sf {
		word |= 1 << 31
	}
	if sub {
		word |= 1 << 15
	}
	return word
}

func loadStoreUnsigned(sf, load bool, imm12 uint32, rn, rt int) uint32 {
	word := uint32(1)<<31 | 0x1C<<25 | 1<<24 | imm12<<10 |
		uint32(rn)<<5 | uint32(rt)
	if sf {
		word |= 1 << 30
	}
	if load {
		word |= 1 << 22
	}
	return word
}

func loadStoreIndexed(sf, load, pre bool, simm9 int32, rn, rt int) uint32 {
	word := uint32(1)<<31 | 0x1C<<25 | uint32(simm9&0x1FF)<<12 | 1<<10 |
		uint32(rn)<<5 | uint32(rt)
	if sf {
		word |= 1 << 30
	}
	if load {
		word |= 1 << 22
	}
	if pre {
		word |= 1 << 11
	}
	return word
}

func loadStoreRegister(sf, load bool, rm, rn, rt int) uint32 {
	word := uint32(1)<<31 | 0x1C<<25 | 1<<21 | uint32(rm)<<16 | 0x1A<<10 |
		uint32(rn)<<5 | uint32(rt)
	if sf {
		word |= 1 << 30
	}
	if load {
		word |= 1 << 22
	}
	return word
}

func loadLiteral(sf bool, simm19 int32, rt int) uint32 {
	word := uint32(0x18)<<24 | uint32(simm19&0x7FFFF)<<5 | uint32(rt)
	if sf {
		word |= 1 << 30
	}
	return word
}

func branch(simm26 int32) uint32 {
	return 0x05<<26 | uint32(simm26&0x3FFFFFF)
}

func branchReg(rn int) uint32 {
	return 0xD61F0000 | uint32(rn)<<5
}

func branchCond(simm19 int32, cond vm.ConditionCode) uint32 {
	return 0x54<<24 | uint32(simm19&0x7FFFF)<<5 | uint32(cond)
}

// makeImage packs instruction words into a little-endian binary image
func makeImage(words ...uint32) []byte {
	image := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(image[i*4:], word)
	}
	return image
}

// newMachine loads a program built from words and silences diagnostics
func newMachine(t *testing.T, words ...uint32) *vm.VM {
	t.Helper()
	machine := vm.NewVM()
	machine.ErrOut = io.Discard
	if err := machine.LoadProgram(makeImage(words...)); err != nil {
		t.Fatalf("failed to load program: %v", err)
	}
	return machine
}

// runProgram loads and runs a program to completion
func runProgram(t *testing.T, words ...uint32) *vm.VM {
	t.Helper()
	machine := newMachine(t, words...)
	if err := machine.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return machine
}
