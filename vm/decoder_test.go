package vm_test

import (
	"testing"

	"github.com/a64sim/a64sim/vm"
)

func TestDecode_Halt(t *testing.T) {
	if _, ok := vm.Decode(0x8A000000).(vm.Halt); !ok {
		t.Fatalf("0x8A000000 should decode as Halt, got %T", vm.Decode(0x8A000000))
	}
}

func TestDecode_ArithImmediate(t *testing.T) {
	// subs x1, x0, #10
	inst, ok := vm.Decode(0xF1002801).(vm.ArithImm)
	if !ok {
		t.Fatalf("expected ArithImm, got %T", vm.Decode(0xF1002801))
	}
	if !inst.SF || inst.Op != vm.OpSUBS || inst.Shift || inst.Imm12 != 10 || inst.Rn != 0 || inst.Rd != 1 {
		t.Errorf("bad fields: %+v", inst)
	}
}

func TestDecode_WideMove(t *testing.T) {
	// movk x0, #0x1234, lsl #16
	inst, ok := vm.Decode(0xF2A24680).(vm.WideMove)
	if !ok {
		t.Fatalf("expected WideMove, got %T", vm.Decode(0xF2A24680))
	}
	if !inst.SF || inst.Op != vm.OpMOVK || inst.HW != 1 || inst.Imm16 != 0x1234 || inst.Rd != 0 {
		t.Errorf("bad fields: %+v", inst)
	}
}

func TestDecode_ArithRegister(t *testing.T) {
	// add x2, x0, x1
	inst, ok := vm.Decode(0x8B010002).(vm.ArithReg)
	if !ok {
		t.Fatalf("expected ArithReg, got %T", vm.Decode(0x8B010002))
	}
	if !inst.SF || inst.Op != vm.OpADD || inst.Rm != 1 || inst.Rn != 0 || inst.Rd != 2 {
		t.Errorf("bad fields: %+v", inst)
	}
}

func TestDecode_LogicalRegister(t *testing.T) {
	// bics w3, w1, w2, lsr #4
	word := logicalReg(false, 3, true, 1, 4, 2, 1, 3)
	inst, ok := vm.Decode(word).(vm.LogicalReg)
	if !ok {
		t.Fatalf("expected LogicalReg, got %T", vm.Decode(word))
	}
	if inst.SF || inst.Op != vm.OpANDS || !inst.Negate || inst.Shift != vm.ShiftLSR ||
		inst.Amount != 4 || inst.Rm != 2 || inst.Rn != 1 || inst.Rd != 3 {
		t.Errorf("bad fields: %+v", inst)
	}
}

func TestDecode_Multiply(t *testing.T) {
	// madd x2, x0, x1, xzr
	inst, ok := vm.Decode(0x9B017C02).(vm.Multiply)
	if !ok {
		t.Fatalf("expected Multiply, got %T", vm.Decode(0x9B017C02))
	}
	if !inst.SF || inst.Sub || inst.Rm != 1 || inst.Ra != 31 || inst.Rn != 0 || inst.Rd != 2 {
		t.Errorf("bad fields: %+v", inst)
	}
}

// Bit 31 separates register-addressed loads from PC-relative literals
// within the shared load/store group.
func TestDecode_LoadStoreVersusLiteral(t *testing.T) {
	// ldr x2, [x0]
	if inst, ok := vm.Decode(0xF9400002).(vm.LoadStore); !ok {
		t.Fatalf("expected LoadStore, got %T", vm.Decode(0xF9400002))
	} else if !inst.Load || inst.Mode != vm.AddrUnsignedOffset || inst.Rn != 0 || inst.Rt != 2 {
		t.Errorf("bad fields: %+v", inst)
	}

	// ldr x2, <literal +4 words>
	if inst, ok := vm.Decode(0x58000082).(vm.LoadLiteral); !ok {
		t.Fatalf("expected LoadLiteral, got %T", vm.Decode(0x58000082))
	} else if !inst.SF || inst.Offset != 4 || inst.Rt != 2 {
		t.Errorf("bad fields: %+v", inst)
	}
}

func TestDecode_AddressingModes(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		mode vm.AddressMode
	}{
		{"unsigned offset", loadStoreUnsigned(true, true, 3, 0, 1), vm.AddrUnsignedOffset},
		{"register offset", loadStoreRegister(true, true, 2, 0, 1), vm.AddrRegisterOffset},
		{"pre-indexed", loadStoreIndexed(true, true, true, 8, 0, 1), vm.AddrPreIndexed},
		{"post-indexed", loadStoreIndexed(true, true, false, 8, 0, 1), vm.AddrPostIndexed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := vm.Decode(tt.word).(vm.LoadStore)
			if !ok {
				t.Fatalf("expected LoadStore, got %T", vm.Decode(tt.word))
			}
			if inst.Mode != tt.mode {
				t.Errorf("mode = %d, want %d", inst.Mode, tt.mode)
			}
		})
	}
}

func TestDecode_NegativeIndexedOffset(t *testing.T) {
	word := loadStoreIndexed(true, true, true, -16, 0, 1)
	inst := vm.Decode(word).(vm.LoadStore)
	if inst.Simm9 != -16 {
		t.Errorf("Simm9 = %d, want -16", inst.Simm9)
	}
}

func TestDecode_Branches(t *testing.T) {
	if inst, ok := vm.Decode(branch(2)).(vm.Branch); !ok || inst.Offset != 2 {
		t.Errorf("unconditional branch decode failed: %+v", vm.Decode(branch(2)))
	}
	if inst, ok := vm.Decode(branch(-2)).(vm.Branch); !ok || inst.Offset != -2 {
		t.Errorf("backward branch decode failed: %+v", vm.Decode(branch(-2)))
	}
	if inst, ok := vm.Decode(branchReg(5)).(vm.BranchReg); !ok || inst.Rn != 5 {
		t.Errorf("register branch decode failed: %+v", vm.Decode(branchReg(5)))
	}
	word := branchCond(-2, vm.CondLT)
	if inst, ok := vm.Decode(word).(vm.BranchCond); !ok || inst.Offset != -2 || inst.Cond != vm.CondLT {
		t.Errorf("conditional branch decode failed: %+v", vm.Decode(word))
	}
}

func TestDecode_Unknown(t *testing.T) {
	if _, ok := vm.Decode(0xFFFFFFFF).(vm.Unknown); !ok {
		t.Errorf("expected Unknown, got %T", vm.Decode(0xFFFFFFFF))
	}
	if _, ok := vm.Decode(0x00000000).(vm.Unknown); !ok {
		t.Errorf("all-zero word should decode as Unknown, got %T", vm.Decode(0))
	}
}
