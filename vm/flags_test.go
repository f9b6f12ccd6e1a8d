package vm_test

import (
	"testing"

	"github.com/a64sim/a64sim/vm"
)

// ================================================================================
// ADDS flag behaviour
// ================================================================================

func TestADDS_Flags64(t *testing.T) {
	tests := []struct {
		name       string
		a, b       uint64
		n, z, c, v bool
	}{
		{"zero result with carry", 0xFFFFFFFFFFFFFFFF, 1, false, true, true, false},
		{"positive overflow", 0x7FFFFFFFFFFFFFFF, 1, true, false, false, true},
		{"simple add", 5, 7, false, false, false, false},
		{"negative result", 0xFFFFFFFFFFFFFFF0, 1, true, false, false, false},
		{"negative plus negative wraps", 0x8000000000000000, 0x8000000000000000, false, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := newMachine(t, arithReg(true, 1, 0, 0, 1, 0, 2)) // adds x2, x0, x1
			machine.CPU.SetX(0, tt.a)
			machine.CPU.SetX(1, tt.b)
			if err := machine.Step(); err != nil {
				t.Fatalf("step failed: %v", err)
			}
			checkFlags(t, machine.CPU.PSTATE, tt.n, tt.z, tt.c, tt.v)
		})
	}
}

func TestADDS_Flags32(t *testing.T) {
	tests := []struct {
		name       string
		a, b       uint64
		n, z, c, v bool
	}{
		{"32-bit wrap to zero", 0xFFFFFFFF, 1, false, true, true, false},
		{"32-bit positive overflow", 0x7FFFFFFF, 1, true, false, false, true},
		{"no flags", 3, 4, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := newMachine(t, arithReg(false, 1, 0, 0, 1, 0, 2)) // adds w2, w0, w1
			machine.CPU.SetX(0, tt.a)
			machine.CPU.SetX(1, tt.b)
			if err := machine.Step(); err != nil {
				t.Fatalf("step failed: %v", err)
			}
			checkFlags(t, machine.CPU.PSTATE, tt.n, tt.z, tt.c, tt.v)
		})
	}
}

// ================================================================================
// SUBS flag behaviour
// ================================================================================

func TestSUBS_Flags64(t *testing.T) {
	tests := []struct {
		name       string
		a, b       uint64
		n, z, c, v bool
	}{
		{"equal operands", 10, 10, false, true, true, false},
		{"borrow", 5, 10, true, false, false, false},
		{"no borrow", 10, 5, false, false, true, false},
		{"signed overflow", 0x8000000000000000, 1, false, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := newMachine(t, arithReg(true, 3, 0, 0, 1, 0, 2)) // subs x2, x0, x1
			machine.CPU.SetX(0, tt.a)
			machine.CPU.SetX(1, tt.b)
			if err := machine.Step(); err != nil {
				t.Fatalf("step failed: %v", err)
			}
			checkFlags(t, machine.CPU.PSTATE, tt.n, tt.z, tt.c, tt.v)
		})
	}
}

func TestSUBS_Immediate(t *testing.T) {
	// subs x1, x0, #10 with X0 = 10 (scenario: flags after x-x)
	machine := newMachine(t, arithImm(true, 3, false, 10, 0, 1))
	machine.CPU.SetX(0, 10)
	if err := machine.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := machine.CPU.GetX(1); got != 0 {
		t.Errorf("X1 = %#x, want 0", got)
	}
	checkFlags(t, machine.CPU.PSTATE, false, true, true, false)
}

// ================================================================================
// ANDS clears C and V
// ================================================================================

func TestANDS_ClearsCarryAndOverflow(t *testing.T) {
	machine := newMachine(t,
		arithReg(true, 1, 0, 0, 1, 0, 2),      // adds x2, x0, x1 -> sets C
		logicalReg(true, 3, false, 0, 0, 3, 3, 4), // ands x4, x3, x3
	)
	machine.CPU.SetX(0, 0xFFFFFFFFFFFFFFFF)
	machine.CPU.SetX(1, 1)
	machine.CPU.SetX(3, 0x8000000000000000)
	if err := machine.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if !machine.CPU.PSTATE.C {
		t.Fatal("precondition failed: C should be set by adds")
	}
	if err := machine.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	checkFlags(t, machine.CPU.PSTATE, true, false, false, false)
}

// ================================================================================
// Flag helper formulas
// ================================================================================

func TestCarryFormulas(t *testing.T) {
	if !vm.CalculateAddCarry(0xFFFFFFFFFFFFFFFF, 0) {
		t.Error("wrap-around add should carry")
	}
	if vm.CalculateAddCarry(1, 3) {
		t.Error("2+1 should not carry")
	}
	if !vm.CalculateSubCarry(10, 10) {
		t.Error("10-10 should set carry (no borrow)")
	}
	if vm.CalculateSubCarry(9, 10) {
		t.Error("9-10 should clear carry (borrow)")
	}
}

func TestPSTATE_ByteRoundTrip(t *testing.T) {
	p := vm.PSTATE{N: true, C: true}
	var q vm.PSTATE
	q.FromByte(p.ToByte())
	if q != p {
		t.Errorf("round trip changed flags: %+v -> %+v", p, q)
	}
	if p.ToByte() != 0b1010 {
		t.Errorf("packed byte = %04b, want 1010", p.ToByte())
	}
}

func TestPSTATE_String(t *testing.T) {
	p := vm.PSTATE{Z: true, C: true}
	if got := p.String(); got != "-ZC-" {
		t.Errorf("String() = %q, want -ZC-", got)
	}
}

func checkFlags(t *testing.T, p vm.PSTATE, n, z, c, v bool) {
	t.Helper()
	if p.N != n || p.Z != z || p.C != c || p.V != v {
		t.Errorf("flags = [%s], want N=%v Z=%v C=%v V=%v", p.String(), n, z, c, v)
	}
}
