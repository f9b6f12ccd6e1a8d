package vm

import (
	"fmt"
	"io"
)

// DumpState writes the final processor-state snapshot: every register as
// 16 lowercase hex digits, the PC of the terminating instruction, the
// PSTATE flags, and every non-zero 32-bit memory word in ascending order.
func (v *VM) DumpState(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Registers:"); err != nil {
		return err
	}
	for i := 0; i < NumRegisters; i++ {
		if _, err := fmt.Fprintf(w, "X%02d = %016x\n", i, v.CPU.X[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "PC = %016x\n\n", v.HaltPC()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "PSTATE : %s\n", v.CPU.PSTATE.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Non-Zero Memory:"); err != nil {
		return err
	}
	for _, word := range v.Memory.NonZeroWords() {
		if _, err := fmt.Fprintf(w, "0x%08x: 0x%08x\n", word.Address, word.Value); err != nil {
			return err
		}
	}
	return nil
}

// Summary returns a one-line state description for the debugger and API
func (v *VM) Summary() string {
	return fmt.Sprintf("PC=0x%X PSTATE=[%s] Cycles=%d State=%v",
		v.CPU.PC, v.CPU.PSTATE.String(), v.CPU.Cycles, v.State)
}

// String names an execution state
func (s ExecutionState) String() string {
	switch s {
	case StateHalted:
		return "halted"
	case StateRunning:
		return "running"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	}
	return "unknown"
}
