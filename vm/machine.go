package vm

import (
	"fmt"
	"io"
	"os"
)

// ExecutionState represents the current state of execution
type ExecutionState int

const (
	StateHalted ExecutionState = iota
	StateRunning
	StateBreakpoint
	StateError
)

// VM represents the complete virtual machine: CPU state plus the flat
// memory image and execution bookkeeping.
type VM struct {
	CPU    *CPU
	Memory *Memory
	State  ExecutionState

	// ImageEnd is the byte address just past the loaded image. Execution
	// ends when the PC reaches it.
	ImageEnd uint64

	// CycleLimit guards against runaway programs; 0 disables the check
	CycleLimit uint64

	// Error handling
	LastError error

	// ErrOut receives diagnostics for unknown encodings (fail-soft path)
	ErrOut io.Writer

	// Optional diagnostics
	ExecutionTrace *ExecutionTrace
	Statistics     *PerformanceStatistics
}

// NewVM creates a new virtual machine with zeroed memory and a reset CPU
func NewVM() *VM {
	return &VM{
		CPU:        NewCPU(),
		Memory:     NewMemory(),
		State:      StateHalted,
		CycleLimit: DefaultMaxCycles,
		ErrOut:     os.Stderr,
	}
}

// Reset returns the machine to its power-on state
func (v *VM) Reset() {
	v.CPU.Reset()
	v.Memory.Reset()
	v.State = StateHalted
	v.ImageEnd = 0
	v.LastError = nil
}

// LoadProgram places a binary image at offset 0 and points the PC at it
func (v *VM) LoadProgram(image []byte) error {
	if err := v.Memory.LoadImage(image); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	v.CPU.PC = 0
	v.ImageEnd = uint64(len(image))
	// Paused and ready; StateHalted is reserved for terminated runs
	v.State = StateBreakpoint
	return nil
}

// Step fetches, decodes and executes a single instruction
func (v *VM) Step() error {
	if v.State == StateError {
		return fmt.Errorf("VM is in error state: %w", v.LastError)
	}

	if v.CycleLimit > 0 && v.CPU.Cycles >= v.CycleLimit {
		v.State = StateError
		v.LastError = fmt.Errorf("cycle limit exceeded (%d cycles)", v.CycleLimit)
		return v.LastError
	}

	address := v.CPU.PC
	word, err := v.Memory.ReadWord(address)
	if err != nil {
		v.State = StateError
		v.LastError = fmt.Errorf("fetch failed at PC=0x%X: %w", address, err)
		return v.LastError
	}

	inst := Decode(word)
	if v.Statistics != nil {
		v.Statistics.Record(inst)
	}

	pcWritten, err := v.execute(inst)
	if err != nil {
		v.State = StateError
		v.LastError = fmt.Errorf("execute failed at PC=0x%X: %w", address, err)
		return v.LastError
	}

	if !pcWritten {
		v.CPU.IncrementPC()
	}
	v.CPU.Cycles++

	if v.ExecutionTrace != nil {
		v.ExecutionTrace.Record(v.CPU.Cycles, address, word, inst.Family(), v.CPU.PSTATE)
	}
	return nil
}

// execute dispatches a decoded instruction to its family executor.
// It returns true when the instruction wrote the PC itself.
func (v *VM) execute(inst Instruction) (bool, error) {
	switch i := inst.(type) {
	case Halt:
		v.State = StateHalted
		return false, nil
	case ArithImm:
		v.executeArithImm(i)
	case WideMove:
		v.executeWideMove(i)
	case ArithReg:
		v.executeArithReg(i)
	case LogicalReg:
		v.executeLogicalReg(i)
	case Multiply:
		v.executeMultiply(i)
	case LoadStore:
		return false, v.executeLoadStore(i)
	case LoadLiteral:
		return false, v.executeLoadLiteral(i)
	case Branch:
		return v.executeBranch(i), nil
	case BranchReg:
		return v.executeBranchReg(i), nil
	case BranchCond:
		return v.executeBranchCond(i), nil
	case Unknown:
		// Fail-soft: log and advance so the state dumper still runs
		v.logUnknownf("unknown instruction 0x%08X at PC=0x%X", i.Word, v.CPU.PC)
	default:
		return false, fmt.Errorf("unhandled instruction family %q", inst.Family())
	}
	return false, nil
}

func (v *VM) logUnknownf(format string, args ...any) {
	if v.ErrOut != nil {
		fmt.Fprintf(v.ErrOut, format+"\n", args...)
	}
}

// Run executes instructions until HALT, an error, or the PC leaving the
// loaded image.
func (v *VM) Run() error {
	if v.State == StateError {
		return v.LastError
	}
	if v.State == StateHalted {
		// Nothing loaded, or the program already terminated
		return nil
	}
	v.State = StateRunning
	for v.State == StateRunning && v.CPU.PC < v.ImageEnd {
		if err := v.Step(); err != nil {
			return err
		}
	}
	if v.State == StateRunning {
		// Ran off the end of the image
		v.State = StateHalted
	}
	return nil
}

// HaltPC returns the address of the instruction that terminated
// execution. The step loop has already advanced past it.
func (v *VM) HaltPC() uint64 {
	if v.CPU.Cycles == 0 {
		return v.CPU.PC
	}
	return v.CPU.PC - InstructionSize
}
