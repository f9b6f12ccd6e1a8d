package debugger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/a64sim/a64sim/vm"
)

// Debugger wraps a VM with breakpoints and stepping controls
type Debugger struct {
	VM *vm.VM

	breakpoints map[uint64]bool

	// Last command, repeated on empty input
	LastCommand string
}

// NewDebugger creates a debugger over a machine
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		breakpoints: make(map[uint64]bool),
	}
}

// AddBreakpoint sets a breakpoint at an address
func (d *Debugger) AddBreakpoint(address uint64) {
	d.breakpoints[address] = true
}

// RemoveBreakpoint clears a breakpoint
func (d *Debugger) RemoveBreakpoint(address uint64) {
	delete(d.breakpoints, address)
}

// HasBreakpoint reports whether an address has a breakpoint
func (d *Debugger) HasBreakpoint(address uint64) bool {
	return d.breakpoints[address]
}

// Breakpoints returns all breakpoint addresses in ascending order
func (d *Debugger) Breakpoints() []uint64 {
	addrs := make([]uint64, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Step executes a single instruction
func (d *Debugger) Step() error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program has terminated")
	}
	if d.VM.CPU.PC >= d.VM.ImageEnd {
		d.VM.State = vm.StateHalted
		return fmt.Errorf("program has terminated")
	}
	d.VM.State = vm.StateRunning
	err := d.VM.Step()
	if d.VM.State == vm.StateRunning {
		d.VM.State = vm.StateBreakpoint // paused between instructions
	}
	return err
}

// Continue runs until a breakpoint, halt, error, or the image end
func (d *Debugger) Continue() error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program has terminated")
	}
	d.VM.State = vm.StateRunning
	for d.VM.State == vm.StateRunning && d.VM.CPU.PC < d.VM.ImageEnd {
		if err := d.VM.Step(); err != nil {
			return err
		}
		if d.VM.State == vm.StateRunning && d.HasBreakpoint(d.VM.CPU.PC) {
			d.VM.State = vm.StateBreakpoint
			return nil
		}
	}
	if d.VM.State == vm.StateRunning {
		d.VM.State = vm.StateHalted
	}
	return nil
}

// ResolveAddress parses a hex (0x-prefixed) or decimal address
func (d *Debugger) ResolveAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	var value uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		value, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		value, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return value, nil
}
