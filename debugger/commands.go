package debugger

import (
	"fmt"
	"strings"

	"github.com/a64sim/a64sim/vm"
)

// ExecuteCommand runs one debugger command line and returns its output.
// quit is true for the exit commands. Shared by the CLI REPL and the TUI.
func (d *Debugger) ExecuteCommand(cmdLine string) (output string, quit bool) {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine == "" {
		return "", false
	}
	d.LastCommand = cmdLine

	fields := strings.Fields(cmdLine)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "q", "exit":
		return "", true

	case "help", "h", "?":
		return helpText, false

	case "step", "s":
		if err := d.Step(); err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		return d.VM.Summary(), false

	case "continue", "c", "run", "r":
		if err := d.Continue(); err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		return d.VM.Summary(), false

	case "break", "b":
		if len(args) != 1 {
			return "usage: break <address>", false
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		d.AddBreakpoint(addr)
		return fmt.Sprintf("breakpoint set at 0x%X", addr), false

	case "delete", "d":
		if len(args) != 1 {
			return "usage: delete <address>", false
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		d.RemoveBreakpoint(addr)
		return fmt.Sprintf("breakpoint removed at 0x%X", addr), false

	case "info", "i":
		if len(args) > 0 && strings.HasPrefix(args[0], "break") {
			return d.formatBreakpoints(), false
		}
		return d.FormatRegisters(), false

	case "regs":
		return d.FormatRegisters(), false

	case "x", "examine":
		if len(args) < 1 {
			return "usage: x <address> [count]", false
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		count := uint64(8)
		if len(args) > 1 {
			if count, err = d.ResolveAddress(args[1]); err != nil {
				return fmt.Sprintf("error: %v", err), false
			}
		}
		return d.FormatMemory(addr, count), false

	case "dump":
		var sb strings.Builder
		if err := d.VM.DumpState(&sb); err != nil {
			return fmt.Sprintf("error: %v", err), false
		}
		return sb.String(), false

	case "list", "l":
		return d.FormatCode(d.VM.CPU.PC, 8), false
	}

	return fmt.Sprintf("unknown command: %s (try 'help')", cmd), false
}

// FormatRegisters renders the register file, PC and flags
func (d *Debugger) FormatRegisters() string {
	var sb strings.Builder
	cpu := d.VM.CPU
	for i := 0; i < vm.NumRegisters; i++ {
		fmt.Fprintf(&sb, "X%02d = %016x", i, cpu.X[i])
		if i%2 == 1 {
			sb.WriteByte('\n')
		} else {
			sb.WriteString("    ")
		}
	}
	if vm.NumRegisters%2 == 1 {
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "PC  = %016x    PSTATE = [%s]\n", cpu.PC, cpu.PSTATE.String())
	return sb.String()
}

// FormatMemory renders count words starting at an address
func (d *Debugger) FormatMemory(address, count uint64) string {
	var sb strings.Builder
	for i := uint64(0); i < count; i++ {
		addr := address + i*4
		word, err := d.VM.Memory.ReadWord(addr)
		if err != nil {
			fmt.Fprintf(&sb, "0x%08x: <%v>\n", addr, err)
			break
		}
		fmt.Fprintf(&sb, "0x%08x: 0x%08x\n", addr, word)
	}
	return sb.String()
}

// FormatCode renders decoded instruction words around an address, with a
// marker on the current PC
func (d *Debugger) FormatCode(address uint64, count uint64) string {
	var sb strings.Builder
	start := uint64(0)
	if address >= 2*4 {
		start = address - 2*4
	}
	for i := uint64(0); i < count; i++ {
		addr := start + i*4
		word, err := d.VM.Memory.ReadWord(addr)
		if err != nil {
			break
		}
		marker := "  "
		if addr == d.VM.CPU.PC {
			marker = "=>"
		}
		bp := " "
		if d.HasBreakpoint(addr) {
			bp = "*"
		}
		fmt.Fprintf(&sb, "%s%s 0x%08x  %08x  %s\n",
			marker, bp, addr, word, vm.Decode(word).Family())
	}
	return sb.String()
}

func (d *Debugger) formatBreakpoints() string {
	addrs := d.Breakpoints()
	if len(addrs) == 0 {
		return "no breakpoints set"
	}
	var sb strings.Builder
	for _, addr := range addrs {
		fmt.Fprintf(&sb, "breakpoint at 0x%X\n", addr)
	}
	return sb.String()
}

const helpText = `Commands:
  step, s            Execute single instruction
  continue, c        Run until breakpoint or halt
  break ADDR         Set breakpoint at address
  delete ADDR        Remove breakpoint
  info registers     Show all registers
  info breakpoints   List breakpoints
  x ADDR [N]         Examine N memory words at ADDR
  list, l            Show code around the current PC
  dump               Print the full state dump
  help               Show this help
  quit, q            Exit the debugger`
