package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/a64sim/a64sim/vm"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout *tview.Flex

	CodeView     *tview.TextView
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	// Base address of the memory pane
	MemoryAddress uint64
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()
	tui.refresh()

	return tui
}

// RunTUI starts the TUI debugger and blocks until it exits
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).App.Run()
}

func (t *TUI) initializeViews() {
	t.CodeView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.CodeView.SetBorder(true).SetTitle(" Code ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command (F5=continue F10=step) ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	leftPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.CodeView, 0, 2, false).
		AddItem(t.OutputView, 0, 1, false)

	rightPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 2, false).
		AddItem(t.MemoryView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(leftPanel, 0, 1, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.runCommand("continue")
			return nil
		case tcell.KeyF10:
			t.runCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmdLine := t.CommandInput.GetText()
	t.CommandInput.SetText("")
	t.runCommand(cmdLine)
}

func (t *TUI) runCommand(cmdLine string) {
	output, quit := t.Debugger.ExecuteCommand(cmdLine)
	if quit {
		t.App.Stop()
		return
	}
	if output != "" {
		fmt.Fprintf(t.OutputView, "%s\n", tview.Escape(output))
		t.OutputView.ScrollToEnd()
	}
	t.refresh()
}

// refresh redraws every pane from the current machine state
func (t *TUI) refresh() {
	t.updateRegisters()
	t.updateCode()
	t.updateMemory()
}

func (t *TUI) updateRegisters() {
	cpu := t.Debugger.VM.CPU
	var sb strings.Builder
	for i := 0; i < vm.NumRegisters; i++ {
		fmt.Fprintf(&sb, "X%02d [white]%016x[-]\n", i, cpu.X[i])
	}
	fmt.Fprintf(&sb, "PC  [yellow]%016x[-]\n", cpu.PC)
	fmt.Fprintf(&sb, "PSTATE [aqua]%s[-]  cycles %d\n", cpu.PSTATE.String(), cpu.Cycles)
	t.RegisterView.SetText(sb.String())
}

func (t *TUI) updateCode() {
	machine := t.Debugger.VM
	var sb strings.Builder

	start := uint64(0)
	if machine.CPU.PC >= 6*4 {
		start = machine.CPU.PC - 6*4
	}
	for i := uint64(0); i < 16; i++ {
		addr := start + i*4
		word, err := machine.Memory.ReadWord(addr)
		if err != nil {
			break
		}
		line := fmt.Sprintf("0x%08x  %08x  %s", addr, word, vm.Decode(word).Family())
		switch {
		case addr == machine.CPU.PC:
			fmt.Fprintf(&sb, "[black:yellow]=> %s[-:-]\n", line)
		case t.Debugger.HasBreakpoint(addr):
			fmt.Fprintf(&sb, "[red] * %s[-]\n", line)
		default:
			fmt.Fprintf(&sb, "   %s\n", line)
		}
	}
	t.CodeView.SetText(sb.String())
}

func (t *TUI) updateMemory() {
	machine := t.Debugger.VM
	var sb strings.Builder
	for i := uint64(0); i < 16; i++ {
		addr := t.MemoryAddress + i*16
		fmt.Fprintf(&sb, "0x%08x:", addr)
		for j := uint64(0); j < 4; j++ {
			word, err := machine.Memory.ReadWord(addr + j*4)
			if err != nil {
				break
			}
			fmt.Fprintf(&sb, " %08x", word)
		}
		sb.WriteByte('\n')
	}
	t.MemoryView.SetText(sb.String())
}
