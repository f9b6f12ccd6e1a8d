package parser_test

import (
	"strings"
	"testing"

	"github.com/a64sim/a64sim/parser"
)

func parseSource(t *testing.T, source string) *parser.Program {
	t.Helper()
	program, err := parser.Parse(strings.NewReader(source), "test.s")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

func TestParse_AddressAssignment(t *testing.T) {
	program := parseSource(t, `
movz x0, #5

movz x1, #7
add x2, x0, x1
halt
`)
	if len(program.Instructions) != 4 {
		t.Fatalf("got %d instructions, want 4", len(program.Instructions))
	}
	for i, inst := range program.Instructions {
		if inst.Address != uint32(i*4) {
			t.Errorf("instruction %d at address %d, want %d", i, inst.Address, i*4)
		}
	}
	if program.Size() != 16 {
		t.Errorf("Size() = %d, want 16", program.Size())
	}
}

func TestParse_LabelsDoNotAdvanceAddress(t *testing.T) {
	program := parseSource(t, `
start:
movz x0, #1
loop:
adds x0, x0, #1
b loop
`)
	checkLabel(t, program, "start", 0)
	checkLabel(t, program, "loop", 4)
	if len(program.Instructions) != 3 {
		t.Errorf("got %d instructions, want 3", len(program.Instructions))
	}
}

func TestParse_LabelOnInstructionLine(t *testing.T) {
	program := parseSource(t, `
movz x0, #1
loop: adds x0, x0, #1
b loop
`)
	checkLabel(t, program, "loop", 4)
	if len(program.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(program.Instructions))
	}
	if program.Instructions[1].Mnemonic != "adds" {
		t.Errorf("mnemonic = %q, want adds", program.Instructions[1].Mnemonic)
	}
}

func TestParse_DuplicateLabelIsError(t *testing.T) {
	_, err := parser.Parse(strings.NewReader("a:\nmovz x0, #1\na:\nhalt\n"), "test.s")
	if err == nil {
		t.Fatal("duplicate label should be an error")
	}
	if !strings.Contains(err.Error(), "already defined") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParse_CommentsIgnored(t *testing.T) {
	program := parseSource(t, `
; full line comment
movz x0, #5 ; trailing comment
// another comment style
movz x1, #7 // trailing
`)
	if len(program.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(program.Instructions))
	}
}

func TestParse_OperandSplitting(t *testing.T) {
	program := parseSource(t, "ldr x1, [x0, #8]\nstr x2, [x3], #16\nadd x0, x1, x2, lsl #2\n")

	tests := []struct {
		idx      int
		operands []string
	}{
		{0, []string{"x1", "[x0, #8]"}},
		{1, []string{"x2", "[x3]", "#16"}},
		{2, []string{"x0", "x1", "x2", "lsl #2"}},
	}
	for _, tt := range tests {
		got := program.Instructions[tt.idx].Operands
		if len(got) != len(tt.operands) {
			t.Errorf("instruction %d: operands %v, want %v", tt.idx, got, tt.operands)
			continue
		}
		for i := range got {
			if got[i] != tt.operands[i] {
				t.Errorf("instruction %d operand %d: %q, want %q", tt.idx, i, got[i], tt.operands[i])
			}
		}
	}
}

func TestParse_Directive(t *testing.T) {
	program := parseSource(t, ".int 0xDEADBEEF\n")
	if len(program.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(program.Instructions))
	}
	if program.Instructions[0].Mnemonic != ".int" {
		t.Errorf("mnemonic = %q, want .int", program.Instructions[0].Mnemonic)
	}
}

func checkLabel(t *testing.T, program *parser.Program, name string, want uint32) {
	t.Helper()
	addr, ok := program.SymbolTable.Lookup(name)
	if !ok {
		t.Fatalf("label %q not defined", name)
	}
	if addr != want {
		t.Errorf("label %q at %d, want %d", name, addr, want)
	}
}
