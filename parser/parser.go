package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Instruction is one instruction or directive line with its assigned
// byte address in the output image.
type Instruction struct {
	Mnemonic string
	Operands []string
	Address  uint32
	RawLine  string
	Pos      Position
}

// Program is the result of pass 1: every instruction line with its
// address, plus the label symbol table.
type Program struct {
	Instructions []*Instruction
	SymbolTable  *SymbolTable
}

// Size returns the size in bytes of the assembled image
func (p *Program) Size() uint32 {
	return uint32(len(p.Instructions)) * 4
}

// Parse runs pass 1 over a source reader: it tokenises each line, records
// label addresses, and assigns the instruction-line cursor (advanced by 4
// per non-label, non-blank line).
func Parse(r io.Reader, filename string) (*Program, error) {
	program := &Program{
		SymbolTable: NewSymbolTable(),
	}
	errors := &ErrorList{}

	scanner := bufio.NewScanner(r)
	address := uint32(0)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		pos := Position{Filename: filename, Line: lineNo}

		line := strings.TrimSpace(StripComment(raw))
		if line == "" {
			continue
		}

		// A line may carry label definitions before the instruction;
		// labels alone do not advance the address cursor.
		for line != "" {
			token := line
			rest := ""
			if i := strings.IndexAny(line, " \t"); i >= 0 {
				token = line[:i]
				rest = strings.TrimSpace(line[i+1:])
			}
			if !IsLabelDefinition(token) {
				break
			}
			name := strings.TrimSuffix(token, ":")
			if name == "" {
				errors.AddError(NewErrorWithContext(pos, ErrorSyntax, "empty label name", raw))
			} else if err := program.SymbolTable.Define(name, address, pos); err != nil {
				errors.AddError(NewErrorWithContext(pos, ErrorDuplicateLabel, err.Error(), raw))
			}
			line = rest
		}
		if line == "" {
			continue
		}

		mnemonic, operands := SplitLine(line)
		program.Instructions = append(program.Instructions, &Instruction{
			Mnemonic: mnemonic,
			Operands: operands,
			Address:  address,
			RawLine:  raw,
			Pos:      pos,
		})
		address += 4
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if errors.HasErrors() {
		return nil, errors
	}
	return program, nil
}

// ParseFile runs pass 1 over a source file
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified source path
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f, path)
}
