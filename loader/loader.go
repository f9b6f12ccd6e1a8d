package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a64sim/a64sim/encoder"
	"github.com/a64sim/a64sim/parser"
	"github.com/a64sim/a64sim/vm"
)

// Binary image I/O and VM loading. The binary format is a headerless
// flat stream of little-endian 32-bit instruction words, loaded at
// byte offset 0.

// ReadImage reads a binary image file
func ReadImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified input path
	if err != nil {
		return nil, fmt.Errorf("failed to read binary: %w", err)
	}
	return data, nil
}

// LoadBinaryIntoVM reads a binary image and loads it at offset 0
func LoadBinaryIntoVM(machine *vm.VM, path string) error {
	image, err := ReadImage(path)
	if err != nil {
		return err
	}
	return machine.LoadProgram(image)
}

// WriteWords streams instruction words to a byte sink, little-endian
func WriteWords(w io.Writer, words []uint32) error {
	buf := make([]byte, 4)
	for _, word := range words {
		binary.LittleEndian.PutUint32(buf, word)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("failed to write instruction word: %w", err)
		}
	}
	return nil
}

// WriteImage writes instruction words to a binary file
func WriteImage(path string, words []uint32) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return WriteWords(f, words)
}

// AssembleFile runs both assembler passes over a source file
func AssembleFile(path string) ([]uint32, *parser.Program, error) {
	program, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	words, err := encoder.NewEncoder(program.SymbolTable).EncodeProgram(program)
	if err != nil {
		return nil, nil, err
	}
	return words, program, nil
}

// AssembleSource runs both assembler passes over in-memory source text
func AssembleSource(source, filename string) ([]uint32, *parser.Program, error) {
	program, err := parser.Parse(strings.NewReader(source), filename)
	if err != nil {
		return nil, nil, err
	}
	words, err := encoder.NewEncoder(program.SymbolTable).EncodeProgram(program)
	if err != nil {
		return nil, nil, err
	}
	return words, program, nil
}

// LoadProgramIntoVM assembles a parsed program and loads the image at
// offset 0.
func LoadProgramIntoVM(machine *vm.VM, program *parser.Program) error {
	words, err := encoder.NewEncoder(program.SymbolTable).EncodeProgram(program)
	if err != nil {
		return err
	}
	image := make([]byte, 0, len(words)*4)
	buf := make([]byte, 4)
	for _, word := range words {
		binary.LittleEndian.PutUint32(buf, word)
		image = append(image, buf...)
	}
	return machine.LoadProgram(image)
}
