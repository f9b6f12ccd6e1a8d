package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a64sim/a64sim/parser"
)

// Encoder converts parsed instruction lines into 32-bit machine words.
// Label operands resolve through the pass-1 symbol table against the
// address of the line being encoded.
type Encoder struct {
	symbols     *parser.SymbolTable
	currentAddr uint32
}

// NewEncoder creates an encoder over a symbol table
func NewEncoder(symbols *parser.SymbolTable) *Encoder {
	return &Encoder{symbols: symbols}
}

// EncodeProgram encodes every instruction line of a pass-1 program
func (e *Encoder) EncodeProgram(program *parser.Program) ([]uint32, error) {
	words := make([]uint32, 0, len(program.Instructions))
	for _, inst := range program.Instructions {
		word, err := e.EncodeInstruction(inst)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}

// EncodeInstruction encodes a single line into one instruction word
func (e *Encoder) EncodeInstruction(inst *parser.Instruction) (uint32, error) {
	e.currentAddr = inst.Address

	mnemonic := strings.ToLower(inst.Mnemonic)
	mnemonic, operands := normalizeAliases(mnemonic, inst.Operands)

	word, err := e.encode(mnemonic, operands)
	if err != nil {
		return 0, parser.NewErrorWithContext(inst.Pos, parser.ErrorInvalidInstruction,
			err.Error(), inst.RawLine)
	}
	return word, nil
}

// encode routes a canonical mnemonic to its family encoder
func (e *Encoder) encode(mnemonic string, operands []string) (uint32, error) {
	switch mnemonic {
	case "add", "adds", "sub", "subs":
		return e.encodeArithmetic(mnemonic, operands)
	case "and", "bic", "orr", "orn", "eor", "eon", "ands", "bics":
		return e.encodeLogical(mnemonic, operands)
	case "movn", "movz", "movk":
		return e.encodeWideMove(mnemonic, operands)
	case "madd", "msub":
		return e.encodeMultiply(mnemonic, operands)
	case "ldr", "str":
		return e.encodeLoadStore(mnemonic, operands)
	case "b", "br":
		return e.encodeBranch(mnemonic, operands)
	case "halt":
		return e.encodeHalt(operands)
	case ".int":
		return e.encodeIntDirective(operands)
	}
	if strings.HasPrefix(mnemonic, "b.") {
		return e.encodeBranchCond(mnemonic, operands)
	}
	return 0, fmt.Errorf("unknown mnemonic: %s", mnemonic)
}

// normalizeAliases rewrites alias mnemonics to their canonical forms
// before family dispatch. Shift suffixes ride along untouched.
func normalizeAliases(mnemonic string, operands []string) (string, []string) {
	switch mnemonic {
	case "cmp":
		return "subs", prepend("xzr", operands)
	case "cmn":
		return "adds", prepend("xzr", operands)
	case "neg":
		return "sub", insertAt(operands, 1, "xzr")
	case "negs":
		return "subs", insertAt(operands, 1, "xzr")
	case "tst":
		return "ands", prepend("wzr", operands)
	case "mov":
		return "orr", insertAt(operands, 1, "wzr")
	case "mvn":
		return "orn", insertAt(operands, 1, "xzr")
	case "mul":
		return "madd", append(append([]string{}, operands...), "xzr")
	case "mneg":
		return "msub", append(append([]string{}, operands...), "xzr")
	}
	return mnemonic, operands
}

func prepend(first string, operands []string) []string {
	return append([]string{first}, operands...)
}

func insertAt(operands []string, index int, value string) []string {
	if index > len(operands) {
		index = len(operands)
	}
	out := make([]string, 0, len(operands)+1)
	out = append(out, operands[:index]...)
	out = append(out, value)
	out = append(out, operands[index:]...)
	return out
}

// register is a parsed register operand
type register struct {
	index int
	is64  bool
}

// parseRegister parses xN/wN/xzr/wzr. The width flag feeds the widest-
// operand rule for the instruction's sf bit.
func parseRegister(s string) (register, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "xzr":
		return register{index: 31, is64: true}, nil
	case "wzr":
		return register{index: 31, is64: false}, nil
	}
	if len(name) < 2 {
		return register{}, fmt.Errorf("invalid register: %s", s)
	}
	var is64 bool
	switch name[0] {
	case 'x':
		is64 = true
	case 'w':
		is64 = false
	default:
		return register{}, fmt.Errorf("invalid register: %s", s)
	}
	num, err := strconv.Atoi(name[1:])
	if err != nil || num < 0 || num > 30 {
		return register{}, fmt.Errorf("invalid register: %s", s)
	}
	return register{index: num, is64: is64}, nil
}

// isRegister reports whether an operand parses as a register
func isRegister(s string) bool {
	_, err := parseRegister(s)
	return err == nil
}

// parseImmediate parses an immediate operand: optional '#', decimal or
// 0x-prefixed hex, optionally negative.
func parseImmediate(s string) (int64, error) {
	imm := strings.TrimSpace(s)
	imm = strings.TrimPrefix(imm, "#")
	if imm == "" {
		return 0, fmt.Errorf("empty immediate value")
	}

	negative := false
	if strings.HasPrefix(imm, "-") {
		negative = true
		imm = imm[1:]
	}

	var value uint64
	var err error
	if strings.HasPrefix(imm, "0x") || strings.HasPrefix(imm, "0X") {
		value, err = strconv.ParseUint(imm[2:], 16, 64)
	} else {
		value, err = strconv.ParseUint(imm, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid immediate value: %s", s)
	}

	result := int64(value) // #nosec G115 -- wraparound values are rejected by field range checks
	if negative {
		result = -result
	}
	return result, nil
}

// isImmediate reports whether an operand is an immediate (leading '#')
func isImmediate(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "#")
}

// widthOf applies the widest-operand rule over register operands
func widthOf(regs ...register) bool {
	for _, r := range regs {
		if r.is64 {
			return true
		}
	}
	return false
}

// shiftSpec is a parsed shift suffix such as "lsl #12"
type shiftSpec struct {
	code   uint32 // 00 LSL, 01 LSR, 10 ASR, 11 ROR
	name   string
	amount uint32
}

// parseShift parses a shift-suffix operand. allowROR is false for
// arithmetic instructions, where ROR is not a valid operand shift.
func parseShift(s string, allowROR bool) (shiftSpec, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 2 {
		return shiftSpec{}, fmt.Errorf("invalid shift: %s", s)
	}

	var spec shiftSpec
	spec.name = fields[0]
	switch fields[0] {
	case "lsl":
		spec.code = 0
	case "lsr":
		spec.code = 1
	case "asr":
		spec.code = 2
	case "ror":
		if !allowROR {
			return shiftSpec{}, fmt.Errorf("ror is not valid here")
		}
		spec.code = 3
	default:
		return shiftSpec{}, fmt.Errorf("unknown shift type: %s", fields[0])
	}

	amount, err := parseImmediate(fields[1])
	if err != nil {
		return shiftSpec{}, err
	}
	if amount < 0 || amount > 63 {
		return shiftSpec{}, fmt.Errorf("shift amount out of range: %d", amount)
	}
	spec.amount = uint32(amount)
	return spec, nil
}

// resolveTarget resolves a branch or load-literal target operand to a
// signed word offset from the current line's address. Bare labels resolve
// via the symbol table; numeric operands are taken as word offsets.
func (e *Encoder) resolveTarget(operand string) (int64, error) {
	operand = strings.TrimSpace(operand)
	if addr, ok := e.symbols.Lookup(operand); ok {
		return (int64(addr) - int64(e.currentAddr)) / 4, nil
	}
	if isImmediate(operand) || looksNumeric(operand) {
		return parseImmediate(operand)
	}
	return 0, fmt.Errorf("undefined label: %s", operand)
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}

func sfBit(is64 bool) uint32 {
	if is64 {
		return 1
	}
	return 0
}
