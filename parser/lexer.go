package parser

import "strings"

// Line-level lexing. The source grammar is line-oriented: each line is a
// label definition, an instruction or directive, or blank. Fields are
// separated by whitespace and operands by top-level commas.

// StripComment removes a trailing line comment (';' or "//")
func StripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return line
}

// SplitLine separates a cleaned source line into the mnemonic (or
// directive) and its comma-separated operands. Commas inside brackets do
// not split, so "[x0, #8]!" stays one operand.
func SplitLine(line string) (mnemonic string, operands []string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	var rest string
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		mnemonic = line[:i]
		rest = strings.TrimSpace(line[i+1:])
	} else {
		mnemonic = line
	}

	if rest != "" {
		operands = splitOperands(rest)
	}
	return mnemonic, operands
}

// splitOperands splits on commas outside square brackets and trims each field
func splitOperands(s string) []string {
	var fields []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	fields = append(fields, strings.TrimSpace(s[start:]))

	// Drop empty trailing fields from stray commas
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsLabelDefinition reports whether the first token of a line defines a
// label, i.e. ends in ':'
func IsLabelDefinition(token string) bool {
	return strings.HasSuffix(token, ":")
}
