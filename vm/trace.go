package vm

import (
	"fmt"
	"io"
)

// TraceEntry records a single executed instruction
type TraceEntry struct {
	Sequence uint64 // instruction sequence number
	Address  uint64 // instruction address
	Opcode   uint32 // raw instruction word
	Family   string // decoded family name
	Flags    PSTATE // flags after execution
}

// ExecutionTrace collects per-instruction entries and writes them out on
// Flush. Entries beyond MaxEntries are dropped.
type ExecutionTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries []TraceEntry
}

// NewExecutionTrace creates an enabled trace writing to w
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:    true,
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]TraceEntry, 0, 1024),
	}
}

// Record appends one entry if the trace is enabled and has capacity
func (t *ExecutionTrace) Record(seq, address uint64, opcode uint32, family string, flags PSTATE) {
	if !t.Enabled || len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, TraceEntry{
		Sequence: seq,
		Address:  address,
		Opcode:   opcode,
		Family:   family,
		Flags:    flags,
	})
}

// Entries returns the collected entries
func (t *ExecutionTrace) Entries() []TraceEntry {
	return t.entries
}

// Flush writes all collected entries to the writer
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, e := range t.entries {
		_, err := fmt.Fprintf(t.Writer, "%6d  0x%08X  0x%08X  %-12s [%s]\n",
			e.Sequence, e.Address, e.Opcode, e.Family, e.Flags.String())
		if err != nil {
			return err
		}
	}
	return nil
}
