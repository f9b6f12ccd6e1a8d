package vm

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// PerformanceStatistics tracks the instruction mix of a run
type PerformanceStatistics struct {
	TotalInstructions uint64            `json:"total_instructions"`
	FamilyCounts      map[string]uint64 `json:"family_counts"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
}

// NewPerformanceStatistics creates an empty statistics collector
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{
		FamilyCounts: make(map[string]uint64),
	}
}

// Start marks the beginning of a run
func (s *PerformanceStatistics) Start() {
	s.StartTime = time.Now()
}

// Stop marks the end of a run
func (s *PerformanceStatistics) Stop() {
	s.EndTime = time.Now()
}

// Record counts one decoded instruction
func (s *PerformanceStatistics) Record(inst Instruction) {
	s.TotalInstructions++
	s.FamilyCounts[inst.Family()]++
}

// sortedFamilies returns family names ordered by descending count
func (s *PerformanceStatistics) sortedFamilies() []string {
	families := make([]string, 0, len(s.FamilyCounts))
	for f := range s.FamilyCounts {
		families = append(families, f)
	}
	sort.Slice(families, func(i, j int) bool {
		if s.FamilyCounts[families[i]] != s.FamilyCounts[families[j]] {
			return s.FamilyCounts[families[i]] > s.FamilyCounts[families[j]]
		}
		return families[i] < families[j]
	})
	return families
}

// ExportJSON writes the statistics as indented JSON
func (s *PerformanceStatistics) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ExportCSV writes one row per instruction family
func (s *PerformanceStatistics) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"family", "count"}); err != nil {
		return err
	}
	for _, family := range s.sortedFamilies() {
		if err := cw.Write([]string{family, fmt.Sprintf("%d", s.FamilyCounts[family])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// String returns a human-readable summary
func (s *PerformanceStatistics) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Instructions executed: %d\n", s.TotalInstructions)
	if !s.EndTime.IsZero() && !s.StartTime.IsZero() {
		fmt.Fprintf(&sb, "Elapsed: %v\n", s.EndTime.Sub(s.StartTime))
	}
	for _, family := range s.sortedFamilies() {
		count := s.FamilyCounts[family]
		pct := float64(0)
		if s.TotalInstructions > 0 {
			pct = float64(count) / float64(s.TotalInstructions) * 100
		}
		fmt.Fprintf(&sb, "  %-12s %8d (%.1f%%)\n", family, count, pct)
	}
	return sb.String()
}
