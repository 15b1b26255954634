package status

import (
	"DrawSpectra/internal/model"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Report is an immutable summary of the simulation at one point in time.
type Report struct {
	RunID     string
	Iteration uint64
	Top       model.TopList
	Numbers   []model.NumberCount // ranked by count, highest first
	Distinct  int
	Total     uint64
	Timestamp time.Time
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	r.Top = slices.Clone(r.Top)
	r.Numbers = slices.Clone(r.Numbers)
	return r
}

// RankNumbers orders single-number counters by count descending, then by number.
func RankNumbers(counts []model.NumberCount) []model.NumberCount {
	ranked := slices.Clone(counts)
	slices.SortStableFunc(ranked, func(a, b model.NumberCount) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return int(a.Number) - int(b.Number)
	})
	return ranked
}

// FormatTop renders a top list as numbered lines, e.g. "1: [3 7 12 29 44 2 9] x2".
func FormatTop(list model.TopList) string {
	lines := lo.Map(list, func(e model.Entry, i int) string {
		return fmt.Sprintf("%d: [%s] x%d", i+1, e.Draw, e.Count)
	})
	return strings.Join(lines, "\n")
}

// FormatNumbers renders the n most frequent numbers as "number:count" pairs.
func FormatNumbers(ranked []model.NumberCount, n int) string {
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return strings.Join(lo.Map(ranked, func(nc model.NumberCount, _ int) string {
		return fmt.Sprintf("%d:%d", nc.Number, nc.Count)
	}), " ")
}
