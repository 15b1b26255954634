package topk

import (
	"fmt"
	"testing"

	"DrawSpectra/internal/engine/frequency"
	"DrawSpectra/internal/engine/generator"
)

var benchModels = map[int]*frequency.Model{}

func benchModel(records int) *frequency.Model {
	if m, ok := benchModels[records]; ok {
		return m
	}
	m := frequency.New(256)
	gen := generator.New(42)
	for i := 0; i < records; i++ {
		m.Record(gen.Generate())
	}
	benchModels[records] = m
	return m
}

func BenchmarkSelect(b *testing.B) {
	for _, records := range []int{10_000, 1_000_000} {
		m := benchModel(records)
		for name, s := range selectors() {
			b.Run(fmt.Sprintf("%s/%d", name, records), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					s.Select(m, 5)
				}
			})
		}
	}
}
