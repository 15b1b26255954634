package generator

import (
	"DrawSpectra/internal/model"
	"math/rand/v2"
	"slices"
)

// Generator produces uniformly distributed draws using reject-and-resample.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. A zero seed picks a random one.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns one draw: 5 distinct main numbers in [1,50] sorted ascending,
// then 2 distinct bonus numbers in [1,10] in generation order.
func (g *Generator) Generate() model.Draw {
	var d model.Draw
	nums := d[:0:model.MainCount]
	for len(nums) < model.MainCount {
		n := uint8(g.rng.IntN(model.MainMax) + 1)
		if !slices.Contains(nums, n) {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)

	b1 := uint8(g.rng.IntN(model.BonusMax) + 1)
	b2 := uint8(g.rng.IntN(model.BonusMax) + 1)
	for b2 == b1 {
		b2 = uint8(g.rng.IntN(model.BonusMax) + 1)
	}
	d[model.MainCount] = b1
	d[model.MainCount+1] = b2
	return d
}
