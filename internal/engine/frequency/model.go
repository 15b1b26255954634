package frequency

import (
	"DrawSpectra/internal/model"

	"github.com/zeebo/xxh3"
)

const defaultShardCount = 256

// Shard is one partition of the draw frequency table.
type Shard struct {
	Counts map[model.Draw]uint64
}

// Model owns the draw and single-number occurrence counters.
// It has a single writer. Readers only run between writes, so no locking is done.
type Model struct {
	shards     []*Shard
	shardCount uint32
	numbers    [256]uint64 // checkpoint lines may carry any byte value
	total      uint64
	distinct   int
}

// New creates an empty frequency model with numShards partitions.
func New(numShards uint32) *Model {
	if numShards == 0 || numShards >= 32768 {
		numShards = defaultShardCount
	}
	m := &Model{
		shards:     make([]*Shard, numShards),
		shardCount: numShards,
	}
	for i := range m.shards {
		m.shards[i] = &Shard{Counts: make(map[model.Draw]uint64)}
	}
	return m
}

// Record counts one occurrence of the draw and of each of its seven numbers.
func (m *Model) Record(d model.Draw) {
	shard := m.getShard(d)
	if _, ok := shard.Counts[d]; !ok {
		m.distinct++
	}
	shard.Counts[d]++
	for _, n := range d {
		m.numbers[n]++
	}
	m.total++
}

// Count returns how many times the draw has been recorded.
func (m *Model) Count(d model.Draw) uint64 {
	return m.getShard(d).Counts[d]
}

// NumberCount returns how many times n appeared in any position.
func (m *Model) NumberCount(n uint8) uint64 {
	return m.numbers[n]
}

// NumberCounts returns the non-zero single-number counters in ascending number order.
func (m *Model) NumberCounts() []model.NumberCount {
	out := make([]model.NumberCount, 0, model.MainMax+1)
	for n, c := range m.numbers {
		if c > 0 {
			out = append(out, model.NumberCount{Number: uint8(n), Count: c})
		}
	}
	return out
}

// Total returns the sum of all draw counters.
func (m *Model) Total() uint64 {
	return m.total
}

// Distinct returns the number of distinct draws recorded.
func (m *Model) Distinct() int {
	return m.distinct
}

// NumShards implements model.Table.
func (m *Model) NumShards() int {
	return int(m.shardCount)
}

// RangeShard implements model.Table.
func (m *Model) RangeShard(i int, fn func(d model.Draw, count uint64) bool) {
	for d, c := range m.shards[i].Counts {
		if !fn(d, c) {
			return
		}
	}
}

// getShard returns the appropriate shard for a given draw.
func (m *Model) getShard(d model.Draw) *Shard {
	return m.shards[xxh3.Hash(d[:])%uint64(m.shardCount)]
}
