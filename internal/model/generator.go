package model

// Generator produces one draw per call.
type Generator interface {
	Generate() Draw
}

// Selector computes the highest-count draws from a frequency table.
// It is the interface for the sequential and parallel top-k algorithms.
type Selector interface {
	Select(table Table, k int) TopList
}

// Table is a read-only view over a sharded draw frequency table.
type Table interface {
	// NumShards returns the number of independently iterable partitions.
	NumShards() int
	// RangeShard calls fn for every (draw, count) pair in shard i until fn returns false.
	RangeShard(i int, fn func(d Draw, count uint64) bool)
}
