package topk

import (
	"DrawSpectra/internal/model"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallel selects the top-k entries with a map-reduce over the table's shards.
// Each shard is folded into a local list bounded to k by a pool of at most
// numWorkers goroutines, then the local lists are merged pairwise.
type Parallel struct {
	numWorkers int
}

// NewParallel creates a parallel selector. numWorkers <= 0 uses GOMAXPROCS.
func NewParallel(numWorkers int) *Parallel {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{numWorkers: numWorkers}
}

// Select returns at most k entries, highest count first. All workers have
// returned by the time Select does.
func (p *Parallel) Select(table model.Table, k int) model.TopList {
	numShards := table.NumShards()
	if k <= 0 || numShards <= 0 {
		return model.TopList{}
	}

	locals := make([]model.TopList, numShards)
	var g errgroup.Group
	g.SetLimit(p.numWorkers)
	for i := 0; i < numShards; i++ {
		g.Go(func() error {
			acc := make(model.TopList, 0, k)
			table.RangeShard(i, func(d model.Draw, count uint64) bool {
				acc = fold(acc, model.Entry{Draw: d, Count: count}, k)
				return true
			})
			locals[i] = acc
			return nil
		})
	}
	g.Wait()

	list := reduce(locals, k)
	sortDesc(list)
	return list
}

// fold inserts e into acc while there is room, otherwise replaces the
// current minimum if e's count is strictly greater. The minimum is found by
// a linear scan; k is small.
func fold(acc model.TopList, e model.Entry, k int) model.TopList {
	if len(acc) < k {
		return append(acc, e)
	}
	minIdx := 0
	for j := 1; j < len(acc); j++ {
		if acc[j].Count < acc[minIdx].Count {
			minIdx = j
		}
	}
	if e.Count > acc[minIdx].Count {
		acc[minIdx] = e
	}
	return acc
}

// merge concatenates two local lists, cutting back to the k highest counts
// when the result is too long.
func merge(a, b model.TopList, k int) model.TopList {
	out := make(model.TopList, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	if len(out) > k {
		sortDesc(out)
		out = out[:k]
	}
	return out
}

// reduce merges the lists pairwise, level by level, until one remains.
func reduce(lists []model.TopList, k int) model.TopList {
	if len(lists) == 0 {
		return model.TopList{}
	}
	for len(lists) > 1 {
		next := make([]model.TopList, 0, (len(lists)+1)/2)
		for i := 0; i < len(lists); i += 2 {
			if i+1 == len(lists) {
				next = append(next, lists[i])
				continue
			}
			next = append(next, merge(lists[i], lists[i+1], k))
		}
		lists = next
	}
	return lists[0]
}
