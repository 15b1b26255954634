package topk

import (
	"DrawSpectra/internal/model"
	"container/heap"
	"slices"
)

// Sequential selects the top-k entries with a bounded min-heap keyed by count.
type Sequential struct{}

// NewSequential creates a heap-based selector.
func NewSequential() *Sequential {
	return &Sequential{}
}

// Select scans the whole table and returns at most k entries, highest count first.
// A candidate only evicts the current minimum when its count is strictly greater,
// so among equal counts at the boundary the incumbent is kept.
func (s *Sequential) Select(table model.Table, k int) model.TopList {
	if k <= 0 {
		return model.TopList{}
	}
	h := make(minHeap, 0, k)
	for i := 0; i < table.NumShards(); i++ {
		table.RangeShard(i, func(d model.Draw, count uint64) bool {
			if h.Len() < k {
				heap.Push(&h, model.Entry{Draw: d, Count: count})
			} else if count > h[0].Count {
				h[0] = model.Entry{Draw: d, Count: count}
				heap.Fix(&h, 0)
			}
			return true
		})
	}
	list := model.TopList(h)
	sortDesc(list)
	return list
}

// minHeap implements heap.Interface with the smallest count at the root.
type minHeap []model.Entry

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].Count < h[j].Count }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(model.Entry))
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// sortDesc orders entries by count descending; equal counts are ordered by draw value
// so that a given set of entries always renders the same way.
func sortDesc(list model.TopList) {
	slices.SortFunc(list, func(a, b model.Entry) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return a.Draw.Compare(b.Draw)
	})
}
