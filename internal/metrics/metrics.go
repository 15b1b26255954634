package metrics

import "time"

// Collector receives simulation measurements.
type Collector interface {
	// ObserveProgress records the iteration counter and the size of the frequency table.
	ObserveProgress(iteration uint64, distinct int)
	// ObserveSelection records how long one top-k recomputation took.
	ObserveSelection(d time.Duration)
	// ObserveTopCount records the count of the most frequent draw.
	ObserveTopCount(count uint64)
	// IncCheckpointSaves counts successful checkpoint writes.
	IncCheckpointSaves()
	// IncWriterErrors counts failed history writes by writer type.
	IncWriterErrors(writer string)
}

// Nop discards every measurement.
type Nop struct{}

var _ Collector = Nop{}

// NewNop creates a collector that records nothing.
func NewNop() Nop { return Nop{} }

func (Nop) ObserveProgress(uint64, int)    {}
func (Nop) ObserveSelection(time.Duration) {}
func (Nop) ObserveTopCount(uint64)         {}
func (Nop) IncCheckpointSaves()            {}
func (Nop) IncWriterErrors(string)         {}
