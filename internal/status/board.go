package status

import "sync"

// Board holds the latest published report. It is the only state shared between
// the driver and the writers, the publisher and the API.
type Board struct {
	mu          sync.RWMutex
	latest      Report
	version     uint64
	subscribers map[int]chan Report
	nextID      int
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{subscribers: make(map[int]chan Report)}
}

// Publish replaces the latest report with a copy of r and offers it to every
// subscriber. A subscriber whose buffer is full misses the report.
func (b *Board) Publish(r Report) {
	c := r.Clone()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = c
	b.version++
	for _, ch := range b.subscribers {
		select {
		case ch <- c.Clone():
		default:
		}
	}
}

// Latest returns a copy of the latest report and false if nothing was published yet.
func (b *Board) Latest() (Report, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.version == 0 {
		return Report{}, false
	}
	return b.latest.Clone(), true
}

// Version returns how many reports have been published.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Subscribe returns a channel receiving future reports and a function that
// cancels the subscription and closes the channel.
func (b *Board) Subscribe(buffer int) (<-chan Report, func()) {
	ch := make(chan Report, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}
