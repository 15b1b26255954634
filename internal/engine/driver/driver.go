package driver

import (
	"DrawSpectra/internal/checkpoint"
	"DrawSpectra/internal/engine/frequency"
	"DrawSpectra/internal/engine/topk"
	"DrawSpectra/internal/metrics"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/status"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultTopK           = 5
	defaultSaveFrequency  = 10_000_000
	defaultReportInterval = 10 * time.Second
	reportedNumbers       = 10
)

// Options configures a Driver.
type Options struct {
	RunID          string
	TopK           int
	SaveFrequency  uint64
	ReportInterval time.Duration
	NumShards      uint32
	NumWorkers     int
}

// Driver runs the simulation: generate, record, checkpoint, recompute the top-k
// list and report. It exclusively owns the frequency model and the iteration counter.
type Driver struct {
	opts       Options
	freq       *frequency.Model
	gen        model.Generator
	sequential model.Selector
	parallel   model.Selector
	store      *checkpoint.Store
	board      *status.Board
	metrics    metrics.Collector

	iteration  uint64
	top        model.TopList
	lastReport time.Time

	now    func() time.Time
	fatalf func(format string, v ...any)

	started  atomic.Bool
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a driver with an empty frequency model.
func New(opts Options, gen model.Generator, store *checkpoint.Store, board *status.Board, collector metrics.Collector) *Driver {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.SaveFrequency == 0 {
		opts.SaveFrequency = defaultSaveFrequency
	}
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = defaultReportInterval
	}
	if board == nil {
		board = status.NewBoard()
	}
	if collector == nil {
		collector = metrics.NewNop()
	}
	return &Driver{
		opts:       opts,
		freq:       frequency.New(opts.NumShards),
		gen:        gen,
		sequential: topk.NewSequential(),
		parallel:   topk.NewParallel(opts.NumWorkers),
		store:      store,
		board:      board,
		metrics:    collector,
		top:        model.TopList{},
		now:        time.Now,
		fatalf:     log.Fatalf,
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Resume seeds the model from an existing checkpoint. Every checkpoint line is
// replayed as one fresh occurrence, and the iteration counter is estimated as
// len(top list) * save frequency. Without a checkpoint it does nothing.
func (d *Driver) Resume() error {
	if !d.store.Exists() {
		log.Printf("No checkpoint at %s, starting from empty.", d.store.Path())
		return nil
	}

	replayed, err := d.store.Replay(d.freq)
	if err != nil {
		return fmt.Errorf("failed to replay checkpoint: %w", err)
	}
	d.top = d.sequential.Select(d.freq, d.opts.TopK)
	d.iteration = uint64(len(d.top)) * d.opts.SaveFrequency

	loaded, err := d.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load top combinations: %w", err)
	}
	log.Printf("Replayed %d checkpoint lines, resuming at iteration %d.", replayed, d.iteration)
	log.Printf("Loaded combinations: %v", loaded)
	d.publish()
	return nil
}

// Step runs one simulation iteration. The checkpoint is written before the
// recomputation, with the list from the previous iteration, whenever the
// pre-increment counter is a multiple of the save frequency.
func (d *Driver) Step() {
	draw := d.gen.Generate()
	d.freq.Record(draw)

	if d.iteration%d.opts.SaveFrequency == 0 {
		d.save()
	}

	start := time.Now()
	d.top = d.parallel.Select(d.freq, d.opts.TopK)
	d.metrics.ObserveSelection(time.Since(start))

	d.iteration++

	if now := d.now(); now.Sub(d.lastReport) >= d.opts.ReportInterval {
		d.report()
		d.lastReport = now
	}
}

// Start runs the simulate loop on its own goroutine. Only the first call to
// Start or Run starts a loop.
func (d *Driver) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.loop()
}

// Run steps until Stop is called.
func (d *Driver) Run() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	d.loop()
}

func (d *Driver) loop() {
	defer close(d.stopped)

	d.lastReport = d.now()
	for {
		select {
		case <-d.done:
			log.Printf("Driver stopping at iteration %d.", d.iteration)
			return
		default:
		}
		d.Step()
	}
}

// Stop ends Run between two iterations and waits for it to return.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	if d.started.Load() {
		<-d.stopped
	}
}

// Iteration returns the iteration counter. Only valid while Run is not active.
func (d *Driver) Iteration() uint64 {
	return d.iteration
}

// Top returns the current top list. Only valid while Run is not active.
func (d *Driver) Top() model.TopList {
	return d.top
}

// Model returns the frequency model. Only valid while Run is not active.
func (d *Driver) Model() *frequency.Model {
	return d.freq
}

// Board returns the board reports are published to.
func (d *Driver) Board() *status.Board {
	return d.board
}

// save writes the checkpoint. A failed write is fatal.
func (d *Driver) save() {
	if err := d.store.Save(d.top); err != nil {
		d.fatalf("Failed to save top combinations: %v", err)
		return
	}
	d.metrics.IncCheckpointSaves()
	log.Printf("Saved top combinations at iteration %d:\n%s", d.iteration, status.FormatTop(d.top))
	d.publish()
}

func (d *Driver) report() {
	r := d.publish()
	log.Printf("Top %d combinations:\n%s", d.opts.TopK, status.FormatTop(r.Top))
	log.Printf("Most frequent numbers: %s", status.FormatNumbers(r.Numbers, reportedNumbers))
	log.Printf("Current iteration count: %d (%d distinct draws)", d.iteration, r.Distinct)
}

// publish snapshots the driver state into a report for the board.
func (d *Driver) publish() status.Report {
	r := status.Report{
		RunID:     d.opts.RunID,
		Iteration: d.iteration,
		Top:       d.top,
		Numbers:   status.RankNumbers(d.freq.NumberCounts()),
		Distinct:  d.freq.Distinct(),
		Total:     d.freq.Total(),
		Timestamp: d.now(),
	}
	d.board.Publish(r)

	d.metrics.ObserveProgress(d.iteration, r.Distinct)
	if len(d.top) > 0 {
		d.metrics.ObserveTopCount(d.top[0].Count)
	}
	return r
}
