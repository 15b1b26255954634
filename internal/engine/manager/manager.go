package manager

import (
	"DrawSpectra/internal/checkpoint"
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/engine/driver"
	"DrawSpectra/internal/engine/generator"
	_ "DrawSpectra/internal/engine/impl/history" // Registers history writers
	"DrawSpectra/internal/factory"
	"DrawSpectra/internal/metrics"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/publish"
	"DrawSpectra/internal/status"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// Manager wires the simulation driver to its history writers and the report publisher.
type Manager struct {
	runID     string
	driver    *driver.Driver
	board     *status.Board
	writers   []model.Writer
	publisher *publish.Publisher
	metrics   metrics.Collector

	done          chan struct{}
	snapshotterWg sync.WaitGroup
	publisherWg   sync.WaitGroup
	stopOnce      sync.Once
}

// NewManager creates a new Manager.
func NewManager(cfg *config.Config, collector metrics.Collector) (*Manager, error) {
	if collector == nil {
		collector = metrics.NewNop()
	}

	writers, err := factory.Create(cfg)
	if err != nil {
		return nil, err
	}

	interval, err := cfg.ReportInterval()
	if err != nil {
		return nil, err
	}

	var pub *publish.Publisher
	if cfg.Publisher.Enabled {
		pub, err = publish.NewPublisher(cfg.Publisher)
		if err != nil {
			log.Printf("Warning: failed to connect publisher to %s: %v, reports will not be published.", cfg.Publisher.NATSURL, err)
			pub = nil
		}
	}

	runID := uuid.NewString()
	board := status.NewBoard()
	opts := driver.Options{
		RunID:          runID,
		TopK:           cfg.Simulation.TopK,
		SaveFrequency:  cfg.Simulation.SaveFrequency,
		ReportInterval: interval,
		NumShards:      cfg.Simulation.NumShards,
		NumWorkers:     cfg.Simulation.NumWorkers,
	}
	d := driver.New(opts, generator.New(cfg.Simulation.Seed), checkpoint.NewStore(cfg.Checkpoint.Path), board, collector)

	return &Manager{
		runID:     runID,
		driver:    d,
		board:     board,
		writers:   writers,
		publisher: pub,
		metrics:   collector,
		done:      make(chan struct{}),
	}, nil
}

// RunID returns the identifier stamped on every report of this run.
func (m *Manager) RunID() string {
	return m.runID
}

// Board returns the board the driver publishes reports to.
func (m *Manager) Board() *status.Board {
	return m.board
}

// Start resumes from the checkpoint, then starts the snapshotters, the
// publisher and the simulation loop.
func (m *Manager) Start() error {
	if err := m.driver.Resume(); err != nil {
		return fmt.Errorf("failed to resume simulation: %w", err)
	}

	for _, writer := range m.writers {
		m.snapshotterWg.Add(1)
		go m.runSnapshotter(writer)
		log.Printf("Started snapshotter for writer %s with interval %s.", writer.Name(), writer.GetInterval())
	}

	if m.publisher != nil {
		reports, cancel := m.board.Subscribe(subscriberBuffer)
		m.publisherWg.Add(1)
		go m.runPublisher(reports, cancel)
	}

	m.driver.Start()
	log.Printf("Manager started run %s with %d writers.", m.runID, len(m.writers))
	return nil
}

// runSnapshotter runs a dedicated snapshot loop for a single writer.
func (m *Manager) runSnapshotter(writer model.Writer) {
	defer m.snapshotterWg.Done()
	interval := writer.GetInterval()
	if interval <= 0 {
		log.Printf("Invalid interval %s for writer %s, snapshotter will not run.", interval, writer.Name())
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.takeSnapshotForWriter(writer)
		case <-m.done:
			m.takeSnapshotForWriter(writer)
			return
		}
	}
}

// takeSnapshotForWriter writes the latest report, if any, to a writer.
func (m *Manager) takeSnapshotForWriter(writer model.Writer) {
	report, ok := m.board.Latest()
	if !ok {
		return
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	if err := writer.Write(report, timestamp); err != nil {
		m.metrics.IncWriterErrors(writer.Name())
		log.Printf("Error writing snapshot for writer %s: %v", writer.Name(), err)
		return
	}
	log.Printf("Completed snapshot for writer %s at %s (iteration %d).", writer.Name(), timestamp, report.Iteration)
}

func (m *Manager) runPublisher(reports <-chan status.Report, cancel func()) {
	defer m.publisherWg.Done()
	defer cancel()
	for {
		select {
		case r := <-reports:
			if err := m.publisher.Publish(r); err != nil {
				log.Printf("Error publishing report: %v", err)
			}
		case <-m.done:
			return
		}
	}
}

// Stop gracefully shuts down the manager.
func (m *Manager) Stop() {
	m.stopOnce.Do(m.stop)
}

func (m *Manager) stop() {
	log.Println("Manager stopping...")
	// 1. Stop the simulation between two iterations.
	m.driver.Stop()

	// 2. Signal snapshotters and the publisher to take final actions and exit.
	close(m.done)
	log.Println("Waiting for snapshotters and publisher to finish...")
	m.snapshotterWg.Wait()
	m.publisherWg.Wait()

	// 3. Release writer and publisher connections.
	for _, writer := range m.writers {
		if c, ok := writer.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Error closing writer %s: %v", writer.Name(), err)
			}
		}
	}
	if m.publisher != nil {
		m.publisher.Close()
	}

	log.Println("Manager stopped.")
}
