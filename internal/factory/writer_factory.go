package factory

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/model"
	"fmt"
	"log"
	"time"
)

// WriterFactory creates a history writer from its definition.
type WriterFactory func(def config.WriterDef, interval time.Duration) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds every enabled writer of the config. An unknown type is a
// configuration error; a writer that fails to initialize is skipped with a warning.
func Create(cfg *config.Config) ([]model.Writer, error) {
	writers := make([]model.Writer, 0, len(cfg.Writers))

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		interval, err := time.ParseDuration(def.SnapshotInterval)
		if err != nil || interval <= 0 {
			log.Printf("Warning: invalid snapshot_interval '%s' for writer type '%s', skipping.", def.SnapshotInterval, def.Type)
			continue
		}

		writer, err := factory(def, interval)
		if err != nil {
			log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		log.Printf("Created '%s' writer with interval %s", def.Type, interval)
		writers = append(writers, writer)
	}

	return writers, nil
}
