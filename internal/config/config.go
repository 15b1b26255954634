package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTopK           = 5
	DefaultSaveFrequency  = 10_000_000
	DefaultReportInterval = "10s"
	DefaultNumShards      = 256
	DefaultCheckpointPath = "top_combinations.txt"
	DefaultSubject        = "drawspectra.reports"
	DefaultNamespace      = "drawspectra"
)

// SimulationConfig controls the simulate loop and the frequency table layout.
type SimulationConfig struct {
	TopK           int    `yaml:"top_k"`
	SaveFrequency  uint64 `yaml:"save_frequency"`
	ReportInterval string `yaml:"report_interval"`
	NumShards      uint32 `yaml:"num_shards"`
	NumWorkers     int    `yaml:"num_workers"`
	Seed           uint64 `yaml:"seed"`
}

// CheckpointConfig holds the location of the top-k checkpoint file.
type CheckpointConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds the connection details for a ClickHouse history writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TextWriterConfig holds the output root for the text history writer.
type TextWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// SQLiteConfig holds the database file for the sqlite history writer.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// WriterDef defines a single history writer.
type WriterDef struct {
	Type             string           `yaml:"type"`
	Enabled          bool             `yaml:"enabled"`
	SnapshotInterval string           `yaml:"snapshot_interval"`
	Text             TextWriterConfig `yaml:"text"`
	ClickHouse       ClickHouseConfig `yaml:"clickhouse"`
	SQLite           SQLiteConfig     `yaml:"sqlite"`
}

// PublisherConfig defines the NATS report publisher.
type PublisherConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// APIConfig defines the status HTTP and gRPC listeners.
type APIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ListenAddr     string `yaml:"listen_addr"`
	GRPCListenAddr string `yaml:"grpc_listen_addr"`
}

// MetricsConfig defines the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Writers    []WriterDef      `yaml:"writers"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	API        APIConfig        `yaml:"api"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Default returns a configuration with every default applied and all optional
// components disabled.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads the config file, falling back to Default when it does not exist.
func LoadOrDefault(filePath string) (*Config, error) {
	cfg, err := LoadConfig(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	s := &c.Simulation
	if s.TopK == 0 {
		s.TopK = DefaultTopK
	}
	if s.SaveFrequency == 0 {
		s.SaveFrequency = DefaultSaveFrequency
	}
	if s.ReportInterval == "" {
		s.ReportInterval = DefaultReportInterval
	}
	if s.NumShards == 0 {
		s.NumShards = DefaultNumShards
	}
	if s.NumWorkers <= 0 {
		s.NumWorkers = runtime.GOMAXPROCS(0)
	}
	if c.Checkpoint.Path == "" {
		c.Checkpoint.Path = DefaultCheckpointPath
	}
	if c.Publisher.Subject == "" {
		c.Publisher.Subject = DefaultSubject
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Simulation.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", c.Simulation.TopK)
	}
	if _, err := c.ReportInterval(); err != nil {
		return err
	}
	if c.Simulation.NumShards >= 32768 {
		return fmt.Errorf("num_shards must be below 32768, got %d", c.Simulation.NumShards)
	}
	if c.Publisher.Enabled && c.Publisher.NATSURL == "" {
		return errors.New("publisher is enabled but nats_url is empty")
	}
	if c.API.Enabled && c.API.ListenAddr == "" && c.API.GRPCListenAddr == "" {
		return errors.New("api is enabled but no listen address is set")
	}
	return nil
}

// ReportInterval parses the simulation report interval.
func (c *Config) ReportInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Simulation.ReportInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid report_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("report_interval must be a positive duration")
	}
	return d, nil
}
