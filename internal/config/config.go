// Package config provides configuration loading for briefd.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables. All settings have sensible defaults so briefd runs out of the
// box with the embedded chromem store.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/briefd/internal/logging"
)

// Config holds the complete briefd configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Logging       logging.Config      `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
	MemoryStore   MemoryStoreConfig   `koanf:"memorystore"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
}

// EmbeddingsConfig holds configuration for the embedding provider used by
// vector store backends. The endpoint speaks the TEI embed protocol.
type EmbeddingsConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" or "http/protobuf"
	ServiceName    string   `koanf:"service_name"`
	ServiceVersion string   `koanf:"service_version"`
	Insecure       bool     `koanf:"insecure"`
	SamplingRate   float64  `koanf:"sampling_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// MemoryStoreConfig holds memory store client configuration.
type MemoryStoreConfig struct {
	// Provider selects the store backend: "chromem" (embedded, default)
	// or "qdrant" (external gRPC).
	Provider string `koanf:"provider"`

	// SearchTimeout bounds each per-category search issued by the
	// assembler. The executor itself never aborts a sibling search; a
	// timeout surfaces as that category's error.
	SearchTimeout Duration `koanf:"search_timeout"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig holds configuration for the embedded chromem-go store.
type ChromemConfig struct {
	Path               string `koanf:"path"`
	Compress           bool   `koanf:"compress"`
	RecordsCollection  string `koanf:"records_collection"`
	MeetingsCollection string `koanf:"meetings_collection"`
}

// QdrantConfig holds configuration for an external Qdrant store.
type QdrantConfig struct {
	Host               string `koanf:"host"`
	Port               int    `koanf:"port"`
	APIKey             Secret `koanf:"api_key"`
	UseTLS             bool   `koanf:"use_tls"`
	RecordsCollection  string `koanf:"records_collection"`
	MeetingsCollection string `koanf:"meetings_collection"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9180
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Observability.Endpoint == "" {
		cfg.Observability.Endpoint = "localhost:4317"
	}
	if cfg.Observability.Protocol == "" {
		cfg.Observability.Protocol = "grpc"
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "briefd"
	}
	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = "0.1.0"
	}
	if cfg.Observability.SamplingRate == 0 {
		cfg.Observability.SamplingRate = 1.0
	}
	if cfg.Observability.ExportInterval == 0 {
		cfg.Observability.ExportInterval = Duration(15 * time.Second)
	}

	if cfg.MemoryStore.Provider == "" {
		cfg.MemoryStore.Provider = "chromem"
	}
	if cfg.MemoryStore.SearchTimeout == 0 {
		cfg.MemoryStore.SearchTimeout = Duration(10 * time.Second)
	}
	if cfg.MemoryStore.Chromem.Path == "" {
		cfg.MemoryStore.Chromem.Path = "~/.config/briefd/memorystore"
	}
	if cfg.MemoryStore.Chromem.RecordsCollection == "" {
		cfg.MemoryStore.Chromem.RecordsCollection = "briefd_records"
	}
	if cfg.MemoryStore.Chromem.MeetingsCollection == "" {
		cfg.MemoryStore.Chromem.MeetingsCollection = "briefd_meetings"
	}
	if cfg.MemoryStore.Qdrant.Host == "" {
		cfg.MemoryStore.Qdrant.Host = "localhost"
	}
	if cfg.MemoryStore.Qdrant.Port == 0 {
		cfg.MemoryStore.Qdrant.Port = 6334
	}
	if cfg.MemoryStore.Qdrant.RecordsCollection == "" {
		cfg.MemoryStore.Qdrant.RecordsCollection = "briefd_records"
	}
	if cfg.MemoryStore.Qdrant.MeetingsCollection == "" {
		cfg.MemoryStore.Qdrant.MeetingsCollection = "briefd_meetings"
	}

	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if c.Observability.Enabled {
		if c.Observability.Endpoint == "" {
			return errors.New("observability endpoint required when telemetry is enabled")
		}
		if c.Observability.ServiceName == "" {
			return errors.New("service name required when telemetry is enabled")
		}
		if c.Observability.SamplingRate < 0 || c.Observability.SamplingRate > 1 {
			return fmt.Errorf("sampling rate must be between 0 and 1, got %f", c.Observability.SamplingRate)
		}
	}

	switch c.MemoryStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unknown memory store provider: %q", c.MemoryStore.Provider)
	}
	if c.MemoryStore.SearchTimeout.Duration() <= 0 {
		return errors.New("memory store search timeout must be positive")
	}
	if c.MemoryStore.Provider == "qdrant" {
		if c.MemoryStore.Qdrant.Port < 1 || c.MemoryStore.Qdrant.Port > 65535 {
			return fmt.Errorf("invalid qdrant port: %d", c.MemoryStore.Qdrant.Port)
		}
	}

	if c.Embeddings.BaseURL == "" {
		return errors.New("embeddings base URL is required")
	}

	return nil
}
