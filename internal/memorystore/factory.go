package memorystore

import (
	"fmt"

	"github.com/fyrsmithlabs/briefd/internal/config"
	"github.com/fyrsmithlabs/briefd/internal/logging"
)

// New creates a Store from configuration, wrapped with the configured
// per-search timeout.
func New(cfg config.MemoryStoreConfig, embedder Embedder, logger *logging.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Provider {
	case "chromem", "":
		store, err = NewChromemStore(ChromemConfig{
			Path:               cfg.Chromem.Path,
			Compress:           cfg.Chromem.Compress,
			RecordsCollection:  cfg.Chromem.RecordsCollection,
			MeetingsCollection: cfg.Chromem.MeetingsCollection,
		}, embedder, logger)
	case "qdrant":
		store, err = NewQdrantStore(QdrantConfig{
			Host:               cfg.Qdrant.Host,
			Port:               cfg.Qdrant.Port,
			APIKey:             cfg.Qdrant.APIKey,
			UseTLS:             cfg.Qdrant.UseTLS,
			RecordsCollection:  cfg.Qdrant.RecordsCollection,
			MeetingsCollection: cfg.Qdrant.MeetingsCollection,
		}, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	return NewTimeoutStore(store, cfg.SearchTimeout.Duration()), nil
}
