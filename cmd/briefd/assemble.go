package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/briefd/internal/assembly"
	"github.com/fyrsmithlabs/briefd/internal/embeddings"
	"github.com/fyrsmithlabs/briefd/internal/logging"
	"github.com/fyrsmithlabs/briefd/internal/memorystore"
)

var assembleFlags struct {
	name     string
	kind     string
	topic    string
	audience string
	sections []string
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a context package for a deliverable",
	Long: `Assemble a context package directly against the configured memory
store, without a running daemon. The package is printed as JSON.

Examples:
  briefd assemble --name "Q3 Board Report" --type report \
      --topic "revenue performance" --audience "executive team"

  briefd assemble --name "Launch Deck" --type presentation \
      --topic "product launch" --audience leadership \
      --section timeline --section risks`,
	RunE: runAssemble,
}

func init() {
	flags := assembleCmd.Flags()
	flags.StringVar(&assembleFlags.name, "name", "", "deliverable name (required)")
	flags.StringVar(&assembleFlags.kind, "type", "", "deliverable type, e.g. report (required)")
	flags.StringVar(&assembleFlags.topic, "topic", "", "subject area (required)")
	flags.StringVar(&assembleFlags.audience, "audience", "", "target audience (required)")
	flags.StringArrayVar(&assembleFlags.sections, "section", nil, "deliverable section to focus on (repeatable)")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// One-shot command: keep process output clean, log errors only.
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "console"
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}

	store, err := memorystore.New(cfg.MemoryStore, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing memory store: %w", err)
	}
	defer func() { _ = store.Close() }()

	req := assembly.DeliverableRequest{
		Name:     assembleFlags.name,
		Type:     assembleFlags.kind,
		Topic:    assembleFlags.topic,
		Audience: assembleFlags.audience,
		Sections: assembleFlags.sections,
	}

	pkg, err := assembly.NewAssembler(store, logger).Assemble(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pkg)
}
