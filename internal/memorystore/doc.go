// Package memorystore defines the semantic memory store consumed by the
// context assembler, plus its backend adapters.
//
// The assembler treats the store as a black box: it issues structured
// queries (query text, tag filters, structured filters, result limit) and
// receives ranked items with metadata. How records get into the store, how
// the store indexes or ranks text, and long-term consistency of records are
// all outside this package's contract.
//
// Two production backends are provided:
//   - ChromemStore: embedded chromem-go database (default, no external service)
//   - QdrantStore: external Qdrant over gRPC
//
// Both are usually wrapped by NewTimeoutStore, which bounds each search so a
// slow backend degrades a single category instead of stalling an assembly.
package memorystore
