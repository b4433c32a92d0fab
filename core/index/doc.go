// Package index attaches remote sources to a local, queryable document index.
//
// An index is a named view over a shared relational database. Sources are
// added by address; their matching documents are fetched through the
// transport, validated against the table's JSON Schema (compiled once by
// Define), and stored with the source version they came from.
//
// # Lifecycle
//
//	ix := store.Index("cohorts")
//	_ = ix.Define("portals", hierarchy.PortalDefinition)
//	_ = ix.Open(ctx)
//	defer ix.Close()
//
// Open resumes syncing sources registered by earlier runs (unless disabled by
// configuration). AddSource resolves the source synchronously, bounded by the
// attach timeout, and returns; fetching and indexing continue in the
// background.
//
// # Events
//
// Background work reports through the channel returned by Events:
//   - indexed: the source's documents were stored at a version
//   - source-missing: the source could not be located; a retry is scheduled
//   - source-found: a previously missing source was located
//   - source-error: the source failed for good
//   - index-error: one document could not be fetched, parsed or validated
//
// The channel is closed by Close after all background work has stopped.
package index
