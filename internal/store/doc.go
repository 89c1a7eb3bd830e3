// Package store provides SQLite-backed history of batch translation runs.
//
// A run is one pass of the translator over a query log. Each translated
// query is recorded as an item of its run:
//   - Runs: source file, status, per-category counts
//   - Items: input, output, category and error text of one query
//
// # Ordering
//
// Runs and items carry a logical seq column. Every query orders by seq,
// never by timestamps, so listing a history is deterministic:
//   - runs:  ORDER BY seq ASC, id ASC COLLATE BINARY
//   - items: ORDER BY seq ASC
//
// Run IDs are UUIDv7 strings from an IDGenerator. Tests inject a fixed
// generator to get stable IDs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Items must belong to an existing run
package store
