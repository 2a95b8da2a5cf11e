// Package ledger persists pipeline decisions in append-only CSV files.
//
// Every ledger is a UTF-8, comma-separated file with one header row. Appends
// are durable: open, write, flush, fsync, close, so a crash can lose at most
// the row in flight and never a prior row. Outcome ledgers re-check membership
// immediately before writing to stay idempotent when two runs race.
//
// The identity column is found by name with tolerance for header variation
// and a BOM prefix; membership tests compare canonicalized URLs. A missing
// file means "not contained"; any other read failure surfaces as an error.
package ledger
