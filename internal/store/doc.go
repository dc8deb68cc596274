// Package store provides SQLite-backed durable storage for sweep results.
//
// The store keeps two tables:
//   - sweep_runs: one row per sweep execution
//   - job_results: one row per job, keyed by (run_id, job_index)
//
// Writes are idempotent: recording the same run or job twice is a no-op.
// Reads are ordered by job index, so a sweep reads back in expansion order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Store implements sweep.Recorder.
package store
