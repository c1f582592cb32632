// Package store provides SQLite-backed persistence for scenarios and
// their edit history.
//
// Two tables:
//   - scenarios: current wire JSON per scenario name, plus updated_seq,
//     a logical clock bumped once per applied command
//   - revisions: append-only log of applied commands with the compiled
//     op list; batch_token groups the commands of one batch
//
// Ordering always uses seq (and id as tiebreak), never timestamps, so
// history reads are deterministic. created_at on revisions is
// informational only.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: revisions must reference a stored scenario
package store
