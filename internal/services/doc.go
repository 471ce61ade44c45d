// Package services defines shared utilities consumed by the organizer, the
// undo ledger, and the command-line front end.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, directories, and operation names
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (corrupt category table, filesystem failure, lock contention)
//     with errors.Is.
package services
