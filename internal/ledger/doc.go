// Package ledger records the reversible moves of the latest organize batch
// and replays them backwards on undo.
//
// A Ledger keeps the batch in memory; when given a Journal (the SQLite Store)
// it also persists every change so that undo works from a later process.
// Reverting stops at the first file that cannot be put back and leaves the
// rest of the batch pending.
package ledger
