// Package organizer sorts the files of one or more directories into category
// subfolders and reverts the latest batch on request.
//
// For every file the Engine applies a fixed decision order: the optional
// age-based archive rule, then extension classification (falling back to
// Others). Destinations are then checked for collisions, optionally renamed
// to a sequential pattern, and moved. Every move is recorded in the ledger so
// Undo can put files back. Callers observe the run through an EventSink and a
// ProgressFunc; both are invoked synchronously.
package organizer
