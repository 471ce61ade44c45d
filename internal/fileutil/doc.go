// Package fileutil holds the filesystem primitives the organizer and the undo
// ledger share: collision-free naming, extension splitting, and moves that
// survive crossing a device boundary.
package fileutil
