// Package preflight provides readiness checks for the paths foldersort
// touches: the directories being organized, the state and log directories,
// and the category table.
//
// The CLI "foldersort check" command prints every result; "organize" runs
// the directory checks first and refuses to start when any of them fail.
// Checks never modify the filesystem.
package preflight
