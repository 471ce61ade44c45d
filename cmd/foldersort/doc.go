// Command foldersort sorts the files of one or more directories into
// category folders and can revert the most recent run.
//
// Subcommands:
//
//	organize DIR...          move files into category folders
//	undo                     revert the last organize batch
//	history                  list the moves undo would revert
//	categories list|init|path
//	check DIR...             preflight access checks
//	config init|validate
package main
