// Package logging builds the slog loggers used across foldersort.
//
// It offers a console handler for humans, a JSON handler for machines, a tee
// handler so a run can log to the rolling log file and the terminal at once,
// and helpers that stamp batch and directory fields from the context. Log
// retention and progress sampling live here as well.
package logging
