package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"foldersort/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if hint := services.ExitHint(err); hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
			}
		}
		os.Exit(1)
	}
}
