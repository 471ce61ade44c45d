package preflight

import (
	"foldersort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the state checks for cfg followed by one access check per
// directory. A nil config skips the state checks.
func RunAll(cfg *config.Config, directories []string) []Result {
	var results []Result

	if cfg != nil {
		results = append(results,
			CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
			CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
			CheckCategoriesFile(cfg.Paths.CategoriesFile),
		)
	}
	for _, dir := range directories {
		results = append(results, CheckDirectoryAccess("Directory", dir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
