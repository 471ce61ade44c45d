package ledger

import "time"

// Rule names why a file was sent to its category.
type Rule string

const (
	RuleExtension Rule = "extension"
	RuleFallback  Rule = "fallback"
	RuleArchive   Rule = "archive"
)

// Record is one reversible move. Source is where the file lived before the
// batch; Destination is where it lives now.
type Record struct {
	Sequence    int       `json:"sequence"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Category    string    `json:"category"`
	Rule        Rule      `json:"rule"`
	MovedAt     time.Time `json:"moved_at"`
}

// Batch is the persisted form of the most recent organize run.
type Batch struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	Directories []string  `json:"directories"`
	Records     []Record  `json:"records"`
}

// UndoResult summarizes an UndoAll call. Skipped counts records whose file
// was already back at its source.
type UndoResult struct {
	Restored      int  `json:"restored"`
	Skipped       int  `json:"skipped"`
	Remaining     int  `json:"remaining"`
	NothingToUndo bool `json:"nothing_to_undo"`
}
