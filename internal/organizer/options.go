package organizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"foldersort/internal/fileutil"
	"foldersort/internal/services"
)

// CollisionPolicy decides what happens when a destination is already taken
// and duplicate handling is off.
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionFail aborts the batch with services.ErrDestinationExists.
	CollisionFail CollisionPolicy = "fail"
)

const (
	DefaultArchiveAfter  = 30 * 24 * time.Hour
	DefaultArchiveFolder = "Archive"
)

// Options configures one Organize call. It is passed by value and never
// modified by the engine.
type Options struct {
	Directories      []string
	HandleDuplicates bool
	ApplyCustomRules bool
	// RenamePattern, when non-empty, renames files matched by extension to
	// "<pattern>_<N><ext>".
	RenamePattern string
	// SearchQuery, when non-empty, restricts the batch to names containing it
	// (case-insensitive).
	SearchQuery   string
	Collision     CollisionPolicy
	ArchiveAfter  time.Duration
	ArchiveFolder string
	// BatchID overrides the generated batch identifier.
	BatchID string
}

// ParseCollisionPolicy maps a configured name onto a policy.
func ParseCollisionPolicy(value string) (CollisionPolicy, error) {
	switch policy := CollisionPolicy(strings.ToLower(strings.TrimSpace(value))); policy {
	case "":
		return CollisionOverwrite, nil
	case CollisionOverwrite, CollisionFail:
		return policy, nil
	default:
		return "", services.Wrap(services.ErrValidation, "organize", "options",
			fmt.Sprintf("unknown collision policy %q (want overwrite or fail)", value), nil)
	}
}

// normalized fills defaults and checks that every directory exists. Repeated
// directories are collapsed, keeping the first occurrence.
func (o Options) normalized(fsys afero.Fs) (Options, error) {
	out := o
	if len(o.Directories) == 0 {
		return out, services.Wrap(services.ErrValidation, "organize", "options", "no directories selected", nil)
	}

	policy, err := ParseCollisionPolicy(string(o.Collision))
	if err != nil {
		return out, err
	}
	out.Collision = policy
	if out.ArchiveAfter <= 0 {
		out.ArchiveAfter = DefaultArchiveAfter
	}
	out.ArchiveFolder = strings.TrimSpace(out.ArchiveFolder)
	if out.ArchiveFolder == "" {
		out.ArchiveFolder = DefaultArchiveFolder
	}
	if !plainName(out.ArchiveFolder) {
		return out, services.Wrap(services.ErrValidation, "organize", "options",
			fmt.Sprintf("archive folder %q must be a plain folder name", out.ArchiveFolder), nil)
	}
	out.RenamePattern = strings.TrimSpace(out.RenamePattern)
	if out.RenamePattern != "" && !plainName(out.RenamePattern) {
		return out, services.Wrap(services.ErrValidation, "organize", "options",
			fmt.Sprintf("rename pattern %q must not contain path separators", out.RenamePattern), nil)
	}

	seen := make(map[string]struct{}, len(o.Directories))
	out.Directories = make([]string, 0, len(o.Directories))
	for _, dir := range o.Directories {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return out, services.Wrap(services.ErrValidation, "organize", "options", dir, err)
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		ok, err := fileutil.IsDir(fsys, abs)
		if err != nil {
			return out, services.Wrap(services.ErrIO, "organize", "stat", abs, err)
		}
		if !ok {
			return out, services.Wrap(services.ErrValidation, "organize", "options", abs+" is not a directory", nil)
		}
		seen[abs] = struct{}{}
		out.Directories = append(out.Directories, abs)
	}
	if len(out.Directories) == 0 {
		return out, services.Wrap(services.ErrValidation, "organize", "options", "no directories selected", nil)
	}
	return out, nil
}

func plainName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
