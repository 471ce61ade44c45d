package fileutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SplitExt splits name into stem and extension. The extension starts at the
// last dot; leading dots belong to the stem, so ".bashrc" has no extension.
func SplitExt(name string) (stem, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// UniquePath returns path when nothing occupies it. Otherwise it appends
// " (1)", " (2)", ... before the extension until a free name is found.
func UniquePath(fsys afero.Fs, path string) (string, error) {
	exists, err := Exists(fsys, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return path, nil
	}
	dir, name := filepath.Split(path)
	stem, ext := SplitExt(name)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		exists, err := Exists(fsys, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
