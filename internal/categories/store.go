package categories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"foldersort/internal/services"
)

// Load reads the category table persisted at path. When the file does not
// exist the default table is written there and returned with created set.
// A document that is not an object mapping names to string arrays fails with
// services.ErrConfigCorrupt.
func Load(fsys afero.Fs, path string) (table *Table, created bool, err error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, services.Wrap(services.ErrIO, "categories", "read", path, err)
		}
		table = Default()
		if err := Save(fsys, path, table); err != nil {
			return nil, false, err
		}
		return table, true, nil
	}

	cats, err := decode(data)
	if err != nil {
		return nil, false, services.Wrap(services.ErrConfigCorrupt, "categories", "parse", path, err)
	}
	table, err = New(cats)
	if err != nil {
		return nil, false, services.Wrap(services.ErrConfigCorrupt, "categories", "validate", path, err)
	}
	return table, false, nil
}

// Save writes the table to path in precedence order with four-space
// indentation. The file is replaced atomically.
func Save(fsys afero.Fs, path string, table *Table) error {
	data, err := Encode(table)
	if err != nil {
		return services.Wrap(services.ErrIO, "categories", "encode", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrIO, "categories", "mkdir", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "categories", "write", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return services.Wrap(services.ErrIO, "categories", "rename", path, err)
	}
	return nil
}

// Encode renders the table as an indented JSON object whose keys follow
// precedence order.
func Encode(table *Table) ([]byte, error) {
	var buf bytes.Buffer
	cats := table.Categories()
	buf.WriteString("{\n")
	for i, cat := range cats {
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteString("    ")
		buf.Write(key)
		buf.WriteString(": [")
		for j, ext := range cat.Extensions {
			value, err := json.Marshal(ext)
			if err != nil {
				return nil, err
			}
			buf.WriteString("\n        ")
			buf.Write(value)
			if j < len(cat.Extensions)-1 {
				buf.WriteByte(',')
			}
		}
		if len(cat.Extensions) > 0 {
			buf.WriteString("\n    ")
		}
		buf.WriteByte(']')
		if i < len(cats)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decode walks the object token by token so key order survives; a map
// would lose precedence. Repeated keys keep their first position and take
// the last value.
func decode(data []byte) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var cats []Category
	positions := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			return nil, fmt.Errorf("category %q: extensions must be an array of strings", name)
		}
		var elems []*string
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("category %q: extensions must be an array of strings: %w", name, err)
		}
		exts := make([]string, 0, len(elems))
		for i, ext := range elems {
			if ext == nil {
				return nil, fmt.Errorf("category %q: extension %d is null", name, i)
			}
			exts = append(exts, *ext)
		}
		name = strings.TrimSpace(name)
		if pos, dup := positions[name]; dup {
			cats[pos].Extensions = exts
			continue
		}
		positions[name] = len(cats)
		cats = append(cats, Category{Name: name, Extensions: exts})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing brace: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after category object")
	}
	return cats, nil
}
