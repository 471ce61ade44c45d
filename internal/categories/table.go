package categories

import (
	"fmt"
	"slices"
	"strings"
)

// Others is the implicit fallback category for unmatched extensions.
const Others = "Others"

// Category is one named bucket of extensions. Extensions are lowercase and
// carry their leading dot.
type Category struct {
	Name       string
	Extensions []string
}

// Table is an ordered category table. Order is precedence: when two
// categories list the same extension, the earlier one wins. The table always
// contains Others exactly once. A Table is immutable after construction.
type Table struct {
	categories []Category
	index      map[string]string
}

var defaultCategories = []Category{
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"}},
	{Name: "Documents", Extensions: []string{".pdf", ".docx", ".txt", ".xlsx", ".pptx", ".csv"}},
	{Name: "Videos", Extensions: []string{".mp4", ".mkv", ".mov", ".avi", ".flv"}},
	{Name: "Music", Extensions: []string{".mp3", ".wav", ".aac", ".flac"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".tar", ".gz"}},
	{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".java", ".cpp"}},
	{Name: "Executables", Extensions: []string{".exe", ".msi", ".dmg"}},
	{Name: Others},
}

// Default returns the built-in category table.
func Default() *Table {
	table, err := New(defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("default category table invalid: %v", err))
	}
	return table
}

// New builds a table from categories in precedence order. Extensions are
// lowercased, given a leading dot when missing, and deduplicated. Others is
// appended when absent.
func New(categories []Category) (*Table, error) {
	t := &Table{
		categories: make([]Category, 0, len(categories)+1),
		index:      make(map[string]string),
	}
	seen := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("category %q listed twice", name)
		}
		seen[name] = struct{}{}

		exts := normalizeExtensions(cat.Extensions)
		for _, ext := range exts {
			if _, taken := t.index[ext]; !taken {
				t.index[ext] = name
			}
		}
		t.categories = append(t.categories, Category{Name: name, Extensions: exts})
	}
	if _, ok := seen[Others]; !ok {
		t.categories = append(t.categories, Category{Name: Others, Extensions: []string{}})
	}
	return t, nil
}

// Lookup returns the first category containing ext, or Others. The
// comparison is case-insensitive and tolerates a missing leading dot.
func (t *Table) Lookup(ext string) string {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return Others
	}
	if name, ok := t.index[ext]; ok {
		return name
	}
	return Others
}

// Match returns the first category listing ext and whether one did. Unlike
// Lookup it does not fall back to Others.
func (t *Table) Match(ext string) (string, bool) {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return "", false
	}
	name, ok := t.index[ext]
	return name, ok
}

// Names returns category names in precedence order, Others included.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.categories))
	for _, cat := range t.categories {
		names = append(names, cat.Name)
	}
	return names
}

// Categories returns a copy of the table contents in precedence order.
func (t *Table) Categories() []Category {
	out := make([]Category, 0, len(t.categories))
	for _, cat := range t.categories {
		out = append(out, Category{Name: cat.Name, Extensions: slices.Clone(cat.Extensions)})
	}
	return out
}

// Len returns the number of categories, Others included.
func (t *Table) Len() int {
	return len(t.categories)
}

// NormalizeExtension lowercases ext and ensures a single leading dot. Blank
// input yields an empty string.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, raw := range exts {
		ext := NormalizeExtension(raw)
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("category name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("category name %q is not a folder name", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("category name %q must not contain path separators", name)
	}
	return nil
}
