package fileutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestSplitExt(t *testing.T) {
	cases := []struct {
		name, stem, ext string
	}{
		{"photo.jpg", "photo", ".jpg"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".bashrc", ".bashrc", ""},
		{"..hidden", "..hidden", ""},
		{".config.json", ".config", ".json"},
		{"trailing.", "trailing", "."},
		{"Photo.JPG", "Photo", ".JPG"},
	}
	for _, tc := range cases {
		stem, ext := SplitExt(tc.name)
		if stem != tc.stem || ext != tc.ext {
			t.Fatalf("SplitExt(%q) = (%q, %q), want (%q, %q)", tc.name, stem, ext, tc.stem, tc.ext)
		}
	}
}

func TestUniquePathFreeName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := filepath.Join("/docs", "report.pdf")
	got, err := UniquePath(fsys, path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Fatalf("expected unchanged path, got %q", got)
	}
}

func TestUniquePathAppendsCounter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/docs", 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"report.pdf", "report (1).pdf", "report (2).pdf"} {
		if err := afero.WriteFile(fsys, filepath.Join("/docs", name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := UniquePath(fsys, "/docs/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/docs/report (3).pdf" {
		t.Fatalf("unexpected unique path %q", got)
	}
}

func TestUniquePathWithoutExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/other", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/other/.bashrc", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := UniquePath(fsys, "/other/.bashrc")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/other/.bashrc (1)" {
		t.Fatalf("unexpected unique path %q", got)
	}
}
