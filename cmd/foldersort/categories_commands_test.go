package main

import (
	"encoding/json"
	"strings"
	"testing"

	"foldersort/internal/categories"
	"foldersort/internal/testsupport"
)

func TestCategoriesListCreatesDefaults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"categories", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("categories list: %v", err)
	}
	requireContains(t, out, "Wrote default categories")
	requireContains(t, out, ".jpg")
	requireContains(t, out, "(everything else)")
	testsupport.ReadFile(t, env.cfg.Paths.CategoriesFile)

	out, _, err = runCLI(t, []string{"categories", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("categories list --json: %v", err)
	}
	var cats []categories.Category
	if err := json.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != categories.Default().Len() || cats[0].Name != "Images" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestCategoriesCustomTableDrivesOrganize(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.Paths.CategoriesFile, `{"Books": [".epub", ".PDF"], "Images": [".jpg"]}`)
	testsupport.WriteFile(t, env.workDir+"/novel.pdf", "book")

	out, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Moved: novel.pdf -> Books")
}

func TestCategoriesInitRefusesOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"categories", "init"}, env.configPath)
	if err != nil {
		t.Fatalf("categories init: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.CategoriesFile)

	if _, _, err := runCLI(t, []string{"categories", "init"}, env.configPath); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"categories", "init", "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("categories init --overwrite: %v", err)
	}
}

func TestCategoriesPath(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"categories", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("categories path: %v", err)
	}
	if strings.TrimSpace(out) != env.cfg.Paths.CategoriesFile {
		t.Fatalf("unexpected path %q", out)
	}
}
