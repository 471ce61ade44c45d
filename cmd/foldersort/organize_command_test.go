package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"foldersort/internal/organizer"
	"foldersort/internal/runlock"
	"foldersort/internal/services"
	"foldersort/internal/testsupport"
)

func TestUndoIgnoresCorruptCategoryFile(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "photo.jpg"), "jpg")

	if _, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}
	testsupport.WriteFile(t, env.cfg.Paths.CategoriesFile, "{broken")

	out, _, err := runCLI(t, []string{"undo"}, env.configPath)
	if err != nil {
		t.Fatalf("undo with corrupt category file: %v", err)
	}
	requireContains(t, out, "Undo: Moved back photo.jpg -> "+env.workDir)
	if got := testsupport.ReadFile(t, filepath.Join(env.workDir, "photo.jpg")); got != "jpg" {
		t.Fatalf("expected file restored, got %q", got)
	}

	if _, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath); !errors.Is(err, services.ErrConfigCorrupt) {
		t.Fatalf("expected organize to report ErrConfigCorrupt, got %v", err)
	}
}

func TestOrganizeUndoRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "photo.jpg"), "jpg")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "notes.txt"), "txt")

	out, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Moved: photo.jpg -> Images")
	requireContains(t, out, "Moved: notes.txt -> Documents")
	requireContains(t, out, "Files Organized: 2/2")
	requireContains(t, out, "Images")
	testsupport.ReadFile(t, filepath.Join(env.workDir, "Images", "photo.jpg"))

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "(2 moves)")
	requireContains(t, out, filepath.Join(env.workDir, "photo.jpg"))

	out, _, err = runCLI(t, []string{"undo"}, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "Undo: Moved back photo.jpg -> "+env.workDir)
	if got := testsupport.ReadFile(t, filepath.Join(env.workDir, "photo.jpg")); got != "jpg" {
		t.Fatalf("expected file restored, got %q", got)
	}

	out, _, err = runCLI(t, []string{"undo"}, env.configPath)
	if err != nil {
		t.Fatalf("second undo: %v", err)
	}
	requireContains(t, out, "No actions to undo.")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history after undo: %v", err)
	}
	requireContains(t, out, "No actions to undo.")
}

func TestOrganizeJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.mp3"), "a")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "b.bin"), "b")

	out, _, err := runCLI(t, []string{"organize", "--json", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	var payload organizeJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Result.Organized != 2 || payload.Result.PerCategory["Others"] != 1 {
		t.Fatalf("unexpected result %+v", payload.Result)
	}
	if len(payload.Events) != 2 || payload.Events[0].Line != "Moved: a.mp3 -> Music" {
		t.Fatalf("unexpected events %+v", payload.Events)
	}
}

func TestOrganizeCollisionFailReturnsError(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.txt"), "new")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "Documents", "a.txt"), "old")

	out, _, err := runCLI(t, []string{"organize", "--collision", "fail", env.workDir}, env.configPath)
	if !errors.Is(err, services.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	requireContains(t, out, "Files Organized: 0/1")
	if testsupport.ReadFile(t, filepath.Join(env.workDir, "Documents", "a.txt")) != "old" {
		t.Fatal("expected existing file untouched")
	}
}

func TestOrganizeHandleDuplicatesFromConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHandleDuplicates())
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.txt"), "new")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "Documents", "a.txt"), "old")

	if _, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}
	if testsupport.ReadFile(t, filepath.Join(env.workDir, "Documents", "a (1).txt")) != "new" {
		t.Fatal("expected suffixed duplicate")
	}
}

func TestOrganizeCustomRulesFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAgedFile(t, filepath.Join(env.workDir, "old.pdf"), "old", 10*24*time.Hour)

	out, _, err := runCLI(t, []string{"organize", "--custom-rules", "--archive-after", "7", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Moved (Custom Rule): old.pdf -> Archive")
}

func TestOrganizeRejectsMissingDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"organize", filepath.Join(env.workDir, "missing")}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOrganizeRespectsStateLock(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	lock, err := runlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = lock.Release() })
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.txt"), "a")

	_, _, err = runCLI(t, []string{"organize", env.workDir}, env.configPath)
	if !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	testsupport.ReadFile(t, filepath.Join(env.workDir, "a.txt"))
}

func TestOrganizeWritesMetricsTextfile(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithMetricsTextfile())
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.txt"), "a")

	if _, _, err := runCLI(t, []string{"organize", env.workDir}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}
	data, err := os.ReadFile(env.cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	requireContains(t, string(data), `foldersort_files_moved_total{category="Documents",rule="extension"} 1`)
}

func TestOrganizeOptionsFlagsOverrideConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHandleDuplicates(), testsupport.WithCollisionPolicy("fail"))
	var flags organizeFlags
	cmd := &cobra.Command{}
	cmd.Flags().BoolVar(&flags.handleDuplicates, "handle-duplicates", false, "")
	cmd.Flags().BoolVar(&flags.customRules, "custom-rules", false, "")
	cmd.Flags().IntVar(&flags.archiveAfterDays, "archive-after", 0, "")
	cmd.Flags().StringVar(&flags.collision, "collision", "", "")
	if err := cmd.Flags().Parse([]string{"--handle-duplicates=false", "--archive-after", "3"}); err != nil {
		t.Fatal(err)
	}

	opts, err := organizeOptions(cmd, cfg, flags, []string{"."})
	if err != nil {
		t.Fatalf("organizeOptions: %v", err)
	}
	if opts.HandleDuplicates {
		t.Fatal("expected flag to disable duplicate handling")
	}
	if opts.Collision != organizer.CollisionFail {
		t.Fatalf("expected configured collision policy, got %q", opts.Collision)
	}
	if opts.ArchiveAfter != 3*24*time.Hour {
		t.Fatalf("unexpected archive threshold %s", opts.ArchiveAfter)
	}

	if err := cmd.Flags().Set("archive-after", "0"); err != nil {
		t.Fatal(err)
	}
	flags.archiveAfterDays = 0
	if _, err := organizeOptions(cmd, cfg, flags, []string{"."}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero threshold, got %v", err)
	}
}
