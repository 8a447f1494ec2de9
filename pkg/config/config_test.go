package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir moves into dir for the duration of the test so no stray .env is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFile() err = %v, want nil", err)
	}
	if *cfg != *Default() {
		t.Errorf("Expected defaults %+v, got %+v", *Default(), *cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.TasksFile = "/tmp/mine.json"
	cfg.TaskList = "Chores"
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile() err = %v, want nil", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() err = %v, want nil", err)
	}
	if got.TasksFile != "/tmp/mine.json" || got.TaskList != "Chores" {
		t.Errorf("Expected saved values, got %+v", got)
	}
	if got.LogLevel != "info" {
		t.Errorf("Expected default log level, got %q", got.LogLevel)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TICKBOX_TASKS_FILE", "env.json")
	t.Setenv("TICKBOX_LOG_JSON", "true")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFile() err = %v, want nil", err)
	}
	if cfg.TasksFile != "env.json" {
		t.Errorf("Expected TasksFile env.json, got %q", cfg.TasksFile)
	}
	if !cfg.LogJSON {
		t.Error("Expected LogJSON true from env")
	}
}

func TestLoadFile_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TICKBOX_TASK_LIST=FromDotEnv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TICKBOX_TASK_LIST") })

	cfg, err := LoadFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("LoadFile() err = %v, want nil", err)
	}
	if cfg.TaskList != "FromDotEnv" {
		t.Errorf("Expected TaskList FromDotEnv, got %q", cfg.TaskList)
	}
}

func TestSet(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("task_list", "Work"); err != nil {
		t.Fatalf("Set() err = %v, want nil", err)
	}
	if cfg.TaskList != "Work" {
		t.Errorf("Expected Work, got %q", cfg.TaskList)
	}
	if err := cfg.Set("log_level", "loud"); err == nil {
		t.Error("Expected error for invalid log level")
	}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	t.Setenv("TICKBOX_TASK_LIST", "FromEnv")
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() err = %v, want nil", err)
	}
	if *cfg != *Default() {
		t.Errorf("Expected defaults for missing file, got %+v", *cfg)
	}

	if err := os.WriteFile(path, []byte(`{"log_level": "warn"}`), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() err = %v, want nil", err)
	}
	if cfg.LogLevel != "warn" || cfg.TaskList != "tickbox" {
		t.Errorf("Expected file value over defaults only, got %+v", *cfg)
	}
}
