package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.SaveDelay() != 5*time.Second {
		t.Fatalf("unexpected save delay: %v", cfg.SaveDelay())
	}
	if cfg.Keys.Insert != "enter" || cfg.Keys.Close != "ctrl+c" {
		t.Fatalf("unexpected keymap defaults: %+v", cfg.Keys)
	}
	if !cfg.JournalEnabled() {
		t.Fatal("journal should be enabled by default")
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFileName)
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load or create: %v", err)
	}
	if cfg.SaveDelayMS != DefaultSaveDelayMS {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestLoadOrCreateMergesPartialKeymap(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	body := "save_delay_ms = 250\njournal_path = \"off\"\n\n[keys]\ntoggle = \"ctrl+x\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected delay %v", cfg.SaveDelay())
	}
	if cfg.Keys.Toggle != "ctrl+x" || cfg.Keys.Save != "ctrl+s" {
		t.Fatalf("unexpected keys: %+v", cfg.Keys)
	}
	if cfg.JournalEnabled() {
		t.Fatal("journal should be disabled")
	}
}

func TestLoadOrCreateRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := os.WriteFile(path, []byte("save_delay_ms = [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TODOFILE_DATA_DIR", "/tmp/todo-data")
	t.Setenv("TODOFILE_SAVE_DELAY_MS", "1200")
	t.Setenv("TODOFILE_LOG_LEVEL", "DEBUG")
	t.Setenv("TODOFILE_LOG_FILE", "/tmp/todo.log")
	t.Setenv("TODOFILE_JOURNAL", "off")

	cfg := FromEnv(Default())
	if cfg.DataDir != "/tmp/todo-data" || cfg.LogFile != "/tmp/todo.log" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.SaveDelay() != 1200*time.Millisecond || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.JournalEnabled() {
		t.Fatal("expected journal disabled from env")
	}
}

func TestFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("TODOFILE_SAVE_DELAY_MS", "soon")
	cfg := FromEnv(Default())
	if cfg.SaveDelayMS != DefaultSaveDelayMS {
		t.Fatalf("invalid env should be ignored, got %d", cfg.SaveDelayMS)
	}
}

func TestResolvePathsKeepsExplicitValues(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/todo"
	cfg.LogFile = "/var/log/todo.log"
	cfg.JournalPath = "/var/cache/todo/journal.db"

	got, err := ResolvePaths(cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != cfg {
		t.Fatalf("explicit paths changed: %+v", got)
	}
}
