package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gap "github.com/muesli/go-app-paths"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppID                 = "todofile"
	DefaultConfigFileName = "config.toml"
	DefaultLogFileName    = "todofile.log"
	DefaultJournalName    = "journal.db"
	DefaultSaveDelayMS    = 5000
	// JournalDisabled turns the activity journal off when used as the
	// journal path.
	JournalDisabled = "off"
)

type Keymap struct {
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Insert        string `toml:"insert"`
	Remove        string `toml:"remove"`
	Toggle        string `toml:"toggle"`
	DeleteChecked string `toml:"delete_checked"`
	Save          string `toml:"save"`
	Open          string `toml:"open"`
	Palette       string `toml:"palette"`
	Preview       string `toml:"preview"`
	Close         string `toml:"close"`
}

type Config struct {
	DataDir     string `toml:"data_dir"`
	SaveDelayMS int    `toml:"save_delay_ms"`
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	JournalPath string `toml:"journal_path"`
	Keys        Keymap `toml:"keys"`
}

func (c Config) SaveDelay() time.Duration {
	if c.SaveDelayMS <= 0 {
		return DefaultSaveDelayMS * time.Millisecond
	}
	return time.Duration(c.SaveDelayMS) * time.Millisecond
}

func (c Config) JournalEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.JournalPath), JournalDisabled)
}

func Default() Config {
	return Config{
		SaveDelayMS: DefaultSaveDelayMS,
		LogLevel:    "info",
		Keys:        DefaultKeymap(),
	}
}

func DefaultKeymap() Keymap {
	return Keymap{
		Up:            "up",
		Down:          "down",
		Insert:        "enter",
		Remove:        "ctrl+r",
		Toggle:        "ctrl+t",
		DeleteChecked: "ctrl+d",
		Save:          "ctrl+s",
		Open:          "ctrl+o",
		Palette:       "ctrl+p",
		Preview:       "f2",
		Close:         "ctrl+c",
	}
}

// Path returns the location of the config file for the current user.
func Path() (string, error) {
	return gap.NewScope(gap.User, AppID).ConfigPath(DefaultConfigFileName)
}

// LoadOrCreate reads the TOML config at path, writing the defaults there
// first if the file does not exist.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Keys = mergeKeymap(cfg.Keys, DefaultKeymap())
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FromEnv applies TODOFILE_* overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("TODOFILE_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvInt("TODOFILE_SAVE_DELAY_MS"); ok && v > 0 {
		cfg.SaveDelayMS = v
	}
	if v, ok := getEnvString("TODOFILE_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvString("TODOFILE_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("TODOFILE_JOURNAL"); ok {
		cfg.JournalPath = v
	}
	return cfg
}

// ResolvePaths fills empty directory settings from the platform's per-user
// locations. The journal and log live outside the data directory so they
// never take part in the most-recent-file scan.
func ResolvePaths(cfg Config) (Config, error) {
	scope := gap.NewScope(gap.User, AppID)
	if strings.TrimSpace(cfg.DataDir) == "" {
		dirs, err := scope.DataDirs()
		if err != nil {
			return cfg, fmt.Errorf("resolve data dir: %w", err)
		}
		if len(dirs) == 0 {
			return cfg, errors.New("config: no data directory available")
		}
		cfg.DataDir = dirs[0]
	}
	if strings.TrimSpace(cfg.LogFile) == "" {
		p, err := scope.LogPath(DefaultLogFileName)
		if err != nil {
			return cfg, fmt.Errorf("resolve log path: %w", err)
		}
		cfg.LogFile = p
	}
	if strings.TrimSpace(cfg.JournalPath) == "" {
		dir, err := scope.CacheDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve cache dir: %w", err)
		}
		cfg.JournalPath = filepath.Join(dir, DefaultJournalName)
	}
	return cfg, nil
}

func mergeKeymap(k, fallback Keymap) Keymap {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return Keymap{
		Up:            pick(k.Up, fallback.Up),
		Down:          pick(k.Down, fallback.Down),
		Insert:        pick(k.Insert, fallback.Insert),
		Remove:        pick(k.Remove, fallback.Remove),
		Toggle:        pick(k.Toggle, fallback.Toggle),
		DeleteChecked: pick(k.DeleteChecked, fallback.DeleteChecked),
		Save:          pick(k.Save, fallback.Save),
		Open:          pick(k.Open, fallback.Open),
		Palette:       pick(k.Palette, fallback.Palette),
		Preview:       pick(k.Preview, fallback.Preview),
		Close:         pick(k.Close, fallback.Close),
	}
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
