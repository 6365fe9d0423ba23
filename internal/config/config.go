package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"taskboard/internal/tasks"
)

const (
	DefaultConfigFileName = "config.toml"
	EnvConfigPath         = "TASKBOARD_CONFIG"
	appDirName            = "taskboard"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Detail      string `toml:"detail"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	Edit        string `toml:"edit"`
	Search      string `toml:"search"`
	FilterNext  string `toml:"filter_next"`
	FilterPrev  string `toml:"filter_prev"`
	SortDue     string `toml:"sort_due"`
	SortCreated string `toml:"sort_created"`
	SortTitle   string `toml:"sort_title"`
}

type Config struct {
	DefaultFilter string `toml:"default_filter"`
	DefaultSort   string `toml:"default_sort"`
	Locale        string `toml:"locale"`
	Timezone      string `toml:"timezone"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath picks the config file location: $TASKBOARD_CONFIG if
// set, otherwise config.toml under the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults first when
// the file does not exist yet. Keys absent from the file keep their default.
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
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := tasks.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	if _, err := tasks.ParseSortKey(c.DefaultSort); err != nil {
		return fmt.Errorf("default_sort: %w", err)
	}
	if _, err := c.Language(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.Keys.validate(); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	return nil
}

type binding struct {
	name string
	key  string
}

// validate rejects list bindings that are a prefix of a sort chord, since
// the chord could then never be typed.
func (k Keymap) validate() error {
	single := []binding{
		{"quit", k.Quit}, {"add", k.Add}, {"up", k.Up}, {"down", k.Down},
		{"toggle", k.Toggle}, {"delete", k.Delete}, {"detail", k.Detail},
		{"edit", k.Edit}, {"search", k.Search},
		{"filter_next", k.FilterNext}, {"filter_prev", k.FilterPrev},
	}
	chords := []binding{{"sort_due", k.SortDue}, {"sort_created", k.SortCreated}, {"sort_title", k.SortTitle}}
	for _, c := range chords {
		if c.key == "" {
			continue
		}
		for _, b := range single {
			if b.key != "" && strings.HasPrefix(c.key, b.key) {
				return fmt.Errorf("%s %q shadows %s %q", b.name, b.key, c.name, c.key)
			}
		}
	}
	return nil
}

// Language parses the locale used for title collation.
func (c Config) Language() (language.Tag, error) {
	if c.Locale == "" {
		return language.English, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// Location resolves the timezone used for day boundaries. Empty and
// "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		DefaultFilter: string(tasks.FilterAll),
		DefaultSort:   string(tasks.SortByDueDate),
		Locale:        "en",
		Timezone:      "Local",
		LogLevel:      "info",
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			Up:          "k",
			Down:        "j",
			Toggle:      " ",
			Delete:      "d",
			Detail:      "enter",
			Confirm:     "enter",
			Cancel:      "esc",
			Edit:        "e",
			Search:      "/",
			FilterNext:  "f",
			FilterPrev:  "F",
			SortDue:     "sd",
			SortCreated: "sc",
			SortTitle:   "st",
		},
	}
}
