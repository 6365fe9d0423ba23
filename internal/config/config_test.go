package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "default_filter") || !strings.Contains(string(data), "[keys]") {
		t.Errorf("written config missing default_filter:\n%s", data)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again != cfg {
		t.Errorf("reload: got %+v, want %+v", again, cfg)
	}
}

func TestLoadOrCreateMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
default_filter = "overdue"
default_sort = "title"
timezone = "UTC"

[keys]
quit = "x"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.DefaultFilter != "overdue" || cfg.DefaultSort != "title" {
		t.Errorf("view defaults: got %s/%s", cfg.DefaultFilter, cfg.DefaultSort)
	}
	if cfg.Keys.Quit != "x" {
		t.Errorf("Keys.Quit: got %q, want x", cfg.Keys.Quit)
	}
	if cfg.Keys.Add != "a" || cfg.Locale != "en" {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location: got %v, %v", loc, err)
	}
}

func TestLoadOrCreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad filter", content: `default_filter = "archived"`},
		{name: "bad sort", content: `default_sort = "priority"`},
		{name: "bad locale", content: `locale = "not a tag!"`},
		{name: "bad timezone", content: `timezone = "Mars/Olympus"`},
		{name: "bad toml", content: `default_filter = `},
		{name: "key shadows sort chord", content: "[keys]\nsearch = \"s\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOrCreate(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateKeyCollisions(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default keymap rejected: %v", err)
	}

	cfg.Keys.Edit = "s"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for edit bound to a sort chord prefix")
	}
	if !strings.Contains(err.Error(), "edit") || !strings.Contains(err.Error(), "sort_due") {
		t.Errorf("error should name both bindings: %v", err)
	}

	cfg.Keys.SortDue, cfg.Keys.SortCreated, cfg.Keys.SortTitle = "", "", ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("unbound chords should not collide: %v", err)
	}
}

func TestLanguage(t *testing.T) {
	cfg := Default()
	cfg.Locale = "sv-SE"
	tag, err := cfg.Language()
	if err != nil {
		t.Fatalf("Language failed: %v", err)
	}
	if tag != language.MustParse("sv-SE") {
		t.Errorf("got %v", tag)
	}

	cfg.Locale = ""
	if tag, _ := cfg.Language(); tag != language.English {
		t.Errorf("empty locale: got %v, want en", tag)
	}
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Errorf("got %s", got)
	}
}
