package main

import (
	"testing"

	"taskboard/internal/config"
	"taskboard/internal/tasks"
)

func TestNewStoreAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultFilter = "upcoming"
	cfg.DefaultSort = "title"
	cfg.Timezone = "UTC"

	store, err := newStore(cfg)
	if err != nil {
		t.Fatalf("newStore failed: %v", err)
	}
	if store.Filter() != tasks.FilterUpcoming || store.SortBy() != tasks.SortByTitle {
		t.Errorf("view controls: got %s/%s", store.Filter(), store.SortBy())
	}
	if store.Location().String() != "UTC" {
		t.Errorf("location: got %s", store.Location())
	}
}

func TestNewStoreRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultSort = "priority"
	if _, err := newStore(cfg); err == nil {
		t.Fatal("expected error for unknown sort key")
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{"config", "c", "log-file", "debug"} {
		if !names[want] {
			t.Errorf("missing flag %q", want)
		}
	}
}
