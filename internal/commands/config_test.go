package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/forecastchat/internal/config"
)

func runConfigCmd(t *testing.T, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	cmd := NewConfigCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd(nil)

	if cmd.Use != "config" {
		t.Errorf("Use = %s, want config", cmd.Use)
	}

	want := map[string]bool{"set": false, "path": false, "edit": false}
	for _, sub := range cmd.Commands() {
		want[sub.Name()] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}

	set, _, err := cmd.Find([]string{"set"})
	if err != nil {
		t.Fatalf("Find(set) error = %v", err)
	}
	for _, theme := range config.AvailableThemes() {
		if !strings.Contains(set.Long, theme) {
			t.Errorf("set help does not list theme %s", theme)
		}
	}
}

func TestConfigShow(t *testing.T) {
	setTempHome(t)
	resetFlags(t)

	out, err := runConfigCmd(t, nil)
	if err != nil {
		t.Fatalf("config error = %v", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if cfg != config.DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestConfigSet(t *testing.T) {
	setTempHome(t)
	resetFlags(t)

	out, err := runConfigCmd(t, nil, "set", "history_window", "30")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if !strings.Contains(out, "history_window = 30") {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HistoryWindow != 30 {
		t.Errorf("HistoryWindow = %d, want 30", cfg.HistoryWindow)
	}
}

func TestConfigSetInvalid(t *testing.T) {
	setTempHome(t)
	resetFlags(t)

	if _, err := runConfigCmd(t, nil, "set", "endpoint", "ftp://nope"); err == nil {
		t.Error("expected validation error")
	}
	if _, err := runConfigCmd(t, nil, "set", "endpoint"); err == nil {
		t.Error("expected argument count error")
	}
}

func TestConfigPath(t *testing.T) {
	home := setTempHome(t)

	out, err := runConfigCmd(t, nil, "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".forecastchat", "config.json")
	if strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", out, want)
	}
}

func TestConfigEdit(t *testing.T) {
	setTempHome(t)

	fake := &fakeTUI{}
	if _, err := runConfigCmd(t, &Dependencies{TUI: fake}, "edit"); err != nil {
		t.Fatal(err)
	}
	if fake.configCalls != 1 {
		t.Errorf("RunConfig called %d times", fake.configCalls)
	}
	if fake.configCfg != config.DefaultConfig() {
		t.Errorf("RunConfig got %+v", fake.configCfg)
	}
}
