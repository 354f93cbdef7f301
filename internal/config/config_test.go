package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	raw := `
[server]
name = "nav-eu-1"

[world]
width = 500.0
depth = 300.0
grid_size = 1.0
search_radius = 20

[network]
bind_address = "127.0.0.1:9000"
tick_rate = "100ms"

[database]
enabled = true
`
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Name != "nav-eu-1" {
		t.Errorf("server name = %q", cfg.Server.Name)
	}
	if cfg.World.Width != 500 || cfg.World.Depth != 300 || cfg.World.GridSize != 1 {
		t.Errorf("world = %+v", cfg.World)
	}
	if cfg.World.SearchRadius != 20 {
		t.Errorf("search radius = %d", cfg.World.SearchRadius)
	}
	if cfg.Network.BindAddress != "127.0.0.1:9000" {
		t.Errorf("bind address = %q", cfg.Network.BindAddress)
	}
	if cfg.Network.TickRate != 100*time.Millisecond {
		t.Errorf("tick rate = %s", cfg.Network.TickRate)
	}
	if !cfg.Database.Enabled {
		t.Error("database not enabled")
	}

	// Fields absent from the file keep their defaults.
	if cfg.Network.MaxPacketsPerTick != 64 {
		t.Errorf("max packets per tick = %d, want default 64", cfg.Network.MaxPacketsPerTick)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
