package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		LogDir: "/var/lib/cask/log",
		Bundle: BundleConfig{
			ContainerPath: "/opt/game/assets.cask",
			MetadataPath:  "/opt/game/assets.cask.meta.json",
			DevAssetsDir:  "/opt/game/assets",
		},
		Staging: StagingConfig{Dir: "/var/lib/cask/staging"},
		IPC:     IPCConfig{SocketPath: "/run/cask/cask.sock"},
		History: HistoryConfig{Type: "sqlite", DataDir: "/var/lib/cask/data"},
		Vault:   VaultConfig{Type: "filesystem", Name: "local", FSVaultRoot: "/srv/vault"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Bundle.ContainerPath != original.Bundle.ContainerPath {
		t.Errorf("Bundle.ContainerPath = %q, want %q", got.Bundle.ContainerPath, original.Bundle.ContainerPath)
	}
	if got.Bundle.MetadataPath != original.Bundle.MetadataPath {
		t.Errorf("Bundle.MetadataPath = %q, want %q", got.Bundle.MetadataPath, original.Bundle.MetadataPath)
	}
	if got.Bundle.DevAssetsDir != original.Bundle.DevAssetsDir {
		t.Errorf("Bundle.DevAssetsDir = %q, want %q", got.Bundle.DevAssetsDir, original.Bundle.DevAssetsDir)
	}
	if got.Staging.Dir != original.Staging.Dir {
		t.Errorf("Staging.Dir = %q, want %q", got.Staging.Dir, original.Staging.Dir)
	}
	if got.IPC.SocketPath != original.IPC.SocketPath {
		t.Errorf("IPC.SocketPath = %q, want %q", got.IPC.SocketPath, original.IPC.SocketPath)
	}
	if got.History.Type != "sqlite" {
		t.Errorf("History.Type = %q, want %q", got.History.Type, "sqlite")
	}
	if got.Vault.Type != "filesystem" {
		t.Errorf("Vault.Type = %q, want %q", got.Vault.Type, "filesystem")
	}
	if got.Vault.FSVaultRoot != "/srv/vault" {
		t.Errorf("Vault.FSVaultRoot = %q, want %q", got.Vault.FSVaultRoot, "/srv/vault")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/cask", "/opt/game")

	if cfg.LogDir != "/data/cask/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/cask/log")
	}
	if cfg.Bundle.ContainerPath != "/opt/game/assets.cask" {
		t.Errorf("Bundle.ContainerPath = %q, want %q", cfg.Bundle.ContainerPath, "/opt/game/assets.cask")
	}
	if cfg.Bundle.MetadataPath != "/opt/game/assets.cask.meta.json" {
		t.Errorf("Bundle.MetadataPath = %q, want %q", cfg.Bundle.MetadataPath, "/opt/game/assets.cask.meta.json")
	}
	if cfg.Bundle.DevAssetsDir != "/opt/game/assets" {
		t.Errorf("Bundle.DevAssetsDir = %q, want %q", cfg.Bundle.DevAssetsDir, "/opt/game/assets")
	}
	if cfg.IPC.SocketPath != "/data/cask/cask.sock" {
		t.Errorf("IPC.SocketPath = %q, want %q", cfg.IPC.SocketPath, "/data/cask/cask.sock")
	}
	if cfg.History.Type != "sqlite" {
		t.Errorf("History.Type = %q, want %q", cfg.History.Type, "sqlite")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cask.toml")
		cfg := NewConfig(dir, dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cask.toml")
		cfg := NewConfig(dir, dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cask.toml")
		cfg := NewConfig(dir, "/opt/game")
		cfg.History = HistoryConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Bundle.ContainerPath != "/opt/game/assets.cask" {
			t.Errorf("Bundle.ContainerPath = %q, want %q", got.Bundle.ContainerPath, "/opt/game/assets.cask")
		}
		if got.History.Type != "memory" {
			t.Errorf("History.Type = %q, want %q", got.History.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/cask.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
