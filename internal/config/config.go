package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for cask.
type Config struct {
	LogDir  string        `toml:"log_dir"`
	Bundle  BundleConfig  `toml:"bundle"`
	Staging StagingConfig `toml:"staging"`
	IPC     IPCConfig     `toml:"ipc"`
	History HistoryConfig `toml:"history"`
	Vault   VaultConfig   `toml:"vault"`
}

// BundleConfig locates the bundle artifacts and the dev-mode probe.
type BundleConfig struct {
	// ContainerPath is the encrypted container artifact.
	ContainerPath string `toml:"container_path"`
	// MetadataPath is the companion metadata artifact.
	MetadataPath string `toml:"metadata_path"`
	// DevAssetsDir is probed at startup; if it exists, the raw assets in
	// it are used and no decryption happens.
	DevAssetsDir string `toml:"dev_assets_dir"`
}

// StagingConfig controls where decrypted bundles are materialized.
type StagingConfig struct {
	// Dir is the staging root. Empty means the OS temporary directory.
	Dir string `toml:"dir,omitempty"`
}

// IPCConfig controls the consumer-facing query socket.
type IPCConfig struct {
	SocketPath string `toml:"socket_path"`
}

// HistoryConfig represents configuration for the resolution ledger.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig represents configuration for the publication vault backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir for mutable
// state and installDir for the shipped artifacts.
func NewConfig(baseDir, installDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Bundle: BundleConfig{
			ContainerPath: filepath.Join(installDir, "assets.cask"),
			MetadataPath:  filepath.Join(installDir, "assets.cask.meta.json"),
			DevAssetsDir:  filepath.Join(installDir, "assets"),
		},
		IPC: IPCConfig{
			SocketPath: filepath.Join(baseDir, "cask.sock"),
		},
		History: HistoryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
