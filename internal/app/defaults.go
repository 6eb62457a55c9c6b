package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CASK_CONFIG_PATH: config file location (default: ~/.config/cask.toml)
//   - CASK_HOME: base directory for cask data (default: ~/.local/share/cask)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	installDir, err := getInstallDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"install_dir": installDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CASK_CONFIG_PATH env var first,
// then falling back to the default ~/.config/cask.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CASK_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "cask.toml"), nil
}

// getBaseDir returns the base directory for cask data, checking CASK_HOME env var first,
// then falling back to the XDG default ~/.local/share/cask.
func getBaseDir() (string, error) {
	if path := os.Getenv("CASK_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "cask"), nil
}

// getInstallDir returns the directory the running binary was installed to.
// Shipped bundle artifacts and the dev assets directory default to living
// next to the binary.
func getInstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable path: %w", err)
	}
	return filepath.Dir(exe), nil
}
