package history

import (
	"fmt"
	"os"
	"path/filepath"

	"cask-go/internal/config"
)

// NewStoreFromConfig builds a Store from the history configuration.
func NewStoreFromConfig(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite history requires a data directory")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "cask.db"))
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
