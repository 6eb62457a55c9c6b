package vault

import (
	"context"
	"testing"

	"cask-go/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		v, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*MemoryVault); !ok {
			t.Errorf("got %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := NewVaultFromConfig(ctx, config.VaultConfig{
			Type:        "filesystem",
			Name:        "fs",
			FSVaultRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("got %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem requires root", func(t *testing.T) {
		if _, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "filesystem"}); err == nil {
			t.Error("expected error for missing fs_vault_root")
		}
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		if _, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "s3"}); err == nil {
			t.Error("expected error for missing s3_bucket")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewVaultFromConfig(ctx, config.VaultConfig{Type: "ftp"}); err == nil {
			t.Error("expected error for unknown vault type")
		}
	})
}
