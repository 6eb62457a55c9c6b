package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetArtifact(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name    string
		release string
		file    string
		content string
	}{
		{
			name:    "store and retrieve container",
			release: "1.4.2",
			file:    "assets.cask",
			content: "ciphertext bytes",
		},
		{
			name:    "store empty artifact",
			release: "1.4.2",
			file:    "empty.bin",
			content: "",
		},
		{
			name:    "store large artifact",
			release: "2.0.0",
			file:    "assets.cask",
			content: strings.Repeat("x", 10000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			if err := vault.PutArtifact(tt.release, tt.file, r, int64(len(tt.content))); err != nil {
				t.Fatalf("PutArtifact() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetArtifact(tt.release, tt.file, &buf); err != nil {
				t.Fatalf("GetArtifact() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetArtifact() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestMemoryVault_Overwrite(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	for _, content := range []string{"first", "second"} {
		r := strings.NewReader(content)
		if err := vault.PutArtifact("1.0.0", "assets.cask", r, int64(len(content))); err != nil {
			t.Fatalf("PutArtifact(%q) error = %v", content, err)
		}
	}

	var buf bytes.Buffer
	if err := vault.GetArtifact("1.0.0", "assets.cask", &buf); err != nil {
		t.Fatalf("GetArtifact() error = %v", err)
	}
	if got := buf.String(); got != "second" {
		t.Errorf("GetArtifact() = %q, want re-published content", got)
	}
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	r := strings.NewReader("short")
	if err := vault.PutArtifact("1.0.0", "assets.cask", r, 100); err == nil {
		t.Error("PutArtifact() with wrong size should return error")
	}
}

func TestMemoryVault_GetMissing(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	if err := vault.GetArtifact("9.9.9", "assets.cask", &buf); err == nil {
		t.Error("GetArtifact() for missing artifact should return error")
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	if err := NewMemoryVault("test-vault").ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
