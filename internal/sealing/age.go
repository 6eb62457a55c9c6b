package sealing

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"filippo.io/age"

	"cask-go/internal/cask"
)

// Age seals with filippo.io/age passphrase encryption. The derived bundle
// key, hex-encoded, is the passphrase; the ciphertext is self-framing, so
// the metadata artifact carries no IV or tag for this suite.
type Age struct{}

var _ Suite = (*Age)(nil)

// NewAge creates the age suite.
func NewAge() *Age { return &Age{} }

// Seal encrypts plaintext into a self-framing age ciphertext.
func (*Age) Seal(plaintext, key []byte) (body, iv, tag []byte, err error) {
	recipient, err := age.NewScryptRecipient(hex.EncodeToString(key))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, nil, nil, fmt.Errorf("encrypting bundle: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, nil, nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil, nil, nil
}

// Open decrypts a self-framing age ciphertext. Any header mismatch or
// payload corruption is an authentication failure: age authenticates its
// payload, so a wrong key and a tampered container are indistinguishable
// here, exactly as with the GCM suite.
func (*Age) Open(body, key, _, _ []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(hex.EncodeToString(key))
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(body), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cask.ErrAuthentication, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cask.ErrAuthentication, err)
	}
	return plaintext, nil
}
