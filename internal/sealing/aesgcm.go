package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"cask-go/internal/cask"
)

// AESGCM seals with AES-256-GCM. The container body holds ciphertext only;
// the IV and the 16-byte authentication tag travel out-of-band in the
// metadata artifact, so a container file on its own is undecryptable noise.
type AESGCM struct{}

var _ Suite = (*AESGCM)(nil)

// NewAESGCM creates the aes-256-gcm suite.
func NewAESGCM() *AESGCM { return &AESGCM{} }

const gcmIVLen = 12

// Seal encrypts plaintext under a 32-byte key with a fresh random IV and
// splits the GCM tag off the ciphertext for out-of-band storage.
func (*AESGCM) Seal(plaintext, key []byte) (body, iv, tag []byte, err error) {
	gcm, err := newGCM(key, gcmIVLen)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, gcmIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, fmt.Errorf("generating iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - gcm.Overhead()
	return sealed[:split], iv, sealed[split:], nil
}

// Open reattaches the out-of-band tag and decrypts. GCM verifies the tag
// before releasing any plaintext; on mismatch the partial plaintext is
// discarded inside the cipher and cask.ErrAuthentication is returned.
func (*AESGCM) Open(body, key, iv, tag []byte) ([]byte, error) {
	gcm, err := newGCM(key, len(iv))
	if err != nil {
		return nil, err
	}
	if len(tag) != gcm.Overhead() {
		return nil, fmt.Errorf("authentication tag is %d bytes, want %d", len(tag), gcm.Overhead())
	}

	sealed := make([]byte, 0, len(body)+len(tag))
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cask.ErrAuthentication, err)
	}
	return plaintext, nil
}

func newGCM(key []byte, ivLen int) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key is %d bytes, want 32", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLen)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}
	return gcm, nil
}
