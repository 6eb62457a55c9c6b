// Package sealing implements the authenticated encryption suites a bundle
// container can be sealed with. The packer and the resolver agree on the
// suite via the metadata algorithm field. Every suite fails closed: no
// plaintext is ever returned unless authentication succeeds.
package sealing

// Suite is one authenticated sealing scheme.
//
// Suites differ in where they carry framing: aes-256-gcm keeps the
// container body ciphertext-only and hands the IV and tag back for
// out-of-band storage in the metadata artifact; age produces a
// self-framing ciphertext and returns empty IV and tag.
type Suite interface {
	// Seal encrypts plaintext under key. Returns the container body plus
	// the out-of-band IV and authentication tag (nil for self-framing
	// suites). Producer-side only.
	Seal(plaintext, key []byte) (body, iv, tag []byte, err error)

	// Open authenticates and decrypts a container body. iv and tag come
	// from the metadata artifact; self-framing suites ignore them. The
	// authentication tag is verified before any plaintext is returned;
	// a mismatch yields cask.ErrAuthentication and no plaintext.
	Open(body, key, iv, tag []byte) ([]byte, error)
}
