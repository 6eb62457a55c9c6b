package cask

// ResolvedBundle is the single outcome of a successful resolution: where the
// usable assets live and which branch produced them. It is created exactly
// once per process lifetime, is immutable afterward, and is always shared by
// value: consumers get a copy of the path string and two booleans, never a
// handle to key material or ciphertext.
type ResolvedBundle struct {
	// Path is what consumers load assets from: the raw asset directory in
	// dev mode, or the materialized archive file in an ephemeral directory
	// in production.
	Path string

	// Decrypted reports that the bundle went through the decrypt branch.
	Decrypted bool

	// DevMode reports that the dev-mode short circuit was taken.
	// DevMode implies !Decrypted.
	DevMode bool
}
