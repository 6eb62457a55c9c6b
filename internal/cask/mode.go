package cask

import "os"

// DetectDevMode probes for a raw-asset directory at dir. If the directory
// exists the process is running a development build and the pipeline must
// short-circuit to it without touching the encrypted container or its
// metadata. The probe is a single stat; it has no other side effects.
func DetectDevMode(dir string) (path string, ok bool) {
	if dir == "" {
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}
