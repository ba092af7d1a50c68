// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads pipeline credentials from a directory of
// plain-text files, one secret per file. The filename is the key and the
// trimmed file body is the value.
//
// Key files in use: omnipath-password, contact-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names recognized by the pipeline. OmniPath issues per-user passwords
// for license-restricted resources; some public APIs ask callers to send a
// contact email with requests.
const (
	KeyOmniPathPassword = "omnipath-password"
	KeyContactEmail     = "contact-email"
)

// Load reads every regular file in dir into a key-to-value map. A missing
// directory yields an empty map, not an error. Dotfiles and subdirectories
// are ignored, and a file that cannot be read is skipped with a warning on
// stderr so one bad key does not block the rest.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning secrets directory %s: %w", dir, err)
	}

	loaded := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if value, ok := readKey(dir, name); ok {
			loaded[name] = value
		}
	}
	return loaded, nil
}

// readKey returns the trimmed contents of one key file. Empty values and
// read failures report false.
func readKey(dir, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping secret %s: %v\n", name, err)
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}
