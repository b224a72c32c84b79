// Package lockfile implements resxgen.lock: a lock file that records an MD5
// fingerprint of every source document (plus the parameters it was rendered
// with) keyed by the output file it produced. Unchanged documents whose
// output still exists are skipped on the next run.
//
// The lock file is stored in the project root as resxgen.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "resxgen.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the resxgen.lock file structure.
type LockFile struct {
	Version int               `yaml:"version"`
	Outputs map[string]string `yaml:"outputs"` // output path -> fingerprint

	mu    sync.Mutex `yaml:"-"`
	path  string     `yaml:"-"`
	dirty bool       `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version: Version,
		Outputs: make(map[string]string),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported lock file version %d", path, lf.Version)
	}
	lf.Version = Version
	lf.path = path

	if lf.Outputs == nil {
		lf.Outputs = make(map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk if it changed since Load.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	if !lf.dirty {
		return nil
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	lf.dirty = false

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Fingerprints
// ---------------------------------------------------------------------------

// Fingerprint computes the MD5 hex digest of the given parts. Parts are
// NUL-separated so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(strings.Join(parts, "\x00"))))
}

// Key builds the lock key for an output file: its path relative to root
// with forward slashes, or the cleaned absolute path when it lies outside.
func Key(root, output string) string {
	if rel, err := filepath.Rel(root, output); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filepath.Clean(output))
}

// IsChanged reports whether key is new or was recorded with a different
// fingerprint.
func (lf *LockFile) IsChanged(key, fingerprint string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Outputs[key]
	return !ok || old != fingerprint
}

// Has reports whether key has a recorded fingerprint.
func (lf *LockFile) Has(key string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	_, ok := lf.Outputs[key]
	return ok
}

// Update records the fingerprint of a successfully written output.
func (lf *LockFile) Update(key, fingerprint string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Outputs[key] != fingerprint {
		lf.Outputs[key] = fingerprint
		lf.dirty = true
	}
}

// Remove forgets an output, e.g. when its source now renders nothing.
func (lf *LockFile) Remove(key string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if _, ok := lf.Outputs[key]; ok {
		delete(lf.Outputs, key)
		lf.dirty = true
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Len returns the number of recorded outputs.
func (lf *LockFile) Len() int {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return len(lf.Outputs)
}

// Keys returns the sorted list of recorded output keys.
func (lf *LockFile) Keys() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keys := make([]string, 0, len(lf.Outputs))
	for k := range lf.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	n := lf.Len()
	if n == 0 {
		return "empty"
	}
	if n == 1 {
		return "1 output"
	}
	return fmt.Sprintf("%d outputs", n)
}
