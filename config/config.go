// Package config resolves the project root and loads .resxgen.yaml settings.
//
// The project root is resolved once per invocation: an explicit --root
// flag, else $RESXGEN_ROOT, else the nearest directory (walking up from the
// working directory) that holds a .resxgen.yaml or a .csproj file, else the
// working directory. Input and output folders are always relative to it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/resxgen/render"
)

// FileName is the settings file looked up in the project root.
const FileName = ".resxgen.yaml"

// EnvFileName is the optional dotenv file loaded from the project root.
const EnvFileName = ".env"

// Environment variables.
const (
	EnvRoot      = "RESXGEN_ROOT"
	EnvNamespace = "RESXGEN_NAMESPACE"
	EnvWorkers   = "RESXGEN_WORKERS"
)

// ---------------------------------------------------------------------------
// Root resolution
// ---------------------------------------------------------------------------

// ResolveRoot returns the absolute project root. flagRoot wins when set.
func ResolveRoot(flagRoot string) (string, error) {
	root := strings.TrimSpace(flagRoot)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(EnvRoot))
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = DetectRoot(wd)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}

// DetectRoot walks up from start to the first directory containing a
// settings file or a C# project file. It returns start when none is found.
func DetectRoot(start string) string {
	dir := filepath.Clean(start)
	for {
		if isProjectRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Clean(start)
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
		return true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csproj") {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .resxgen.yaml structure.
type File struct {
	// Namespace is the default declared module for types targets.
	Namespace string `yaml:"namespace,omitempty"`
	// Workers bounds concurrent conversions (0 = number of CPUs).
	Workers int `yaml:"workers,omitempty"`
	// Project is the .csproj receiving generated declarations, relative to
	// the root. Empty means the first .csproj in the root, if any.
	Project string `yaml:"project,omitempty"`
	// Strict fails documents with conflicting keys.
	Strict bool `yaml:"strict,omitempty"`
	// Targets is the list of conversions run by `resxgen run`.
	Targets []Target `yaml:"targets"`

	path string
}

// Target describes one conversion batch.
type Target struct {
	// Name is a human-readable label shown in logs and used by `run NAME`.
	Name string `yaml:"name"`
	// Type: "types" or "data".
	Type string `yaml:"type"`
	// Input is the folder searched for .resx files (default: whole root).
	Input string `yaml:"input,omitempty"`
	// Output is the folder receiving outputs (default: next to sources).
	Output string `yaml:"output,omitempty"`

	// --- types options ---

	// Namespace overrides the global namespace.
	Namespace string `yaml:"namespace,omitempty"`
	// NoValues omits the value comment after each declared member.
	NoValues bool `yaml:"no_values,omitempty"`

	// --- data options ---

	// Format: "json" (default) or "yaml".
	Format string `yaml:"format,omitempty"`
	// Language is inserted before the output extension.
	Language string `yaml:"language,omitempty"`
	// Indent pretty-prints JSON output.
	Indent bool `yaml:"indent,omitempty"`
}

// TargetTypeTypes produces TypeScript declaration stubs.
const TargetTypeTypes = "types"

// TargetTypeData produces plain data files.
const TargetTypeData = "data"

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads <root>/.env (if present) into the environment, then
// <root>/.resxgen.yaml (if present), applies environment overrides and
// validates the result. A missing settings file yields an empty File.
func Load(root string) (*File, error) {
	if err := loadDotEnv(filepath.Join(root, EnvFileName)); err != nil {
		return nil, err
	}

	f := &File{}
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		f.path = path
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := f.applyEnv(); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// loadDotEnv loads a dotenv file without overriding variables already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (f *File) applyEnv() error {
	if ns := strings.TrimSpace(os.Getenv(EnvNamespace)); ns != "" {
		f.Namespace = ns
	}
	if raw := strings.TrimSpace(os.Getenv(EnvWorkers)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: invalid worker count %q", EnvWorkers, raw)
		}
		f.Workers = n
	}
	return nil
}

func (f *File) validate() error {
	src := f.path
	if src == "" {
		src = FileName
	}
	if f.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative", src)
	}

	seen := make(map[string]bool)
	for i := range f.Targets {
		t := &f.Targets[i]

		if t.Name == "" {
			return fmt.Errorf("%s: target #%d has no name", src, i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("%s: duplicate target name %q", src, t.Name)
		}
		seen[t.Name] = true

		switch t.Type {
		case TargetTypeTypes:
			if t.Namespace == "" {
				t.Namespace = f.Namespace
			}
			if t.Namespace == "" {
				return fmt.Errorf("%s: target %q needs a namespace (set it on the target or globally)", src, t.Name)
			}
		case TargetTypeData:
			format, err := render.ParseFormat(t.Format)
			if err != nil {
				return fmt.Errorf("%s: target %q: %w", src, t.Name, err)
			}
			t.Format = string(format)
		case "":
			return fmt.Errorf("%s: target %q has no type", src, t.Name)
		default:
			return fmt.Errorf("%s: target %q has unknown type %q (valid: types, data)", src, t.Name, t.Type)
		}
	}
	return nil
}

// Path returns the settings file path, or "" when none was found.
func (f *File) Path() string { return f.path }

// Found reports whether a settings file was loaded.
func (f *File) Found() bool { return f.path != "" }

// Select returns the targets with the given names, in the given order, or
// all targets when names is empty.
func (f *File) Select(names []string) ([]Target, error) {
	if len(names) == 0 {
		return f.Targets, nil
	}
	var out []Target
	for _, name := range names {
		found := false
		for _, t := range f.Targets {
			if t.Name == name {
				out = append(out, t)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown target %q", name)
		}
	}
	return out, nil
}

// ProjectPath returns the absolute path of the configured .csproj, or ""
// when none is configured.
func (f *File) ProjectPath(root string) string {
	if f.Project == "" {
		return ""
	}
	if filepath.IsAbs(f.Project) {
		return f.Project
	}
	return filepath.Join(root, filepath.FromSlash(f.Project))
}
