// Package csproj registers generated TypeScript declaration files with an
// MSBuild project so they become part of the build:
//
//	<ItemGroup>
//	    <TypeScriptCompile Include="Scripts\typings\Messages.d.ts" />
//	</ItemGroup>
//
// The project file is edited textually so formatting, comments and
// unrelated items are left exactly as they were.
package csproj

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Extension is the C# project file extension.
const Extension = ".csproj"

// Project is an MSBuild project file that accepts TypeScriptCompile items.
// It is safe for concurrent use.
type Project struct {
	path string
	mu   sync.Mutex
}

// Open returns the project at path. The file must exist.
func Open(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening project %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening project %s: is a directory", path)
	}
	return &Project{path: abs}, nil
}

// Find returns the first .csproj file (by name) directly inside dir, or ""
// when there is none.
func Find(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// Path returns the absolute project file path.
func (p *Project) Path() string { return p.path }

var (
	reInclude    = regexp.MustCompile(`<TypeScriptCompile\s+Include="([^"]*)"`)
	reLastItem   = regexp.MustCompile(`(?s)^(.*<TypeScriptCompile\s[^>]*?(?:/>|>.*?</TypeScriptCompile>))`)
	reProjectEnd = regexp.MustCompile(`</Project>\s*$`)
)

// Includes returns the TypeScriptCompile include paths in document order.
func (p *Project) Includes() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}
	return includes(string(data)), nil
}

func includes(s string) []string {
	var out []string
	for _, m := range reInclude.FindAllStringSubmatch(s, -1) {
		out = append(out, xmlUnescape(m[1]))
	}
	return out
}

// Register adds file as a TypeScriptCompile item. file may be absolute or
// relative to the project directory. Already registered files are left
// alone. It reports whether the project file was changed.
func (p *Project) Register(file string) (bool, error) {
	include, err := p.includePath(file)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", p.path, err)
	}
	s := string(data)

	for _, existing := range includes(s) {
		if strings.EqualFold(normalize(existing), normalize(include)) {
			return false, nil
		}
	}

	item := `<TypeScriptCompile Include="` + xmlEscape(include) + `" />`
	updated, err := insertItem(s, item)
	if err != nil {
		return false, fmt.Errorf("%s: %w", p.path, err)
	}

	if err := os.WriteFile(p.path, []byte(updated), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", p.path, err)
	}
	return true, nil
}

// includePath converts file to the backslash-separated path MSBuild expects,
// relative to the project directory.
func (p *Project) includePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		rel, err := filepath.Rel(filepath.Dir(p.path), file)
		if err != nil {
			return "", fmt.Errorf("relating %s to %s: %w", file, p.path, err)
		}
		file = rel
	}
	return normalize(file), nil
}

// insertItem places item after the last existing TypeScriptCompile item, or
// in a new ItemGroup just before </Project>.
func insertItem(s, item string) (string, error) {
	if m := reLastItem.FindStringSubmatchIndex(s); m != nil {
		end := m[3]
		lineStart := strings.LastIndex(s[:end], "\n") + 1
		indent := leadingSpace(s[lineStart:end])
		return s[:end] + "\n" + indent + item + s[end:], nil
	}

	loc := reProjectEnd.FindStringIndex(s)
	if loc == nil {
		return "", fmt.Errorf("no closing </Project> element")
	}
	group := "  <ItemGroup>\n    " + item + "\n  </ItemGroup>\n"
	head := s[:loc[0]]
	if !strings.HasSuffix(head, "\n") {
		head += "\n"
	}
	return head + group + s[loc[0]:], nil
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func normalize(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "/", `\`)
}

var (
	xmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	xmlUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func xmlEscape(s string) string   { return xmlEscaper.Replace(s) }
func xmlUnescape(s string) string { return xmlUnescaper.Replace(s) }
