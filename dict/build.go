package dict

import (
	"fmt"
	"strings"
)

// ConflictKind identifies how a key was used inconsistently.
type ConflictKind int

const (
	// LeafReplacedByBranch: "A" was a value, then "A_B" needed A as a branch.
	LeafReplacedByBranch ConflictKind = iota
	// BranchReplacedByLeaf: "A_B" built a branch, then "A" assigned a value.
	BranchReplacedByLeaf
)

// Conflict records a key path that was used both as a leaf and as a branch.
// The later entry always wins.
type Conflict struct {
	// Path is the delimited key path of the overwritten node.
	Path string
	// Key is the full resource name whose insertion caused the overwrite.
	Key  string
	Kind ConflictKind
}

func (c Conflict) String() string {
	switch c.Kind {
	case LeafReplacedByBranch:
		return fmt.Sprintf("%q: value at %q replaced by nested keys", c.Key, c.Path)
	default:
		return fmt.Sprintf("%q: nested keys at %q replaced by a value", c.Key, c.Path)
	}
}

// Insert stores value at the path obtained by splitting key on Delimiter
// and returns d. An empty key is ignored. Overwrites across node kinds are
// reported through the returned conflicts.
func Insert(d *Dictionary, key, value string) (*Dictionary, []Conflict) {
	var conflicts []Conflict
	insert(d, key, value, key, "", &conflicts)
	return d, conflicts
}

func insert(d *Dictionary, key, value, fullKey, prefix string, conflicts *[]Conflict) {
	if key == "" {
		return
	}

	first, rest, nested := strings.Cut(key, Delimiter)
	path := first
	if prefix != "" {
		path = prefix + Delimiter + first
	}

	existing := d.nodes[first]
	if !nested {
		if existing != nil && !existing.IsLeaf() {
			*conflicts = append(*conflicts, Conflict{Path: path, Key: fullKey, Kind: BranchReplacedByLeaf})
		}
		d.set(first, &Node{Value: value})
		return
	}

	if existing == nil || existing.IsLeaf() {
		if existing != nil {
			*conflicts = append(*conflicts, Conflict{Path: path, Key: fullKey, Kind: LeafReplacedByBranch})
		}
		existing = &Node{Children: New()}
		d.set(first, existing)
	}
	insert(existing.Children, rest, value, fullKey, path, conflicts)
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// Pair is a named value to fold into a dictionary.
type Pair struct {
	Name  string
	Value string
}

// Options control how record values are stored.
type Options struct {
	// Escape transforms each value before insertion. Nil stores values
	// verbatim.
	Escape func(string) string
}

// Build folds records into a new dictionary in a single pass, in order.
func Build(records []Pair, opts Options) (*Dictionary, []Conflict) {
	d := New()
	var conflicts []Conflict
	for _, r := range records {
		value := r.Value
		if opts.Escape != nil {
			value = opts.Escape(value)
		}
		_, c := Insert(d, r.Name, value)
		conflicts = append(conflicts, c...)
	}
	return d, conflicts
}

// EscapeSingleQuotes prefixes every single quote with a backslash so the
// value can sit inside a single-quoted TypeScript string.
func EscapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
