// Package dict folds flat, '_'-delimited resource names into a nested
// dictionary.
//
//	Greeting_Morning = Hi
//	Greeting_Evening = Bye
//	Title            = Home
//
// becomes
//
//	Greeting:
//	    Morning: Hi
//	    Evening: Bye
//	Title: Home
//
// Keys keep first-seen order at every level so renderers produce stable
// output.
package dict

import "strings"

// Delimiter separates key segments in a resource name.
const Delimiter = "_"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Node is either a leaf holding a string value or a branch holding a
// nested Dictionary.
type Node struct {
	// Value is the leaf text. Meaningless when Children is set.
	Value string
	// Children is non-nil for branches.
	Children *Dictionary
}

// IsLeaf reports whether the node holds a string value.
func (n *Node) IsLeaf() bool { return n.Children == nil }

// Dictionary is an ordered string-keyed mapping of nodes.
type Dictionary struct {
	keys  []string
	nodes map[string]*Node
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{nodes: make(map[string]*Node)}
}

// Len returns the number of keys at this level.
func (d *Dictionary) Len() int { return len(d.keys) }

// Keys returns the keys at this level in first-seen order.
func (d *Dictionary) Keys() []string { return d.keys }

// Get returns the node stored under key, or nil.
func (d *Dictionary) Get(key string) *Node { return d.nodes[key] }

// lookup resolves a full delimited key (e.g. "Greeting_Morning") to a leaf
// value.
func (d *Dictionary) lookup(key string) (string, bool) {
	cur := d
	for {
		first, rest, nested := strings.Cut(key, Delimiter)
		n := cur.nodes[first]
		if n == nil {
			return "", false
		}
		if !nested {
			if !n.IsLeaf() {
				return "", false
			}
			return n.Value, true
		}
		if n.IsLeaf() {
			return "", false
		}
		cur, key = n.Children, rest
	}
}

// Depth returns the height of the key hierarchy: 0 for an empty dictionary,
// 1 when every key is a leaf.
func (d *Dictionary) Depth() int {
	if d.Len() == 0 {
		return 0
	}
	depth := 1
	for _, k := range d.keys {
		if n := d.nodes[k]; !n.IsLeaf() {
			if cd := n.Children.Depth() + 1; cd > depth {
				depth = cd
			}
		}
	}
	return depth
}

// Map converts the dictionary to plain Go maps (map[string]any with string
// leaves), the shape produced by decoding JSON or YAML output.
func (d *Dictionary) Map() map[string]any {
	out := make(map[string]any, d.Len())
	for _, k := range d.keys {
		n := d.nodes[k]
		if n.IsLeaf() {
			out[k] = n.Value
		} else {
			out[k] = n.Children.Map()
		}
	}
	return out
}

// set stores n under key, appending the key on first use.
func (d *Dictionary) set(key string, n *Node) {
	if _, ok := d.nodes[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.nodes[key] = n
}
