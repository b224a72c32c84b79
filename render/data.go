package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/resxgen/dict"
)

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// JSON renders a dictionary as a JSON object, keys in first-seen order.
type JSON struct {
	// Indent switches from compact output to 4-space indentation.
	Indent bool
}

func (JSON) Extension() string { return ".json" }

func (r JSON) Render(_ Source, d *dict.Dictionary) ([]byte, error) {
	var b bytes.Buffer
	if err := r.object(&b, d, 0); err != nil {
		return nil, err
	}
	if r.Indent {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

func (r JSON) object(b *bytes.Buffer, d *dict.Dictionary, level int) error {
	if d.Len() == 0 {
		b.WriteString("{}")
		return nil
	}

	b.WriteByte('{')
	for i, key := range d.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		if r.Indent {
			b.WriteString("\n" + strings.Repeat("    ", level+1))
		}
		if err := writeJSONString(b, key); err != nil {
			return err
		}
		b.WriteByte(':')
		if r.Indent {
			b.WriteByte(' ')
		}

		n := d.Get(key)
		if n.IsLeaf() {
			if err := writeJSONString(b, n.Value); err != nil {
				return err
			}
			continue
		}
		if err := r.object(b, n.Children, level+1); err != nil {
			return err
		}
	}
	if r.Indent {
		b.WriteString("\n" + strings.Repeat("    ", level))
	}
	b.WriteByte('}')
	return nil
}

// writeJSONString appends s as a JSON string literal. HTML characters are
// left as-is since the output is data, not markup.
func writeJSONString(b *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding %q: %w", s, err)
	}
	b.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

// YAML renders a dictionary as a nested YAML mapping, keys in first-seen
// order. Every scalar is tagged !!str so values like "yes" or "012" stay
// strings.
type YAML struct{}

func (YAML) Extension() string { return ".yaml" }

func (YAML) Render(_ Source, d *dict.Dictionary) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mappingNode(d)}}

	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return b.Bytes(), nil
}

func mappingNode(d *dict.Dictionary) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if d.Len() == 0 {
		m.Style = yaml.FlowStyle
	}
	for _, key := range d.Keys() {
		m.Content = append(m.Content, strNode(key))
		n := d.Get(key)
		if n.IsLeaf() {
			m.Content = append(m.Content, strNode(n.Value))
		} else {
			m.Content = append(m.Content, mappingNode(n.Children))
		}
	}
	return m
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
