// Package render turns nested resource dictionaries into output files:
// TypeScript declaration stubs (.d.ts) or plain data (JSON, YAML).
package render

import (
	"fmt"
	"strings"

	"github.com/minios-linux/resxgen/dict"
)

// Source identifies the resource document being rendered.
type Source struct {
	// Path is the document path shown in generated headers, usually relative
	// to the project root with forward slashes.
	Path string
	// Name is the document base name without the .resx extension.
	Name string
}

// Renderer renders a dictionary into the bytes of one output file.
type Renderer interface {
	// Extension is the output file extension including the leading dot.
	Extension() string
	Render(src Source, d *dict.Dictionary) ([]byte, error)
}

// Format names a data output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown data format %q (valid: json, yaml)", s)
}

// NewData returns the data renderer for a format.
func NewData(f Format, indent bool) Renderer {
	if f == FormatYAML {
		return YAML{}
	}
	return JSON{Indent: indent}
}
