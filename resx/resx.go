// Package resx implements reading of .NET .resx resource files.
//
// Only the string resources are of interest:
//
//	<root>
//	    <data name="Greeting_Morning" xml:space="preserve">
//	        <value>Good morning</value>
//	        <comment>Shown on the landing page</comment>
//	    </data>
//	</root>
//
// Headers (<resheader>), schema blocks, assembly references and <data>
// elements carrying a type= or mimetype= attribute (embedded files, images)
// are skipped.
package resx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Extension is the file extension of resource documents.
const Extension = ".resx"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Entry is a single named string resource.
type Entry struct {
	// Name is the name="…" attribute. It may contain '_' segment delimiters.
	Name string
	// Value is the text of the <value> child element.
	Value string
	// Comment is the text of the optional <comment> child element.
	Comment string
}

// Document is a parsed resource file.
type Document struct {
	// Entries in document order.
	Entries []Entry
}

// Len returns the number of string resources in the document.
func (d *Document) Len() int { return len(d.Entries) }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .resx file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses .resx data. Malformed XML is reported as an error; a
// well-formed document without string resources yields an empty Document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := xml.NewDecoder(bytes.NewReader(data))

	depth := 0
	seenRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				seenRoot = true
				continue
			}
			// Only direct children of the root element are resources.
			if depth != 2 || t.Name.Local != "data" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("parsing XML: %w", err)
				}
				depth--
				continue
			}
			e, ok, err := parseDataElement(dec, t)
			if err != nil {
				return nil, err
			}
			depth--
			if ok {
				doc.Entries = append(doc.Entries, e)
			}

		case xml.EndElement:
			depth--
		}
	}

	if !seenRoot {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return doc, nil
}

// parseDataElement parses a <data> element already opened. ok is false for
// non-string resources.
func parseDataElement(dec *xml.Decoder, elem xml.StartElement) (e Entry, ok bool, err error) {
	ok = true
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			e.Name = attr.Value
		case "type", "mimetype":
			ok = false
		}
	}

	depth := 1
	for depth > 0 {
		tok, terr := dec.Token()
		if terr != nil {
			return Entry{}, false, fmt.Errorf("reading <data name=%q>: %w", e.Name, terr)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth != 1 {
				depth++
				continue
			}
			var text string
			switch t.Name.Local {
			case "value":
				text, terr = readText(dec)
				e.Value = text
			case "comment":
				text, terr = readText(dec)
				e.Comment = text
			default:
				terr = dec.Skip()
			}
			if terr != nil {
				return Entry{}, false, fmt.Errorf("reading <data name=%q>: %w", e.Name, terr)
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, ok, nil
}

// readText collects the character data of an element until its matching
// close tag. Nested elements contribute their text only.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}
