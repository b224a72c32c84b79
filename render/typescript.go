package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/minios-linux/resxgen/dict"
)

// Generator is the tool name written into generated headers.
const Generator = "resxgen"

// TypeScript renders a dictionary as an ambient module declaration:
//
//	declare module Resources {
//		export class Messages {
//			Title: string; // 'Home'
//			Greeting: {
//				Morning: string; // 'Hi'
//			};
//		}
//	}
type TypeScript struct {
	// Namespace is the declared module name.
	Namespace string
	// OmitValues drops the trailing comment showing each leaf's value.
	OmitValues bool
}

func (TypeScript) Extension() string { return ".d.ts" }

func (r TypeScript) Render(src Source, d *dict.Dictionary) ([]byte, error) {
	if r.Namespace == "" {
		return nil, fmt.Errorf("typescript: namespace is required")
	}

	var b strings.Builder
	b.WriteString("// TypeScript Resx model for: " + src.Path + "\n")
	b.WriteString("// Auto generated by " + Generator + "\n")
	b.WriteString("\n")
	b.WriteString("declare module " + r.Namespace + " {\n")
	b.WriteString("\texport class " + ClassName(src.Name) + " ")
	r.block(&b, d, 1)
	b.WriteString("\n}\n")
	return []byte(b.String()), nil
}

// Block renders the structural type of d at the given nesting depth. Leaf
// keys are typed string; branches become nested object types.
func (r TypeScript) Block(d *dict.Dictionary, depth int) string {
	var b strings.Builder
	r.block(&b, d, depth)
	return b.String()
}

func (r TypeScript) block(b *strings.Builder, d *dict.Dictionary, depth int) {
	indent := strings.Repeat("\t", depth)
	child := indent + "\t"

	b.WriteString("{\n")
	for _, key := range d.Keys() {
		n := d.Get(key)
		b.WriteString(child + propertyName(key) + ": ")
		if n.IsLeaf() {
			b.WriteString("string;")
			if !r.OmitValues {
				b.WriteString(" // '" + singleLine(n.Value) + "'")
			}
		} else {
			r.block(b, n.Children, depth+1)
			b.WriteString(";")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
}

var reIdentifier = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{Nd}_$]*$`)

// propertyName quotes keys that are not valid identifiers.
func propertyName(key string) string {
	if reIdentifier.MatchString(key) {
		return key
	}
	return strconv.Quote(key)
}

// singleLine keeps a value on one comment line.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\u2028", `\u2028`)
	return strings.ReplaceAll(s, "\u2029", `\u2029`)
}

// ClassName derives the exported class name from a document base name:
// dots become underscores ("Messages.fr" -> "Messages_fr") and any other
// character not allowed in an identifier is replaced as well.
func ClassName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
