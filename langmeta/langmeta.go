// Package langmeta normalizes culture tags used to name localized outputs
// (Messages.fr.json, Messages.pt-BR.json) and provides display names for
// logs.
package langmeta

import (
	"regexp"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the English name.
	Name string
	// Native is the name in the language itself.
	Native string
}

// Registry contains metadata for common .NET culture names.
// Regional variants fall back to their base language in Lookup.
var Registry = map[string]Meta{
	"ar":      {Name: "Arabic", Native: "العربية"},
	"cs":      {Name: "Czech", Native: "Čeština"},
	"da":      {Name: "Danish", Native: "Dansk"},
	"de":      {Name: "German", Native: "Deutsch"},
	"el":      {Name: "Greek", Native: "Ελληνικά"},
	"en":      {Name: "English", Native: "English"},
	"en-GB":   {Name: "English (United Kingdom)", Native: "English (UK)"},
	"en-US":   {Name: "English (United States)", Native: "English (US)"},
	"es":      {Name: "Spanish", Native: "Español"},
	"fi":      {Name: "Finnish", Native: "Suomi"},
	"fr":      {Name: "French", Native: "Français"},
	"fr-CA":   {Name: "French (Canada)", Native: "Français (Canada)"},
	"he":      {Name: "Hebrew", Native: "עברית"},
	"hu":      {Name: "Hungarian", Native: "Magyar"},
	"it":      {Name: "Italian", Native: "Italiano"},
	"ja":      {Name: "Japanese", Native: "日本語"},
	"ko":      {Name: "Korean", Native: "한국어"},
	"nb":      {Name: "Norwegian Bokmål", Native: "Norsk bokmål"},
	"nl":      {Name: "Dutch", Native: "Nederlands"},
	"pl":      {Name: "Polish", Native: "Polski"},
	"pt":      {Name: "Portuguese", Native: "Português"},
	"pt-BR":   {Name: "Portuguese (Brazil)", Native: "Português (Brasil)"},
	"ro":      {Name: "Romanian", Native: "Română"},
	"ru":      {Name: "Russian", Native: "Русский"},
	"sv":      {Name: "Swedish", Native: "Svenska"},
	"tr":      {Name: "Turkish", Native: "Türkçe"},
	"uk":      {Name: "Ukrainian", Native: "Українська"},
	"zh-Hans": {Name: "Chinese (Simplified)", Native: "简体中文"},
	"zh-Hant": {Name: "Chinese (Traditional)", Native: "繁體中文"},
}

var reTag = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// Normalize canonicalizes a culture tag: '_' becomes '-', the language is
// lower-cased, a four-letter script is title-cased and a region is
// upper-cased ("pt_br" -> "pt-BR", "ZH-HANT" -> "zh-Hant").
func Normalize(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return ""
	}
	parts := strings.Split(tag, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		p := parts[i]
		switch {
		case len(p) == 4:
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		case len(p) == 2 || len(p) == 3 && p[0] >= '0' && p[0] <= '9':
			parts[i] = strings.ToUpper(p)
		}
	}
	return strings.Join(parts, "-")
}

// Valid reports whether tag is syntactically a culture tag. It does not
// check the registry.
func Valid(tag string) bool {
	return reTag.MatchString(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// Lookup returns metadata for tag, falling back from a regional variant to
// its base language. ok is false for unknown languages.
func Lookup(tag string) (m Meta, ok bool) {
	normalized := Normalize(tag)
	if m, ok := Registry[normalized]; ok {
		return m, true
	}
	if base, _, found := strings.Cut(normalized, "-"); found {
		if m, ok := Registry[base]; ok {
			return m, true
		}
	}
	return Meta{Name: tag}, false
}

// Describe returns "fr (French)" for known tags and the tag itself otherwise.
func Describe(tag string) string {
	m, ok := Lookup(tag)
	if !ok {
		return tag
	}
	return Normalize(tag) + " (" + m.Name + ")"
}
