// Package i18n translates resxgen's own console messages.
//
// Catalogs are gettext .po files embedded from locales/<lang>/LC_MESSAGES
// and loaded by Init. Messages without a translation pass through unchanged.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

// Domain is the gettext domain of the embedded catalogs.
const Domain = "resxgen"

var (
	po   *gotext.Locale
	lang string
)

// Init loads the catalog for lang, or for the language detected from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG when lang is empty. Call it once
// before the first T or N.
func Init(l string) {
	if l == "" {
		l = detectLanguage()
	}
	lang = l

	po = gotext.NewLocaleFSWithPath(l, locales, "locales")
	po.AddDomain(Domain)
	po.SetDomain(Domain)
}

// Language returns the language passed to Init, or "" before Init.
func Language() string { return lang }

// T translates msgid.
func T(msgid string, vars ...any) string {
	if po == nil {
		if len(vars) == 0 {
			return msgid
		}
		return fmt.Sprintf(msgid, vars...)
	}
	return po.Get(msgid, vars...)
}

// N translates a message with plural forms.
func N(singular, plural string, n int, vars ...any) string {
	if po == nil {
		msg := plural
		if n == 1 {
			msg = singular
		}
		if len(vars) == 0 {
			return msg
		}
		return fmt.Sprintf(msg, vars...)
	}
	return po.GetN(singular, plural, n, vars...)
}

// detectLanguage follows the GNU gettext lookup order.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8, de_DE@euro
		if i := strings.IndexAny(val, ".@"); i >= 0 {
			val = val[:i]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
