package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func resetLocale(t *testing.T) {
	t.Helper()
	oldPo, oldLang := po, lang
	t.Cleanup(func() { po, lang = oldPo, oldLang })
}

func TestDetectLanguage(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR@euro")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestFallbackWhenUninitialized(t *testing.T) {
	resetLocale(t)
	po = nil

	if got := T("Interrupted"); got != "Interrupted" {
		t.Fatalf("T() = %q, want %q", got, "Interrupted")
	}
	if got := T("%s: up to date", "a.resx"); got != "a.resx: up to date" {
		t.Fatalf("T() = %q, want %q", got, "a.resx: up to date")
	}
	if got := N("%d string", "%d strings", 1, 1); got != "1 string" {
		t.Fatalf("N(1) = %q, want %q", got, "1 string")
	}
	if got := N("%d string", "%d strings", 3); got != "%d strings" {
		t.Fatalf("N(3) = %q, want %q", got, "%d strings")
	}
}

func TestEmbeddedCatalog(t *testing.T) {
	resetLocale(t)
	Init("ru")

	if got := Language(); got != "ru" {
		t.Fatalf("Language() = %q, want %q", got, "ru")
	}
	if got := T("Interrupted"); got != "Прервано" {
		t.Fatalf("T(Interrupted) = %q, want %q", got, "Прервано")
	}
	if got := N("%d string", "%d strings", 5, 5); got != "5 строк" {
		t.Fatalf("N(5) = %q, want %q", got, "5 строк")
	}
}

func TestUnknownLanguagePassesThrough(t *testing.T) {
	resetLocale(t)
	Init("xx")

	if got := T("Interrupted"); got != "Interrupted" {
		t.Fatalf("T() = %q, want %q", got, "Interrupted")
	}
}
