package render

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/resxgen/dict"
)

func build(t *testing.T, escape func(string) string, kv ...string) *dict.Dictionary {
	t.Helper()
	var records []dict.Pair
	for i := 0; i+1 < len(kv); i += 2 {
		records = append(records, dict.Pair{Name: kv[i], Value: kv[i+1]})
	}
	d, _ := dict.Build(records, dict.Options{Escape: escape})
	return d
}

// ---------------------------------------------------------------------------
// TypeScript
// ---------------------------------------------------------------------------

func TestTypeScript_Block(t *testing.T) {
	d := build(t, nil, "Title", "Home", "Greeting_Morning", "Hi", "Greeting_Evening", "Bye")
	got := TypeScript{OmitValues: true}.Block(d, 1)
	want := "{\n" +
		"\t\tTitle: string;\n" +
		"\t\tGreeting: {\n" +
		"\t\t\tMorning: string;\n" +
		"\t\t\tEvening: string;\n" +
		"\t\t};\n" +
		"\t}"
	if got != want {
		t.Fatalf("Block() =\n%s\nwant\n%s", got, want)
	}
}

func TestTypeScript_Render(t *testing.T) {
	d := build(t, dict.EscapeSingleQuotes, "Greeting_Morning", "Hi", "Greeting_Evening", "It's late")
	out, err := TypeScript{Namespace: "Resources"}.Render(Source{Path: "Strings/Messages.fr.resx", Name: "Messages.fr"}, d)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"// TypeScript Resx model for: Strings/Messages.fr.resx\n",
		"// Auto generated by resxgen\n",
		"declare module Resources {\n",
		"\texport class Messages_fr {\n",
		"\n\t\tGreeting: {\n",
		"\n\t\t\tMorning: string; // 'Hi'\n",
		"\n\t\t\tEvening: string; // 'It\\'s late'\n",
		"\n\t\t};\n",
		"\n\t}\n}\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q\n%s", want, s)
		}
	}
}

func TestTypeScript_RequiresNamespace(t *testing.T) {
	if _, err := (TypeScript{}).Render(Source{Name: "A"}, dict.New()); err == nil {
		t.Fatal("Render without namespace expected error")
	}
}

func TestTypeScript_QuotesAndNewlines(t *testing.T) {
	d := build(t, nil,
		"my-key", "line1\nline2",
		"_Hidden", "x",
		"Sep", "a\u2028b: number; }} oops\u2029c",
		"Имя", "Иван",
	)
	got := TypeScript{}.Block(d, 0)
	for _, want := range []string{
		"\t\"my-key\": string; // 'line1\\nline2'\n",
		"\t\"\": {\n",
		"\tSep: string; // 'a\\u2028b: number; }} oops\\u2029c'\n",
		"\tИмя: string; // 'Иван'\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Block() missing %q\n%s", want, got)
		}
	}
	if strings.ContainsAny(got, "\u2028\u2029") {
		t.Errorf("Block() contains a raw line separator\n%s", got)
	}
}

func TestClassName(t *testing.T) {
	tests := map[string]string{
		"Messages":       "Messages",
		"Messages.fr":    "Messages_fr",
		"Messages.fr-FR": "Messages_fr_FR",
		"1Strings":       "_1Strings",
		"Сообщения":      "Сообщения",
		"Сообщения.ru":   "Сообщения_ru",
		"":               "_",
	}
	for in, want := range tests {
		if got := ClassName(in); got != want {
			t.Fatalf("ClassName(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Data renderers
// ---------------------------------------------------------------------------

func TestJSON_Compact(t *testing.T) {
	d := build(t, nil, "B", "2", "A_X", "It's <here> & \"there\"", "A_Y", "y")
	out, err := JSON{}.Render(Source{}, d)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := `{"B":"2","A":{"X":"It's <here> & \"there\"","Y":"y"}}`
	if string(out) != want {
		t.Fatalf("Render() = %s, want %s", out, want)
	}
}

func TestJSON_Indent(t *testing.T) {
	d := build(t, nil, "A_X", "x", "B", "b", "C_", "")
	out, err := JSON{Indent: true}.Render(Source{}, d)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "{\n" +
		"    \"A\": {\n" +
		"        \"X\": \"x\"\n" +
		"    },\n" +
		"    \"B\": \"b\",\n" +
		"    \"C\": {}\n" +
		"}\n"
	if string(out) != want {
		t.Fatalf("Render() =\n%s\nwant\n%s", out, want)
	}
}

func TestDataRoundTrip(t *testing.T) {
	d := build(t, nil,
		"Greeting_Morning", "Hi",
		"Greeting_Evening", "It's late",
		"Flags_Yes", "yes",
		"Flags_Number", "012",
		"Multi", "a\nb",
		"Empty_", "",
	)
	want := d.Map()

	t.Run("json", func(t *testing.T) {
		for _, indent := range []bool{false, true} {
			out, err := JSON{Indent: indent}.Render(Source{}, d)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("json.Unmarshal: %v\n%s", err, out)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("round trip (indent=%v) = %#v, want %#v", indent, got, want)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := YAML{}.Render(Source{}, d)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		var got map[string]any
		if err := yaml.Unmarshal(out, &got); err != nil {
			t.Fatalf("yaml.Unmarshal: %v\n%s", err, out)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip = %#v, want %#v\n%s", got, want, out)
		}
	})
}

func TestYAML_KeyOrder(t *testing.T) {
	d := build(t, nil, "Zeta", "z", "Alpha", "a")
	out, err := YAML{}.Render(Source{}, d)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "Zeta: z\nAlpha: a\n"
	if string(out) != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{" yml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v, want %q (err=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
	if ext := NewData(FormatYAML, false).Extension(); ext != ".yaml" {
		t.Fatalf("NewData(yaml).Extension() = %q, want .yaml", ext)
	}
	if ext := NewData(FormatJSON, true).Extension(); ext != ".json" {
		t.Fatalf("NewData(json).Extension() = %q, want .json", ext)
	}
}
