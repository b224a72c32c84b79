package dict

import (
	"reflect"
	"testing"
)

func pairs(kv ...string) []Pair {
	var out []Pair
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Pair{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestBuild_FlatKeys(t *testing.T) {
	d, conflicts := Build(pairs("Title", "Home", "Save", "Save", "Cancel", "Cancel"), Options{})
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", conflicts)
	}
	if got := d.Depth(); got != 1 {
		t.Fatalf("Depth() = %d, want 1", got)
	}
	if got, want := d.Keys(), []string{"Title", "Save", "Cancel"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %#v, want %#v", got, want)
	}
}

func TestBuild_NestedKeys(t *testing.T) {
	d, _ := Build(pairs("Greeting_Morning", "Hi", "Greeting_Evening", "Bye"), Options{})

	want := map[string]any{
		"Greeting": map[string]any{
			"Morning": "Hi",
			"Evening": "Bye",
		},
	}
	if got := d.Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Map() = %#v, want %#v", got, want)
	}
	if got := d.Depth(); got != 2 {
		t.Fatalf("Depth() = %d, want 2", got)
	}
	greeting := d.Get("Greeting")
	if greeting == nil || greeting.IsLeaf() {
		t.Fatalf("Greeting should be a branch, got %#v", greeting)
	}
	if got, want := greeting.Children.Keys(), []string{"Morning", "Evening"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Greeting keys = %#v, want %#v", got, want)
	}
}

func TestBuild_DeepKeys(t *testing.T) {
	d, _ := Build(pairs("A_B_C_D", "x", "A_B_E", "y", "A_F", "z"), Options{})
	if got := d.Depth(); got != 4 {
		t.Fatalf("Depth() = %d, want 4", got)
	}
	for key, want := range map[string]string{"A_B_C_D": "x", "A_B_E": "y", "A_F": "z"} {
		if got, ok := d.lookup(key); !ok || got != want {
			t.Fatalf("lookup(%q) = %q, %v, want %q", key, got, ok, want)
		}
	}
	if _, ok := d.lookup("A_B"); ok {
		t.Fatal("lookup(A_B) should fail on a branch")
	}
	if _, ok := d.lookup("A_F_G"); ok {
		t.Fatal("lookup(A_F_G) should fail below a leaf")
	}
}

func TestBuild_Empty(t *testing.T) {
	d, conflicts := Build(nil, Options{})
	if d.Len() != 0 || d.Depth() != 0 || len(conflicts) != 0 {
		t.Fatalf("Build(nil) = len %d depth %d conflicts %v, want empty", d.Len(), d.Depth(), conflicts)
	}
}

func TestBuild_Escape(t *testing.T) {
	d, _ := Build(pairs("Msg", "It's here"), Options{Escape: EscapeSingleQuotes})
	if got, _ := d.lookup("Msg"); got != `It\'s here` {
		t.Fatalf("escaped value = %q, want %q", got, `It\'s here`)
	}

	d, _ = Build(pairs("Msg", "It's here"), Options{})
	if got, _ := d.lookup("Msg"); got != "It's here" {
		t.Fatalf("raw value = %q, want %q", got, "It's here")
	}
}

func TestInsert_EmptyKeyIsNoop(t *testing.T) {
	d := New()
	got, conflicts := Insert(d, "", "value")
	if got != d {
		t.Fatal("Insert should return the dictionary it was given")
	}
	if d.Len() != 0 || len(conflicts) != 0 {
		t.Fatalf("Insert(\"\") changed dictionary: len %d conflicts %v", d.Len(), conflicts)
	}
}

func TestInsert_TrailingDelimiter(t *testing.T) {
	d := New()
	Insert(d, "Menu_", "ignored")
	n := d.Get("Menu")
	if n == nil || n.IsLeaf() || n.Children.Len() != 0 {
		t.Fatalf("Menu_ should create an empty branch, got %#v", n)
	}
}

func TestInsert_Conflicts(t *testing.T) {
	t.Run("leaf replaced by branch", func(t *testing.T) {
		d, conflicts := Build(pairs("A", "leaf", "A_B", "nested"), Options{})
		want := map[string]any{"A": map[string]any{"B": "nested"}}
		if got := d.Map(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Map() = %#v, want %#v", got, want)
		}
		if len(conflicts) != 1 || conflicts[0].Kind != LeafReplacedByBranch || conflicts[0].Path != "A" || conflicts[0].Key != "A_B" {
			t.Fatalf("conflicts = %#v, want one LeafReplacedByBranch at A", conflicts)
		}
	})

	t.Run("branch replaced by leaf", func(t *testing.T) {
		d, conflicts := Build(pairs("X_Y_Z", "nested", "X_Y", "leaf"), Options{})
		want := map[string]any{"X": map[string]any{"Y": "leaf"}}
		if got := d.Map(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Map() = %#v, want %#v", got, want)
		}
		if len(conflicts) != 1 || conflicts[0].Kind != BranchReplacedByLeaf || conflicts[0].Path != "X_Y" {
			t.Fatalf("conflicts = %#v, want one BranchReplacedByLeaf at X_Y", conflicts)
		}
		if conflicts[0].String() == "" {
			t.Fatal("Conflict.String() should not be empty")
		}
	})

	t.Run("duplicate leaf is not a conflict", func(t *testing.T) {
		d, conflicts := Build(pairs("A", "1", "A", "2"), Options{})
		if len(conflicts) != 0 {
			t.Fatalf("conflicts = %#v, want none", conflicts)
		}
		if got, _ := d.lookup("A"); got != "2" {
			t.Fatalf("lookup(A) = %q, want %q", got, "2")
		}
		if got := d.Keys(); !reflect.DeepEqual(got, []string{"A"}) {
			t.Fatalf("Keys() = %#v, want [A]", got)
		}
	})
}

func TestInsert_KeepsFirstSeenOrder(t *testing.T) {
	d, _ := Build(pairs("B", "1", "A_X", "2", "C", "3", "B", "4"), Options{})
	if got, want := d.Keys(), []string{"B", "A", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %#v, want %#v", got, want)
	}
}
